package client

import (
	"errors"
	"fmt"
)

// ErrUnsupportedFormat is returned by NewResponse for a format that has no
// decoder. It signals a programming mistake rather than a bad response.
var ErrUnsupportedFormat = errors.New("unsupported response format")

// ErrInvalidPayload is returned when a payload passed without JSON encoding
// is neither a string nor a byte slice.
var ErrInvalidPayload = errors.New("invalid payload")

// UsageError reports a call that could not be made because of how it was
// requested. It is returned before anything is sent.
type UsageError struct {
	Message string
}

func (e *UsageError) Error() string {
	return e.Message
}

// EncodeError reports a payload value that cannot be serialized to JSON.
type EncodeError struct {
	Value any
	Err   error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("cannot serialize [%v]: %v", e.Value, e.Err)
}

func (e *EncodeError) Unwrap() error {
	return e.Err
}
