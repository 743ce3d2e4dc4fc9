package client

import (
	"encoding/json"
	"errors"
	"fmt"
)

// encodeJSON serializes a payload. time.Time values become RFC 3339
// (ISO-8601) strings; values JSON cannot represent give an *EncodeError.
func encodeJSON(payload any) ([]byte, error) {
	b, err := json.Marshal(payload)
	if err == nil {
		return b, nil
	}

	var typeErr *json.UnsupportedTypeError
	var valueErr *json.UnsupportedValueError
	switch {
	case errors.As(err, &typeErr):
		return nil, &EncodeError{Value: typeErr.Type, Err: err}
	case errors.As(err, &valueErr):
		return nil, &EncodeError{Value: valueErr.Str, Err: err}
	default:
		return nil, &EncodeError{Value: payload, Err: err}
	}
}

// rawBody accepts pass-through payloads.
func rawBody(payload any) ([]byte, error) {
	switch p := payload.(type) {
	case nil:
		return nil, nil
	case []byte:
		return p, nil
	case string:
		return []byte(p), nil
	default:
		return nil, fmt.Errorf("%w: expected string or []byte, got %T", ErrInvalidPayload, payload)
	}
}
