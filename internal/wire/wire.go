// Package wire holds the fixed wire-level contracts shared by the Zato
// client decoders: result codes, header names, SOAP and SIO lookup paths.
package wire

// Result codes reported by Simple IO services.
const (
	ZatoOK = "ZATO_OK"
)

// HeaderCID carries the correlation id of a call.
const HeaderCID = "x-zato-cid"

// HeaderSOAPAction names the SOAP operation being invoked.
const HeaderSOAPAction = "SOAPAction"

// NoCID is reported when a response carries no correlation id.
const NoCID = "(None)"

// XML namespaces.
const (
	NSSOAPEnv = "http://schemas.xmlsoap.org/soap/envelope/"
	NSZato    = "https://zato.io/ns/20130518"
)

// JSON SIO envelope keys.
const (
	KeyEnv     = "zato_env"
	KeyResult  = "result"
	KeyDetails = "details"
	KeyCID     = "cid"
)

// Service-invoke envelope keys.
const (
	KeyName       = "name"
	KeyID         = "id"
	KeyPayload    = "payload"
	KeyChannel    = "channel"
	KeyDataFormat = "data_format"
	KeyTransport  = "transport"
	KeyAsync      = "async"
	KeyExpiration = "expiration"
	KeyResponse   = "response"
)

// Service-invoke envelope defaults.
const (
	DefaultChannel    = "invoke"
	DefaultDataFormat = "json"

	// BrokerDefaultExpiration is the number of seconds an asynchronous
	// invocation may wait in the server's broker.
	BrokerDefaultExpiration = 15
)
