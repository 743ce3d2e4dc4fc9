// Package client provides Go clients for invoking Zato services over HTTP.
//
// Each client pairs one request-encoding convention with the decoder that
// interprets the matching response format:
//
//	JSONClient      JSON payload        -> FormatJSON
//	JSONSIOClient   JSON payload        -> FormatJSONSIO   (zato_env envelope)
//	XMLClient       XML pass-through    -> FormatXML
//	SOAPClient      XML + SOAPAction    -> FormatSOAP
//	SOAPSIOClient   XML + SOAPAction    -> FormatSOAPSIO   (zato_env inside SOAP)
//	RawDataClient   bytes pass-through  -> FormatRaw
//
// AnyServiceInvoker tunnels a call to any named service through the
// zato.service.invoke endpoint and unwraps the nested, base64-encoded
// response.
//
// # Quick Start
//
//	c := client.NewJSONSIOClient("http://localhost:11223", "/zato/json/my.service",
//	    client.WithBasicAuth("user", "secret"),
//	)
//	resp, err := c.Invoke(ctx, map[string]any{"customer_id": 123})
//	if err != nil {
//	    return err // transport-level failure, no HTTP response at all
//	}
//	if !resp.OK() {
//	    log.Printf("call failed: %s", resp.DetailsText())
//	}
//
// # Responses
//
// Invoke never returns an error for a response the server did send. A
// malformed body, a SOAP fault, or a non-OK SIO result is reported through
// Response.OK and Response.Details instead. Errors are returned only when no
// HTTP response was received or the request could not be encoded.
//
// Data depends on the format: decoded JSON values (or a Bunch when the client
// was built WithBunch), *xmlquery.Node for XML and SOAP, and the body text
// for raw responses.
//
// # Invoking Services by Name
//
//	inv := client.NewAnyServiceInvoker("http://localhost:11223", "/zato/admin/invoke")
//	resp, err := inv.Invoke(ctx, client.ServiceRequest{
//	    Name:    "zato.ping",
//	    Payload: map[string]any{"at": time.Now()},
//	})
package client
