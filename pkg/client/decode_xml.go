package client

import (
	"errors"
	"fmt"
	"strings"

	"github.com/antchfx/xmlquery"

	"github.com/usestring/zato-client-go/internal/wire"
)

var errExtraContent = errors.New("extra content outside the root element")

// parseXML parses a well-formed document: exactly one root element, with
// nothing but whitespace, comments and declarations around it.
func parseXML(text string) (*xmlquery.Node, error) {
	doc, err := xmlquery.Parse(strings.NewReader(text))
	if err != nil {
		return nil, err
	}

	// Text outside any element can also end up after the document node.
	roots := 0
	for _, first := range []*xmlquery.Node{doc.FirstChild, doc.NextSibling} {
		for n := first; n != nil; n = n.NextSibling {
			switch n.Type {
			case xmlquery.ElementNode:
				roots++
			case xmlquery.TextNode, xmlquery.CharDataNode:
				if strings.TrimSpace(n.Data) != "" {
					return nil, errExtraContent
				}
			}
		}
	}
	if roots > 1 {
		return nil, errExtraContent
	}
	return doc, nil
}

// xmlDecoder reads arbitrary XML bodies.
type xmlDecoder struct{}

func (xmlDecoder) Decode(r *Response) {
	if isBlank(r.raw.Text) {
		r.ok = r.raw.OK
		return
	}

	doc, err := parseXML(r.raw.Text)
	if err != nil {
		r.parseFailed(err)
		return
	}

	if root := wire.RootElement(doc); root != nil {
		r.data = root
		r.hasData = true
	}
	r.ok = r.raw.OK
}

// soapDecoder reads SOAP 1.1 envelopes.
type soapDecoder struct{}

func (soapDecoder) Decode(r *Response) {
	missing := fmt.Sprintf("No %s in SOAP response", wire.SOAPDataPath)
	if isBlank(r.raw.Text) {
		r.details = missing
		return
	}

	doc, err := parseXML(r.raw.Text)
	if err != nil {
		r.parseFailed(err)
		return
	}

	// A fault is reported even if the body has other content.
	if fault := wire.SOAPFault(doc); fault != nil {
		r.details = fault
		return
	}

	data := wire.SOAPData(doc)
	if data == nil {
		r.details = missing
		return
	}

	r.data = data
	r.hasData = true
	r.ok = r.raw.OK
}

// soapSIODecoder reads SOAP envelopes whose body holds a zato_env status
// block next to the business payload.
type soapSIODecoder struct{}

func (soapSIODecoder) Decode(r *Response) {
	missing := fmt.Sprintf("Server did not send a business payload (%s element is missing), soap_response:[%s]",
		wire.ZatoDataPath, r.raw.Text)
	if isBlank(r.raw.Text) {
		r.details = missing
		return
	}

	doc, err := parseXML(r.raw.Text)
	if err != nil {
		r.parseFailed(err)
		return
	}

	if fault := wire.SOAPFault(doc); fault != nil {
		r.details = fault
		return
	}

	data := wire.SOAPData(doc)
	if data == nil {
		r.details = missing
		return
	}

	if r.cid == wire.NoCID {
		if cid := wire.ZatoCID(data); cid != nil {
			if s := strings.TrimSpace(cid.InnerText()); s != "" {
				r.cid = s
			}
		}
	}

	result := wire.ZatoResult(data)
	if result == nil {
		r.details = fmt.Sprintf("No %s in SOAP response", wire.ZatoResultPath)
		return
	}
	r.sioResult = strings.TrimSpace(result.InnerText())

	if r.sioResult != wire.ZatoOK {
		if details := wire.ZatoDetails(data); details != nil {
			r.details = details.InnerText()
		} else {
			r.details = "SIO result [" + r.sioResult + "]"
		}
		return
	}

	r.data = data
	r.hasData = true
	r.ok = r.raw.OK
}
