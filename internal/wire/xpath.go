package wire

import (
	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"
)

// Paths as they are reported in diagnostics.
const (
	SOAPDataPath    = "/soapenv:Envelope/soapenv:Body/*[1]"
	SOAPFaultPath   = "/soapenv:Envelope/soapenv:Body/soapenv:Fault"
	ZatoDataPath    = SOAPDataPath
	ZatoResultPath  = "//zato:zato_env/zato:result"
	ZatoDetailsPath = "//zato:zato_env/zato:details"
	ZatoCIDPath     = "//zato:zato_env/zato:cid"
)

// Namespaces maps the prefixes used in the SOAP paths to their URIs.
var Namespaces = map[string]string{
	"soapenv": NSSOAPEnv,
	"zato":    NSZato,
}

// The zato prefix is matched by local name only: servers have used more than
// one namespace URI for SIO elements over time.
var (
	soapData    = mustCompileNS(SOAPDataPath)
	soapFault   = mustCompileNS(SOAPFaultPath)
	zatoResult  = xpath.MustCompile(`//*[local-name()='zato_env']/*[local-name()='result']`)
	zatoDetails = xpath.MustCompile(`//*[local-name()='zato_env']/*[local-name()='details']`)
	zatoCID     = xpath.MustCompile(`//*[local-name()='zato_env']/*[local-name()='cid']`)
)

func mustCompileNS(expr string) *xpath.Expr {
	e, err := xpath.CompileWithNS(expr, Namespaces)
	if err != nil {
		panic(err)
	}
	return e
}

// SOAPData returns the first element child of the SOAP Body, or nil.
func SOAPData(doc *xmlquery.Node) *xmlquery.Node {
	return xmlquery.QuerySelector(doc, soapData)
}

// SOAPFault returns the SOAP 1.1 Fault element of the envelope, or nil.
func SOAPFault(doc *xmlquery.Node) *xmlquery.Node {
	return xmlquery.QuerySelector(doc, soapFault)
}

// ZatoResult returns the SIO result element under top, or nil.
func ZatoResult(top *xmlquery.Node) *xmlquery.Node {
	return xmlquery.QuerySelector(top, zatoResult)
}

// ZatoDetails returns the SIO details element under top, or nil.
func ZatoDetails(top *xmlquery.Node) *xmlquery.Node {
	return xmlquery.QuerySelector(top, zatoDetails)
}

// ZatoCID returns the SIO cid element under top, or nil.
func ZatoCID(top *xmlquery.Node) *xmlquery.Node {
	return xmlquery.QuerySelector(top, zatoCID)
}

// RootElement returns the document element of a parsed tree, skipping the
// declaration node xmlquery inserts ahead of it.
func RootElement(doc *xmlquery.Node) *xmlquery.Node {
	for n := doc.FirstChild; n != nil; n = n.NextSibling {
		if n.Type == xmlquery.ElementNode {
			return n
		}
	}
	return nil
}
