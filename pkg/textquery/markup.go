package textquery

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"

	"github.com/usestring/zato-client-go/internal/cache"
	"github.com/usestring/zato-client-go/internal/wire"
	"github.com/usestring/zato-client-go/pkg/contenttype"
)

const xpathCacheSize = 128

var xpaths = mustXPathCache()

func mustXPathCache() *cache.LRU[string, *xpath.Expr] {
	c, err := cache.New[string, *xpath.Expr](xpathCacheSize)
	if err != nil {
		panic(err)
	}
	return c
}

// compileXPath compiles an expression with the soapenv and zato prefixes
// predeclared. Compiled expressions are cached; they are safe to share.
func compileXPath(expression string) (*xpath.Expr, error) {
	if expr, ok := xpaths.Get(expression); ok {
		return expr, nil
	}
	expr, err := xpath.CompileWithNS(expression, wire.Namespaces)
	if err != nil {
		return nil, fmt.Errorf("invalid XPath expression: %w", err)
	}
	xpaths.Put(expression, expr)
	return expr, nil
}

// QueryNode evaluates XPath against an already decoded XML tree, such as
// the data or fault node of a SOAP response.
func QueryNode(top *xmlquery.Node, expression string, maxResults int) (*QueryResult, error) {
	expr, err := compileXPath(expression)
	if err != nil {
		return nil, err
	}

	c := newCollector(ModeXPath, maxResults)
	for _, n := range xmlquery.QuerySelectorAll(top, expr) {
		if !c.addText(strings.TrimSpace(n.InnerText())) {
			break
		}
	}
	return c.result(), nil
}

// QueryXPath evaluates XPath against an XML body, or an HTML body when ct
// says so.
func QueryXPath(body []byte, ct, expression string, maxResults int) (*QueryResult, error) {
	if contenttype.Classify(ct) == contenttype.HTML {
		return queryXPathHTML(body, expression, maxResults)
	}

	doc, err := xmlquery.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse XML: %w", err)
	}
	return QueryNode(doc, expression, maxResults)
}

func queryXPathHTML(body []byte, expression string, maxResults int) (*QueryResult, error) {
	doc, err := htmlquery.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	nodes, err := htmlquery.QueryAll(doc, expression)
	if err != nil {
		return nil, fmt.Errorf("invalid XPath expression: %w", err)
	}

	c := newCollector(ModeXPath, maxResults)
	for _, n := range nodes {
		if !c.addText(strings.TrimSpace(htmlquery.InnerText(n))) {
			break
		}
	}
	return c.result(), nil
}

// QueryCSS extracts the text of HTML elements matching a CSS selector.
func QueryCSS(body []byte, selector string, maxResults int) (*QueryResult, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	c := newCollector(ModeCSS, maxResults)
	doc.Find(selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		return c.addText(strings.TrimSpace(s.Text()))
	})
	return c.result(), nil
}
