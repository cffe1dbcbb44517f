package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// HTML extracts the visible text of an HTML document. Script, style,
// and template content is removed before the text is flattened.
type HTML struct{}

var _ Extractor = (*HTML)(nil)

// Extract parses the document and returns its visible text as a single
// page numbered zero. HTML carries no page structure.
func (e *HTML) Extract(data []byte) (*Content, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedDocument, err)
	}

	doc.Find("script, style, noscript, template").Remove()

	root := doc.Find("body")
	if root.Length() == 0 {
		root = doc.Selection
	}

	var b strings.Builder
	for _, node := range root.Nodes {
		collectText(node, &b)
	}

	cleaned := Clean(b.String())
	if cleaned == "" {
		return nil, ErrNoContent
	}
	return &Content{Pages: []Page{{Number: 0, Text: cleaned}}}, nil
}

// collectText appends every text node under n, separated by spaces so
// adjacent elements in minified markup do not run together. Clean
// collapses the extra whitespace afterwards.
func collectText(n *html.Node, b *strings.Builder) {
	if n.Type == html.TextNode {
		b.WriteString(n.Data)
		b.WriteByte(' ')
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, b)
	}
}
