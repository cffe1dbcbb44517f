package extract

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// PlainText extracts UTF-8 text documents. Form feed characters are
// treated as page breaks, which is how text renderings of paginated
// documents usually mark them.
type PlainText struct{}

var _ Extractor = (*PlainText)(nil)

// Extract cleans the document text. When form feeds are present the
// text is split into pages and each page keeps its original 1-based
// number, so citations stay correct even when blank pages are dropped.
func (e *PlainText) Extract(data []byte) (*Content, error) {
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("%w: not valid UTF-8", ErrMalformedDocument)
	}
	text := string(data)

	if !strings.ContainsRune(text, '\f') {
		cleaned := Clean(text)
		if cleaned == "" {
			return nil, ErrNoContent
		}
		return &Content{Pages: []Page{{Number: 0, Text: cleaned}}}, nil
	}

	var pages []Page
	for i, raw := range strings.Split(text, "\f") {
		cleaned := Clean(raw)
		if cleaned == "" {
			continue
		}
		pages = append(pages, Page{Number: i + 1, Text: cleaned})
	}
	if len(pages) == 0 {
		return nil, ErrNoContent
	}
	return &Content{Pages: pages}, nil
}
