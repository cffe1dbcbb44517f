package extract

import (
	"fmt"
	"mime"
	"strings"
)

// Page is one page of extracted, cleaned text. Number is the 1-based
// page number from the source document, or zero when the format has no
// page structure.
type Page struct {
	Number int
	Text   string
}

// Content is the full extraction result for one document.
type Content struct {
	Pages []Page
}

// Extractor converts raw document bytes into cleaned text.
type Extractor interface {
	// Extract parses data and returns its text content. It returns
	// ErrNoContent when the document holds no usable text.
	Extract(data []byte) (*Content, error)
}

// ForContentType returns the extractor for a MIME content type as
// reported by an HTTP response or file extension lookup. It returns
// ErrUnsupportedType for formats no extractor handles.
func ForContentType(contentType string) (Extractor, error) {
	mediaType := contentType
	if parsed, _, err := mime.ParseMediaType(contentType); err == nil {
		mediaType = parsed
	}
	mediaType = strings.ToLower(strings.TrimSpace(mediaType))

	switch {
	case mediaType == "text/html", mediaType == "application/xhtml+xml":
		return &HTML{}, nil
	case strings.HasPrefix(mediaType, "text/"), mediaType == "application/octet-stream":
		// Octet-stream shows up for extensionless local files that
		// sniffing could not classify; treat them as plain text and
		// let UTF-8 validation reject real binaries.
		return &PlainText{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedType, contentType)
	}
}
