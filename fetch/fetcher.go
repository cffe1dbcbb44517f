// Package fetch retrieves raw document bytes from a source identifier.
//
// HTTP and HTTPS URLs are downloaded with a bounded timeout and size
// cap; file:// URLs and bare filesystem paths are read directly, which
// keeps local testing and CLI use cheap.
package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	// DefaultTimeout bounds a single document download.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxBytes caps the accepted document size.
	DefaultMaxBytes = 64 << 20 // 64 MiB
)

// Fetcher retrieves documents by URL or path. The zero value is not
// usable; construct with New.
type Fetcher struct {
	client   *http.Client
	maxBytes int64
	logger   *slog.Logger
}

// Option is a functional option for configuring a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the per-download timeout.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.client.Timeout = d
	}
}

// WithHTTPClient replaces the underlying HTTP client entirely.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) {
		f.client = c
	}
}

// WithMaxBytes sets the document size cap.
func WithMaxBytes(n int64) Option {
	return func(f *Fetcher) {
		f.maxBytes = n
	}
}

// WithLogger sets the logger used by the fetcher.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Fetcher) {
		f.logger = logger.With("component", "fetcher")
	}
}

// New creates a Fetcher with the default timeout and size cap.
func New(opts ...Option) *Fetcher {
	f := &Fetcher{
		client:   &http.Client{Timeout: DefaultTimeout},
		maxBytes: DefaultMaxBytes,
		logger:   slog.Default().With("component", "fetcher"),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch retrieves the document at source and reports its content type.
// HTTP(S) URLs are downloaded; file:// URLs and bare paths are read
// from disk. Transport failures wrap ErrDownloadFailed; non-2xx HTTP
// answers wrap ErrBadStatus.
func (f *Fetcher) Fetch(ctx context.Context, source string) ([]byte, string, error) {
	switch {
	case strings.HasPrefix(source, "http://"), strings.HasPrefix(source, "https://"):
		return f.fetchHTTP(ctx, source)
	case strings.HasPrefix(source, "file://"):
		return f.fetchFile(strings.TrimPrefix(source, "file://"))
	default:
		return f.fetchFile(source)
	}
}

func (f *Fetcher) fetchHTTP(ctx context.Context, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrDownloadFailed, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		f.logger.Error("download failed", "url", url, "err", err)
		return nil, "", fmt.Errorf("%w: %w", ErrDownloadFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		f.logger.Warn("bad status from source", "url", url, "status", resp.Status)
		return nil, "", fmt.Errorf("%w: %s answered %s", ErrBadStatus, url, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("%w: reading body: %w", ErrDownloadFailed, err)
	}
	if int64(len(body)) > f.maxBytes {
		return nil, "", fmt.Errorf("%w: %s exceeds %d bytes", ErrTooLarge, url, f.maxBytes)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(body)
	}

	f.logger.Debug("downloaded document", "url", url, "bytes", len(body), "content_type", contentType)
	return body, contentType, nil
}

func (f *Fetcher) fetchFile(path string) ([]byte, string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrDownloadFailed, err)
	}
	if info.Size() > f.maxBytes {
		return nil, "", fmt.Errorf("%w: %s exceeds %d bytes", ErrTooLarge, path, f.maxBytes)
	}

	body, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrDownloadFailed, err)
	}

	contentType := mime.TypeByExtension(filepath.Ext(path))
	if contentType == "" {
		contentType = http.DetectContentType(body)
	}

	f.logger.Debug("read local document", "path", path, "bytes", len(body), "content_type", contentType)
	return body, contentType, nil
}
