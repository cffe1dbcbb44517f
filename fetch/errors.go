package fetch

import "errors"

var (
	// ErrDownloadFailed is returned when the source could not be
	// retrieved at all (transport failure, unreadable file).
	ErrDownloadFailed = errors.New("document download failed")

	// ErrBadStatus is returned when an HTTP source answers with a
	// non-success status.
	ErrBadStatus = errors.New("document source returned bad status")

	// ErrTooLarge is returned when the document exceeds the configured
	// size cap.
	ErrTooLarge = errors.New("document exceeds size limit")
)
