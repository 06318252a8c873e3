package search

import "errors"

// Collaborator errors. An unavailable backend degrades search and
// download only; the library and playback keep working offline.
var (
	ErrUnavailable    = errors.New("search backend unavailable")
	ErrSearchFailed   = errors.New("search failed")
	ErrDownloadFailed = errors.New("download failed")
)

// IsUnavailable checks if the error indicates the backend is unreachable
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}
