package library

import "errors"

// Custom library service errors
var (
	// ErrEmptyName indicates a playlist name that is empty after trimming
	ErrEmptyName = errors.New("playlist name cannot be empty")

	// ErrSongNotFound indicates the requested song is not in the library
	ErrSongNotFound = errors.New("song not found")

	// ErrPlaylistNotFound indicates the requested playlist does not exist
	ErrPlaylistNotFound = errors.New("playlist not found")

	// ErrInvalidVolume indicates a volume outside the 0-100 range
	ErrInvalidVolume = errors.New("volume must be between 0 and 100")
)

// IsEmptyName checks if the error is an empty playlist name error
func IsEmptyName(err error) bool {
	return errors.Is(err, ErrEmptyName)
}

// IsSongNotFound checks if the error is a song not found error
func IsSongNotFound(err error) bool {
	return errors.Is(err, ErrSongNotFound)
}

// IsPlaylistNotFound checks if the error is a playlist not found error
func IsPlaylistNotFound(err error) bool {
	return errors.Is(err, ErrPlaylistNotFound)
}
