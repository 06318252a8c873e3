// Package store provides durable, key-addressed collections for songs,
// playlists and settings. Two interchangeable backends implement the
// same interface: a structured sqlite engine (preferred) and a flat
// JSON-file fallback used when the engine cannot be opened. Callers
// must see identical behavior regardless of backend.
package store

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/lemonstring/strum/internal/logger"
	"github.com/lemonstring/strum/internal/models"
)

// Backend identifiers reported by Store.Backend.
const (
	BackendSQLite = "sqlite"
	BackendFlat   = "flat"
)

// Store is the persistence contract shared by both backends.
type Store interface {
	Songs() SongStore
	Playlists() PlaylistStore
	Settings() SettingStore

	// Backend returns which backend was selected at open time.
	Backend() string

	// Health checks that the backend is still usable.
	Health(ctx context.Context) error

	Close() error
}

// SongStore handles persistence for library songs, keyed by song ID.
type SongStore interface {
	GetAll(ctx context.Context) ([]models.Song, error)
	Get(ctx context.Context, id string) (*models.Song, error)
	// Put upserts the full record by ID. It either fully replaces the
	// record or leaves it untouched, never a partial write.
	Put(ctx context.Context, song *models.Song) (string, error)
	// Delete removes the record. Deleting an absent ID is not an error.
	Delete(ctx context.Context, id string) error
	Clear(ctx context.Context) error
	Count(ctx context.Context) (int64, error)
}

// PlaylistStore handles persistence for playlists, keyed by playlist UUID.
type PlaylistStore interface {
	GetAll(ctx context.Context) ([]models.Playlist, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Playlist, error)
	Put(ctx context.Context, playlist *models.Playlist) (uuid.UUID, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Clear(ctx context.Context) error
	Count(ctx context.Context) (int64, error)
}

// SettingStore handles persistence for settings, keyed by setting name.
type SettingStore interface {
	GetAll(ctx context.Context) ([]models.Setting, error)
	Get(ctx context.Context, key string) (*models.Setting, error)
	Put(ctx context.Context, setting *models.Setting) (string, error)
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
	Count(ctx context.Context) (int64, error)
}

// Options configures Open.
type Options struct {
	// Path is the sqlite database file path.
	Path string
	// MigrationsPath is a golang-migrate source URL, e.g. "file://./migrations".
	MigrationsPath string
	// FallbackDir is the directory used by the flat backend when the
	// sqlite engine is unavailable.
	FallbackDir string
}

// Open selects a backend once at startup: it tries the sqlite engine
// first and falls back to flat JSON files when the engine cannot be
// opened or migrated. The selection is never switched mid-session.
func Open(opts Options) (Store, error) {
	s, err := OpenSQLite(opts.Path, opts.MigrationsPath)
	if err == nil {
		logger.Log.Info().
			Str("backend", BackendSQLite).
			Str("path", opts.Path).
			Msg("Store opened")
		return s, nil
	}

	logger.Log.Warn().
		Err(err).
		Str("path", opts.Path).
		Msg("Structured storage engine unavailable, falling back to flat files")

	f, ferr := OpenFlat(opts.FallbackDir)
	if ferr != nil {
		return nil, ferr
	}

	logger.Log.Info().
		Str("backend", BackendFlat).
		Str("dir", opts.FallbackDir).
		Msg("Store opened")
	return f, nil
}

// Lazy defers Open until first use and serves all concurrent callers
// from a single pending initialization. A failed open is fatal for that
// attempt but the next caller retries.
type Lazy struct {
	mu    sync.Mutex
	open  func() (Store, error)
	store Store
}

// NewLazy creates a Lazy store around the given open function.
func NewLazy(open func() (Store, error)) *Lazy {
	return &Lazy{open: open}
}

// Get returns the shared store, opening it on first call.
func (l *Lazy) Get() (Store, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.store != nil {
		return l.store, nil
	}

	s, err := l.open()
	if err != nil {
		return nil, err
	}
	l.store = s
	return s, nil
}
