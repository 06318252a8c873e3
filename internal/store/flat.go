package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/lemonstring/strum/internal/models"
)

// Collection file names used by the flat backend.
const (
	flatSongsFile     = "songs.json"
	flatPlaylistsFile = "playlists.json"
	flatSettingsFile  = "settings.json"
)

// flatStore is the fallback backend: one JSON file per collection.
// A single mutex serializes every operation so read-modify-write
// sequences never interleave on the same record, and each mutation
// rewrites the collection file atomically (temp file + rename).
type flatStore struct {
	mu     sync.Mutex
	dir    string
	closed bool
}

// OpenFlat opens the flat backend rooted at dir, creating it if needed.
func OpenFlat(dir string) (Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("flat store directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create flat store directory: %w", err)
	}
	return &flatStore{dir: dir}, nil
}

func (f *flatStore) Songs() SongStore         { return &flatSongs{store: f} }
func (f *flatStore) Playlists() PlaylistStore { return &flatPlaylists{store: f} }
func (f *flatStore) Settings() SettingStore   { return &flatSettings{store: f} }

func (f *flatStore) Backend() string { return BackendFlat }

// Health verifies the backing directory is still writable.
func (f *flatStore) Health(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return ErrClosed
	}
	info, err := os.Stat(f.dir)
	if err != nil {
		return fmt.Errorf("flat store directory unavailable: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("flat store path %s is not a directory", f.dir)
	}
	return nil
}

func (f *flatStore) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

// readFile decodes a collection file into out. A missing file means an
// empty collection, not an error.
func (f *flatStore) readFile(name string, out interface{}) error {
	if f.closed {
		return ErrClosed
	}
	data, err := os.ReadFile(filepath.Join(f.dir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read %s: %w", name, err)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode %s: %w", name, err)
	}
	return nil
}

// writeFile atomically replaces a collection file. A failed write leaves
// the previous contents intact.
func (f *flatStore) writeFile(name string, in interface{}) error {
	if f.closed {
		return ErrClosed
	}
	data, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", name, err)
	}

	path := filepath.Join(f.dir, name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to replace %s: %w", name, err)
	}
	return nil
}

func (f *flatStore) removeFile(name string) error {
	if f.closed {
		return ErrClosed
	}
	if err := os.Remove(filepath.Join(f.dir, name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove %s: %w", name, err)
	}
	return nil
}

// flatSongs handles song persistence on the flat backend
type flatSongs struct {
	store *flatStore
}

func (r *flatSongs) load() ([]models.Song, error) {
	var songs []models.Song
	if err := r.store.readFile(flatSongsFile, &songs); err != nil {
		return nil, err
	}
	return songs, nil
}

func (r *flatSongs) GetAll(ctx context.Context) ([]models.Song, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	songs, err := r.load()
	if err != nil {
		return nil, err
	}
	// Same order the structured backend returns.
	sort.Slice(songs, func(i, j int) bool {
		if !songs[i].AddedAt.Equal(songs[j].AddedAt) {
			return songs[i].AddedAt.Before(songs[j].AddedAt)
		}
		return songs[i].ID < songs[j].ID
	})
	return songs, nil
}

func (r *flatSongs) Get(ctx context.Context, id string) (*models.Song, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	songs, err := r.load()
	if err != nil {
		return nil, err
	}
	for i := range songs {
		if songs[i].ID == id {
			return &songs[i], nil
		}
	}
	return nil, ErrNotFound
}

func (r *flatSongs) Put(ctx context.Context, song *models.Song) (string, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	songs, err := r.load()
	if err != nil {
		return "", err
	}

	replaced := false
	for i := range songs {
		if songs[i].ID == song.ID {
			songs[i] = *song
			replaced = true
			break
		}
	}
	if !replaced {
		songs = append(songs, *song)
	}

	if err := r.store.writeFile(flatSongsFile, songs); err != nil {
		return "", err
	}
	return song.ID, nil
}

func (r *flatSongs) Delete(ctx context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	songs, err := r.load()
	if err != nil {
		return err
	}

	filtered := songs[:0]
	for _, s := range songs {
		if s.ID != id {
			filtered = append(filtered, s)
		}
	}
	if len(filtered) == len(songs) {
		return nil
	}
	return r.store.writeFile(flatSongsFile, filtered)
}

func (r *flatSongs) Clear(ctx context.Context) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return r.store.removeFile(flatSongsFile)
}

func (r *flatSongs) Count(ctx context.Context) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	songs, err := r.load()
	if err != nil {
		return 0, err
	}
	return int64(len(songs)), nil
}

// flatPlaylists handles playlist persistence on the flat backend
type flatPlaylists struct {
	store *flatStore
}

func (r *flatPlaylists) load() ([]models.Playlist, error) {
	var playlists []models.Playlist
	if err := r.store.readFile(flatPlaylistsFile, &playlists); err != nil {
		return nil, err
	}
	return playlists, nil
}

func (r *flatPlaylists) GetAll(ctx context.Context) ([]models.Playlist, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	playlists, err := r.load()
	if err != nil {
		return nil, err
	}
	sort.Slice(playlists, func(i, j int) bool {
		if !playlists[i].CreatedAt.Equal(playlists[j].CreatedAt) {
			return playlists[i].CreatedAt.Before(playlists[j].CreatedAt)
		}
		return playlists[i].ID.String() < playlists[j].ID.String()
	})
	return playlists, nil
}

func (r *flatPlaylists) Get(ctx context.Context, id uuid.UUID) (*models.Playlist, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	playlists, err := r.load()
	if err != nil {
		return nil, err
	}
	for i := range playlists {
		if playlists[i].ID == id {
			return &playlists[i], nil
		}
	}
	return nil, ErrNotFound
}

func (r *flatPlaylists) Put(ctx context.Context, playlist *models.Playlist) (uuid.UUID, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	playlists, err := r.load()
	if err != nil {
		return uuid.Nil, err
	}

	replaced := false
	for i := range playlists {
		if playlists[i].ID == playlist.ID {
			playlists[i] = *playlist
			replaced = true
			break
		}
	}
	if !replaced {
		playlists = append(playlists, *playlist)
	}

	if err := r.store.writeFile(flatPlaylistsFile, playlists); err != nil {
		return uuid.Nil, err
	}
	return playlist.ID, nil
}

func (r *flatPlaylists) Delete(ctx context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	playlists, err := r.load()
	if err != nil {
		return err
	}

	filtered := playlists[:0]
	for _, p := range playlists {
		if p.ID != id {
			filtered = append(filtered, p)
		}
	}
	if len(filtered) == len(playlists) {
		return nil
	}
	return r.store.writeFile(flatPlaylistsFile, filtered)
}

func (r *flatPlaylists) Clear(ctx context.Context) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return r.store.removeFile(flatPlaylistsFile)
}

func (r *flatPlaylists) Count(ctx context.Context) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	playlists, err := r.load()
	if err != nil {
		return 0, err
	}
	return int64(len(playlists)), nil
}

// flatSettings handles setting persistence on the flat backend
type flatSettings struct {
	store *flatStore
}

func (r *flatSettings) load() ([]models.Setting, error) {
	var settings []models.Setting
	if err := r.store.readFile(flatSettingsFile, &settings); err != nil {
		return nil, err
	}
	return settings, nil
}

func (r *flatSettings) GetAll(ctx context.Context) ([]models.Setting, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	settings, err := r.load()
	if err != nil {
		return nil, err
	}
	sort.Slice(settings, func(i, j int) bool {
		return settings[i].Key < settings[j].Key
	})
	return settings, nil
}

func (r *flatSettings) Get(ctx context.Context, key string) (*models.Setting, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	settings, err := r.load()
	if err != nil {
		return nil, err
	}
	for i := range settings {
		if settings[i].Key == key {
			return &settings[i], nil
		}
	}
	return nil, ErrNotFound
}

func (r *flatSettings) Put(ctx context.Context, setting *models.Setting) (string, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	settings, err := r.load()
	if err != nil {
		return "", err
	}

	replaced := false
	for i := range settings {
		if settings[i].Key == setting.Key {
			settings[i] = *setting
			replaced = true
			break
		}
	}
	if !replaced {
		settings = append(settings, *setting)
	}

	if err := r.store.writeFile(flatSettingsFile, settings); err != nil {
		return "", err
	}
	return setting.Key, nil
}

func (r *flatSettings) Delete(ctx context.Context, key string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	settings, err := r.load()
	if err != nil {
		return err
	}

	filtered := settings[:0]
	for _, s := range settings {
		if s.Key != key {
			filtered = append(filtered, s)
		}
	}
	if len(filtered) == len(settings) {
		return nil
	}
	return r.store.writeFile(flatSettingsFile, filtered)
}

func (r *flatSettings) Clear(ctx context.Context) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return r.store.removeFile(flatSettingsFile)
}

func (r *flatSettings) Count(ctx context.Context) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	settings, err := r.load()
	if err != nil {
		return 0, err
	}
	return int64(len(settings)), nil
}
