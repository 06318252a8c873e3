// Package library owns the song and playlist lifecycle on top of the
// persistent store: cascading deletes, play counts, and playlist
// membership, with typed change notifications for read projections.
package library

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lemonstring/strum/internal/logger"
	"github.com/lemonstring/strum/internal/models"
	"github.com/lemonstring/strum/internal/store"
)

// Service handles business logic for library and playlist operations.
// A single mutex serializes every read-modify-write sequence so that
// overlapping operations (a song removal racing a playlist append)
// cannot interleave on the same record.
type Service struct {
	store         store.Store
	defaultVolume int

	mu       sync.Mutex
	notifier *notifier
}

// NewService creates a new library service instance
func NewService(st store.Store, defaultVolume int) *Service {
	return &Service{
		store:         st,
		defaultVolume: defaultVolume,
		notifier:      newNotifier(),
	}
}

// Subscribe registers a listener for library change events.
func (s *Service) Subscribe() chan Event {
	return s.notifier.subscribe()
}

// Unsubscribe removes a listener and closes its channel.
func (s *Service) Unsubscribe(ch chan Event) {
	s.notifier.unsubscribe(ch)
}

// HasSong reports whether the song is in the library.
func (s *Service) HasSong(ctx context.Context, id string) (bool, error) {
	_, err := s.store.Songs().Get(ctx, id)
	if err != nil {
		if store.IsNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check song: %w", err)
	}
	return true, nil
}

// GetSong retrieves a library song by ID.
func (s *Service) GetSong(ctx context.Context, id string) (*models.Song, error) {
	song, err := s.store.Songs().Get(ctx, id)
	if err != nil {
		if store.IsNotFound(err) {
			return nil, ErrSongNotFound
		}
		return nil, fmt.Errorf("failed to get song: %w", err)
	}
	return song, nil
}

// ListSongs retrieves all library songs in store enumeration order.
func (s *Service) ListSongs(ctx context.Context) ([]models.Song, error) {
	songs, err := s.store.Songs().GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list songs: %w", err)
	}
	return songs, nil
}

// AddSong expands a summary into a full Song and upserts it. Re-adding
// an already-present song resets its library metadata (addedAt reset,
// playCount back to zero).
func (s *Service) AddSong(ctx context.Context, summary models.SongSummary) (*models.Song, error) {
	song := models.NewSong(summary)

	if _, err := s.store.Songs().Put(ctx, song); err != nil {
		logger.Log.Error().
			Err(err).
			Str("song_id", summary.ID).
			Msg("Failed to add song to library")
		return nil, fmt.Errorf("failed to add song: %w", err)
	}

	logger.Log.Info().
		Str("song_id", song.ID).
		Str("title", song.Title).
		Msg("Song added to library")

	s.notifier.publish(Event{Kind: SongAdded, SongID: song.ID})
	return song, nil
}

// RemoveSong deletes the song and removes its ID from every playlist,
// bumping updated_at only for playlists actually modified.
func (s *Service) RemoveSong(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Songs().Delete(ctx, id); err != nil {
		logger.Log.Error().
			Err(err).
			Str("song_id", id).
			Msg("Failed to delete song")
		return fmt.Errorf("failed to remove song: %w", err)
	}

	playlists, err := s.store.Playlists().GetAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to remove song: %w", err)
	}

	for i := range playlists {
		if !playlists[i].SongIDs.Contains(id) {
			continue
		}
		updated := playlists[i].Clone()
		updated.SongIDs = updated.SongIDs.Without(id)
		updated.UpdatedAt = time.Now().UTC()

		if _, err := s.store.Playlists().Put(ctx, updated); err != nil {
			logger.Log.Error().
				Err(err).
				Str("song_id", id).
				Str("playlist_id", updated.ID.String()).
				Msg("Failed to remove song from playlist during cascade")
			return fmt.Errorf("failed to remove song: %w", err)
		}
		s.notifier.publish(Event{Kind: PlaylistUpdated, PlaylistID: updated.ID, SongID: id})
	}

	logger.Log.Info().
		Str("song_id", id).
		Msg("Song removed from library")

	s.notifier.publish(Event{Kind: SongRemoved, SongID: id})
	return nil
}

// UpdatePlayCount increments the song's play count and stamps last
// played. A song absent from the library is a no-op, not an error.
func (s *Service) UpdatePlayCount(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	song, err := s.store.Songs().Get(ctx, id)
	if err != nil {
		if store.IsNotFound(err) {
			return nil
		}
		return fmt.Errorf("failed to update play count: %w", err)
	}

	updated := *song
	updated.PlayCount++
	now := time.Now().UTC()
	updated.LastPlayed = &now

	if _, err := s.store.Songs().Put(ctx, &updated); err != nil {
		return fmt.Errorf("failed to update play count: %w", err)
	}

	logger.Log.Debug().
		Str("song_id", id).
		Int("play_count", updated.PlayCount).
		Msg("Play count updated")
	return nil
}

// SearchLocal returns songs whose title or artist contains the query,
// case-insensitively, preserving store enumeration order.
func (s *Service) SearchLocal(ctx context.Context, query string) ([]models.Song, error) {
	songs, err := s.store.Songs().GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to search library: %w", err)
	}

	lower := strings.ToLower(query)
	matches := make([]models.Song, 0)
	for _, song := range songs {
		if strings.Contains(strings.ToLower(song.Title), lower) ||
			strings.Contains(strings.ToLower(song.Artist), lower) {
			matches = append(matches, song)
		}
	}
	return matches, nil
}

// CreatePlaylist creates a new empty playlist.
func (s *Service) CreatePlaylist(ctx context.Context, name, description string) (*models.Playlist, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrEmptyName
	}

	playlist := models.NewPlaylist(name, description)
	if _, err := s.store.Playlists().Put(ctx, playlist); err != nil {
		logger.Log.Error().
			Err(err).
			Str("name", name).
			Msg("Failed to create playlist")
		return nil, fmt.Errorf("failed to create playlist: %w", err)
	}

	logger.Log.Info().
		Str("playlist_id", playlist.ID.String()).
		Str("name", playlist.Name).
		Msg("Playlist created")

	s.notifier.publish(Event{Kind: PlaylistCreated, PlaylistID: playlist.ID})
	return playlist, nil
}

// ListPlaylists retrieves all playlists.
func (s *Service) ListPlaylists(ctx context.Context) ([]models.Playlist, error) {
	playlists, err := s.store.Playlists().GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list playlists: %w", err)
	}
	return playlists, nil
}

// GetPlaylist retrieves a playlist by ID.
func (s *Service) GetPlaylist(ctx context.Context, id uuid.UUID) (*models.Playlist, error) {
	playlist, err := s.store.Playlists().Get(ctx, id)
	if err != nil {
		if store.IsNotFound(err) {
			return nil, ErrPlaylistNotFound
		}
		return nil, fmt.Errorf("failed to get playlist: %w", err)
	}
	return playlist, nil
}

// UpdatePlaylist renames a playlist and/or updates its description.
// Nil fields are left unchanged.
func (s *Service) UpdatePlaylist(ctx context.Context, id uuid.UUID, name, description *string) (*models.Playlist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	playlist, err := s.GetPlaylist(ctx, id)
	if err != nil {
		return nil, err
	}

	updated := playlist.Clone()
	if name != nil {
		if strings.TrimSpace(*name) == "" {
			return nil, ErrEmptyName
		}
		updated.Name = *name
	}
	if description != nil {
		updated.Description = *description
	}
	updated.UpdatedAt = time.Now().UTC()

	if _, err := s.store.Playlists().Put(ctx, updated); err != nil {
		return nil, fmt.Errorf("failed to update playlist: %w", err)
	}

	s.notifier.publish(Event{Kind: PlaylistUpdated, PlaylistID: id})
	return updated, nil
}

// DeletePlaylist removes a playlist. Songs it referenced are untouched.
func (s *Service) DeletePlaylist(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.GetPlaylist(ctx, id); err != nil {
		return err
	}

	if err := s.store.Playlists().Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete playlist: %w", err)
	}

	logger.Log.Info().
		Str("playlist_id", id.String()).
		Msg("Playlist deleted")

	s.notifier.publish(Event{Kind: PlaylistDeleted, PlaylistID: id})
	return nil
}

// AddSongToPlaylist appends the song ID to the end of the playlist.
// Adding an ID already present is a no-op, not an error. The song does
// not have to exist in the library; unknown IDs are filtered at read
// time like any other dangling reference.
func (s *Service) AddSongToPlaylist(ctx context.Context, playlistID uuid.UUID, songID string) (*models.Playlist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	playlist, err := s.GetPlaylist(ctx, playlistID)
	if err != nil {
		return nil, err
	}

	if playlist.SongIDs.Contains(songID) {
		return playlist, nil
	}

	updated := playlist.Clone()
	updated.SongIDs = append(updated.SongIDs, songID)
	updated.UpdatedAt = time.Now().UTC()

	if _, err := s.store.Playlists().Put(ctx, updated); err != nil {
		logger.Log.Error().
			Err(err).
			Str("playlist_id", playlistID.String()).
			Str("song_id", songID).
			Msg("Failed to add song to playlist")
		return nil, fmt.Errorf("failed to add song to playlist: %w", err)
	}

	s.notifier.publish(Event{Kind: PlaylistUpdated, PlaylistID: playlistID, SongID: songID})
	return updated, nil
}

// RemoveSongFromPlaylist removes every occurrence of the song ID.
func (s *Service) RemoveSongFromPlaylist(ctx context.Context, playlistID uuid.UUID, songID string) (*models.Playlist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	playlist, err := s.GetPlaylist(ctx, playlistID)
	if err != nil {
		return nil, err
	}

	updated := playlist.Clone()
	updated.SongIDs = updated.SongIDs.Without(songID)
	updated.UpdatedAt = time.Now().UTC()

	if _, err := s.store.Playlists().Put(ctx, updated); err != nil {
		return nil, fmt.Errorf("failed to remove song from playlist: %w", err)
	}

	s.notifier.publish(Event{Kind: PlaylistUpdated, PlaylistID: playlistID, SongID: songID})
	return updated, nil
}

// PlaylistWithSongs is a playlist with its song references resolved.
type PlaylistWithSongs struct {
	models.Playlist
	Songs []models.Song `json:"songs"`
}

// GetPlaylistWithSongs resolves each referenced song against the
// library, silently dropping IDs that no longer resolve and preserving
// the relative order of the rest.
func (s *Service) GetPlaylistWithSongs(ctx context.Context, id uuid.UUID) (*PlaylistWithSongs, error) {
	playlist, err := s.GetPlaylist(ctx, id)
	if err != nil {
		return nil, err
	}

	songs := make([]models.Song, 0, len(playlist.SongIDs))
	for _, songID := range playlist.SongIDs {
		song, err := s.store.Songs().Get(ctx, songID)
		if err != nil {
			if store.IsNotFound(err) {
				// Dangling reference, song was removed from the library
				continue
			}
			return nil, fmt.Errorf("failed to resolve playlist songs: %w", err)
		}
		songs = append(songs, *song)
	}

	return &PlaylistWithSongs{Playlist: *playlist, Songs: songs}, nil
}

// Volume reads the persisted volume setting, falling back to the
// configured default when unset or unreadable as a number.
func (s *Service) Volume(ctx context.Context) (int, error) {
	setting, err := s.store.Settings().Get(ctx, models.SettingVolume)
	if err != nil {
		if store.IsNotFound(err) {
			return s.defaultVolume, nil
		}
		return 0, fmt.Errorf("failed to read volume setting: %w", err)
	}

	v, err := strconv.Atoi(setting.Value)
	if err != nil || v < models.VolumeMin || v > models.VolumeMax {
		return s.defaultVolume, nil
	}
	return v, nil
}

// SetVolume persists the volume setting.
func (s *Service) SetVolume(ctx context.Context, volume int) error {
	if volume < models.VolumeMin || volume > models.VolumeMax {
		return ErrInvalidVolume
	}

	setting := &models.Setting{Key: models.SettingVolume, Value: strconv.Itoa(volume)}
	if _, err := s.store.Settings().Put(ctx, setting); err != nil {
		return fmt.Errorf("failed to persist volume setting: %w", err)
	}
	return nil
}
