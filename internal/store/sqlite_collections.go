package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/lemonstring/strum/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// sqliteSongs handles song persistence on the sqlite backend
type sqliteSongs struct {
	db *gorm.DB
}

// GetAll retrieves all songs in insertion order
func (r *sqliteSongs) GetAll(ctx context.Context) ([]models.Song, error) {
	var songs []models.Song
	result := r.db.WithContext(ctx).Order("added_at ASC, id ASC").Find(&songs)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list songs: %w", MapGormError(result.Error))
	}
	return songs, nil
}

// Get retrieves a song by its ID
func (r *sqliteSongs) Get(ctx context.Context, id string) (*models.Song, error) {
	var song models.Song
	result := r.db.WithContext(ctx).Where("id = ?", id).First(&song)
	if result.Error != nil {
		return nil, MapGormError(result.Error)
	}
	return &song, nil
}

// Put upserts a song by ID, replacing the full record
func (r *sqliteSongs) Put(ctx context.Context, song *models.Song) (string, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(song)
	if result.Error != nil {
		return "", fmt.Errorf("failed to put song: %w", MapGormError(result.Error))
	}
	return song.ID, nil
}

// Delete removes a song by ID. Absent IDs are not an error.
func (r *sqliteSongs) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Song{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete song: %w", MapGormError(result.Error))
	}
	return nil
}

// Clear removes all songs
func (r *sqliteSongs) Clear(ctx context.Context) error {
	result := r.db.WithContext(ctx).Where("1 = 1").Delete(&models.Song{})
	if result.Error != nil {
		return fmt.Errorf("failed to clear songs: %w", MapGormError(result.Error))
	}
	return nil
}

// Count returns the total number of songs
func (r *sqliteSongs) Count(ctx context.Context) (int64, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&models.Song{}).Count(&count)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to count songs: %w", MapGormError(result.Error))
	}
	return count, nil
}

// sqlitePlaylists handles playlist persistence on the sqlite backend
type sqlitePlaylists struct {
	db *gorm.DB
}

// GetAll retrieves all playlists ordered by creation time
func (r *sqlitePlaylists) GetAll(ctx context.Context) ([]models.Playlist, error) {
	var playlists []models.Playlist
	result := r.db.WithContext(ctx).Order("created_at ASC, id ASC").Find(&playlists)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list playlists: %w", MapGormError(result.Error))
	}
	return playlists, nil
}

// Get retrieves a playlist by its UUID
func (r *sqlitePlaylists) Get(ctx context.Context, id uuid.UUID) (*models.Playlist, error) {
	var playlist models.Playlist
	result := r.db.WithContext(ctx).Where("id = ?", id.String()).First(&playlist)
	if result.Error != nil {
		return nil, MapGormError(result.Error)
	}
	return &playlist, nil
}

// Put upserts a playlist by ID, replacing the full record
func (r *sqlitePlaylists) Put(ctx context.Context, playlist *models.Playlist) (uuid.UUID, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(playlist)
	if result.Error != nil {
		return uuid.Nil, fmt.Errorf("failed to put playlist: %w", MapGormError(result.Error))
	}
	return playlist.ID, nil
}

// Delete removes a playlist by ID. Absent IDs are not an error.
func (r *sqlitePlaylists) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id.String()).Delete(&models.Playlist{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete playlist: %w", MapGormError(result.Error))
	}
	return nil
}

// Clear removes all playlists
func (r *sqlitePlaylists) Clear(ctx context.Context) error {
	result := r.db.WithContext(ctx).Where("1 = 1").Delete(&models.Playlist{})
	if result.Error != nil {
		return fmt.Errorf("failed to clear playlists: %w", MapGormError(result.Error))
	}
	return nil
}

// Count returns the total number of playlists
func (r *sqlitePlaylists) Count(ctx context.Context) (int64, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&models.Playlist{}).Count(&count)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to count playlists: %w", MapGormError(result.Error))
	}
	return count, nil
}

// sqliteSettings handles setting persistence on the sqlite backend
type sqliteSettings struct {
	db *gorm.DB
}

// GetAll retrieves all settings
func (r *sqliteSettings) GetAll(ctx context.Context) ([]models.Setting, error) {
	var settings []models.Setting
	result := r.db.WithContext(ctx).Order("key ASC").Find(&settings)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list settings: %w", MapGormError(result.Error))
	}
	return settings, nil
}

// Get retrieves a setting by key
func (r *sqliteSettings) Get(ctx context.Context, key string) (*models.Setting, error) {
	var setting models.Setting
	result := r.db.WithContext(ctx).Where("key = ?", key).First(&setting)
	if result.Error != nil {
		return nil, MapGormError(result.Error)
	}
	return &setting, nil
}

// Put upserts a setting by key
func (r *sqliteSettings) Put(ctx context.Context, setting *models.Setting) (string, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(setting)
	if result.Error != nil {
		return "", fmt.Errorf("failed to put setting: %w", MapGormError(result.Error))
	}
	return setting.Key, nil
}

// Delete removes a setting by key. Absent keys are not an error.
func (r *sqliteSettings) Delete(ctx context.Context, key string) error {
	result := r.db.WithContext(ctx).Where("key = ?", key).Delete(&models.Setting{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete setting: %w", MapGormError(result.Error))
	}
	return nil
}

// Clear removes all settings
func (r *sqliteSettings) Clear(ctx context.Context) error {
	result := r.db.WithContext(ctx).Where("1 = 1").Delete(&models.Setting{})
	if result.Error != nil {
		return fmt.Errorf("failed to clear settings: %w", MapGormError(result.Error))
	}
	return nil
}

// Count returns the total number of settings
func (r *sqliteSettings) Count(ctx context.Context) (int64, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&models.Setting{}).Count(&count)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to count settings: %w", MapGormError(result.Error))
	}
	return count, nil
}
