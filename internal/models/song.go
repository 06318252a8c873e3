package models

import (
	"time"
)

// Song represents a track saved to the local library.
// The ID is the platform video ID, so the same song added twice
// collapses onto one record.
type Song struct {
	ID         string     `json:"id" gorm:"type:text;primaryKey;column:id" validate:"required"`
	Title      string     `json:"title" gorm:"type:text;not null;column:title" validate:"required"`
	Artist     string     `json:"artist" gorm:"type:text;not null;column:artist"`
	Thumbnail  *string    `json:"thumbnail,omitempty" gorm:"type:text;column:thumbnail"`
	Duration   int64      `json:"duration" gorm:"type:integer;not null;default:0;column:duration"` // seconds
	AddedAt    time.Time  `json:"added_at" gorm:"type:datetime;default:CURRENT_TIMESTAMP;column:added_at"`
	PlayCount  int        `json:"play_count" gorm:"type:integer;not null;default:0;column:play_count"`
	LastPlayed *time.Time `json:"last_played,omitempty" gorm:"type:datetime;column:last_played"`
}

// SongSummary is the minimal shape a search result carries.
// Adding one to the library expands it into a full Song.
type SongSummary struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	Artist    string  `json:"artist"`
	Thumbnail *string `json:"thumbnail,omitempty"`
	Duration  int64   `json:"duration"`
}

// NewSong creates a library Song from a summary, stamping library metadata.
func NewSong(summary SongSummary) *Song {
	return &Song{
		ID:        summary.ID,
		Title:     summary.Title,
		Artist:    summary.Artist,
		Thumbnail: summary.Thumbnail,
		Duration:  summary.Duration,
		AddedAt:   time.Now().UTC(),
		PlayCount: 0,
	}
}

// DurationString returns duration in MM:SS or HH:MM:SS format.
func (s *Song) DurationString() string {
	return FormatDuration(s.Duration)
}
