package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{"Plain title", "My Song", "my_song"},
		{"Special characters collapse", "Song! (Live) [2020]", "song_live_2020"},
		{"Already safe", "track-01.mp3", "track-01.mp3"},
		{"Unicode stripped", "Cançión", "can_i_n"},
		{"Nothing safe falls back", "!!!", "download"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeFilename(tt.title))
		})
	}
}

func TestClientDefaults(t *testing.T) {
	c := NewClient(Options{})
	assert.Equal(t, 20, c.opts.MaxResults)
	assert.NotZero(t, c.opts.Timeout)
	assert.NotZero(t, c.opts.DownloadTimeout)
}

func TestUncheckedClientIsUnavailable(t *testing.T) {
	c := NewClient(Options{})
	assert.False(t, c.Available())

	_, err := c.Search(context.Background(), "query")
	require.Error(t, err)
	assert.True(t, IsUnavailable(err))

	_, err = c.Download(context.Background(), "id", "title")
	require.Error(t, err)
	assert.True(t, IsUnavailable(err))
}

func TestMarkAvailable(t *testing.T) {
	c := NewClient(Options{})
	c.markAvailable(true)
	assert.True(t, c.Available())

	c.markAvailable(false)
	assert.False(t, c.Available())
}
