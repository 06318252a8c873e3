package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lemonstring/strum/internal/models"
)

// openBackends returns one store per backend so every test runs against
// both; behavior must be identical regardless of which one was selected.
func openBackends(t *testing.T) map[string]Store {
	t.Helper()

	sqlitePath := filepath.Join(t.TempDir(), "test.db")
	sqliteStore, err := OpenSQLite(sqlitePath, "file://../../migrations")
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqliteStore.Close() })

	flatStore, err := OpenFlat(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = flatStore.Close() })

	return map[string]Store{
		BackendSQLite: sqliteStore,
		BackendFlat:   flatStore,
	}
}

func testSong(id, title string) *models.Song {
	return &models.Song{
		ID:        id,
		Title:     title,
		Artist:    "Test Artist",
		Duration:  215,
		AddedAt:   time.Now().UTC().Truncate(time.Second),
		PlayCount: 0,
	}
}

func TestSongStore(t *testing.T) {
	for backend, st := range openBackends(t) {
		t.Run(backend, func(t *testing.T) {
			ctx := context.Background()
			songs := st.Songs()

			t.Run("Get missing song returns not found", func(t *testing.T) {
				_, err := songs.Get(ctx, "missing")
				assert.True(t, IsNotFound(err))
			})

			t.Run("Put and get round trip", func(t *testing.T) {
				song := testSong("abc123", "First Song")
				id, err := songs.Put(ctx, song)
				require.NoError(t, err)
				assert.Equal(t, "abc123", id)

				got, err := songs.Get(ctx, "abc123")
				require.NoError(t, err)
				assert.Equal(t, song.Title, got.Title)
				assert.Equal(t, song.Artist, got.Artist)
				assert.Equal(t, song.Duration, got.Duration)
			})

			t.Run("Put same ID replaces the record", func(t *testing.T) {
				song := testSong("abc123", "Renamed Song")
				song.PlayCount = 7
				_, err := songs.Put(ctx, song)
				require.NoError(t, err)

				got, err := songs.Get(ctx, "abc123")
				require.NoError(t, err)
				assert.Equal(t, "Renamed Song", got.Title)
				assert.Equal(t, 7, got.PlayCount)

				count, err := songs.Count(ctx)
				require.NoError(t, err)
				assert.Equal(t, int64(1), count)
			})

			t.Run("GetAll returns insertion order", func(t *testing.T) {
				older := testSong("older", "Older Song")
				older.AddedAt = time.Now().UTC().Add(-time.Hour).Truncate(time.Second)
				_, err := songs.Put(ctx, older)
				require.NoError(t, err)

				all, err := songs.GetAll(ctx)
				require.NoError(t, err)
				require.Len(t, all, 2)
				assert.Equal(t, "older", all[0].ID)
				assert.Equal(t, "abc123", all[1].ID)
			})

			t.Run("Delete absent ID is not an error", func(t *testing.T) {
				err := songs.Delete(ctx, "never-existed")
				assert.NoError(t, err)
			})

			t.Run("Delete removes the record", func(t *testing.T) {
				err := songs.Delete(ctx, "older")
				require.NoError(t, err)

				_, err = songs.Get(ctx, "older")
				assert.True(t, IsNotFound(err))
			})

			t.Run("Clear empties the collection", func(t *testing.T) {
				err := songs.Clear(ctx)
				require.NoError(t, err)

				all, err := songs.GetAll(ctx)
				require.NoError(t, err)
				assert.Empty(t, all)
			})
		})
	}
}

func TestPlaylistStore(t *testing.T) {
	for backend, st := range openBackends(t) {
		t.Run(backend, func(t *testing.T) {
			ctx := context.Background()
			playlists := st.Playlists()

			playlist := models.NewPlaylist("Road Trip", "Long drives")
			playlist.SongIDs = models.StringList{"a", "b", "c"}

			t.Run("Put and get preserves song order", func(t *testing.T) {
				id, err := playlists.Put(ctx, playlist)
				require.NoError(t, err)
				assert.Equal(t, playlist.ID, id)

				got, err := playlists.Get(ctx, playlist.ID)
				require.NoError(t, err)
				assert.Equal(t, "Road Trip", got.Name)
				assert.Equal(t, models.StringList{"a", "b", "c"}, got.SongIDs)
			})

			t.Run("Put replaces the whole record", func(t *testing.T) {
				updated := playlist.Clone()
				updated.Name = "Road Trip 2"
				updated.SongIDs = models.StringList{"c", "a"}
				_, err := playlists.Put(ctx, updated)
				require.NoError(t, err)

				got, err := playlists.Get(ctx, playlist.ID)
				require.NoError(t, err)
				assert.Equal(t, "Road Trip 2", got.Name)
				assert.Equal(t, models.StringList{"c", "a"}, got.SongIDs)
			})

			t.Run("Get missing playlist returns not found", func(t *testing.T) {
				_, err := playlists.Get(ctx, uuid.New())
				assert.True(t, IsNotFound(err))
			})

			t.Run("Delete absent ID is not an error", func(t *testing.T) {
				err := playlists.Delete(ctx, uuid.New())
				assert.NoError(t, err)
			})

			t.Run("Delete removes the record", func(t *testing.T) {
				err := playlists.Delete(ctx, playlist.ID)
				require.NoError(t, err)

				count, err := playlists.Count(ctx)
				require.NoError(t, err)
				assert.Equal(t, int64(0), count)
			})
		})
	}
}

func TestSettingStore(t *testing.T) {
	for backend, st := range openBackends(t) {
		t.Run(backend, func(t *testing.T) {
			ctx := context.Background()
			settings := st.Settings()

			t.Run("Get missing setting returns not found", func(t *testing.T) {
				_, err := settings.Get(ctx, models.SettingVolume)
				assert.True(t, IsNotFound(err))
			})

			t.Run("Put and get round trip", func(t *testing.T) {
				_, err := settings.Put(ctx, &models.Setting{Key: models.SettingVolume, Value: "55"})
				require.NoError(t, err)

				got, err := settings.Get(ctx, models.SettingVolume)
				require.NoError(t, err)
				assert.Equal(t, "55", got.Value)
			})

			t.Run("Put overwrites the value", func(t *testing.T) {
				_, err := settings.Put(ctx, &models.Setting{Key: models.SettingVolume, Value: "80"})
				require.NoError(t, err)

				got, err := settings.Get(ctx, models.SettingVolume)
				require.NoError(t, err)
				assert.Equal(t, "80", got.Value)
			})
		})
	}
}

func TestOpenFallsBackToFlat(t *testing.T) {
	// An unusable sqlite path forces the flat backend. The path points
	// at a file used as a directory, which can never be created.
	tmp := t.TempDir()
	blocker := filepath.Join(tmp, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	st, err := Open(Options{
		Path:           filepath.Join(blocker, "nested", "db.sqlite"),
		MigrationsPath: "file://../../migrations",
		FallbackDir:    filepath.Join(tmp, "flat"),
	})
	require.NoError(t, err)
	defer st.Close()

	assert.Equal(t, BackendFlat, st.Backend())
	assert.NoError(t, st.Health(context.Background()))

	// The fallback must be fully usable.
	_, err = st.Songs().Put(context.Background(), testSong("x", "Fallback Song"))
	require.NoError(t, err)

	got, err := st.Songs().Get(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, "Fallback Song", got.Title)
}

func TestLazyOpensOnceAndRetries(t *testing.T) {
	calls := 0
	failing := NewLazy(func() (Store, error) {
		calls++
		if calls == 1 {
			return nil, assert.AnError
		}
		return OpenFlat(t.TempDir())
	})

	_, err := failing.Get()
	require.Error(t, err)

	st, err := failing.Get()
	require.NoError(t, err)
	defer st.Close()

	// Subsequent calls reuse the opened store.
	again, err := failing.Get()
	require.NoError(t, err)
	assert.Same(t, st, again)
	assert.Equal(t, 2, calls)
}

func TestFlatStoreClosed(t *testing.T) {
	st, err := OpenFlat(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, st.Close())

	_, err = st.Songs().GetAll(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
}
