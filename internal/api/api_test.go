package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lemonstring/strum/internal/library"
	"github.com/lemonstring/strum/internal/models"
	"github.com/lemonstring/strum/internal/player"
	"github.com/lemonstring/strum/internal/search"
	"github.com/lemonstring/strum/internal/store"
)

func setupTestStore(t *testing.T) store.Store {
	t.Helper()

	st, err := store.OpenFlat(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

// setupTestRouter wires the full API surface over a flat test store.
func setupTestRouter(t *testing.T) (*gin.Engine, *library.Service, *player.Player) {
	t.Helper()

	gin.SetMode(gin.TestMode)

	st := setupTestStore(t)
	lib := library.NewService(st, models.VolumeDefault)
	p := player.New(player.NopSink{}, lib, player.Options{})
	sc := search.NewClient(search.Options{})

	router := gin.New()
	apiGroup := router.Group("/api")
	SetupHealthRoutes(apiGroup, st, sc, time.Now())
	SetupSearchRoutes(apiGroup, sc)
	SetupSongRoutes(apiGroup, lib)
	SetupPlaylistRoutes(apiGroup, lib)
	SetupPlayerRoutes(apiGroup, p, lib)
	return router, lib, p
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func addTestSong(t *testing.T, lib *library.Service, id, title string) {
	t.Helper()

	_, err := lib.AddSong(context.Background(), models.SongSummary{
		ID:    id,
		Title: title,
	})
	require.NoError(t, err)
}

func TestHealthEndpoint(t *testing.T) {
	router, _, _ := setupTestRouter(t)

	w := doJSON(t, router, "GET", "/api/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "healthy", resp.Store)
	assert.Equal(t, store.BackendFlat, resp.StoreBackend)
	assert.Equal(t, "unavailable", resp.Search)
}

func TestSearchEndpoint(t *testing.T) {
	router, _, _ := setupTestRouter(t)

	t.Run("Missing query returns error", func(t *testing.T) {
		w := doJSON(t, router, "GET", "/api/search", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		var resp ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "missing_query", resp.Error)
	})

	t.Run("Unavailable collaborator returns 503", func(t *testing.T) {
		w := doJSON(t, router, "GET", "/api/search?q=test", nil)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)

		var resp ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "search_unavailable", resp.Error)
	})

	t.Run("Download without a song ID returns error", func(t *testing.T) {
		w := doJSON(t, router, "POST", "/api/download", map[string]string{"title": "x"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestSongEndpoints(t *testing.T) {
	router, lib, _ := setupTestRouter(t)

	t.Run("Add song", func(t *testing.T) {
		w := doJSON(t, router, "POST", "/api/songs", AddSongRequest{
			ID:       "vid1",
			Title:    "First Song",
			Artist:   "Test Artist",
			Duration: 180,
		})
		assert.Equal(t, http.StatusCreated, w.Code)

		var song models.Song
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &song))
		assert.Equal(t, "vid1", song.ID)
		assert.Equal(t, 0, song.PlayCount)
	})

	t.Run("Add song without ID is rejected", func(t *testing.T) {
		w := doJSON(t, router, "POST", "/api/songs", map[string]string{"title": "No ID"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("List songs", func(t *testing.T) {
		w := doJSON(t, router, "GET", "/api/songs", nil)
		assert.Equal(t, http.StatusOK, w.Code)

		var resp SongListResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, 1, resp.Total)
	})

	t.Run("Local search filters by query", func(t *testing.T) {
		addTestSong(t, lib, "vid2", "Completely Different")

		w := doJSON(t, router, "GET", "/api/songs/search?q=first", nil)
		assert.Equal(t, http.StatusOK, w.Code)

		var resp SongListResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Equal(t, 1, resp.Total)
		assert.Equal(t, "vid1", resp.Songs[0].ID)
	})

	t.Run("Get song", func(t *testing.T) {
		w := doJSON(t, router, "GET", "/api/songs/vid1", nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Get missing song returns 404", func(t *testing.T) {
		w := doJSON(t, router, "GET", "/api/songs/missing", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)

		var resp ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "not_found", resp.Error)
	})

	t.Run("Delete song", func(t *testing.T) {
		w := doJSON(t, router, "DELETE", "/api/songs/vid1", nil)
		assert.Equal(t, http.StatusOK, w.Code)

		w = doJSON(t, router, "GET", "/api/songs/vid1", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Delete absent song is not an error", func(t *testing.T) {
		w := doJSON(t, router, "DELETE", "/api/songs/never-existed", nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestPlaylistEndpoints(t *testing.T) {
	router, lib, _ := setupTestRouter(t)

	addTestSong(t, lib, "a", "Song A")
	addTestSong(t, lib, "b", "Song B")

	var created models.Playlist

	t.Run("Create playlist", func(t *testing.T) {
		w := doJSON(t, router, "POST", "/api/playlists", CreatePlaylistRequest{
			Name:        "Favorites",
			Description: "The good ones",
		})
		assert.Equal(t, http.StatusCreated, w.Code)
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
		assert.NotEqual(t, uuid.Nil, created.ID)
	})

	t.Run("Create without a name is rejected", func(t *testing.T) {
		w := doJSON(t, router, "POST", "/api/playlists", map[string]string{"description": "x"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Invalid playlist ID returns 400", func(t *testing.T) {
		w := doJSON(t, router, "GET", "/api/playlists/not-a-uuid", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		var resp ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "invalid_id", resp.Error)
	})

	t.Run("Add songs to playlist", func(t *testing.T) {
		path := fmt.Sprintf("/api/playlists/%s/songs", created.ID)
		w := doJSON(t, router, "POST", path, PlaylistSongRequest{SongID: "a"})
		assert.Equal(t, http.StatusOK, w.Code)
		w = doJSON(t, router, "POST", path, PlaylistSongRequest{SongID: "b"})
		assert.Equal(t, http.StatusOK, w.Code)

		var playlist models.Playlist
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &playlist))
		assert.Equal(t, models.StringList{"a", "b"}, playlist.SongIDs)
	})

	t.Run("Get playlist resolves songs in order", func(t *testing.T) {
		w := doJSON(t, router, "GET", "/api/playlists/"+created.ID.String(), nil)
		assert.Equal(t, http.StatusOK, w.Code)

		var resp library.PlaylistWithSongs
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Len(t, resp.Songs, 2)
		assert.Equal(t, "a", resp.Songs[0].ID)
		assert.Equal(t, "b", resp.Songs[1].ID)
	})

	t.Run("Rename playlist", func(t *testing.T) {
		name := "Best Of"
		w := doJSON(t, router, "PATCH", "/api/playlists/"+created.ID.String(), UpdatePlaylistRequest{Name: &name})
		assert.Equal(t, http.StatusOK, w.Code)

		var playlist models.Playlist
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &playlist))
		assert.Equal(t, "Best Of", playlist.Name)
	})

	t.Run("Remove song from playlist", func(t *testing.T) {
		path := fmt.Sprintf("/api/playlists/%s/songs/a", created.ID)
		w := doJSON(t, router, "DELETE", path, nil)
		assert.Equal(t, http.StatusOK, w.Code)

		var playlist models.Playlist
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &playlist))
		assert.Equal(t, models.StringList{"b"}, playlist.SongIDs)
	})

	t.Run("Missing playlist returns 404", func(t *testing.T) {
		w := doJSON(t, router, "GET", "/api/playlists/"+uuid.NewString(), nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Delete playlist", func(t *testing.T) {
		w := doJSON(t, router, "DELETE", "/api/playlists/"+created.ID.String(), nil)
		assert.Equal(t, http.StatusOK, w.Code)

		w = doJSON(t, router, "GET", "/api/playlists/"+created.ID.String(), nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestPlayerEndpoints(t *testing.T) {
	router, lib, _ := setupTestRouter(t)

	addTestSong(t, lib, "a", "Song A")
	addTestSong(t, lib, "b", "Song B")

	t.Run("Initial state is idle", func(t *testing.T) {
		w := doJSON(t, router, "GET", "/api/player", nil)
		assert.Equal(t, http.StatusOK, w.Code)

		var snap player.Snapshot
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
		assert.Equal(t, player.StateIdle, snap.State)
		assert.Equal(t, -1, snap.CurrentIndex)
	})

	t.Run("Toggle with no song returns conflict", func(t *testing.T) {
		w := doJSON(t, router, "POST", "/api/player/toggle", nil)
		assert.Equal(t, http.StatusConflict, w.Code)

		var resp ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "no_song", resp.Error)
	})

	t.Run("Play with the library as context", func(t *testing.T) {
		w := doJSON(t, router, "POST", "/api/player/play", PlayRequest{
			Song:    PlaySong{ID: "a", Title: "Song A"},
			Library: true,
		})
		assert.Equal(t, http.StatusOK, w.Code)

		var snap player.Snapshot
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
		assert.Equal(t, player.StateLoaded, snap.State)
		require.NotNil(t, snap.Current)
		assert.Equal(t, "a", snap.Current.ID)
		assert.Len(t, snap.Queue, 2)
	})

	t.Run("Play with an explicit queue", func(t *testing.T) {
		w := doJSON(t, router, "POST", "/api/player/play", PlayRequest{
			Song: PlaySong{ID: "x", Title: "Search Result"},
			Queue: []PlaySong{
				{ID: "x", Title: "Search Result"},
				{ID: "y", Title: "Another Result"},
			},
		})
		assert.Equal(t, http.StatusOK, w.Code)

		var snap player.Snapshot
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
		assert.Equal(t, 0, snap.CurrentIndex)
		assert.Len(t, snap.Queue, 2)
	})

	t.Run("Play from a missing playlist returns 404", func(t *testing.T) {
		id := uuid.New()
		w := doJSON(t, router, "POST", "/api/player/play", PlayRequest{
			Song:       PlaySong{ID: "a"},
			PlaylistID: &id,
		})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Next and previous move through the queue", func(t *testing.T) {
		w := doJSON(t, router, "POST", "/api/player/next", nil)
		assert.Equal(t, http.StatusOK, w.Code)

		var snap player.Snapshot
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
		assert.Equal(t, "y", snap.Current.ID)

		w = doJSON(t, router, "POST", "/api/player/previous", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
		assert.Equal(t, "x", snap.Current.ID)
	})

	t.Run("Repeat cycles modes", func(t *testing.T) {
		w := doJSON(t, router, "POST", "/api/player/repeat", nil)
		assert.Equal(t, http.StatusOK, w.Code)

		var resp RepeatResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, player.RepeatAll, resp.Repeat)
	})

	t.Run("Shuffle keeps the current song", func(t *testing.T) {
		w := doJSON(t, router, "POST", "/api/player/shuffle", nil)
		assert.Equal(t, http.StatusOK, w.Code)

		var snap player.Snapshot
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
		assert.True(t, snap.Shuffled)
		assert.Equal(t, "x", snap.Current.ID)
		assert.Equal(t, 0, snap.CurrentIndex)
	})

	t.Run("Seek without a body is rejected", func(t *testing.T) {
		w := doJSON(t, router, "POST", "/api/player/seek", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Volume round trip", func(t *testing.T) {
		volume := 35
		w := doJSON(t, router, "PUT", "/api/player/volume", VolumeRequest{Volume: &volume})
		assert.Equal(t, http.StatusOK, w.Code)

		w = doJSON(t, router, "GET", "/api/player/volume", nil)
		assert.Equal(t, http.StatusOK, w.Code)

		var resp VolumeResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, 35, resp.Volume)
	})

	t.Run("Volume out of range is rejected", func(t *testing.T) {
		volume := 150
		w := doJSON(t, router, "PUT", "/api/player/volume", VolumeRequest{Volume: &volume})
		assert.Equal(t, http.StatusBadRequest, w.Code)

		var resp ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "invalid_volume", resp.Error)
	})
}
