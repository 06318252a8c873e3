package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lemonstring/strum/internal/library"
	"github.com/lemonstring/strum/internal/logger"
	"github.com/lemonstring/strum/internal/models"
)

// CreatePlaylistRequest represents a request to create a playlist
type CreatePlaylistRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// UpdatePlaylistRequest represents a request to rename or redescribe a playlist
type UpdatePlaylistRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

// PlaylistSongRequest represents a request to add or remove a playlist entry
type PlaylistSongRequest struct {
	SongID string `json:"song_id" binding:"required"`
}

// PlaylistListResponse represents all playlists
type PlaylistListResponse struct {
	Playlists []models.Playlist `json:"playlists"`
	Total     int               `json:"total"`
}

// PlaylistHandler handles playlist API requests
type PlaylistHandler struct {
	library *library.Service
}

// NewPlaylistHandler creates a new playlist handler instance
func NewPlaylistHandler(lib *library.Service) *PlaylistHandler {
	return &PlaylistHandler{library: lib}
}

func parsePlaylistID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_id",
			Message: "Invalid playlist ID format",
		})
		return uuid.Nil, false
	}
	return id, true
}

// ListPlaylists handles GET /api/playlists
func (h *PlaylistHandler) ListPlaylists(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	playlists, err := h.library.ListPlaylists(ctx)
	if err != nil {
		logger.Log.Error().
			Err(err).
			Msg("Failed to list playlists")

		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "query_failed",
			Message: "Failed to retrieve playlists",
		})
		return
	}

	c.JSON(http.StatusOK, PlaylistListResponse{
		Playlists: playlists,
		Total:     len(playlists),
	})
}

// CreatePlaylist handles POST /api/playlists
func (h *PlaylistHandler) CreatePlaylist(c *gin.Context) {
	var req CreatePlaylistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	playlist, err := h.library.CreatePlaylist(ctx, req.Name, req.Description)
	if err != nil {
		if library.IsEmptyName(err) {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "empty_name",
				Message: "Playlist name cannot be empty",
			})
			return
		}

		logger.Log.Error().
			Err(err).
			Str("name", req.Name).
			Msg("Failed to create playlist")

		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "save_failed",
			Message: "Failed to create playlist",
		})
		return
	}

	logger.Log.Info().
		Str("id", playlist.ID.String()).
		Str("name", playlist.Name).
		Msg("Playlist created")

	c.JSON(http.StatusCreated, playlist)
}

// GetPlaylist handles GET /api/playlists/:id
func (h *PlaylistHandler) GetPlaylist(c *gin.Context) {
	id, ok := parsePlaylistID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	playlist, err := h.library.GetPlaylistWithSongs(ctx, id)
	if err != nil {
		if library.IsPlaylistNotFound(err) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "not_found",
				Message: "Playlist not found",
			})
			return
		}

		logger.Log.Error().
			Err(err).
			Str("id", id.String()).
			Msg("Failed to get playlist")

		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "query_failed",
			Message: "Failed to retrieve playlist",
		})
		return
	}

	c.JSON(http.StatusOK, playlist)
}

// UpdatePlaylist handles PATCH /api/playlists/:id
func (h *PlaylistHandler) UpdatePlaylist(c *gin.Context) {
	id, ok := parsePlaylistID(c)
	if !ok {
		return
	}

	var req UpdatePlaylistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	playlist, err := h.library.UpdatePlaylist(ctx, id, req.Name, req.Description)
	if err != nil {
		switch {
		case library.IsPlaylistNotFound(err):
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "not_found",
				Message: "Playlist not found",
			})
		case library.IsEmptyName(err):
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "empty_name",
				Message: "Playlist name cannot be empty",
			})
		default:
			logger.Log.Error().
				Err(err).
				Str("id", id.String()).
				Msg("Failed to update playlist")

			c.JSON(http.StatusInternalServerError, ErrorResponse{
				Error:   "save_failed",
				Message: "Failed to update playlist",
			})
		}
		return
	}

	c.JSON(http.StatusOK, playlist)
}

// DeletePlaylist handles DELETE /api/playlists/:id
func (h *PlaylistHandler) DeletePlaylist(c *gin.Context) {
	id, ok := parsePlaylistID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.library.DeletePlaylist(ctx, id); err != nil {
		if library.IsPlaylistNotFound(err) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "not_found",
				Message: "Playlist not found",
			})
			return
		}

		logger.Log.Error().
			Err(err).
			Str("id", id.String()).
			Msg("Failed to delete playlist")

		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "delete_failed",
			Message: "Failed to delete playlist",
		})
		return
	}

	c.JSON(http.StatusOK, DeleteResponse{Message: "Playlist deleted"})
}

// AddSong handles POST /api/playlists/:id/songs
func (h *PlaylistHandler) AddSong(c *gin.Context) {
	id, ok := parsePlaylistID(c)
	if !ok {
		return
	}

	var req PlaylistSongRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	playlist, err := h.library.AddSongToPlaylist(ctx, id, req.SongID)
	if err != nil {
		if library.IsPlaylistNotFound(err) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "not_found",
				Message: "Playlist not found",
			})
			return
		}

		logger.Log.Error().
			Err(err).
			Str("id", id.String()).
			Str("song_id", req.SongID).
			Msg("Failed to add song to playlist")

		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "save_failed",
			Message: "Failed to add song to playlist",
		})
		return
	}

	c.JSON(http.StatusOK, playlist)
}

// RemoveSong handles DELETE /api/playlists/:id/songs/:songId
func (h *PlaylistHandler) RemoveSong(c *gin.Context) {
	id, ok := parsePlaylistID(c)
	if !ok {
		return
	}
	songID := c.Param("songId")

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	playlist, err := h.library.RemoveSongFromPlaylist(ctx, id, songID)
	if err != nil {
		if library.IsPlaylistNotFound(err) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "not_found",
				Message: "Playlist not found",
			})
			return
		}

		logger.Log.Error().
			Err(err).
			Str("id", id.String()).
			Str("song_id", songID).
			Msg("Failed to remove song from playlist")

		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "save_failed",
			Message: "Failed to remove song from playlist",
		})
		return
	}

	c.JSON(http.StatusOK, playlist)
}

// SetupPlaylistRoutes registers playlist routes
func SetupPlaylistRoutes(apiGroup *gin.RouterGroup, lib *library.Service) {
	handler := NewPlaylistHandler(lib)

	playlists := apiGroup.Group("/playlists")
	{
		playlists.GET("", handler.ListPlaylists)
		playlists.POST("", handler.CreatePlaylist)
		playlists.GET("/:id", handler.GetPlaylist)
		playlists.PATCH("/:id", handler.UpdatePlaylist)
		playlists.DELETE("/:id", handler.DeletePlaylist)
		playlists.POST("/:id/songs", handler.AddSong)
		playlists.DELETE("/:id/songs/:songId", handler.RemoveSong)
	}
}
