package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lemonstring/strum/internal/library"
	"github.com/lemonstring/strum/internal/logger"
	"github.com/lemonstring/strum/internal/models"
)

// Request/Response DTOs

// AddSongRequest represents a request to save a song to the library
type AddSongRequest struct {
	ID        string  `json:"id" binding:"required"`
	Title     string  `json:"title" binding:"required"`
	Artist    string  `json:"artist"`
	Thumbnail *string `json:"thumbnail,omitempty"`
	Duration  int64   `json:"duration"`
}

// SongListResponse represents the full song library
type SongListResponse struct {
	Songs []models.Song `json:"songs"`
	Total int           `json:"total"`
}

// DeleteResponse represents a successful delete operation
type DeleteResponse struct {
	Message string `json:"message"`
}

// SongHandler handles song library API requests
type SongHandler struct {
	library *library.Service
}

// NewSongHandler creates a new song handler instance
func NewSongHandler(lib *library.Service) *SongHandler {
	return &SongHandler{library: lib}
}

// ListSongs handles GET /api/songs
func (h *SongHandler) ListSongs(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	songs, err := h.library.ListSongs(ctx)
	if err != nil {
		logger.Log.Error().
			Err(err).
			Msg("Failed to list songs")

		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "query_failed",
			Message: "Failed to retrieve songs",
		})
		return
	}

	c.JSON(http.StatusOK, SongListResponse{
		Songs: songs,
		Total: len(songs),
	})
}

// SearchSongs handles GET /api/songs/search
func (h *SongHandler) SearchSongs(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "missing_query",
			Message: "Query parameter 'q' is required",
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	songs, err := h.library.SearchLocal(ctx, query)
	if err != nil {
		logger.Log.Error().
			Err(err).
			Str("query", query).
			Msg("Failed to search songs")

		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "query_failed",
			Message: "Failed to search songs",
		})
		return
	}

	c.JSON(http.StatusOK, SongListResponse{
		Songs: songs,
		Total: len(songs),
	})
}

// GetSong handles GET /api/songs/:id
func (h *SongHandler) GetSong(c *gin.Context) {
	id := c.Param("id")

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	song, err := h.library.GetSong(ctx, id)
	if err != nil {
		if library.IsSongNotFound(err) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "not_found",
				Message: "Song not found",
			})
			return
		}

		logger.Log.Error().
			Err(err).
			Str("id", id).
			Msg("Failed to get song")

		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "query_failed",
			Message: "Failed to retrieve song",
		})
		return
	}

	c.JSON(http.StatusOK, song)
}

// AddSong handles POST /api/songs
func (h *SongHandler) AddSong(c *gin.Context) {
	var req AddSongRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	song, err := h.library.AddSong(ctx, models.SongSummary{
		ID:        req.ID,
		Title:     req.Title,
		Artist:    req.Artist,
		Thumbnail: req.Thumbnail,
		Duration:  req.Duration,
	})
	if err != nil {
		logger.Log.Error().
			Err(err).
			Str("id", req.ID).
			Msg("Failed to add song")

		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "save_failed",
			Message: "Failed to save song",
		})
		return
	}

	logger.Log.Info().
		Str("id", song.ID).
		Str("title", song.Title).
		Msg("Song added to library")

	c.JSON(http.StatusCreated, song)
}

// DeleteSong handles DELETE /api/songs/:id
func (h *SongHandler) DeleteSong(c *gin.Context) {
	id := c.Param("id")

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.library.RemoveSong(ctx, id); err != nil {
		logger.Log.Error().
			Err(err).
			Str("id", id).
			Msg("Failed to delete song")

		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "delete_failed",
			Message: "Failed to delete song",
		})
		return
	}

	c.JSON(http.StatusOK, DeleteResponse{Message: "Song deleted"})
}

// SetupSongRoutes registers song library routes
func SetupSongRoutes(apiGroup *gin.RouterGroup, lib *library.Service) {
	handler := NewSongHandler(lib)

	songs := apiGroup.Group("/songs")
	{
		songs.GET("", handler.ListSongs)
		songs.POST("", handler.AddSong)
		songs.GET("/search", handler.SearchSongs)
		songs.GET("/:id", handler.GetSong)
		songs.DELETE("/:id", handler.DeleteSong)
	}
}
