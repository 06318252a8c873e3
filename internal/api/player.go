package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lemonstring/strum/internal/library"
	"github.com/lemonstring/strum/internal/logger"
	"github.com/lemonstring/strum/internal/models"
	"github.com/lemonstring/strum/internal/player"
)

// PlaySong is the wire shape of a queue entry in a play request.
type PlaySong struct {
	ID        string  `json:"id" binding:"required"`
	Title     string  `json:"title"`
	Artist    string  `json:"artist"`
	Thumbnail *string `json:"thumbnail,omitempty"`
	Duration  int64   `json:"duration"`
}

// PlayRequest represents a request to start playback. The play context
// becomes the new queue and comes from exactly one optional source:
// an explicit song list (search results), a playlist, or the whole
// library. With no source the current queue is kept.
type PlayRequest struct {
	Song       PlaySong   `json:"song" binding:"required"`
	Queue      []PlaySong `json:"queue,omitempty"`
	PlaylistID *uuid.UUID `json:"playlist_id,omitempty"`
	Library    bool       `json:"library,omitempty"`
}

// RepeatResponse reports the repeat mode after a toggle
type RepeatResponse struct {
	Repeat player.RepeatMode `json:"repeat"`
}

// SeekRequest represents a seek to a fraction of the song duration
type SeekRequest struct {
	Fraction *float64 `json:"fraction" binding:"required"`
}

// VolumeRequest represents a volume change
type VolumeRequest struct {
	Volume *int `json:"volume" binding:"required"`
}

// VolumeResponse reports the persisted volume
type VolumeResponse struct {
	Volume int `json:"volume"`
}

// PlayerHandler handles playback control API requests
type PlayerHandler struct {
	player  *player.Player
	library *library.Service
}

// NewPlayerHandler creates a new player handler instance
func NewPlayerHandler(p *player.Player, lib *library.Service) *PlayerHandler {
	return &PlayerHandler{player: p, library: lib}
}

func playSongToModel(s PlaySong) models.Song {
	return models.Song{
		ID:        s.ID,
		Title:     s.Title,
		Artist:    s.Artist,
		Thumbnail: s.Thumbnail,
		Duration:  s.Duration,
	}
}

// GetState handles GET /api/player
func (h *PlayerHandler) GetState(c *gin.Context) {
	c.JSON(http.StatusOK, h.player.Snapshot())
}

// Play handles POST /api/player/play
func (h *PlayerHandler) Play(c *gin.Context) {
	var req PlayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	playContext, ok := h.resolvePlayContext(ctx, c, req)
	if !ok {
		return
	}

	if err := h.player.Play(ctx, playSongToModel(req.Song), playContext); err != nil {
		logger.Log.Error().
			Err(err).
			Str("song_id", req.Song.ID).
			Msg("Failed to start playback")

		c.JSON(http.StatusBadGateway, ErrorResponse{
			Error:   "playback_failed",
			Message: "The media sink rejected the song",
		})
		return
	}

	c.JSON(http.StatusOK, h.player.Snapshot())
}

// resolvePlayContext turns the request's context source into a song
// list, or nil to keep the current queue. It writes the error response
// itself and reports false when resolution fails.
func (h *PlayerHandler) resolvePlayContext(ctx context.Context, c *gin.Context, req PlayRequest) ([]models.Song, bool) {
	switch {
	case req.Queue != nil:
		songs := make([]models.Song, len(req.Queue))
		for i, s := range req.Queue {
			songs[i] = playSongToModel(s)
		}
		return songs, true

	case req.PlaylistID != nil:
		resolved, err := h.library.GetPlaylistWithSongs(ctx, *req.PlaylistID)
		if err != nil {
			if library.IsPlaylistNotFound(err) {
				c.JSON(http.StatusNotFound, ErrorResponse{
					Error:   "not_found",
					Message: "Playlist not found",
				})
				return nil, false
			}

			logger.Log.Error().
				Err(err).
				Str("playlist_id", req.PlaylistID.String()).
				Msg("Failed to resolve playlist for playback")

			c.JSON(http.StatusInternalServerError, ErrorResponse{
				Error:   "query_failed",
				Message: "Failed to resolve playlist",
			})
			return nil, false
		}
		return resolved.Songs, true

	case req.Library:
		songs, err := h.library.ListSongs(ctx)
		if err != nil {
			logger.Log.Error().
				Err(err).
				Msg("Failed to resolve library for playback")

			c.JSON(http.StatusInternalServerError, ErrorResponse{
				Error:   "query_failed",
				Message: "Failed to resolve library",
			})
			return nil, false
		}
		return songs, true
	}

	return nil, true
}

// Next handles POST /api/player/next
func (h *PlayerHandler) Next(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.player.Next(ctx); err != nil {
		c.JSON(http.StatusBadGateway, ErrorResponse{
			Error:   "playback_failed",
			Message: "Failed to advance to the next song",
		})
		return
	}
	c.JSON(http.StatusOK, h.player.Snapshot())
}

// Previous handles POST /api/player/previous
func (h *PlayerHandler) Previous(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.player.Previous(ctx); err != nil {
		c.JSON(http.StatusBadGateway, ErrorResponse{
			Error:   "playback_failed",
			Message: "Failed to move to the previous song",
		})
		return
	}
	c.JSON(http.StatusOK, h.player.Snapshot())
}

// Toggle handles POST /api/player/toggle
func (h *PlayerHandler) Toggle(c *gin.Context) {
	if err := h.player.TogglePlayPause(); err != nil {
		if errors.Is(err, player.ErrNoSong) {
			c.JSON(http.StatusConflict, ErrorResponse{
				Error:   "no_song",
				Message: "No song is loaded",
			})
			return
		}

		c.JSON(http.StatusBadGateway, ErrorResponse{
			Error:   "playback_failed",
			Message: "Failed to toggle playback",
		})
		return
	}
	c.JSON(http.StatusOK, h.player.Snapshot())
}

// Shuffle handles POST /api/player/shuffle
func (h *PlayerHandler) Shuffle(c *gin.Context) {
	h.player.ToggleShuffle()
	c.JSON(http.StatusOK, h.player.Snapshot())
}

// Repeat handles POST /api/player/repeat
func (h *PlayerHandler) Repeat(c *gin.Context) {
	mode := h.player.ToggleRepeat()
	c.JSON(http.StatusOK, RepeatResponse{Repeat: mode})
}

// Seek handles POST /api/player/seek
func (h *PlayerHandler) Seek(c *gin.Context) {
	var req SeekRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
		return
	}

	if err := h.player.Seek(*req.Fraction); err != nil {
		c.JSON(http.StatusBadGateway, ErrorResponse{
			Error:   "playback_failed",
			Message: "Failed to seek",
		})
		return
	}
	c.JSON(http.StatusOK, h.player.Snapshot())
}

// SetVolume handles PUT /api/player/volume
func (h *PlayerHandler) SetVolume(c *gin.Context) {
	var req VolumeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.player.SetVolume(ctx, *req.Volume); err != nil {
		if errors.Is(err, library.ErrInvalidVolume) {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "invalid_volume",
				Message: "Volume must be between 0 and 100",
			})
			return
		}

		logger.Log.Error().
			Err(err).
			Int("volume", *req.Volume).
			Msg("Failed to set volume")

		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "save_failed",
			Message: "Failed to set volume",
		})
		return
	}

	c.JSON(http.StatusOK, VolumeResponse{Volume: *req.Volume})
}

// GetVolume handles GET /api/player/volume
func (h *PlayerHandler) GetVolume(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	volume, err := h.library.Volume(ctx)
	if err != nil {
		logger.Log.Error().
			Err(err).
			Msg("Failed to read volume")

		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "query_failed",
			Message: "Failed to read volume",
		})
		return
	}

	c.JSON(http.StatusOK, VolumeResponse{Volume: volume})
}

// SetupPlayerRoutes registers playback control routes
func SetupPlayerRoutes(apiGroup *gin.RouterGroup, p *player.Player, lib *library.Service) {
	handler := NewPlayerHandler(p, lib)

	pl := apiGroup.Group("/player")
	{
		pl.GET("", handler.GetState)
		pl.POST("/play", handler.Play)
		pl.POST("/next", handler.Next)
		pl.POST("/previous", handler.Previous)
		pl.POST("/toggle", handler.Toggle)
		pl.POST("/shuffle", handler.Shuffle)
		pl.POST("/repeat", handler.Repeat)
		pl.POST("/seek", handler.Seek)
		pl.GET("/volume", handler.GetVolume)
		pl.PUT("/volume", handler.SetVolume)
	}
}
