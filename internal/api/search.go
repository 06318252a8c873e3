package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/lemonstring/strum/internal/logger"
	"github.com/lemonstring/strum/internal/search"
)

// SearchResponse represents the results of a platform search
type SearchResponse struct {
	Query   string          `json:"query"`
	Results []search.Result `json:"results"`
}

// DownloadRequest represents a request to export a song as an audio file
type DownloadRequest struct {
	SongID string `json:"song_id" binding:"required"`
	Title  string `json:"title"`
}

// DownloadResponse represents a completed download
type DownloadResponse struct {
	SongID string `json:"song_id"`
	Path   string `json:"path"`
}

// SearchHandler handles platform search and download requests
type SearchHandler struct {
	client *search.Client
}

// NewSearchHandler creates a new search handler instance
func NewSearchHandler(client *search.Client) *SearchHandler {
	return &SearchHandler{client: client}
}

// Search handles GET /api/search
func (h *SearchHandler) Search(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "missing_query",
			Message: "Query parameter 'q' is required",
		})
		return
	}

	results, err := h.client.Search(c.Request.Context(), query)
	if err != nil {
		if search.IsUnavailable(err) {
			c.JSON(http.StatusServiceUnavailable, ErrorResponse{
				Error:   "search_unavailable",
				Message: "Search backend is unavailable",
			})
			return
		}

		logger.Log.Error().
			Err(err).
			Str("query", query).
			Msg("Search failed")

		c.JSON(http.StatusBadGateway, ErrorResponse{
			Error:   "search_failed",
			Message: "Failed to search the platform",
		})
		return
	}

	c.JSON(http.StatusOK, SearchResponse{
		Query:   query,
		Results: results,
	})
}

// Download handles POST /api/download
func (h *SearchHandler) Download(c *gin.Context) {
	var req DownloadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
		return
	}

	// Downloads run against the request context so a disconnecting
	// client cancels the export.
	path, err := h.client.Download(c.Request.Context(), req.SongID, req.Title)
	if err != nil {
		if search.IsUnavailable(err) {
			c.JSON(http.StatusServiceUnavailable, ErrorResponse{
				Error:   "search_unavailable",
				Message: "Download backend is unavailable",
			})
			return
		}

		logger.Log.Error().
			Err(err).
			Str("song_id", req.SongID).
			Msg("Download failed")

		c.JSON(http.StatusBadGateway, ErrorResponse{
			Error:   "download_failed",
			Message: "Failed to download audio",
		})
		return
	}

	logger.Log.Info().
		Str("song_id", req.SongID).
		Str("path", path).
		Msg("Download complete")

	c.JSON(http.StatusOK, DownloadResponse{
		SongID: req.SongID,
		Path:   path,
	})
}

// SetupSearchRoutes registers search and download routes
func SetupSearchRoutes(apiGroup *gin.RouterGroup, client *search.Client) {
	handler := NewSearchHandler(client)
	apiGroup.GET("/search", handler.Search)
	apiGroup.POST("/download", handler.Download)
}
