package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lemonstring/strum/internal/search"
	"github.com/lemonstring/strum/internal/store"
)

// HealthResponse represents the response from the health check endpoint
type HealthResponse struct {
	Status        string                 `json:"status"`
	Store         string                 `json:"store"`
	StoreBackend  string                 `json:"store_backend"`
	Search        string                 `json:"search"`
	UptimeSeconds int64                  `json:"uptime_seconds"`
	Time          string                 `json:"time"`
	Details       map[string]interface{} `json:"details,omitempty"`
}

// HealthHandler handles health check requests
type HealthHandler struct {
	store   store.Store
	search  *search.Client
	started time.Time
}

// NewHealthHandler creates a new health check handler
func NewHealthHandler(st store.Store, sc *search.Client, started time.Time) *HealthHandler {
	return &HealthHandler{store: st, search: sc, started: started}
}

// Check handles the health check endpoint
func (h *HealthHandler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	response := HealthResponse{
		Status:        "ok",
		StoreBackend:  h.store.Backend(),
		UptimeSeconds: int64(time.Since(h.started).Seconds()),
		Time:          time.Now().UTC().Format(time.RFC3339),
		Details:       make(map[string]interface{}),
	}

	if h.search != nil && h.search.Available() {
		response.Search = "available"
	} else {
		response.Search = "unavailable"
	}

	// Check store connectivity
	if err := h.store.Health(ctx); err != nil {
		response.Status = "degraded"
		response.Store = "unhealthy"
		response.Details["store_error"] = err.Error()
		c.JSON(http.StatusServiceUnavailable, response)
		return
	}

	response.Store = "healthy"
	c.JSON(http.StatusOK, response)
}

// SetupHealthRoutes registers health check routes
func SetupHealthRoutes(apiGroup *gin.RouterGroup, st store.Store, sc *search.Client, started time.Time) {
	handler := NewHealthHandler(st, sc, started)
	apiGroup.GET("/health", handler.Check)
}
