// Package server provides the HTTP server setup and routing configuration.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/lemonstring/strum/internal/api"
	"github.com/lemonstring/strum/internal/config"
	"github.com/lemonstring/strum/internal/library"
	"github.com/lemonstring/strum/internal/logger"
	"github.com/lemonstring/strum/internal/middleware"
	"github.com/lemonstring/strum/internal/player"
	"github.com/lemonstring/strum/internal/search"
	"github.com/lemonstring/strum/internal/store"
)

// Server represents the HTTP server
type Server struct {
	config       *config.Config
	store        store.Store
	library      *library.Service
	player       *player.Player
	searchClient *search.Client
	router       *gin.Engine
	server       *http.Server
	started      time.Time
}

// New creates a new server instance over an opened store.
func New(cfg *config.Config, st store.Store) *Server {
	lib := library.NewService(st, cfg.Player.DefaultVolume)
	p := player.New(player.NopSink{}, lib, player.Options{
		ErrorSkipDelay:   cfg.Player.ErrorSkipDelay,
		RestartThreshold: cfg.Player.RestartThreshold,
	})
	searchClient := search.NewClient(search.Options{
		MaxResults:      cfg.Search.MaxResults,
		Timeout:         cfg.Search.Timeout,
		DownloadDir:     cfg.Search.DownloadDir,
		DownloadTimeout: cfg.Search.DownloadTimeout,
	})

	return &Server{
		config:       cfg,
		store:        st,
		library:      lib,
		player:       p,
		searchClient: searchClient,
	}
}

// setupRouter initializes the Gin router with middleware and routes
func (s *Server) setupRouter() {
	// Set Gin mode based on log level
	if s.config.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	s.router = gin.New()

	// Middleware stack
	s.router.Use(middleware.RequestLogger())
	s.router.Use(gin.Recovery())
	s.router.Use(cors.Default())

	apiGroup := s.router.Group("/api")

	api.SetupHealthRoutes(apiGroup, s.store, s.searchClient, s.started)
	api.SetupSearchRoutes(apiGroup, s.searchClient)
	api.SetupSongRoutes(apiGroup, s.library)
	api.SetupPlaylistRoutes(apiGroup, s.library)
	api.SetupPlayerRoutes(apiGroup, s.player, s.library)
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.started = time.Now()
	s.setupRouter()

	// Probe the search collaborator in the background; the library and
	// player work fine while it is unavailable.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.config.Search.Timeout)
		defer cancel()
		if s.searchClient.CheckAvailability(ctx) {
			logger.Log.Info().Msg("Search collaborator available")
		} else {
			logger.Log.Warn().Msg("Search collaborator unavailable, running in offline mode")
		}
	}()

	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)

	s.server = &http.Server{
		Addr:           addr,
		Handler:        s.router,
		ReadTimeout:    s.config.Server.ReadTimeout,
		WriteTimeout:   s.config.Server.WriteTimeout,
		MaxHeaderBytes: 1 << 20, // 1 MB
	}

	logger.Log.Info().
		Str("host", s.config.Server.Host).
		Int("port", s.config.Server.Port).
		Str("store_backend", s.store.Backend()).
		Msg("Starting HTTP server")

	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	logger.Log.Info().Msg("Shutting down server gracefully")

	if s.server != nil {
		if err := s.server.Shutdown(ctx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
	}

	if err := s.store.Close(); err != nil {
		return fmt.Errorf("store close error: %w", err)
	}

	logger.Log.Info().Msg("Server stopped")
	return nil
}
