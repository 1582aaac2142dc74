// Package api exposes the note-generation service over HTTP.
package api

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog/log"

	"github.com/notewire/internal/ai"
	"github.com/notewire/internal/notes"
	"github.com/notewire/internal/sanitize"
	"github.com/notewire/internal/store"
)

// Server represents the API server
type Server struct {
	echo *echo.Echo
	port int

	generator     ai.Generator
	enricher      notes.Enricher
	redactor      *sanitize.Redactor
	archive       *store.Archive
	defaultPreset string
}

// Options wires the server's collaborators. Archive and Redactor may be
// nil; Enricher may be nil for deployments without lookup credentials.
type Options struct {
	Port          int
	Generator     ai.Generator
	Enricher      notes.Enricher
	Redactor      *sanitize.Redactor
	Archive       *store.Archive
	DefaultPreset string
}

// NewServer creates a new API server
func NewServer(opts Options) *Server {
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	server := &Server{
		echo:          e,
		port:          opts.Port,
		generator:     opts.Generator,
		enricher:      opts.Enricher,
		redactor:      opts.Redactor,
		archive:       opts.Archive,
		defaultPreset: opts.DefaultPreset,
	}

	// Setup routes
	server.setupRoutes()

	return server
}

// setupRoutes configures all API endpoints
func (s *Server) setupRoutes() {
	// Health check endpoint
	s.echo.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status": "healthy",
		})
	})

	// API v1 group
	v1 := s.echo.Group("/api/v1")

	v1.POST("/notes/stream", s.streamNotes)
	v1.POST("/diffs/filter", s.filterDiffs)
	v1.GET("/notes", s.listNotes)
}

// Start begins the API server
func (s *Server) Start() error {
	// Start server in a goroutine
	go func() {
		if err := s.echo.Start(fmt.Sprintf(":%d", s.port)); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("shutting down the server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return s.echo.Shutdown(ctx)
}
