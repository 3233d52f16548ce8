package server

import (
	"context"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/existflow/trinote/internal/remote"
)

// Server is the board sync server
type Server struct {
	store  remote.Store
	apiKey string
	echo   *echo.Echo
}

// New creates a server backed by store. When apiKey is non-empty every board
// request must carry it as a bearer token.
func New(store remote.Store, apiKey string) *Server {
	s := &Server{
		store:  store,
		apiKey: apiKey,
	}
	s.setupEcho()
	return s
}

// NewPostgres creates a server backed by the boards table at dbURL
func NewPostgres(ctx context.Context, dbURL, apiKey string) (*Server, error) {
	store, err := remote.OpenPostgres(ctx, dbURL)
	if err != nil {
		return nil, err
	}
	return New(store, apiKey), nil
}

func (s *Server) setupEcho() {
	e := echo.New()
	e.HideBanner = true

	e.Use(requestLogger)
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.CORS())
	e.Use(middleware.BodyLimit(maxBodySize))

	// Health check
	e.GET("/health", s.handleHealth)

	// API v1
	api := e.Group("/api/v1")
	api.Use(s.apiKeyMiddleware)
	api.GET("/board", s.handleGetBoard)
	api.PUT("/board", s.handlePutBoard)
	api.POST("/board/clear", s.handleClearBoard)

	s.echo = e
}

// Close releases the underlying store
func (s *Server) Close() error {
	if closer, ok := s.store.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// Router returns the HTTP handler
func (s *Server) Router() http.Handler {
	return s.echo
}

// Start starts the server
func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

// Shutdown stops the server, waiting for in-flight requests
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) handleHealth(c echo.Context) error {
	if err := s.store.Ping(c.Request().Context()); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
