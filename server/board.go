package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/existflow/trinote/internal/logger"
	"github.com/existflow/trinote/internal/remote"
	"github.com/existflow/trinote/internal/share"
)

const maxBodySize = "4M"

// handleGetBoard returns the document stored under key
func (s *Server) handleGetBoard(c echo.Context) error {
	key, err := share.ValidateKey(c.QueryParam("key"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	doc, err := s.store.Fetch(c.Request().Context(), key)
	if errors.Is(err, remote.ErrNotFound) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "board not found"})
	}
	if err != nil {
		logger.Error("Failed to fetch board", logger.F("error", err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}

	return c.JSON(http.StatusOK, doc)
}

// handlePutBoard replaces the document stored under key
func (s *Server) handlePutBoard(c echo.Context) error {
	key, err := share.ValidateKey(c.QueryParam("key"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err != nil || obj == nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "board must be a JSON object"})
	}

	updatedAt, err := s.store.Upsert(c.Request().Context(), key, json.RawMessage(body))
	if err != nil {
		logger.Error("Failed to store board", logger.F("error", err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}

	return c.JSON(http.StatusOK, map[string]string{
		"key":        key,
		"updated_at": updatedAt.UTC().Format(time.RFC3339Nano),
	})
}

// handleClearBoard deletes the document stored under key
func (s *Server) handleClearBoard(c echo.Context) error {
	key, err := share.ValidateKey(c.QueryParam("key"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	if err := s.store.Delete(c.Request().Context(), key); err != nil {
		logger.Error("Failed to clear board", logger.F("error", err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}

	return c.JSON(http.StatusOK, map[string]string{"status": "cleared"})
}
