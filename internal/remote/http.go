package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/labstack/echo/v4"
)

// HTTPStore talks to a trinote-server
type HTTPStore struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewHTTPStore creates a store for the server at baseURL
func NewHTTPStore(baseURL, apiKey string, timeout time.Duration) *HTTPStore {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPStore{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (s *HTTPStore) boardURL(path, key string) string {
	return s.baseURL + "/api/v1/board" + path + "?key=" + url.QueryEscape(key)
}

func (s *HTTPStore) Fetch(ctx context.Context, key string) (Document, error) {
	var doc Document
	if err := s.do(ctx, http.MethodGet, s.boardURL("", key), nil, &doc); err != nil {
		return Document{}, err
	}
	return doc, nil
}

func (s *HTTPStore) Upsert(ctx context.Context, key string, data json.RawMessage) (time.Time, error) {
	var result struct {
		UpdatedAt time.Time `json:"updated_at"`
	}
	if err := s.do(ctx, http.MethodPut, s.boardURL("", key), data, &result); err != nil {
		return time.Time{}, err
	}
	return result.UpdatedAt, nil
}

func (s *HTTPStore) Delete(ctx context.Context, key string) error {
	return s.do(ctx, http.MethodPost, s.boardURL("/clear", key), nil, nil)
}

func (s *HTTPStore) Ping(ctx context.Context) error {
	return s.do(ctx, http.MethodGet, s.baseURL+"/health", nil, nil)
}

func (s *HTTPStore) do(ctx context.Context, method, target string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if s.apiKey != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+s.apiKey)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s %s failed (%d): %s", method, req.URL.Path, resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("%s %s failed (%d): %s", method, req.URL.Path, resp.StatusCode, bytes.TrimSpace(respBody))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
