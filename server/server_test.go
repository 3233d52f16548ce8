package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/existflow/trinote/internal/model"
	"github.com/existflow/trinote/internal/remote"
)

func newTestServer(t *testing.T, apiKey string) (*httptest.Server, *remote.MemoryStore) {
	t.Helper()
	store := remote.NewMemoryStore()
	srv := httptest.NewServer(New(store, apiKey).Router())
	t.Cleanup(srv.Close)
	return srv, store
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t, "")
	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestBoard_ClientRoundTrip(t *testing.T) {
	srv, _ := newTestServer(t, "")
	ctx := context.Background()
	c := remote.NewClient(remote.NewHTTPStore(srv.URL, "", time.Second), "")

	got, err := c.Pull(ctx, "team board")
	require.NoError(t, err)
	assert.Empty(t, got, "unknown board pulls nothing")

	tasks := []model.Task{{ID: "a", Title: "Plan", Group: model.GroupBig, CreatedAt: 1, UpdatedAt: 2}}
	require.NoError(t, c.Push(ctx, "team board", tasks))

	got, err = c.Pull(ctx, "team board")
	require.NoError(t, err)
	assert.Equal(t, tasks, got)

	require.NoError(t, c.Clear(ctx, "team board"))
	got, err = c.Pull(ctx, "team board")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestBoard_SealedDocumentIsOpaque(t *testing.T) {
	srv, store := newTestServer(t, "")
	ctx := context.Background()
	c := remote.NewClient(remote.NewHTTPStore(srv.URL, "", time.Second), "pw")

	tasks := []model.Task{{ID: "a", Title: "secret plan", Group: model.GroupBig, CreatedAt: 1, UpdatedAt: 2}}
	require.NoError(t, c.Push(ctx, "k", tasks))

	doc, err := store.Fetch(ctx, "k")
	require.NoError(t, err)
	assert.NotContains(t, string(doc.Data), "secret plan")

	got, err := c.Pull(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, tasks, got)
}

func TestBoard_Validation(t *testing.T) {
	srv, _ := newTestServer(t, "")

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"missing key", http.MethodGet, "/api/v1/board", "", http.StatusBadRequest},
		{"blank key", http.MethodGet, "/api/v1/board?key=%20%20", "", http.StatusBadRequest},
		{"unknown board", http.MethodGet, "/api/v1/board?key=nobody", "", http.StatusNotFound},
		{"array body", http.MethodPut, "/api/v1/board?key=k", `[1,2]`, http.StatusBadRequest},
		{"null body", http.MethodPut, "/api/v1/board?key=k", `null`, http.StatusBadRequest},
		{"broken body", http.MethodPut, "/api/v1/board?key=k", `{"tasks":`, http.StatusBadRequest},
		{"object body", http.MethodPut, "/api/v1/board?key=k", `{"tasks":[]}`, http.StatusOK},
		{"clear missing", http.MethodPost, "/api/v1/board/clear?key=none", "", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest(tt.method, srv.URL+tt.path, strings.NewReader(tt.body))
			require.NoError(t, err)
			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestAPIKey(t *testing.T) {
	srv, _ := newTestServer(t, "s3cret")
	ctx := context.Background()

	_, err := remote.NewHTTPStore(srv.URL, "", time.Second).Fetch(ctx, "k")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "authorization required")

	_, err = remote.NewHTTPStore(srv.URL, "wrong", time.Second).Fetch(ctx, "k")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid api key")

	_, err = remote.NewHTTPStore(srv.URL, "s3cret", time.Second).Fetch(ctx, "k")
	assert.ErrorIs(t, err, remote.ErrNotFound)

	// Health stays public
	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
