package remote

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/existflow/trinote/internal/config"
	"github.com/existflow/trinote/internal/model"
)

func sampleTasks() []model.Task {
	return []model.Task{
		{ID: "a", Title: "Plan", Group: model.GroupBig, CreatedAt: 1, UpdatedAt: 2},
		{ID: "b", Title: "Gone", Group: model.GroupToday, CreatedAt: 1, UpdatedAt: 3, DeletedAt: 3},
	}
}

func TestClient_PlainRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	c := NewClient(store, "")

	require.NoError(t, c.Push(ctx, "archi", sampleTasks()))

	doc, err := store.Fetch(ctx, "archi")
	require.NoError(t, err)
	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(doc.Data, &raw))
	assert.Contains(t, raw, "tasks")

	got, err := c.Pull(ctx, "archi")
	require.NoError(t, err)
	assert.Equal(t, sampleTasks(), got)
}

func TestClient_PullMissingBoard(t *testing.T) {
	c := NewClient(NewMemoryStore(), "")
	got, err := c.Pull(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestClient_ReadsForeignDocument(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	_, err := store.Upsert(ctx, "k", json.RawMessage(
		`{"tasks":[{"id":"w","title":"from web","done":false,"group":"middle","createdAt":5,"updatedAt":6}]}`))
	require.NoError(t, err)

	got, err := NewClient(store, "").Pull(ctx, "k")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, model.GroupMiddle, got[0].Group)
}

func TestClient_Sealed(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	sealed := NewClient(store, "correct horse")

	require.NoError(t, sealed.Push(ctx, "team", sampleTasks()))

	doc, err := store.Fetch(ctx, "team")
	require.NoError(t, err)
	assert.NotContains(t, string(doc.Data), "Plan", "titles must not be stored in the clear")
	assert.Contains(t, string(doc.Data), `"sealed"`)

	got, err := sealed.Pull(ctx, "team")
	require.NoError(t, err)
	assert.Equal(t, sampleTasks(), got)

	// Another device with the same passphrase derives the key from the stored salt
	other, err := NewClient(store, "correct horse").Pull(ctx, "team")
	require.NoError(t, err)
	assert.Equal(t, sampleTasks(), other)

	_, err = NewClient(store, "").Pull(ctx, "team")
	assert.ErrorIs(t, err, ErrSealed)

	_, err = NewClient(store, "wrong").Pull(ctx, "team")
	assert.ErrorIs(t, err, ErrDecrypt)
}

func TestClient_Clear(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	c := NewClient(store, "")
	require.NoError(t, c.Push(ctx, "k", sampleTasks()))
	require.NoError(t, c.Clear(ctx, "k"))

	_, err := store.Fetch(ctx, "k")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.NoError(t, c.Clear(ctx, "k"), "clearing twice is fine")
}

func TestNew_CloudOff(t *testing.T) {
	c, err := New(context.Background(), config.Remote{Driver: config.DriverHTTP})
	require.NoError(t, err)
	assert.Nil(t, c)

	c, err = New(context.Background(), config.Remote{Driver: config.DriverHTTP, URL: "http://localhost:1"})
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.False(t, c.Sealed())
	assert.NoError(t, c.Close())
}

func TestCrypto_RoundTrip(t *testing.T) {
	salt, err := GenerateSalt()
	require.NoError(t, err)
	cr := NewCrypto("pw", salt)

	sealed, err := cr.Encrypt([]byte("hello"))
	require.NoError(t, err)
	plain, err := cr.Decrypt(sealed)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(plain))

	_, err = cr.Decrypt("!!!")
	assert.ErrorIs(t, err, ErrDecrypt)
}
