package remote

import (
	"context"
	"encoding/json"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("TRINOTE_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TRINOTE_TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	s, err := OpenPostgres(ctx, dsn)
	require.NoError(t, err)
	defer s.Close()

	key := "test-" + uuid.NewString()
	defer s.Delete(ctx, key)

	_, err = s.Fetch(ctx, key)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.Upsert(ctx, key, json.RawMessage(`{"tasks":[]}`))
	require.NoError(t, err)
	_, err = s.Upsert(ctx, key, json.RawMessage(`{"tasks":[{"id":"a"}]}`))
	require.NoError(t, err)

	doc, err := s.Fetch(ctx, key)
	require.NoError(t, err)
	assert.JSONEq(t, `{"tasks":[{"id":"a"}]}`, string(doc.Data))
	assert.False(t, doc.UpdatedAt.IsZero())

	require.NoError(t, s.Delete(ctx, key))
	_, err = s.Fetch(ctx, key)
	assert.ErrorIs(t, err, ErrNotFound)
}
