package share

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLink_RoundTrip(t *testing.T) {
	keys := []string{"archi", "team board", "a/b?c#d&e=f", "ключ"}
	for _, key := range keys {
		link, err := Link("https://notes.example.com/app", key)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(link, "https://notes.example.com/app#key="))
		assert.Equal(t, key, KeyFromLink(link), link)
	}
}

func TestLink_ReplacesFragment(t *testing.T) {
	link, err := Link("trinote://board#old", "new")
	require.NoError(t, err)
	assert.Equal(t, "trinote://board#key=new", link)
}

func TestLink_RejectsBadKeys(t *testing.T) {
	_, err := Link("trinote://board", "   ")
	assert.ErrorIs(t, err, ErrInvalidKey)

	_, err = Link("trinote://board", strings.Repeat("k", MaxKeyLength+1))
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestKeyFromLink_Absent(t *testing.T) {
	assert.Equal(t, "", KeyFromLink("https://notes.example.com/"))
	assert.Equal(t, "", KeyFromLink("https://notes.example.com/#section"))
	assert.Equal(t, "", KeyFromLink("https://notes.example.com/#key=%zz"))
	assert.Equal(t, "archi", KeyFromLink("#key=archi"))
}
