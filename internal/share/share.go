// Package share builds and parses links that carry a sync key.
//
// The key travels in the URL fragment as #key=<escaped key>, so it is never
// sent to a web server when the link is opened in a browser.
package share

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// MaxKeyLength bounds the length of a sync key
const MaxKeyLength = 200

const fragmentPrefix = "key="

// ErrInvalidKey is returned for empty or oversized sync keys
var ErrInvalidKey = errors.New("invalid sync key")

// ValidateKey trims key and checks it can be used as a sync key
func ValidateKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidKey)
	}
	if len(key) > MaxKeyLength {
		return "", fmt.Errorf("%w: longer than %d bytes", ErrInvalidKey, MaxKeyLength)
	}
	return key, nil
}

// Link returns base with the key in its fragment. Any existing fragment on
// base is replaced.
func Link(base, key string) (string, error) {
	key, err := ValidateKey(key)
	if err != nil {
		return "", err
	}
	if i := strings.IndexByte(base, '#'); i >= 0 {
		base = base[:i]
	}
	return base + "#" + fragmentPrefix + url.QueryEscape(key), nil
}

// KeyFromLink extracts the sync key from a link. It returns "" when the link
// carries no key.
func KeyFromLink(raw string) string {
	i := strings.IndexByte(raw, '#')
	if i < 0 {
		return ""
	}
	frag := raw[i+1:]
	if !strings.HasPrefix(frag, fragmentPrefix) {
		return ""
	}

	key, err := url.QueryUnescape(frag[len(fragmentPrefix):])
	if err != nil {
		return ""
	}
	return strings.TrimSpace(key)
}
