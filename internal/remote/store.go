// Package remote mirrors boards to a shared document store.
//
// A board is one JSON document addressed by its sync key. Store
// implementations move raw documents; Client encodes tasks into them and
// seals them when a passphrase is configured.
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"
)

var (
	ErrNotFound = errors.New("board not found")
	ErrSealed   = errors.New("remote board is sealed: set a passphrase to read it")
)

// Document is a stored board
type Document struct {
	Key       string          `json:"key"`
	Data      json.RawMessage `json:"data"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Store is a keyed document store
type Store interface {
	// Fetch returns the document for key or ErrNotFound
	Fetch(ctx context.Context, key string) (Document, error)
	// Upsert creates or replaces the document for key
	Upsert(ctx context.Context, key string, data json.RawMessage) (time.Time, error)
	// Delete removes the document for key; a missing document is not an error
	Delete(ctx context.Context, key string) error
	// Ping checks that the store is reachable
	Ping(ctx context.Context) error
}

// MemoryStore keeps documents in process
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]Document
	now  func() time.Time
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]Document), now: time.Now}
}

func (s *MemoryStore) Fetch(_ context.Context, key string) (Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[key]
	if !ok {
		return Document{}, ErrNotFound
	}
	doc.Data = append(json.RawMessage(nil), doc.Data...)
	return doc, nil
}

func (s *MemoryStore) Upsert(_ context.Context, key string, data json.RawMessage) (time.Time, error) {
	if !json.Valid(data) {
		return time.Time{}, errors.New("document is not valid JSON")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now().UTC()
	s.docs[key] = Document{Key: key, Data: append(json.RawMessage(nil), data...), UpdatedAt: now}
	return now, nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, key)
	return nil
}

func (s *MemoryStore) Ping(context.Context) error {
	return nil
}
