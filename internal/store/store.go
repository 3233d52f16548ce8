// Package store persists the board on the local device.
//
// Reads and writes are best-effort: a failing backend is logged and otherwise
// ignored, and the in-memory state carries on.
package store

import (
	"encoding/json"
	"sync"

	"github.com/existflow/trinote/internal/history"
	"github.com/existflow/trinote/internal/logger"
	"github.com/existflow/trinote/internal/model"
)

// Storage keys
const (
	KeyTasks   = "tri_group_tasks_v1"
	KeyHistory = "tri_group_tasks_history_v1"
	KeySyncKey = "tri_sync_key"
)

// KV is a synchronous key/value backend
type KV interface {
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte) error
	Delete(key string) error
}

// Local reads and writes board state through a KV backend
type Local struct {
	kv KV
}

// NewLocal creates a Local store over kv
func NewLocal(kv KV) *Local {
	return &Local{kv: kv}
}

// LoadTasks returns the stored collection. ok is false when nothing was
// stored yet or the stored value could not be read.
func (l *Local) LoadTasks() ([]model.Task, bool) {
	var tasks []model.Task
	if !l.load(KeyTasks, &tasks) {
		return nil, false
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	return tasks, true
}

// SaveTasks stores the collection
func (l *Local) SaveTasks(tasks []model.Task) {
	if tasks == nil {
		tasks = []model.Task{}
	}
	l.save(KeyTasks, tasks)
}

// LoadHistory returns the stored history entries, most recent first
func (l *Local) LoadHistory() []history.Entry {
	var entries []history.Entry
	l.load(KeyHistory, &entries)
	return entries
}

// SaveHistory stores the history entries
func (l *Local) SaveHistory(entries []history.Entry) {
	if entries == nil {
		entries = []history.Entry{}
	}
	l.save(KeyHistory, entries)
}

// SyncKey returns the active sync key, or "" when none is set
func (l *Local) SyncKey() string {
	data, ok, err := l.kv.Get(KeySyncKey)
	if err != nil {
		logger.Warn("Failed to read sync key", logger.F("error", err))
		return ""
	}
	if !ok {
		return ""
	}
	return string(data)
}

// SetSyncKey stores the sync key. An empty key removes it.
func (l *Local) SetSyncKey(key string) {
	var err error
	if key == "" {
		err = l.kv.Delete(KeySyncKey)
	} else {
		err = l.kv.Set(KeySyncKey, []byte(key))
	}
	if err != nil {
		logger.Warn("Failed to store sync key", logger.F("error", err))
	}
}

func (l *Local) load(key string, v any) bool {
	data, ok, err := l.kv.Get(key)
	if err != nil {
		logger.Warn("Failed to read local store", logger.F("key", key), logger.F("error", err))
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		logger.Warn("Discarding unreadable local value", logger.F("key", key), logger.F("error", err))
		return false
	}
	return true
}

func (l *Local) save(key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		logger.Warn("Failed to encode local value", logger.F("key", key), logger.F("error", err))
		return
	}
	if err := l.kv.Set(key, data); err != nil {
		logger.Warn("Failed to write local store", logger.F("key", key), logger.F("error", err))
	}
}

// Memory is an in-process KV, used for tests and ephemeral boards
type Memory struct {
	mu   sync.Mutex
	data map[string][]byte
}

// NewMemory creates an empty Memory KV
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

func (m *Memory) Get(key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (m *Memory) Set(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *Memory) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}
