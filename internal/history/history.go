// Package history keeps a bounded log of board snapshots for recovery.
package history

import (
	"github.com/existflow/trinote/internal/model"
)

// DefaultLimit is the number of snapshots kept when no limit is configured
const DefaultLimit = 50

// Snapshot labels
const (
	LabelAdd     = "add"
	LabelToggle  = "toggle"
	LabelRename  = "rename"
	LabelMove    = "move"
	LabelDelete  = "delete"
	LabelPull    = "pull"
	LabelImport  = "import"
	LabelRestore = "restore"
	LabelClear   = "clear"
	LabelAuto    = "auto"
)

// Entry is one recorded snapshot
type Entry struct {
	Timestamp int64        `json:"timestamp"`
	Label     string       `json:"label"`
	Snapshot  []model.Task `json:"snapshot"`
}

// Log is a most-recent-first list of entries capped at a limit.
// It is not safe for concurrent use; the board serializes access.
type Log struct {
	limit   int
	entries []Entry
}

// New creates a log holding at most limit entries
func New(limit int, entries []Entry) *Log {
	if limit <= 0 {
		limit = DefaultLimit
	}
	l := &Log{limit: limit}
	if len(entries) > limit {
		entries = entries[:limit]
	}
	l.entries = append([]Entry(nil), entries...)
	return l
}

// Push records a snapshot at the front, evicting the oldest beyond the limit
func (l *Log) Push(ts int64, label string, snapshot []model.Task) {
	snap := make([]model.Task, len(snapshot))
	copy(snap, snapshot)

	l.entries = append([]Entry{{Timestamp: ts, Label: label, Snapshot: snap}}, l.entries...)
	if len(l.entries) > l.limit {
		l.entries = l.entries[:l.limit]
	}
}

// Entries returns a copy of the entries, most recent first
func (l *Log) Entries() []Entry {
	return append([]Entry(nil), l.entries...)
}

// Get returns the entry at index i (0 is the most recent)
func (l *Log) Get(i int) (Entry, bool) {
	if i < 0 || i >= len(l.entries) {
		return Entry{}, false
	}
	return l.entries[i], true
}

// Len returns the number of entries
func (l *Log) Len() int {
	return len(l.entries)
}

// Limit returns the capacity of the log
func (l *Log) Limit() int {
	return l.limit
}
