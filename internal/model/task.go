package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Group is one of the three triage buckets
type Group string

const (
	GroupBig    Group = "big"
	GroupMiddle Group = "middle"
	GroupToday  Group = "today"
)

// Groups returns the buckets in display order
func Groups() []Group {
	return []Group{GroupBig, GroupMiddle, GroupToday}
}

// ParseGroup converts user input into a Group
func ParseGroup(s string) (Group, error) {
	switch Group(strings.ToLower(strings.TrimSpace(s))) {
	case GroupBig, "b":
		return GroupBig, nil
	case GroupMiddle, "m", "mid":
		return GroupMiddle, nil
	case GroupToday, "t":
		return GroupToday, nil
	default:
		return "", fmt.Errorf("unknown group %q (want big, middle or today)", s)
	}
}

// Valid reports whether g is one of the three buckets
func (g Group) Valid() bool {
	return g == GroupBig || g == GroupMiddle || g == GroupToday
}

// Label returns the display name of the bucket
func (g Group) Label() string {
	switch g {
	case GroupBig:
		return "Big"
	case GroupMiddle:
		return "Middle"
	case GroupToday:
		return "Today"
	default:
		return string(g)
	}
}

// rank orders buckets for tie-breaking: big > middle > today
func (g Group) rank() int {
	switch g {
	case GroupBig:
		return 3
	case GroupMiddle:
		return 2
	case GroupToday:
		return 1
	default:
		return 0
	}
}

// Task represents a single triage item.
// Timestamps are milliseconds since the Unix epoch.
type Task struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Done      bool   `json:"done"`
	Group     Group  `json:"group"`
	CreatedAt int64  `json:"createdAt"`
	UpdatedAt int64  `json:"updatedAt"`
	DeletedAt int64  `json:"deletedAt,omitempty"`
}

// Validation errors
var (
	ErrMissingID    = errors.New("task id is empty")
	ErrEmptyTitle   = errors.New("task title is empty")
	ErrInvalidGroup = errors.New("task group is invalid")
	ErrTimestamps   = errors.New("task updatedAt precedes createdAt")
)

// NewTask creates a new task with defaults
func NewTask(id, title string, group Group, now time.Time) Task {
	ms := now.UnixMilli()
	return Task{
		ID:        id,
		Title:     title,
		Done:      false,
		Group:     group,
		CreatedAt: ms,
		UpdatedAt: ms,
	}
}

// Validate returns the first violated invariant, if any
func (t Task) Validate() error {
	if t.ID == "" {
		return ErrMissingID
	}
	if strings.TrimSpace(t.Title) == "" {
		return fmt.Errorf("%s: %w", t.ID, ErrEmptyTitle)
	}
	if !t.Group.Valid() {
		return fmt.Errorf("%s: %w: %q", t.ID, ErrInvalidGroup, t.Group)
	}
	if t.UpdatedAt < t.CreatedAt {
		return fmt.Errorf("%s: %w", t.ID, ErrTimestamps)
	}
	return nil
}

// IsDeleted returns true if the task is a tombstone
func (t Task) IsDeleted() bool {
	return t.DeletedAt != 0
}

// Toggled returns a copy with the completion flag flipped
func (t Task) Toggled(now time.Time) Task {
	t.Done = !t.Done
	return t.touch(now)
}

// Renamed returns a copy with a new title
func (t Task) Renamed(title string, now time.Time) Task {
	t.Title = title
	return t.touch(now)
}

// Moved returns a copy placed in another bucket
func (t Task) Moved(group Group, now time.Time) Task {
	t.Group = group
	return t.touch(now)
}

// Deleted returns a tombstone copy of the task
func (t Task) Deleted(now time.Time) Task {
	t = t.touch(now)
	t.DeletedAt = t.UpdatedAt
	return t
}

// touch refreshes UpdatedAt. It never moves backwards, so an edit always
// outranks the version it was made from even on a coarse or skewed clock.
func (t Task) touch(now time.Time) Task {
	ms := now.UnixMilli()
	if ms <= t.UpdatedAt {
		ms = t.UpdatedAt + 1
	}
	t.UpdatedAt = ms
	return t
}

// Created returns CreatedAt as time.Time
func (t Task) Created() time.Time {
	return time.UnixMilli(t.CreatedAt)
}

// Updated returns UpdatedAt as time.Time
func (t Task) Updated() time.Time {
	return time.UnixMilli(t.UpdatedAt)
}

// Compare orders two versions of the same task for last-write-wins.
// It returns a positive number when a wins over b, negative when b wins and
// zero when the records are interchangeable. Equal UpdatedAt values fall back
// to a fixed ordering of the record content (tombstone, done, group, title,
// createdAt) so the outcome never depends on which side a record came from.
func Compare(a, b Task) int {
	switch {
	case a.UpdatedAt != b.UpdatedAt:
		return cmpInt64(a.UpdatedAt, b.UpdatedAt)
	case a.IsDeleted() != b.IsDeleted():
		return cmpBool(a.IsDeleted(), b.IsDeleted())
	case a.DeletedAt != b.DeletedAt:
		return cmpInt64(a.DeletedAt, b.DeletedAt)
	case a.Done != b.Done:
		return cmpBool(a.Done, b.Done)
	case a.Group != b.Group:
		if c := a.Group.rank() - b.Group.rank(); c != 0 {
			return c
		}
		return strings.Compare(string(a.Group), string(b.Group))
	case a.Title != b.Title:
		return strings.Compare(a.Title, b.Title)
	default:
		return cmpInt64(a.CreatedAt, b.CreatedAt)
	}
}

func cmpInt64(a, b int64) int {
	switch {
	case a > b:
		return 1
	case a < b:
		return -1
	default:
		return 0
	}
}

func cmpBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case a:
		return 1
	default:
		return -1
	}
}
