// Package transfer reads and writes board export files.
package transfer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/existflow/trinote/internal/merge"
	"github.com/existflow/trinote/internal/model"
)

// FormatVersion is written into every export
const FormatVersion = 1

// maxMillis bounds imported timestamps, about the year 275760
const maxMillis = 8.64e15

// Document is the export file layout
type Document struct {
	Version    int          `json:"version"`
	ExportedAt string       `json:"exportedAt"`
	Tasks      []model.Task `json:"tasks"`
}

// ImportError describes why an import file was rejected.
// Index is the offending task position, or -1 for file-level problems.
type ImportError struct {
	Index  int
	Reason string
	Err    error
}

func (e *ImportError) Error() string {
	msg := "invalid import file"
	if e.Index >= 0 {
		msg = fmt.Sprintf("%s: tasks[%d]", msg, e.Index)
	}
	msg += ": " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ImportError) Unwrap() error {
	return e.Err
}

// FileName returns the default export file name for now
func FileName(now time.Time) string {
	return fmt.Sprintf("tri-notes-%d.json", now.UnixMilli())
}

// Export writes tasks as a pretty-printed export document
func Export(w io.Writer, tasks []model.Task, now time.Time) error {
	if tasks == nil {
		tasks = []model.Task{}
	}
	doc := Document{
		Version:    FormatVersion,
		ExportedAt: now.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		Tasks:      tasks,
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	return nil
}

// Import reads an export document and normalizes every task in it.
// Missing fields get defaults, ids are generated with newID when absent and
// duplicate ids are reconciled. Any structural problem rejects the whole file.
func Import(r io.Reader, now time.Time, newID func() string) ([]model.Task, error) {
	if newID == nil {
		newID = uuid.NewString
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &ImportError{Index: -1, Reason: "read failed", Err: err}
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var root any
	if err := dec.Decode(&root); err != nil {
		return nil, &ImportError{Index: -1, Reason: "not valid JSON", Err: err}
	}

	obj, ok := root.(map[string]any)
	if !ok {
		return nil, &ImportError{Index: -1, Reason: "top level must be an object"}
	}
	rawTasks, ok := obj["tasks"].([]any)
	if !ok {
		return nil, &ImportError{Index: -1, Reason: `missing "tasks" array`}
	}

	tasks := make([]model.Task, 0, len(rawTasks))
	for i, raw := range rawTasks {
		fields, ok := raw.(map[string]any)
		if !ok {
			return nil, &ImportError{Index: i, Reason: "task must be an object"}
		}
		t, err := normalize(fields, now, newID)
		if err != nil {
			return nil, &ImportError{Index: i, Reason: "bad field", Err: err}
		}
		tasks = append(tasks, t)
	}

	return merge.Merge(nil, tasks), nil
}

func normalize(f map[string]any, now time.Time, newID func() string) (model.Task, error) {
	nowMs := now.UnixMilli()

	t := model.Task{
		ID:    stringify(f["id"]),
		Title: stringify(f["title"]),
		Done:  truthy(f["done"]),
		Group: model.GroupToday,
	}
	if t.ID == "" {
		t.ID = newID()
	}
	if strings.TrimSpace(t.Title) == "" {
		t.Title = "Untitled"
	}
	if g, err := model.ParseGroup(stringify(f["group"])); err == nil {
		t.Group = g
	}

	var err error
	if t.CreatedAt, err = millis(f["createdAt"], nowMs); err != nil {
		return model.Task{}, fmt.Errorf("createdAt: %w", err)
	}
	if t.UpdatedAt, err = millis(f["updatedAt"], nowMs); err != nil {
		return model.Task{}, fmt.Errorf("updatedAt: %w", err)
	}
	if t.DeletedAt, err = millis(f["deletedAt"], 0); err != nil {
		return model.Task{}, fmt.Errorf("deletedAt: %w", err)
	}
	if t.UpdatedAt < t.CreatedAt {
		t.UpdatedAt = t.CreatedAt
	}
	if t.IsDeleted() && t.DeletedAt > t.UpdatedAt {
		t.UpdatedAt = t.DeletedAt
	}
	return t, nil
}

// stringify renders a JSON value as text; null and absent become ""
func stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		return x.String()
	case bool:
		return strconv.FormatBool(x)
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(b)
	}
}

func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	case json.Number:
		f, err := x.Float64()
		return err == nil && f != 0 && !math.IsNaN(f)
	default:
		return true
	}
}

// millis reads a timestamp in milliseconds. Absent, null and zero values
// yield def; numeric strings are accepted.
func millis(v any, def int64) (int64, error) {
	var s string
	switch x := v.(type) {
	case nil:
		return def, nil
	case json.Number:
		s = x.String()
	case string:
		s = strings.TrimSpace(x)
		if s == "" {
			return def, nil
		}
	default:
		return 0, fmt.Errorf("unexpected %T", v)
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f > maxMillis {
		return 0, fmt.Errorf("not a number: %q", s)
	}
	if f < 0 {
		return 0, fmt.Errorf("negative timestamp: %q", s)
	}
	ms := int64(f)
	if ms == 0 {
		return def, nil
	}
	return ms, nil
}
