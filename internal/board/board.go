// Package board owns the in-memory task collection.
//
// Every state transition goes through a Board: it applies the change,
// records the previous state in the history log, persists both to the local
// store and notifies subscribers. A Board is safe for concurrent use.
package board

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/existflow/trinote/internal/history"
	"github.com/existflow/trinote/internal/logger"
	"github.com/existflow/trinote/internal/merge"
	"github.com/existflow/trinote/internal/model"
	"github.com/existflow/trinote/internal/store"
)

var (
	ErrNotFound   = errors.New("task not found")
	ErrAmbiguous  = errors.New("task id is ambiguous")
	ErrEmptyTitle = model.ErrEmptyTitle
)

// Event describes a committed change
type Event struct {
	Label string
	Tasks []model.Task
}

// Options configure a Board
type Options struct {
	HistoryLimit int
	TombstoneTTL time.Duration
	Seed         bool
	Now          func() time.Time
	NewID        func() string
}

// Board is the single writer of the task collection
type Board struct {
	mu      sync.Mutex
	local   *store.Local
	tasks   []model.Task
	history *history.Log
	subs    []func(Event)
	now     func() time.Time
	newID   func() string
}

// New loads the board from local storage. A device with no stored collection
// starts with the example tasks when opts.Seed is set.
func New(local *store.Local, opts Options) *Board {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}

	b := &Board{
		local:   local,
		history: history.New(opts.HistoryLimit, local.LoadHistory()),
		now:     opts.Now,
		newID:   opts.NewID,
	}

	tasks, ok := local.LoadTasks()
	switch {
	case !ok && opts.Seed:
		tasks = b.seed()
		local.SaveTasks(tasks)
		logger.Info("Seeded example tasks", logger.F("count", len(tasks)))
	case !ok:
		tasks = []model.Task{}
	}

	if opts.TombstoneTTL > 0 {
		cutoff := b.now().Add(-opts.TombstoneTTL).UnixMilli()
		compacted := merge.Compact(tasks, cutoff)
		if len(compacted) != len(tasks) {
			logger.Debug("Compacted tombstones", logger.F("removed", len(tasks)-len(compacted)))
			tasks = compacted
			local.SaveTasks(tasks)
		}
	}

	b.tasks = merge.Sort(tasks)
	return b
}

func (b *Board) seed() []model.Task {
	now := b.now()
	return []model.Task{
		model.NewTask(b.newID(), "Press e to edit a task", model.GroupToday, now),
		model.NewTask(b.newID(), "Move me to Middle or Big with H and L", model.GroupToday, now),
	}
}

// Subscribe registers fn to be called after every committed change.
// fn runs on the goroutine that made the change, outside the board lock.
func (b *Board) Subscribe(fn func(Event)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs = append(b.subs, fn)
}

// Tasks returns the full collection, tombstones included, in canonical order
func (b *Board) Tasks() []model.Task {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]model.Task(nil), b.tasks...)
}

// Live returns the tasks that are not deleted, newest first
func (b *Board) Live() []model.Task {
	b.mu.Lock()
	defer b.mu.Unlock()
	return present(merge.Live(b.tasks))
}

// Group returns the live tasks of one bucket, optionally without completed ones
func (b *Board) Group(g model.Group, hideDone bool) []model.Task {
	b.mu.Lock()
	defer b.mu.Unlock()

	var out []model.Task
	for _, t := range b.tasks {
		if t.IsDeleted() || t.Group != g || (hideDone && t.Done) {
			continue
		}
		out = append(out, t)
	}
	return present(out)
}

// Counts returns the number of live tasks per bucket, completed ones included
func (b *Board) Counts() map[model.Group]int {
	b.mu.Lock()
	defer b.mu.Unlock()

	counts := make(map[model.Group]int, 3)
	for _, g := range model.Groups() {
		counts[g] = 0
	}
	for _, t := range b.tasks {
		if !t.IsDeleted() {
			counts[t.Group]++
		}
	}
	return counts
}

// present sorts for display: creation time descending, then id
func present(tasks []model.Task) []model.Task {
	sort.SliceStable(tasks, func(i, j int) bool {
		if tasks[i].CreatedAt != tasks[j].CreatedAt {
			return tasks[i].CreatedAt > tasks[j].CreatedAt
		}
		return tasks[i].ID < tasks[j].ID
	})
	return tasks
}

// Resolve finds a live task by full id or unique id prefix
func (b *Board) Resolve(ref string) (model.Task, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	i, err := b.resolveLocked(ref)
	if err != nil {
		return model.Task{}, err
	}
	return b.tasks[i], nil
}

func (b *Board) resolveLocked(ref string) (int, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return -1, ErrNotFound
	}

	for i, t := range b.tasks {
		if !t.IsDeleted() && t.ID == ref {
			return i, nil
		}
	}

	match := -1
	for i, t := range b.tasks {
		if t.IsDeleted() {
			continue
		}
		if strings.HasPrefix(t.ID, ref) {
			if match >= 0 {
				return -1, fmt.Errorf("%w: %q", ErrAmbiguous, ref)
			}
			match = i
		}
	}
	if match < 0 {
		return -1, fmt.Errorf("%w: %q", ErrNotFound, ref)
	}
	return match, nil
}

// Add creates a task in group
func (b *Board) Add(title string, g model.Group) (model.Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return model.Task{}, ErrEmptyTitle
	}
	if !g.Valid() {
		return model.Task{}, fmt.Errorf("%w: %q", model.ErrInvalidGroup, g)
	}

	b.mu.Lock()
	t := model.NewTask(b.newID(), title, g, b.now())
	next := append(append([]model.Task(nil), b.tasks...), t)
	b.commitLocked(history.LabelAdd, next)
	return t, nil
}

// Toggle flips the completion flag of a task
func (b *Board) Toggle(ref string) (model.Task, error) {
	return b.update(ref, history.LabelToggle, func(t model.Task, now time.Time) model.Task {
		return t.Toggled(now)
	})
}

// Rename changes the title of a task. An empty title is rejected.
func (b *Board) Rename(ref, title string) (model.Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return model.Task{}, ErrEmptyTitle
	}
	return b.update(ref, history.LabelRename, func(t model.Task, now time.Time) model.Task {
		return t.Renamed(title, now)
	})
}

// Move places a task in another bucket
func (b *Board) Move(ref string, g model.Group) (model.Task, error) {
	if !g.Valid() {
		return model.Task{}, fmt.Errorf("%w: %q", model.ErrInvalidGroup, g)
	}
	return b.update(ref, history.LabelMove, func(t model.Task, now time.Time) model.Task {
		return t.Moved(g, now)
	})
}

// Delete turns a task into a tombstone
func (b *Board) Delete(ref string) (model.Task, error) {
	return b.update(ref, history.LabelDelete, func(t model.Task, now time.Time) model.Task {
		return t.Deleted(now)
	})
}

func (b *Board) update(ref, label string, fn func(model.Task, time.Time) model.Task) (model.Task, error) {
	b.mu.Lock()
	i, err := b.resolveLocked(ref)
	if err != nil {
		b.mu.Unlock()
		return model.Task{}, err
	}

	next := append([]model.Task(nil), b.tasks...)
	next[i] = fn(next[i], b.now())
	updated := next[i]
	b.commitLocked(label, next)
	return updated, nil
}

// Merge reconciles incoming into the board and reports whether anything
// changed. Records that fail validation are skipped.
func (b *Board) Merge(incoming []model.Task, label string) bool {
	valid := make([]model.Task, 0, len(incoming))
	for _, t := range incoming {
		if err := t.Validate(); err != nil {
			logger.Warn("Skipping invalid task", logger.F("label", label), logger.F("error", err))
			continue
		}
		valid = append(valid, t)
	}

	b.mu.Lock()
	merged := merge.Merge(b.tasks, valid)
	if merge.Equal(merged, b.tasks) {
		b.mu.Unlock()
		return false
	}
	b.commitLocked(label, merged)
	return true
}

// Replace makes target the visible state of the board. Tasks absent from
// target are deleted and target records are re-stamped where needed so they
// win over the versions they replace, on this device and on every peer.
func (b *Board) Replace(target []model.Task, label string) error {
	for _, t := range target {
		if err := t.Validate(); err != nil {
			return err
		}
	}

	b.mu.Lock()
	now := b.now()
	current := make(map[string]model.Task, len(b.tasks))
	for _, t := range b.tasks {
		current[t.ID] = t
	}

	next := make([]model.Task, 0, len(b.tasks)+len(target))
	seen := make(map[string]bool, len(target))
	for _, t := range merge.Merge(nil, target) {
		seen[t.ID] = true
		if prev, ok := current[t.ID]; ok && model.Compare(t, prev) <= 0 {
			if t == prev {
				next = append(next, t)
				continue
			}
			t.UpdatedAt = prev.UpdatedAt
			t = restamp(t, now)
		}
		next = append(next, t)
	}
	for _, t := range b.tasks {
		if seen[t.ID] {
			continue
		}
		if !t.IsDeleted() {
			t = t.Deleted(now)
		}
		next = append(next, t)
	}

	if merge.Equal(next, b.tasks) {
		b.mu.Unlock()
		return nil
	}
	b.commitLocked(label, next)
	return nil
}

// restamp moves UpdatedAt past its current value, keeping a tombstone's
// DeletedAt aligned
func restamp(t model.Task, now time.Time) model.Task {
	ms := now.UnixMilli()
	if ms <= t.UpdatedAt {
		ms = t.UpdatedAt + 1
	}
	t.UpdatedAt = ms
	if t.IsDeleted() {
		t.DeletedAt = ms
	}
	return t
}

// Restore replaces the board with history entry i (0 is the most recent)
func (b *Board) Restore(i int) error {
	b.mu.Lock()
	e, ok := b.history.Get(i)
	b.mu.Unlock()
	if !ok {
		return fmt.Errorf("no history entry %d", i)
	}
	return b.Replace(e.Snapshot, history.LabelRestore)
}

// Clear deletes every live task
func (b *Board) Clear() error {
	b.mu.Lock()
	now := b.now()
	next := append([]model.Task(nil), b.tasks...)
	changed := false
	for i, t := range next {
		if !t.IsDeleted() {
			next[i] = t.Deleted(now)
			changed = true
		}
	}
	if !changed {
		b.mu.Unlock()
		return nil
	}
	b.commitLocked(history.LabelClear, next)
	return nil
}

// Snapshot records the current state in the history log without changing it
func (b *Board) Snapshot(label string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.history.Push(b.now().UnixMilli(), label, b.tasks)
	b.local.SaveHistory(b.history.Entries())
}

// History returns the recorded snapshots, most recent first
func (b *Board) History() []history.Entry {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.history.Entries()
}

// commitLocked records the previous state, installs next and persists it.
// It must be called with b.mu held and releases it before notifying.
func (b *Board) commitLocked(label string, next []model.Task) {
	b.history.Push(b.now().UnixMilli(), label, b.tasks)
	b.tasks = merge.Sort(next)

	b.local.SaveTasks(b.tasks)
	b.local.SaveHistory(b.history.Entries())

	ev := Event{Label: label, Tasks: append([]model.Task(nil), b.tasks...)}
	subs := append([]func(Event){}, b.subs...)
	b.mu.Unlock()

	logger.Debug("Board changed", logger.F("label", label), logger.F("tasks", len(ev.Tasks)))
	for _, fn := range subs {
		fn(ev)
	}
}
