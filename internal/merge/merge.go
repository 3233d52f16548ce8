// Package merge reconciles two independently edited task collections.
//
// The policy is last-write-wins on UpdatedAt with whole-record replacement:
// no field-level merge is attempted. Equal timestamps are resolved by
// model.Compare, a fixed ordering of record content, so that Merge is
// commutative, associative and idempotent.
package merge

import (
	"sort"

	"github.com/existflow/trinote/internal/model"
)

// Merge combines local and incoming into a single collection.
//
// The result holds exactly the union of ids from both inputs. For an id present
// on both sides the winning record is the one model.Compare ranks higher; a
// record present on one side only is carried through unchanged. The result is
// in canonical order (see Sort). Neither input is modified.
func Merge(local, incoming []model.Task) []model.Task {
	byID := make(map[string]model.Task, len(local)+len(incoming))
	for _, src := range [][]model.Task{local, incoming} {
		for _, t := range src {
			prev, ok := byID[t.ID]
			if !ok || model.Compare(t, prev) > 0 {
				byID[t.ID] = t
			}
		}
	}

	out := make([]model.Task, 0, len(byID))
	for _, t := range byID {
		out = append(out, t)
	}
	sortCanonical(out)
	return out
}

// Sort returns a copy of tasks in canonical order: UpdatedAt descending, then
// id ascending.
func Sort(tasks []model.Task) []model.Task {
	out := make([]model.Task, len(tasks))
	copy(out, tasks)
	sortCanonical(out)
	return out
}

func sortCanonical(tasks []model.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		if tasks[i].UpdatedAt != tasks[j].UpdatedAt {
			return tasks[i].UpdatedAt > tasks[j].UpdatedAt
		}
		return tasks[i].ID < tasks[j].ID
	})
}

// Compact drops tombstones deleted before the cutoff (ms since epoch).
// Live tasks and recent tombstones are kept in their original order.
func Compact(tasks []model.Task, before int64) []model.Task {
	out := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.IsDeleted() && t.DeletedAt < before {
			continue
		}
		out = append(out, t)
	}
	return out
}

// Live returns the tasks that are not tombstones
func Live(tasks []model.Task) []model.Task {
	out := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if !t.IsDeleted() {
			out = append(out, t)
		}
	}
	return out
}

// Equal reports whether two collections hold the same records regardless of order
func Equal(a, b []model.Task) bool {
	if len(a) != len(b) {
		return false
	}
	byID := make(map[string]model.Task, len(a))
	for _, t := range a {
		byID[t.ID] = t
	}
	for _, t := range b {
		if other, ok := byID[t.ID]; !ok || other != t {
			return false
		}
	}
	return true
}
