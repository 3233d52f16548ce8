package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTask_Defaults(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_000)
	task := NewTask("a1", "Write report", GroupToday, now)

	assert.Equal(t, "a1", task.ID)
	assert.False(t, task.Done)
	assert.Equal(t, now.UnixMilli(), task.CreatedAt)
	assert.Equal(t, task.CreatedAt, task.UpdatedAt)
	assert.False(t, task.IsDeleted())
	require.NoError(t, task.Validate())
}

func TestParseGroup(t *testing.T) {
	cases := map[string]Group{
		"big":     GroupBig,
		"  BIG ":  GroupBig,
		"middle":  GroupMiddle,
		"mid":     GroupMiddle,
		"today":   GroupToday,
		"t":       GroupToday,
	}
	for in, want := range cases {
		got, err := ParseGroup(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseGroup("urgent")
	assert.Error(t, err)
}

func TestGroups_Order(t *testing.T) {
	assert.Equal(t, []Group{GroupBig, GroupMiddle, GroupToday}, Groups())
	assert.Equal(t, "Middle", GroupMiddle.Label())
}

func TestValidate(t *testing.T) {
	base := NewTask("x", "title", GroupBig, time.UnixMilli(100))

	noID := base
	noID.ID = ""
	assert.ErrorIs(t, noID.Validate(), ErrMissingID)

	blank := base
	blank.Title = "   "
	assert.ErrorIs(t, blank.Validate(), ErrEmptyTitle)

	badGroup := base
	badGroup.Group = "someday"
	assert.ErrorIs(t, badGroup.Validate(), ErrInvalidGroup)

	backwards := base
	backwards.UpdatedAt = base.CreatedAt - 1
	assert.ErrorIs(t, backwards.Validate(), ErrTimestamps)
}

func TestMutations_BumpUpdatedAt(t *testing.T) {
	created := time.UnixMilli(1_000)
	task := NewTask("x", "old", GroupToday, created)
	later := time.UnixMilli(2_000)

	toggled := task.Toggled(later)
	assert.True(t, toggled.Done)
	assert.Equal(t, int64(2_000), toggled.UpdatedAt)
	assert.Equal(t, task.CreatedAt, toggled.CreatedAt)

	renamed := task.Renamed("new", later)
	assert.Equal(t, "new", renamed.Title)
	assert.Equal(t, int64(2_000), renamed.UpdatedAt)

	moved := task.Moved(GroupBig, later)
	assert.Equal(t, GroupBig, moved.Group)
	assert.Equal(t, int64(2_000), moved.UpdatedAt)

	// the receiver is a value; the original is untouched
	assert.False(t, task.Done)
	assert.Equal(t, "old", task.Title)
}

func TestMutations_NeverMoveBackwards(t *testing.T) {
	task := NewTask("x", "t", GroupToday, time.UnixMilli(5_000))

	sameTick := task.Toggled(time.UnixMilli(5_000))
	assert.Equal(t, int64(5_001), sameTick.UpdatedAt)

	skewed := sameTick.Renamed("u", time.UnixMilli(10))
	assert.Equal(t, int64(5_002), skewed.UpdatedAt)
	require.NoError(t, skewed.Validate())
}

func TestDeleted_Tombstone(t *testing.T) {
	task := NewTask("x", "t", GroupToday, time.UnixMilli(100))
	gone := task.Deleted(time.UnixMilli(300))

	assert.True(t, gone.IsDeleted())
	assert.Equal(t, int64(300), gone.UpdatedAt)
	assert.Equal(t, gone.UpdatedAt, gone.DeletedAt)
}

func TestCompare(t *testing.T) {
	base := NewTask("x", "alpha", GroupToday, time.UnixMilli(100))

	newer := base.Renamed("beta", time.UnixMilli(200))
	assert.Positive(t, Compare(newer, base))
	assert.Negative(t, Compare(base, newer))

	assert.Zero(t, Compare(base, base))

	// equal UpdatedAt falls back to content, symmetric in both directions
	done := base
	done.Done = true
	assert.Positive(t, Compare(done, base))
	assert.Negative(t, Compare(base, done))

	tomb := base
	tomb.DeletedAt = base.UpdatedAt
	assert.Positive(t, Compare(tomb, done))

	big := base
	big.Group = GroupBig
	assert.Positive(t, Compare(big, base))

	titled := base
	titled.Title = "zulu"
	assert.Positive(t, Compare(titled, base))
}
