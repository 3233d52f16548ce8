package store

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/existflow/trinote/internal/history"
	"github.com/existflow/trinote/internal/model"
)

type failingKV struct{}

func (failingKV) Get(string) ([]byte, bool, error) { return nil, false, errors.New("disk gone") }
func (failingKV) Set(string, []byte) error         { return errors.New("disk gone") }
func (failingKV) Delete(string) error              { return errors.New("disk gone") }

func TestLocal_TasksRoundTrip(t *testing.T) {
	l := NewLocal(NewMemory())

	_, ok := l.LoadTasks()
	assert.False(t, ok, "nothing stored yet")

	tasks := []model.Task{
		{ID: "a", Title: "Plan", Group: model.GroupBig, CreatedAt: 1, UpdatedAt: 2},
		{ID: "b", Title: "Gone", Group: model.GroupToday, CreatedAt: 1, UpdatedAt: 3, DeletedAt: 3},
	}
	l.SaveTasks(tasks)

	got, ok := l.LoadTasks()
	require.True(t, ok)
	assert.Equal(t, tasks, got)
}

func TestLocal_EmptyCollectionIsStored(t *testing.T) {
	l := NewLocal(NewMemory())
	l.SaveTasks(nil)

	got, ok := l.LoadTasks()
	require.True(t, ok, "an emptied board must not be re-seeded")
	assert.Empty(t, got)
}

func TestLocal_HistoryAndSyncKey(t *testing.T) {
	kv := NewMemory()
	l := NewLocal(kv)

	l.SaveHistory([]history.Entry{{Timestamp: 7, Label: history.LabelAdd}})
	entries := l.LoadHistory()
	require.Len(t, entries, 1)
	assert.Equal(t, "add", entries[0].Label)

	assert.Equal(t, "", l.SyncKey())
	l.SetSyncKey("archi")
	assert.Equal(t, "archi", l.SyncKey())
	l.SetSyncKey("")
	assert.Equal(t, "", l.SyncKey())

	raw, ok, _ := kv.Get(KeyHistory)
	require.True(t, ok)
	assert.Contains(t, string(raw), `"timestamp":7`)
}

func TestLocal_CorruptValueIsIgnored(t *testing.T) {
	kv := NewMemory()
	require.NoError(t, kv.Set(KeyTasks, []byte("{not json")))

	_, ok := NewLocal(kv).LoadTasks()
	assert.False(t, ok)
}

func TestLocal_FailuresAreSwallowed(t *testing.T) {
	l := NewLocal(failingKV{})

	assert.NotPanics(t, func() {
		l.SaveTasks([]model.Task{{ID: "a"}})
		l.SaveHistory(nil)
		l.SetSyncKey("k")
	})
	_, ok := l.LoadTasks()
	assert.False(t, ok)
	assert.Nil(t, l.LoadHistory())
	assert.Equal(t, "", l.SyncKey())
}
