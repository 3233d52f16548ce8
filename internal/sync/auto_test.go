package sync

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/existflow/trinote/internal/board"
	"github.com/existflow/trinote/internal/model"
	"github.com/existflow/trinote/internal/share"
	"github.com/existflow/trinote/internal/store"
)

// fakeRemote records pushes and serves a fixed board per key
type fakeRemote struct {
	mu      sync.Mutex
	boards  map[string][]model.Task
	pushes  int
	pulls   int
	failErr error
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{boards: make(map[string][]model.Task)}
}

func (f *fakeRemote) Pull(_ context.Context, key string) ([]model.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pulls++
	if f.failErr != nil {
		return nil, f.failErr
	}
	return append([]model.Task(nil), f.boards[key]...), nil
}

func (f *fakeRemote) Push(_ context.Context, key string, tasks []model.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pushes++
	if f.failErr != nil {
		return f.failErr
	}
	f.boards[key] = append([]model.Task(nil), tasks...)
	return nil
}

func (f *fakeRemote) Clear(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.boards, key)
	return nil
}

func (f *fakeRemote) pushCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pushes
}

func (f *fakeRemote) board(key string) []model.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.Task(nil), f.boards[key]...)
}

func (f *fakeRemote) fail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failErr = err
}

func newTestSyncer(t *testing.T, remote Remote, key string) (*Syncer, *board.Board, *store.Local) {
	t.Helper()
	local := store.NewLocal(store.NewMemory())
	local.SetSyncKey(key)
	b := board.New(local, board.Options{})
	s := New(b, local, remote, Options{PushDebounce: 20 * time.Millisecond, Timeout: time.Second})
	t.Cleanup(s.Stop)
	return s, b, local
}

func TestCloudOff(t *testing.T) {
	s, b, _ := newTestSyncer(t, nil, "archi")

	_, err := b.Add("local only", model.GroupToday)
	require.NoError(t, err)

	assert.Equal(t, StatusOff, s.Status())
	assert.Equal(t, "cloud off", s.Status().String())
	assert.False(t, s.IsPending())
	assert.ErrorIs(t, s.Pull(context.Background()), ErrCloudOff)
	assert.NoError(t, s.Flush(context.Background()))
}

func TestNoKey(t *testing.T) {
	remote := newFakeRemote()
	s, b, _ := newTestSyncer(t, remote, "")

	_, _ = b.Add("task", model.GroupToday)
	assert.False(t, s.IsPending())
	assert.ErrorIs(t, s.Push(context.Background()), ErrNoKey)
	assert.Equal(t, StatusOff, s.Status())
}

func TestSchedulePush_Debounces(t *testing.T) {
	remote := newFakeRemote()
	s, b, _ := newTestSyncer(t, remote, "archi")

	for i := 0; i < 5; i++ {
		_, err := b.Add("task", model.GroupToday)
		require.NoError(t, err)
	}
	assert.Equal(t, StatusPushing, s.Status())

	require.Eventually(t, func() bool { return remote.pushCount() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, 1, remote.pushCount(), "one push per quiet period")
	assert.Len(t, remote.board("archi"), 5, "the push carries the latest state")
	require.Eventually(t, func() bool { return s.Status() == StatusIdle }, time.Second, 5*time.Millisecond)
}

func TestFlush(t *testing.T) {
	remote := newFakeRemote()
	local := store.NewLocal(store.NewMemory())
	local.SetSyncKey("archi")
	b := board.New(local, board.Options{})
	s := New(b, local, remote, Options{PushDebounce: time.Hour})
	defer s.Stop()

	require.NoError(t, s.Flush(context.Background()))
	assert.Equal(t, 0, remote.pushCount(), "nothing pending")

	_, _ = b.Add("urgent", model.GroupBig)
	require.True(t, s.IsPending())
	require.NoError(t, s.Flush(context.Background()))
	assert.Equal(t, 1, remote.pushCount())
	assert.False(t, s.IsPending())
	assert.Equal(t, StatusIdle, s.Status())
}

func TestPull_MergesRemoteBoard(t *testing.T) {
	remote := newFakeRemote()
	remote.boards["archi"] = []model.Task{
		{ID: "r1", Title: "from phone", Group: model.GroupMiddle, CreatedAt: 1, UpdatedAt: 2},
	}
	s, b, _ := newTestSyncer(t, remote, "archi")

	require.NoError(t, s.Pull(context.Background()))

	task, err := b.Resolve("r1")
	require.NoError(t, err)
	assert.Equal(t, "from phone", task.Title)
	assert.False(t, s.LastSync().IsZero())

	// Nothing local is missing remotely, so no push follows
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, 0, remote.pushCount())
	assert.Equal(t, StatusIdle, s.Status())
}

func TestPull_PushesLocalOnlyTasks(t *testing.T) {
	remote := newFakeRemote()
	remote.boards["archi"] = []model.Task{
		{ID: "r1", Title: "from phone", Group: model.GroupMiddle, CreatedAt: 1, UpdatedAt: 2},
	}
	s, b, _ := newTestSyncer(t, remote, "archi")

	// A push that failed earlier leaves the remote behind
	remote.fail(errors.New("offline"))
	_, err := b.Add("written offline", model.GroupToday)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return s.Status() == StatusError }, time.Second, 5*time.Millisecond)
	remote.fail(nil)

	require.NoError(t, s.Pull(context.Background()))
	require.Eventually(t, func() bool { return len(remote.board("archi")) == 2 }, time.Second, 5*time.Millisecond)
}

func TestFlush_NoFollowUpPush(t *testing.T) {
	remote := newFakeRemote()
	remote.boards["archi"] = []model.Task{
		{ID: "other", Title: "from laptop", Group: model.GroupBig, CreatedAt: 1, UpdatedAt: 1},
	}
	s, b, _ := newTestSyncer(t, remote, "archi")

	_, err := b.Add("from phone", model.GroupToday)
	require.NoError(t, err)
	require.NoError(t, s.Flush(context.Background()))

	// The remote task merged during the push does not queue another one
	assert.False(t, s.IsPending())
	assert.Equal(t, StatusIdle, s.Status())
	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, 1, remote.pushCount())
}

func TestPull_FailureLeavesBoardAlone(t *testing.T) {
	remote := newFakeRemote()
	s, b, _ := newTestSyncer(t, remote, "archi")
	before := b.Tasks()

	boom := errors.New("network down")
	remote.fail(boom)
	err := s.Pull(context.Background())

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, StatusError, s.Status())
	assert.ErrorIs(t, s.LastError(), boom)
	assert.Equal(t, before, b.Tasks())

	remote.fail(nil)
	require.NoError(t, s.Pull(context.Background()))
	assert.NoError(t, s.LastError())
}

func TestSetKey_PullsAndPersists(t *testing.T) {
	remote := newFakeRemote()
	remote.boards["team"] = []model.Task{
		{ID: "t1", Title: "shared", Group: model.GroupBig, CreatedAt: 1, UpdatedAt: 2},
	}
	s, b, local := newTestSyncer(t, remote, "")

	var mu sync.Mutex
	var seen []Status
	s.OnStatus(func(st Status) {
		mu.Lock()
		seen = append(seen, st)
		mu.Unlock()
	})

	require.NoError(t, s.SetKey(context.Background(), "  team  "))
	assert.Equal(t, "team", s.Key())
	assert.Equal(t, "team", local.SyncKey())

	_, err := b.Resolve("t1")
	require.NoError(t, err)

	mu.Lock()
	assert.Contains(t, seen, StatusPulling)
	mu.Unlock()

	assert.ErrorIs(t, s.SetKey(context.Background(), "   "), share.ErrInvalidKey)

	require.NoError(t, s.SetKey(context.Background(), ""))
	assert.Equal(t, "", local.SyncKey())
	assert.Equal(t, StatusOff, s.Status())
}

func TestClearRemote(t *testing.T) {
	remote := newFakeRemote()
	remote.boards["archi"] = []model.Task{{ID: "x", Title: "x", Group: model.GroupBig, CreatedAt: 1, UpdatedAt: 1}}
	s, _, _ := newTestSyncer(t, remote, "archi")

	require.NoError(t, s.ClearRemote(context.Background()))
	assert.Empty(t, remote.board("archi"))
}

func TestPollLoop(t *testing.T) {
	remote := newFakeRemote()
	local := store.NewLocal(store.NewMemory())
	local.SetSyncKey("archi")
	b := board.New(local, board.Options{})
	s := New(b, local, remote, Options{PullInterval: 10 * time.Millisecond})

	remote.mu.Lock()
	remote.boards["archi"] = []model.Task{{ID: "p", Title: "polled", Group: model.GroupToday, CreatedAt: 1, UpdatedAt: 1}}
	remote.mu.Unlock()

	require.Eventually(t, func() bool {
		_, err := b.Resolve("p")
		return err == nil
	}, time.Second, 5*time.Millisecond)

	s.Stop()
	s.Stop()
}

func TestPush_KeepsRemoteOnlyTasks(t *testing.T) {
	remote := newFakeRemote()
	remote.boards["archi"] = []model.Task{
		{ID: "other", Title: "from laptop", Group: model.GroupBig, CreatedAt: 1, UpdatedAt: 1},
	}
	local := store.NewLocal(store.NewMemory())
	local.SetSyncKey("archi")
	b := board.New(local, board.Options{})
	s := New(b, local, remote, Options{PushDebounce: time.Hour})
	defer s.Stop()

	_, err := b.Add("from phone", model.GroupToday)
	require.NoError(t, err)
	require.NoError(t, s.Flush(context.Background()))

	titles := []string{}
	for _, task := range remote.board("archi") {
		titles = append(titles, task.Title)
	}
	assert.ElementsMatch(t, []string{"from laptop", "from phone"}, titles)

	_, err = b.Resolve("other")
	assert.NoError(t, err, "the pushing device picks up the remote task too")
}
