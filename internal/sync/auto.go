// Package sync mirrors the board to the remote store.
//
// Local changes are pushed after a quiet period; remote changes are pulled
// on demand and optionally on a timer. Failures are reported through the
// status and never retried on their own: the next change or pull tries again.
package sync

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/existflow/trinote/internal/board"
	"github.com/existflow/trinote/internal/history"
	"github.com/existflow/trinote/internal/logger"
	"github.com/existflow/trinote/internal/merge"
	"github.com/existflow/trinote/internal/model"
	"github.com/existflow/trinote/internal/share"
	"github.com/existflow/trinote/internal/store"
)

var (
	ErrCloudOff = errors.New("cloud off: no remote configured")
	ErrNoKey    = errors.New("no sync key set")
)

// Status is the state of the connection to the remote
type Status int

const (
	StatusOff Status = iota
	StatusIdle
	StatusPulling
	StatusPushing
	StatusError
)

// String returns the label shown to users
func (s Status) String() string {
	switch s {
	case StatusOff:
		return "cloud off"
	case StatusIdle:
		return "synced"
	case StatusPulling:
		return "pulling"
	case StatusPushing:
		return "pushing"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Remote is the document store the board is mirrored to
type Remote interface {
	Pull(ctx context.Context, key string) ([]model.Task, error)
	Push(ctx context.Context, key string, tasks []model.Task) error
	Clear(ctx context.Context, key string) error
}

// Options tune the syncer
type Options struct {
	PushDebounce time.Duration // Quiet period before a push
	PullInterval time.Duration // 0 disables periodic pulls
	Timeout      time.Duration // Per-operation timeout
}

// Syncer keeps a board and its remote copy converging
type Syncer struct {
	board        *board.Board
	local        *store.Local
	remote       Remote
	debounceTime time.Duration
	pollInterval time.Duration
	timeout      time.Duration

	mu       sync.Mutex
	key      string
	status   Status
	lastErr  error
	lastSync time.Time
	pending  bool
	timer    *time.Timer
	onStatus func(Status)

	// opMu allows one push or pull in flight
	opMu sync.Mutex

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// New creates a syncer for b. A nil remote means cloud off: every local
// operation keeps working and nothing is sent anywhere.
func New(b *board.Board, local *store.Local, remote Remote, opts Options) *Syncer {
	if opts.PushDebounce <= 0 {
		opts.PushDebounce = 500 * time.Millisecond
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}

	s := &Syncer{
		board:        b,
		local:        local,
		remote:       remote,
		debounceTime: opts.PushDebounce,
		pollInterval: opts.PullInterval,
		timeout:      opts.Timeout,
		key:          local.SyncKey(),
		stopCh:       make(chan struct{}),
	}
	s.status = s.restingStatus()

	b.Subscribe(func(ev board.Event) {
		// The syncer's own merges are handled where they happen
		if ev.Label == history.LabelPull {
			return
		}
		s.SchedulePush()
	})

	if remote != nil && s.pollInterval > 0 {
		s.wg.Add(1)
		go s.pollLoop()
	}
	return s
}

// OnStatus registers a callback for status changes. It runs outside the
// syncer lock, possibly on a background goroutine.
func (s *Syncer) OnStatus(fn func(Status)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onStatus = fn
}

// Status returns the current status
func (s *Syncer) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// LastError returns the error of the last failed operation, cleared by the
// next success
func (s *Syncer) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// LastSync returns when the last push or pull succeeded
func (s *Syncer) LastSync() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSync
}

// Key returns the active sync key
func (s *Syncer) Key() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.key
}

// Enabled reports whether a remote is configured
func (s *Syncer) Enabled() bool {
	return s.remote != nil
}

// IsPending returns true if a push is scheduled
func (s *Syncer) IsPending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// SetKey adopts a new sync key and pulls the board stored under it.
// An empty key disconnects the board from the remote.
func (s *Syncer) SetKey(ctx context.Context, key string) error {
	if key != "" {
		k, err := share.ValidateKey(key)
		if err != nil {
			return err
		}
		key = k
	}

	s.mu.Lock()
	changed := key != s.key
	s.key = key
	s.cancelPendingLocked()
	s.mu.Unlock()
	s.local.SetSyncKey(key)
	s.setStatus(s.restingStatus(), nil)

	if !changed || key == "" || s.remote == nil {
		return nil
	}
	logger.Info("Adopted sync key", logger.F("key", key))

	if err := s.Pull(ctx); err != nil {
		return err
	}
	// Publish what this device had before joining
	s.SchedulePush()
	return nil
}

// SchedulePush pushes the board after the debounce period. Every call
// restarts the period.
func (s *Syncer) SchedulePush() {
	if s.remote == nil {
		return
	}

	s.mu.Lock()
	if s.key == "" {
		s.mu.Unlock()
		return
	}
	select {
	case <-s.stopCh:
		s.mu.Unlock()
		return
	default:
	}

	s.pending = true
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.debounceTime, s.debouncedPush)
	s.mu.Unlock()

	s.setStatus(StatusPushing, nil)
}

func (s *Syncer) debouncedPush() {
	s.mu.Lock()
	if !s.pending {
		s.mu.Unlock()
		return
	}
	s.pending = false
	s.timer = nil
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	_ = s.push(ctx)
}

// Flush performs the pending push immediately, if there is one
func (s *Syncer) Flush(ctx context.Context) error {
	s.mu.Lock()
	if !s.pending {
		s.mu.Unlock()
		return nil
	}
	s.cancelPendingLocked()
	s.mu.Unlock()

	return s.push(ctx)
}

// Push uploads the board now
func (s *Syncer) Push(ctx context.Context) error {
	if err := s.ready(); err != nil {
		return err
	}
	s.mu.Lock()
	s.cancelPendingLocked()
	s.mu.Unlock()

	return s.push(ctx)
}

func (s *Syncer) push(ctx context.Context) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	key := s.Key()
	if key == "" {
		return ErrNoKey
	}

	s.setStatus(StatusPushing, nil)

	// The upload replaces the remote document, so fold in whatever other
	// devices stored since the last pull first.
	remoteTasks, err := s.remote.Pull(ctx, key)
	if err != nil {
		logger.Warn("Push aborted, remote board unreadable", logger.F("key", key), logger.F("error", err))
		s.finish(err)
		return err
	}
	s.board.Merge(remoteTasks, history.LabelPull)

	tasks := s.board.Tasks()
	err = s.remote.Push(ctx, key, tasks)
	if err != nil {
		logger.Warn("Push failed", logger.F("key", key), logger.F("error", err))
	} else {
		logger.Debug("Pushed board", logger.F("key", key), logger.F("tasks", len(tasks)))
	}
	s.finish(err)
	return err
}

// Pull fetches the remote board and merges it into the local one
func (s *Syncer) Pull(ctx context.Context) error {
	if err := s.ready(); err != nil {
		return err
	}

	s.opMu.Lock()
	defer s.opMu.Unlock()

	key := s.Key()
	s.setStatus(StatusPulling, nil)
	tasks, err := s.remote.Pull(ctx, key)
	if err != nil {
		logger.Warn("Pull failed", logger.F("key", key), logger.F("error", err))
		s.finish(err)
		return err
	}

	changed := s.board.Merge(tasks, history.LabelPull)
	// Local records the remote lacks or has older, e.g. after a failed push
	behind := !merge.Equal(merge.Merge(nil, tasks), s.board.Tasks())
	logger.Debug("Pulled board",
		logger.F("key", key),
		logger.F("tasks", len(tasks)),
		logger.F("changed", changed),
		logger.F("behind", behind))
	s.finish(nil)
	if behind {
		s.SchedulePush()
	}
	return nil
}

// Sync pulls then pushes, so both sides end with the merged board
func (s *Syncer) Sync(ctx context.Context) error {
	if err := s.Pull(ctx); err != nil {
		return err
	}
	return s.Push(ctx)
}

// ClearRemote deletes the board stored under the active key
func (s *Syncer) ClearRemote(ctx context.Context) error {
	if err := s.ready(); err != nil {
		return err
	}
	s.mu.Lock()
	s.cancelPendingLocked()
	key := s.key
	s.mu.Unlock()

	s.opMu.Lock()
	defer s.opMu.Unlock()
	err := s.remote.Clear(ctx, key)
	s.finish(err)
	return err
}

// Stop ends background activity. A pending push is dropped; call Flush first
// to send it.
func (s *Syncer) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
		s.mu.Lock()
		s.cancelPendingLocked()
		s.mu.Unlock()
	})
	s.wg.Wait()
}

// pollLoop periodically pulls remote changes
func (s *Syncer) pollLoop() {
	defer s.wg.Done()
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if s.Key() == "" {
				continue
			}
			ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
			_ = s.Pull(ctx)
			cancel()
		case <-s.stopCh:
			return
		}
	}
}

func (s *Syncer) ready() error {
	if s.remote == nil {
		return ErrCloudOff
	}
	if s.Key() == "" {
		return ErrNoKey
	}
	return nil
}

func (s *Syncer) cancelPendingLocked() {
	s.pending = false
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// restingStatus is the status when nothing is in flight
func (s *Syncer) restingStatus() Status {
	if s.remote == nil || s.Key() == "" {
		return StatusOff
	}
	return StatusIdle
}

// finish records the outcome of an operation
func (s *Syncer) finish(err error) {
	if err != nil {
		s.setStatus(StatusError, err)
		return
	}

	s.mu.Lock()
	s.lastSync = time.Now()
	pending := s.pending
	s.mu.Unlock()

	if pending {
		s.setStatus(StatusPushing, nil)
	} else {
		s.setStatus(s.restingStatus(), nil)
	}
}

func (s *Syncer) setStatus(st Status, err error) {
	s.mu.Lock()
	changed := s.status != st
	s.status = st
	if st == StatusError {
		s.lastErr = err
	} else if st == StatusIdle {
		s.lastErr = nil
	}
	fn := s.onStatus
	s.mu.Unlock()

	if changed && fn != nil {
		fn(st)
	}
}
