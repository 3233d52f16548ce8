package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/existflow/trinote/internal/board"
	"github.com/existflow/trinote/internal/db"
	"github.com/existflow/trinote/internal/logger"
	"github.com/existflow/trinote/internal/remote"
	"github.com/existflow/trinote/internal/share"
	"github.com/existflow/trinote/internal/store"
	tsync "github.com/existflow/trinote/internal/sync"
)

// app bundles the board and its plumbing for one command run
type app struct {
	db     *db.DB
	local  *store.Local
	board  *board.Board
	remote *remote.Client
	syncer *tsync.Syncer
}

// openApp opens the local store, loads the board and connects the remote.
// A remote that cannot be reached leaves the board working offline.
// poll enables periodic pulls for long-running sessions.
func openApp(ctx context.Context, poll bool) (*app, error) {
	database, err := db.Open(db.DefaultDBPath(cfg.DataDir))
	if err != nil {
		logger.Error("Failed to open database", logger.F("error", err))
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	a := &app{db: database, local: store.NewLocal(database)}
	a.board = board.New(a.local, board.Options{
		HistoryLimit: cfg.HistoryLimit,
		TombstoneTTL: cfg.TombstoneTTL,
		Seed:         cfg.SeedExamples,
	})

	client, err := remote.New(ctx, cfg.Remote)
	if err != nil {
		logger.Warn("Remote unavailable, working offline", logger.F("error", err))
		fmt.Fprintf(os.Stderr, "⚠️  Remote unavailable, working offline: %v\n", err)
		client = nil
	}

	var rem tsync.Remote
	if client != nil {
		a.remote = client
		rem = client
	}

	opts := tsync.Options{
		PushDebounce: cfg.Remote.PushDebounce,
		Timeout:      cfg.Remote.Timeout,
	}
	if poll {
		opts.PullInterval = cfg.Remote.PullInterval
	}
	a.syncer = tsync.New(a.board, a.local, rem, opts)

	if openLink != "" {
		if err := a.adoptLink(ctx, openLink); err != nil {
			a.close()
			return nil, err
		}
	}
	return a, nil
}

// adoptLink switches to the sync key carried by a share link
func (a *app) adoptLink(ctx context.Context, link string) error {
	key, err := share.ValidateKey(share.KeyFromLink(link))
	if err != nil {
		return fmt.Errorf("link has no usable #key= fragment: %w", err)
	}
	if err := a.syncer.SetKey(ctx, key); err != nil {
		fmt.Printf("⚠️  Key set, but pull failed: %v\n", err)
		return nil
	}
	fmt.Printf("🔑 Sync key: %s\n", key)
	return nil
}

// close sends any pending push and releases resources
func (a *app) close() {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Remote.Timeout)
	defer cancel()

	if err := a.syncer.Flush(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "⚠️  Sync failed: %v\n", err)
	}
	a.syncer.Stop()

	if a.remote != nil {
		_ = a.remote.Close()
	}
	_ = a.db.Close()
	logger.Debug("Database closed")
}
