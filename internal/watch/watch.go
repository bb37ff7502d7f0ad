// Package watch keeps a local task file in sync: local edits and remote
// change notifications both trigger a sync cycle.
package watch

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"tasksync/internal/remote"
	"tasksync/internal/service"
	"tasksync/internal/taskjson"
)

// DefaultDebounce is the quiet period after a file event before syncing.
const DefaultDebounce = 500 * time.Millisecond

// Syncer runs one sync cycle and reads the server copy.
type Syncer interface {
	Sync(ctx context.Context, local taskjson.TaskList) (service.SyncResult, error)
	Download(ctx context.Context) (service.Snapshot, error)
}

// Options configure a Watcher.
type Options struct {
	// Path is the local task file.
	Path string

	// Events is an optional remote change feed.
	Events <-chan remote.Event

	// Debounce defaults to DefaultDebounce.
	Debounce time.Duration

	// Logger defaults to slog.Default().
	Logger *slog.Logger

	// OnSync is called after every successful sync.
	OnSync func(service.SyncResult)
}

// Watcher runs sync cycles on local and remote changes.
type Watcher struct {
	svc  Syncer
	opts Options

	// lastHash is the content written by the last sync.
	lastHash [sha256.Size]byte
	// lastData is the list written by the last sync.
	lastData taskjson.TaskList
	// lastVersion is the newest server version known to hold lastData,
	// or the version the last sync wrote against.
	lastVersion int
}

// New creates a watcher for opts.Path.
func New(svc Syncer, opts Options) *Watcher {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	opts.Path = filepath.Clean(opts.Path)
	return &Watcher{svc: svc, opts: opts, lastVersion: -1}
}

// Run syncs once, then on every change until ctx is done.
// Authentication failures stop the watcher; other sync errors are logged.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	defer fsw.Close()

	// Watch the directory: editors replace files on save.
	dir := filepath.Dir(w.opts.Path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}
	if err := fsw.Add(dir); err != nil {
		return fmt.Errorf("failed to watch directory %s: %w", dir, err)
	}

	if err := w.sync(ctx, "startup"); err != nil {
		return err
	}

	debounce := time.NewTimer(w.opts.Debounce)
	debounce.Stop()
	defer debounce.Stop()

	events := w.opts.Events
	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != w.opts.Path {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
				debounce.Reset(w.opts.Debounce)
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.opts.Logger.Warn("watch error", "err", err)

		case <-debounce.C:
			if !w.changed() {
				continue
			}
			if err := w.sync(ctx, "local change"); err != nil {
				return err
			}

		case ev, ok := <-events:
			if !ok {
				w.opts.Logger.Warn("change feed closed")
				events = nil
				continue
			}
			if ev.Version == w.lastVersion || !w.remoteChanged(ctx, ev.Version) {
				continue
			}
			if err := w.sync(ctx, "remote change"); err != nil {
				return err
			}
		}
	}
}

// changed reports whether the file differs from what the last sync wrote.
func (w *Watcher) changed() bool {
	data, err := os.ReadFile(w.opts.Path)
	if err != nil {
		return true
	}
	return sha256.Sum256(data) != w.lastHash
}

// remoteChanged reports whether the server holds something other than what
// the last sync wrote. Our own writes come back on the feed too, and the
// version they produce is only known once the server has been read.
func (w *Watcher) remoteChanged(ctx context.Context, version int) bool {
	snap, err := w.svc.Download(ctx)
	if err != nil {
		w.opts.Logger.Debug("failed to read server copy", "version", version, "err", err)
		return true
	}
	if !cmp.Equal(snap.Data, w.lastData, cmpopts.EquateEmpty()) {
		return true
	}
	w.lastVersion = snap.Version
	return false
}

func (w *Watcher) sync(ctx context.Context, reason string) error {
	log := w.opts.Logger.With("reason", reason)

	local, err := taskjson.Load(w.opts.Path)
	if err != nil {
		log.Error("failed to load tasks", "err", err)
		return nil
	}

	res, err := w.svc.Sync(ctx, local)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		if service.IsUnauthorized(err) {
			return err
		}
		log.Error("sync failed", "err", err)
		return nil
	}
	w.lastVersion = res.Version
	w.lastData = res.Data

	if err := taskjson.Save(w.opts.Path, res.Data); err != nil {
		log.Error("failed to save tasks", "err", err)
		return nil
	}
	if data, err := os.ReadFile(w.opts.Path); err == nil {
		w.lastHash = sha256.Sum256(data)
	}

	log.Info("synced", "version", w.lastVersion, "client", res.Diff.Client, "server", res.Diff.Server)
	if w.opts.OnSync != nil {
		w.opts.OnSync(res)
	}
	return nil
}
