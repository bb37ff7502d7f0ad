// Package syncer implements the download, merge and upload cycle that keeps a
// local task list and the server copy in agreement.
//
// Writes are guarded by the server's version number. When another client wrote
// first, the server rejects the upload and returns its current state; the
// coordinator merges again against that state and retries, up to MaxRetries
// times.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"tasksync/internal/codec"
	"tasksync/internal/remote"
	"tasksync/internal/service"
	"tasksync/internal/taskjson"
)

// Transport reads and writes the server resource.
type Transport interface {
	Get(ctx context.Context) (remote.Resource, error)
	Put(ctx context.Context, res remote.Resource) error
}

// Merger reconciles task lists. The coordinator knows nothing else about merging.
type Merger interface {
	Merge(local, remote taskjson.TaskList) taskjson.TaskList
	Compare(before, after taskjson.TaskList) taskjson.DiffStat
}

// Config holds coordinator settings.
type Config struct {
	// Codec encodes payloads (default: plain).
	Codec *codec.Codec

	// Merger reconciles lists (default: taskjson.Engine).
	Merger Merger

	// MaxRetries is the number of extra merge/upload rounds after a conflict.
	// Zero disables automatic retry.
	MaxRetries int

	// Logger receives state transitions at debug level (default: slog.Default()).
	Logger *slog.Logger
}

// Coordinator runs sync cycles against one server.
type Coordinator struct {
	transport  Transport
	codec      *codec.Codec
	merger     Merger
	maxRetries int
	logger     *slog.Logger
}

// New creates a coordinator.
func New(transport Transport, cfg Config) *Coordinator {
	if cfg.Codec == nil {
		cfg.Codec = codec.New(codec.Plain{})
	}
	if cfg.Merger == nil {
		cfg.Merger = taskjson.Engine{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	return &Coordinator{
		transport:  transport,
		codec:      cfg.Codec,
		merger:     cfg.Merger,
		maxRetries: cfg.MaxRetries,
		logger:     cfg.Logger,
	}
}

// Download fetches the server state and decodes it.
func (c *Coordinator) Download(ctx context.Context) (service.Snapshot, error) {
	res, err := c.transport.Get(ctx)
	if err != nil {
		return service.Snapshot{}, err
	}
	return c.decode(ctx, res)
}

// Upload encodes tasks and stores them if version still matches the server's.
func (c *Coordinator) Upload(ctx context.Context, tasks taskjson.TaskList, version int) error {
	data, err := c.codec.Encode(ctx, tasks)
	if err != nil {
		return err
	}
	return c.transport.Put(ctx, remote.Resource{Data: &data, Version: version})
}

func (c *Coordinator) decode(ctx context.Context, res remote.Resource) (service.Snapshot, error) {
	tasks, err := c.codec.Decode(ctx, res.DataString())
	if err != nil {
		return service.Snapshot{}, err
	}
	return service.Snapshot{Data: tasks, Version: res.Version}, nil
}

// Sync merges local into the server copy and writes the result back.
//
// The merge is always computed against the most recent server state seen: on a
// conflict the state carried by the rejection replaces the previous one. The
// returned diffs compare each side with the merged list that was accepted.
func (c *Coordinator) Sync(ctx context.Context, local taskjson.TaskList) (service.SyncResult, error) {
	run := &run{logger: c.logger, state: StateFetching}

	server, err := c.Download(ctx)
	if err != nil {
		run.to(StateFailed, "error", err)
		return service.SyncResult{}, err
	}

	for attempt := 0; ; attempt++ {
		run.to(StateMerging, "attempt", attempt, "version", server.Version)
		merged := c.merger.Merge(local, server.Data)

		run.to(StateWriting, "attempt", attempt, "version", server.Version)
		err := c.Upload(ctx, merged, server.Version)
		if err == nil {
			run.to(StateSucceeded, "attempt", attempt, "version", server.Version)
			return service.SyncResult{
				Data: merged,
				Diff: service.Diff{
					Client: c.merger.Compare(local, merged),
					Server: c.merger.Compare(server.Data, merged),
				},
				Version:  server.Version,
				Attempts: attempt + 1,
			}, nil
		}

		var conflict *remote.ConflictError
		if !errors.As(err, &conflict) {
			run.to(StateFailed, "error", err)
			return service.SyncResult{}, err
		}

		run.to(StateConflicted, "attempt", attempt, "version", server.Version)
		if attempt >= c.maxRetries {
			run.to(StateFailed, "error", err)
			return service.SyncResult{}, err
		}
		if conflict.Current == nil {
			err := fmt.Errorf("%w: conflict response without server state", service.ErrMalformedResponse)
			run.to(StateFailed, "error", err)
			return service.SyncResult{}, err
		}

		server, err = c.decode(ctx, *conflict.Current)
		if err != nil {
			run.to(StateFailed, "error", err)
			return service.SyncResult{}, err
		}
	}
}

// run tracks the state of one Sync call for logging.
type run struct {
	logger *slog.Logger
	state  State
}

func (r *run) to(next State, attrs ...any) {
	args := append([]any{"from", r.state.String(), "to", next.String()}, attrs...)
	r.logger.Debug("sync state", args...)
	r.state = next
}
