package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"

	"tasksync/internal/config"
	"tasksync/internal/exitcode"
	"tasksync/internal/output"
	"tasksync/internal/remote"
	"tasksync/internal/service"
	"tasksync/internal/watch"
)

func init() {
	Register(&WatchCmd{})
}

// Subscriber is implemented by services that expose a change feed.
type Subscriber interface {
	Subscribe(ctx context.Context) (<-chan remote.Event, error)
}

// WatchCmd implements the watch command.
// It runs until interrupted.
type WatchCmd struct {
	remote bool
}

func (c *WatchCmd) Name() string       { return "watch" }
func (c *WatchCmd) Aliases() []string  { return nil }
func (c *WatchCmd) Synopsis() string   { return "Sync whenever the task file or the server changes" }
func (c *WatchCmd) Usage() string      { return "tasksync watch [common flags] [--remote]" }
func (c *WatchCmd) NeedsService() bool { return true }
func (c *WatchCmd) NeedsAuth() bool    { return true }

func (c *WatchCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.remote, "remote", false, "")
}

func (c *WatchCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	opts := watch.Options{
		Path:   cfg.TasksPath(),
		Logger: slog.Default(),
	}
	if !cfg.Quiet {
		opts.OnSync = func(res service.SyncResult) {
			output.FormatSyncResult(out, res)
		}
	}

	if c.remote {
		sub, ok := svc.(Subscriber)
		if !ok {
			fmt.Fprintln(errOut, "error: backend has no change feed")
			return exitcode.UserError
		}
		events, err := sub.Subscribe(ctx)
		if err != nil {
			return reportError(errOut, err)
		}
		opts.Events = events
	}

	if err := watch.New(svc, opts).Run(ctx); err != nil {
		return reportError(errOut, err)
	}
	return exitcode.Success
}
