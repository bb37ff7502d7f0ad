package commands

import (
	"context"
	"flag"
	"io"
	"log/slog"

	"tasksync/internal/config"
	"tasksync/internal/exitcode"
	"tasksync/internal/output"
	"tasksync/internal/service"
)

func init() {
	Register(&SyncCmd{})
}

// SyncCmd implements the sync command.
type SyncCmd struct{}

func (c *SyncCmd) Name() string       { return "sync" }
func (c *SyncCmd) Aliases() []string  { return nil }
func (c *SyncCmd) Synopsis() string   { return "Merge the local task file with the server" }
func (c *SyncCmd) Usage() string      { return "tasksync sync [common flags]" }
func (c *SyncCmd) NeedsService() bool { return true }
func (c *SyncCmd) NeedsAuth() bool    { return true }

func (c *SyncCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *SyncCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	local, code := loadTasks(cfg, errOut)
	if code != exitcode.Success {
		return code
	}

	res, err := svc.Sync(ctx, local)
	if err != nil {
		return reportError(errOut, err)
	}
	slog.Debug("sync done", "version", res.Version, "attempts", res.Attempts)

	if code := saveTasks(cfg, res.Data, errOut); code != exitcode.Success {
		return code
	}

	if !cfg.Quiet {
		output.FormatSyncResult(out, res)
	}
	return exitcode.Success
}
