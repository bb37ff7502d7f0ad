package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"tasksync/internal/config"
	"tasksync/internal/exitcode"
	"tasksync/internal/output"
	"tasksync/internal/service"
)

func init() {
	Register(&PullCmd{})
}

// PullCmd implements the pull command.
// Without --stdout the server copy replaces the local task file.
type PullCmd struct {
	format string
	stdout bool
}

func (c *PullCmd) Name() string       { return "pull" }
func (c *PullCmd) Aliases() []string  { return []string{"download"} }
func (c *PullCmd) Synopsis() string   { return "Download the server task list" }
func (c *PullCmd) Usage() string      { return "tasksync pull [common flags] [--format text|json|yaml] [--stdout]" }
func (c *PullCmd) NeedsService() bool { return true }
func (c *PullCmd) NeedsAuth() bool    { return true }

func (c *PullCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.format, "format", output.FormatText, "")
	fs.BoolVar(&c.stdout, "stdout", false, "")
}

func (c *PullCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	switch c.format {
	case output.FormatText, output.FormatJSON, output.FormatYAML:
	default:
		fmt.Fprintf(errOut, "error: unknown format: %s\n", c.format)
		return exitcode.UserError
	}

	snap, err := svc.Download(ctx)
	if err != nil {
		return reportError(errOut, err)
	}

	if c.stdout {
		if err := output.WriteTasks(out, c.format, snap.Data); err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}
		return exitcode.Success
	}

	if code := saveTasks(cfg, snap.Data, errOut); code != exitcode.Success {
		return code
	}
	if !cfg.Quiet {
		fmt.Fprintf(out, "pulled %d tasks (version %d)\n", len(snap.Data), snap.Version)
	}
	return exitcode.Success
}
