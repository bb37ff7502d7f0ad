package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"tasksync/internal/config"
	"tasksync/internal/exitcode"
	"tasksync/internal/service"
)

func init() {
	Register(&PurgeCmd{})
}

// PurgeCmd implements the purge command.
type PurgeCmd struct{}

func (c *PurgeCmd) Name() string       { return "purge" }
func (c *PurgeCmd) Aliases() []string  { return nil }
func (c *PurgeCmd) Synopsis() string   { return "Delete the server copy of the task list" }
func (c *PurgeCmd) Usage() string      { return "tasksync purge [common flags]" }
func (c *PurgeCmd) NeedsService() bool { return true }
func (c *PurgeCmd) NeedsAuth() bool    { return true }

func (c *PurgeCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *PurgeCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if err := svc.Delete(ctx); err != nil {
		if service.IsNotFound(err) {
			fmt.Fprintln(errOut, "error: nothing stored on the server")
			return exitcode.UserError
		}
		return reportError(errOut, err)
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
