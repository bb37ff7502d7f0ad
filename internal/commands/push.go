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
	Register(&PushCmd{})
}

// PushCmd implements the push command.
// The default version overwrites whatever the server holds.
type PushCmd struct {
	version int
}

func (c *PushCmd) Name() string       { return "push" }
func (c *PushCmd) Aliases() []string  { return []string{"upload"} }
func (c *PushCmd) Synopsis() string   { return "Upload the local task file" }
func (c *PushCmd) Usage() string      { return "tasksync push [common flags] [--version <n>]" }
func (c *PushCmd) NeedsService() bool { return true }
func (c *PushCmd) NeedsAuth() bool    { return true }

func (c *PushCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.IntVar(&c.version, "version", service.Overwrite, "")
}

func (c *PushCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if c.version < service.Overwrite {
		fmt.Fprintf(errOut, "error: invalid version: %d\n", c.version)
		return exitcode.UserError
	}

	local, code := loadTasks(cfg, errOut)
	if code != exitcode.Success {
		return code
	}

	if err := svc.Upload(ctx, local, c.version); err != nil {
		return reportError(errOut, err)
	}

	if !cfg.Quiet {
		fmt.Fprintf(out, "pushed %d tasks\n", len(local))
	}
	return exitcode.Success
}
