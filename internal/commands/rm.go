package commands

import (
	"context"
	"flag"
	"io"

	"tasksync/internal/config"
	"tasksync/internal/service"
	"tasksync/internal/taskjson"
)

func init() {
	Register(&RmCmd{})
}

// RmCmd implements the rm command.
// Removal is recorded as a status so that it propagates on the next sync.
type RmCmd struct{}

func (c *RmCmd) Name() string       { return "rm" }
func (c *RmCmd) Aliases() []string  { return []string{"delete"} }
func (c *RmCmd) Synopsis() string   { return "Remove a task" }
func (c *RmCmd) Usage() string      { return "tasksync rm [common flags] <n>" }
func (c *RmCmd) NeedsService() bool { return false }
func (c *RmCmd) NeedsAuth() bool    { return false }

func (c *RmCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *RmCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	return updateTask(cfg, args, (*taskjson.Task).MarkRemoved, out, errOut)
}
