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
	"tasksync/internal/taskjson"
)

func init() {
	Register(&ListCmd{})
}

// ListCmd implements the list command.
// Handles both `tasksync` (no args) and `tasksync list`.
type ListCmd struct{}

func (c *ListCmd) Name() string       { return "list" }
func (c *ListCmd) Aliases() []string  { return []string{"ls"} }
func (c *ListCmd) Synopsis() string   { return "List open tasks" }
func (c *ListCmd) Usage() string      { return "tasksync list [common flags]" }
func (c *ListCmd) NeedsService() bool { return false }
func (c *ListCmd) NeedsAuth() bool    { return false }

func (c *ListCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ListCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	list, code := loadTasks(cfg, errOut)
	if code != exitcode.Success {
		return code
	}

	var todo taskjson.TaskList
	for _, i := range todoTasks(list) {
		todo = append(todo, list[i])
	}

	if len(todo) == 0 {
		if !cfg.Quiet {
			fmt.Fprintln(out, "no tasks found")
		}
		return exitcode.Success
	}
	output.FormatTasks(out, todo)
	return exitcode.Success
}
