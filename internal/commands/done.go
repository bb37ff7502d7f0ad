package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"tasksync/internal/config"
	"tasksync/internal/exitcode"
	"tasksync/internal/service"
	"tasksync/internal/taskjson"
)

func init() {
	Register(&DoneCmd{})
}

// DoneCmd implements the done command.
type DoneCmd struct{}

func (c *DoneCmd) Name() string       { return "done" }
func (c *DoneCmd) Aliases() []string  { return nil }
func (c *DoneCmd) Synopsis() string   { return "Mark a task completed" }
func (c *DoneCmd) Usage() string      { return "tasksync done [common flags] <n>" }
func (c *DoneCmd) NeedsService() bool { return false }
func (c *DoneCmd) NeedsAuth() bool    { return false }

func (c *DoneCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *DoneCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	return updateTask(cfg, args, (*taskjson.Task).MarkDone, out, errOut)
}

// updateTask applies fn to the task referenced by args and saves the list.
// Shared by done and rm.
func updateTask(cfg *config.Config, args []string, fn func(*taskjson.Task), out, errOut io.Writer) int {
	num, err := ParseTaskRef(args)
	if err != nil {
		if errors.Is(err, ErrTaskRefRequired) {
			fmt.Fprintln(errOut, "error: task reference required")
		} else {
			fmt.Fprintf(errOut, "error: %v\n", err)
		}
		return exitcode.UserError
	}

	list, code := loadTasks(cfg, errOut)
	if code != exitcode.Success {
		return code
	}

	idx, err := resolveTaskRef(list, num)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	fn(&list[idx])

	if code := saveTasks(cfg, list, errOut); code != exitcode.Success {
		return code
	}
	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
