package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"tasksync/internal/config"
	"tasksync/internal/exitcode"
	"tasksync/internal/service"
)

func init() {
	Register(&HelpCmd{})
}

// HelpCmd implements the help command.
type HelpCmd struct {
	// Registry defaults to DefaultRegistry.
	Registry *Registry
}

func (c *HelpCmd) Name() string       { return "help" }
func (c *HelpCmd) Aliases() []string  { return nil }
func (c *HelpCmd) Synopsis() string   { return "Print usage" }
func (c *HelpCmd) Usage() string      { return "tasksync help [command]" }
func (c *HelpCmd) NeedsService() bool { return false }
func (c *HelpCmd) NeedsAuth() bool    { return false }

func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	reg := c.Registry
	if reg == nil {
		reg = DefaultRegistry
	}

	if len(args) > 0 {
		cmd, ok := reg.Find(args[0])
		if !ok {
			fmt.Fprintf(errOut, "error: unknown command: %s\n", args[0])
			return exitcode.UserError
		}
		fmt.Fprintf(out, "Usage: %s\n\n%s\n", cmd.Usage(), cmd.Synopsis())
		if aliases := cmd.Aliases(); len(aliases) > 0 {
			fmt.Fprintf(out, "Aliases: %s\n", strings.Join(aliases, ", "))
		}
		return exitcode.Success
	}

	fmt.Fprint(out, usageHeader)
	for _, cmd := range reg.All() {
		fmt.Fprintf(out, "  %-9s %s\n", cmd.Name(), cmd.Synopsis())
	}
	fmt.Fprint(out, usageFooter)
	return exitcode.Success
}

const usageHeader = `Usage:
  tasksync                                  List open tasks
  tasksync <command> [common flags] [args]

Commands:
`

const usageFooter = `
Common flags:
  --config <dir>   Override config directory
  --quiet          Suppress informational output
  --debug          Print debug logs to stderr

Run 'tasksync help <command>' for a command's flags.
`
