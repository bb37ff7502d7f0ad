package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"tasksync/internal/config"
	"tasksync/internal/exitcode"
	"tasksync/internal/service"
)

func init() {
	Register(&InitCmd{})
}

// InitCmd implements the init command.
type InitCmd struct {
	server string
	force  bool
}

func (c *InitCmd) Name() string       { return "init" }
func (c *InitCmd) Aliases() []string  { return nil }
func (c *InitCmd) Synopsis() string   { return "Write a default config file" }
func (c *InitCmd) Usage() string      { return "tasksync init [common flags] [--server <url>] [--force]" }
func (c *InitCmd) NeedsService() bool { return false }
func (c *InitCmd) NeedsAuth() bool    { return false }

func (c *InitCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.server, "server", "", "")
	fs.BoolVar(&c.force, "force", false, "")
}

func (c *InitCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	s := config.DefaultSettings()
	if c.server != "" {
		s.Server = c.server
	}

	if err := cfg.WriteDefault(s, c.force); err != nil {
		if errors.Is(err, os.ErrExist) {
			fmt.Fprintf(errOut, "error: %s already exists (use --force to overwrite)\n", cfg.ConfigPath())
		} else {
			fmt.Fprintf(errOut, "error: %v\n", err)
		}
		return exitcode.UserError
	}

	if !cfg.Quiet {
		fmt.Fprintf(out, "wrote %s\n", cfg.ConfigPath())
	}
	return exitcode.Success
}
