// Package cli turns command-line arguments into a command run.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"tasksync/internal/commands"
	"tasksync/internal/config"
	"tasksync/internal/exitcode"
	"tasksync/internal/logging"
	"tasksync/internal/service"
)

// defaultCommand runs when no arguments are given.
const defaultCommand = "list"

// ServiceFactory creates a Service from config.
// Used to inject the backend during dispatch.
type ServiceFactory func(ctx context.Context, cfg *config.Config) (service.Service, error)

// Dispatcher handles command-line parsing and dispatch.
type Dispatcher struct {
	registry *commands.Registry
	factory  ServiceFactory
}

// NewDispatcher creates a new dispatcher with the given registry and service factory.
func NewDispatcher(registry *commands.Registry, factory ServiceFactory) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		factory:  factory,
	}
}

// commonFlags are accepted by every command.
type commonFlags struct {
	configDir string
	quiet     bool
	debug     bool
}

func (f *commonFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.configDir, "config", "", "")
	fs.BoolVar(&f.quiet, "quiet", false, "")
	fs.BoolVar(&f.debug, "debug", false, "")
}

// Run parses arguments and dispatches to the appropriate command.
// Returns the exit code.
func (d *Dispatcher) Run(ctx context.Context, args []string, out, errOut io.Writer) int {
	name := defaultCommand
	if len(args) > 0 {
		name, args = args[0], args[1:]
	}

	// Flags require a command in front of them.
	cmd, ok := d.registry.Find(name)
	if !ok || strings.HasPrefix(name, "-") {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", name)
		return exitcode.UserError
	}

	fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var common commonFlags
	common.register(fs)
	cmd.RegisterFlags(fs)

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(out, "Usage: %s\n", cmd.Usage())
			return exitcode.Success
		}
		fmt.Fprintf(errOut, "error: %s\n", flagError(err))
		return exitcode.UserError
	}
	positional := fs.Args()
	if len(positional) > 0 && strings.HasPrefix(positional[0], "-") {
		fmt.Fprintf(errOut, "error: unknown flag: %s\n", positional[0])
		return exitcode.UserError
	}

	cfg, err := config.New(common.configDir)
	if err == nil {
		err = cfg.Load()
	}
	if err != nil {
		fmt.Fprintf(errOut, "error: %s\n", err)
		return exitcode.UserError
	}
	cfg.Quiet = common.quiet
	cfg.Debug = common.debug

	logs := logging.Setup(logging.Options{
		Debug:  common.debug,
		File:   cfg.Settings.LogFile,
		Stderr: errOut,
	})
	defer logs.Close()

	var svc service.Service
	if cmd.NeedsService() {
		if cmd.NeedsAuth() && !cfg.HasToken() {
			fmt.Fprintln(errOut, "error: not logged in (run: tasksync login)")
			return exitcode.AuthError
		}
		if d.factory == nil {
			fmt.Fprintln(errOut, "error: no backend configured")
			return exitcode.BackendError
		}
		svc, err = d.factory(ctx, cfg)
		if err != nil {
			fmt.Fprintf(errOut, "error: %s\n", err)
			return exitcode.AuthError
		}
		slog.Debug("service ready", "command", cmd.Name(), "server", cfg.Settings.Server)
	}

	return cmd.Run(ctx, cfg, svc, positional, out, errOut)
}

// flagError rewrites flag package errors into the CLI's wording.
func flagError(err error) string {
	msg := err.Error()
	switch {
	case strings.HasPrefix(msg, "flag needs an argument:"):
		name := strings.TrimSpace(strings.TrimPrefix(msg, "flag needs an argument:"))
		return "flag needs an argument: " + name
	case strings.HasPrefix(msg, "flag provided but not defined:"):
		name := strings.TrimSpace(strings.TrimPrefix(msg, "flag provided but not defined:"))
		return "unknown flag: " + name
	default:
		return msg
	}
}
