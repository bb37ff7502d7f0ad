package commands

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"tasksync/internal/config"
	"tasksync/internal/exitcode"
	"tasksync/internal/service"
)

func init() {
	Register(&LoginCmd{})
}

// LoginCmd implements the login command.
// The password is read without echo from a terminal, or as the first line
// of stdin otherwise.
type LoginCmd struct {
	// Stdin defaults to os.Stdin.
	Stdin io.Reader

	passwordStdin bool
}

func (c *LoginCmd) Name() string       { return "login" }
func (c *LoginCmd) Aliases() []string  { return nil }
func (c *LoginCmd) Synopsis() string   { return "Open a session on the task server" }
func (c *LoginCmd) Usage() string      { return "tasksync login [common flags] [--password-stdin]" }
func (c *LoginCmd) NeedsService() bool { return true }
func (c *LoginCmd) NeedsAuth() bool    { return false }

func (c *LoginCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.passwordStdin, "password-stdin", false, "")
}

func (c *LoginCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	password, err := c.readPassword(errOut)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	if err := svc.Login(ctx, password); err != nil {
		return reportError(errOut, err)
	}

	if err := cfg.SaveToken(svc.Token()); err != nil {
		fmt.Fprintf(errOut, "error: failed to save token: %v\n", err)
		return exitcode.AuthError
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}

func (c *LoginCmd) readPassword(errOut io.Writer) (string, error) {
	in := c.Stdin
	if in == nil {
		in = os.Stdin
	}

	if f, ok := in.(*os.File); ok && !c.passwordStdin && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(errOut, "Password: ")
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(errOut)
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(b), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return "", errors.New("password required")
	}
	return password, nil
}
