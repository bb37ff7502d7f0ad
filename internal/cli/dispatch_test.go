package cli_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tasksync/internal/cli"
	"tasksync/internal/commands"
	"tasksync/internal/config"
	"tasksync/internal/exitcode"
	"tasksync/internal/service"
	"tasksync/internal/taskjson"
	"tasksync/internal/testutil"
)

// testFactory creates a service factory that returns the given FakeService.
func testFactory(svc *testutil.FakeService) cli.ServiceFactory {
	return func(ctx context.Context, cfg *config.Config) (service.Service, error) {
		return svc, nil
	}
}

// run dispatches args with --config dir inserted after the command name.
func run(t *testing.T, d *cli.Dispatcher, dir string, args ...string) (stdout, stderr string, code int) {
	t.Helper()
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		args = append([]string{args[0], "--config", dir}, args[1:]...)
	}
	var outBuf, errBuf bytes.Buffer
	code = d.Run(context.Background(), args, &outBuf, &errBuf)
	return outBuf.String(), errBuf.String(), code
}

func TestDispatcher_UnknownCommand(t *testing.T) {
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testFactory(testutil.NewFakeService()))

	_, stderr, code := run(t, dispatcher, t.TempDir(), "unknowncmd")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: unknown command: unknowncmd\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestDispatcher_FlagBeforeCommand(t *testing.T) {
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testFactory(testutil.NewFakeService()))

	_, stderr, code := run(t, dispatcher, t.TempDir(), "--quiet")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: unknown command: --quiet\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestDispatcher_HelpCommand(t *testing.T) {
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testFactory(testutil.NewFakeService()))

	stdout, stderr, code := run(t, dispatcher, t.TempDir(), "help")

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if !strings.Contains(stdout, "Usage:") {
		t.Error("expected help output to contain 'Usage:'")
	}
}

func TestDispatcher_VersionCommand(t *testing.T) {
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testFactory(testutil.NewFakeService()))

	stdout, _, code := run(t, dispatcher, t.TempDir(), "version")

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "tasksync 0.1.0\n" {
		t.Errorf("expected 'tasksync 0.1.0\\n', got %q", stdout)
	}
}

func TestDispatcher_UnknownFlag(t *testing.T) {
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testFactory(testutil.NewFakeService()))

	_, stderr, code := run(t, dispatcher, t.TempDir(), "help", "--unknown")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: unknown flag: -unknown\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestDispatcher_NoArgsLists(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testFactory(testutil.NewFakeService()))

	stdout, stderr, code := run(t, dispatcher, "")

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, stderr)
	}
	if stdout != "no tasks found\n" {
		t.Errorf("expected list output, got %q", stdout)
	}
}

func TestDispatcher_AddThenList(t *testing.T) {
	dir := t.TempDir()
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testFactory(testutil.NewFakeService()))

	if _, stderr, code := run(t, dispatcher, dir, "add", "--quiet", "Water", "plants", "@home"); code != exitcode.Success {
		t.Fatalf("add failed: %q", stderr)
	}
	stdout, _, _ := run(t, dispatcher, dir, "list")

	expected := "   1  Water plants  @home\n"
	if stdout != expected {
		t.Errorf("expected %q, got %q", expected, stdout)
	}
}

func TestDispatcher_NotLoggedIn(t *testing.T) {
	called := false
	factory := func(ctx context.Context, cfg *config.Config) (service.Service, error) {
		called = true
		return testutil.NewFakeService(), nil
	}
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, factory)

	_, stderr, code := run(t, dispatcher, t.TempDir(), "sync")

	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
	if stderr != "error: not logged in (run: tasksync login)\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
	if called {
		t.Error("service should not be created without a token")
	}
}

func TestDispatcher_Sync(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, config.TokenFile), []byte("fake-token\n"), 0600); err != nil {
		t.Fatal(err)
	}
	svc := testutil.NewFakeService()
	svc.SetData(taskjson.TaskList{taskjson.New("from server")})
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testFactory(svc))

	stdout, stderr, code := run(t, dispatcher, dir, "sync")

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, stderr)
	}
	expected := "local: 1 added, 0 updated, 0 removed\nserver: 0 added, 0 updated, 0 removed\n"
	if stdout != expected {
		t.Errorf("expected %q, got %q", expected, stdout)
	}

	stdout, _, _ = run(t, dispatcher, dir, "list")
	if stdout != "   1  from server\n" {
		t.Errorf("expected synced task in local list, got %q", stdout)
	}
}

func TestDispatcher_FactoryError(t *testing.T) {
	factory := func(ctx context.Context, cfg *config.Config) (service.Service, error) {
		return nil, errors.New("invalid server configuration: bad url")
	}
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, factory)

	_, stderr, code := run(t, dispatcher, t.TempDir(), "login")

	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
	if stderr != "error: invalid server configuration: bad url\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestDispatcher_InvalidConfig(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, config.ConfigFile), []byte("max_retries: -3\n"), 0600); err != nil {
		t.Fatal(err)
	}
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testFactory(testutil.NewFakeService()))

	_, stderr, code := run(t, dispatcher, dir, "list")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if !strings.Contains(stderr, "max_retries") {
		t.Errorf("expected config error, got %q", stderr)
	}
}

func TestDispatcher_MissingFlagValue(t *testing.T) {
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testFactory(testutil.NewFakeService()))

	var outBuf, errBuf bytes.Buffer
	code := dispatcher.Run(context.Background(), []string{"pull", "--format"}, &outBuf, &errBuf)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if errBuf.String() != "error: flag needs an argument: -format\n" {
		t.Errorf("unexpected stderr %q", errBuf.String())
	}
}

func TestDispatcher_CommandHelpFlag(t *testing.T) {
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testFactory(testutil.NewFakeService()))

	stdout, stderr, code := run(t, dispatcher, t.TempDir(), "push", "-h")

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, stderr)
	}
	if stdout != "Usage: tasksync push [common flags] [--version <n>]\n" {
		t.Errorf("unexpected stdout %q", stdout)
	}
}
