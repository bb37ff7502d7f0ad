package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"tasksync/internal/backend/googletasks"
	"tasksync/internal/config"
	"tasksync/internal/exitcode"
	"tasksync/internal/service"
	"tasksync/internal/taskjson"
)

func init() {
	Register(&ImportCmd{})
}

// Importer reads open tasks from Google Tasks.
type Importer interface {
	ResolveList(ctx context.Context, name string) (googletasks.List, error)
	OpenTasks(ctx context.Context, listID string) (taskjson.TaskList, error)
}

// ImportCmd implements the import command.
// Imported tasks keep stable ids, so importing twice updates instead of duplicating.
type ImportCmd struct {
	// NewImporter defaults to the Google Tasks client.
	NewImporter func(ctx context.Context, cfg *config.Config) (Importer, error)

	// Authorize defaults to googletasks.Authorize.
	Authorize func(ctx context.Context, cfg *config.Config, errOut io.Writer) error

	authorize bool
	list      string
}

func (c *ImportCmd) Name() string       { return "import" }
func (c *ImportCmd) Aliases() []string  { return nil }
func (c *ImportCmd) Synopsis() string   { return "Import open tasks from Google Tasks" }
func (c *ImportCmd) Usage() string      { return "tasksync import [common flags] [--authorize] [--list <name>]" }
func (c *ImportCmd) NeedsService() bool { return false }
func (c *ImportCmd) NeedsAuth() bool    { return false }

func (c *ImportCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.authorize, "authorize", false, "")
	fs.StringVar(&c.list, "list", "", "")
}

func (c *ImportCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if c.authorize {
		authorize := c.Authorize
		if authorize == nil {
			authorize = googletasks.Authorize
		}
		if err := authorize(ctx, cfg, errOut); err != nil {
			if errors.Is(err, googletasks.ErrNoClient) {
				printGoogleSetup(errOut, cfg)
			} else {
				fmt.Fprintf(errOut, "error: %v\n", err)
			}
			return exitcode.AuthError
		}
	}

	newImporter := c.NewImporter
	if newImporter == nil {
		newImporter = googleImporter
	}
	imp, err := newImporter(ctx, cfg)
	if err != nil {
		fmt.Fprintf(errOut, "error: auth error: %v\n", err)
		return exitcode.AuthError
	}

	list, err := imp.ResolveList(ctx, c.list)
	if err != nil {
		if service.IsNotFound(err) {
			fmt.Fprintf(errOut, "error: list not found: %s\n", c.list)
			return exitcode.UserError
		}
		return reportError(errOut, err)
	}
	imported, err := imp.OpenTasks(ctx, list.ID)
	if err != nil {
		return reportError(errOut, err)
	}

	local, code := loadTasks(cfg, errOut)
	if code != exitcode.Success {
		return code
	}
	merged := taskjson.Merge(local, imported)
	diff := taskjson.Compare(local, merged)
	if code := saveTasks(cfg, merged, errOut); code != exitcode.Success {
		return code
	}

	if !cfg.Quiet {
		fmt.Fprintf(out, "imported %d tasks from %s (%d new, %d updated)\n",
			len(imported), list.Title, diff.Added, diff.Updated)
	}
	return exitcode.Success
}

func googleImporter(ctx context.Context, cfg *config.Config) (Importer, error) {
	if !cfg.HasGoogleToken() {
		return nil, errors.New("not authorized with Google (run: tasksync import --authorize)")
	}
	return googletasks.New(ctx, cfg)
}

func printGoogleSetup(errOut io.Writer, cfg *config.Config) {
	fmt.Fprintf(errOut, "error: %s not found in %s\n\n", config.GoogleClientFile, cfg.Dir)
	fmt.Fprintln(errOut, "To import from Google Tasks, you need OAuth credentials:")
	fmt.Fprintln(errOut, "")
	fmt.Fprintln(errOut, "1. Go to https://console.cloud.google.com/apis/credentials")
	fmt.Fprintln(errOut, "2. Create a project (or select an existing one)")
	fmt.Fprintln(errOut, "3. Enable the Google Tasks API:")
	fmt.Fprintln(errOut, "   https://console.cloud.google.com/apis/library/tasks.googleapis.com")
	fmt.Fprintln(errOut, "4. Create OAuth 2.0 credentials:")
	fmt.Fprintln(errOut, "   - Click 'Create Credentials' > 'OAuth client ID'")
	fmt.Fprintln(errOut, "   - Choose 'Desktop app' as application type")
	fmt.Fprintln(errOut, "   - Download the JSON file")
	fmt.Fprintln(errOut, "5. Save it as:")
	fmt.Fprintf(errOut, "   %s\n", cfg.GoogleClientPath())
	fmt.Fprintln(errOut, "")
	fmt.Fprintln(errOut, "Then run 'tasksync import --authorize' again.")
}
