package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"

	"tasksync/internal/config"
	"tasksync/internal/exitcode"
	"tasksync/internal/service"
	"tasksync/internal/taskjson"
)

func init() {
	Register(&AddCmd{})
}

var (
	priorityRe = regexp.MustCompile(`^\([A-Z]\)$`)
	dateRe     = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// ErrTextRequired indicates a task without text.
var ErrTextRequired = errors.New("text required")

// AddCmd implements the add command.
type AddCmd struct{}

func (c *AddCmd) Name() string       { return "add" }
func (c *AddCmd) Aliases() []string  { return []string{"create"} }
func (c *AddCmd) Synopsis() string   { return "Create a task (+project @context due:YYYY-MM-DD)" }
func (c *AddCmd) Usage() string      { return "tasksync add [common flags] <text...>" }
func (c *AddCmd) NeedsService() bool { return false }
func (c *AddCmd) NeedsAuth() bool    { return false }

func (c *AddCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *AddCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	task, err := ParseTask(args, time.Now())
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	list, code := loadTasks(cfg, errOut)
	if code != exitcode.Success {
		return code
	}
	list = append(list, task)
	if code := saveTasks(cfg, list, errOut); code != exitcode.Success {
		return code
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}

// ParseTask builds a new task from words.
// "+word" adds a project, "@word" a context and a leading "(A)" a priority.
// "due:" takes a date (2026-01-31) or a phrase relative to now, with
// dashes for spaces (due:tomorrow, due:next-friday).
// The remaining words form the text.
func ParseTask(words []string, now time.Time) (taskjson.Task, error) {
	var (
		text     []string
		projects []string
		contexts []string
		priority string
		due      string
	)
	for i, w := range strings.Fields(strings.Join(words, " ")) {
		switch {
		case i == 0 && priorityRe.MatchString(w):
			priority = w[1:2]
		case len(w) > 1 && strings.HasPrefix(w, "+"):
			projects = append(projects, w[1:])
		case len(w) > 1 && strings.HasPrefix(w, "@"):
			contexts = append(contexts, w[1:])
		case len(w) > 4 && strings.HasPrefix(w, "due:"):
			d, err := parseDue(w[4:], now)
			if err != nil {
				return taskjson.Task{}, err
			}
			due = d
		default:
			text = append(text, w)
		}
	}
	if len(text) == 0 {
		return taskjson.Task{}, ErrTextRequired
	}

	task := taskjson.New(strings.Join(text, " "))
	task.Priority = priority
	task.Projects = projects
	task.Contexts = contexts
	task.Due = due
	return task, nil
}

var dueParser = func() *when.Parser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return w
}()

func parseDue(value string, now time.Time) (string, error) {
	if dateRe.MatchString(value) {
		if _, err := time.Parse(time.DateOnly, value); err != nil {
			return "", fmt.Errorf("invalid due date: %s", value)
		}
		return value, nil
	}

	phrase := strings.NewReplacer("-", " ", "_", " ").Replace(value)
	r, err := dueParser.Parse(phrase, now)
	if err != nil || r == nil {
		return "", fmt.Errorf("invalid due date: %s", value)
	}
	return r.Time.Format(time.DateOnly), nil
}
