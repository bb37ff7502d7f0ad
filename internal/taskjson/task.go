// Package taskjson defines the task list model shared by clients and the server,
// together with the merge engine used to reconcile two copies of a list.
package taskjson

import (
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a task.
type Status string

const (
	StatusTodo    Status = "todo"
	StatusDone    Status = "done"
	StatusRemoved Status = "removed"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusDone, StatusRemoved:
		return true
	}
	return false
}

// Task is a single entry of a task list.
// Removal is a status change rather than a deletion so that it can win a merge.
type Task struct {
	ID       string   `json:"id" yaml:"id"`
	Status   Status   `json:"status" yaml:"status"`
	Text     string   `json:"text" yaml:"text"`
	Priority string   `json:"priority,omitempty" yaml:"priority,omitempty"`
	Projects []string `json:"projects,omitempty" yaml:"projects,omitempty"`
	Contexts []string `json:"contexts,omitempty" yaml:"contexts,omitempty"`
	Deps     []string `json:"deps,omitempty" yaml:"deps,omitempty"`
	Due      string   `json:"due,omitempty" yaml:"due,omitempty"`
	Created  string   `json:"created" yaml:"created"`
	Modified string   `json:"modified" yaml:"modified"`
}

// TaskList is an ordered list of tasks.
type TaskList []Task

// now is replaced in tests.
var now = func() time.Time { return time.Now().UTC() }

func timestamp(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}

// New creates a todo task with a fresh id.
func New(text string) Task {
	ts := timestamp(now())
	return Task{
		ID:       uuid.NewString(),
		Status:   StatusTodo,
		Text:     text,
		Created:  ts,
		Modified: ts,
	}
}

// MarkDone sets the status to done and bumps the modification time.
func (t *Task) MarkDone() {
	t.Status = StatusDone
	t.Modified = timestamp(now())
}

// MarkRemoved soft-deletes the task.
func (t *Task) MarkRemoved() {
	t.Status = StatusRemoved
	t.Modified = timestamp(now())
}

// ModifiedAt parses the modification time.
func (t Task) ModifiedAt() (time.Time, error) {
	return time.Parse(time.RFC3339Nano, t.Modified)
}

// Validate checks the fields the merge engine relies on.
func (t Task) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("task has empty id")
	}
	if !t.Status.Valid() {
		return fmt.Errorf("task %s: invalid status %q", t.ID, t.Status)
	}
	if _, err := time.Parse(time.RFC3339Nano, t.Created); err != nil {
		return fmt.Errorf("task %s: invalid created time: %w", t.ID, err)
	}
	if _, err := t.ModifiedAt(); err != nil {
		return fmt.Errorf("task %s: invalid modified time: %w", t.ID, err)
	}
	return nil
}

// Equal reports whether two tasks carry the same content.
func (t Task) Equal(o Task) bool {
	return t.ID == o.ID &&
		t.Status == o.Status &&
		t.Text == o.Text &&
		t.Priority == o.Priority &&
		t.Due == o.Due &&
		t.Created == o.Created &&
		t.Modified == o.Modified &&
		slices.Equal(t.Projects, o.Projects) &&
		slices.Equal(t.Contexts, o.Contexts) &&
		slices.Equal(t.Deps, o.Deps)
}

// Validate checks every task and rejects duplicate ids.
func (l TaskList) Validate() error {
	seen := make(map[string]struct{}, len(l))
	for _, t := range l {
		if err := t.Validate(); err != nil {
			return err
		}
		if _, dup := seen[t.ID]; dup {
			return fmt.Errorf("duplicate task id: %s", t.ID)
		}
		seen[t.ID] = struct{}{}
	}
	return nil
}

// Open returns the tasks that are not removed, in list order.
func (l TaskList) Open() TaskList {
	var out TaskList
	for _, t := range l {
		if t.Status != StatusRemoved {
			out = append(out, t)
		}
	}
	return out
}

// Index returns the position of the task with the given id, or -1.
func (l TaskList) Index(id string) int {
	for i, t := range l {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy of the list. Empty tag slices come back nil,
// the way they decode from JSON.
func (l TaskList) Clone() TaskList {
	if l == nil {
		return nil
	}
	out := make(TaskList, len(l))
	for i, t := range l {
		t.Projects = cloneTags(t.Projects)
		t.Contexts = cloneTags(t.Contexts)
		t.Deps = cloneTags(t.Deps)
		out[i] = t
	}
	return out
}

func cloneTags(s []string) []string {
	if len(s) == 0 {
		return nil
	}
	return slices.Clone(s)
}
