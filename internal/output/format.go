// Package output provides formatters for CLI output.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"tasksync/internal/service"
	"tasksync/internal/taskjson"
)

// Export formats for pull.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// FormatTask formats a task line.
// Format: "{N:>4}  {TEXT}{ANNOTATIONS}\n" (4-wide right-aligned number, two spaces, text)
func FormatTask(w io.Writer, num int, task taskjson.Task) {
	fmt.Fprintf(w, "%4d  %s%s\n", num, normalizeText(task.Text), annotations(task))
}

// FormatTasks prints tasks numbered from 1.
func FormatTasks(w io.Writer, tasks taskjson.TaskList) {
	for i, t := range tasks {
		FormatTask(w, i+1, t)
	}
}

// FormatDiff prints one side's change summary of a sync.
// Format: "{LABEL}: {A} added, {U} updated, {R} removed\n"
func FormatDiff(w io.Writer, label string, d taskjson.DiffStat) {
	fmt.Fprintf(w, "%s: %d added, %d updated, %d removed\n", label, d.Added, d.Updated, d.Removed)
}

// FormatSyncResult prints both diffs of a sync.
func FormatSyncResult(w io.Writer, res service.SyncResult) {
	FormatDiff(w, "local", res.Diff.Client)
	FormatDiff(w, "server", res.Diff.Server)
}

// WriteTasks writes tasks in the given format.
func WriteTasks(w io.Writer, format string, tasks taskjson.TaskList) error {
	if tasks == nil {
		tasks = taskjson.TaskList{}
	}
	switch format {
	case FormatText, "":
		FormatTasks(w, tasks)
		return nil
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(tasks)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(tasks); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// annotations renders due date, priority, projects and contexts.
func annotations(t taskjson.Task) string {
	var parts []string
	if t.Priority != "" {
		parts = append(parts, "("+t.Priority+")")
	}
	for _, p := range t.Projects {
		parts = append(parts, "+"+p)
	}
	for _, c := range t.Contexts {
		parts = append(parts, "@"+c)
	}
	if t.Due != "" {
		parts = append(parts, "due:"+t.Due)
	}
	if len(parts) == 0 {
		return ""
	}
	return "  " + strings.Join(parts, " ")
}

// normalizeText normalizes task text for display.
// - Empty or whitespace-only text becomes "(untitled)"
// - Newlines are replaced with spaces
func normalizeText(text string) string {
	text = strings.ReplaceAll(text, "\r", " ")
	text = strings.ReplaceAll(text, "\n", " ")

	if strings.TrimSpace(text) == "" {
		return "(untitled)"
	}
	return text
}
