// Package service defines the backend-agnostic interface for task list synchronization.
package service

import "tasksync/internal/taskjson"

// Overwrite is the version that makes an upload bypass the version check.
const Overwrite = -1

// Snapshot is a decoded server state.
type Snapshot struct {
	Data    taskjson.TaskList
	Version int
}

// Diff holds the change summaries of a sync, one per side.
type Diff struct {
	Client taskjson.DiffStat `json:"client" yaml:"client"`
	Server taskjson.DiffStat `json:"server" yaml:"server"`
}

// SyncResult is the outcome of a successful sync.
type SyncResult struct {
	Data taskjson.TaskList
	Diff Diff

	// Version is the server version the merged list was written over.
	Version int

	// Attempts counts upload attempts, 1 when no conflict occurred.
	Attempts int
}
