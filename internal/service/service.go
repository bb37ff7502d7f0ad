// Package service defines the backend-agnostic interface for task list synchronization.
package service

import (
	"context"

	"tasksync/internal/taskjson"
)

// Service defines the interface for task server operations.
// All server calls go through this interface.
// Commands never import the transport directly.
type Service interface {
	// Login exchanges a password for a bearer token and keeps it.
	// On failure no token is stored.
	Login(ctx context.Context, password string) error

	// Logout invalidates the token server-side and forgets it locally,
	// even when the server call fails.
	Logout(ctx context.Context) error

	// Token returns the current bearer token, empty when logged out.
	Token() string

	// Download fetches and decodes the stored task list with its version.
	Download(ctx context.Context) (Snapshot, error)

	// Upload stores a task list if version matches the server's version.
	// Overwrite skips the check.
	Upload(ctx context.Context, tasks taskjson.TaskList, version int) error

	// Sync merges local with the server copy and writes the result back,
	// retrying on conflicting writes within the configured budget.
	Sync(ctx context.Context, local taskjson.TaskList) (SyncResult, error)

	// Delete removes the stored task list.
	Delete(ctx context.Context) error
}
