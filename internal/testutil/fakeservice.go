// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"net/http"
	"sync"

	"tasksync/internal/service"
	"tasksync/internal/taskjson"
)

// Password is the password FakeService accepts.
const Password = "admin"

// FakeService is an in-memory implementation of service.Service for testing.
type FakeService struct {
	mu      sync.RWMutex
	token   string
	data    taskjson.TaskList
	version int
	stored  bool

	// Uploads records the version of every upload attempt.
	Uploads []int

	// Error injection for testing
	LoginErr    error
	LogoutErr   error
	DownloadErr error
	UploadErr   error
	SyncErr     error
	DeleteErr   error
}

// NewFakeService creates an empty, logged-in FakeService.
func NewFakeService() *FakeService {
	return &FakeService{token: "fake-token"}
}

// SetData replaces the stored list, bumping the version.
func (f *FakeService) SetData(tasks taskjson.TaskList) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data = tasks.Clone()
	f.version++
	f.stored = true
}

// Data returns the stored list and its version.
func (f *FakeService) Data() (taskjson.TaskList, int) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.data.Clone(), f.version
}

// SetToken replaces the session token.
func (f *FakeService) SetToken(token string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.token = token
}

// Login implements service.Service.
func (f *FakeService) Login(ctx context.Context, password string) error {
	if f.LoginErr != nil {
		return f.LoginErr
	}
	if password != Password {
		return &service.HTTPError{Status: http.StatusUnauthorized, Message: "invalid password"}
	}
	f.SetToken("fake-token")
	return nil
}

// Logout implements service.Service.
func (f *FakeService) Logout(ctx context.Context) error {
	f.SetToken("")
	return f.LogoutErr
}

// Token implements service.Service.
func (f *FakeService) Token() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.token
}

// Download implements service.Service.
func (f *FakeService) Download(ctx context.Context) (service.Snapshot, error) {
	if f.DownloadErr != nil {
		return service.Snapshot{}, f.DownloadErr
	}
	data, version := f.Data()
	if data == nil {
		data = taskjson.TaskList{}
	}
	return service.Snapshot{Data: data, Version: version}, nil
}

// Upload implements service.Service.
func (f *FakeService) Upload(ctx context.Context, tasks taskjson.TaskList, version int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Uploads = append(f.Uploads, version)
	if f.UploadErr != nil {
		return f.UploadErr
	}
	if version != service.Overwrite && version != f.version {
		return &service.HTTPError{Status: http.StatusConflict, Message: "conflicting update", Err: service.ErrConflict}
	}
	f.data = tasks.Clone()
	f.version++
	f.stored = true
	return nil
}

// Sync implements service.Service with the real merge engine and no conflicts.
func (f *FakeService) Sync(ctx context.Context, local taskjson.TaskList) (service.SyncResult, error) {
	if f.SyncErr != nil {
		return service.SyncResult{}, f.SyncErr
	}
	snap, err := f.Download(ctx)
	if err != nil {
		return service.SyncResult{}, err
	}
	merged := taskjson.Merge(local, snap.Data)
	if err := f.Upload(ctx, merged, snap.Version); err != nil {
		return service.SyncResult{}, err
	}
	return service.SyncResult{
		Data: merged,
		Diff: service.Diff{
			Client: taskjson.Compare(local, merged),
			Server: taskjson.Compare(snap.Data, merged),
		},
		Version:  snap.Version,
		Attempts: 1,
	}, nil
}

// Delete implements service.Service.
func (f *FakeService) Delete(ctx context.Context) error {
	if f.DeleteErr != nil {
		return f.DeleteErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.stored {
		return &service.HTTPError{Status: http.StatusNotFound, Message: "no data stored"}
	}
	f.data = nil
	f.version++
	f.stored = false
	return nil
}

var _ service.Service = (*FakeService)(nil)
