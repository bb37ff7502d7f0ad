package googletasks

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"google.golang.org/api/option"
	tasks "google.golang.org/api/tasks/v1"

	"tasksync/internal/config"
	"tasksync/internal/service"
	"tasksync/internal/taskjson"
)

// fakeAPI serves the subset of the Tasks API the importer uses.
func fakeAPI(t *testing.T) *Client {
	t.Helper()
	mux := http.NewServeMux()
	write := func(w http.ResponseWriter, v any) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(v)
	}

	mux.HandleFunc("/tasks/v1/users/@me/lists/@default", func(w http.ResponseWriter, r *http.Request) {
		write(w, map[string]any{"id": "real-default", "title": "My Tasks"})
	})
	mux.HandleFunc("/tasks/v1/users/@me/lists", func(w http.ResponseWriter, r *http.Request) {
		write(w, map[string]any{"items": []map[string]any{
			{"id": "real-default", "title": "My Tasks"},
			{"id": "work", "title": "Work"},
			{"id": "w2", "title": " work "},
			{"id": "home", "title": "Home"},
		}})
	})
	mux.HandleFunc("/tasks/v1/lists/", func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/tasks") {
			http.NotFound(w, r)
			return
		}
		listID := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/tasks/v1/lists/"), "/tasks")
		if listID == "missing" {
			w.WriteHeader(http.StatusNotFound)
			write(w, map[string]any{"error": map[string]any{"code": 404, "message": "Not Found"}})
			return
		}
		// Two pages to exercise pagination.
		if r.URL.Query().Get("pageToken") == "" {
			write(w, map[string]any{
				"items": []map[string]any{
					{"id": "t1", "title": "Buy milk", "status": "needsAction", "updated": "2024-03-01T10:00:00.000Z", "due": "2024-03-05T00:00:00.000Z"},
				},
				"nextPageToken": "p2",
			})
			return
		}
		write(w, map[string]any{
			"items": []map[string]any{
				{"id": "t2", "title": "Call\nmom", "notes": "sunday", "status": "needsAction", "updated": "2024-03-02T10:00:00.000Z"},
			},
		})
	})

	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)

	c, err := NewWithHTTPClient(context.Background(), ts.Client(), option.WithEndpoint(ts.URL+"/"))
	if err != nil {
		t.Fatalf("NewWithHTTPClient failed: %v", err)
	}
	return c
}

func TestResolveList(t *testing.T) {
	c := fakeAPI(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		wantID  string
		wantErr string
	}{
		{name: "", wantID: DefaultListID},
		{name: "my tasks", wantID: DefaultListID},
		{name: "HOME", wantID: "home"},
		{name: "work", wantErr: "ambiguous list name: work"},
		{name: "nope", wantErr: "list not found: nope"},
	}

	for _, tt := range tests {
		list, err := c.ResolveList(ctx, tt.name)
		if tt.wantErr != "" {
			if err == nil || err.Error() != tt.wantErr {
				t.Errorf("ResolveList(%q): expected %q, got %v", tt.name, tt.wantErr, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ResolveList(%q) failed: %v", tt.name, err)
			continue
		}
		if list.ID != tt.wantID {
			t.Errorf("ResolveList(%q) = %q, want %q", tt.name, list.ID, tt.wantID)
		}
	}
}

func TestOpenTasks(t *testing.T) {
	c := fakeAPI(t)

	got, err := c.OpenTasks(context.Background(), "home")
	if err != nil {
		t.Fatalf("OpenTasks failed: %v", err)
	}

	want := taskjson.TaskList{
		{
			ID:       "gtasks-t1",
			Status:   taskjson.StatusTodo,
			Text:     "Buy milk",
			Due:      "2024-03-05",
			Created:  "2024-03-01T10:00:00Z",
			Modified: "2024-03-01T10:00:00Z",
		},
		{
			ID:       "gtasks-t2",
			Status:   taskjson.StatusTodo,
			Text:     "Call mom (sunday)",
			Created:  "2024-03-02T10:00:00Z",
			Modified: "2024-03-02T10:00:00Z",
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("tasks mismatch (-want +got):\n%s", diff)
	}
	if err := got.Validate(); err != nil {
		t.Errorf("imported tasks invalid: %v", err)
	}
}

func TestOpenTasks_NotFound(t *testing.T) {
	c := fakeAPI(t)

	_, err := c.OpenTasks(context.Background(), "missing")
	if !service.IsNotFound(err) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestConvert_Completed(t *testing.T) {
	got := Convert(&tasks.Task{Id: "x", Title: "done", Status: "completed", Updated: "bogus"})
	if got.Status != taskjson.StatusDone {
		t.Errorf("expected done, got %q", got.Status)
	}
	if err := got.Validate(); err != nil {
		t.Errorf("converted task invalid: %v", err)
	}
}

func TestAuthorize_NoClient(t *testing.T) {
	cfg, _ := config.New(t.TempDir())
	var errOut strings.Builder

	err := Authorize(context.Background(), cfg, &errOut)
	if err == nil || !strings.Contains(err.Error(), ErrNoClient.Error()) {
		t.Errorf("expected missing client error, got %v", err)
	}
	if errOut.Len() != 0 {
		t.Errorf("expected no output, got %q", errOut.String())
	}
}

func TestIsAuthorized(t *testing.T) {
	dir := t.TempDir()
	cfg, _ := config.New(dir)
	ctx := context.Background()

	if IsAuthorized(ctx, cfg) {
		t.Error("expected unauthorized without token")
	}

	// No refresh token
	if err := os.WriteFile(filepath.Join(dir, config.GoogleTokenFile), []byte(`{"access_token":"x"}`), 0600); err != nil {
		t.Fatal(err)
	}
	if IsAuthorized(ctx, cfg) {
		t.Error("expected unauthorized without refresh token")
	}
}
