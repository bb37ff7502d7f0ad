package taskserver

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/http/httputil"
	"net/url"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"

	"tasksync/internal/server"
	"tasksync/internal/service"
	"tasksync/internal/taskjson"
)

func tasks(ids ...string) taskjson.TaskList {
	var l taskjson.TaskList
	for _, id := range ids {
		l = append(l, taskjson.Task{
			ID:       id,
			Status:   taskjson.StatusTodo,
			Text:     "Hello, world " + id,
			Created:  "2000-01-01T00:00:00Z",
			Modified: "2010-07-07T00:00:00Z",
		})
	}
	return l
}

func ids(l taskjson.TaskList) []string {
	out := make([]string, 0, len(l))
	for _, t := range l {
		out = append(out, t.ID)
	}
	sort.Strings(out)
	return out
}

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(server.New(server.Options{Password: "admin"}).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func setup(t *testing.T, server string, cfg ClientConfig) *Client {
	t.Helper()
	cfg.Server = server
	c, err := Setup(cfg)
	if err != nil {
		t.Fatalf("Setup failed: %v", err)
	}
	return c
}

func TestSetup_InvalidServer(t *testing.T) {
	for _, server := range []string{"", "localhost:3000", "ftp://host"} {
		if _, err := Setup(ClientConfig{Server: server}); err == nil {
			t.Errorf("expected error for %q", server)
		}
	}
}

func TestLogin(t *testing.T) {
	ts := newServer(t)
	c := setup(t, ts.URL, ClientConfig{})

	err := c.Login(context.Background(), "test")
	if !service.IsUnauthorized(err) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if c.Token() != "" {
		t.Error("failed login must not store a token")
	}

	if err := c.Login(context.Background(), "admin"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if c.Token() == "" {
		t.Error("expected a token after login")
	}
}

func TestUnauthenticated(t *testing.T) {
	ts := newServer(t)
	c := setup(t, ts.URL, ClientConfig{})

	if _, err := c.Download(context.Background()); !service.IsUnauthorized(err) {
		t.Errorf("expected unauthorized, got %v", err)
	}
}

func TestLogout_ClearsToken(t *testing.T) {
	ts := newServer(t)
	c := setup(t, ts.URL, ClientConfig{})
	ctx := context.Background()

	if err := c.Login(ctx, "admin"); err != nil {
		t.Fatal(err)
	}
	token := c.Token()
	if err := c.Logout(ctx); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	if c.Token() != "" {
		t.Error("expected token cleared")
	}

	// The old token is no longer accepted.
	stale := setup(t, ts.URL, ClientConfig{Token: token})
	if _, err := stale.Download(ctx); !service.IsUnauthorized(err) {
		t.Errorf("expected unauthorized with revoked token, got %v", err)
	}

	// Logout with a revoked token fails on the server and still clears the token.
	err := stale.Logout(ctx)
	if !service.IsUnauthorized(err) {
		t.Errorf("expected unauthorized, got %v", err)
	}
	if stale.Token() != "" {
		t.Error("expected token cleared after failed logout")
	}
}

func TestLogout_NoServer(t *testing.T) {
	ts := newServer(t)
	addr := ts.URL
	ts.Close()

	c := setup(t, addr, ClientConfig{Token: "abc"})
	err := c.Logout(context.Background())
	if service.StatusOf(err) != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %v", err)
	}
	if c.Token() != "" {
		t.Error("expected token cleared")
	}
}

func TestRoundTrip(t *testing.T) {
	for _, key := range []string{"", "abc"} {
		t.Run("key="+key, func(t *testing.T) {
			ts := newServer(t)
			c := setup(t, ts.URL, ClientConfig{EncryptionKey: key})
			ctx := context.Background()

			if c.Encrypted() != (key != "") {
				t.Errorf("Encrypted() = %v", c.Encrypted())
			}
			if err := c.Login(ctx, "admin"); err != nil {
				t.Fatal(err)
			}

			if err := c.Upload(ctx, tasks("1"), service.Overwrite); err != nil {
				t.Fatalf("Upload failed: %v", err)
			}
			snap, err := c.Download(ctx)
			if err != nil {
				t.Fatalf("Download failed: %v", err)
			}
			if diff := cmp.Diff(tasks("1"), snap.Data); diff != "" {
				t.Errorf("downloaded data mismatch (-want +got):\n%s", diff)
			}
			if snap.Version != 1 {
				t.Errorf("expected version 1, got %d", snap.Version)
			}

			res, err := c.Sync(ctx, tasks("2"))
			if err != nil {
				t.Fatalf("Sync failed: %v", err)
			}
			if diff := cmp.Diff([]string{"1", "2"}, ids(res.Data)); diff != "" {
				t.Errorf("sync ids mismatch (-want +got):\n%s", diff)
			}

			snap, err = c.Download(ctx)
			if err != nil {
				t.Fatalf("Download failed: %v", err)
			}
			if diff := cmp.Diff([]string{"1", "2"}, ids(snap.Data)); diff != "" {
				t.Errorf("stored ids mismatch (-want +got):\n%s", diff)
			}

			if err := c.Delete(ctx); err != nil {
				t.Fatalf("Delete failed: %v", err)
			}
			if err := c.Delete(ctx); !service.IsNotFound(err) {
				t.Errorf("expected 404 on second delete, got %v", err)
			}
		})
	}
}

func TestEncryptedData_WrongKey(t *testing.T) {
	ts := newServer(t)
	ctx := context.Background()

	writer := setup(t, ts.URL, ClientConfig{EncryptionKey: "abc"})
	if err := writer.Login(ctx, "admin"); err != nil {
		t.Fatal(err)
	}
	if err := writer.Upload(ctx, tasks("1"), service.Overwrite); err != nil {
		t.Fatal(err)
	}

	for _, key := range []string{"", "wrong"} {
		reader := setup(t, ts.URL, ClientConfig{Token: writer.Token(), EncryptionKey: key})
		_, err := reader.Download(ctx)
		if !errors.Is(err, service.ErrDataCorrupted) {
			t.Errorf("key %q: expected data corruption, got %v", key, err)
		}
	}
}

func TestUpload_VersionCheck(t *testing.T) {
	ts := newServer(t)
	c := setup(t, ts.URL, ClientConfig{})
	ctx := context.Background()
	if err := c.Login(ctx, "admin"); err != nil {
		t.Fatal(err)
	}

	if err := c.Upload(ctx, tasks("1"), 0); err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	err := c.Upload(ctx, tasks("2"), 0)
	if !service.IsConflict(err) || service.StatusOf(err) != http.StatusConflict {
		t.Errorf("expected 409 conflict, got %v", err)
	}
	if err := c.Upload(ctx, tasks("3"), service.Overwrite); err != nil {
		t.Errorf("overwrite failed: %v", err)
	}
	snap, _ := c.Download(ctx)
	if diff := cmp.Diff([]string{"3"}, ids(snap.Data)); diff != "" {
		t.Errorf("ids mismatch (-want +got):\n%s", diff)
	}
}

// Client A writes [1] between B's download and B's upload of [2].
func TestSync_ConcurrentWriter(t *testing.T) {
	ts := newServer(t)
	ctx := context.Background()

	a := setup(t, ts.URL, ClientConfig{})
	if err := a.Login(ctx, "admin"); err != nil {
		t.Fatal(err)
	}

	// Intercept B's first PUT and let A write just before it.
	first := true
	interceptor := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPut && first {
			first = false
			if err := a.Upload(ctx, tasks("1"), service.Overwrite); err != nil {
				t.Errorf("concurrent upload failed: %v", err)
			}
		}
		proxy(ts.URL).ServeHTTP(w, r)
	})
	proxied := httptest.NewServer(interceptor)
	defer proxied.Close()

	for _, tc := range []struct {
		retries int
		wantErr bool
	}{
		{retries: 0, wantErr: true},
		{retries: 1, wantErr: false},
	} {
		first = true
		if err := a.Upload(ctx, nil, service.Overwrite); err != nil {
			t.Fatal(err)
		}

		b := setup(t, proxied.URL, ClientConfig{Token: a.Token(), MaxRetries: tc.retries})
		res, err := b.Sync(ctx, tasks("2"))
		if tc.wantErr {
			if !errors.Is(err, service.ErrConflict) || service.StatusOf(err) != http.StatusConflict {
				t.Errorf("retries=%d: expected conflict, got %v", tc.retries, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("retries=%d: Sync failed: %v", tc.retries, err)
		}
		if diff := cmp.Diff([]string{"1", "2"}, ids(res.Data)); diff != "" {
			t.Errorf("merged ids mismatch (-want +got):\n%s", diff)
		}
		if res.Attempts != 2 {
			t.Errorf("expected 2 attempts, got %d", res.Attempts)
		}
		snap, err := a.Download(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff([]string{"1", "2"}, ids(snap.Data)); diff != "" {
			t.Errorf("stored ids mismatch (-want +got):\n%s", diff)
		}
	}
}

// proxy forwards a request to target unchanged.
func proxy(target string) http.Handler {
	u, _ := url.Parse(target)
	return httputil.NewSingleHostReverseProxy(u)
}
