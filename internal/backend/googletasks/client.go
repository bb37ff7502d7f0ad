// Package googletasks imports open tasks from Google Tasks into a task list.
package googletasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	tasks "google.golang.org/api/tasks/v1"

	"tasksync/internal/config"
	"tasksync/internal/service"
	"tasksync/internal/taskjson"
)

const (
	// DefaultListID is the special ID for the default list.
	DefaultListID = "@default"

	// PageSize is the number of tasks per page.
	PageSize = 100

	// APITimeout is the timeout for API calls.
	APITimeout = 30 * time.Second

	// IDPrefix marks task ids derived from Google task ids.
	IDPrefix = "gtasks-"

	// OAuth scope for Google Tasks
	tasksScope = "https://www.googleapis.com/auth/tasks.readonly"
)

// List is a Google task list.
type List struct {
	ID        string
	Title     string
	IsDefault bool
}

// Client reads task lists from the Google Tasks API.
type Client struct {
	svc *tasks.Service
}

// New creates a new Google Tasks client.
// Requires google_client.json and google_token.json to exist.
func New(ctx context.Context, cfg *config.Config) (*Client, error) {
	oauthConfig, err := oauthConfig(cfg)
	if err != nil {
		return nil, err
	}

	tokenData, err := os.ReadFile(cfg.GoogleTokenPath())
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", config.GoogleTokenFile, err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(tokenData, &token); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", config.GoogleTokenFile, err)
	}

	// Create token source that auto-refreshes
	tokenSource := oauthConfig.TokenSource(ctx, &token)

	return NewWithHTTPClient(ctx, oauth2.NewClient(ctx, tokenSource))
}

// NewWithHTTPClient creates a client with a custom HTTP client (for testing).
func NewWithHTTPClient(ctx context.Context, httpClient *http.Client, opts ...option.ClientOption) (*Client, error) {
	opts = append([]option.ClientOption{option.WithHTTPClient(httpClient)}, opts...)
	svc, err := tasks.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create tasks service: %w", err)
	}
	return &Client{svc: svc}, nil
}

func oauthConfig(cfg *config.Config) (*oauth2.Config, error) {
	clientJSON, err := os.ReadFile(cfg.GoogleClientPath())
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", config.GoogleClientFile, err)
	}
	oc, err := google.ConfigFromJSON(clientJSON, tasksScope)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", config.GoogleClientFile, err)
	}
	return oc, nil
}

// DefaultList returns the user's default task list.
func (c *Client) DefaultList(ctx context.Context) (List, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	list, err := c.svc.Tasklists.Get(DefaultListID).Context(ctx).Do()
	if err != nil {
		return List{}, wrapError(err)
	}
	return List{ID: DefaultListID, Title: list.Title, IsDefault: true}, nil
}

// ListLists returns all task lists in API order.
func (c *Client) ListLists(ctx context.Context) ([]List, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	// First, get the default list to know its real ID
	defaultList, err := c.svc.Tasklists.Get(DefaultListID).Context(ctx).Do()
	if err != nil {
		return nil, wrapError(err)
	}

	var result []List
	err = c.svc.Tasklists.List().MaxResults(100).Pages(ctx, func(resp *tasks.TaskLists) error {
		for _, list := range resp.Items {
			isDefault := list.Id == defaultList.Id
			id := list.Id
			if isDefault {
				id = DefaultListID
			}
			result = append(result, List{ID: id, Title: list.Title, IsDefault: isDefault})
		}
		return nil
	})
	if err != nil {
		return nil, wrapError(err)
	}
	return result, nil
}

// ResolveList finds a list by name (case-insensitive, trimmed).
// An empty name selects the default list.
func (c *Client) ResolveList(ctx context.Context, name string) (List, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return c.DefaultList(ctx)
	}
	nameLower := strings.ToLower(name)

	lists, err := c.ListLists(ctx)
	if err != nil {
		return List{}, err
	}

	var matches []List
	for _, list := range lists {
		if strings.ToLower(strings.TrimSpace(list.Title)) == nameLower {
			matches = append(matches, list)
		}
	}

	switch len(matches) {
	case 0:
		return List{}, fmt.Errorf("list not found: %s", name)
	case 1:
		return matches[0], nil
	default:
		return List{}, fmt.Errorf("ambiguous list name: %s", name)
	}
}

// OpenTasks returns every open task of a list, converted to tasks.
func (c *Client) OpenTasks(ctx context.Context, listID string) (taskjson.TaskList, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	result := taskjson.TaskList{}
	err := c.svc.Tasks.List(listID).
		MaxResults(PageSize).
		ShowCompleted(false).
		ShowDeleted(false).
		ShowHidden(false).
		Pages(ctx, func(resp *tasks.Tasks) error {
			for _, t := range resp.Items {
				result = append(result, Convert(t))
			}
			return nil
		})
	if err != nil {
		return nil, wrapError(err)
	}
	return result, nil
}

// Convert maps a Google task to a task with a stable id.
// Google keeps no creation time, so created is the last update.
func Convert(t *tasks.Task) taskjson.Task {
	stamp := time.Now().UTC().Format(time.RFC3339Nano)
	if u, err := time.Parse(time.RFC3339Nano, t.Updated); err == nil {
		stamp = u.UTC().Format(time.RFC3339Nano)
	}

	status := taskjson.StatusTodo
	if t.Status == "completed" {
		status = taskjson.StatusDone
	}

	text := strings.TrimSpace(strings.ReplaceAll(t.Title, "\n", " "))
	if notes := strings.TrimSpace(t.Notes); notes != "" {
		text += " (" + strings.ReplaceAll(notes, "\n", " ") + ")"
	}

	out := taskjson.Task{
		ID:       IDPrefix + t.Id,
		Status:   status,
		Text:     text,
		Created:  stamp,
		Modified: stamp,
	}
	if len(t.Due) >= len("2006-01-02") {
		out.Due = t.Due[:len("2006-01-02")]
	}
	return out
}

// wrapError converts API errors into service errors.
func wrapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &service.HTTPError{Status: http.StatusServiceUnavailable, Message: "request timed out", Err: err}
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		msg := apiErr.Message
		switch apiErr.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			msg = "google token expired or revoked (run: tasksync import --authorize)"
		case http.StatusNotFound:
			msg = "not found"
		}
		return &service.HTTPError{Status: apiErr.Code, Message: msg, Err: err}
	}

	return err
}
