// Package remote talks to a task server: the single task list resource,
// the session endpoints and the change feed.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"tasksync/internal/service"
)

const (
	// RequestTimeout bounds a single HTTP exchange.
	RequestTimeout = 30 * time.Second

	// maxBodySize caps how much of a response body is read.
	maxBodySize = 64 << 20
)

// Resource is the wire form of the stored task list.
type Resource struct {
	Data    *string `json:"data"`
	Version int     `json:"version"`
}

// DataString returns the data field, empty when null.
func (r Resource) DataString() string {
	if r.Data == nil {
		return ""
	}
	return *r.Data
}

// Options configure the HTTP transport.
type Options struct {
	// InsecureSkipVerify disables certificate verification.
	InsecureSkipVerify bool

	// CA replaces the system roots with the given PEM certificates.
	CA []byte

	// HTTPClient overrides the base client (for testing).
	// Its transport is wrapped for bearer auth.
	HTTPClient *http.Client
}

// Client performs requests against one task server.
type Client struct {
	server *url.URL
	base   *http.Client

	mu    sync.RWMutex
	token string
}

// NewClient creates a client for the server URL.
func NewClient(server string, opts Options) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(server))
	if err != nil {
		return nil, fmt.Errorf("invalid server url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid server url: %q: scheme must be http or https", server)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid server url: %q: missing host", server)
	}

	base := opts.HTTPClient
	if base == nil {
		transport, err := newTransport(opts)
		if err != nil {
			return nil, err
		}
		base = &http.Client{Transport: transport}
	}

	return &Client{server: u, base: base}, nil
}

// SetToken replaces the bearer token. An empty token disables auth headers.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// Token returns the current bearer token.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// tokenSource adapts the client's mutable token to oauth2.
type tokenSource struct{ c *Client }

func (s tokenSource) Token() (*oauth2.Token, error) {
	return &oauth2.Token{AccessToken: s.c.Token(), TokenType: "Bearer"}, nil
}

// httpClient returns a client that adds the bearer header when a token is set.
func (c *Client) httpClient(auth bool) *http.Client {
	if !auth || c.Token() == "" {
		return c.base
	}
	base := c.base.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	return &http.Client{
		Transport:     &oauth2.Transport{Source: tokenSource{c}, Base: base},
		CheckRedirect: c.base.CheckRedirect,
		Jar:           c.base.Jar,
		Timeout:       c.base.Timeout,
	}
}

// FullPath joins a relative path onto the server URL and normalizes it.
func (c *Client) FullPath(path string) string {
	u := *c.server
	joined := strings.Trim(u.Path, "/") + "/" + strings.Trim(path, "/")
	for strings.Contains(joined, "//") {
		joined = strings.ReplaceAll(joined, "//", "/")
	}
	u.Path = "/" + strings.TrimPrefix(joined, "/")
	u.RawPath = ""
	return u.String()
}

// Login exchanges a password for a token. The token is not stored.
func (c *Client) Login(ctx context.Context, password string) (string, error) {
	var resp struct {
		Token string `json:"token"`
	}
	body := map[string]string{"password": password}
	if err := c.do(ctx, http.MethodPost, "session", false, body, &resp); err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", &service.HTTPError{
			Status:  http.StatusBadGateway,
			Message: "server returned no token",
			Err:     service.ErrMalformedResponse,
		}
	}
	return resp.Token, nil
}

// Logout invalidates the current token on the server.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "session", true, nil, nil)
}

// Get fetches the stored resource.
func (c *Client) Get(ctx context.Context) (Resource, error) {
	var res Resource
	if err := c.do(ctx, http.MethodGet, "/", true, nil, &res); err != nil {
		return Resource{}, err
	}
	return res, nil
}

// Put stores a resource. A stale version fails with an error wrapping *ConflictError.
func (c *Client) Put(ctx context.Context, res Resource) error {
	return c.do(ctx, http.MethodPut, "/", true, res, nil)
}

// Delete removes the stored resource.
func (c *Client) Delete(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/", true, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, auth bool, in, out any) error {
	ctx, cancel := context.WithTimeout(ctx, RequestTimeout)
	defer cancel()

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return setupError(err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.FullPath(path), body)
	if err != nil {
		return setupError(err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient(auth).Do(req)
	if err != nil {
		return noResponseError(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return noResponseError(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return responseError(method, resp.StatusCode, data)
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		if out != nil {
			return &service.HTTPError{
				Status:  http.StatusBadGateway,
				Message: "empty response body",
				Err:     service.ErrMalformedResponse,
			}
		}
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &service.HTTPError{
			Status:  http.StatusBadGateway,
			Message: fmt.Sprintf("invalid response body: %v", err),
			Err:     fmt.Errorf("%w: %v", service.ErrMalformedResponse, err),
		}
	}
	return nil
}
