// Package taskserver implements the service.Service interface against a task
// server speaking the versioned resource protocol.
package taskserver

import (
	"context"
	"fmt"
	"log/slog"

	"tasksync/internal/codec"
	"tasksync/internal/config"
	"tasksync/internal/remote"
	"tasksync/internal/service"
	"tasksync/internal/syncer"
	"tasksync/internal/taskjson"
)

// ClientConfig configures a task server client.
type ClientConfig struct {
	// Server is the server URL (required).
	Server string

	// Token is a previously obtained session token.
	Token string

	// InsecureSkipVerify disables TLS certificate verification.
	InsecureSkipVerify bool

	// CA replaces the system roots with the given PEM certificates.
	CA []byte

	// MaxRetries is the number of merge/upload rounds after a conflict.
	MaxRetries int

	// EncryptionKey enables payload encryption when set.
	EncryptionKey string

	// Logger defaults to slog.Default().
	Logger *slog.Logger

	// Options are passed to the transport (for testing).
	Options remote.Options
}

// Client implements service.Service on top of the remote transport.
type Client struct {
	remote *remote.Client
	sync   *syncer.Coordinator
	codec  *codec.Codec
}

// Setup validates cfg and builds the transport, codec and coordinator.
func Setup(cfg ClientConfig) (*Client, error) {
	opts := cfg.Options
	opts.InsecureSkipVerify = opts.InsecureSkipVerify || cfg.InsecureSkipVerify
	if cfg.CA != nil {
		opts.CA = cfg.CA
	}

	rc, err := remote.NewClient(cfg.Server, opts)
	if err != nil {
		return nil, err
	}
	rc.SetToken(cfg.Token)

	cdc := codec.New(codec.ProtectionFor(cfg.EncryptionKey))
	coord := syncer.New(rc, syncer.Config{
		Codec:      cdc,
		Merger:     taskjson.Engine{},
		MaxRetries: cfg.MaxRetries,
		Logger:     cfg.Logger,
	})

	return &Client{remote: rc, sync: coord, codec: cdc}, nil
}

// New creates a client from the loaded configuration and the stored token.
func New(ctx context.Context, cfg *config.Config) (*Client, error) {
	token, err := cfg.ReadToken()
	if err != nil {
		return nil, err
	}
	ca, err := cfg.ReadCA()
	if err != nil {
		return nil, err
	}
	s := cfg.Settings
	client, err := Setup(ClientConfig{
		Server:             s.Server,
		Token:              token,
		InsecureSkipVerify: !s.Verify,
		CA:                 ca,
		MaxRetries:         s.MaxRetries,
		EncryptionKey:      s.EncryptionKey,
		Logger:             slog.Default(),
	})
	if err != nil {
		return nil, fmt.Errorf("invalid server configuration: %w", err)
	}
	return client, nil
}

// Encrypted reports whether payloads are encrypted.
func (c *Client) Encrypted() bool {
	return c.codec.Encrypted()
}

// Remote exposes the transport, e.g. for the change feed.
func (c *Client) Remote() *remote.Client {
	return c.remote
}

// Login exchanges password for a session token.
func (c *Client) Login(ctx context.Context, password string) error {
	token, err := c.remote.Login(ctx, password)
	if err != nil {
		return service.Normalize(err)
	}
	c.remote.SetToken(token)
	return nil
}

// Logout ends the session. The local token is cleared even if the server call fails.
func (c *Client) Logout(ctx context.Context) error {
	err := c.remote.Logout(ctx)
	c.remote.SetToken("")
	return service.Normalize(err)
}

// Token returns the current session token.
func (c *Client) Token() string {
	return c.remote.Token()
}

// Download fetches the stored task list.
func (c *Client) Download(ctx context.Context) (service.Snapshot, error) {
	snap, err := c.sync.Download(ctx)
	return snap, service.Normalize(err)
}

// Upload stores tasks, guarded by version.
func (c *Client) Upload(ctx context.Context, tasks taskjson.TaskList, version int) error {
	return service.Normalize(c.sync.Upload(ctx, tasks, version))
}

// Sync merges local with the server copy.
func (c *Client) Sync(ctx context.Context, local taskjson.TaskList) (service.SyncResult, error) {
	res, err := c.sync.Sync(ctx, local)
	return res, service.Normalize(err)
}

// Delete removes the stored task list.
func (c *Client) Delete(ctx context.Context) error {
	return service.Normalize(c.remote.Delete(ctx))
}

// Subscribe opens the server's change feed.
func (c *Client) Subscribe(ctx context.Context) (<-chan remote.Event, error) {
	events, err := c.remote.Subscribe(ctx)
	return events, service.Normalize(err)
}

var _ service.Service = (*Client)(nil)
