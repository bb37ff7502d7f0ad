// Package codec converts task lists to and from their wire form,
// optionally sealing the serialized text in a passphrase-protected envelope.
package codec

import (
	"context"
	"encoding/json"
	"fmt"

	"tasksync/internal/service"
	"tasksync/internal/taskjson"
)

// Protection selects how serialized text is sealed before it leaves the client.
// It is either Plain or Encrypted.
type Protection interface {
	seal(ctx context.Context, plain string) (string, error)
	open(ctx context.Context, wire string) (string, error)
}

// Plain sends serialized text as is.
type Plain struct{}

func (Plain) seal(_ context.Context, plain string) (string, error) { return plain, nil }
func (Plain) open(_ context.Context, wire string) (string, error)  { return wire, nil }

// Encrypted wraps serialized text in an armored OpenPGP message keyed by Passphrase.
type Encrypted struct {
	Passphrase string
}

func (e Encrypted) seal(ctx context.Context, plain string) (string, error) {
	return Encrypt(ctx, plain, e.Passphrase)
}

func (e Encrypted) open(ctx context.Context, wire string) (string, error) {
	return Decrypt(ctx, wire, e.Passphrase)
}

// ProtectionFor returns Plain for an empty passphrase and Encrypted otherwise.
func ProtectionFor(passphrase string) Protection {
	if passphrase == "" {
		return Plain{}
	}
	return Encrypted{Passphrase: passphrase}
}

// Codec encodes task lists for the wire.
type Codec struct {
	protection Protection
}

// New creates a codec. A nil protection means Plain.
func New(p Protection) *Codec {
	if p == nil {
		p = Plain{}
	}
	return &Codec{protection: p}
}

// Encrypted reports whether payloads are sealed.
func (c *Codec) Encrypted() bool {
	_, ok := c.protection.(Encrypted)
	return ok
}

// Encode serializes and seals a task list.
func (c *Codec) Encode(ctx context.Context, list taskjson.TaskList) (string, error) {
	plain, err := Serialize(list)
	if err != nil {
		return "", err
	}
	return c.protection.seal(ctx, plain)
}

// Decode opens and deserializes wire data.
// Empty data is an empty list.
func (c *Codec) Decode(ctx context.Context, wire string) (taskjson.TaskList, error) {
	if wire == "" {
		return taskjson.TaskList{}, nil
	}
	plain, err := c.protection.open(ctx, wire)
	if err != nil {
		return nil, err
	}
	return Deserialize(plain)
}

// Serialize encodes a task list as JSON.
func Serialize(list taskjson.TaskList) (string, error) {
	if list == nil {
		list = taskjson.TaskList{}
	}
	data, err := json.Marshal(list)
	if err != nil {
		return "", fmt.Errorf("failed to serialize task list: %w", err)
	}
	return string(data), nil
}

// Deserialize parses and validates a serialized task list.
func Deserialize(s string) (taskjson.TaskList, error) {
	var list taskjson.TaskList
	if err := json.Unmarshal([]byte(s), &list); err != nil {
		return nil, fmt.Errorf("%w: %v", service.ErrDataCorrupted, err)
	}
	if list == nil {
		return nil, fmt.Errorf("%w: not a task list", service.ErrDataCorrupted)
	}
	if err := list.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", service.ErrDataCorrupted, err)
	}
	return list, nil
}
