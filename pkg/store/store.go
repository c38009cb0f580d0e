// Package store persists form schemas as JSON documents under opaque keys.
//
// Two backends are provided: Memory for tests and previews, and Bolt for a
// single-file database on disk. Library layers the saved-forms workflow on
// top of any Store.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bytedance/sonic"

	"github.com/goliatone/go-formflow/pkg/schema"
)

// ErrPersistence is matched by every storage failure.
var ErrPersistence = errors.New("store: persistence failure")

// PersistenceError wraps a backend failure with the operation and key.
type PersistenceError struct {
	Op  string
	Key string
	Err error
}

func (e *PersistenceError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("store: %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Is lets errors.Is match ErrPersistence.
func (e *PersistenceError) Is(target error) bool { return target == ErrPersistence }

// Store reads and writes forms by key.
type Store interface {
	// Read returns the form stored under key. A missing key or a document
	// that cannot be decoded reports ok=false with a nil error.
	Read(ctx context.Context, key string) (form schema.Form, ok bool, err error)
	Write(ctx context.Context, key string, form schema.Form) error
	Delete(ctx context.Context, key string) error
	// Keys lists stored keys with the given prefix in ascending order.
	Keys(ctx context.Context, prefix string) ([]string, error)
}

func encode(key string, form schema.Form) ([]byte, error) {
	data, err := sonic.Marshal(form)
	if err != nil {
		return nil, &PersistenceError{Op: "encode", Key: key, Err: err}
	}
	return data, nil
}

// decode treats malformed documents as absent.
func decode(key string, data []byte) (schema.Form, bool) {
	if len(data) == 0 {
		return schema.Form{}, false
	}
	var form schema.Form
	if err := sonic.Unmarshal(data, &form); err != nil {
		slog.Debug("store: ignoring malformed document", "key", key, "error", err)
		return schema.Form{}, false
	}
	return form, true
}

func checkContext(ctx context.Context, op, key string) error {
	if err := ctx.Err(); err != nil {
		return &PersistenceError{Op: op, Key: key, Err: err}
	}
	return nil
}
