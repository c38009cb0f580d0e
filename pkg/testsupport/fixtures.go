// Package testsupport holds helpers shared by package tests: fixture loading,
// quiet sessions and golden files.
package testsupport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formflow/pkg/derive"
	"github.com/goliatone/go-formflow/pkg/schema"
	"github.com/goliatone/go-formflow/pkg/session"
)

// LoadForm reads a JSON or YAML form fixture.
func LoadForm(t *testing.T, path string) schema.Form {
	t.Helper()

	form, err := LoadFormFromPath(path)
	if err != nil {
		t.Fatalf("load form: %v", err)
	}
	return form
}

// LoadFormFromPath returns a form without requiring testing.T, allowing
// callers to wire fixtures in setup functions.
func LoadFormFromPath(path string) (schema.Form, error) {
	if path == "" {
		return schema.Form{}, errors.New("testsupport: form path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return schema.Form{}, fmt.Errorf("testsupport: read form: %w", err)
	}
	form, err := schema.Parse(data)
	if err != nil {
		return schema.Form{}, fmt.Errorf("testsupport: parse form %s: %w", path, err)
	}
	return form, nil
}

// QuietLogger discards everything.
func QuietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// NewSession loads form into a session that logs nothing and ignores
// derivation failures.
func NewSession(t *testing.T, form schema.Form, initial schema.Values) *session.Session {
	t.Helper()

	s := session.New(
		session.WithLogger(QuietLogger()),
		session.WithDeriver(derive.New(derive.WithObserver(derive.NopObserver{}))),
	)
	if err := s.Load(form, initial); err != nil {
		t.Fatalf("load session: %v", err)
	}
	return s
}

// MustReadFile returns the raw bytes of a fixture.
func MustReadFile(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	return data
}

// CompareGolden returns a diff string if the values differ.
func CompareGolden(want, got any) string {
	return cmp.Diff(want, got)
}

// MustReadGoldenString reads a golden file and returns its content.
func MustReadGoldenString(t *testing.T, path string) string {
	t.Helper()
	return string(MustReadFile(t, path))
}

// WriteMaybeGolden updates a golden file when UPDATE_GOLDENS is set. Returns
// true if the golden was written (test should exit early).
func WriteMaybeGolden(t *testing.T, path string, data []byte) bool {
	t.Helper()
	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}
