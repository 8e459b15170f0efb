// Package testutil builds throwaway stores and engines for package tests.
package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/headline-goat/clip-goat/internal/experiment"
	"github.com/headline-goat/clip-goat/internal/store"
)

// SetupTestStore opens a SQLite store under t.TempDir() and closes it when
// the test ends.
func SetupTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()

	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}

	t.Cleanup(func() {
		s.Close()
	})

	return s
}

// SetupTestEngine loads an engine backed by s, with s as its content store
// and a no-op logger unless opts override them.
func SetupTestEngine(t *testing.T, s *store.SQLiteStore, opts ...experiment.Option) *experiment.Engine {
	t.Helper()

	base := []experiment.Option{
		experiment.WithLogger(zap.NewNop()),
		experiment.WithContentStore(s),
	}
	e, err := experiment.New(context.Background(), s, append(base, opts...)...)
	if err != nil {
		t.Fatalf("failed to load engine: %v", err)
	}
	return e
}
