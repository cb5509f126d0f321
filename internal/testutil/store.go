package testutil

import (
	"path/filepath"
	"testing"

	"github.com/nhle/taskdock/internal/store"
)

// NewTestStore creates a SQLiteStore in a fresh temp directory with all
// migrations applied. It automatically closes the store when the test
// completes.
func NewTestStore(t *testing.T, opts ...store.Option) *store.SQLiteStore {
	t.Helper()

	s, err := store.NewSQLiteStore(StorePath(t), opts...)
	if err != nil {
		t.Fatalf("creating test store: %v", err)
	}

	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("closing test store: %v", err)
		}
	})

	return s
}

// StorePath returns a database path inside a per-test temp directory.
// Each pooled connection opens the file on disk, so tests never use
// ":memory:".
func StorePath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "taskdock.sqlite")
}
