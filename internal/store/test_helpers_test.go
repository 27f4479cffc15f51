package store

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
)

// createTestStore opens a fresh store in a temp directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// registerTestSegments registers each id under the name "seg-<id>".
func registerTestSegments(t *testing.T, s *Store, ids ...SegmentID) {
	t.Helper()
	for _, id := range ids {
		name := fmt.Sprintf("seg-%d", id)
		if err := s.RegisterSegment(context.Background(), id, name); err != nil {
			t.Fatalf("RegisterSegment(%d) failed: %v", id, err)
		}
	}
}
