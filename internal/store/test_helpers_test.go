package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/roach88/minrx/internal/pattern"
)

// createTestStore creates a new store in a temp dir for testing.
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

// beginTestRun inserts a run with the given ID and fails the test on error.
func beginTestRun(t *testing.T, s *Store, id string, seed uint64) {
	t.Helper()
	if err := s.BeginRun(context.Background(), Run{ID: id, Seed: seed, Requested: 100}); err != nil {
		t.Fatalf("BeginRun(%s) failed: %v", id, err)
	}
}

// createTestCase creates a case for (a|ab)c with the given subject.
func createTestCase(runID, subject string) Case {
	return Case{
		RunID:   runID,
		Pattern: pattern.Concat(pattern.Alt(pattern.Lit("a"), pattern.Lit("ab")), pattern.Lit("c")),
		Subject: subject,
		VM:      true,
		Oracle:  false,
	}
}
