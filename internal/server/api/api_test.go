package api

import (
	"path/filepath"
	"testing"

	"github.com/ayusman/gestify/internal/store"
)

var testLabels = []string{"middle_finger", "dislike", "fist", "four", "like", "one", "palm", "three", "two_up", "no_gesture"}

// newTestStore creates a new Store with a temporary database and the stock labels.
func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := store.New(dbPath)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() {
		s.Close()
	})

	if err := s.Labels().Replace(testLabels); err != nil {
		t.Fatalf("failed to seed labels: %v", err)
	}

	return s
}
