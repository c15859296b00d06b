package store

import (
	"errors"
	"testing"
)

var testLabels = []string{"middle_finger", "dislike", "fist", "four", "like"}

func TestLabelRepository_SeedIfEmpty(t *testing.T) {
	s := newTestStore(t)
	repo := s.Labels()

	wrote, err := repo.SeedIfEmpty(testLabels)
	if err != nil {
		t.Fatalf("SeedIfEmpty() failed: %v", err)
	}
	if !wrote {
		t.Error("first SeedIfEmpty() should write")
	}

	wrote, err = repo.SeedIfEmpty([]string{"other"})
	if err != nil {
		t.Fatalf("second SeedIfEmpty() failed: %v", err)
	}
	if wrote {
		t.Error("second SeedIfEmpty() should not write")
	}

	names, err := repo.Names()
	if err != nil {
		t.Fatalf("Names() failed: %v", err)
	}
	if len(names) != len(testLabels) {
		t.Fatalf("expected %d names, got %d", len(testLabels), len(names))
	}
	for i, name := range names {
		if name != testLabels[i] {
			t.Errorf("names[%d] = %q, want %q", i, name, testLabels[i])
		}
	}
}

func TestLabelRepository_Get(t *testing.T) {
	s := newTestStore(t)
	repo := s.Labels()

	if err := repo.Replace(testLabels); err != nil {
		t.Fatalf("Replace() failed: %v", err)
	}

	l, err := repo.Get(2)
	if err != nil {
		t.Fatalf("Get(2) failed: %v", err)
	}
	if l.Name != "fist" {
		t.Errorf("Get(2).Name = %q, want fist", l.Name)
	}

	if _, err := repo.Get(99); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(99) error = %v, want ErrNotFound", err)
	}
}

func TestLabelRepository_Replace(t *testing.T) {
	s := newTestStore(t)
	repo := s.Labels()

	if err := repo.Replace(testLabels); err != nil {
		t.Fatalf("Replace() failed: %v", err)
	}
	if err := repo.Replace([]string{"a", "b"}); err != nil {
		t.Fatalf("second Replace() failed: %v", err)
	}

	n, err := repo.Count()
	if err != nil {
		t.Fatalf("Count() failed: %v", err)
	}
	if n != 2 {
		t.Errorf("Count() = %d, want 2", n)
	}
}

func TestLabelRepository_Replace_DuplicateRollsBack(t *testing.T) {
	s := newTestStore(t)
	repo := s.Labels()

	if err := repo.Replace(testLabels); err != nil {
		t.Fatalf("Replace() failed: %v", err)
	}

	err := repo.Replace([]string{"a", "a"})
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("Replace() with duplicate error = %v, want ErrDuplicate", err)
	}

	// The previous table must survive the failed replace
	n, err := repo.Count()
	if err != nil {
		t.Fatalf("Count() failed: %v", err)
	}
	if n != len(testLabels) {
		t.Errorf("Count() = %d, want %d", n, len(testLabels))
	}
}
