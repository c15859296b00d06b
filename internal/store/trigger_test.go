package store

import (
	"testing"
	"time"
)

func TestTriggerRepository_RecordAndRecent(t *testing.T) {
	s := newTestStore(t)
	repo := s.Triggers()

	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	labels := []string{"like", "fist", "like"}
	for i, label := range labels {
		tr := &Trigger{
			Label:      label,
			Action:     "volume-up",
			Confidence: 0.9,
			FiredAt:    base.Add(time.Duration(i) * time.Second),
		}
		if err := repo.Record(tr); err != nil {
			t.Fatalf("Record() failed: %v", err)
		}
		if tr.ID == "" {
			t.Error("ID should be assigned on record")
		}
	}

	recent, err := repo.Recent(2)
	if err != nil {
		t.Fatalf("Recent() failed: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("expected 2 triggers, got %d", len(recent))
	}
	if recent[0].Label != "like" || recent[1].Label != "fist" {
		t.Errorf("unexpected order: %s, %s", recent[0].Label, recent[1].Label)
	}
	if !recent[0].FiredAt.Equal(base.Add(2 * time.Second)) {
		t.Errorf("FiredAt = %v, want %v", recent[0].FiredAt, base.Add(2*time.Second))
	}

	all, err := repo.Recent(0)
	if err != nil {
		t.Fatalf("Recent(0) failed: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("Recent(0) returned %d, want 3", len(all))
	}
}

func TestTriggerRepository_Record_DefaultsFiredAt(t *testing.T) {
	s := newTestStore(t)
	repo := s.Triggers()

	tr := &Trigger{Label: "palm", Confidence: 0.8}
	if err := repo.Record(tr); err != nil {
		t.Fatalf("Record() failed: %v", err)
	}
	if tr.FiredAt.IsZero() {
		t.Error("FiredAt should be set on record")
	}
}

func TestTriggerRepository_CountByLabel(t *testing.T) {
	s := newTestStore(t)
	repo := s.Triggers()

	for _, label := range []string{"like", "like", "fist", "like"} {
		if err := repo.Record(&Trigger{Label: label, Confidence: 0.75}); err != nil {
			t.Fatalf("Record() failed: %v", err)
		}
	}

	counts, err := repo.CountByLabel()
	if err != nil {
		t.Fatalf("CountByLabel() failed: %v", err)
	}
	if counts["like"] != 3 || counts["fist"] != 1 {
		t.Errorf("CountByLabel() = %v", counts)
	}
}

func TestTriggerRepository_PruneBefore(t *testing.T) {
	s := newTestStore(t)
	repo := s.Triggers()

	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 4; i++ {
		tr := &Trigger{Label: "one", Confidence: 0.9, FiredAt: base.Add(time.Duration(i) * time.Hour)}
		if err := repo.Record(tr); err != nil {
			t.Fatalf("Record() failed: %v", err)
		}
	}

	n, err := repo.PruneBefore(base.Add(2 * time.Hour))
	if err != nil {
		t.Fatalf("PruneBefore() failed: %v", err)
	}
	if n != 2 {
		t.Errorf("PruneBefore() removed %d, want 2", n)
	}

	left, err := repo.Recent(0)
	if err != nil {
		t.Fatalf("Recent() failed: %v", err)
	}
	if len(left) != 2 {
		t.Errorf("expected 2 remaining triggers, got %d", len(left))
	}
}
