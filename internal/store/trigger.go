package store

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// DefaultRecentLimit caps Recent when no positive limit is given.
const DefaultRecentLimit = 50

// Trigger is one fired gesture event.
type Trigger struct {
	ID         string    `json:"id"`
	Label      string    `json:"label"`
	Action     string    `json:"action,omitempty"`
	Confidence float64   `json:"confidence"`
	FiredAt    time.Time `json:"fired_at"`
}

// TriggerRepository records trigger history.
type TriggerRepository struct {
	db *sql.DB
}

// Triggers returns the trigger repository for this store.
func (s *Store) Triggers() *TriggerRepository {
	return &TriggerRepository{db: s.db}
}

// Record inserts t, assigning an ID and FiredAt when unset.
func (r *TriggerRepository) Record(t *Trigger) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	if t.FiredAt.IsZero() {
		t.FiredAt = time.Now()
	}

	_, err := r.db.Exec(
		`INSERT INTO triggers (id, label, action, confidence, fired_at) VALUES (?, ?, ?, ?, ?)`,
		t.ID, t.Label, t.Action, t.Confidence, t.FiredAt.UTC(),
	)
	return err
}

// Recent returns up to limit triggers, newest first.
func (r *TriggerRepository) Recent(limit int) ([]*Trigger, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}

	rows, err := r.db.Query(
		`SELECT id, label, action, confidence, fired_at
		 FROM triggers ORDER BY fired_at DESC, rowid DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var triggers []*Trigger
	for rows.Next() {
		t := &Trigger{}
		if err := rows.Scan(&t.ID, &t.Label, &t.Action, &t.Confidence, &t.FiredAt); err != nil {
			return nil, err
		}
		triggers = append(triggers, t)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return triggers, nil
}

// CountByLabel returns the number of recorded triggers per label.
func (r *TriggerRepository) CountByLabel() (map[string]int, error) {
	rows, err := r.db.Query(`SELECT label, COUNT(*) FROM triggers GROUP BY label`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var label string
		var n int
		if err := rows.Scan(&label, &n); err != nil {
			return nil, err
		}
		counts[label] = n
	}

	return counts, rows.Err()
}

// PruneBefore deletes triggers fired before cutoff and returns how many were removed.
func (r *TriggerRepository) PruneBefore(cutoff time.Time) (int64, error) {
	result, err := r.db.Exec(`DELETE FROM triggers WHERE fired_at < ?`, cutoff.UTC())
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
