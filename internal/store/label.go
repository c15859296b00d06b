package store

import (
	"database/sql"
	"errors"
	"fmt"
)

// Label maps a model class id to its gesture label.
type Label struct {
	ClassID int    `json:"class_id"`
	Name    string `json:"name"`
}

// LabelRepository stores the class id to label table.
type LabelRepository struct {
	db *sql.DB
}

// Labels returns the label repository for this store.
func (s *Store) Labels() *LabelRepository {
	return &LabelRepository{db: s.db}
}

// Replace atomically replaces the table with names, where names[i] is the
// label of class i.
func (r *LabelRepository) Replace(names []string) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM labels`); err != nil {
		return err
	}
	for i, name := range names {
		if _, err := tx.Exec(`INSERT INTO labels (class_id, name) VALUES (?, ?)`, i, name); err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("label %q: %w", name, ErrDuplicate)
			}
			return err
		}
	}

	return tx.Commit()
}

// SeedIfEmpty writes names when the table is empty. It reports whether it wrote.
func (r *LabelRepository) SeedIfEmpty(names []string) (bool, error) {
	n, err := r.Count()
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}
	return true, r.Replace(names)
}

// Count returns the number of labels.
func (r *LabelRepository) Count() (int, error) {
	var n int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM labels`).Scan(&n)
	return n, err
}

// Get retrieves the label for classID.
func (r *LabelRepository) Get(classID int) (*Label, error) {
	l := &Label{}
	err := r.db.QueryRow(`SELECT class_id, name FROM labels WHERE class_id = ?`, classID).
		Scan(&l.ClassID, &l.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return l, nil
}

// List returns all labels ordered by class id.
func (r *LabelRepository) List() ([]Label, error) {
	rows, err := r.db.Query(`SELECT class_id, name FROM labels ORDER BY class_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var labels []Label
	for rows.Next() {
		var l Label
		if err := rows.Scan(&l.ClassID, &l.Name); err != nil {
			return nil, err
		}
		labels = append(labels, l)
	}

	return labels, rows.Err()
}

// Names returns the label names in class id order. Gaps in class ids are an
// error since the result is indexed by class id.
func (r *LabelRepository) Names() ([]string, error) {
	labels, err := r.List()
	if err != nil {
		return nil, err
	}

	names := make([]string, len(labels))
	for i, l := range labels {
		if l.ClassID != i {
			return nil, fmt.Errorf("label table has a gap at class %d", i)
		}
		names[i] = l.Name
	}
	return names, nil
}
