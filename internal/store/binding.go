package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Binding maps a gesture label to the action dispatched when it fires.
type Binding struct {
	ID         string          `json:"id"`
	Label      string          `json:"label"`
	Action     string          `json:"action"`
	PluginName string          `json:"plugin_name,omitempty"`
	Config     json.RawMessage `json:"config,omitempty"`
	Enabled    bool            `json:"enabled"`
	CreatedAt  time.Time       `json:"created_at"`
}

// BindingRepository provides CRUD operations for bindings.
type BindingRepository struct {
	db *sql.DB
}

// Bindings returns the binding repository for this store.
func (s *Store) Bindings() *BindingRepository {
	return &BindingRepository{db: s.db}
}

const bindingColumns = `id, label, action, plugin_name, config, enabled, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBinding(row rowScanner) (*Binding, error) {
	b := &Binding{}
	var config string
	var enabled int

	if err := row.Scan(&b.ID, &b.Label, &b.Action, &b.PluginName, &config, &enabled, &b.CreatedAt); err != nil {
		return nil, err
	}

	b.Config = json.RawMessage(config)
	b.Enabled = enabled != 0
	return b, nil
}

// Create inserts a new binding. An empty ID is filled with a new UUID.
// A second binding for the same label returns ErrDuplicate.
func (r *BindingRepository) Create(b *Binding) error {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	b.CreatedAt = time.Now()

	config := b.Config
	if config == nil {
		config = json.RawMessage("{}")
	}

	_, err := r.db.Exec(
		`INSERT INTO bindings (id, label, action, plugin_name, config, enabled, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.Label, b.Action, b.PluginName, string(config), b.Enabled, b.CreatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("binding for %q: %w", b.Label, ErrDuplicate)
	}
	return err
}

// GetByID retrieves a binding by its ID.
func (r *BindingRepository) GetByID(id string) (*Binding, error) {
	b, err := scanBinding(r.db.QueryRow(
		`SELECT `+bindingColumns+` FROM bindings WHERE id = ?`, id,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

// GetByLabel retrieves the binding for a gesture label.
func (r *BindingRepository) GetByLabel(label string) (*Binding, error) {
	b, err := scanBinding(r.db.QueryRow(
		`SELECT `+bindingColumns+` FROM bindings WHERE label = ?`, label,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

// List retrieves all bindings ordered by label.
func (r *BindingRepository) List() ([]*Binding, error) {
	rows, err := r.db.Query(`SELECT ` + bindingColumns + ` FROM bindings ORDER BY label`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bindings []*Binding
	for rows.Next() {
		b, err := scanBinding(rows)
		if err != nil {
			return nil, err
		}
		bindings = append(bindings, b)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return bindings, nil
}

// Update updates an existing binding.
func (r *BindingRepository) Update(b *Binding) error {
	config := b.Config
	if config == nil {
		config = json.RawMessage("{}")
	}

	enabled := 0
	if b.Enabled {
		enabled = 1
	}

	result, err := r.db.Exec(
		`UPDATE bindings SET label = ?, action = ?, plugin_name = ?, config = ?, enabled = ?
		 WHERE id = ?`,
		b.Label, b.Action, b.PluginName, string(config), enabled, b.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("binding for %q: %w", b.Label, ErrDuplicate)
		}
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// Delete removes a binding by its ID.
func (r *BindingRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM bindings WHERE id = ?`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// Enabled returns every enabled binding, ordered by label.
func (r *BindingRepository) Enabled() ([]*Binding, error) {
	bindings, err := r.List()
	if err != nil {
		return nil, err
	}

	enabled := bindings[:0]
	for _, b := range bindings {
		if b.Enabled {
			enabled = append(enabled, b)
		}
	}
	return enabled, nil
}

// SeedIfEmpty creates an enabled binding per label in defaults when the
// table is empty. It reports whether it wrote.
func (r *BindingRepository) SeedIfEmpty(defaults map[string]string, pluginName string) (bool, error) {
	var n int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM bindings`).Scan(&n); err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}

	for label, action := range defaults {
		b := &Binding{Label: label, Action: action, PluginName: pluginName, Enabled: true}
		if err := r.Create(b); err != nil {
			return false, err
		}
	}
	return true, nil
}
