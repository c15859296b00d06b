package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"
)

// Setting keys read at startup.
const (
	SettingThreshold = "threshold"
	SettingDwell     = "dwell"
	SettingEnabled   = "enabled"
)

// SettingsRepository stores key/value settings.
type SettingsRepository struct {
	db *sql.DB
}

// Settings returns the settings repository for this store.
func (s *Store) Settings() *SettingsRepository {
	return &SettingsRepository{db: s.db}
}

// Get returns the value of key, or ErrNotFound.
func (r *SettingsRepository) Get(key string) (string, error) {
	var value string
	err := r.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	return value, nil
}

// Set stores value under key, replacing any previous value.
func (r *SettingsRepository) Set(key, value string) error {
	_, err := r.db.Exec(
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return err
}

// Delete removes key. Deleting a missing key is not an error.
func (r *SettingsRepository) Delete(key string) error {
	_, err := r.db.Exec(`DELETE FROM settings WHERE key = ?`, key)
	return err
}

// Float returns key parsed as a float, or def when the key is unset.
func (r *SettingsRepository) Float(key string, def float64) (float64, error) {
	value, err := r.Get(key)
	if errors.Is(err, ErrNotFound) {
		return def, nil
	}
	if err != nil {
		return def, err
	}

	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return def, fmt.Errorf("setting %s: %w", key, err)
	}
	return f, nil
}

// Duration returns key parsed with time.ParseDuration, or def when the key is unset.
func (r *SettingsRepository) Duration(key string, def time.Duration) (time.Duration, error) {
	value, err := r.Get(key)
	if errors.Is(err, ErrNotFound) {
		return def, nil
	}
	if err != nil {
		return def, err
	}

	d, err := time.ParseDuration(value)
	if err != nil {
		return def, fmt.Errorf("setting %s: %w", key, err)
	}
	return d, nil
}

// Bool returns key parsed with strconv.ParseBool, or def when the key is unset.
func (r *SettingsRepository) Bool(key string, def bool) (bool, error) {
	value, err := r.Get(key)
	if errors.Is(err, ErrNotFound) {
		return def, nil
	}
	if err != nil {
		return def, err
	}

	b, err := strconv.ParseBool(value)
	if err != nil {
		return def, fmt.Errorf("setting %s: %w", key, err)
	}
	return b, nil
}
