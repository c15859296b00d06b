package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Labels table - class id to gesture label, in model output order
		`CREATE TABLE IF NOT EXISTS labels (
			class_id INTEGER PRIMARY KEY,
			name TEXT NOT NULL UNIQUE
		)`,

		// Bindings table - action to dispatch when a gesture label fires
		`CREATE TABLE IF NOT EXISTS bindings (
			id TEXT PRIMARY KEY,
			label TEXT NOT NULL UNIQUE,
			action TEXT NOT NULL,
			plugin_name TEXT NOT NULL DEFAULT '',
			config TEXT NOT NULL DEFAULT '{}',
			enabled INTEGER NOT NULL DEFAULT 1,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Triggers table - history of fired trigger events
		`CREATE TABLE IF NOT EXISTS triggers (
			id TEXT PRIMARY KEY,
			label TEXT NOT NULL,
			action TEXT NOT NULL DEFAULT '',
			confidence REAL NOT NULL,
			fired_at DATETIME NOT NULL
		)`,

		// Settings table - stores application settings as key-value pairs
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,

		// Indexes for better query performance
		`CREATE INDEX IF NOT EXISTS idx_triggers_fired_at ON triggers(fired_at)`,
		`CREATE INDEX IF NOT EXISTS idx_triggers_label ON triggers(label)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
