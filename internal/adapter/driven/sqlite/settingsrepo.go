package sqlite

import (
	"context"
	"fmt"

	"github.com/dkindler/talerpanel/internal/domain/model"
	"github.com/dkindler/talerpanel/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.SettingsStore = (*SettingsRepo)(nil)

// SettingsRepo is the SQLite implementation of the SettingsStore port.
// It owns the persisted mapping exclusively; Save replaces the whole record
// in one transaction so partial writes cannot happen.
type SettingsRepo struct {
	db *DB
}

// NewSettingsRepo creates a SettingsRepo backed by the given DB.
func NewSettingsRepo(db *DB) *SettingsRepo {
	return &SettingsRepo{db: db}
}

// Load returns the current settings mapping. An empty table yields an empty
// (non-nil) mapping.
func (r *SettingsRepo) Load(ctx context.Context) (model.Settings, error) {
	const query = `SELECT key, value FROM settings`

	rows, err := r.db.Reader.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	defer rows.Close()

	settings := model.Settings{}
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scan setting: %w", err)
		}
		settings[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate settings: %w", err)
	}

	return settings, nil
}

// Save replaces the persisted mapping with the given record inside a single
// transaction. Keys absent from the record are removed.
func (r *SettingsRepo) Save(ctx context.Context, settings model.Settings) error {
	tx, err := r.db.Writer.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save settings: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM settings`); err != nil {
		return fmt.Errorf("clear settings: %w", err)
	}

	const insert = `INSERT INTO settings (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)`
	for key, value := range settings {
		if _, err := tx.ExecContext(ctx, insert, key, value); err != nil {
			return fmt.Errorf("save setting %q: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit settings: %w", err)
	}
	return nil
}
