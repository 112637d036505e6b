package driven

import (
	"context"

	"github.com/dkindler/talerpanel/internal/domain/model"
)

// SettingsStore defines the driven port for the persisted settings mapping.
// The store is the only component allowed to commit a settings record; all
// other components work on snapshots or candidate copies.
type SettingsStore interface {
	// Load returns the current settings mapping. A missing record is an
	// empty (never nil) mapping, not an error.
	Load(ctx context.Context) (model.Settings, error)

	// Save atomically replaces the persisted mapping with the given record.
	// Keys absent from the record are removed; partial writes never happen.
	Save(ctx context.Context, settings model.Settings) error
}
