// Package storage persists the planning transcript and the API credential as
// string values under fixed keys.
package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/example/trip-refiner/internal/config"
)

// Store is a small key-value store. Get reports ok=false for a missing key.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Open builds the data store for cfg.Database and, when the keyring backend
// is selected, routes credentialKey to the OS keyring.
func Open(cfg *config.Config, credentialKey string) (Store, error) {
	var data Store
	switch cfg.Database.Type {
	case "memory":
		data = NewMemoryStore()
	case "sqlite":
		if dir := filepath.Dir(cfg.Database.DSN); dir != "." && cfg.Database.DSN != ":memory:" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("creating database directory: %w", err)
			}
		}
		fallthrough
	default:
		s, err := NewGormStore(cfg.Database.Type, cfg.Database.DSN)
		if err != nil {
			return nil, err
		}
		data = s
	}

	if cfg.Storage.CredentialBackend == config.CredentialBackendKeyring {
		return NewRoutedStore(data, NewKeyringStore(KeyringService), credentialKey), nil
	}
	return data, nil
}
