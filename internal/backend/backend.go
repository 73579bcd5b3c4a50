// Package backend selects and wires the storage engine at process start.
package backend

import (
	"fmt"
	"log/slog"

	"kharcha/internal/config"
	"kharcha/internal/storage"
	"kharcha/internal/storage/memory"
	"kharcha/internal/storage/sqlite"
)

// CleanupFunc releases backend resources on shutdown.
type CleanupFunc func() error

// Result is the selected store plus its optional cleanup.
type Result struct {
	Store   storage.Store
	Cleanup CleanupFunc
}

// New builds the store named by cfg.DataBackend. The memory engine needs no
// cleanup; the sqlite engine must be closed.
func New(cfg *config.Config, logger *slog.Logger) (*Result, error) {
	if logger == nil {
		logger = slog.Default()
	}

	switch cfg.DataBackend {
	case "sqlite":
		store, err := sqlite.New(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("initialize sqlite backend: %w", err)
		}
		logger.Info("Initialized sqlite backend", "db_path", cfg.SQLiteDBPath)
		return &Result{Store: store, Cleanup: store.Close}, nil

	case "memory":
		logger.Info("Initialized memory backend")
		return &Result{Store: memory.New()}, nil

	default:
		return nil, fmt.Errorf("unsupported backend type: %s", cfg.DataBackend)
	}
}
