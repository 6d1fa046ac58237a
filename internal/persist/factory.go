package persist

import (
	"fmt"
	"log/slog"

	"kaskom/internal/persist/memory"
	"kaskom/internal/persist/sqlite"
)

// Backend selects the local snapshot adapter implementation.
type Backend string

const (
	SQLiteBackend Backend = "sqlite"
	MemoryBackend Backend = "memory"
)

func (b Backend) String() string { return string(b) }

func (b Backend) IsValid() bool {
	switch b {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}

// CleanupFunc releases adapter resources.
type CleanupFunc func() error

// Open creates the configured snapshot adapter. The memory backend keeps
// snapshots for the process lifetime only.
func Open(backend Backend, dbPath string, logger *slog.Logger) (Adapter, CleanupFunc, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if !backend.IsValid() {
		return nil, nil, fmt.Errorf("invalid persistence backend: %s", backend)
	}

	switch backend {
	case SQLiteBackend:
		store, err := sqlite.New(dbPath)
		if err != nil {
			return nil, nil, fmt.Errorf("initialize sqlite snapshot store: %w", err)
		}
		logger.Info("Initialized SQLite snapshot store", "db_path", dbPath)
		return store, store.Close, nil
	default:
		logger.Info("Initialized in-memory snapshot store")
		return memory.New(), nil, nil
	}
}
