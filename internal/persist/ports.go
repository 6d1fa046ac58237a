package persist

import "context"

// Snapshot keys. Each store owns exactly one key and writes its whole
// collection under it (overwrite semantics, no incremental writes).
const (
	KeyCategories   = "categories"
	KeyTransactions = "transactions"
)

// Ports for snapshot adapters.
type (
	Loader interface {
		// Load returns the snapshot stored under key, or ok=false when no
		// snapshot has ever been written.
		Load(ctx context.Context, key string) (body []byte, ok bool, err error)
	}

	Saver interface {
		// Save overwrites the snapshot stored under key.
		Save(ctx context.Context, key string, body []byte) error
	}

	Adapter interface {
		Loader
		Saver
	}
)
