package store

import "context"

// SnapshotPublisher pushes a freshly written snapshot to the sync channel so
// other devices can replace their collections. Publishing is best-effort:
// failures are logged and never roll back the local mutation.
type SnapshotPublisher interface {
	PublishSnapshot(ctx context.Context, key string, body []byte) error
}
