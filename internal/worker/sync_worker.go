package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"kaskom/internal/amqp"
	"kaskom/internal/core"
	"kaskom/internal/persist"
)

type (
	// TransactionReplacer applies an inbound remote transaction snapshot.
	TransactionReplacer interface {
		ReplaceAll(ctx context.Context, items []core.Transaction)
	}

	// CategoryReplacer applies an inbound remote category snapshot.
	CategoryReplacer interface {
		ReplaceLabels(ctx context.Context, labels []string)
	}

	// TransactionLister reads the current book for mirroring.
	TransactionLister interface {
		List() []core.Transaction
	}

	// BookMirror replicates the whole book to a remote store, best effort.
	BookMirror interface {
		ReplaceBook(ctx context.Context, items []core.Transaction) error
	}
)

// SyncWorker applies inbound snapshot-replace events to the local stores and
// pushes the book to the remote mirror. Inbound events always win over local
// state (last writer wins, whole collection).
type SyncWorker struct {
	origin       string
	transactions TransactionReplacer
	categories   CategoryReplacer
	lister       TransactionLister
	mirror       BookMirror
}

func NewSyncWorker(origin string, transactions TransactionReplacer, categories CategoryReplacer, lister TransactionLister, mirror BookMirror) *SyncWorker {
	return &SyncWorker{
		origin:       origin,
		transactions: transactions,
		categories:   categories,
		lister:       lister,
		mirror:       mirror,
	}
}

// HandleSnapshot processes one inbound snapshot message. Messages published
// by this same device are echoes of already-applied local state and are
// dropped so a device never clobbers itself through the broker.
func (w *SyncWorker) HandleSnapshot(ctx context.Context, msg *amqp.SnapshotMessage) error {
	if msg.Origin == w.origin {
		slog.DebugContext(ctx, "Dropping own snapshot echo", "key", msg.Key)
		return nil
	}

	switch msg.Key {
	case persist.KeyTransactions:
		var items []core.Transaction
		if err := json.Unmarshal(msg.Body, &items); err != nil {
			return fmt.Errorf("decode transaction snapshot: %w", err)
		}
		w.transactions.ReplaceAll(ctx, items)
		slog.InfoContext(ctx, "Applied remote transaction snapshot",
			"origin", msg.Origin,
			"count", len(items))
		return nil

	case persist.KeyCategories:
		var labels []string
		if err := json.Unmarshal(msg.Body, &labels); err != nil {
			return fmt.Errorf("decode category snapshot: %w", err)
		}
		w.categories.ReplaceLabels(ctx, labels)
		slog.InfoContext(ctx, "Applied remote category snapshot",
			"origin", msg.Origin,
			"count", len(labels))
		return nil

	default:
		slog.WarnContext(ctx, "Skipping snapshot with unknown key", "key", msg.Key)
		return nil
	}
}

// MirrorBook pushes the current book to the remote mirror. Failures are
// returned for the caller to log; they never affect local state.
func (w *SyncWorker) MirrorBook(ctx context.Context) error {
	if w.mirror == nil {
		slog.DebugContext(ctx, "No mirror configured, skipping")
		return nil
	}

	items := w.lister.List()
	if err := w.mirror.ReplaceBook(ctx, items); err != nil {
		return fmt.Errorf("mirror transaction book: %w", err)
	}

	slog.InfoContext(ctx, "Mirrored transaction book", "count", len(items))
	return nil
}
