package store

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"kaskom/internal/core"
	"kaskom/internal/persist"
)

type (
	// TransactionDraft is the caller-supplied shape for Add. The store assigns
	// the id, defaults the date to today and starts an empty comment thread.
	TransactionDraft struct {
		Type        core.TransactionType
		Amount      int64
		Category    string
		Description string
		Treasurer   string
		Date        string
		ImageURL    string
	}

	// TransactionPatch is a shallow field replacement for Update. Nil fields
	// keep their current value. ID and Comments are not patchable.
	TransactionPatch struct {
		Type        *core.TransactionType
		Amount      *int64
		Category    *string
		Description *string
		Treasurer   *string
		Date        *string
		ImageURL    *string
	}
)

// TransactionStore owns the transaction list, newest first. One instance per
// process; consumers mutate only through the operations below, which is what
// keeps the invariants (unique ids, non-negative amounts, append-only
// comments) intact across call sites.
type TransactionStore struct {
	mu        sync.Mutex
	items     []core.Transaction
	adapter   persist.Adapter
	publisher SnapshotPublisher

	now   func() time.Time
	newID func() string
}

func NewTransactionStore(adapter persist.Adapter, publisher SnapshotPublisher) *TransactionStore {
	return &TransactionStore{
		adapter:   adapter,
		publisher: publisher,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// Init loads the persisted transaction list. Absent or malformed snapshots
// yield an empty book, logged, never fatal.
func (s *TransactionStore) Init(ctx context.Context) {
	body, ok, err := s.adapter.Load(ctx, persist.KeyTransactions)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to load transaction snapshot, starting empty", "error", err)
		return
	}
	if !ok {
		return
	}

	var items []core.Transaction
	if err := json.Unmarshal(body, &items); err != nil {
		slog.ErrorContext(ctx, "Failed to parse transaction snapshot, starting empty", "error", err)
		return
	}

	s.mu.Lock()
	s.items = items
	s.mu.Unlock()

	slog.InfoContext(ctx, "Loaded transaction book", "count", len(items))
}

// Add validates the draft, assigns a fresh id, prepends and writes through.
func (s *TransactionStore) Add(ctx context.Context, draft TransactionDraft) (core.Transaction, error) {
	tx := core.Transaction{
		ID:          s.newID(),
		Type:        draft.Type,
		Amount:      draft.Amount,
		Category:    draft.Category,
		Description: draft.Description,
		Treasurer:   draft.Treasurer,
		Date:        draft.Date,
		ImageURL:    draft.ImageURL,
		Comments:    []core.Comment{},
	}
	if tx.Date == "" {
		tx.Date = s.now().Format(core.DateLayout)
	}

	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}

	s.mu.Lock()
	s.items = append([]core.Transaction{tx}, s.items...)
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.persist(ctx, snapshot)
	slog.InfoContext(ctx, "Transaction recorded",
		"id", tx.ID,
		"type", tx.Type,
		"amount", tx.Amount,
		"category", tx.Category)
	return tx.Clone(), nil
}

// Update merges the patch into the matched transaction and re-validates the
// merged record before anything is stored: replace-or-reject, no partial
// writes. A failed validation leaves the stored record untouched.
func (s *TransactionStore) Update(ctx context.Context, id string, patch TransactionPatch) (core.Transaction, error) {
	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return core.Transaction{}, &core.NotFoundError{ID: id}
	}

	merged := s.items[idx].Clone()
	if patch.Type != nil {
		merged.Type = *patch.Type
	}
	if patch.Amount != nil {
		merged.Amount = *patch.Amount
	}
	if patch.Category != nil {
		merged.Category = *patch.Category
	}
	if patch.Description != nil {
		merged.Description = *patch.Description
	}
	if patch.Treasurer != nil {
		merged.Treasurer = *patch.Treasurer
	}
	if patch.Date != nil {
		merged.Date = *patch.Date
	}
	if patch.ImageURL != nil {
		merged.ImageURL = *patch.ImageURL
	}

	if err := merged.Validate(); err != nil {
		s.mu.Unlock()
		return core.Transaction{}, err
	}

	s.items[idx] = merged
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.persist(ctx, snapshot)
	slog.InfoContext(ctx, "Transaction updated", "id", id)
	return merged.Clone(), nil
}

// Delete removes the transaction if present. Deleting an absent id is a
// no-op, not an error.
func (s *TransactionStore) Delete(ctx context.Context, id string) {
	s.mu.Lock()
	removed := false
	kept := s.items[:0]
	for _, tx := range s.items {
		if tx.ID == id {
			removed = true
			continue
		}
		kept = append(kept, tx)
	}
	s.items = kept
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.persist(ctx, snapshot)
	if removed {
		slog.InfoContext(ctx, "Transaction deleted", "id", id)
	} else {
		slog.DebugContext(ctx, "Delete of absent transaction ignored", "id", id)
	}
}

// AddComment appends a comment to the transaction's thread. Name and text
// must be non-empty after trim.
func (s *TransactionStore) AddComment(ctx context.Context, txID, name, text string) (core.Comment, error) {
	name = strings.TrimSpace(name)
	text = strings.TrimSpace(text)
	if name == "" {
		return core.Comment{}, &core.ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if text == "" {
		return core.Comment{}, &core.ValidationError{Field: "text", Reason: "must not be empty"}
	}

	comment := core.Comment{
		ID:        s.newID(),
		Name:      name,
		Text:      text,
		Timestamp: s.now(),
	}

	s.mu.Lock()
	idx := s.indexLocked(txID)
	if idx < 0 {
		s.mu.Unlock()
		return core.Comment{}, &core.NotFoundError{ID: txID}
	}
	s.items[idx].Comments = append(s.items[idx].Comments, comment)
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.persist(ctx, snapshot)
	slog.InfoContext(ctx, "Comment added", "transaction_id", txID, "comment_id", comment.ID)
	return comment, nil
}

// Get returns a copy of the transaction with that id.
func (s *TransactionStore) Get(id string) (core.Transaction, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexLocked(id)
	if idx < 0 {
		return core.Transaction{}, false
	}
	return s.items[idx].Clone(), true
}

// List returns a copy of the whole book in stored order, newest first.
func (s *TransactionStore) List() []core.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Transaction, len(s.items))
	for i, tx := range s.items {
		out[i] = tx.Clone()
	}
	return out
}

// ReplaceAll applies an inbound remote snapshot wholesale and persists it
// locally. Last writer wins at the level of the whole collection: a local
// edit racing an inbound replace is silently overwritten. That race is part
// of the sync contract, not a bug to merge away.
func (s *TransactionStore) ReplaceAll(ctx context.Context, items []core.Transaction) {
	s.mu.Lock()
	s.items = make([]core.Transaction, len(items))
	for i, tx := range items {
		s.items[i] = tx.Clone()
	}
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	if err := s.adapter.Save(ctx, persist.KeyTransactions, snapshot); err != nil {
		perr := &core.PersistenceError{Cause: err}
		slog.ErrorContext(ctx, "Failed to persist replaced transaction book", "error", perr)
	}
	slog.InfoContext(ctx, "Transaction book replaced from remote", "count", len(items))
}

// indexLocked finds a transaction by id. Callers must hold mu.
func (s *TransactionStore) indexLocked(id string) int {
	for i, tx := range s.items {
		if tx.ID == id {
			return i
		}
	}
	return -1
}

// snapshotLocked encodes the whole book. Callers must hold mu.
func (s *TransactionStore) snapshotLocked() []byte {
	if s.items == nil {
		return []byte("[]")
	}
	body, err := json.Marshal(s.items)
	if err != nil {
		return []byte("[]")
	}
	return body
}

// persist writes the snapshot through and notifies the sync channel, both
// best-effort. A storage failure never rolls back the in-memory mutation.
func (s *TransactionStore) persist(ctx context.Context, snapshot []byte) {
	if err := s.adapter.Save(ctx, persist.KeyTransactions, snapshot); err != nil {
		perr := &core.PersistenceError{Cause: err}
		slog.ErrorContext(ctx, "Failed to persist transaction book", "error", perr)
	}
	if s.publisher != nil {
		if err := s.publisher.PublishSnapshot(ctx, persist.KeyTransactions, snapshot); err != nil {
			slog.ErrorContext(ctx, "Failed to publish transaction snapshot", "error", err)
		}
	}
}
