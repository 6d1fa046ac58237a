package store

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"kaskom/internal/core"
	"kaskom/internal/persist"
)

// DefaultCategories are seeded at first run and protected forever: Delete
// refuses them by membership in this list, not in the live set, so a label
// with this exact text stays protected even after a remote snapshot swap.
var DefaultCategories = []string{
	"Iuran Anggota",
	"Donasi",
	"Operasional",
	"Konsumsi",
	"Perlengkapan",
	"Lainnya",
}

// CategoryStore owns the set of valid category labels. One instance per
// process; all mutation goes through the documented operations.
type CategoryStore struct {
	mu        sync.Mutex
	labels    []string
	adapter   persist.Adapter
	publisher SnapshotPublisher
	collator  *collate.Collator
}

func NewCategoryStore(adapter persist.Adapter, publisher SnapshotPublisher) *CategoryStore {
	return &CategoryStore{
		labels:    append([]string(nil), DefaultCategories...),
		adapter:   adapter,
		publisher: publisher,
		collator:  collate.New(language.Indonesian),
	}
}

// Init loads the persisted label set. A stored, parseable, non-empty set fully
// replaces the seed; anything else keeps the seed and is logged, never fatal.
func (s *CategoryStore) Init(ctx context.Context) {
	body, ok, err := s.adapter.Load(ctx, persist.KeyCategories)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to load category snapshot, keeping defaults", "error", err)
		return
	}
	if !ok {
		return
	}

	var labels []string
	if err := json.Unmarshal(body, &labels); err != nil {
		slog.ErrorContext(ctx, "Failed to parse category snapshot, keeping defaults", "error", err)
		return
	}
	if len(labels) == 0 {
		return
	}

	s.mu.Lock()
	s.labels = labels
	s.mu.Unlock()

	slog.InfoContext(ctx, "Loaded category set", "count", len(labels))
}

// Add inserts a trimmed label, re-sorts the whole set with Indonesian
// collation and writes it through. Returns the stored label.
func (s *CategoryStore) Add(ctx context.Context, label string) (string, error) {
	trimmed := strings.TrimSpace(label)
	if trimmed == "" {
		return "", &core.ValidationError{Field: "category", Reason: "must not be empty"}
	}

	s.mu.Lock()
	for _, existing := range s.labels {
		if existing == trimmed {
			s.mu.Unlock()
			return "", &core.DuplicateError{Value: trimmed}
		}
	}
	s.labels = append(s.labels, trimmed)
	s.collator.SortStrings(s.labels)
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.persist(ctx, snapshot)
	slog.InfoContext(ctx, "Category added", "label", trimmed)
	return trimmed, nil
}

// Delete removes a custom label. Seeded defaults are refused. Removing a
// label that transactions still reference is allowed: association is by
// value, so existing records keep displaying it verbatim.
func (s *CategoryStore) Delete(ctx context.Context, label string) error {
	if s.IsDefault(label) {
		return &core.ProtectedError{Value: label}
	}

	s.mu.Lock()
	kept := s.labels[:0]
	for _, existing := range s.labels {
		if existing != label {
			kept = append(kept, existing)
		}
	}
	s.labels = kept
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.persist(ctx, snapshot)
	slog.InfoContext(ctx, "Category deleted", "label", label)
	return nil
}

// IsDefault reports membership in the fixed seed list, exact match.
func (s *CategoryStore) IsDefault(label string) bool {
	for _, d := range DefaultCategories {
		if d == label {
			return true
		}
	}
	return false
}

// Labels returns a copy of the current set.
func (s *CategoryStore) Labels() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.labels...)
}

// ReplaceLabels applies an inbound remote snapshot wholesale and persists it
// locally. Last writer wins; no merge with pending local edits. The replace is
// not republished, so devices never loop on their own traffic.
func (s *CategoryStore) ReplaceLabels(ctx context.Context, labels []string) {
	s.mu.Lock()
	s.labels = append([]string(nil), labels...)
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	if err := s.adapter.Save(ctx, persist.KeyCategories, snapshot); err != nil {
		perr := &core.PersistenceError{Cause: err}
		slog.ErrorContext(ctx, "Failed to persist replaced category set", "error", perr)
	}
	slog.InfoContext(ctx, "Category set replaced from remote", "count", len(labels))
}

// snapshotLocked encodes the label set. Callers must hold mu.
func (s *CategoryStore) snapshotLocked() []byte {
	body, err := json.Marshal(s.labels)
	if err != nil {
		// A []string cannot fail to marshal; keep the write path total anyway.
		return []byte("[]")
	}
	return body
}

// persist writes the snapshot through and notifies the sync channel. Both are
// best-effort: the in-memory set is already the session authority.
func (s *CategoryStore) persist(ctx context.Context, snapshot []byte) {
	if err := s.adapter.Save(ctx, persist.KeyCategories, snapshot); err != nil {
		perr := &core.PersistenceError{Cause: err}
		slog.ErrorContext(ctx, "Failed to persist category set", "error", perr)
	}
	if s.publisher != nil {
		if err := s.publisher.PublishSnapshot(ctx, persist.KeyCategories, snapshot); err != nil {
			slog.ErrorContext(ctx, "Failed to publish category snapshot", "error", err)
		}
	}
}
