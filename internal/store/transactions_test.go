package store

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"

	"kaskom/internal/core"
	"kaskom/internal/persist"
	"kaskom/internal/persist/memory"
)

func newTestTransactionStore(adapter persist.Adapter, pub SnapshotPublisher) *TransactionStore {
	s := NewTransactionStore(adapter, pub)
	seq := 0
	s.newID = func() string {
		seq++
		return fmt.Sprintf("id-%d", seq)
	}
	s.now = func() time.Time {
		return time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	}
	return s
}

func validDraft() TransactionDraft {
	return TransactionDraft{
		Type:        core.Expense,
		Amount:      150000,
		Category:    "Konsumsi",
		Description: "Snack rapat",
		Treasurer:   "Budi",
		Date:        "2024-01-10",
	}
}

func TestTransactionStore_Add(t *testing.T) {
	ctx := context.Background()

	t.Run("assigns id and defaults, lookup returns the stored record", func(t *testing.T) {
		s := newTestTransactionStore(memory.New(), nil)

		created, err := s.Add(ctx, validDraft())
		if err != nil {
			t.Fatalf("Add() error: %v", err)
		}
		if created.ID == "" {
			t.Fatal("Add() did not assign an id")
		}
		if len(created.Comments) != 0 || created.Comments == nil {
			t.Errorf("Add() comments = %v, want empty non-nil thread", created.Comments)
		}

		got, ok := s.Get(created.ID)
		if !ok {
			t.Fatal("Get() did not find the created transaction")
		}
		if !reflect.DeepEqual(got, created) {
			t.Errorf("Get() = %+v, want %+v", got, created)
		}

		want := validDraft()
		if got.Type != want.Type || got.Amount != want.Amount || got.Category != want.Category ||
			got.Description != want.Description || got.Treasurer != want.Treasurer || got.Date != want.Date {
			t.Errorf("stored transaction does not match the draft: %+v", got)
		}
	})

	t.Run("defaults the date to today", func(t *testing.T) {
		s := newTestTransactionStore(memory.New(), nil)

		draft := validDraft()
		draft.Date = ""
		created, err := s.Add(ctx, draft)
		if err != nil {
			t.Fatalf("Add() error: %v", err)
		}
		if created.Date != "2024-01-15" {
			t.Errorf("Add() date = %q, want the creation date", created.Date)
		}
	})

	t.Run("prepends so the book stays newest first", func(t *testing.T) {
		s := newTestTransactionStore(memory.New(), nil)

		first, _ := s.Add(ctx, validDraft())
		second, _ := s.Add(ctx, validDraft())

		list := s.List()
		if len(list) != 2 {
			t.Fatalf("List() has %d transactions, want 2", len(list))
		}
		if list[0].ID != second.ID || list[1].ID != first.ID {
			t.Errorf("List() order = [%s %s], want newest first", list[0].ID, list[1].ID)
		}
	})

	t.Run("rejects an invalid draft and persists nothing", func(t *testing.T) {
		adapter := memory.New()
		s := newTestTransactionStore(adapter, nil)

		draft := validDraft()
		draft.Amount = -1
		_, err := s.Add(ctx, draft)

		var verr *core.ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("Add() = %v, want *ValidationError", err)
		}
		if verr.Field != "amount" {
			t.Errorf("ValidationError.Field = %q, want %q", verr.Field, "amount")
		}
		if len(s.List()) != 0 {
			t.Error("rejected Add() must not change the book")
		}
		if len(adapter.Saves(persist.KeyTransactions)) != 0 {
			t.Error("rejected Add() must not write a snapshot")
		}
	})

	t.Run("assigned ids are unique across the book", func(t *testing.T) {
		s := NewTransactionStore(memory.New(), nil)

		seen := make(map[string]bool)
		for i := 0; i < 50; i++ {
			created, err := s.Add(ctx, validDraft())
			if err != nil {
				t.Fatalf("Add() error: %v", err)
			}
			if seen[created.ID] {
				t.Fatalf("Add() reused id %s", created.ID)
			}
			seen[created.ID] = true
		}
	})
}

func TestTransactionStore_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("merges set fields and persists", func(t *testing.T) {
		adapter := memory.New()
		s := newTestTransactionStore(adapter, nil)
		created, _ := s.Add(ctx, validDraft())

		amount := int64(200000)
		desc := "Konsumsi rapat bulanan"
		updated, err := s.Update(ctx, created.ID, TransactionPatch{Amount: &amount, Description: &desc})
		if err != nil {
			t.Fatalf("Update() error: %v", err)
		}
		if updated.Amount != 200000 || updated.Description != desc {
			t.Errorf("Update() = %+v, want patched fields applied", updated)
		}
		if updated.Category != created.Category {
			t.Error("Update() must keep unpatched fields")
		}
		if len(adapter.Saves(persist.KeyTransactions)) != 2 {
			t.Error("Update() must write the book through")
		}
	})

	t.Run("keeps the comment thread across patches", func(t *testing.T) {
		s := newTestTransactionStore(memory.New(), nil)
		created, _ := s.Add(ctx, validDraft())
		if _, err := s.AddComment(ctx, created.ID, "Siti", "Terima kasih"); err != nil {
			t.Fatalf("AddComment() error: %v", err)
		}

		amount := int64(175000)
		updated, err := s.Update(ctx, created.ID, TransactionPatch{Amount: &amount})
		if err != nil {
			t.Fatalf("Update() error: %v", err)
		}
		if len(updated.Comments) != 1 {
			t.Errorf("Update() dropped the comment thread: %+v", updated.Comments)
		}
		if updated.ID != created.ID {
			t.Error("Update() must never change the id")
		}
	})

	t.Run("rejects an invalid patch atomically", func(t *testing.T) {
		s := newTestTransactionStore(memory.New(), nil)
		created, _ := s.Add(ctx, validDraft())

		bad := int64(-500)
		desc := "should not land either"
		_, err := s.Update(ctx, created.ID, TransactionPatch{Amount: &bad, Description: &desc})

		var verr *core.ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("Update() = %v, want *ValidationError", err)
		}
		if verr.Field != "amount" {
			t.Errorf("ValidationError.Field = %q, want %q", verr.Field, "amount")
		}

		got, _ := s.Get(created.ID)
		if !reflect.DeepEqual(got, created) {
			t.Errorf("rejected Update() changed the stored record:\n got  %+v\n want %+v", got, created)
		}
	})

	t.Run("unknown id", func(t *testing.T) {
		s := newTestTransactionStore(memory.New(), nil)

		amount := int64(1)
		_, err := s.Update(ctx, "missing", TransactionPatch{Amount: &amount})
		var nerr *core.NotFoundError
		if !errors.As(err, &nerr) {
			t.Fatalf("Update() = %v, want *NotFoundError", err)
		}
		if nerr.ID != "missing" {
			t.Errorf("NotFoundError.ID = %q, want %q", nerr.ID, "missing")
		}
	})
}

func TestTransactionStore_Delete(t *testing.T) {
	ctx := context.Background()
	s := newTestTransactionStore(memory.New(), nil)
	created, _ := s.Add(ctx, validDraft())

	s.Delete(ctx, created.ID)
	if _, ok := s.Get(created.ID); ok {
		t.Fatal("Delete() left the transaction in the book")
	}

	// Second delete of the same id is a no-op, not an error.
	s.Delete(ctx, created.ID)
	if len(s.List()) != 0 {
		t.Error("double Delete() changed the book")
	}
}

func TestTransactionStore_AddComment(t *testing.T) {
	ctx := context.Background()

	t.Run("appends with fresh id and timestamp", func(t *testing.T) {
		s := newTestTransactionStore(memory.New(), nil)
		created, _ := s.Add(ctx, validDraft())

		comment, err := s.AddComment(ctx, created.ID, " Siti ", " Terima kasih ")
		if err != nil {
			t.Fatalf("AddComment() error: %v", err)
		}
		if comment.Name != "Siti" || comment.Text != "Terima kasih" {
			t.Errorf("AddComment() = %+v, want trimmed fields", comment)
		}
		if comment.Timestamp.IsZero() {
			t.Error("AddComment() did not stamp the comment")
		}

		got, _ := s.Get(created.ID)
		if len(got.Comments) != 1 || got.Comments[0].ID != comment.ID {
			t.Errorf("comment thread = %+v, want the new comment", got.Comments)
		}
	})

	t.Run("preserves submission order", func(t *testing.T) {
		s := newTestTransactionStore(memory.New(), nil)
		created, _ := s.Add(ctx, validDraft())

		for _, text := range []string{"pertama", "kedua", "ketiga"} {
			if _, err := s.AddComment(ctx, created.ID, "Siti", text); err != nil {
				t.Fatalf("AddComment(%q) error: %v", text, err)
			}
		}

		got, _ := s.Get(created.ID)
		for i, want := range []string{"pertama", "kedua", "ketiga"} {
			if got.Comments[i].Text != want {
				t.Errorf("Comments[%d].Text = %q, want %q", i, got.Comments[i].Text, want)
			}
		}
	})

	t.Run("rejects blank fields", func(t *testing.T) {
		s := newTestTransactionStore(memory.New(), nil)
		created, _ := s.Add(ctx, validDraft())

		tests := []struct {
			name, text, wantField string
		}{
			{"", "hello", "name"},
			{"  ", "hello", "name"},
			{"Siti", "", "text"},
			{"Siti", "  ", "text"},
		}
		for _, tt := range tests {
			_, err := s.AddComment(ctx, created.ID, tt.name, tt.text)
			var verr *core.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("AddComment(%q, %q) = %v, want *ValidationError", tt.name, tt.text, err)
			}
			if verr.Field != tt.wantField {
				t.Errorf("ValidationError.Field = %q, want %q", verr.Field, tt.wantField)
			}
		}

		got, _ := s.Get(created.ID)
		if len(got.Comments) != 0 {
			t.Error("rejected comments must not be appended")
		}
	})

	t.Run("unknown transaction", func(t *testing.T) {
		s := newTestTransactionStore(memory.New(), nil)

		_, err := s.AddComment(ctx, "missing", "Siti", "hello")
		var nerr *core.NotFoundError
		if !errors.As(err, &nerr) {
			t.Fatalf("AddComment() = %v, want *NotFoundError", err)
		}
	})
}

func TestTransactionStore_SnapshotRoundTrip(t *testing.T) {
	ctx := context.Background()
	adapter := memory.New()
	s := newTestTransactionStore(adapter, nil)

	created, _ := s.Add(ctx, validDraft())
	if _, err := s.AddComment(ctx, created.ID, "Siti", "Terima kasih"); err != nil {
		t.Fatalf("AddComment() error: %v", err)
	}
	draft := validDraft()
	draft.Type = core.Income
	draft.Category = "Iuran Anggota"
	if _, err := s.Add(ctx, draft); err != nil {
		t.Fatalf("Add() error: %v", err)
	}

	// A second store reading the same adapter must reproduce the collection
	// field for field, order preserved.
	reloaded := NewTransactionStore(adapter, nil)
	reloaded.Init(ctx)

	if !reflect.DeepEqual(reloaded.List(), s.List()) {
		t.Errorf("round trip changed the book:\n got  %+v\n want %+v", reloaded.List(), s.List())
	}
}

func TestTransactionStore_Init_MalformedSnapshot(t *testing.T) {
	adapter := memory.New()
	adapter.Seed(persist.KeyTransactions, []byte(`{"oops"`))

	s := NewTransactionStore(adapter, nil)
	s.Init(context.Background())

	if len(s.List()) != 0 {
		t.Error("malformed snapshot must yield an empty book")
	}
}

func TestTransactionStore_ReplaceAll(t *testing.T) {
	ctx := context.Background()
	adapter := memory.New()
	pub := &recordingPublisher{}
	s := newTestTransactionStore(adapter, pub)

	local, _ := s.Add(ctx, validDraft())

	remote := []core.Transaction{{
		ID: "remote-1", Type: core.Income, Amount: 75000, Category: "Donasi",
		Description: "Donasi warga", Treasurer: "Siti", Date: "2024-01-14",
		Comments: []core.Comment{},
	}}
	s.ReplaceAll(ctx, remote)

	if _, ok := s.Get(local.ID); ok {
		t.Error("ReplaceAll() must overwrite the local edit (last writer wins)")
	}
	if got := s.List(); len(got) != 1 || got[0].ID != "remote-1" {
		t.Errorf("List() = %+v, want the remote snapshot", got)
	}

	// One publish from the local Add only: replaces are never republished.
	if keys := pub.Keys(); len(keys) != 1 {
		t.Errorf("published %d snapshots, want 1", len(keys))
	}

	// The replace is still persisted locally.
	saves := adapter.Saves(persist.KeyTransactions)
	if len(saves) != 2 {
		t.Errorf("recorded %d writes, want 2 (add + replace)", len(saves))
	}
}

func TestTransactionStore_PersistenceFailureDoesNotRollBack(t *testing.T) {
	ctx := context.Background()
	adapter := memory.New()
	adapter.SaveErr = errors.New("disk full")
	s := newTestTransactionStore(adapter, nil)

	created, err := s.Add(ctx, validDraft())
	if err != nil {
		t.Fatalf("Add() must succeed despite a failed write: %v", err)
	}
	if _, ok := s.Get(created.ID); !ok {
		t.Error("in-memory book must keep the mutation when the write fails")
	}
}

func TestTransactionStore_CallersCannotMutateStoreState(t *testing.T) {
	ctx := context.Background()
	s := newTestTransactionStore(memory.New(), nil)
	created, _ := s.Add(ctx, validDraft())
	if _, err := s.AddComment(ctx, created.ID, "Siti", "asli"); err != nil {
		t.Fatalf("AddComment() error: %v", err)
	}

	list := s.List()
	list[0].Comments[0].Text = "diubah"
	list[0].Description = "diubah"

	got, _ := s.Get(created.ID)
	if got.Comments[0].Text != "asli" || got.Description != "Snack rapat" {
		t.Error("List() must return copies, not store-owned state")
	}
}
