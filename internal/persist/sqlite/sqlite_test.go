package sqlite

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "kaskom.db"))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_LoadAbsent(t *testing.T) {
	s := newTestStore(t)

	_, ok, err := s.Load(context.Background(), "transactions")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if ok {
		t.Error("Load() reported a snapshot in a fresh database")
	}
}

func TestStore_SaveThenLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	snapshot := []byte(`[{"id":"tx-1","type":"EXPENSE","amount":150000}]`)
	if err := s.Save(ctx, "transactions", snapshot); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	body, ok, err := s.Load(ctx, "transactions")
	if err != nil || !ok {
		t.Fatalf("Load() = ok=%v err=%v, want snapshot", ok, err)
	}
	if !bytes.Equal(body, snapshot) {
		t.Errorf("Load() = %s, want %s", body, snapshot)
	}
}

func TestStore_SaveOverwrites(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	if err := s.Save(ctx, "categories", []byte(`["Donasi"]`)); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	if err := s.Save(ctx, "categories", []byte(`["Donasi","Transportasi"]`)); err != nil {
		t.Fatalf("second Save() error: %v", err)
	}

	body, _, err := s.Load(ctx, "categories")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if !bytes.Equal(body, []byte(`["Donasi","Transportasi"]`)) {
		t.Errorf("Load() = %s, want the overwritten snapshot", body)
	}
}

func TestStore_KeysAreIndependent(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	if err := s.Save(ctx, "categories", []byte(`["Donasi"]`)); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	if _, ok, _ := s.Load(ctx, "transactions"); ok {
		t.Error("writing one key must not create a snapshot under another")
	}
}
