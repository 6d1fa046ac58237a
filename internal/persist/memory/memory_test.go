package memory

import (
	"bytes"
	"context"
	"errors"
	"testing"
)

func TestStore_LoadAbsentKey(t *testing.T) {
	s := New()

	body, ok, err := s.Load(context.Background(), "categories")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if ok {
		t.Error("Load() reported a snapshot for a key never written")
	}
	if body != nil {
		t.Errorf("Load() body = %q, want nil", body)
	}
}

func TestStore_SaveOverwritesAndRecords(t *testing.T) {
	ctx := context.Background()
	s := New()

	if err := s.Save(ctx, "categories", []byte(`["Donasi"]`)); err != nil {
		t.Fatalf("first Save() error: %v", err)
	}
	if err := s.Save(ctx, "categories", []byte(`["Donasi","Konsumsi"]`)); err != nil {
		t.Fatalf("second Save() error: %v", err)
	}

	body, ok, err := s.Load(ctx, "categories")
	if err != nil || !ok {
		t.Fatalf("Load() = ok=%v err=%v, want snapshot", ok, err)
	}
	if !bytes.Equal(body, []byte(`["Donasi","Konsumsi"]`)) {
		t.Errorf("Load() body = %s, want latest save", body)
	}

	saves := s.Saves("categories")
	if len(saves) != 2 {
		t.Fatalf("Saves() recorded %d writes, want 2", len(saves))
	}
	if !bytes.Equal(saves[0], []byte(`["Donasi"]`)) {
		t.Errorf("Saves()[0] = %s, want first write", saves[0])
	}
}

func TestStore_SaveErr(t *testing.T) {
	s := New()
	s.SaveErr = errors.New("quota exceeded")

	if err := s.Save(context.Background(), "transactions", []byte(`[]`)); err == nil {
		t.Fatal("Save() should return the injected error")
	}
	if len(s.Saves("transactions")) != 0 {
		t.Error("failed Save() must not be recorded")
	}
}

func TestStore_SeedIsNotASave(t *testing.T) {
	s := New()
	s.Seed("transactions", []byte(`[]`))

	if _, ok, _ := s.Load(context.Background(), "transactions"); !ok {
		t.Error("Load() should see seeded snapshot")
	}
	if len(s.Saves("transactions")) != 0 {
		t.Error("Seed() must not count as a recorded save")
	}
}
