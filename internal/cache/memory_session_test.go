package cache

import (
	"context"
	"errors"
	"testing"

	"frictionstudy/internal/model"
)

func TestMemorySessionStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySessionStore()

	if s, err := store.Get(ctx, "missing"); err != nil || s != nil {
		t.Fatalf("Get(missing) = %v, %v", s, err)
	}

	session := &model.Session{ID: "s1", Condition: model.ConditionVerification, Gate: model.NewGateState(1)}
	if err := store.Create(ctx, session); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := store.Create(ctx, session); !errors.Is(err, ErrSessionExists) {
		t.Fatalf("expected ErrSessionExists, got %v", err)
	}

	got, err := store.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	got.CurrentItemIndex = 3
	if again, _ := store.Get(ctx, "s1"); again.CurrentItemIndex != 0 {
		t.Fatal("store shares memory with callers")
	}

	if err := store.Save(ctx, got); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if again, _ := store.Get(ctx, "s1"); again.CurrentItemIndex != 3 || again.Condition != model.ConditionVerification {
		t.Fatalf("unexpected session after save: %+v", again)
	}
}

func TestMemorySessionStoreLock(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySessionStore()

	unlock, err := store.Lock(ctx, "s1")
	if err != nil {
		t.Fatalf("Lock: %v", err)
	}
	if _, err := store.Lock(ctx, "s1"); !errors.Is(err, ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}
	other, err := store.Lock(ctx, "s2")
	if err != nil {
		t.Fatalf("sessions should lock independently: %v", err)
	}
	other()

	unlock()
	again, err := store.Lock(ctx, "s1")
	if err != nil {
		t.Fatalf("Lock after unlock: %v", err)
	}
	again()
}
