package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"frictionstudy/internal/model"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return mr, rdb
}

func TestSessionCacheCreateOnce(t *testing.T) {
	ctx := context.Background()
	mr, rdb := newRedis(t)
	store := NewSessionCache(rdb, time.Hour)

	if s, err := store.Get(ctx, "missing"); err != nil || s != nil {
		t.Fatalf("Get(missing) = %v, %v", s, err)
	}

	session := &model.Session{ID: "s1", Condition: model.ConditionJustification, Gate: model.NewGateState(1)}
	if err := store.Create(ctx, session); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := store.Create(ctx, &model.Session{ID: "s1", Condition: model.ConditionImmediate}); !errors.Is(err, ErrSessionExists) {
		t.Fatalf("expected ErrSessionExists, got %v", err)
	}

	got, err := store.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Condition != model.ConditionJustification {
		t.Fatalf("second Create overwrote the session: %s", got.Condition)
	}

	got.CurrentItemIndex = 2
	if err := store.Save(ctx, got); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if again, _ := store.Get(ctx, "s1"); again.CurrentItemIndex != 2 {
		t.Fatalf("unexpected session after save: %+v", again)
	}

	if ttl := mr.TTL("study:session:s1"); ttl != time.Hour {
		t.Fatalf("expected session ttl of 1h, got %s", ttl)
	}
	mr.FastForward(2 * time.Hour)
	if s, _ := store.Get(ctx, "s1"); s != nil {
		t.Fatal("expected the session to expire")
	}
}

func TestSessionCacheLock(t *testing.T) {
	ctx := context.Background()
	mr, rdb := newRedis(t)
	store := NewSessionCache(rdb, time.Hour)

	unlock, err := store.Lock(ctx, "s1")
	if err != nil {
		t.Fatalf("Lock: %v", err)
	}
	if _, err := store.Lock(ctx, "s1"); !errors.Is(err, ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}
	if other, err := store.Lock(ctx, "s2"); err != nil {
		t.Fatalf("locks must be per session: %v", err)
	} else {
		other()
	}

	unlock()
	if mr.Exists("study:session:s1:lock") {
		t.Fatal("unlock left the lock key behind")
	}
	relock, err := store.Lock(ctx, "s1")
	if err != nil {
		t.Fatalf("Lock after unlock: %v", err)
	}
	relock()
}

func TestSessionCacheUnlockOnlyByOwner(t *testing.T) {
	ctx := context.Background()
	mr, rdb := newRedis(t)
	store := NewSessionCache(rdb, time.Hour)

	stale, err := store.Lock(ctx, "s1")
	if err != nil {
		t.Fatalf("Lock: %v", err)
	}

	// the first holder stalls past the lock ttl and someone else takes over
	mr.FastForward(lockTTL + time.Second)
	current, err := store.Lock(ctx, "s1")
	if err != nil {
		t.Fatalf("Lock after expiry: %v", err)
	}

	stale()
	if !mr.Exists("study:session:s1:lock") {
		t.Fatal("a stale unlock released the new owner's lock")
	}
	if _, err := store.Lock(ctx, "s1"); !errors.Is(err, ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}

	current()
	if mr.Exists("study:session:s1:lock") {
		t.Fatal("owner unlock did not release the lock")
	}
}

func TestStatsCacheCounters(t *testing.T) {
	ctx := context.Background()
	mr, rdb := newRedis(t)
	stats := NewStatsCache(rdb)

	for i := 0; i < 3; i++ {
		if err := stats.Incr(ctx, "started:B"); err != nil {
			t.Fatalf("Incr: %v", err)
		}
	}
	stats.Incr(ctx, "failed:Survey")
	mr.HSet(statsKey, "garbage", "not-a-number")

	snap, err := stats.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if snap["started:B"] != 3 || snap["failed:Survey"] != 1 {
		t.Fatalf("unexpected snapshot %v", snap)
	}
	if _, ok := snap["garbage"]; ok {
		t.Fatal("non-numeric fields should be skipped")
	}
}
