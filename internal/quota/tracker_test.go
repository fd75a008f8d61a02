package quota

import (
	"context"
	"errors"
	"testing"
	"time"

	"codeberg.org/snonux/wurdle/internal/store"
)

type clock struct {
	t time.Time
}

func (c *clock) now() time.Time { return c.t }

func day(y int, m time.Month, d, h int) time.Time {
	return time.Date(y, m, d, h, 0, 0, 0, time.Local)
}

func TestFreshTracker(t *testing.T) {
	kv := store.NewMemory()
	c := &clock{t: day(2026, 3, 1, 9)}
	tr := NewTracker(kv, 5, WithClock(c.now))

	if got := tr.Remaining(); got != 5 {
		t.Errorf("Remaining() = %d, want 5", got)
	}
	if date, _ := kv.Get(context.Background(), store.KeyGenerationDate); date != "2026-03-01" {
		t.Errorf("stored date = %q, want 2026-03-01", date)
	}
}

func TestIncrementPersists(t *testing.T) {
	kv := store.NewMemory()
	c := &clock{t: day(2026, 3, 1, 9)}
	tr := NewTracker(kv, 5, WithClock(c.now))

	for i := 1; i <= 3; i++ {
		before := tr.Count()
		tr.Increment()
		if got := tr.Count(); got != before+1 {
			t.Fatalf("Count() after increment = %d, want %d", got, before+1)
		}
	}
	if raw, _ := kv.Get(context.Background(), store.KeyGenerationCount); raw != "3" {
		t.Errorf("persisted count = %q, want 3", raw)
	}

	// A new session on the same day resumes the count.
	again := NewTracker(kv, 5, WithClock(c.now))
	if got := again.Remaining(); got != 2 {
		t.Errorf("Remaining() in new session = %d, want 2", got)
	}
}

func TestRolloverResetsToZero(t *testing.T) {
	kv := store.NewMemory()
	ctx := context.Background()
	kv.Set(ctx, store.KeyGenerationDate, "2026-02-28")
	kv.Set(ctx, store.KeyGenerationCount, "5")

	c := &clock{t: day(2026, 3, 1, 0)}
	tr := NewTracker(kv, 5, WithClock(c.now))
	if got := tr.Count(); got != 0 {
		t.Errorf("Count() after rollover = %d, want 0", got)
	}

	tr.Increment()
	tr.Increment()
	// The session spans midnight.
	c.t = day(2026, 3, 2, 0)
	if got := tr.Count(); got != 0 {
		t.Errorf("Count() after midnight = %d, want 0", got)
	}
	tr.Increment()
	if got := tr.Count(); got != 1 {
		t.Errorf("Count() = %d, want 1", got)
	}
}

func TestExhausted(t *testing.T) {
	c := &clock{t: day(2026, 3, 1, 9)}
	tr := NewTracker(store.NewMemory(), 5, WithClock(c.now))
	for range 5 {
		if tr.Exhausted() {
			t.Fatal("exhausted too early")
		}
		tr.Increment()
	}
	if !tr.Exhausted() || tr.Remaining() != 0 {
		t.Error("expected quota to be exhausted after 5 increments")
	}
	tr.Increment()
	if tr.Remaining() != 0 {
		t.Error("Remaining() must never go negative")
	}
}

func TestCorruptCountIsZero(t *testing.T) {
	kv := store.NewMemory()
	ctx := context.Background()
	kv.Set(ctx, store.KeyGenerationDate, "2026-03-01")
	kv.Set(ctx, store.KeyGenerationCount, "lots")

	c := &clock{t: day(2026, 3, 1, 9)}
	if got := NewTracker(kv, 5, WithClock(c.now)).Count(); got != 0 {
		t.Errorf("Count() = %d, want 0", got)
	}
}

type brokenKV struct{}

func (brokenKV) Get(context.Context, string) (string, error) { return "", errors.New("disk gone") }
func (brokenKV) Set(context.Context, string, string) error   { return errors.New("disk gone") }
func (brokenKV) Close() error                                { return nil }

func TestDegradesToMemory(t *testing.T) {
	c := &clock{t: day(2026, 3, 1, 9)}
	tr := NewTracker(brokenKV{}, 5, WithClock(c.now))

	tr.Increment()
	tr.Increment()
	if got := tr.Remaining(); got != 3 {
		t.Errorf("Remaining() = %d, want 3", got)
	}

	nilStore := NewTracker(nil, 0, WithClock(c.now))
	nilStore.Increment()
	if nilStore.Limit() != DefaultDailyLimit || nilStore.Count() != 1 {
		t.Errorf("nil store tracker: limit %d count %d", nilStore.Limit(), nilStore.Count())
	}
}
