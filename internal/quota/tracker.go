// Package quota tracks how many concepts were generated today.
//
// The count and its date key live in a store.KV. On first access in a session
// (and before every increment) the stored date key is compared with today's
// local calendar date; a different key resets the count to zero. When the
// store fails the tracker keeps counting in memory for the rest of the session.
package quota

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"codeberg.org/snonux/wurdle/internal/logx"
	"codeberg.org/snonux/wurdle/internal/store"
)

// DefaultDailyLimit is the number of generations allowed per calendar day.
const DefaultDailyLimit = 5

const dateLayout = "2006-01-02"

// Tracker is the process-wide generation counter.
type Tracker struct {
	kv    store.KV
	limit int
	now   func() time.Time
	log   zerolog.Logger

	mu       sync.Mutex
	loaded   bool
	degraded bool
	count    int
	dateKey  string
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// NewTracker creates a tracker backed by kv. A nil kv tracks in memory only.
func NewTracker(kv store.KV, limit int, opts ...Option) *Tracker {
	if limit <= 0 {
		limit = DefaultDailyLimit
	}
	t := &Tracker{
		kv:    kv,
		limit: limit,
		now:   time.Now,
		log:   logx.With("quota"),
	}
	if kv == nil {
		t.degraded = true
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Limit returns the daily ceiling.
func (t *Tracker) Limit() int {
	return t.limit
}

// Count returns today's generation count.
func (t *Tracker) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.syncLocked()
	return t.count
}

// Remaining returns how many generations are left today, never negative.
func (t *Tracker) Remaining() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.syncLocked()
	if r := t.limit - t.count; r > 0 {
		return r
	}
	return 0
}

// Exhausted reports whether the daily ceiling has been reached.
func (t *Tracker) Exhausted() bool {
	return t.Remaining() == 0
}

// Increment records one successful generation and persists the new count.
func (t *Tracker) Increment() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.syncLocked()
	t.count++
	t.persistLocked(store.KeyGenerationCount, strconv.Itoa(t.count))
}

// syncLocked loads state on first access and applies the date rollover.
func (t *Tracker) syncLocked() {
	today := t.now().Format(dateLayout)

	if !t.loaded {
		t.loaded = true
		t.load()
	}
	if t.dateKey == today {
		return
	}

	t.dateKey = today
	t.count = 0
	t.persistLocked(store.KeyGenerationDate, today)
	t.persistLocked(store.KeyGenerationCount, "0")
}

func (t *Tracker) load() {
	if t.degraded {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	date, err := t.kv.Get(ctx, store.KeyGenerationDate)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			t.degrade(err)
		}
		return
	}
	raw, err := t.kv.Get(ctx, store.KeyGenerationCount)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		t.degrade(err)
		return
	}
	count, convErr := strconv.Atoi(raw)
	if convErr != nil || count < 0 {
		count = 0
	}
	t.dateKey = date
	t.count = count
}

func (t *Tracker) persistLocked(key, value string) {
	if t.degraded {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := t.kv.Set(ctx, key, value); err != nil {
		t.degrade(err)
	}
}

func (t *Tracker) degrade(err error) {
	t.degraded = true
	t.log.Warn().Err(err).Msg("quota store unavailable, tracking in memory for this session")
}
