package scramble

import (
	"sync"
	"time"
)

// Scheduler runs f once after d. It abstracts time.AfterFunc so tests can
// fire ticks by hand.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Stopper
	Now() time.Time
}

// Stopper cancels a scheduled call.
type Stopper interface {
	Stop() bool
}

// RealScheduler uses the wall clock.
type RealScheduler struct{}

// AfterFunc implements Scheduler.
func (RealScheduler) AfterFunc(d time.Duration, f func()) Stopper {
	return time.AfterFunc(d, f)
}

// Now implements Scheduler.
func (RealScheduler) Now() time.Time {
	return time.Now()
}

// ManualScheduler queues calls until Fire is invoked. Its clock only moves
// when a call fires (by that call's delay) or on Advance.
type ManualScheduler struct {
	mu      sync.Mutex
	now     time.Time
	pending []*manualCall
}

type manualCall struct {
	delay   time.Duration
	f       func()
	stopped bool
}

func (c *manualCall) Stop() bool {
	was := !c.stopped
	c.stopped = true
	return was
}

// NewManualScheduler starts the manual clock at start.
func NewManualScheduler(start time.Time) *ManualScheduler {
	return &ManualScheduler{now: start}
}

// AfterFunc implements Scheduler.
func (s *ManualScheduler) AfterFunc(d time.Duration, f func()) Stopper {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := &manualCall{delay: d, f: f}
	s.pending = append(s.pending, c)
	return c
}

// Now implements Scheduler.
func (s *ManualScheduler) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// Advance moves the clock without firing anything.
func (s *ManualScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	s.now = s.now.Add(d)
	s.mu.Unlock()
}

// Pending returns the delays of queued, unstopped calls.
func (s *ManualScheduler) Pending() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []time.Duration
	for _, c := range s.pending {
		if !c.stopped {
			out = append(out, c.delay)
		}
	}
	return out
}

// Fire runs the oldest queued call, advancing the clock by its delay. It
// returns false when nothing is queued.
func (s *ManualScheduler) Fire() bool {
	s.mu.Lock()
	for len(s.pending) > 0 {
		c := s.pending[0]
		s.pending = s.pending[1:]
		if c.stopped {
			continue
		}
		s.now = s.now.Add(c.delay)
		s.mu.Unlock()
		c.f()
		return true
	}
	s.mu.Unlock()
	return false
}
