// Package scramble renders the concept text as a flickering, partially
// corrupted string while a generation is in flight.
package scramble

import (
	"math/rand"
	"sync"
	"time"
)

const (
	// Symbols replace characters with probability SymbolChance.
	Symbols = "!<>-_\\/[]{}—=+*^?#________"

	SymbolChance = 0.05
	// PhraseChance is cumulative: characters whose roll lands in
	// [SymbolChance, PhraseChance) come from the current status phrase.
	PhraseChance = 0.08

	// PhraseTicks is how many ticks each status phrase lasts.
	PhraseTicks = 60

	// Horizon is the time over which the tick interval backs off.
	Horizon = 20 * time.Second

	placeholder = "PROCESSING"
)

// Phrases cycle while the scramble runs.
var Phrases = []string{"SEARCHING...", "DISCOVERING...", "ANALYZING...", "SYNTHESIZING..."}

var symbolRunes = []rune(Symbols)

// Interval samples the delay before the next tick. Both bounds grow linearly
// with progress (clamped to [0, 1]).
func Interval(progress float64, rnd *rand.Rand) time.Duration {
	progress = min(max(progress, 0), 1)
	lower := 50 + progress*300
	upper := 90 + progress*410
	ms := lower + rnd.Float64()*(upper-lower)
	return time.Duration(ms * float64(time.Millisecond))
}

// Scramble corrupts text using phrase as the secondary character source.
func Scramble(text, phrase string, rnd *rand.Rand) string {
	if text == "" {
		text = placeholder
	}
	phraseRunes := []rune(phrase)
	src := []rune(text)
	out := make([]rune, len(src))
	for i, r := range src {
		roll := rnd.Float64()
		switch {
		case roll < SymbolChance:
			out[i] = symbolRunes[rnd.Intn(len(symbolRunes))]
		case roll < PhraseChance && len(phraseRunes) > 0:
			out[i] = phraseRunes[rnd.Intn(len(phraseRunes))]
		default:
			out[i] = r
		}
	}
	return string(out)
}

// Presenter starts scramble loops.
type Presenter struct {
	sched Scheduler

	rndMu sync.Mutex
	rnd   *rand.Rand

	// OnTick runs after every frame (typing sound, haptics).
	OnTick func()
}

// NewPresenter creates a presenter. Nil arguments select the wall clock and a
// time-seeded source.
func NewPresenter(sched Scheduler, rnd *rand.Rand) *Presenter {
	if sched == nil {
		sched = RealScheduler{}
	}
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Presenter{sched: sched, rnd: rnd}
}

// Handle stops a running scramble.
type Handle struct {
	mu      sync.Mutex
	stopped bool
	pending Stopper
	frame   int
	phrase  int
}

// Stop halts further ticks. It is safe to call more than once.
func (h *Handle) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.stopped {
		return
	}
	h.stopped = true
	if h.pending != nil {
		h.pending.Stop()
	}
}

// Frames returns how many frames were emitted.
func (h *Handle) Frames() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.frame
}

// Start emits the first frame immediately and keeps ticking until Stop.
// source is re-read on every tick so live edits show through.
func (p *Presenter) Start(source func() string, onFrame func(string)) *Handle {
	h := &Handle{}
	started := p.sched.Now()
	p.tick(h, started, source, onFrame)
	return h
}

func (p *Presenter) tick(h *Handle, started time.Time, source func() string, onFrame func(string)) {
	h.mu.Lock()
	if h.stopped {
		h.mu.Unlock()
		return
	}
	h.frame++
	if h.frame%PhraseTicks == 0 {
		h.phrase = (h.phrase + 1) % len(Phrases)
	}
	phrase := Phrases[h.phrase]
	h.mu.Unlock()

	text := source()
	progress := float64(p.sched.Now().Sub(started)) / float64(Horizon)
	p.rndMu.Lock()
	frame := Scramble(text, phrase, p.rnd)
	delay := Interval(progress, p.rnd)
	p.rndMu.Unlock()

	onFrame(frame)
	if p.OnTick != nil {
		p.OnTick()
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.stopped {
		return
	}
	h.pending = p.sched.AfterFunc(delay, func() {
		p.tick(h, started, source, onFrame)
	})
}

// Reveal fires count ticks spaced by gap, the short burst played when a
// result appears.
func Reveal(sched Scheduler, count int, gap time.Duration, onTick func()) {
	if sched == nil {
		sched = RealScheduler{}
	}
	var run func(i int)
	run = func(i int) {
		if i >= count {
			return
		}
		onTick()
		sched.AfterFunc(gap, func() { run(i + 1) })
	}
	run(0)
}
