package scramble

import (
	"math/rand"
	"strings"
	"testing"
	"time"
)

func TestIntervalBounds(t *testing.T) {
	rnd := rand.New(rand.NewSource(7))
	tests := []struct {
		progress   float64
		lower, upp time.Duration
	}{
		{0, 50 * time.Millisecond, 90 * time.Millisecond},
		{0.5, 200 * time.Millisecond, 295 * time.Millisecond},
		{1, 350 * time.Millisecond, 500 * time.Millisecond},
		{3, 350 * time.Millisecond, 500 * time.Millisecond},
		{-1, 50 * time.Millisecond, 90 * time.Millisecond},
	}
	for _, tt := range tests {
		for range 200 {
			d := Interval(tt.progress, rnd)
			if d < tt.lower || d > tt.upp {
				t.Fatalf("Interval(%v) = %v, want within [%v, %v]", tt.progress, d, tt.lower, tt.upp)
			}
		}
	}
}

func TestScrambleKeepsLength(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	text := "a toaster that judges you"
	changed := 0
	for range 100 {
		out := Scramble(text, Phrases[0], rnd)
		if len([]rune(out)) != len([]rune(text)) {
			t.Fatalf("length changed: %q", out)
		}
		if out != text {
			changed++
		}
	}
	if changed == 0 {
		t.Error("expected at least some frames to be corrupted")
	}
}

func TestScrambleReplacementAlphabet(t *testing.T) {
	rnd := rand.New(rand.NewSource(3))
	text := strings.Repeat("z", 5000)
	out := []rune(Scramble(text, "AB", rnd))
	symbols, phrase := 0, 0
	for _, r := range out {
		switch {
		case r == 'z':
		case r == 'A' || r == 'B':
			phrase++
		case strings.ContainsRune(Symbols, r):
			symbols++
		default:
			t.Fatalf("unexpected rune %q", r)
		}
	}
	// Expected about 5% symbols and 3% phrase characters.
	if symbols < 150 || symbols > 400 {
		t.Errorf("symbol replacements = %d, expected around 250", symbols)
	}
	if phrase < 70 || phrase > 250 {
		t.Errorf("phrase replacements = %d, expected around 150", phrase)
	}
}

func TestScrambleEmptySource(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	if got := Scramble("", "X", rnd); len([]rune(got)) != len(placeholder) {
		t.Errorf("empty source should render the placeholder, got %q", got)
	}
}

func TestPresenterReadsLiveSource(t *testing.T) {
	sched := NewManualScheduler(time.Unix(0, 0))
	p := NewPresenter(sched, rand.New(rand.NewSource(1)))

	source := "aaaa"
	var frames []string
	ticks := 0
	p.OnTick = func() { ticks++ }
	h := p.Start(func() string { return source }, func(s string) { frames = append(frames, s) })

	if len(frames) != 1 {
		t.Fatalf("expected first frame immediately, got %d", len(frames))
	}
	source = "bbbbbbbb"
	sched.Fire()
	if got := frames[len(frames)-1]; len(got) < 8 {
		t.Errorf("frame %q should reflect the updated source", got)
	}
	if ticks != 2 || h.Frames() != 2 {
		t.Errorf("ticks = %d frames = %d, want 2", ticks, h.Frames())
	}
}

func TestPresenterStopIsIdempotent(t *testing.T) {
	sched := NewManualScheduler(time.Unix(0, 0))
	p := NewPresenter(sched, rand.New(rand.NewSource(1)))
	count := 0
	h := p.Start(func() string { return "abc" }, func(string) { count++ })
	sched.Fire()

	h.Stop()
	h.Stop()
	if sched.Fire() {
		t.Error("no tick should fire after Stop")
	}
	if count != 2 {
		t.Errorf("frames = %d, want 2", count)
	}
}

func TestPresenterBacksOff(t *testing.T) {
	sched := NewManualScheduler(time.Unix(0, 0))
	p := NewPresenter(sched, rand.New(rand.NewSource(1)))
	h := p.Start(func() string { return "abc" }, func(string) {})
	defer h.Stop()

	first := sched.Pending()[0]
	if first > 90*time.Millisecond {
		t.Errorf("first delay %v should be at most 90ms", first)
	}
	sched.Advance(Horizon)
	sched.Fire()
	late := sched.Pending()[0]
	if late < 350*time.Millisecond {
		t.Errorf("delay after the horizon %v should be at least 350ms", late)
	}
}

func TestPhraseAdvancesEvery60Ticks(t *testing.T) {
	sched := NewManualScheduler(time.Unix(0, 0))
	p := NewPresenter(sched, rand.New(rand.NewSource(1)))
	h := p.Start(func() string { return "abc" }, func(string) {})
	defer h.Stop()

	for h.Frames() < PhraseTicks-1 {
		sched.Fire()
	}
	h.mu.Lock()
	if h.phrase != 0 {
		t.Errorf("phrase advanced early: %d", h.phrase)
	}
	h.mu.Unlock()

	sched.Fire()
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.phrase != 1 {
		t.Errorf("phrase = %d after %d ticks, want 1", h.phrase, h.frame)
	}
}

func TestReveal(t *testing.T) {
	sched := NewManualScheduler(time.Unix(0, 0))
	n := 0
	Reveal(sched, 6, 35*time.Millisecond, func() { n++ })
	for sched.Fire() {
	}
	if n != 6 {
		t.Errorf("Reveal ticks = %d, want 6", n)
	}
}
