package dictation

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"io"
	"math"
	"sync"
	"testing"
	"time"

	"codeberg.org/snonux/wurdle/internal/errx"
	"codeberg.org/snonux/wurdle/internal/testutil"
)

// tone renders d of a sine wave at freq Hz and amplitude amp (0..1).
func tone(freq, amp float64, d time.Duration) []int16 {
	n := int(d.Seconds() * SampleRate)
	out := make([]int16, n)
	for i := range out {
		out[i] = int16(amp * math.MaxInt16 * math.Sin(2*math.Pi*freq*float64(i)/SampleRate))
	}
	return out
}

func silence(d time.Duration) []int16 {
	return make([]int16, int(d.Seconds()*SampleRate))
}

func pcmBytes(samples ...[]int16) []byte {
	var buf bytes.Buffer
	for _, s := range samples {
		binary.Write(&buf, binary.LittleEndian, s)
	}
	return buf.Bytes()
}

type fakeMic struct {
	data []byte
	pipe *io.PipeReader
	err  error
}

func (m *fakeMic) Open(ctx context.Context) (io.ReadCloser, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.pipe != nil {
		return m.pipe, nil
	}
	return io.NopCloser(bytes.NewReader(m.data)), nil
}

type events struct {
	mu       sync.Mutex
	partials []string
	errs     []errx.Kind
	ends     int
	done     chan struct{}
}

func newEvents() *events {
	return &events{done: make(chan struct{})}
}

func (e *events) callbacks() Callbacks {
	return Callbacks{
		OnPartial: func(s string) {
			e.mu.Lock()
			defer e.mu.Unlock()
			e.partials = append(e.partials, s)
		},
		OnError: func(k errx.Kind) {
			e.mu.Lock()
			defer e.mu.Unlock()
			e.errs = append(e.errs, k)
		},
		OnEnd: func() {
			e.mu.Lock()
			e.ends++
			e.mu.Unlock()
			close(e.done)
		},
	}
}

func (e *events) wait(t *testing.T) {
	t.Helper()
	select {
	case <-e.done:
	case <-time.After(5 * time.Second):
		t.Fatal("session did not end")
	}
}

func TestSessionEndsAfterSilence(t *testing.T) {
	mic := &fakeMic{data: pcmBytes(
		tone(200, 0.5, 500*time.Millisecond),
		silence(3*time.Second),
	)}
	tr := &testutil.MockTranscriber{Texts: []string{"a toaster that judges you"}}
	s := NewSession(mic, tr)

	ev := newEvents()
	if err := s.Start(ev.callbacks()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	ev.wait(t)

	if s.State() != Idle {
		t.Errorf("state = %v, want idle", s.State())
	}
	ev.mu.Lock()
	defer ev.mu.Unlock()
	if ev.ends != 1 {
		t.Errorf("OnEnd fired %d times", ev.ends)
	}
	if n := len(ev.partials); n == 0 || ev.partials[n-1] != "a toaster that judges you" {
		t.Errorf("partials = %v", ev.partials)
	}
}

func TestSessionWithoutSpeechSkipsTranscription(t *testing.T) {
	mic := &fakeMic{data: pcmBytes(silence(time.Second))}
	tr := &testutil.MockTranscriber{Texts: []string{"unused"}}
	s := NewSession(mic, tr)

	ev := newEvents()
	if err := s.Start(ev.callbacks()); err != nil {
		t.Fatal(err)
	}
	ev.wait(t)
	if tr.Calls() != 0 {
		t.Errorf("transcriber called %d times for silence", tr.Calls())
	}
}

func TestSessionStop(t *testing.T) {
	pr, pw := io.Pipe()
	tr := &testutil.MockTranscriber{Texts: []string{"hello"}}
	s := NewSession(&fakeMic{pipe: pr}, tr)

	ev := newEvents()
	if err := s.Start(ev.callbacks()); err != nil {
		t.Fatal(err)
	}
	if s.State() != Listening {
		t.Fatalf("state = %v, want listening", s.State())
	}
	if err := s.Start(Callbacks{}); !errors.Is(err, errx.Busy) {
		t.Errorf("second Start error = %v, want Busy", err)
	}

	go pw.Write(pcmBytes(tone(300, 0.5, 200*time.Millisecond)))
	time.Sleep(50 * time.Millisecond)
	s.Stop()
	s.Stop()
	ev.wait(t)

	if s.State() != Idle {
		t.Errorf("state = %v after Stop", s.State())
	}
	ev.mu.Lock()
	defer ev.mu.Unlock()
	if ev.ends != 1 {
		t.Errorf("OnEnd fired %d times", ev.ends)
	}
}

func TestSessionMicrophoneDenied(t *testing.T) {
	s := NewSession(&fakeMic{err: errors.New("no device")}, &testutil.MockTranscriber{})
	ev := newEvents()

	err := s.Start(ev.callbacks())
	if !errors.Is(err, errx.PermissionDenied) {
		t.Errorf("Start() error = %v, want PermissionDenied", err)
	}
	if s.State() != Idle {
		t.Error("session must stay idle when the microphone fails")
	}
	if len(ev.errs) != 1 || ev.errs[0] != errx.PermissionDenied {
		t.Errorf("errors = %v", ev.errs)
	}
	if ev.ends != 0 {
		t.Error("OnEnd must not fire when the session never started")
	}
}

func TestSessionTranscriptionFailure(t *testing.T) {
	mic := &fakeMic{data: pcmBytes(tone(200, 0.5, 300*time.Millisecond))}
	s := NewSession(mic, &testutil.MockTranscriber{Err: errors.New("quota")})
	ev := newEvents()
	if err := s.Start(ev.callbacks()); err != nil {
		t.Fatal(err)
	}
	ev.wait(t)

	ev.mu.Lock()
	defer ev.mu.Unlock()
	if len(ev.errs) != 1 || ev.errs[0] != errx.UpstreamError {
		t.Errorf("errors = %v, want one UpstreamError", ev.errs)
	}
}

func TestSessionPublishesLevels(t *testing.T) {
	mic := &fakeMic{data: pcmBytes(tone(200, 0.5, time.Second))}
	s := NewSession(mic, &testutil.MockTranscriber{Texts: []string{"x"}})
	var mu sync.Mutex
	ticks := 0
	s.OnLevels = func(levels []float64) {
		mu.Lock()
		defer mu.Unlock()
		if len(levels) != 3 {
			t.Errorf("got %d bands", len(levels))
		}
		ticks++
	}
	ev := newEvents()
	if err := s.Start(ev.callbacks()); err != nil {
		t.Fatal(err)
	}
	ev.wait(t)

	mu.Lock()
	defer mu.Unlock()
	if ticks < LevelRate-1 || ticks > LevelRate+1 {
		t.Errorf("level ticks for one second = %d, want about %d", ticks, LevelRate)
	}
}

func TestLevels(t *testing.T) {
	n := time.Second / LevelRate
	tests := []struct {
		name string
		in   []int16
		loud int
	}{
		{"low", tone(200, 0.5, n), 0},
		{"mid", tone(1200, 0.5, n), 1},
		{"high", tone(4000, 0.5, n), 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lv := Levels(tt.in, SampleRate)
			for i, v := range lv {
				if v < 0 || v > 1 {
					t.Errorf("band %d level %v out of range", i, v)
				}
				if i != tt.loud && v >= lv[tt.loud] {
					t.Errorf("band %d (%v) should be quieter than band %d (%v)", i, v, tt.loud, lv[tt.loud])
				}
			}
		})
	}

	if lv := Levels(silence(n), SampleRate); lv != [3]float64{} {
		t.Errorf("silence levels = %v", lv)
	}
}

func TestCompose(t *testing.T) {
	tests := []struct {
		base, live, want string
	}{
		{"", "hello world", "hello world"},
		{"a toaster", "that judges you", "a toaster that judges you"},
		{"a toaster ", "that judges", "a toaster that judges"},
		{"unchanged", "", "unchanged"},
	}
	for _, tt := range tests {
		if got := Compose(tt.base, tt.live); got != tt.want {
			t.Errorf("Compose(%q, %q) = %q, want %q", tt.base, tt.live, got, tt.want)
		}
	}
}

func TestSelect(t *testing.T) {
	gemini := &testutil.MockTranscriber{}
	whisper := &testutil.MockTranscriber{}

	got := Select(
		Candidate{Transcriber: gemini, Available: func() error { return errors.New("no key") }},
		Candidate{Transcriber: nil},
		Candidate{Transcriber: whisper},
	)
	if got != whisper {
		t.Error("Select should skip unavailable candidates")
	}
	if Select() != nil {
		t.Error("Select with no candidates should disable dictation")
	}
}

func TestEncodeWAVHeader(t *testing.T) {
	wav := EncodeWAV([]int16{1, -1, 2}, SampleRate)
	if len(wav) != 44+6 {
		t.Fatalf("len = %d", len(wav))
	}
	if string(wav[0:4]) != "RIFF" || string(wav[8:12]) != "WAVE" || string(wav[36:40]) != "data" {
		t.Error("bad RIFF header")
	}
	if got := binary.LittleEndian.Uint32(wav[24:]); got != SampleRate {
		t.Errorf("sample rate = %d", got)
	}
}
