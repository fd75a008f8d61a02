// Package dictation records speech from a microphone, transcribes it while
// the user talks and publishes a three-band level meter. Callers own the
// text box: the session only reports transcripts, which are combined with
// the text present at start via Compose.
package dictation

import (
	"context"
	"encoding/binary"
	"io"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"codeberg.org/snonux/wurdle/internal/errx"
	"codeberg.org/snonux/wurdle/internal/logx"
)

const (
	// SampleRate of the PCM stream, mono signed 16-bit little endian.
	SampleRate = 16000
	// LevelRate is how many level readings are published per second.
	LevelRate = 30
	// SilenceTimeout ends a session once speech was heard and then stopped.
	SilenceTimeout = 2 * time.Second
	// PartialInterval is the audio duration between interim transcriptions.
	PartialInterval = 1500 * time.Millisecond
	// VoiceThreshold is the normalised RMS above which a frame counts as speech.
	VoiceThreshold = 0.02

	frameSamples = SampleRate / LevelRate
)

// State of a Session.
type State int

const (
	Idle State = iota
	Listening
)

func (s State) String() string {
	if s == Listening {
		return "listening"
	}
	return "idle"
}

// Transcriber turns a WAV recording into text.
type Transcriber interface {
	Name() string
	Transcribe(ctx context.Context, wav []byte) (string, error)
}

// Candidate is a transcriber with an optional availability check.
type Candidate struct {
	Transcriber Transcriber
	Available   func() error
}

// Select returns the first candidate that is set and available, or nil when
// dictation is not possible.
func Select(cands ...Candidate) Transcriber {
	for _, c := range cands {
		if c.Transcriber == nil {
			continue
		}
		if c.Available != nil {
			if err := c.Available(); err != nil {
				logx.Debug().Err(err).Str("transcriber", c.Transcriber.Name()).Msg("transcriber unavailable")
				continue
			}
		}
		return c.Transcriber
	}
	return nil
}

// Compose appends a live transcript to the text present when dictation
// started.
func Compose(base, live string) string {
	base = strings.TrimRight(base, " ")
	live = strings.TrimSpace(live)
	switch {
	case live == "":
		return base
	case base == "":
		return live
	default:
		return base + " " + live
	}
}

// Callbacks receive session events. They run on the session's goroutine.
type Callbacks struct {
	OnPartial func(text string)
	OnError   func(kind errx.Kind)
	OnEnd     func()
}

// Session is one microphone plus one transcriber. Only one recording runs at
// a time.
type Session struct {
	mic Microphone
	tr  Transcriber
	log zerolog.Logger

	// OnLevels receives three normalised band levels per level tick.
	OnLevels func(levels []float64)

	mu     sync.Mutex
	state  State
	cancel context.CancelFunc
}

// NewSession creates an idle session.
func NewSession(mic Microphone, tr Transcriber) *Session {
	return &Session{mic: mic, tr: tr, log: logx.With("dictation")}
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Start opens the microphone and begins listening. A microphone failure is
// reported through OnError as PermissionDenied and returned; the session
// stays idle and OnEnd is not called. Once listening, OnEnd fires exactly
// once.
func (s *Session) Start(cb Callbacks) error {
	s.mu.Lock()
	if s.state == Listening {
		s.mu.Unlock()
		return errx.New(errx.Busy, "dictation", nil)
	}
	ctx, cancel := context.WithCancel(context.Background())
	rc, err := s.mic.Open(ctx)
	if err != nil {
		cancel()
		s.mu.Unlock()
		s.log.Warn().Err(err).Msg("microphone unavailable")
		if cb.OnError != nil {
			cb.OnError(errx.PermissionDenied)
		}
		return errx.New(errx.PermissionDenied, "dictation", err)
	}
	s.state = Listening
	s.cancel = cancel
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		rc.Close()
	}()
	go s.run(ctx, cancel, rc, cb)
	return nil
}

// Stop ends the recording. The final transcript and OnEnd follow
// asynchronously.
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
}

type recording struct {
	mu       sync.Mutex
	final    bool
	inFlight bool
}

func (s *Session) run(ctx context.Context, cancel context.CancelFunc, rc io.Reader, cb Callbacks) {
	defer s.finish(cb)
	defer cancel()

	rec := &recording{}
	var (
		pcm       []int16
		heard     bool
		silent    int
		sinceLast int
	)
	buf := make([]byte, frameSamples*2)
	silenceSamples := int(SilenceTimeout.Seconds() * SampleRate)
	partialSamples := int(PartialInterval.Seconds() * SampleRate)

	for {
		n, err := io.ReadFull(rc, buf)
		if n > 0 {
			frame := decodePCM(buf[:n-n%2])
			pcm = append(pcm, frame...)

			if s.OnLevels != nil {
				levels := Levels(frame, SampleRate)
				s.OnLevels(levels[:])
			}
			if RMS(frame) >= VoiceThreshold {
				heard = true
				silent = 0
			} else if heard {
				silent += len(frame)
			}
			if heard && silent >= silenceSamples {
				s.log.Debug().Msg("silence detected")
				break
			}
			sinceLast += len(frame)
			if heard && sinceLast >= partialSamples {
				sinceLast = 0
				s.partial(ctx, rec, pcm, cb)
			}
		}
		if err != nil {
			break
		}
	}
	cancel()

	rec.mu.Lock()
	rec.final = true
	rec.mu.Unlock()

	if !heard {
		return
	}
	tctx, tcancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer tcancel()
	text, err := s.tr.Transcribe(tctx, EncodeWAV(pcm, SampleRate))
	if err != nil {
		s.log.Error().Err(err).Str("transcriber", s.tr.Name()).Msg("transcription failed")
		if cb.OnError != nil {
			cb.OnError(errx.UpstreamError)
		}
		return
	}
	if text != "" && cb.OnPartial != nil {
		cb.OnPartial(text)
	}
}

// partial transcribes a snapshot in the background unless one is already
// running. Results arriving after the final transcription are dropped.
func (s *Session) partial(ctx context.Context, rec *recording, pcm []int16, cb Callbacks) {
	rec.mu.Lock()
	if rec.inFlight {
		rec.mu.Unlock()
		return
	}
	rec.inFlight = true
	rec.mu.Unlock()

	wav := EncodeWAV(pcm, SampleRate)
	go func() {
		text, err := s.tr.Transcribe(ctx, wav)
		rec.mu.Lock()
		defer rec.mu.Unlock()
		rec.inFlight = false
		if err != nil || rec.final || text == "" {
			return
		}
		if cb.OnPartial != nil {
			cb.OnPartial(text)
		}
	}()
}

func (s *Session) finish(cb Callbacks) {
	s.mu.Lock()
	s.state = Idle
	s.cancel = nil
	s.mu.Unlock()
	s.log.Debug().Msg("dictation ended")
	if cb.OnEnd != nil {
		cb.OnEnd()
	}
}

func decodePCM(b []byte) []int16 {
	out := make([]int16, len(b)/2)
	for i := range out {
		out[i] = int16(binary.LittleEndian.Uint16(b[2*i:]))
	}
	return out
}

// RMS returns the root mean square of samples normalised to 0..1.
func RMS(samples []int16) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, v := range samples {
		f := float64(v) / math.MaxInt16
		sum += f * f
	}
	return math.Sqrt(sum / float64(len(samples)))
}

// EncodeWAV wraps mono 16-bit PCM in a RIFF/WAVE container.
func EncodeWAV(pcm []int16, rate int) []byte {
	dataLen := len(pcm) * 2
	b := make([]byte, 44+dataLen)
	copy(b[0:], "RIFF")
	binary.LittleEndian.PutUint32(b[4:], uint32(36+dataLen))
	copy(b[8:], "WAVE")
	copy(b[12:], "fmt ")
	binary.LittleEndian.PutUint32(b[16:], 16)
	binary.LittleEndian.PutUint16(b[20:], 1) // PCM
	binary.LittleEndian.PutUint16(b[22:], 1) // mono
	binary.LittleEndian.PutUint32(b[24:], uint32(rate))
	binary.LittleEndian.PutUint32(b[28:], uint32(rate*2))
	binary.LittleEndian.PutUint16(b[32:], 2)
	binary.LittleEndian.PutUint16(b[34:], 16)
	copy(b[36:], "data")
	binary.LittleEndian.PutUint32(b[40:], uint32(dataLen))
	for i, v := range pcm {
		binary.LittleEndian.PutUint16(b[44+2*i:], uint16(v))
	}
	return b
}
