package audio

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"codeberg.org/snonux/wurdle/internal/logx"
)

// Player plays an audio file and blocks until it finishes.
type Player interface {
	Play(ctx context.Context, file string) error
}

// CommandPlayer plays audio through the first system player found
type CommandPlayer struct {
	lookPath func(string) (string, error)
}

// NewCommandPlayer creates a player using platform-specific commands
func NewCommandPlayer() *CommandPlayer {
	return &CommandPlayer{lookPath: exec.LookPath}
}

func (p *CommandPlayer) command(ctx context.Context, file string) (*exec.Cmd, error) {
	switch runtime.GOOS {
	case "darwin":
		return exec.CommandContext(ctx, "afplay", file), nil
	case "linux":
		// mpg123 first since it handles MP3 files best
		if _, err := p.lookPath("mpg123"); err == nil && strings.HasSuffix(file, ".mp3") {
			return exec.CommandContext(ctx, "mpg123", "-q", file), nil
		} else if _, err := p.lookPath("ffplay"); err == nil {
			return exec.CommandContext(ctx, "ffplay", "-nodisp", "-autoexit", "-loglevel", "quiet", file), nil
		} else if _, err := p.lookPath("play"); err == nil {
			return exec.CommandContext(ctx, "play", "-q", file), nil
		} else if _, err := p.lookPath("paplay"); err == nil {
			return exec.CommandContext(ctx, "paplay", file), nil
		} else if _, err := p.lookPath("aplay"); err == nil {
			return exec.CommandContext(ctx, "aplay", "-q", file), nil
		}
		return nil, fmt.Errorf("no audio player found. Install mpg123, ffplay, sox, paplay, or aplay")
	case "windows":
		return exec.CommandContext(ctx, "cmd", "/c", "start", "/min", file), nil
	default:
		return nil, fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
}

// Play runs the player until the file finished or ctx is cancelled
func (p *CommandPlayer) Play(ctx context.Context, file string) error {
	cmd, err := p.command(ctx, file)
	if err != nil {
		return err
	}
	if err := cmd.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("%s failed: %w", cmd.Path, err)
	}
	return nil
}

// Speaker speaks headline words. Speech files are kept per word for the
// lifetime of the speaker so repeated presses replay instantly.
type Speaker struct {
	provider Provider
	player   Player
	dir      string
	ext      string

	mu     sync.Mutex
	cancel context.CancelFunc
}

// NewSpeaker creates a speaker writing speech files into dir. ext is the
// file extension the provider produces (".mp3" or ".wav").
func NewSpeaker(provider Provider, player Player, dir, ext string) *Speaker {
	if ext == "" {
		ext = ".mp3"
	}
	return &Speaker{provider: provider, player: player, dir: dir, ext: ext}
}

// Speak synthesises word if needed and plays it. A new call stops the
// previous playback.
func (s *Speaker) Speak(ctx context.Context, word string) error {
	if err := ValidateWord(word); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.cancel = cancel
	s.mu.Unlock()
	defer cancel()

	file := s.FileFor(word)
	if _, err := os.Stat(file); err != nil {
		if err := s.provider.GenerateAudio(ctx, word, file); err != nil {
			return fmt.Errorf("failed to synthesise %q: %w", word, err)
		}
	}
	logx.Debug().Str("word", word).Str("provider", s.provider.Name()).Msg("speaking word")
	return s.player.Play(ctx, file)
}

// Stop interrupts playback
func (s *Speaker) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// FileFor returns the speech file path for word
func (s *Speaker) FileFor(word string) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(word))))
	return filepath.Join(s.dir, "speech_"+hex.EncodeToString(sum[:])[:12]+s.ext)
}
