package audio

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// ESpeakConfig tunes the espeak-ng voice
type ESpeakConfig struct {
	Voice     string // e.g. "en-us" or "en-gb+m3"
	Speed     int    // words per minute
	Pitch     int    // 0..99
	Amplitude int    // 0..200
}

// DefaultConfig is a US English voice slowed to SpeechRate
func DefaultConfig() *ESpeakConfig {
	rate := float64(SpeechRate)
	return &ESpeakConfig{Voice: "en-us", Speed: int(175 * rate), Pitch: 50, Amplitude: 100}
}

// ESpeakProvider speaks offline through the espeak-ng binary. MP3 output
// additionally needs ffmpeg.
type ESpeakProvider struct {
	config   *ESpeakConfig
	lookPath func(string) (string, error)
}

func NewESpeakProvider(config *ESpeakConfig) (Provider, error) {
	if config == nil {
		config = DefaultConfig()
	}
	return &ESpeakProvider{config: config, lookPath: exec.LookPath}, nil
}

// GenerateAudio writes WAV, or MP3 when outputFile ends in .mp3
func (p *ESpeakProvider) GenerateAudio(ctx context.Context, word string, outputFile string) error {
	if err := ValidateWord(word); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(outputFile), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if !strings.EqualFold(filepath.Ext(outputFile), ".mp3") {
		return run(exec.CommandContext(ctx, "espeak-ng", p.args(word, "-w", outputFile)...))
	}

	if _, err := p.lookPath("ffmpeg"); err != nil {
		return fmt.Errorf("ffmpeg is needed for MP3 speech: %w", err)
	}
	var wav bytes.Buffer
	speak := exec.CommandContext(ctx, "espeak-ng", p.args(word, "--stdout")...)
	speak.Stdout = &wav
	if err := run(speak); err != nil {
		return err
	}
	encode := exec.CommandContext(ctx, "ffmpeg", "-loglevel", "error", "-f", "wav", "-i", "pipe:0", "-acodec", "mp3", "-y", outputFile)
	encode.Stdin = &wav
	return run(encode)
}

// args builds the espeak-ng command line; output selects -w <file> or --stdout
func (p *ESpeakProvider) args(word string, output ...string) []string {
	args := []string{
		"-v", p.config.Voice,
		"-s", strconv.Itoa(p.config.Speed),
		"-p", strconv.Itoa(p.config.Pitch),
		"-a", strconv.Itoa(p.config.Amplitude),
	}
	args = append(args, output...)
	return append(args, strings.TrimSpace(word))
}

// run executes cmd and folds its stderr into the error
func run(cmd *exec.Cmd) error {
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %w: %s", filepath.Base(cmd.Path), err, strings.TrimSpace(stderr.String()))
	}
	return nil
}

func (p *ESpeakProvider) Name() string {
	return "espeak-ng"
}

// IsAvailable checks that espeak-ng is on the PATH
func (p *ESpeakProvider) IsAvailable() error {
	if _, err := p.lookPath("espeak-ng"); err != nil {
		return fmt.Errorf("espeak-ng is not installed: %w", err)
	}
	return nil
}
