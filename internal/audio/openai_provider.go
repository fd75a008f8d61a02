package audio

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/sashabaranov/go-openai"

	"codeberg.org/snonux/wurdle/internal/logx"
)

const instructedModel = "gpt-4o-mini-tts"

// OpenAIProvider speaks words through the OpenAI speech endpoint
type OpenAIProvider struct {
	client *openai.Client
	cfg    ProviderConfig
}

// NewOpenAIProvider creates an OpenAI TTS provider
func NewOpenAIProvider(cfg *ProviderConfig) (*OpenAIProvider, error) {
	if cfg == nil || cfg.OpenAIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	if cfg.CacheDir != "" {
		if err := os.MkdirAll(cfg.CacheDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create cache directory: %w", err)
		}
	}
	return &OpenAIProvider{client: openai.NewClient(cfg.OpenAIKey), cfg: *cfg}, nil
}

// GenerateAudio writes MP3 speech for word, from the cache when possible
func (p *OpenAIProvider) GenerateAudio(ctx context.Context, word string, outputFile string) error {
	if err := ValidateWord(word); err != nil {
		return err
	}

	cached := p.cachePath(word)
	if cached != "" {
		if _, err := os.Stat(cached); err == nil {
			return copyFile(cached, outputFile)
		}
	}

	req := p.request(word)
	logx.Debug().Str("model", string(req.Model)).Str("voice", string(req.Voice)).Str("input", req.Input).Msg("OpenAI TTS request")

	resp, err := p.client.CreateSpeech(ctx, req)
	if err != nil {
		if strings.Contains(err.Error(), "does not have access to model") && p.cfg.Model == instructedModel {
			return fmt.Errorf("OpenAI TTS API error: %w (try tts-1 instead)", err)
		}
		return fmt.Errorf("OpenAI TTS API error: %w", err)
	}
	defer resp.Close()

	if err := writeStream(outputFile, resp); err != nil {
		return err
	}
	if cached != "" {
		if err := copyFile(outputFile, cached); err != nil {
			logx.Debug().Err(err).Msg("failed to cache speech")
		}
	}
	return nil
}

// request builds the speech request for word
func (p *OpenAIProvider) request(word string) openai.CreateSpeechRequest {
	req := openai.CreateSpeechRequest{
		Model:          openai.SpeechModel(p.cfg.Model),
		Input:          speakable(word),
		Voice:          openai.SpeechVoice(p.cfg.Voice),
		Speed:          SpeechRate,
		ResponseFormat: openai.SpeechResponseFormatMp3,
	}
	if p.cfg.Model == instructedModel {
		req.Instructions = p.cfg.Instructions
	}
	return req
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return "openai-tts"
}

// IsAvailable checks that a key is configured. It makes no API call.
func (p *OpenAIProvider) IsAvailable() error {
	if p.cfg.OpenAIKey == "" {
		return fmt.Errorf("OpenAI API key not configured")
	}
	return nil
}

// speakable drops everything the TTS engine would read out loud instead of
// pronouncing, like the slashes around a pronunciation.
func speakable(word string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), unicode.IsSpace(r), r == '-', r == '\'':
			return r
		}
		return -1
	}, word)
	return strings.Join(strings.Fields(cleaned), " ")
}

// cachePath is unique per word and voice settings. Words are cached case
// insensitively.
func (p *OpenAIProvider) cachePath(word string) string {
	if p.cfg.CacheDir == "" {
		return ""
	}
	key := strings.Join([]string{strings.ToLower(speakable(word)), p.cfg.Model, p.cfg.Voice, p.request(word).Instructions}, "\x00")
	sum := sha256.Sum256([]byte(key))
	return filepath.Join(p.cfg.CacheDir, hex.EncodeToString(sum[:12])+".mp3")
}

// writeStream writes r to path through a temporary file, so a failed
// download never leaves a truncated file behind
func writeStream(path string, r io.Reader) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".speech-*")
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, r)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("failed to write audio file: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("no audio data received from OpenAI")
	}
	return os.Rename(tmp.Name(), path)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	return writeStream(dst, in)
}
