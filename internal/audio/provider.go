package audio

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"codeberg.org/snonux/wurdle/internal/logx"
)

// Provider synthesises the spoken form of a single word into a file
type Provider interface {
	GenerateAudio(ctx context.Context, word string, outputFile string) error
	Name() string
	// IsAvailable reports whether the provider can be used at all, without
	// synthesising anything.
	IsAvailable() error
}

// SpeechRate is how fast headline words are spoken, relative to normal.
const SpeechRate = 0.9

// ProviderConfig selects and configures a speech provider
type ProviderConfig struct {
	Provider  string // "openai" or "espeak"
	OpenAIKey string
	Model     string // "tts-1", "tts-1-hd" or "gpt-4o-mini-tts"
	Voice     string
	// Instructions steer gpt-4o-mini-tts and are ignored by older models
	Instructions string
	// CacheDir keeps synthesised words across runs. Empty disables caching.
	CacheDir string
}

// DefaultProviderConfig returns the OpenAI lecturer voice
func DefaultProviderConfig() *ProviderConfig {
	return &ProviderConfig{
		Provider:     "openai",
		Model:        "gpt-4o-mini-tts",
		Voice:        "alloy",
		Instructions: "Pronounce this made-up scientific term like a lecturer introducing it for the first time: clear, confident and slightly slow.",
	}
}

// NewProvider creates the provider named by cfg.Provider
func NewProvider(cfg *ProviderConfig) (Provider, error) {
	if cfg == nil {
		cfg = DefaultProviderConfig()
	}

	switch cfg.Provider {
	case "openai":
		p, err := NewOpenAIProvider(cfg)
		if err != nil {
			return nil, err
		}
		return p, nil
	case "espeak":
		return NewESpeakProvider(nil)
	default:
		return nil, fmt.Errorf("unknown audio provider: %s", cfg.Provider)
	}
}

// Chain speaks through the first of its providers that succeeds.
// Unavailable providers are skipped.
type Chain struct {
	providers []Provider
}

// NewChain creates a chain trying providers in order
func NewChain(providers ...Provider) *Chain {
	return &Chain{providers: providers}
}

// GenerateAudio implements Provider
func (c *Chain) GenerateAudio(ctx context.Context, word string, outputFile string) error {
	var errs []error
	for _, p := range c.providers {
		if err := p.IsAvailable(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
			continue
		}
		err := p.GenerateAudio(ctx, word, outputFile)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		logx.Warn().Err(err).Str("provider", p.Name()).Msg("speech provider failed, trying next")
		errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
	}
	if len(errs) == 0 {
		return fmt.Errorf("no speech provider configured")
	}
	return errors.Join(errs...)
}

// Name lists the providers in order
func (c *Chain) Name() string {
	names := make([]string, len(c.providers))
	for i, p := range c.providers {
		names[i] = p.Name()
	}
	return strings.Join(names, " > ")
}

// IsAvailable succeeds if any provider is available
func (c *Chain) IsAvailable() error {
	var errs []error
	for _, p := range c.providers {
		err := p.IsAvailable()
		if err == nil {
			return nil
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return fmt.Errorf("no speech provider configured")
	}
	return errors.Join(errs...)
}
