package generation

import (
	"context"
	"fmt"
	"strings"
)

// Provider is a backend that can produce both halves of a result.
type Provider interface {
	WordGenerator
	ImageGenerator
	Name() string
}

// Config selects and configures the provider.
type Config struct {
	Provider   string // gemini or openai
	WordModel  string
	ImageModel string
	GeminiKey  string
	OpenAIKey  string
}

// NewProvider creates the provider named by cfg.Provider. An empty name
// picks Gemini when its key is set and OpenAI otherwise.
func NewProvider(ctx context.Context, cfg Config) (Provider, error) {
	name := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if name == "" {
		name = "gemini"
		if cfg.GeminiKey == "" && cfg.OpenAIKey != "" {
			name = "openai"
		}
	}
	switch name {
	case "gemini":
		return NewGeminiProvider(ctx, cfg.GeminiKey, cfg.WordModel, cfg.ImageModel)
	case "openai":
		return NewOpenAIProvider(cfg.OpenAIKey, cfg.WordModel, cfg.ImageModel)
	default:
		return nil, fmt.Errorf("unknown generation provider: %s", cfg.Provider)
	}
}

// NewGuardedOrchestrator wraps p with breakers and image pacing and returns
// an orchestrator over it.
func NewGuardedOrchestrator(p Provider, quota Quota) *Orchestrator {
	words := GuardWords(p.Name()+"-word", p)
	images := GuardImages(p.Name()+"-image", p, DefaultImageRate())
	return NewOrchestrator(words, images, quota)
}
