package models

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/sashabaranov/go-openai"
	"google.golang.org/genai"
)

// Categories groups model IDs by what wurdle can use them for
type Categories struct {
	Word          []string
	Image         []string
	Speech        []string
	Transcription []string
}

// Categorize sorts model IDs into categories. IDs matching nothing are
// dropped.
func Categorize(ids []string) Categories {
	var c Categories
	for _, id := range ids {
		lower := strings.ToLower(strings.TrimPrefix(id, "models/"))
		switch {
		case strings.Contains(lower, "whisper") || strings.Contains(lower, "transcribe"):
			c.Transcription = append(c.Transcription, id)
		case strings.Contains(lower, "tts") || strings.Contains(lower, "audio"):
			c.Speech = append(c.Speech, id)
		case strings.Contains(lower, "dall-e") || strings.Contains(lower, "image") || strings.Contains(lower, "imagen"):
			c.Image = append(c.Image, id)
		case strings.Contains(lower, "gpt") || strings.Contains(lower, "gemini") || strings.Contains(lower, "chat"):
			c.Word = append(c.Word, id)
		}
	}
	sort.Strings(c.Word)
	sort.Strings(c.Image)
	sort.Strings(c.Speech)
	sort.Strings(c.Transcription)
	return c
}

// Lister handles listing the models available to the configured keys
type Lister struct {
	geminiKey string
	openAIKey string
}

// NewLister creates a new model lister
func NewLister(geminiKey, openAIKey string) *Lister {
	return &Lister{geminiKey: geminiKey, openAIKey: openAIKey}
}

// ListAvailableModels prints the models of every configured provider
func (l *Lister) ListAvailableModels(ctx context.Context, w io.Writer) error {
	if l.geminiKey == "" && l.openAIKey == "" {
		return fmt.Errorf("no API key found. Set GEMINI_API_KEY or OPENAI_API_KEY, or put them into a .env file")
	}

	if l.geminiKey != "" {
		ids, err := l.geminiModels(ctx)
		if err != nil {
			return err
		}
		printCategories(w, "Gemini", Categorize(ids))
	}
	if l.openAIKey != "" {
		ids, err := l.openAIModels(ctx)
		if err != nil {
			return err
		}
		printCategories(w, "OpenAI", Categorize(ids))
	}
	return nil
}

func (l *Lister) geminiModels(ctx context.Context) ([]string, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  l.geminiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("error creating Gemini client: %w", err)
	}
	var ids []string
	for m, err := range client.Models.All(ctx) {
		if err != nil {
			return nil, fmt.Errorf("failed to list Gemini models: %w", err)
		}
		ids = append(ids, m.Name)
	}
	return ids, nil
}

func (l *Lister) openAIModels(ctx context.Context) ([]string, error) {
	models, err := openai.NewClient(l.openAIKey).ListModels(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list OpenAI models: %w", err)
	}
	ids := make([]string, 0, len(models.Models))
	for _, m := range models.Models {
		ids = append(ids, m.ID)
	}
	return ids, nil
}

func printCategories(w io.Writer, provider string, c Categories) {
	fmt.Fprintf(w, "Available %s Models:\n", provider)
	for _, section := range []struct {
		title string
		ids   []string
	}{
		{"Word Models", c.Word},
		{"Image Models", c.Image},
		{"Speech Models", c.Speech},
		{"Transcription Models", c.Transcription},
	} {
		fmt.Fprintf(w, "\n%s:\n", section.title)
		if len(section.ids) == 0 {
			fmt.Fprintln(w, "  none")
			continue
		}
		for _, id := range section.ids {
			fmt.Fprintf(w, "  %s\n", id)
		}
	}
	fmt.Fprintln(w)
}
