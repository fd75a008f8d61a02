package models

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"
)

func TestCategorize(t *testing.T) {
	c := Categorize([]string{
		"gpt-4o-mini",
		"dall-e-3",
		"tts-1",
		"whisper-1",
		"models/gemini-3-flash-preview",
		"models/gemini-3.1-flash-image-preview",
		"text-embedding-3-small",
	})

	if strings.Join(c.Word, ",") != "gpt-4o-mini,models/gemini-3-flash-preview" {
		t.Errorf("Word = %v", c.Word)
	}
	if strings.Join(c.Image, ",") != "dall-e-3,models/gemini-3.1-flash-image-preview" {
		t.Errorf("Image = %v", c.Image)
	}
	if len(c.Speech) != 1 || c.Speech[0] != "tts-1" {
		t.Errorf("Speech = %v", c.Speech)
	}
	if len(c.Transcription) != 1 || c.Transcription[0] != "whisper-1" {
		t.Errorf("Transcription = %v", c.Transcription)
	}
}

func TestListAvailableModels_NoAPIKey(t *testing.T) {
	lister := NewLister("", "")

	err := lister.ListAvailableModels(context.Background(), &bytes.Buffer{})
	if err == nil {
		t.Fatal("Expected error for missing API keys")
	}
	if !strings.Contains(err.Error(), "GEMINI_API_KEY") {
		t.Errorf("Unexpected error: %v", err)
	}
}

func TestPrintCategories(t *testing.T) {
	var buf bytes.Buffer
	printCategories(&buf, "OpenAI", Categories{Word: []string{"gpt-4o-mini"}})
	out := buf.String()
	if !strings.Contains(out, "Available OpenAI Models:") || !strings.Contains(out, "  gpt-4o-mini") {
		t.Errorf("output = %q", out)
	}
	if strings.Count(out, "  none") != 3 {
		t.Errorf("empty sections not marked: %q", out)
	}
}

func TestListAvailableModels_Integration(t *testing.T) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		t.Skip("Skipping integration test: OPENAI_API_KEY not set")
	}

	var buf bytes.Buffer
	if err := NewLister("", apiKey).ListAvailableModels(context.Background(), &buf); err != nil {
		t.Errorf("ListAvailableModels failed: %v", err)
	}
}
