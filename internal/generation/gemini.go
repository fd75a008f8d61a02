package generation

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"codeberg.org/snonux/wurdle/internal/concept"
	"codeberg.org/snonux/wurdle/internal/errx"
)

const (
	DefaultGeminiWordModel  = "gemini-3-flash-preview"
	DefaultGeminiImageModel = "gemini-3.1-flash-image-preview"
)

// wordSchema constrains the Gemini word response to the four string fields.
var wordSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"word":          {Type: genai.TypeString, Description: "The made up word, lowercase."},
		"pronunciation": {Type: genai.TypeString, Description: "Phonetic spelling, e.g. /kɒntəmpleɪt/"},
		"definition":    {Type: genai.TypeString, Description: "A short, clear definition."},
		"discovery":     {Type: genai.TypeString, Description: "A short fictitious paragraph of where, when, and by whom this concept was discovered."},
	},
	Required: []string{"word", "pronunciation", "definition", "discovery"},
}

// GeminiProvider generates words and images through the Gemini API.
type GeminiProvider struct {
	client     *genai.Client
	wordModel  string
	imageModel string
}

// NewGeminiProvider creates a Gemini client for apiKey. Empty model names
// fall back to the defaults.
func NewGeminiProvider(ctx context.Context, apiKey, wordModel, imageModel string) (*GeminiProvider, error) {
	if apiKey == "" {
		return nil, errx.New(errx.AuthRequired, "gemini", fmt.Errorf("GEMINI_API_KEY is not set"))
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("error creating Gemini client: %w", err)
	}
	if wordModel == "" {
		wordModel = DefaultGeminiWordModel
	}
	if imageModel == "" {
		imageModel = DefaultGeminiImageModel
	}
	return &GeminiProvider{client: client, wordModel: wordModel, imageModel: imageModel}, nil
}

// Name returns the provider name.
func (p *GeminiProvider) Name() string {
	return "gemini"
}

// GenerateWord asks the word model for a JSON word description.
func (p *GeminiProvider) GenerateWord(ctx context.Context, conceptText string) (concept.WordData, error) {
	resp, err := p.client.Models.GenerateContent(ctx, p.wordModel, genai.Text(WordPrompt(conceptText)), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   wordSchema,
	})
	if err != nil {
		return concept.WordData{}, fmt.Errorf("gemini word request failed: %w", err)
	}
	return ParseWord(resp.Text()), nil
}

// GenerateImage asks the image model for a 3:4 sketch and returns the first
// inline image part as a data URI.
func (p *GeminiProvider) GenerateImage(ctx context.Context, conceptText string) (string, error) {
	resp, err := p.client.Models.GenerateContent(ctx, p.imageModel, genai.Text(ImagePrompt(conceptText)), &genai.GenerateContentConfig{
		ResponseModalities: []string{"IMAGE"},
		ImageConfig:        &genai.ImageConfig{AspectRatio: ImageAspectRatio},
	})
	if err != nil {
		return "", fmt.Errorf("gemini image request failed: %w", err)
	}
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				mime := part.InlineData.MIMEType
				if mime == "" {
					mime = "image/png"
				}
				return concept.EncodeDataURI(mime, part.InlineData.Data), nil
			}
		}
	}
	return "", errx.New(errx.ImageGenerationFailed, "gemini", fmt.Errorf("no image part in response"))
}

// Transcribe converts a WAV recording into text.
func (p *GeminiProvider) Transcribe(ctx context.Context, wav []byte) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText("Transcribe this speech recording verbatim. Reply with the transcript only."),
			genai.NewPartFromBytes(wav, "audio/wav"),
		}, genai.RoleUser),
	}
	resp, err := p.client.Models.GenerateContent(ctx, p.wordModel, contents, nil)
	if err != nil {
		return "", fmt.Errorf("gemini transcription failed: %w", err)
	}
	return strings.TrimSpace(resp.Text()), nil
}
