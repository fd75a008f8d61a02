package generation

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"codeberg.org/snonux/wurdle/internal/concept"
	"codeberg.org/snonux/wurdle/internal/errx"
)

const (
	DefaultOpenAIWordModel  = openai.GPT4oMini
	DefaultOpenAIImageModel = openai.CreateImageModelDallE3
)

// OpenAIProvider generates words with chat completions in JSON mode and
// images with the images endpoint.
type OpenAIProvider struct {
	client     *openai.Client
	wordModel  string
	imageModel string
}

// NewOpenAIProvider creates an OpenAI client for apiKey.
func NewOpenAIProvider(apiKey, wordModel, imageModel string) (*OpenAIProvider, error) {
	if apiKey == "" {
		return nil, errx.New(errx.AuthRequired, "openai", fmt.Errorf("OPENAI_API_KEY is not set"))
	}
	if wordModel == "" {
		wordModel = DefaultOpenAIWordModel
	}
	if imageModel == "" {
		imageModel = DefaultOpenAIImageModel
	}
	return &OpenAIProvider{
		client:     openai.NewClient(apiKey),
		wordModel:  wordModel,
		imageModel: imageModel,
	}, nil
}

// Name returns the provider name.
func (p *OpenAIProvider) Name() string {
	return "openai"
}

// GenerateWord requests the word description as a JSON object.
func (p *OpenAIProvider) GenerateWord(ctx context.Context, conceptText string) (concept.WordData, error) {
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.wordModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: WordPrompt(conceptText) + WordJSONInstruction},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return concept.WordData{}, fmt.Errorf("openai word request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return concept.FallbackWord, nil
	}
	return ParseWord(resp.Choices[0].Message.Content), nil
}

// GenerateImage requests a portrait image as base64 PNG.
func (p *OpenAIProvider) GenerateImage(ctx context.Context, conceptText string) (string, error) {
	resp, err := p.client.CreateImage(ctx, openai.ImageRequest{
		Prompt:         ImagePrompt(conceptText),
		Model:          p.imageModel,
		Size:           openai.CreateImageSize1024x1792,
		ResponseFormat: openai.CreateImageResponseFormatB64JSON,
		N:              1,
	})
	if err != nil {
		return "", fmt.Errorf("openai image request failed: %w", err)
	}
	if len(resp.Data) == 0 || resp.Data[0].B64JSON == "" {
		return "", errx.New(errx.ImageGenerationFailed, "openai", fmt.Errorf("no image data in response"))
	}
	data, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		return "", errx.New(errx.ImageGenerationFailed, "openai", fmt.Errorf("failed to decode image: %w", err))
	}
	return concept.EncodeDataURI("image/png", data), nil
}

// Transcribe converts a WAV recording into text with Whisper.
func (p *OpenAIProvider) Transcribe(ctx context.Context, wav []byte) (string, error) {
	resp, err := p.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    openai.Whisper1,
		FilePath: "dictation.wav",
		Reader:   bytes.NewReader(wav),
	})
	if err != nil {
		return "", fmt.Errorf("whisper transcription failed: %w", err)
	}
	return strings.TrimSpace(resp.Text), nil
}
