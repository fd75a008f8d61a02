package testutil

import (
	"context"
	"fmt"
	"sync"

	"codeberg.org/snonux/wurdle/internal/concept"
)

// MockWord is returned by MockProvider when Word is unset.
var MockWord = concept.WordData{
	Word:          "Toastocriticism",
	Pronunciation: "/toʊstoʊˈkrɪtɪsɪzəm/",
	Definition:    "The condition of being silently judged by a kitchen appliance.",
	Discovery:     "First recorded in 1893 by a baker in Lyon who swore his toaster sighed at him.",
}

// MockProvider mocks a word and image generation backend
type MockProvider struct {
	Word     concept.WordData
	Image    string
	WordErr  error
	ImageErr error
	// Gate, when set, blocks both calls until it is closed.
	Gate chan struct{}

	mu         sync.Mutex
	wordCalls  int
	imageCalls int
}

// Name returns the mock provider name
func (m *MockProvider) Name() string {
	return "mock"
}

// GenerateWord mocks the word request
func (m *MockProvider) GenerateWord(ctx context.Context, conceptText string) (concept.WordData, error) {
	m.mu.Lock()
	m.wordCalls++
	m.mu.Unlock()

	if err := m.wait(ctx); err != nil {
		return concept.WordData{}, err
	}
	if m.WordErr != nil {
		return concept.WordData{}, m.WordErr
	}
	if m.Word == (concept.WordData{}) {
		return MockWord, nil
	}
	return m.Word, nil
}

// GenerateImage mocks the image request
func (m *MockProvider) GenerateImage(ctx context.Context, conceptText string) (string, error) {
	m.mu.Lock()
	m.imageCalls++
	m.mu.Unlock()

	if err := m.wait(ctx); err != nil {
		return "", err
	}
	if m.ImageErr != nil {
		return "", m.ImageErr
	}
	if m.Image == "" {
		return "data:image/png;base64,iVBORw0KGgo=", nil
	}
	return m.Image, nil
}

// Calls returns how often each request was issued
func (m *MockProvider) Calls() (word, image int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.wordCalls, m.imageCalls
}

func (m *MockProvider) wait(ctx context.Context) error {
	if m.Gate == nil {
		return nil
	}
	select {
	case <-m.Gate:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// MockTranscriber mocks a speech-to-text backend
type MockTranscriber struct {
	Texts []string
	Err   error

	mu    sync.Mutex
	calls int
}

// Name returns the mock transcriber name
func (m *MockTranscriber) Name() string {
	return "mock"
}

// Transcribe returns the next text in Texts, repeating the last one
func (m *MockTranscriber) Transcribe(ctx context.Context, wav []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.Err != nil {
		return "", m.Err
	}
	if len(m.Texts) == 0 {
		return "", fmt.Errorf("no mock transcript")
	}
	i := min(m.calls-1, len(m.Texts)-1)
	return m.Texts[i], nil
}

// Calls returns the number of Transcribe calls
func (m *MockTranscriber) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// MemoryQuota is a quota with a fixed limit held in memory
type MemoryQuota struct {
	Limit int

	mu    sync.Mutex
	count int
}

// Remaining returns the remaining generations
func (q *MemoryQuota) Remaining() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return max(q.Limit-q.count, 0)
}

// Increment records one generation
func (q *MemoryQuota) Increment() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.count++
}

// Count returns the used generations
func (q *MemoryQuota) Count() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.count
}

// SetCount overrides the used generations
func (q *MemoryQuota) SetCount(n int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.count = n
}
