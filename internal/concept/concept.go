// Package concept holds the domain types shared by every other package: the
// user's free-text concept, the generated result bundle and the session
// history of results.
package concept

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// MinWords is the minimum number of whitespace-separated tokens a concept
// needs before it may be generated.
const MinWords = 3

// WordCount returns the number of whitespace-separated tokens in text.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// Valid reports whether text may be sent for generation.
func Valid(text string) bool {
	return WordCount(text) >= MinWords
}

// WordData is the textual half of a generation.
type WordData struct {
	Word          string `json:"word"`
	Pronunciation string `json:"pronunciation"`
	Definition    string `json:"definition"`
	Discovery     string `json:"discovery"`
}

// FallbackWord is returned in place of word output that cannot be parsed.
var FallbackWord = WordData{
	Word:          "error",
	Pronunciation: "/error/",
	Definition:    "Failed to generate.",
	Discovery:     "Lost to history.",
}

// Complete reports whether all four fields are present.
func (w WordData) Complete() bool {
	return strings.TrimSpace(w.Word) != "" &&
		strings.TrimSpace(w.Pronunciation) != "" &&
		strings.TrimSpace(w.Definition) != "" &&
		strings.TrimSpace(w.Discovery) != ""
}

// Result is one generated word bundle. It is never mutated after NewResult.
type Result struct {
	ID            string
	Concept       string
	Word          string
	Pronunciation string
	Definition    string
	Discovery     string
	Image         string // data URI
	CreatedAt     time.Time
}

// NewResult merges word data and an image data URI into a Result.
func NewResult(conceptText string, w WordData, image string) *Result {
	return &Result{
		ID:            uuid.NewString(),
		Concept:       strings.TrimSpace(conceptText),
		Word:          strings.ToLower(strings.TrimSpace(w.Word)),
		Pronunciation: strings.TrimSpace(w.Pronunciation),
		Definition:    strings.TrimSpace(w.Definition),
		Discovery:     strings.TrimSpace(w.Discovery),
		Image:         image,
		CreatedAt:     time.Now(),
	}
}
