// Package anki exports forged words as an Anki deck (.apkg), so made-up
// vocabulary can be studied like any other.
package anki

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Card represents a single forged word
type Card struct {
	Word          string
	Pronunciation string
	Definition    string
	Discovery     string
	Concept       string
	SketchFile    string // Path to the sketch image, may be empty
	CreatedAt     string
}

// record mirrors the fields of word.json the deck needs
type record struct {
	Concept       string `json:"concept"`
	Word          string `json:"word"`
	Pronunciation string `json:"pronunciation"`
	Definition    string `json:"definition"`
	Discovery     string `json:"discovery"`
	Sketch        string `json:"sketch"`
	CreatedAt     string `json:"created_at"`
}

// LoadCards reads every card directory below dir. Directories without a
// readable word.json are skipped. Cards are ordered by creation time.
func LoadCards(dir string) ([]Card, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	var cards []Card
	for _, entry := range entries {
		// Skip hidden directories like .trashbin
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		cardDir := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(filepath.Join(cardDir, "word.json"))
		if err != nil {
			continue
		}
		var r record
		if err := json.Unmarshal(data, &r); err != nil || r.Word == "" {
			continue
		}

		card := Card{
			Word:          r.Word,
			Pronunciation: r.Pronunciation,
			Definition:    r.Definition,
			Discovery:     r.Discovery,
			Concept:       r.Concept,
			CreatedAt:     r.CreatedAt,
		}
		if r.Sketch != "" && fileExists(filepath.Join(cardDir, r.Sketch)) {
			card.SketchFile = filepath.Join(cardDir, r.Sketch)
		}
		cards = append(cards, card)
	}

	sort.SliceStable(cards, func(i, j int) bool {
		return cards[i].CreatedAt < cards[j].CreatedAt
	})
	return cards, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
