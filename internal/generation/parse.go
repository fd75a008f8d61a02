package generation

import (
	"encoding/json"
	"strings"

	"codeberg.org/snonux/wurdle/internal/concept"
	"codeberg.org/snonux/wurdle/internal/logx"
)

// ParseWord decodes the word provider's JSON text. Anything that does not
// decode into all four fields yields concept.FallbackWord.
func ParseWord(text string) concept.WordData {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	var w concept.WordData
	if err := json.Unmarshal([]byte(text), &w); err != nil {
		logx.Warn().Err(err).Msg("failed to parse word JSON")
		return concept.FallbackWord
	}
	if !w.Complete() {
		logx.Warn().Str("raw", text).Msg("word JSON is missing fields")
		return concept.FallbackWord
	}
	return w
}
