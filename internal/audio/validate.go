package audio

import (
	"fmt"
	"strings"
	"unicode"
)

// MaxWordLength bounds what is sent to a speech provider.
const MaxWordLength = 64

// ValidateWord checks that text is a speakable headline word
func ValidateWord(text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return fmt.Errorf("text cannot be empty")
	}
	if len([]rune(text)) > MaxWordLength {
		return fmt.Errorf("text is longer than %d characters", MaxWordLength)
	}

	for _, r := range text {
		if unicode.IsLetter(r) {
			return nil
		}
	}
	return fmt.Errorf("text must contain letters")
}
