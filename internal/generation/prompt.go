package generation

import (
	"fmt"
	"strings"
)

// ImageAspectRatio is requested from every image provider.
const ImageAspectRatio = "3:4"

// WordPrompt builds the word-description prompt for a concept.
func WordPrompt(conceptText string) string {
	return fmt.Sprintf(`The user wants a made-up scientific word for the following concept: "%s".

Create a plausible-sounding scientific word using familiar Latin/Greek roots (e.g., -ology, -ism, -phobia, thermo-, psycho-, etc.). Keep it grounded and close to reality:
- Use roots that sound like real scientific terms (think psychology, thermodynamics, photosynthesis)
- Prefer shorter words (2-4 syllables) that feel pronounceable and recognizable
- Avoid alien, convoluted, or overly exotic constructions
- The word should feel like it could plausibly exist in a textbook

Also provide a short, dynamic, and utterly absurd fictitious paragraph about where, when, and by whom this concept was discovered. Make it sound like a serious historical account of a ridiculous event.

IMPORTANT: Absolutely NO obscenity, profanity, or inappropriate language. Keep it family-friendly and safe for work.`, strings.TrimSpace(conceptText))
}

// WordJSONInstruction is appended for providers without schema support.
const WordJSONInstruction = `

Respond with a single JSON object with exactly these string fields:
"word" (the made up word, lowercase), "pronunciation" (phonetic spelling, e.g. /kɒntəmpleɪt/),
"definition" (short, clear definition) and "discovery" (a short fictitious paragraph of where, when, and by whom this concept was discovered).`

// ImagePrompt builds the blueprint sketch prompt for a concept.
func ImagePrompt(conceptText string) string {
	return fmt.Sprintf("A highly detailed scientific CAD diagram and engineering blueprint of %s. "+
		"Technical drawing, orthographic projection, mechanical precision. "+
		"Drawn with pure white lines on a pure solid black background (#000000). "+
		"It is CRITICAL that the background is completely solid black to blend seamlessly into a black app interface. "+
		"No other colors. Blueprint style.", strings.TrimSpace(conceptText))
}
