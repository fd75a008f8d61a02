package gui

import (
	"errors"
	"fmt"

	"codeberg.org/snonux/wurdle/internal/errx"
)

// User facing texts
const (
	appTitle         = "Wurdle"
	splashTagline    = "Forge nonsense words\nfor absurd ideas."
	splashButton     = "Let's go!"
	inputPlaceholder = "Describe an idea… but make it weird"
	discoveryHeader  = "DISCOVERY"
	upgradeButton    = "Upgrade"
	credentialsTitle = "API Key Required"
	credentialsRetry = "Retry"
	installHintTitle = "Tip"

	credentialsText = "Wurdle needs a Gemini or OpenAI API key to forge words and draw sketches.\n\n" +
		"Set GEMINI_API_KEY or OPENAI_API_KEY in your environment or in a .env file, then retry."
	installHintText = "Run `wurdle \"your concept\"` from a terminal to forge words without the window, " +
		"or add wurdle to your desktop launcher."

	msgGenerateFailed  = "An error occurred while generating."
	msgMicDenied       = "Microphone access was denied. Please allow microphone permissions."
	msgDictationFailed = "Speech recognition failed. Please try again."
	msgLinkCopied      = "Link copied to clipboard"
	msgShareFailed     = "Could not share the card."
	msgCardNotReady    = "The share card is still being prepared."
)

func upgradeTitle(limit int) string {
	return fmt.Sprintf("That's %d free\nWurdles!", limit)
}

const upgradeText = "I'd love to keep going, but each one costs real AI tokens. " +
	"Come back tomorrow, or upgrade if you want infinite made-up words."

// reaction is how the window responds to an error
type reaction int

const (
	reactSilent reaction = iota
	reactInline
	reactUpgrade
	reactCredentials
)

// react maps an error to the window's response and the inline message, if
// any.
func react(err error) (reaction, string) {
	if err == nil || errx.Silent(err) {
		return reactSilent, ""
	}
	switch errx.KindOf(err) {
	case errx.QuotaExceeded:
		return reactUpgrade, ""
	case errx.AuthRequired:
		return reactCredentials, ""
	case errx.PermissionDenied:
		return reactInline, msgMicDenied
	case errx.UpstreamError, errx.ImageGenerationFailed:
		return reactInline, msgGenerateFailed
	case errx.UploadFailed, errx.ImageLoadError, errx.EncodingError:
		return reactInline, msgShareFailed
	}
	var e *errx.Error
	if errors.As(err, &e) {
		return reactInline, msgGenerateFailed
	}
	return reactInline, err.Error()
}

// dictationMessage returns the inline message for a dictation error kind
func dictationMessage(kind errx.Kind) string {
	switch kind {
	case errx.PermissionDenied:
		return msgMicDenied
	case errx.Cancelled, errx.Busy:
		return ""
	default:
		return msgDictationFailed
	}
}
