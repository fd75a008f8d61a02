package gui

import (
	"context"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	ttwidget "github.com/dweymouth/fyne-tooltip/widget"

	"codeberg.org/snonux/wurdle/internal/logx"
)

// WordSpeaker speaks a word and blocks until playback ends
type WordSpeaker interface {
	Speak(ctx context.Context, word string) error
	Stop()
}

// SpeakButton shows the pronunciation and speaks the headline word when
// tapped. Tapping while speaking stops playback.
type SpeakButton struct {
	*ttwidget.Button

	mu       sync.Mutex
	speaker  WordSpeaker
	word     string
	speaking bool
	onError  func(error)
}

// NewSpeakButton creates a speak button. speaker may be nil, in which case
// the button only shows the pronunciation.
func NewSpeakButton(speaker WordSpeaker) *SpeakButton {
	b := &SpeakButton{speaker: speaker}
	b.Button = ttwidget.NewButtonWithIcon("", theme.VolumeUpIcon(), b.onTap)
	b.Importance = widget.LowImportance
	b.Alignment = widget.ButtonAlignLeading
	return b
}

// SetWord sets the word to speak and the pronunciation to show
func (b *SpeakButton) SetWord(word, pronunciation string) {
	b.Stop()
	b.mu.Lock()
	b.word = word
	b.mu.Unlock()
	b.SetText(pronunciation)
	if b.speaker == nil {
		b.SetIcon(nil)
	} else {
		b.SetIcon(theme.VolumeUpIcon())
	}
}

func (b *SpeakButton) onTap() {
	b.mu.Lock()
	if b.speaker == nil || b.word == "" {
		b.mu.Unlock()
		return
	}
	if b.speaking {
		b.mu.Unlock()
		b.Stop()
		return
	}
	b.speaking = true
	word := b.word
	b.mu.Unlock()

	b.SetIcon(theme.MediaStopIcon())
	go func() {
		err := b.speaker.Speak(context.Background(), word)
		if err != nil {
			logx.Warn().Err(err).Str("word", word).Msg("failed to speak word")
		}
		fyne.Do(func() {
			b.mu.Lock()
			b.speaking = false
			b.mu.Unlock()
			b.SetIcon(theme.VolumeUpIcon())
			if err != nil && b.onError != nil {
				b.onError(err)
			}
		})
	}()
}

// Play speaks the current word, as if tapped
func (b *SpeakButton) Play() {
	b.mu.Lock()
	speaking := b.speaking
	b.mu.Unlock()
	if !speaking {
		b.onTap()
	}
}

// Stop interrupts playback
func (b *SpeakButton) Stop() {
	if b.speaker != nil {
		b.speaker.Stop()
	}
}
