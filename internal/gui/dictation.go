package gui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"

	"codeberg.org/snonux/wurdle/internal/cli"
	"codeberg.org/snonux/wurdle/internal/dictation"
	"codeberg.org/snonux/wurdle/internal/errx"
	"codeberg.org/snonux/wurdle/internal/generation"
)

// setupDictation picks a transcriber once. The mic button stays disabled
// when no microphone or transcriber is usable.
func (a *Application) setupDictation(provider generation.Provider, creds cli.Credentials) {
	mic := dictation.NewCommandMicrophone()
	if err := mic.IsAvailable(); err != nil {
		a.log.Info().Err(err).Msg("dictation disabled")
		a.dictation = nil
		return
	}

	var candidates []dictation.Candidate
	if tr, ok := provider.(dictation.Transcriber); ok {
		candidates = append(candidates, dictation.Candidate{Transcriber: tr})
	}
	if provider.Name() != "openai" && creds.OpenAIAPIKey != "" {
		if whisper, err := generation.NewOpenAIProvider(creds.OpenAIAPIKey, "", ""); err == nil {
			candidates = append(candidates, dictation.Candidate{Transcriber: whisper})
		}
	}

	tr := dictation.Select(candidates...)
	if tr == nil {
		a.dictation = nil
		return
	}
	a.log.Info().Str("transcriber", tr.Name()).Msg("dictation enabled")
	a.dictation = dictation.NewSession(mic, tr)
	a.dictation.OnLevels = func(levels []float64) {
		fyne.Do(func() { a.levelMeter.SetLevels(levels) })
	}
}

// onToggleDictation starts or stops listening
func (a *Application) onToggleDictation() {
	if a.dictation == nil || a.loading {
		return
	}
	if a.dictation.State() == dictation.Listening {
		a.dictation.Stop()
		return
	}

	base := a.conceptEntry.Text
	a.clearInlineError()
	err := a.dictation.Start(dictation.Callbacks{
		OnPartial: func(text string) {
			fyne.Do(func() { a.applyTranscript(base, text) })
		},
		OnError: func(kind errx.Kind) {
			fyne.Do(func() {
				if msg := dictationMessage(kind); msg != "" {
					a.showInlineError(msg)
				}
			})
		},
		OnEnd: func() {
			fyne.Do(a.dictationEnded)
		},
	})
	if err != nil {
		return
	}
	a.showListening(true)()
}

// applyTranscript shows the composed transcript. The entry shows scramble
// frames while loading and is left alone.
func (a *Application) applyTranscript(base, text string) {
	if a.loading {
		return
	}
	a.conceptEntry.SetText(dictation.Compose(base, text))
}

// dictationEnded runs once the final transcript is in. A generate request
// made while listening is carried out now.
func (a *Application) dictationEnded() {
	a.showListening(false)()
	if a.generatePending {
		a.generatePending = false
		a.onGenerate()
	}
}

// showListening returns a func switching the mic button between idle and
// listening looks
func (a *Application) showListening(on bool) func() {
	return func() {
		if on {
			a.micBtn.SetIcon(theme.MediaStopIcon())
			a.levelMeter.SetLevels(nil)
			a.levelMeter.Show()
		} else {
			a.micBtn.SetIcon(theme.MediaRecordIcon())
			a.levelMeter.Hide()
		}
		a.refreshInputButtons()
	}
}
