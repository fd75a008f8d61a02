package gui

import (
	"strings"

	"fyne.io/fyne/v2"

	"codeberg.org/snonux/wurdle/internal/concept"
	"codeberg.org/snonux/wurdle/internal/dictation"
)

// onConceptChanged tracks what the user typed. Scramble frames written
// into the entry while loading are not the concept.
func (a *Application) onConceptChanged(text string) {
	if a.loading {
		return
	}
	a.concept = text
	a.clearInlineError()
	a.refreshInputButtons()
}

func (a *Application) isListening() bool {
	return a.dictation != nil && a.dictation.State() == dictation.Listening
}

// onGenerate forges a word for the typed concept
func (a *Application) onGenerate() {
	if a.loading {
		return
	}
	if a.isListening() {
		// The final transcript and OnEnd are still on their way
		a.generatePending = true
		a.dictation.Stop()
		return
	}
	text := strings.TrimSpace(a.concept)
	if !concept.Valid(text) {
		return
	}
	if a.orch == nil {
		if !a.config.Credentials.HasAI() {
			a.requireCredentials()
			return
		}
		if err := a.connect(); err != nil {
			a.log.Error().Err(err).Msg("failed to connect generation provider")
			a.showInlineError(msgGenerateFailed)
			return
		}
	}
	if a.config.Quota.Remaining() <= 0 {
		if err := a.screens.QuotaExhausted(); err != nil {
			a.log.Debug().Err(err).Msg("quota transition ignored")
		}
		return
	}

	a.clearInlineError()
	a.genSeq++
	seq := a.genSeq
	a.setLoading(true, a.concept)

	orch := a.orch
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		r, err := orch.Generate(a.ctx, text)
		fyne.Do(func() { a.finishGenerate(seq, r, err) })
	}()
}

// finishGenerate renders the outcome of generation seq. Outcomes of
// cancelled generations arrive with an older seq and are dropped.
func (a *Application) finishGenerate(seq int, r *concept.Result, err error) {
	if seq != a.genSeq {
		return
	}
	a.setLoading(false, a.concept)

	if err != nil {
		a.log.Warn().Err(err).Msg("generation failed")
		a.handleError(err)
		return
	}
	if err := a.screens.GenerateSucceeded(r); err != nil {
		a.log.Warn().Err(err).Msg("result transition ignored")
	}
}

// setLoading locks the input and scrambles the concept while on. Turning
// it off restores text.
func (a *Application) setLoading(on bool, text string) {
	if a.scrambling != nil {
		a.scrambling.Stop()
		a.scrambling = nil
	}
	a.loading = on
	a.refreshInputButtons()

	if !on {
		a.conceptEntry.SetText(text)
		return
	}
	a.scrambling = a.presenter.Start(
		func() string { return text },
		func(frame string) {
			fyne.Do(func() {
				if a.loading {
					a.conceptEntry.SetText(frame)
				}
			})
		},
	)
}

// onCancelGenerate abandons the in-flight generation and unlocks the input
func (a *Application) onCancelGenerate() {
	if !a.loading {
		return
	}
	if a.orch != nil {
		a.orch.Cancel()
	}
	a.genSeq++
	a.setLoading(false, a.concept)
	a.log.Info().Msg("generation cancelled by user")
}

// handleError maps a failed operation to the screen's reaction
func (a *Application) handleError(err error) {
	reaction, message := react(err)
	switch reaction {
	case reactUpgrade:
		if err := a.screens.QuotaExhausted(); err != nil {
			a.log.Debug().Err(err).Msg("quota transition ignored")
		}
	case reactCredentials:
		a.requireCredentials()
	case reactInline:
		a.showInlineError(message)
	}
}
