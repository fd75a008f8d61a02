package gui

import (
	"fyne.io/fyne/v2"

	"codeberg.org/snonux/wurdle/internal/share"
	"codeberg.org/snonux/wurdle/internal/sharecard"
)

// clipboard adapts the window clipboard to share.Clipboard. Writes are
// posted to the main goroutine.
type clipboard struct {
	window fyne.Window
}

func (c clipboard) SetContent(text string) error {
	fyne.Do(func() {
		c.window.Clipboard().SetContent(text)
	})
	return nil
}

// newDispatcher wires the share fallbacks into the window
func (a *Application) newDispatcher() *share.Dispatcher {
	var native share.Native
	if sharer := share.NewCommandSharer(a.config.ShareCommand); sharer != nil {
		if err := sharer.IsAvailable(); err == nil {
			native = sharer
			a.sharer = sharer
		} else {
			a.log.Warn().Err(err).Msg("share command unavailable")
		}
	}

	d := share.NewDispatcher(native, clipboard{a.window}, share.NewFileDownloader(share.DefaultDownloadOptions()))
	d.OnLinkCopied = func() {
		fyne.Do(func() { a.toast(msgLinkCopied) })
	}
	d.OnSaved = func(path string) {
		fyne.Do(func() { a.toast("Card saved to " + path) })
	}
	d.OnError = func(err error) {
		a.log.Error().Err(err).Msg("share failed")
		fyne.Do(func() { a.showInlineError(msgShareFailed) })
	}
	return d
}

// onShare shares the prepared card of the active result
func (a *Application) onShare() {
	if a.preparer == nil {
		return
	}
	asset, ok := a.preparer.Asset()
	if !ok {
		a.toast(msgCardNotReady)
		return
	}
	a.dispatcher.Share(asset, share.Meta{})
}

// onCardReady enables sharing once the card of the active result exists
func (a *Application) onCardReady(asset *sharecard.Asset) {
	fyne.Do(func() {
		cur := a.screens.Current()
		if cur == nil || cur.ID != asset.ResultID {
			return
		}
		a.shareBtn.Enable()
	})
}
