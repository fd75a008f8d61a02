package gui

import (
	"image/color"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	ttwidget "github.com/dweymouth/fyne-tooltip/widget"

	"codeberg.org/snonux/wurdle/internal/concept"
	"codeberg.org/snonux/wurdle/internal/sharecard"
)

// Text sizes of the screens
const (
	titleSize    = 64
	headlineSize = 48
	taglineSize  = 26
	wordWidth    = 400
)

var (
	resultBackground = color.NRGBA{R: 0xFA, G: 0xF7, B: 0xF0, A: 0xFF}
	mutedText        = color.NRGBA{R: 0x77, G: 0x77, B: 0x77, A: 0xFF}
)

// backdrop paints col behind content
func backdrop(col color.Color, content fyne.CanvasObject) fyne.CanvasObject {
	return container.NewStack(canvas.NewRectangle(col), container.NewPadded(container.NewPadded(content)))
}

// textLines renders each line of text as a canvas.Text
func textLines(text string, size float32, col color.Color, bold bool) *fyne.Container {
	box := container.NewVBox()
	for _, line := range strings.Split(text, "\n") {
		t := canvas.NewText(line, col)
		t.TextSize = size
		t.TextStyle = fyne.TextStyle{Bold: bold}
		box.Add(t)
	}
	return box
}

func roundButton(icon fyne.Resource, tapped func()) *ttwidget.Button {
	b := ttwidget.NewButtonWithIcon("", icon, tapped)
	b.Importance = widget.MediumImportance
	return b
}

func (a *Application) buildSplash() fyne.CanvasObject {
	start := widget.NewButton(splashButton, a.onProceed)
	start.Importance = widget.MediumImportance

	return backdrop(brandRed, container.NewBorder(
		container.NewVBox(
			layout.NewSpacer(),
			textLines(appTitle, titleSize, brandYellow, false),
			textLines(splashTagline, taglineSize, color.Black, false),
		),
		container.NewHBox(start, layout.NewSpacer()),
		nil, nil,
	))
}

func (a *Application) buildInput() fyne.CanvasObject {
	a.conceptEntry = NewConceptEntry()
	a.conceptEntry.SetPlaceHolder(inputPlaceholder)
	a.conceptEntry.SetMinRowsVisible(6)
	a.conceptEntry.OnChanged = a.onConceptChanged
	a.conceptEntry.SetOnSubmit(a.onGenerate)
	a.conceptEntry.SetOnEscape(func() {
		if a.loading {
			a.onCancelGenerate()
			return
		}
		a.window.Canvas().Unfocus()
	})

	a.exampleBtn = widget.NewButton("eg. "+concept.ExampleAt(0), func() {
		a.conceptEntry.SetText(concept.ExampleAt(a.exampleIndex))
	})
	a.exampleBtn.Importance = widget.LowImportance
	a.exampleBtn.Alignment = widget.ButtonAlignLeading

	a.errorLabel = widget.NewLabel("")
	a.errorLabel.Wrapping = fyne.TextWrapWord
	a.errorLabel.Importance = widget.DangerImportance
	a.errorLabel.Hide()

	a.clearBtn = roundButton(theme.CancelIcon(), func() { a.conceptEntry.SetText("") })
	a.goBtn = roundButton(theme.NavigateNextIcon(), a.onGenerate)
	a.randomBtn = roundButton(theme.ViewRefreshIcon(), func() {
		a.conceptEntry.SetText(concept.RandomConcept(a.rnd))
	})
	a.micBtn = roundButton(theme.MediaRecordIcon(), a.onToggleDictation)
	a.levelMeter = NewLevelMeter(24)
	a.levelMeter.Hide()
	a.refreshInputButtons()

	buttons := container.NewHBox(
		a.clearBtn, a.randomBtn,
		layout.NewSpacer(),
		a.levelMeter,
		a.goBtn, a.micBtn,
	)

	return backdrop(brandYellow, container.NewBorder(
		nil, buttons, nil, nil,
		container.NewVScroll(container.NewVBox(a.conceptEntry, a.exampleBtn, a.errorLabel)),
	))
}

// refreshInputButtons shows clear/go for a typed concept and random/mic for
// an empty one. The mic stays hidden without a transcriber.
func (a *Application) refreshInputButtons() {
	if a.conceptEntry == nil {
		return
	}
	empty := strings.TrimSpace(a.concept) == "" && !a.loading
	listening := a.isListening()

	setVisible(a.clearBtn, !empty && !listening)
	setVisible(a.goBtn, !empty && !listening)
	setVisible(a.randomBtn, empty || listening)
	setVisible(a.micBtn, (empty || listening) && a.dictation != nil)
	setVisible(a.exampleBtn, empty)

	setEnabled(a.clearBtn, !a.loading)
	setEnabled(a.goBtn, !a.loading && concept.Valid(a.concept))
	setEnabled(a.randomBtn, !listening)
	setEnabled(a.conceptEntry, !a.loading)
}

type toggler interface {
	Show()
	Hide()
}

func setVisible(o toggler, visible bool) {
	if visible {
		o.Show()
	} else {
		o.Hide()
	}
}

type enabler interface {
	Enable()
	Disable()
}

func setEnabled(o enabler, enabled bool) {
	if enabled {
		o.Enable()
	} else {
		o.Disable()
	}
}

func (a *Application) buildResult() fyne.CanvasObject {
	a.sketch = NewImageDisplay()
	a.wordLines = container.NewVBox()
	a.speakBtn = NewSpeakButton(nil)
	a.speakBtn.onError = func(error) { a.toast("Could not speak the word.") }

	a.definition = widget.NewLabel("")
	a.definition.Wrapping = fyne.TextWrapWord
	a.discovery = widget.NewLabel("")
	a.discovery.Wrapping = fyne.TextWrapWord
	a.discovery.TextStyle = fyne.TextStyle{Italic: true}

	header := canvas.NewText(discoveryHeader, mutedText)
	header.TextSize = 10

	a.shareBtn = roundButton(theme.MailForwardIcon(), a.onShare)
	a.shareBtn.Disable()
	a.resetBtn = roundButton(theme.HistoryIcon(), a.onReset)
	a.statusLabel = widget.NewLabel("")
	a.statusLabel.Alignment = fyne.TextAlignCenter

	body := container.NewVBox(
		a.sketch,
		a.wordLines,
		a.speakBtn.Button,
		a.definition,
		widget.NewSeparator(),
		header,
		a.discovery,
	)
	return backdrop(resultBackground, container.NewBorder(
		nil,
		container.NewBorder(nil, nil, a.shareBtn, a.resetBtn, a.statusLabel),
		nil, nil,
		container.NewVScroll(body),
	))
}

// setHeadline shows the word in at most two lines
func (a *Application) setHeadline(word string) {
	measure := func(s string) int {
		return int(fyne.MeasureText(s, headlineSize, fyne.TextStyle{Bold: true}).Width)
	}
	lines := sharecard.SplitHeadline(strings.ToLower(word), wordWidth, measure)
	a.wordLines.Objects = textLines(strings.Join(lines, "\n"), headlineSize, color.Black, true).Objects
	a.wordLines.Refresh()
}

// setHeadlineAlpha sets the opacity of the headline
func (a *Application) setHeadlineAlpha(alpha uint8) {
	for _, o := range a.wordLines.Objects {
		if t, ok := o.(*canvas.Text); ok {
			t.Color = color.NRGBA{A: alpha}
			t.Refresh()
		}
	}
}

func (a *Application) buildUpgrade() fyne.CanvasObject {
	text := widget.NewLabel(upgradeText)
	text.Wrapping = fyne.TextWrapWord
	text.TextStyle = fyne.TextStyle{Bold: true}

	cta := widget.NewButton(upgradeButton, a.onUpgrade)
	a.upgradeTitle = textLines(upgradeTitle(a.config.Quota.Limit()), headlineSize, color.Black, false)

	return backdrop(brandYellow, container.NewBorder(
		a.upgradeTitle,
		container.NewHBox(cta, layout.NewSpacer()),
		nil, nil,
		container.NewVBox(text),
	))
}

func (a *Application) buildCredentials() fyne.CanvasObject {
	title := textLines(credentialsTitle, 28, color.Black, true)
	text := widget.NewLabel(credentialsText)
	text.Wrapping = fyne.TextWrapWord
	text.Alignment = fyne.TextAlignCenter

	retry := widget.NewButtonWithIcon(credentialsRetry, theme.ViewRefreshIcon(), a.onRetryCredentials)
	retry.Importance = widget.HighImportance

	return backdrop(resultBackground, container.NewCenter(container.NewVBox(
		widget.NewIcon(theme.AccountIcon()),
		container.NewCenter(title),
		text,
		retry,
	)))
}
