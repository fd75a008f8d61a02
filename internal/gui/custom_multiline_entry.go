package gui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
)

// ConceptEntry extends widget.Entry to handle Escape and Ctrl+Enter
type ConceptEntry struct {
	widget.Entry
	onEscape func()
	onSubmit func()
}

// NewConceptEntry creates a new wrapping multi-line entry
func NewConceptEntry() *ConceptEntry {
	entry := &ConceptEntry{}
	entry.MultiLine = true
	entry.Wrapping = fyne.TextWrapWord
	entry.ExtendBaseWidget(entry)
	return entry
}

// TypedKey handles key events
func (e *ConceptEntry) TypedKey(key *fyne.KeyEvent) {
	if key.Name == fyne.KeyEscape && e.onEscape != nil {
		e.onEscape()
		return
	}
	e.Entry.TypedKey(key)
}

// TypedShortcut submits on Ctrl+Enter
func (e *ConceptEntry) TypedShortcut(s fyne.Shortcut) {
	if ks, ok := s.(*desktop.CustomShortcut); ok && e.onSubmit != nil &&
		ks.Modifier == fyne.KeyModifierShortcutDefault &&
		(ks.KeyName == fyne.KeyReturn || ks.KeyName == fyne.KeyEnter) {
		e.onSubmit()
		return
	}
	e.Entry.TypedShortcut(s)
}

// SetOnEscape sets the callback for when Escape is pressed
func (e *ConceptEntry) SetOnEscape(f func()) {
	e.onEscape = f
}

// SetOnSubmit sets the callback for Ctrl+Enter
func (e *ConceptEntry) SetOnSubmit(f func()) {
	e.onSubmit = f
}
