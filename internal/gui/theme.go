package gui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

// wurdleTheme is the default theme pinned to its light variant, since the
// screens paint their own light backgrounds.
type wurdleTheme struct {
	fyne.Theme
}

func newWurdleTheme() fyne.Theme {
	return wurdleTheme{Theme: theme.DefaultTheme()}
}

func (t wurdleTheme) Color(name fyne.ThemeColorName, _ fyne.ThemeVariant) color.Color {
	switch name {
	case theme.ColorNamePrimary:
		return color.Black
	case theme.ColorNameInputBackground:
		return color.Transparent
	}
	return t.Theme.Color(name, theme.VariantLight)
}
