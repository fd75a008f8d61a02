package gui

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"

	"codeberg.org/snonux/wurdle/internal/concept"
)

// ImageDisplay is a custom widget for displaying the sketch of a result
type ImageDisplay struct {
	widget.BaseWidget

	container   *fyne.Container
	imageCanvas *canvas.Image
	imageLabel  *widget.Label

	current string
}

// NewImageDisplay creates a new image display widget
func NewImageDisplay() *ImageDisplay {
	d := &ImageDisplay{}

	d.imageCanvas = canvas.NewImageFromResource(nil)
	d.imageCanvas.FillMode = canvas.ImageFillContain
	d.imageCanvas.SetMinSize(fyne.NewSize(300, 400))

	d.imageLabel = widget.NewLabel("")
	d.imageLabel.Alignment = fyne.TextAlignCenter
	d.imageLabel.Hide()

	d.container = container.NewBorder(nil, d.imageLabel, nil, nil, d.imageCanvas)

	d.ExtendBaseWidget(d)
	return d
}

// CreateRenderer implements fyne.Widget
func (d *ImageDisplay) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(d.container)
}

// SetDataURI decodes and shows an image data URI. Setting the same URI
// again is a no-op.
func (d *ImageDisplay) SetDataURI(uri string) {
	if uri == d.current {
		return
	}
	d.current = uri
	if uri == "" {
		d.Clear()
		return
	}

	_, data, err := concept.DecodeDataURI(uri)
	if err != nil {
		d.showError(err)
		return
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		d.showError(err)
		return
	}

	d.imageCanvas.Image = img
	d.imageCanvas.Refresh()
	d.imageLabel.Hide()
}

func (d *ImageDisplay) showError(err error) {
	d.imageCanvas.Image = nil
	d.imageCanvas.Refresh()
	d.imageLabel.SetText(fmt.Sprintf("Error loading sketch: %v", err))
	d.imageLabel.Show()
}

// Clear clears the display
func (d *ImageDisplay) Clear() {
	d.current = ""
	d.imageCanvas.Image = nil
	d.imageCanvas.Refresh()
	d.imageLabel.Hide()
}

// LevelMeter shows the three dictation band levels as bars
type LevelMeter struct {
	widget.BaseWidget

	bars      [3]*canvas.Rectangle
	container *fyne.Container
	height    float32
}

// NewLevelMeter creates a meter with bars of the given maximum height
func NewLevelMeter(height float32) *LevelMeter {
	m := &LevelMeter{height: height}
	objs := []fyne.CanvasObject{layout.NewSpacer()}
	for i := range m.bars {
		bar := canvas.NewRectangle(color.Black)
		bar.CornerRadius = 3
		bar.SetMinSize(fyne.NewSize(6, 6))
		m.bars[i] = bar
		objs = append(objs, container.NewVBox(layout.NewSpacer(), bar, layout.NewSpacer()))
	}
	objs = append(objs, layout.NewSpacer())
	m.container = container.NewHBox(objs...)

	m.ExtendBaseWidget(m)
	return m
}

// CreateRenderer implements fyne.Widget
func (m *LevelMeter) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(m.container)
}

// SetLevels scales the bars to levels in [0,1]. Missing levels read as 0.
func (m *LevelMeter) SetLevels(levels []float64) {
	for i, bar := range m.bars {
		level := 0.0
		if i < len(levels) {
			level = min(max(levels[i], 0), 1)
		}
		h := float32(6 + level*float64(m.height-6))
		bar.SetMinSize(fyne.NewSize(6, h))
		bar.Refresh()
	}
	m.container.Refresh()
}

// BarHeights returns the current bar heights
func (m *LevelMeter) BarHeights() [3]float32 {
	var out [3]float32
	for i, bar := range m.bars {
		out[i] = bar.MinSize().Height
	}
	return out
}
