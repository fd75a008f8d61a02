package gui

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"sync"

	"fyne.io/fyne/v2"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

const iconSize = 256

var (
	// Brand colours
	brandRed    = color.NRGBA{R: 0xFF, G: 0x3B, B: 0x44, A: 0xFF}
	brandYellow = color.NRGBA{R: 0xFF, G: 0xE1, B: 0x35, A: 0xFF}

	iconOnce sync.Once
	iconData []byte
)

// GetAppIcon returns the application icon as a Fyne resource
func GetAppIcon() fyne.Resource {
	iconOnce.Do(func() {
		data, err := renderIcon(iconSize)
		if err == nil {
			iconData = data
		}
	})
	return &fyne.StaticResource{
		StaticName:    "wurdle.png",
		StaticContent: iconData,
	}
}

// renderIcon draws a yellow "W" on the brand red
func renderIcon(size int) ([]byte, error) {
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	draw.Draw(img, img.Bounds(), image.NewUniform(brandRed), image.Point{}, draw.Src)

	f, err := opentype.Parse(gobold.TTF)
	if err != nil {
		return nil, err
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    float64(size) * 0.6,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, err
	}
	defer face.Close()

	d := &font.Drawer{Dst: img, Src: image.NewUniform(brandYellow), Face: face}
	width := d.MeasureString("W")
	m := face.Metrics()
	height := m.Ascent + m.Descent
	d.Dot = fixed.Point26_6{
		X: (fixed.I(size) - width) / 2,
		Y: (fixed.I(size)-height)/2 + m.Ascent,
	}
	d.DrawString("W")

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
