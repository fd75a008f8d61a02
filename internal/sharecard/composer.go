// Package sharecard renders a concept.Result into a fixed-layout PNG card:
// the sketch on top, the headline word, the wrapped definition and a footer
// caption, all on black.
package sharecard

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/jpeg"
	"image/png"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/rs/zerolog"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"codeberg.org/snonux/wurdle/internal"
	"codeberg.org/snonux/wurdle/internal/concept"
	"codeberg.org/snonux/wurdle/internal/errx"
	"codeberg.org/snonux/wurdle/internal/logx"
)

// Layout in logical units; pixels are these times Scale.
const (
	Width   = 400
	Scale   = 2
	Padding = 24
	Gap     = 16

	wordSize         = 36
	wordLineHeight   = 40
	definitionSize   = 16
	definitionHeight = 22
	footerSize       = 12
	footerHeight     = 16

	FooterPrefix = "Forged with "
	FooterBrand  = "Wurdle"
)

var definitionColor = color.NRGBA{R: 255, G: 255, B: 255, A: 179}

// Asset is a composed card ready to share.
type Asset struct {
	ResultID        string
	File            []byte
	FileName        string
	MimeType        string
	Title           string
	Text            string
	HostedURL       string
	DataURL         string
	Width           int
	Height          int
	WordLines       []string
	DefinitionLines []string
}

// Hoster publishes a PNG and returns its public URL.
type Hoster interface {
	Upload(ctx context.Context, png []byte, name string) (string, error)
}

type faces struct {
	word, definition, footer, footerBold font.Face
}

// Composer renders cards. Font faces are not safe for concurrent use, so
// Compose serialises on mu.
type Composer struct {
	mu     sync.Mutex
	faces  faces
	hoster Hoster
	log    zerolog.Logger
}

// NewComposer loads the Go fonts. hoster may be nil.
func NewComposer(hoster Hoster) (*Composer, error) {
	regular, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse regular font: %w", err)
	}
	bold, err := opentype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse bold font: %w", err)
	}

	newFace := func(f *opentype.Font, size float64) (font.Face, error) {
		return opentype.NewFace(f, &opentype.FaceOptions{
			Size:    size * Scale,
			DPI:     72,
			Hinting: font.HintingFull,
		})
	}
	var fs faces
	for _, fc := range []struct {
		dst  *font.Face
		font *opentype.Font
		size float64
	}{
		{&fs.word, bold, wordSize},
		{&fs.definition, regular, definitionSize},
		{&fs.footer, regular, footerSize},
		{&fs.footerBold, bold, footerSize},
	} {
		face, err := newFace(fc.font, fc.size)
		if err != nil {
			return nil, fmt.Errorf("failed to create font face: %w", err)
		}
		*fc.dst = face
	}

	return &Composer{faces: fs, hoster: hoster, log: logx.With("sharecard")}, nil
}

func measurer(face font.Face) Measure {
	return func(s string) int {
		return font.MeasureString(face, s).Ceil()
	}
}

// Compose renders r into a PNG card and, when a hoster is configured,
// uploads it. Upload failures are logged and leave HostedURL empty.
func (c *Composer) Compose(ctx context.Context, r *concept.Result) (*Asset, error) {
	asset, err := c.render(r)
	if err != nil {
		return nil, err
	}
	if c.hoster == nil {
		return asset, nil
	}
	url, err := c.hoster.Upload(ctx, asset.File, asset.FileName)
	if err != nil {
		c.log.Warn().Err(err).Str("result", r.ID).Msg("card upload failed, sharing without link")
		return asset, nil
	}
	asset.HostedURL = url
	return asset, nil
}

func (c *Composer) render(r *concept.Result) (*Asset, error) {
	_, raw, err := concept.DecodeDataURI(r.Image)
	if err != nil {
		return nil, errx.New(errx.ImageLoadError, "compose", err)
	}
	src, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, errx.New(errx.ImageLoadError, "compose", err)
	}
	sb := src.Bounds()
	if sb.Dx() == 0 || sb.Dy() == 0 {
		return nil, errx.New(errx.ImageLoadError, "compose", fmt.Errorf("empty image"))
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	width := Width * Scale
	pad := Padding * Scale
	gap := Gap * Scale
	content := width - 2*pad
	imageHeight := content * sb.Dy() / sb.Dx()

	wordLines := SplitHeadline(capitalize(r.Word), content, measurer(c.faces.word))
	defLines := Wrap(r.Definition, content, measurer(c.faces.definition))

	height := pad + imageHeight + pad +
		len(wordLines)*wordLineHeight*Scale + gap +
		len(defLines)*definitionHeight*Scale + gap +
		footerHeight*Scale + pad

	canvas := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)
	xdraw.CatmullRom.Scale(canvas, image.Rect(pad, pad, pad+content, pad+imageHeight), src, sb, xdraw.Over, nil)

	y := pad + imageHeight + pad
	y = c.drawLines(canvas, c.faces.word, color.White, wordLines, pad, y, wordLineHeight*Scale)
	y += gap
	y = c.drawLines(canvas, c.faces.definition, definitionColor, defLines, pad, y, definitionHeight*Scale)
	y += gap
	c.drawFooter(canvas, y, footerHeight*Scale)

	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas); err != nil {
		return nil, errx.New(errx.EncodingError, "compose", err)
	}

	word := capitalize(r.Word)
	return &Asset{
		ResultID:        r.ID,
		File:            buf.Bytes(),
		FileName:        fmt.Sprintf("wurdle-%s.png", internal.SanitizeFilename(r.Word)),
		MimeType:        "image/png",
		Title:           fmt.Sprintf("%s: %s", FooterBrand, word),
		Text:            fmt.Sprintf("%s %s: %s", word, r.Pronunciation, r.Definition),
		DataURL:         concept.EncodeDataURI("image/png", buf.Bytes()),
		Width:           width,
		Height:          height,
		WordLines:       wordLines,
		DefinitionLines: defLines,
	}, nil
}

// drawLines paints lines top-down starting at top and returns the y below
// the last line.
func (c *Composer) drawLines(dst draw.Image, face font.Face, col color.Color, lines []string, x, top, lineHeight int) int {
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(col), Face: face}
	for _, line := range lines {
		d.Dot = fixed.P(x, baseline(face, top, lineHeight))
		d.DrawString(line)
		top += lineHeight
	}
	return top
}

// drawFooter paints the two-face caption centred on one baseline.
func (c *Composer) drawFooter(dst draw.Image, top, lineHeight int) {
	prefixW := font.MeasureString(c.faces.footer, FooterPrefix)
	brandW := font.MeasureString(c.faces.footerBold, FooterBrand)
	x := (fixed.I(dst.Bounds().Dx()) - prefixW - brandW) / 2
	y := baseline(c.faces.footer, top, lineHeight)

	d := &font.Drawer{Dst: dst, Src: image.NewUniform(definitionColor), Face: c.faces.footer, Dot: fixed.Point26_6{X: x, Y: fixed.I(y)}}
	d.DrawString(FooterPrefix)
	d.Face = c.faces.footerBold
	d.Src = image.NewUniform(color.White)
	d.DrawString(FooterBrand)
}

// baseline centres the face's ascent+descent inside a line box.
func baseline(face font.Face, top, lineHeight int) int {
	m := face.Metrics()
	textHeight := (m.Ascent + m.Descent).Ceil()
	return top + (lineHeight-textHeight)/2 + m.Ascent.Ceil()
}

func capitalize(s string) string {
	s = strings.TrimSpace(s)
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
