// Package share hands a composed card to the platform's share facility and
// falls back to copying a link or saving the file when that is not possible.
package share

import (
	"errors"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"codeberg.org/snonux/wurdle/internal/logx"
	"codeberg.org/snonux/wurdle/internal/sharecard"
)

// MaxDataURLLength is the largest data URI offered as a share URL.
const MaxDataURLLength = 500_000

// ErrCancelled is reported by a Native sharer when the user dismissed the
// share sheet. It is never surfaced.
var ErrCancelled = errors.New("share cancelled")

// Payload is one share attempt. Empty fields are omitted.
type Payload struct {
	URL      string
	File     []byte
	FileName string
	MimeType string
	Title    string
	Text     string
}

// Native is a platform share facility.
type Native interface {
	// CanShare reports whether p can be shared at all.
	CanShare(p Payload) bool
	// Share starts sharing p. A returned error is a synchronous rejection;
	// done receives the final outcome later.
	Share(p Payload, done func(error)) error
}

// Clipboard receives plain text.
type Clipboard interface {
	SetContent(text string) error
}

// Downloader saves a file locally and returns its path.
type Downloader interface {
	Save(name string, data []byte) (string, error)
}

// Meta overrides the card's title and text.
type Meta struct {
	Title string
	Text  string
}

// Dispatcher shares cards. Native may be nil.
type Dispatcher struct {
	Native     Native
	Clipboard  Clipboard
	Downloader Downloader

	// OnLinkCopied is called once when the fallback copied a link.
	OnLinkCopied func()
	// OnSaved is called with the path when the fallback saved the file.
	OnSaved func(path string)
	// OnError is called when even the last fallback failed.
	OnError func(error)

	log zerolog.Logger
}

// NewDispatcher creates a dispatcher.
func NewDispatcher(native Native, clipboard Clipboard, downloader Downloader) *Dispatcher {
	return &Dispatcher{
		Native:     native,
		Clipboard:  clipboard,
		Downloader: downloader,
		log:        logx.With("share"),
	}
}

// Candidates lists payloads from most to least preferred.
func Candidates(a *sharecard.Asset, meta Meta) []Payload {
	var out []Payload
	if a.HostedURL != "" {
		out = append(out,
			Payload{URL: a.HostedURL, Title: meta.Title, Text: meta.Text},
			Payload{URL: a.HostedURL},
		)
	}
	if a.DataURL != "" && len(a.DataURL) < MaxDataURLLength {
		out = append(out, Payload{URL: a.DataURL})
	}
	file := Payload{File: a.File, FileName: a.FileName, MimeType: a.MimeType}
	withMeta := file
	withMeta.Title, withMeta.Text = meta.Title, meta.Text
	return append(out, withMeta, file)
}

// Share offers a to the native facility and falls back when it is missing
// or rejects every candidate. It never blocks on the outcome.
func (d *Dispatcher) Share(a *sharecard.Asset, meta Meta) {
	if a == nil {
		return
	}
	if meta.Title == "" {
		meta.Title = a.Title
	}
	if meta.Text == "" {
		meta.Text = a.Text
	}

	if d.Native != nil {
		for i, p := range Candidates(a, meta) {
			if !d.Native.CanShare(p) {
				continue
			}
			var once sync.Once
			err := d.Native.Share(p, func(err error) {
				once.Do(func() { d.settle(a, meta, err) })
			})
			if err != nil {
				d.log.Debug().Err(err).Int("candidate", i).Msg("share candidate rejected")
				continue
			}
			return
		}
	}
	d.fallback(a, meta)
}

func (d *Dispatcher) settle(a *sharecard.Asset, meta Meta, err error) {
	switch {
	case err == nil:
		d.log.Info().Str("result", a.ResultID).Msg("card shared")
	case errors.Is(err, ErrCancelled):
		d.log.Debug().Msg("share dismissed")
	default:
		d.log.Warn().Err(err).Msg("share failed, using fallback")
		d.fallback(a, meta)
	}
}

// fallback copies "text\nurl" when a hosted link exists, otherwise saves the
// file.
func (d *Dispatcher) fallback(a *sharecard.Asset, meta Meta) {
	if a.HostedURL != "" && d.Clipboard != nil {
		text := strings.TrimSpace(meta.Text + "\n" + a.HostedURL)
		err := d.Clipboard.SetContent(text)
		if err == nil {
			if d.OnLinkCopied != nil {
				d.OnLinkCopied()
			}
			return
		}
		d.log.Warn().Err(err).Msg("clipboard write failed")
	}
	if d.Downloader == nil {
		d.fail(errors.New("no way to share the card"))
		return
	}
	path, err := d.Downloader.Save(a.FileName, a.File)
	if err != nil {
		d.fail(err)
		return
	}
	d.log.Info().Str("path", path).Msg("card saved")
	if d.OnSaved != nil {
		d.OnSaved(path)
	}
}

func (d *Dispatcher) fail(err error) {
	d.log.Error().Err(err).Msg("failed to share card")
	if d.OnError != nil {
		d.OnError(err)
	}
}
