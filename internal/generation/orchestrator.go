// Package generation turns a concept into a concept.Result by asking a word
// provider and an image provider at the same time. Both must succeed; no
// word-only or image-only result is ever returned.
package generation

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"codeberg.org/snonux/wurdle/internal/concept"
	"codeberg.org/snonux/wurdle/internal/errx"
	"codeberg.org/snonux/wurdle/internal/logx"
)

// WordGenerator produces the textual half of a result.
type WordGenerator interface {
	GenerateWord(ctx context.Context, conceptText string) (concept.WordData, error)
}

// ImageGenerator produces the sketch as a data URI.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, conceptText string) (string, error)
}

// Quota is the daily generation budget.
type Quota interface {
	Remaining() int
	Increment()
}

// Orchestrator runs at most one generation at a time.
type Orchestrator struct {
	words  WordGenerator
	images ImageGenerator
	quota  Quota
	log    zerolog.Logger

	mu   sync.Mutex
	busy bool
	seq  uint64
}

// NewOrchestrator wires the providers and the quota.
func NewOrchestrator(words WordGenerator, images ImageGenerator, quota Quota) *Orchestrator {
	return &Orchestrator{
		words:  words,
		images: images,
		quota:  quota,
		log:    logx.With("generation"),
	}
}

// Busy reports whether a generation is in flight.
func (o *Orchestrator) Busy() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.busy
}

// Remaining exposes the quota for the presentation layer.
func (o *Orchestrator) Remaining() int {
	return o.quota.Remaining()
}

// Cancel abandons the in-flight generation. Its requests keep running but
// their outcome is dropped and the busy flag is cleared right away. It
// reports whether anything was cancelled.
func (o *Orchestrator) Cancel() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.busy {
		return false
	}
	o.seq++
	o.busy = false
	o.log.Debug().Uint64("seq", o.seq).Msg("generation cancelled")
	return true
}

// Generate validates text, checks the quota, then requests word and image
// concurrently. On joint success the quota is incremented and the merged
// result returned.
func (o *Orchestrator) Generate(ctx context.Context, text string) (*concept.Result, error) {
	if !concept.Valid(text) {
		return nil, errx.New(errx.ValidationFailed, "generate", nil)
	}

	o.mu.Lock()
	if o.busy {
		o.mu.Unlock()
		return nil, errx.New(errx.Busy, "generate", nil)
	}
	if o.quota.Remaining() <= 0 {
		o.mu.Unlock()
		return nil, errx.New(errx.QuotaExceeded, "generate", nil)
	}
	o.busy = true
	o.seq++
	id := o.seq
	o.mu.Unlock()

	o.log.Info().Uint64("seq", id).Str("concept", text).Msg("generation started")
	word, image, err := o.join(ctx, text)

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.seq != id {
		o.log.Debug().Uint64("seq", id).Msg("dropping result of cancelled generation")
		return nil, errx.New(errx.Cancelled, "generate", nil)
	}
	o.busy = false

	if err != nil {
		o.log.Error().Err(err).Uint64("seq", id).Msg("generation failed")
		return nil, err
	}

	o.quota.Increment()
	result := concept.NewResult(text, word, image)
	o.log.Info().Uint64("seq", id).Str("word", result.Word).Msg("generation finished")
	return result, nil
}

// join issues both requests and waits for both. The first failure wins.
func (o *Orchestrator) join(ctx context.Context, text string) (concept.WordData, string, error) {
	var (
		word  concept.WordData
		image string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		w, err := o.words.GenerateWord(gctx, text)
		if err != nil {
			return classify("word", err)
		}
		word = w
		return nil
	})
	g.Go(func() error {
		img, err := o.images.GenerateImage(gctx, text)
		if err != nil {
			return classify("image", err)
		}
		image = img
		return nil
	})
	if err := g.Wait(); err != nil {
		return concept.WordData{}, "", err
	}
	if image == "" {
		return concept.WordData{}, "", errx.New(errx.ImageGenerationFailed, "image", errors.New("empty image"))
	}
	return word, image, nil
}
