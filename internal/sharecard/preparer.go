package sharecard

import (
	"context"
	"sync"

	"codeberg.org/snonux/wurdle/internal/concept"
	"codeberg.org/snonux/wurdle/internal/logx"
)

// Renderer composes a card for a result.
type Renderer interface {
	Compose(ctx context.Context, r *concept.Result) (*Asset, error)
}

// Preparer keeps the card for the active result ready in the background.
// A newer Set always wins over an older one still in progress.
type Preparer struct {
	renderer Renderer

	// OnReady is called from the background goroutine once the card for the
	// current result is ready.
	OnReady func(*Asset)

	mu      sync.Mutex
	seq     uint64
	asset   *Asset
	pending bool
	cancel  context.CancelFunc
}

// NewPreparer creates a Preparer.
func NewPreparer(renderer Renderer) *Preparer {
	return &Preparer{renderer: renderer}
}

// Set discards the current card and starts preparing one for r. A nil r just
// clears.
func (p *Preparer) Set(r *concept.Result) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.seq++
	p.asset = nil
	p.pending = false
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	if r == nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.pending = true
	go p.prepare(ctx, p.seq, r)
}

func (p *Preparer) prepare(ctx context.Context, id uint64, r *concept.Result) {
	asset, err := p.renderer.Compose(ctx, r)

	p.mu.Lock()
	if p.seq != id {
		p.mu.Unlock()
		logx.Debug().Str("result", r.ID).Msg("dropping stale share card")
		return
	}
	p.pending = false
	if err != nil {
		p.mu.Unlock()
		logx.Error().Err(err).Str("result", r.ID).Msg("failed to prepare share card")
		return
	}
	p.asset = asset
	onReady := p.OnReady
	p.mu.Unlock()

	if onReady != nil {
		onReady(asset)
	}
}

// Asset returns the prepared card and whether it is ready.
func (p *Preparer) Asset() (*Asset, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.asset, p.asset != nil
}

// Pending reports whether a card is being prepared.
func (p *Preparer) Pending() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pending
}
