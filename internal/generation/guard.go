package generation

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"codeberg.org/snonux/wurdle/internal/concept"
	"codeberg.org/snonux/wurdle/internal/logx"
)

// BreakerSettings returns the circuit breaker settings used for a provider.
// Three consecutive failures open the breaker for 30 seconds. Auth errors
// and caller cancellation do not count as failures.
func BreakerSettings(name string) gobreaker.Settings {
	return gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= 3
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled) || IsAuthError(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logx.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state changed")
		},
	}
}

// GuardedWords wraps a WordGenerator with a circuit breaker.
type GuardedWords struct {
	next WordGenerator
	cb   *gobreaker.CircuitBreaker
}

// GuardWords wraps next in a breaker named name.
func GuardWords(name string, next WordGenerator) *GuardedWords {
	return &GuardedWords{next: next, cb: gobreaker.NewCircuitBreaker(BreakerSettings(name))}
}

// GenerateWord implements WordGenerator.
func (g *GuardedWords) GenerateWord(ctx context.Context, conceptText string) (concept.WordData, error) {
	out, err := g.cb.Execute(func() (interface{}, error) {
		return g.next.GenerateWord(ctx, conceptText)
	})
	if err != nil {
		return concept.WordData{}, err
	}
	return out.(concept.WordData), nil
}

// GuardedImages wraps an ImageGenerator with a circuit breaker and a rate
// limiter. A nil limiter disables pacing.
type GuardedImages struct {
	next    ImageGenerator
	cb      *gobreaker.CircuitBreaker
	limiter *rate.Limiter
}

// DefaultImageRate allows one image request every six seconds with a burst
// of two.
func DefaultImageRate() *rate.Limiter {
	return rate.NewLimiter(rate.Every(6*time.Second), 2)
}

// GuardImages wraps next in a breaker named name, paced by limiter.
func GuardImages(name string, next ImageGenerator, limiter *rate.Limiter) *GuardedImages {
	return &GuardedImages{
		next:    next,
		cb:      gobreaker.NewCircuitBreaker(BreakerSettings(name)),
		limiter: limiter,
	}
}

// GenerateImage implements ImageGenerator.
func (g *GuardedImages) GenerateImage(ctx context.Context, conceptText string) (string, error) {
	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return "", err
		}
	}
	out, err := g.cb.Execute(func() (interface{}, error) {
		return g.next.GenerateImage(ctx, conceptText)
	})
	if err != nil {
		return "", err
	}
	return out.(string), nil
}
