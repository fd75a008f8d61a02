package generation

import (
	"context"
	"errors"
	"strings"

	"github.com/sony/gobreaker"

	"codeberg.org/snonux/wurdle/internal/errx"
)

// AuthSignatures are upstream error-message fragments that mean the
// configured credentials are missing, invalid or lack access.
var AuthSignatures = []string{
	"Requested entity was not found",
	"API key not valid",
	"API_KEY_INVALID",
	"Incorrect API key provided",
	"You didn't provide an API key",
}

// IsAuthError reports whether err carries one of AuthSignatures.
func IsAuthError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	for _, sig := range AuthSignatures {
		if strings.Contains(msg, sig) {
			return true
		}
	}
	return false
}

// classify normalises a provider error into the errx taxonomy.
func classify(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case IsAuthError(err):
		return errx.New(errx.AuthRequired, op, err)
	case errx.KindOf(err) != errx.Unknown:
		return err
	case errors.Is(err, context.Canceled):
		return errx.New(errx.Cancelled, op, err)
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return errx.New(errx.UpstreamError, op, errors.New("provider temporarily unavailable"))
	default:
		return errx.New(errx.UpstreamError, op, err)
	}
}
