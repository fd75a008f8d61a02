// Package errx defines the error taxonomy shared by the generation, dictation
// and share packages. Every failure that reaches the GUI is an *Error carrying
// one of the Kind values below, so the presentation layer can decide between
// silently blocking, routing to another screen or showing a message.
package errx

import (
	"errors"
	"fmt"
)

// Kind classifies a failure.
type Kind int

const (
	Unknown Kind = iota
	ValidationFailed
	Busy
	QuotaExceeded
	AuthRequired
	UpstreamError
	ImageGenerationFailed
	PermissionDenied
	ImageLoadError
	EncodingError
	UploadFailed
	Cancelled
)

func (k Kind) String() string {
	switch k {
	case ValidationFailed:
		return "validation failed"
	case Busy:
		return "generation already in flight"
	case QuotaExceeded:
		return "daily quota exceeded"
	case AuthRequired:
		return "credentials required"
	case UpstreamError:
		return "upstream error"
	case ImageGenerationFailed:
		return "image generation failed"
	case PermissionDenied:
		return "permission denied"
	case ImageLoadError:
		return "image load error"
	case EncodingError:
		return "encoding error"
	case UploadFailed:
		return "upload failed"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown error"
	}
}

// Error implements the error interface so a bare Kind can be used as a
// sentinel target: errors.Is(err, errx.QuotaExceeded).
func (k Kind) Error() string {
	return k.String()
}

// Error wraps an underlying error with its Kind and the operation that failed.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e.Err == nil && e.Op == "":
		return e.Kind.String()
	case e.Err == nil:
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	case e.Op == "":
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	default:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	}
}

// Unwrap exposes the underlying error for errors.Is / errors.As support.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is this error's Kind. ImageGenerationFailed is
// also an UpstreamError.
func (e *Error) Is(target error) bool {
	k, ok := target.(Kind)
	if !ok {
		return false
	}
	if k == e.Kind {
		return true
	}
	return k == UpstreamError && e.Kind == ImageGenerationFailed
}

// New creates an *Error.
func New(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf returns the Kind of the first *Error in err's chain, or Unknown.
func KindOf(err error) Kind {
	if err == nil {
		return Unknown
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	var k Kind
	if errors.As(err, &k) {
		return k
	}
	return Unknown
}

// Silent reports whether the failure should not be surfaced to the user.
func Silent(err error) bool {
	switch KindOf(err) {
	case ValidationFailed, Busy, Cancelled:
		return true
	}
	return false
}
