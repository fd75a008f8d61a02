package errx

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorIsKind(t *testing.T) {
	base := errors.New("boom")
	err := fmt.Errorf("generate: %w", New(QuotaExceeded, "generate", base))

	if !errors.Is(err, QuotaExceeded) {
		t.Error("expected errors.Is to match QuotaExceeded")
	}
	if errors.Is(err, UpstreamError) {
		t.Error("QuotaExceeded must not match UpstreamError")
	}
	if !errors.Is(err, base) {
		t.Error("expected the wrapped error to stay reachable")
	}
}

func TestImageGenerationFailedIsUpstream(t *testing.T) {
	err := New(ImageGenerationFailed, "image", nil)
	if !errors.Is(err, UpstreamError) {
		t.Error("ImageGenerationFailed should match UpstreamError")
	}
	if !errors.Is(err, ImageGenerationFailed) {
		t.Error("ImageGenerationFailed should match itself")
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, Unknown},
		{"plain", errors.New("x"), Unknown},
		{"wrapped", fmt.Errorf("a: %w", New(AuthRequired, "", nil)), AuthRequired},
		{"bare kind", Cancelled, Cancelled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSilent(t *testing.T) {
	if !Silent(New(ValidationFailed, "", nil)) {
		t.Error("validation failures are silent")
	}
	if !Silent(New(Busy, "", nil)) {
		t.Error("busy rejections are silent")
	}
	if Silent(New(UpstreamError, "", nil)) {
		t.Error("upstream errors are surfaced")
	}
}

func TestErrorMessage(t *testing.T) {
	err := New(UpstreamError, "word", errors.New("503"))
	if got, want := err.Error(), "word: upstream error: 503"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
