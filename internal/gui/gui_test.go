package gui

import (
	"bytes"
	"errors"
	"fmt"
	"image/png"
	"strings"
	"testing"

	"fyne.io/fyne/v2/test"

	"codeberg.org/snonux/wurdle/internal/errx"
	"codeberg.org/snonux/wurdle/internal/testutil"
)

func TestReact(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		want     reaction
		wantText string
	}{
		{"nil", nil, reactSilent, ""},
		{"cancelled", errx.New(errx.Cancelled, "generate", nil), reactSilent, ""},
		{"busy", errx.New(errx.Busy, "generate", nil), reactSilent, ""},
		{"quota", errx.New(errx.QuotaExceeded, "generate", nil), reactUpgrade, ""},
		{"auth", errx.New(errx.AuthRequired, "word", errors.New("401")), reactCredentials, ""},
		{"validation", errx.New(errx.ValidationFailed, "generate", nil), reactSilent, ""},
		{"upstream", errx.New(errx.UpstreamError, "word", errors.New("500")), reactInline, msgGenerateFailed},
		{"image", errx.New(errx.ImageGenerationFailed, "image", nil), reactInline, msgGenerateFailed},
		{"upload", errx.New(errx.UploadFailed, "host", nil), reactInline, msgShareFailed},
		{"wrapped quota", fmt.Errorf("batch: %w", errx.New(errx.QuotaExceeded, "generate", nil)), reactUpgrade, ""},
		{"plain", errors.New("boom"), reactInline, "boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, text := react(tt.err)
			if got != tt.want || text != tt.wantText {
				t.Errorf("react() = (%v, %q), want (%v, %q)", got, text, tt.want, tt.wantText)
			}
		})
	}
}

func TestDictationMessage(t *testing.T) {
	if got := dictationMessage(errx.PermissionDenied); got != msgMicDenied {
		t.Errorf("PermissionDenied message = %q", got)
	}
	if got := dictationMessage(errx.Cancelled); got != "" {
		t.Errorf("Cancelled should be silent, got %q", got)
	}
	if got := dictationMessage(errx.UpstreamError); got != msgDictationFailed {
		t.Errorf("UpstreamError message = %q", got)
	}
}

func TestUpgradeTitle(t *testing.T) {
	if got := upgradeTitle(5); !strings.Contains(got, "5 free") {
		t.Errorf("upgradeTitle(5) = %q", got)
	}
}

func TestRenderIcon(t *testing.T) {
	data, err := renderIcon(64)
	if err != nil {
		t.Fatalf("renderIcon() error = %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("icon is no PNG: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 64 || b.Dy() != 64 {
		t.Errorf("icon size = %v", b)
	}
	if res := GetAppIcon(); len(res.Content()) == 0 {
		t.Error("GetAppIcon() returned an empty resource")
	}
}

func TestLogViewerWriter(t *testing.T) {
	test.NewTempApp(t)
	v := NewLogViewer()

	w := v.Writer()
	if _, err := w.Write([]byte(`{"level":"info","component":"gui","message":"hello"}` + "\n")); err != nil {
		t.Fatal(err)
	}
	v.AddMessage("second")

	msgs := v.Messages()
	if len(msgs) != 2 {
		t.Fatalf("messages = %q", msgs)
	}
	if msgs[0] != "second" || !strings.Contains(msgs[1], "hello") {
		t.Errorf("messages not newest first: %q", msgs)
	}

	v.Clear()
	if len(v.Messages()) != 0 {
		t.Error("Clear() kept messages")
	}
}

func TestLogViewerLimit(t *testing.T) {
	test.NewTempApp(t)
	v := NewLogViewer()
	v.maxMessages = 3
	for i := range 5 {
		v.AddMessage(fmt.Sprint(i))
	}
	if got := strings.Join(v.Messages(), ","); got != "4,3,2" {
		t.Errorf("messages = %s", got)
	}
}

func TestLevelMeterClamps(t *testing.T) {
	test.NewTempApp(t)
	m := NewLevelMeter(24)
	m.SetLevels([]float64{-1, 0.5, 2})

	got := m.BarHeights()
	want := [3]float32{6, 15, 24}
	if got != want {
		t.Errorf("BarHeights() = %v, want %v", got, want)
	}

	m.SetLevels(nil)
	if got := m.BarHeights(); got != [3]float32{6, 6, 6} {
		t.Errorf("BarHeights() after reset = %v", got)
	}
}

func TestImageDisplay(t *testing.T) {
	test.NewTempApp(t)
	d := NewImageDisplay()

	d.SetDataURI("not a data uri")
	if !d.imageLabel.Visible() || d.imageCanvas.Image != nil {
		t.Error("invalid URI should show an error")
	}

	d.SetDataURI(testutil.PNGDataURI(t, 4, 4))
	if d.imageLabel.Visible() || d.imageCanvas.Image == nil {
		t.Error("valid URI should show the image")
	}

	d.Clear()
	if d.imageCanvas.Image != nil {
		t.Error("Clear() kept the image")
	}
}
