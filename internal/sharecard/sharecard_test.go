package sharecard

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
	"unicode/utf8"

	"codeberg.org/snonux/wurdle/internal/concept"
	"codeberg.org/snonux/wurdle/internal/errx"
	"codeberg.org/snonux/wurdle/internal/testutil"
)

// fixedWidth measures every rune as 10 pixels.
func fixedWidth(s string) int {
	return utf8.RuneCountInString(s) * 10
}

func TestWrap(t *testing.T) {
	tests := []struct {
		name string
		text string
		max  int
		want []string
	}{
		{"empty", "", 100, nil},
		{"single line", "a toaster", 100, []string{"a toaster"}},
		{"breaks", "the quick brown fox jumps", 100, []string{"the quick", "brown fox", "jumps"}},
		{"long word truncated", "a supercalifragilistic word", 100, []string{"a", "supercali…", "word"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Wrap(tt.text, tt.max, fixedWidth)
			if fmt.Sprint(got) != fmt.Sprint(tt.want) {
				t.Errorf("Wrap() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWrapInvariant(t *testing.T) {
	text := "A sudden overwhelming urge to reorganize a sock drawer at three in the morning " +
		"while contemplating pneumonoultramicroscopicsilicovolcanoconiosis and the heat death of the universe"
	for _, max := range []int{60, 120, 250, 400} {
		for _, line := range Wrap(text, max, fixedWidth) {
			if fixedWidth(line) > max {
				t.Errorf("max %d: line %q is %d wide", max, line, fixedWidth(line))
			}
		}
	}
}

func TestSplitHeadline(t *testing.T) {
	if got := SplitHeadline("gloop", 100, fixedWidth); len(got) != 1 || got[0] != "gloop" {
		t.Errorf("short word = %q", got)
	}

	got := SplitHeadline("thermopsychodynamics", 100, fixedWidth)
	if len(got) != 2 {
		t.Fatalf("lines = %q, want 2", got)
	}
	if got[0] != "thermopsyc" || got[1] != "hodynamics" {
		t.Errorf("split = %q", got)
	}

	got = SplitHeadline(strings.Repeat("x", 35), 100, fixedWidth)
	if len(got) != 2 || !strings.HasSuffix(got[1], Ellipsis) || fixedWidth(got[1]) > 100 {
		t.Errorf("overflowing second line not truncated: %q", got)
	}
}

func testResult(t *testing.T) *concept.Result {
	t.Helper()
	return concept.NewResult("a toaster that judges you", concept.WordData{
		Word:          "Toastocriticism",
		Pronunciation: "/toʊstoʊˈkrɪtɪsɪzəm/",
		Definition:    "The persistent sensation of being silently evaluated by a kitchen appliance while preparing breakfast.",
		Discovery:     "Lyon, 1893.",
	}, testutil.PNGDataURI(t, 30, 40))
}

func TestComposeLayout(t *testing.T) {
	c, err := NewComposer(nil)
	if err != nil {
		t.Fatalf("NewComposer() error = %v", err)
	}
	r := testResult(t)

	a, err := c.Compose(context.Background(), r)
	if err != nil {
		t.Fatalf("Compose() error = %v", err)
	}
	if a.Width != Width*Scale {
		t.Errorf("Width = %d", a.Width)
	}
	content := (Width - 2*Padding) * Scale
	imageHeight := content * 40 / 30
	want := Padding*Scale + imageHeight + Padding*Scale +
		len(a.WordLines)*wordLineHeight*Scale + Gap*Scale +
		len(a.DefinitionLines)*definitionHeight*Scale + Gap*Scale +
		footerHeight*Scale + Padding*Scale
	if a.Height != want {
		t.Errorf("Height = %d, want %d", a.Height, want)
	}
	if len(a.DefinitionLines) < 2 {
		t.Errorf("definition should wrap, got %q", a.DefinitionLines)
	}
	measure := measurer(c.faces.definition)
	for _, line := range a.DefinitionLines {
		if measure(line) > content && !strings.HasSuffix(line, Ellipsis) {
			t.Errorf("line %q exceeds the content width", line)
		}
	}
	if a.ResultID != r.ID || a.MimeType != "image/png" || !strings.HasPrefix(a.DataURL, "data:image/png;base64,") {
		t.Errorf("asset metadata = %+v", a)
	}
	if a.FileName != "wurdle-toastocriticism.png" {
		t.Errorf("FileName = %q", a.FileName)
	}
}

func TestComposeIsIdempotent(t *testing.T) {
	c, err := NewComposer(nil)
	if err != nil {
		t.Fatal(err)
	}
	r := testResult(t)

	a, err := c.Compose(context.Background(), r)
	if err != nil {
		t.Fatal(err)
	}
	b, err := c.Compose(context.Background(), r)
	if err != nil {
		t.Fatal(err)
	}
	if a.Height != b.Height || len(a.WordLines) != len(b.WordLines) || len(a.DefinitionLines) != len(b.DefinitionLines) {
		t.Errorf("compose not idempotent: %dx%d vs %dx%d", a.Width, a.Height, b.Width, b.Height)
	}
	if string(a.File) != string(b.File) {
		t.Error("PNG bytes differ between runs")
	}
}

func TestComposeBadImage(t *testing.T) {
	c, err := NewComposer(nil)
	if err != nil {
		t.Fatal(err)
	}
	for _, img := range []string{"", "not a uri", "data:image/png;base64,aGVsbG8="} {
		r := testResult(t)
		r.Image = img
		if _, err := c.Compose(context.Background(), r); !errors.Is(err, errx.ImageLoadError) {
			t.Errorf("Compose(%q) error = %v, want ImageLoadError", img, err)
		}
	}
}

type failingHoster struct{}

func (failingHoster) Upload(context.Context, []byte, string) (string, error) {
	return "", errx.New(errx.UploadFailed, "upload", errors.New("offline"))
}

func TestComposeUploadFailureIsNonFatal(t *testing.T) {
	c, err := NewComposer(failingHoster{})
	if err != nil {
		t.Fatal(err)
	}
	a, err := c.Compose(context.Background(), testResult(t))
	if err != nil {
		t.Fatalf("Compose() error = %v", err)
	}
	if a.HostedURL != "" {
		t.Errorf("HostedURL = %q, want empty", a.HostedURL)
	}
}

func TestImgBBHoster(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.URL.Query().Get("key") != "secret" {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprint(w, `{"success":false,"error":{"message":"Invalid API v1 key."}}`)
			return
		}
		if err := r.ParseForm(); err != nil || r.PostForm.Get("image") == "" {
			t.Errorf("missing image field")
		}
		fmt.Fprint(w, `{"success":true,"data":{"url":"https://i.ibb.co/abc/card.png"}}`)
	}))
	defer srv.Close()

	h := NewImgBBHoster(srv.URL, "secret")
	png := testutil.PNG(t, 4, 4)
	for range 2 {
		u, err := h.Upload(context.Background(), png, "card.png")
		if err != nil {
			t.Fatalf("Upload() error = %v", err)
		}
		if u != "https://i.ibb.co/abc/card.png" {
			t.Errorf("url = %q", u)
		}
	}
	if calls.Load() != 1 {
		t.Errorf("server calls = %d, want 1 (deduplicated)", calls.Load())
	}

	bad := NewImgBBHoster(srv.URL, "wrong")
	if _, err := bad.Upload(context.Background(), png, "card.png"); !errors.Is(err, errx.UploadFailed) {
		t.Errorf("error = %v, want UploadFailed", err)
	}
}

// gatedRenderer blocks compositions for results listed in gates.
type gatedRenderer struct {
	mu    sync.Mutex
	gates map[string]chan struct{}
}

func (g *gatedRenderer) Compose(ctx context.Context, r *concept.Result) (*Asset, error) {
	g.mu.Lock()
	gate := g.gates[r.ID]
	g.mu.Unlock()
	if gate != nil {
		<-gate
	}
	return &Asset{ResultID: r.ID}, nil
}

func TestPreparerSupersedesStaleWork(t *testing.T) {
	first := concept.NewResult("one two three", concept.FallbackWord, "x")
	second := concept.NewResult("four five six", concept.FallbackWord, "y")
	gate := make(chan struct{})
	g := &gatedRenderer{gates: map[string]chan struct{}{first.ID: gate}}

	p := NewPreparer(g)
	ready := make(chan *Asset, 2)
	p.OnReady = func(a *Asset) { ready <- a }

	p.Set(first)
	p.Set(second)
	select {
	case a := <-ready:
		if a.ResultID != second.ID {
			t.Fatalf("ready asset for %s, want %s", a.ResultID, second.ID)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("second asset never became ready")
	}

	close(gate)
	time.Sleep(50 * time.Millisecond)
	a, ok := p.Asset()
	if !ok || a.ResultID != second.ID {
		t.Errorf("stale completion overwrote the newer asset: %+v", a)
	}
	if len(ready) != 0 {
		t.Error("OnReady fired for a stale result")
	}

	p.Set(nil)
	if _, ok := p.Asset(); ok || p.Pending() {
		t.Error("Set(nil) should clear the asset")
	}
}
