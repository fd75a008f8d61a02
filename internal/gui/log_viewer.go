package gui

import (
	"io"
	"strings"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
	"github.com/rs/zerolog"
)

// LogViewer keeps recent log lines and shows them in the diagnostics window
type LogViewer struct {
	widget.BaseWidget

	container  *fyne.Container
	logEntry   *widget.Entry
	scrollView *container.Scroll

	mu          sync.Mutex
	messages    []string
	maxMessages int
	attached    bool
}

// NewLogViewer creates a new log viewer widget
func NewLogViewer() *LogViewer {
	v := &LogViewer{maxMessages: 1000}

	v.logEntry = widget.NewMultiLineEntry()
	v.logEntry.Disable()
	v.logEntry.Wrapping = fyne.TextWrapWord

	v.scrollView = container.NewScroll(v.logEntry)
	v.scrollView.SetMinSize(fyne.NewSize(600, 360))

	v.container = container.NewBorder(
		widget.NewLabel("Log messages (newest first):"),
		nil, nil, nil,
		v.scrollView,
	)

	v.ExtendBaseWidget(v)
	return v
}

// CreateRenderer implements fyne.Widget
func (v *LogViewer) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(v.container)
}

// Writer returns a writer for logx.Options.Extra. It renders zerolog's JSON
// lines in console format.
func (v *LogViewer) Writer() io.Writer {
	return zerolog.ConsoleWriter{
		Out:        logSink{v},
		NoColor:    true,
		TimeFormat: "15:04:05",
	}
}

type logSink struct{ v *LogViewer }

func (s logSink) Write(p []byte) (int, error) {
	if message := strings.TrimRight(string(p), "\n"); message != "" {
		s.v.AddMessage(message)
	}
	return len(p), nil
}

// Attach starts mirroring messages into the widget. Until then they are
// only buffered.
func (v *LogViewer) Attach() {
	v.mu.Lock()
	v.attached = true
	v.mu.Unlock()
	v.refresh()
}

// Detach stops UI updates, e.g. when the window is closed
func (v *LogViewer) Detach() {
	v.mu.Lock()
	v.attached = false
	v.mu.Unlock()
}

// AddMessage adds a message to the log
func (v *LogViewer) AddMessage(message string) {
	v.mu.Lock()
	v.messages = append([]string{message}, v.messages...)
	if len(v.messages) > v.maxMessages {
		v.messages = v.messages[:v.maxMessages]
	}
	attached := v.attached
	v.mu.Unlock()

	if attached {
		fyne.Do(v.refresh)
	}
}

// Messages returns the buffered messages, newest first
func (v *LogViewer) Messages() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]string(nil), v.messages...)
}

func (v *LogViewer) refresh() {
	text := strings.Join(v.Messages(), "\n")
	v.logEntry.SetText(text)
	v.scrollView.Offset = fyne.NewPos(0, 0)
	v.scrollView.Refresh()
}

// Clear clears all log messages
func (v *LogViewer) Clear() {
	v.mu.Lock()
	v.messages = v.messages[:0]
	attached := v.attached
	v.mu.Unlock()

	if attached {
		fyne.Do(v.refresh)
	}
}
