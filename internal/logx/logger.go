// Package logx configures the process-wide zerolog logger.
package logx

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Environment selects the log format.
type Environment string

const (
	Development Environment = "development"
	Production  Environment = "production"
)

// ParseEnvironment normalises v; unknown values fall back to Development.
func ParseEnvironment(v string) Environment {
	if Environment(strings.ToLower(strings.TrimSpace(v))) == Production {
		return Production
	}
	return Development
}

// Options configure Init.
type Options struct {
	Environment Environment
	Level       string
	// Extra receives a copy of every log line (the GUI diagnostics window).
	Extra io.Writer
}

// DefaultOptions log human readable output at debug level.
var DefaultOptions = Options{Environment: Development, Level: "debug"}

// switchWriter forwards to the output chosen by the latest Init, so loggers
// derived with With before a re-Init follow it.
type switchWriter struct {
	mu sync.RWMutex
	w  io.Writer
}

func (s *switchWriter) Write(p []byte) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.w.Write(p)
}

func (s *switchWriter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if lw, ok := s.w.(zerolog.LevelWriter); ok {
		return lw.WriteLevel(level, p)
	}
	return s.w.Write(p)
}

func (s *switchWriter) set(w io.Writer) {
	s.mu.Lock()
	s.w = w
	s.mu.Unlock()
}

var output = &switchWriter{w: os.Stderr}

func init() {
	log.Logger = zerolog.New(output).With().Timestamp().Logger()
}

func safe(opts ...Options) Options {
	if len(opts) == 0 {
		return DefaultOptions
	}
	return opts[0]
}

// Init replaces the global logger. The level is set globally and the
// output switched in place, so child loggers pick up both.
func Init(opts ...Options) {
	o := safe(opts...)

	var out io.Writer = os.Stderr
	if o.Environment != Production {
		out = zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
			w.Out = os.Stderr
		})
	}
	if o.Extra != nil {
		out = zerolog.MultiLevelWriter(out, o.Extra)
	}

	level, err := zerolog.ParseLevel(o.Level)
	if err != nil || o.Level == "" {
		level = zerolog.DebugLevel
		if o.Environment == Production {
			level = zerolog.InfoLevel
		}
	}

	output.set(out)
	zerolog.SetGlobalLevel(level)

	ctx := zerolog.New(output).With().Timestamp()
	if o.Environment != Production {
		ctx = ctx.Caller()
	}
	log.Logger = ctx.Logger()
}

func Debug() *zerolog.Event {
	return log.Debug()
}

func Info() *zerolog.Event {
	return log.Info()
}

func Warn() *zerolog.Event {
	return log.Warn()
}

func Error() *zerolog.Event {
	return log.Error()
}

// With returns a child logger tagged with the component name.
func With(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}
