package dictation

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"runtime"
	"strconv"
)

// Microphone opens a stream of mono s16le PCM at SampleRate.
type Microphone interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}

// CommandMicrophone captures audio through the first capture tool found on
// the PATH.
type CommandMicrophone struct {
	lookPath func(string) (string, error)
}

// NewCommandMicrophone creates a microphone backed by arecord, SoX rec or
// ffmpeg.
func NewCommandMicrophone() *CommandMicrophone {
	return &CommandMicrophone{lookPath: exec.LookPath}
}

// IsAvailable checks that a capture tool is installed.
func (m *CommandMicrophone) IsAvailable() error {
	_, _, err := m.command()
	return err
}

func (m *CommandMicrophone) command() (string, []string, error) {
	rate := strconv.Itoa(SampleRate)
	if runtime.GOOS == "linux" {
		if _, err := m.lookPath("arecord"); err == nil {
			return "arecord", []string{"-q", "-f", "S16_LE", "-r", rate, "-c", "1", "-t", "raw"}, nil
		}
	}
	if _, err := m.lookPath("rec"); err == nil {
		return "rec", []string{"-q", "-t", "raw", "-b", "16", "-e", "signed-integer", "-r", rate, "-c", "1", "-"}, nil
	}
	if _, err := m.lookPath("ffmpeg"); err == nil {
		input := []string{"-f", "pulse", "-i", "default"}
		if runtime.GOOS == "darwin" {
			input = []string{"-f", "avfoundation", "-i", ":0"}
		}
		args := append([]string{"-loglevel", "quiet"}, input...)
		args = append(args, "-ac", "1", "-ar", rate, "-f", "s16le", "-")
		return "ffmpeg", args, nil
	}
	return "", nil, fmt.Errorf("no microphone capture tool found. Install arecord, sox or ffmpeg")
}

// Open starts the capture process. Closing the stream stops it.
func (m *CommandMicrophone) Open(ctx context.Context) (io.ReadCloser, error) {
	name, args, err := m.command()
	if err != nil {
		return nil, err
	}
	cmd := exec.CommandContext(ctx, name, args...)
	out, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s output: %w", name, err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", name, err)
	}
	return &captureStream{ReadCloser: out, cmd: cmd}, nil
}

type captureStream struct {
	io.ReadCloser
	cmd *exec.Cmd
}

func (c *captureStream) Close() error {
	if c.cmd.Process != nil {
		c.cmd.Process.Kill()
	}
	c.ReadCloser.Close()
	c.cmd.Wait()
	return nil
}
