package share

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
)

// Placeholders understood in a share command template.
const (
	PlaceholderURL   = "{url}"
	PlaceholderFile  = "{file}"
	PlaceholderTitle = "{title}"
	PlaceholderText  = "{text}"
)

// CommandSharer shares through an external program, e.g.
// "kdeconnect-cli --share {file}" or "xdg-open {url}". Placeholders are
// substituted per argument, no shell is involved.
type CommandSharer struct {
	args    []string
	tempDir string
	run     func(name string, args ...string) error

	mu    sync.Mutex
	files []string
}

// NewCommandSharer parses template. It returns nil for an empty template.
func NewCommandSharer(template string) *CommandSharer {
	args := strings.Fields(template)
	if len(args) == 0 {
		return nil
	}
	return &CommandSharer{
		args:    args,
		tempDir: os.TempDir(),
		run: func(name string, args ...string) error {
			return exec.Command(name, args...).Run()
		},
	}
}

// IsAvailable checks that the program exists.
func (c *CommandSharer) IsAvailable() error {
	if _, err := exec.LookPath(c.args[0]); err != nil {
		return fmt.Errorf("share command %s not found: %w", c.args[0], err)
	}
	return nil
}

func (c *CommandSharer) uses(placeholder string) bool {
	for _, a := range c.args[1:] {
		if strings.Contains(a, placeholder) {
			return true
		}
	}
	return false
}

// CanShare reports whether p carries every value the template needs. Data
// URIs are not passed to programs.
func (c *CommandSharer) CanShare(p Payload) bool {
	if c.uses(PlaceholderURL) && (p.URL == "" || strings.HasPrefix(p.URL, "data:")) {
		return false
	}
	if c.uses(PlaceholderFile) && len(p.File) == 0 {
		return false
	}
	if !c.uses(PlaceholderURL) && !c.uses(PlaceholderFile) {
		return false
	}
	return true
}

// Share writes the file if needed and runs the program in the background.
func (c *CommandSharer) Share(p Payload, done func(error)) error {
	if !c.CanShare(p) {
		return errors.New("payload not supported by share command")
	}
	var path string
	if c.uses(PlaceholderFile) {
		f, err := os.CreateTemp(c.tempDir, "wurdle-*"+filepath.Ext(p.FileName))
		if err != nil {
			return fmt.Errorf("failed to create temp file: %w", err)
		}
		if _, err := f.Write(p.File); err != nil {
			f.Close()
			os.Remove(f.Name())
			return fmt.Errorf("failed to write temp file: %w", err)
		}
		f.Close()
		path = f.Name()
		c.mu.Lock()
		c.files = append(c.files, path)
		c.mu.Unlock()
	}

	r := strings.NewReplacer(
		PlaceholderURL, p.URL,
		PlaceholderFile, path,
		PlaceholderTitle, p.Title,
		PlaceholderText, p.Text,
	)
	args := make([]string, 0, len(c.args)-1)
	for _, a := range c.args[1:] {
		args = append(args, r.Replace(a))
	}

	go func() {
		err := c.run(c.args[0], args...)
		if err != nil {
			err = fmt.Errorf("%s failed: %w", c.args[0], err)
		}
		if done != nil {
			done(err)
		}
	}()
	return nil
}

// Cleanup removes temp files written for sharing.
func (c *CommandSharer) Cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, f := range c.files {
		os.Remove(f)
	}
	c.files = nil
}
