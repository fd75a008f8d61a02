package share

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"codeberg.org/snonux/wurdle/internal"
)

// DownloadOptions configures where cards are saved
type DownloadOptions struct {
	OutputDir string // Directory to save cards
	CreateDir bool   // Create output directory if it doesn't exist
}

// DefaultDownloadOptions saves into ~/Downloads when it exists and the
// working directory otherwise
func DefaultDownloadOptions() *DownloadOptions {
	dir := "."
	if home, err := os.UserHomeDir(); err == nil {
		if info, err := os.Stat(filepath.Join(home, "Downloads")); err == nil && info.IsDir() {
			dir = filepath.Join(home, "Downloads")
		}
	}
	return &DownloadOptions{OutputDir: dir, CreateDir: true}
}

// FileDownloader saves cards to disk without overwriting existing files
type FileDownloader struct {
	options *DownloadOptions
}

// NewFileDownloader creates a new downloader
func NewFileDownloader(options *DownloadOptions) *FileDownloader {
	if options == nil {
		options = DefaultDownloadOptions()
	}
	return &FileDownloader{options: options}
}

// Save writes data under name, adding a numeric suffix when the name is taken
func (d *FileDownloader) Save(name string, data []byte) (string, error) {
	if d.options.CreateDir {
		if err := os.MkdirAll(d.options.OutputDir, 0755); err != nil {
			return "", fmt.Errorf("failed to create directory: %w", err)
		}
	}

	ext := filepath.Ext(name)
	stem := internal.SanitizeFilename(strings.TrimSuffix(filepath.Base(name), ext))
	if ext == "" {
		ext = ".png"
	}

	for i := 0; i < 1000; i++ {
		fileName := stem + ext
		if i > 0 {
			fileName = fmt.Sprintf("%s_%d%s", stem, i, ext)
		}
		outputPath := filepath.Join(d.options.OutputDir, fileName)

		file, err := os.OpenFile(outputPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if os.IsExist(err) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("failed to create file: %w", err)
		}
		if _, err := file.Write(data); err != nil {
			file.Close()
			os.Remove(outputPath) // Clean up on error
			return "", fmt.Errorf("failed to write file: %w", err)
		}
		if err := file.Close(); err != nil {
			return "", fmt.Errorf("failed to close file: %w", err)
		}
		return outputPath, nil
	}
	return "", fmt.Errorf("too many files named %s%s", stem, ext)
}
