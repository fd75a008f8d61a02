// Package archive moves forged cards out of the way so the output directory
// starts empty again.
package archive

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"codeberg.org/snonux/wurdle/internal/logx"
)

const stampLayout = "20060102-150405"

// Cards moves cardsDir to <parent>/archive/cards-<timestamp> and returns the
// new location. A missing cardsDir is an error, an empty one is archived
// like any other.
func Cards(cardsDir string, now time.Time) (string, error) {
	if _, err := os.Stat(cardsDir); errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("cards directory does not exist: %s", cardsDir)
	}

	archiveDir := filepath.Join(filepath.Dir(cardsDir), "archive")
	if err := os.MkdirAll(archiveDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	target := filepath.Join(archiveDir, "cards-"+now.Format(stampLayout))
	if _, err := os.Stat(target); err == nil {
		// Same second twice
		target = filepath.Join(archiveDir, "cards-"+now.Format(stampLayout+".000000"))
	}

	if err := os.Rename(cardsDir, target); err != nil {
		return "", fmt.Errorf("failed to archive cards directory: %w", err)
	}
	logx.Info().Str("from", cardsDir).Str("to", target).Msg("cards archived")
	return target, nil
}
