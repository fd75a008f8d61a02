package batch

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"codeberg.org/snonux/wurdle/internal/concept"
)

// Entry is one concept line of a batch file
type Entry struct {
	Line    int
	Concept string
	// Valid is false for concepts shorter than concept.MinWords words
	Valid bool
}

// ReadBatchFile reads concepts from a file, one per line. Blank lines and
// lines starting with '#' are skipped.
func ReadBatchFile(filename string) ([]Entry, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read batch file: %w", err)
	}
	defer f.Close()

	var entries []Entry
	scanner := bufio.NewScanner(f)
	for n := 1; scanner.Scan(); n++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		entries = append(entries, Entry{
			Line:    n,
			Concept: line,
			Valid:   concept.Valid(line),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read batch file: %w", err)
	}

	return entries, nil
}
