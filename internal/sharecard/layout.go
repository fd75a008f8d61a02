package sharecard

import "strings"

// Ellipsis marks hard-truncated text.
const Ellipsis = "…"

// Measure returns the rendered width of s in pixels.
type Measure func(s string) int

// Wrap greedily breaks text into lines no wider than maxWidth. A single word
// wider than maxWidth gets its own line, truncated with Ellipsis.
func Wrap(text string, maxWidth int, measure Measure) []string {
	var (
		lines []string
		line  string
	)
	for _, word := range strings.Fields(text) {
		candidate := word
		if line != "" {
			candidate = line + " " + word
		}
		if measure(candidate) <= maxWidth {
			line = candidate
			continue
		}
		if line != "" {
			lines = append(lines, line)
		}
		if measure(word) > maxWidth {
			lines = append(lines, Truncate(word, maxWidth, measure))
			line = ""
			continue
		}
		line = word
	}
	if line != "" {
		lines = append(lines, line)
	}
	return lines
}

// Truncate shortens s to the longest rune prefix that fits maxWidth together
// with Ellipsis.
func Truncate(s string, maxWidth int, measure Measure) string {
	if measure(s) <= maxWidth {
		return s
	}
	runes := []rune(s)
	for n := len(runes) - 1; n > 0; n-- {
		if t := string(runes[:n]) + Ellipsis; measure(t) <= maxWidth {
			return t
		}
	}
	return Ellipsis
}

// SplitHeadline keeps word on one line when it fits, otherwise splits it
// into exactly two lines at the widest fitting prefix. An overflowing second
// line is truncated.
func SplitHeadline(word string, maxWidth int, measure Measure) []string {
	if word == "" {
		return nil
	}
	if measure(word) <= maxWidth {
		return []string{word}
	}
	runes := []rune(word)
	// Prefix widths grow monotonically, so binary search finds the widest fit.
	cut := 1
	lo, hi := 1, len(runes)-1
	for lo <= hi {
		mid := (lo + hi) / 2
		if measure(string(runes[:mid])) <= maxWidth {
			cut = mid
			lo = mid + 1
		} else {
			hi = mid - 1
		}
	}
	first := string(runes[:cut])
	second := Truncate(string(runes[cut:]), maxWidth, measure)
	return []string{first, second}
}
