package internal

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
	"unicode"
)

// Version of wurdle
const Version = "0.3.0"

// GenerateCardID creates a unique ID for a share card file based on the
// current time and the headline word.
// Format: epochMillis_md5(word)[:8]
func GenerateCardID(word string) string {
	epochMillis := time.Now().UnixMilli()

	hash := md5.Sum([]byte(strings.ToLower(word)))
	hashStr := hex.EncodeToString(hash[:])[:8]

	return fmt.Sprintf("%d_%s", epochMillis, hashStr)
}

// SanitizeFilename creates a safe filename from a string
func SanitizeFilename(s string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "card"
	}
	return b.String()
}
