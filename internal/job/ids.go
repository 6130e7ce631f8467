package job

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// NewID mints a job or batch identifier.
func NewID() string { return uuid.NewString() }

// sanitizeTitle lowercases, collapses runs of non-alphanumeric
// characters to a single dash, and trims leading/trailing dashes.
func sanitizeTitle(s string) string {
	var b strings.Builder
	prevDash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			b.WriteRune(r)
			prevDash = false
		default:
			if !prevDash {
				b.WriteByte('-')
				prevDash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}

// outputFilename builds the clip output name
// {sanitizedTitle[:50]}_clip{i+1}_{mM}m{SS}s.mp4, i 0-based.
func outputFilename(title string, i int, startS float64) string {
	t := sanitizeTitle(title)
	if t == "" {
		t = "clip"
	}
	if len(t) > 50 {
		t = t[:50]
	}
	m := int(startS) / 60
	s := int(startS) % 60
	return fmt.Sprintf("%s_clip%d_%dm%02ds.mp4", t, i+1, m, s)
}

// hash derives a stable, collision-resistant token from a URL via a
// sha256 prefix, used to key the per-job caches without storing raw
// URLs as map keys.
func hash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])[:12]
}
