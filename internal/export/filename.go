package export

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DerivedFilename names the output CSV after the project and the run date,
// e.g. flywheel_scans_GRMPY_822831_2021-08-17.csv.
func DerivedFilename(projectLabel string, now time.Time) string {
	return fmt.Sprintf("flywheel_scans_%s_%s.csv", slugify(projectLabel), now.Format("2006-01-02"))
}

// deaccent strips combining marks after NFKD decomposition, so "café" → "cafe".
var deaccent = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// slugify makes a project label safe to embed in a filename. Accented letters
// are reduced to their base form; anything outside [A-Za-z0-9._-] becomes "_".
func slugify(label string) string {
	flat, _, err := transform.String(deaccent, label)
	if err != nil {
		flat = label
	}

	var b strings.Builder
	for _, r := range flat {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '_' || r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}

	out := b.String()
	if out == "" {
		out = "project"
	}
	return out
}
