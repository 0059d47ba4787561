// Package slug builds and checks the human-readable keys games are addressed by.
package slug

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const MaxLength = 255

var ErrInvalid = errors.New("invalid slug")

// Pattern matches lowercase ASCII words joined by single hyphens.
var Pattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

var (
	nonSlugChars = regexp.MustCompile(`[^a-z0-9-]+`)
	hyphens      = regexp.MustCompile(`-+`)
	spaces       = regexp.MustCompile(`[\s_]+`)
)

func Valid(s string) bool {
	return len(s) > 0 && len(s) <= MaxLength && Pattern.MatchString(s)
}

// Generate derives a slug from a title: "Hollow Knight: Silksong" -> "hollow-knight-silksong".
// The result may be empty when the title has no latin letters or digits.
func Generate(title string) string {
	ascii := removeDiacritics(title)
	lower := strings.ToLower(ascii)
	hyphenated := spaces.ReplaceAllString(lower, "-")
	cleaned := nonSlugChars.ReplaceAllString(hyphenated, "")
	normalized := hyphens.ReplaceAllString(cleaned, "-")
	trimmed := strings.Trim(normalized, "-")

	if len(trimmed) > MaxLength {
		trimmed = strings.TrimRight(trimmed[:MaxLength], "-")
	}

	return trimmed
}

// WithSuffix returns base-n, cutting base so the result fits MaxLength.
func WithSuffix(base string, n int) string {
	suffix := "-" + strconv.Itoa(n)
	if len(base)+len(suffix) > MaxLength {
		base = strings.TrimRight(base[:MaxLength-len(suffix)], "-")
	}
	return base + suffix
}

func removeDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
