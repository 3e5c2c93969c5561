// Package slugx derives URL-safe slugs from free text.
package slugx

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	disallowed = regexp.MustCompile(`[^a-z0-9_\s-]`)
	separators = regexp.MustCompile(`[-\s]+`)
)

// Make converts s into a slug: compatibility-decomposed, ASCII only,
// lowercase, runs of whitespace and hyphens collapsed to one hyphen, with
// leading and trailing hyphens and underscores removed.
//
//	Make("Big Sale!")   == "big-sale"
//	Make("Café  Déjà")  == "cafe-deja"
//	Make("日本")         == ""
func Make(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.Predicate(nonASCII)))
	ascii, _, err := transform.String(t, s)
	if err != nil {
		return ""
	}

	out := strings.ToLower(ascii)
	out = disallowed.ReplaceAllString(out, "")
	out = strings.TrimSpace(out)
	out = separators.ReplaceAllString(out, "-")
	return strings.Trim(out, "-_")
}

func nonASCII(r rune) bool { return r > unicode.MaxASCII }
