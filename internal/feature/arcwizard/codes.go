package arcwizard

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultPrefix replaces a name that folds to nothing.
const DefaultPrefix = "ARC"

// Codes derives the two activation codes for a name: diacritics are folded,
// anything outside [A-Za-z0-9] is dropped and the rest is uppercased.
func Codes(name string) [2]string {
	prefix := codePrefix(name)
	return [2]string{
		"ARC-" + prefix + "-1",
		"ARC-" + prefix + "-2",
	}
}

// FallbackCodes derives the codes for the first name's initial followed by
// the last name.
func FallbackCodes(firstName, lastName string) [2]string {
	initial := ""
	for _, r := range strings.TrimSpace(firstName) {
		initial = string(r)
		break
	}
	return Codes(initial + lastName)
}

func codePrefix(name string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn))), name)
	if err != nil {
		folded = name
	}

	var b strings.Builder
	for _, r := range folded {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(unicode.ToUpper(r))
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		}
	}

	if b.Len() == 0 {
		return DefaultPrefix
	}
	return b.String()
}
