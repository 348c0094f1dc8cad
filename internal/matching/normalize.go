package matching

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var accentFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// fold lowercases and strips combining marks so "Ødegaard" and "Odegaard"
// or "Fernández" and "Fernandez" compare equal.
func fold(s string) string {
	out, _, err := transform.String(accentFolder, s)
	if err != nil {
		out = s
	}
	out = strings.Map(func(r rune) rune {
		switch r {
		case 'ø', 'Ø':
			return 'o'
		case 'ł', 'Ł':
			return 'l'
		case 'đ', 'Đ':
			return 'd'
		case 'ß':
			return 's'
		}
		return r
	}, out)
	return strings.ToLower(strings.TrimSpace(out))
}

// tokens folds s, replaces every non alphanumeric rune with a space and
// returns the remaining words.
func tokens(s string) []string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return ' '
	}, fold(s))
	return strings.Fields(cleaned)
}

func sortedTokens(s string) string {
	parts := tokens(s)
	sort.Strings(parts)
	return strings.Join(parts, " ")
}
