package profiles

import (
	"strings"
	"unicode"
)

// hungarian accents cover the original data; the table is small enough to inline.
var accentFold = map[rune]string{
	'á': "a", 'é': "e", 'í': "i", 'ó': "o", 'ö': "o", 'ő': "o",
	'ú': "u", 'ü': "u", 'ű': "u",
}

// Slugify lowercases, folds accents, and squashes everything else to hyphens.
func Slugify(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	lastHyphen := true
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		if folded, ok := accentFold[r]; ok {
			b.WriteString(folded)
			lastHyphen = false
			continue
		}
		switch {
		case unicode.IsLetter(r) && r < 128, unicode.IsDigit(r):
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}
