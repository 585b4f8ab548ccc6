package validators

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// SanitizeString NFC-normalises free text, drops control characters, folds
// runs of whitespace to one space and caps the result at maxLen runes
// (maxLen <= 0 means no cap).
func SanitizeString(input string, maxLen int) string {
	var b strings.Builder
	space := false
	n := 0
	for _, r := range norm.NFC.String(input) {
		if maxLen > 0 && n >= maxLen {
			break
		}
		switch {
		case unicode.IsSpace(r):
			space = b.Len() > 0
			continue
		case unicode.IsControl(r):
			continue
		}
		if space {
			if maxLen > 0 && n+1 >= maxLen {
				break
			}
			b.WriteByte(' ')
			n++
			space = false
		}
		b.WriteRune(r)
		n++
	}
	return b.String()
}
