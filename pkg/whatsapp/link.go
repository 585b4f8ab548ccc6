// Package whatsapp builds wa.me click-to-chat links.
package whatsapp

import (
	"net/url"
	"strings"
	"unicode"
)

const baseURL = "https://wa.me/"

// Digits strips everything but 0-9 from a phone number.
func Digits(number string) string {
	var b strings.Builder
	for _, r := range number {
		if unicode.IsDigit(r) && r < unicode.MaxASCII {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Link returns https://wa.me/<digits>?text=<escaped text>. It reports false
// when number contains no digits.
func Link(number, text string) (string, bool) {
	digits := Digits(number)
	if digits == "" {
		return "", false
	}
	escaped := strings.ReplaceAll(url.QueryEscape(text), "+", "%20")
	return baseURL + digits + "?text=" + escaped, true
}
