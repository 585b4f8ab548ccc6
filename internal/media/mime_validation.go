package media

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/gabriel-vasile/mimetype"
)

// sniffImage inspects the leading bytes and returns the detected image type
// and its canonical extension. Declared content types are ignored.
func sniffImage(head []byte) (mimeType, ext string, err error) {
	if len(head) == 0 {
		return "", "", fmt.Errorf("file is empty")
	}
	detected := mimetype.Detect(head)
	mediaType := strings.ToLower(detected.String())
	if i := strings.Index(mediaType, ";"); i >= 0 {
		mediaType = strings.TrimSpace(mediaType[:i])
	}
	if !strings.HasPrefix(mediaType, "image/") {
		return "", "", fmt.Errorf("unsupported file type %s: only images are allowed", mediaType)
	}
	return mediaType, detected.Extension(), nil
}

// cleanFilename keeps letters, digits, dashes and underscores of the base
// name and swaps in the sniffed extension.
func cleanFilename(name, ext string) string {
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	var b strings.Builder
	for _, r := range base {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r), r == '-', r == '_':
			b.WriteRune(unicode.ToLower(r))
		case unicode.IsSpace(r):
			b.WriteRune('-')
		}
	}
	clean := strings.Trim(b.String(), "-")
	if clean == "" || clean == "." {
		clean = "upload"
	}
	return clean + ext
}
