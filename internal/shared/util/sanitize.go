package util

import (
	"errors"
	"path"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ExtractedTextSuffix marks the derived plain-text copy written next to an uploaded document.
const ExtractedTextSuffix = ".extracted.txt"

// maxFileNameBytes keeps "<user hash>/<random id>_<name>" well inside the 1024-byte object key limit.
const maxFileNameBytes = 200

// ErrInvalidFileName is returned for names that cannot be stored as an upload.
var ErrInvalidFileName = errors.New("invalid file name")

// SanitizeFileName turns a client-supplied name into the last segment of an object key.
// Path separators become underscores and control characters are dropped. Long names are
// shortened from the middle so the extension survives, since content detection and
// transcript titles both read it. Names that would collide with a derived text copy are
// rejected.
func SanitizeFileName(name string) (string, error) {
	if strings.Contains(name, "..") {
		return "", ErrInvalidFileName
	}
	s := strings.ToValidUTF8(name, "")
	s = strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == '\\':
			return '_'
		case unicode.IsControl(r):
			return -1
		}
		return r
	}, s)
	s = strings.TrimSpace(s)
	if s == "" || strings.HasSuffix(strings.ToLower(s), ExtractedTextSuffix) {
		return "", ErrInvalidFileName
	}
	if len(s) > maxFileNameBytes {
		ext := path.Ext(s)
		if len(ext) > maxFileNameBytes/4 {
			ext = ""
		}
		base := s[:maxFileNameBytes-len(ext)]
		for !utf8.ValidString(base) {
			base = base[:len(base)-1]
		}
		s = base + ext
	}
	return s, nil
}
