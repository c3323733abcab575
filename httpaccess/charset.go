package httpaccess

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/htmlindex"
)

// encodeString converts s from UTF-8 to the named charset. An empty name
// leaves s unchanged.
func encodeString(charset, s string) (string, error) {
	if charset == "" {
		return s, nil
	}
	enc, err := htmlindex.Get(charset)
	if err != nil {
		return "", err
	}
	return enc.NewEncoder().String(s)
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

// withCharset adds a charset parameter to contentType unless it already has
// one. An empty contentType becomes text/plain.
func withCharset(contentType, charset string) string {
	if contentType == "" {
		contentType = "text/plain"
	}
	if strings.Contains(strings.ToLower(contentType), "charset=") {
		return contentType
	}
	return contentType + "; charset=" + charset
}
