package httpaccess

import (
	"strings"

	"github.com/kbukum/httpaccess/glob"
)

// ParseBypassList splits a comma-separated noProxyFor value into patterns.
// Entries are trimmed and blank entries dropped.
func ParseBypassList(raw string) []string {
	var patterns []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			patterns = append(patterns, p)
		}
	}
	return patterns
}

// IsBypassed reports whether host matches any of the glob patterns and
// should therefore be reached without the proxy. Matching is case-sensitive;
// callers wanting case-insensitive rules must normalize both sides.
func IsBypassed(patterns []string, host string) bool {
	if host == "" {
		return false
	}
	return glob.MatchAny(patterns, host)
}
