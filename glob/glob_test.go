package glob

import (
	"strings"
	"testing"
	"time"
)

func TestMatch(t *testing.T) {
	tests := []struct {
		pattern string
		text    string
		want    bool
	}{
		{"", "", true},
		{"", "a", false},
		{"a", "", false},
		{"*", "", true},
		{"*", "anything at all", true},
		{"**", "", true},
		{"***", "abc", true},
		{"?", "", false},
		{"?", "x", true},
		{"?", "xy", false},
		{"a?c", "abc", true},
		{"a?c", "ac", false},
		{"a?c", "abbc", false},
		{"a*b", "ab", true},
		{"a*b", "axxxb", true},
		{"a*b", "a", false},
		{"a*b", "b", false},
		{"a*b", "abc", false},
		{"*.internal", "svc.internal", true},
		{"*.internal", ".internal", true},
		{"*.internal", "svc.internal.com", false},
		{"10.0.*", "10.0.3.4", true},
		{"10.0.*", "10.1.3.4", false},
		{"*.Example.com", "api.example.com", false},
		{"a*?c", "abc", true},
		{"a*?c", "ac", false},
		{"*a*", "banana", true},
		{"*x*", "banana", false},
		{"?*?", "ab", true},
		{"?*?", "a", false},
		{"h?st-*-??", "host-eu-01", true},
	}

	for _, tc := range tests {
		t.Run(tc.pattern+"|"+tc.text, func(t *testing.T) {
			if got := Match(tc.pattern, tc.text); got != tc.want {
				t.Errorf("Match(%q, %q) = %v, want %v", tc.pattern, tc.text, got, tc.want)
			}
		})
	}
}

func TestMatch_LiteralPatternsMatchOnlyThemselves(t *testing.T) {
	words := []string{"", "a", "ab", "abc", "proxy.internal", "10.0.0.1", "ABC"}
	for _, p := range words {
		for _, s := range words {
			if got, want := Match(p, s), p == s; got != want {
				t.Errorf("Match(%q, %q) = %v, want %v", p, s, got, want)
			}
		}
	}
}

func TestMatch_StarBetweenLiterals(t *testing.T) {
	texts := []string{"", "a", "b", "ab", "ba", "abb", "aab", "acb", "abc", "a-long-b", "b-a"}
	for _, s := range texts {
		want := len(s) >= 2 && strings.HasPrefix(s, "a") && strings.HasSuffix(s, "b")
		if got := Match("a*b", s); got != want {
			t.Errorf("Match(%q, %q) = %v, want %v", "a*b", s, got, want)
		}
	}
}

func TestMatch_QuestionMarkIsOneRune(t *testing.T) {
	if !Match("caf?", "café") {
		t.Error("expected ? to match a multi-byte character")
	}
	if Match("caf??", "café") {
		t.Error("expected ?? not to match a single multi-byte character")
	}
}

func TestMatch_PathologicalPatternIsFast(t *testing.T) {
	pattern := strings.Repeat("*a", 30) + "*b"
	text := strings.Repeat("a", 5000)

	start := time.Now()
	if Match(pattern, text) {
		t.Fatal("expected no match")
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("match took %v, expected polynomial time", elapsed)
	}
}

func TestMatchAny(t *testing.T) {
	patterns := []string{"*.internal", "10.0.*"}
	tests := []struct {
		host string
		want bool
	}{
		{"svc.internal", true},
		{"10.0.9.9", true},
		{"example.com", false},
		{"", false},
	}
	for _, tc := range tests {
		if got := MatchAny(patterns, tc.host); got != tc.want {
			t.Errorf("MatchAny(%q) = %v, want %v", tc.host, got, tc.want)
		}
	}
	if MatchAny(nil, "any.host") {
		t.Error("expected empty pattern list to match nothing")
	}
}
