// Package glob matches text against shell-style wildcard patterns.
//
// A pattern is matched against the whole text. '*' matches any run of
// characters including none, '?' matches exactly one character, and every
// other character matches itself, case-sensitively. There is no escaping
// and no character classes.
//
// Matching simulates the pattern as an NFA over a pair of state vectors, so
// the cost is bounded by len(pattern)*len(text) whatever the pattern looks
// like. Patterns such as "*a*a*a*a*b" cannot trigger exponential work.
package glob
