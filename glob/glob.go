package glob

// sentinel terminates both pattern and text so that the final pattern
// position is only reachable once the whole text has been consumed.
const sentinel = '\x00'

// Match reports whether text matches pattern in its entirety.
func Match(pattern, text string) bool {
	p := append([]rune(pattern), sentinel)
	n := len(p)

	// prev[j] means pattern position j is reachable after the text read so far.
	prev := make([]bool, n+1)
	next := make([]bool, n+1)
	prev[0] = true

	for _, c := range append([]rune(text), sentinel) {
		clear(next)
		for j := 0; j < n; j++ {
			if !prev[j] {
				continue
			}
			switch p[j] {
			case '*':
				// A star may also match nothing; marking j+1 here lets the
				// rest of this scan see it, which covers runs of stars.
				prev[j+1] = true
				next[j] = true
				next[j+1] = true
			case '?', c:
				next[j+1] = true
			}
		}
		prev, next = next, prev
	}
	return prev[n]
}

// MatchAny reports whether text matches at least one of patterns. It stops
// at the first match.
func MatchAny(patterns []string, text string) bool {
	for _, pattern := range patterns {
		if Match(pattern, text) {
			return true
		}
	}
	return false
}
