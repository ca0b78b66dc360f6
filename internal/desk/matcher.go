// internal/desk/matcher.go
package desk

// patternMatcher detects the poll pattern in the inbound byte stream.
// It keeps the last len(PollPattern) bytes in a ring and compares in
// arrival order, so a match fires exactly once per occurrence and never
// before the window has filled.
type patternMatcher struct {
	window [len(PollPattern)]byte
	next   int
	n      int
}

// push records one byte and reports whether the window now equals the
// poll pattern. The window resets after a match.
func (m *patternMatcher) push(b byte) bool {
	m.window[m.next] = b
	m.next = (m.next + 1) % len(m.window)
	if m.n < len(m.window) {
		m.n++
		if m.n < len(m.window) {
			return false
		}
	}

	for i := 0; i < len(m.window); i++ {
		if m.window[(m.next+i)%len(m.window)] != PollPattern[i] {
			return false
		}
	}

	m.n = 0
	m.next = 0
	return true
}
