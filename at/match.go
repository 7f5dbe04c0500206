package at

// A Matcher incrementally scans a byte stream for a fixed token. It is
// fed one byte at a time and reports when the full token has been seen.
//
// On a mismatch the automaton restarts: at position 1 if the offending
// byte equals the token's first byte, otherwise at position 0. That is
// enough for the token alphabet used here (result codes and prompts do
// not contain repeated proper prefixes beyond their first byte).
type Matcher struct {
	token []byte
	pos   int
}

// NewMatcher returns a Matcher for token. An empty token never matches.
func NewMatcher(token string) *Matcher {
	return &Matcher{token: []byte(token)}
}

// Feed advances the automaton by one byte. It returns true exactly when
// the final byte of the token has been consumed; the automaton then
// stays matched until Reset.
func (m *Matcher) Feed(c byte) bool {
	if len(m.token) == 0 {
		return false
	}
	if m.pos == len(m.token) {
		return true
	}
	if c == m.token[m.pos] {
		m.pos++
		return m.pos == len(m.token)
	}
	if c == m.token[0] {
		m.pos = 1
	} else {
		m.pos = 0
	}
	return false
}

// Matched reports whether the full token has been seen since the last Reset.
func (m *Matcher) Matched() bool {
	return len(m.token) > 0 && m.pos == len(m.token)
}

// Reset returns the automaton to its initial state.
func (m *Matcher) Reset() { m.pos = 0 }
