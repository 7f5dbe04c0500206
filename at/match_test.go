package at_test

import (
	"testing"

	"i4.energy/across/ltegw/at"
)

func TestMatcher(t *testing.T) {
	tests := []struct {
		name    string
		token   string
		input   string
		matched bool
	}{
		{name: "Exact token", token: at.ResponseOK, input: "\nOK\r\n", matched: true},
		{name: "Token inside stream", token: at.ResponseOK, input: "+CSQ: 15,99\r\nOK\r\n", matched: true},
		{name: "Prefix only", token: at.ResponseOK, input: "\nOK\r", matched: false},
		{name: "OK without newline anchor does not match", token: at.ResponseOK, input: "OK\r\n", matched: false},
		{name: "Restart at first byte after mismatch", token: at.ResponseOK, input: "\nO\nOK\r\n", matched: true},
		{name: "Error token", token: at.ResponseError, input: "\r\nERROR\r\n", matched: true},
		{name: "Prompt single byte", token: at.WritePrompt, input: "\r\n@", matched: true},
		{name: "Empty token never matches", token: "", input: "anything", matched: false},
		{name: "Empty input", token: at.ResponseOK, input: "", matched: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := at.NewMatcher(tt.token)
			matched := false
			for i := 0; i < len(tt.input); i++ {
				if m.Feed(tt.input[i]) {
					matched = true
				}
			}
			if matched != tt.matched {
				t.Errorf("Expected matched=%v, got %v for token %q over %q",
					tt.matched, matched, tt.token, tt.input)
			}
			if m.Matched() != tt.matched {
				t.Errorf("Matched() = %v, want %v", m.Matched(), tt.matched)
			}
		})
	}
}

func TestMatcherStaysMatchedUntilReset(t *testing.T) {
	m := at.NewMatcher(at.ResponseOK)
	for i := 0; i < len(at.ResponseOK); i++ {
		m.Feed(at.ResponseOK[i])
	}
	if !m.Matched() {
		t.Fatal("expected match")
	}
	if !m.Feed('x') {
		t.Error("matched automaton should keep reporting true")
	}

	m.Reset()
	if m.Matched() {
		t.Error("Reset should clear the match")
	}
}
