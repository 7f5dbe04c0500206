package at_test

import (
	"testing"

	"i4.energy/across/ltegw/at"
)

func TestLineScanner(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "Simple AT command response",
			input:    "AT+CSQ\r\n+CSQ: 15,99\r\nOK\r\n",
			expected: []string{"AT+CSQ", "+CSQ: 15,99", "OK"},
		},
		{
			name:     "Leading CRLF run is skipped",
			input:    "\r\n\r\nOK\r\n",
			expected: []string{"OK"},
		},
		{
			name:     "Bare LF delimits like CRLF",
			input:    "+UUSORD: 2,5\nOK\r\n",
			expected: []string{"+UUSORD: 2,5", "OK"},
		},
		{
			name:     "Interleaved socket URCs",
			input:    "\r\n+UUSOCL: 3\r\n\r\n+UUSORD: 2,5\r\n",
			expected: []string{"+UUSOCL: 3", "+UUSORD: 2,5"},
		},
		{
			name:     "Trailing fragment without terminator",
			input:    "+CREG: 1,\"1A2B\",\"3C4D\",7\r\n+UUSO",
			expected: []string{"+CREG: 1,\"1A2B\",\"3C4D\",7", "+UUSO"},
		},
		{
			name:     "Empty buffer",
			input:    "",
			expected: nil,
		},
		{
			name:     "Delimiters only",
			input:    "\r\n\r\n\r\n",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var lines []string
			s := at.NewLineScanner([]byte(tt.input))
			for {
				line, ok := s.Next()
				if !ok {
					break
				}
				lines = append(lines, string(line))
			}

			if len(lines) != len(tt.expected) {
				t.Fatalf("Expected %d lines, got %d.\nExpected: %v\nGot: %v",
					len(tt.expected), len(lines), tt.expected, lines)
			}
			for i, expected := range tt.expected {
				if lines[i] != expected {
					t.Errorf("Line %d: expected %q, got %q", i, expected, lines[i])
				}
			}
		})
	}
}

func TestLineScannerTerminated(t *testing.T) {
	s := at.NewLineScanner([]byte("OK\r\n+UUSO"))

	if _, ok := s.Next(); !ok {
		t.Fatal("expected first line")
	}
	if !s.Terminated() {
		t.Error("first line should be terminated")
	}

	if _, ok := s.Next(); !ok {
		t.Fatal("expected trailing fragment")
	}
	if s.Terminated() {
		t.Error("trailing fragment should not be terminated")
	}
}

func TestSignature(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "Socket data", input: "+UUSORD: 2,5", expected: at.UrcSocketData},
		{name: "Socket closed", input: "+UUSOCL: 3", expected: at.UrcSocketClosed},
		{name: "Registration", input: "+CREG: 1,\"1A2B\",\"3C4D\",7", expected: at.UrcRegistration},
		{name: "EPS registration", input: "+CEREG: 5,\"0012\",\"00A1\",7", expected: at.UrcEPSRegistration},
		{name: "Signature after residue", input: "xx+UUPING: 1,3,\"host\",\"1.2.3.4\",32,100", expected: at.UrcPingResult},
		{name: "Plain response line", input: "+CSQ: 15,99", expected: ""},
		{name: "Final result", input: "OK", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := at.Signature([]byte(tt.input)); got != tt.expected {
				t.Errorf("Expected %q, got %q for input %q", tt.expected, got, tt.input)
			}
		})
	}
}
