package at

import "bytes"

// A LineScanner carves a byte buffer into CR/LF delimited lines using an
// explicit cursor, so independent scans over the same buffer never share
// state. Either delimiter byte ends a line and runs of delimiters are
// skipped, matching how the modem frames its output ("\r\n" pairs, but
// occasionally a bare "\n").
//
// A trailing fragment with no terminator is still returned; callers that
// need complete lines only should check Terminated.
type LineScanner struct {
	buf []byte
	pos int
}

// NewLineScanner returns a scanner positioned at the start of buf.
func NewLineScanner(buf []byte) *LineScanner {
	return &LineScanner{buf: buf}
}

// Next returns the next non-empty line, or ok=false when the buffer is
// exhausted.
func (s *LineScanner) Next() (line []byte, ok bool) {
	for s.pos < len(s.buf) && isLineDelim(s.buf[s.pos]) {
		s.pos++
	}
	if s.pos >= len(s.buf) {
		return nil, false
	}
	start := s.pos
	for s.pos < len(s.buf) && !isLineDelim(s.buf[s.pos]) {
		s.pos++
	}
	return s.buf[start:s.pos], true
}

// Append adds more bytes past the end of the buffer being scanned.
// Used when a callback run mid-scan buffers further input that should
// be handled in the same pass.
func (s *LineScanner) Append(more []byte) {
	s.buf = append(s.buf, more...)
}

// Terminated reports whether the line ending at the current cursor was
// closed by a delimiter, as opposed to running off the end of the buffer.
func (s *LineScanner) Terminated() bool {
	return s.pos < len(s.buf)
}

func isLineDelim(c byte) bool { return c == '\r' || c == '\n' }

// Signature returns the URC signature contained in line, or "" when the
// line carries none. Containment rather than prefix match: the modem may
// glue residue from an earlier partial read in front of the signature.
func Signature(line []byte) string {
	for _, sig := range Signatures {
		if bytes.Contains(line, []byte(sig)) {
			return sig
		}
	}
	return ""
}
