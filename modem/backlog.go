package modem

import "i4.energy/across/ltegw/at"

// backlogPush appends one byte to the backlog, dropping it when the
// buffer is full. NUL bytes become ASCII zeros: the backlog is only
// ever consumed as readable text lines and a NUL would truncate them.
func (m *Modem) backlogPush(c byte) {
	if len(m.backlog) >= cap(m.backlog) {
		return
	}
	if c == 0 {
		c = '0'
	}
	m.backlog = append(m.backlog, c)
}

// pruneBacklog rewrites the backlog keeping only lines that carry a
// recognized notification signature. Command responses, result tokens
// and partial fragments accumulated during transactions are discarded;
// the kept lines get their CR/LF terminators restored. Pruning an
// already pruned backlog changes nothing.
func (m *Modem) pruneBacklog() {
	if len(m.backlog) == 0 {
		return
	}

	pruned := make([]byte, 0, cap(m.backlog))
	scanner := at.NewLineScanner(m.backlog)
	for {
		line, ok := scanner.Next()
		if !ok {
			break
		}
		if at.Signature(line) == "" {
			continue
		}
		pruned = append(pruned, line...)
		pruned = append(pruned, at.CRLF...)
	}

	m.backlog = m.backlog[:0]
	m.backlog = append(m.backlog, pruned...)
}
