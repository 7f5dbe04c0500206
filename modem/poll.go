package modem

import (
	"time"

	"i4.energy/across/ltegw/at"
)

// BufferedPoll replays the URC backlog and drains any fresh transport
// bytes, dispatching every recognized notification line to its
// registered callback. It returns true when at least one line was
// handled.
//
// Callbacks may run commands of their own; notifications captured by
// those nested transactions are folded into the current pass so
// nothing waits for the next poll. A callback calling BufferedPoll
// again is a no-op.
func (m *Modem) BufferedPoll() bool {
	if m.inBufferedPoll {
		return false
	}
	m.inBufferedPoll = true
	defer func() { m.inBufferedPoll = false }()

	handled := false
	work := make([]byte, 0, rxBufferSize)
	hadBacklog := len(m.backlog) > 0

	if hadBacklog {
		m.log.Debug("buffered poll: backlog found", "len", len(m.backlog))
		work = append(work, m.backlog...)
		m.backlog = m.backlog[:0]
	}

	if m.transport.Available() <= 0 && !hadBacklog {
		return false
	}

	// Drain whatever is in flight right now. The idle window stops the
	// drain once the line has gone quiet.
	last := time.Now()
	for time.Since(last) < rxWindow && len(work) < cap(work) {
		if m.transport.Available() > 0 {
			c, err := m.transport.ReadByte()
			if err != nil {
				break
			}
			if c == 0 {
				c = '0'
			}
			work = append(work, c)
			last = time.Now()
		} else {
			time.Sleep(pollDelay)
		}
	}

	scanner := at.NewLineScanner(work)
	for {
		line, ok := scanner.Next()
		if !ok {
			break
		}
		if m.processURCLine(line) {
			handled = true
		}
		// A callback may have run a command, parking new URCs in the
		// backlog. Pull them into this pass.
		if len(m.backlog) > 0 {
			scanner.Append(m.backlog)
			m.backlog = m.backlog[:0]
		}
	}

	return handled
}

// Poll is the legacy single-line dispatcher: when bytes are pending it
// blocks until a full line has arrived, then dispatches it. It has no
// timeout and no backlog replay; BufferedPoll is preferred.
func (m *Modem) Poll() bool {
	if m.inPoll {
		return false
	}
	m.inPoll = true
	defer func() { m.inPoll = false }()

	if m.transport.Available() <= 0 {
		return false
	}

	line := make([]byte, 0, rxBufferSize)
	for {
		if m.transport.Available() <= 0 {
			time.Sleep(pollDelay)
			continue
		}
		c, err := m.transport.ReadByte()
		if err != nil {
			return false
		}
		if c == '\n' {
			break
		}
		if c != '\r' {
			line = append(line, c)
		}
	}

	return m.processURCLine(line)
}
