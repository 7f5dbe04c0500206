package modem

import (
	"fmt"
	"strings"
	"time"

	"i4.energy/across/ltegw/at"
)

// sendCommand drains any pending bytes into the backlog, then writes
// the command. With atPrefix the command is framed as "AT<cmd>\r\n";
// without it the bytes go out raw (socket payloads, prompt bodies).
//
// The drain uses the idle window: it keeps reading as long as bytes
// keep arriving within rxWindow of each other, so a URC caught mid
// flight is captured whole rather than split by our transmission.
func (m *Modem) sendCommand(cmd string, atPrefix bool) error {
	if m.closed {
		return ErrAlreadyClosed
	}
	if !m.open {
		return ErrNotOpen
	}

	if m.transport.Available() > 0 {
		last := time.Now()
		for time.Since(last) < rxWindow && len(m.backlog) < cap(m.backlog) {
			if m.transport.Available() > 0 {
				c, err := m.transport.ReadByte()
				if err != nil {
					return fmt.Errorf("drain before send: %w", err)
				}
				m.backlogPush(c)
				last = time.Now()
			} else {
				time.Sleep(pollDelay)
			}
		}
	}

	var err error
	if atPrefix {
		_, err = m.transport.Write([]byte(at.CommandAT + cmd + at.CRLF))
	} else {
		_, err = m.transport.Write([]byte(cmd))
	}
	if err != nil {
		return fmt.Errorf("write command: %w", err)
	}
	return nil
}

// sendCommandWithResponse runs a full transaction: send the command,
// then scan incoming bytes for the expected token until timeout. An
// empty expected selects the standard OK / ERROR pair; otherwise only
// the given token terminates the transaction (no error token).
//
// Every received byte also lands in the backlog, which is pruned to
// recognized URC lines before returning, so notifications interleaved
// with the response survive for BufferedPoll.
//
// The captured response includes everything read during the scan, the
// final token included, capped at ResponseSize bytes.
func (m *Modem) sendCommandWithResponse(cmd, expected string, timeout time.Duration) (string, error) {
	m.log.Debug("command", "cmd", cmd)

	if err := m.sendCommand(cmd, true); err != nil {
		return "", err
	}

	expectedError := ""
	if expected == "" {
		expected = at.ResponseOK
		expectedError = at.ResponseError
	}
	return m.scanForResponse(expected, expectedError, timeout, m.cfg.ResponseSize)
}

// sendCommandWithLargeResponse is sendCommandWithResponse with an
// explicit capture limit, for responses known to exceed ResponseSize
// such as file reads.
func (m *Modem) sendCommandWithLargeResponse(cmd, expected string, timeout time.Duration, limit int) (string, error) {
	m.log.Debug("command", "cmd", cmd)

	if err := m.sendCommand(cmd, true); err != nil {
		return "", err
	}
	return m.scanForResponse(expected, "", timeout, limit)
}

// sendCommandExpectPrompt runs the announcement phase of a two-phase
// command: send it, then scan for the prompt token. The module can
// decline the announcement outright, so the error token is matched
// alongside the prompt and reported as ErrCommandError.
func (m *Modem) sendCommandExpectPrompt(cmd, prompt string, timeout time.Duration) error {
	m.log.Debug("command", "cmd", cmd)

	if err := m.sendCommand(cmd, true); err != nil {
		return err
	}
	_, err := m.scanForResponse(prompt, at.ResponseError, timeout, 0)
	return err
}

// waitForResponse scans for the expected token (or the error token)
// without sending anything first. It is used for the second phase of
// prompt-based commands: socket writes ("@") and text uploads (">").
func (m *Modem) waitForResponse(expected, expectedError string, timeout time.Duration) error {
	_, err := m.scanForResponse(expected, expectedError, timeout, 0)
	return err
}

func (m *Modem) scanForResponse(expected, expectedError string, timeout time.Duration, limit int) (string, error) {
	var (
		okMatch   = at.NewMatcher(expected)
		errMatch  = at.NewMatcher(expectedError)
		deadline  = time.Now().Add(timeout)
		resp      strings.Builder
		charsRead = 0
		found     = false
		isError   = false
		overflow  = false
	)

	for !found && time.Now().Before(deadline) {
		if m.transport.Available() <= 0 {
			time.Sleep(pollDelay)
			continue
		}
		c, err := m.transport.ReadByte()
		if err != nil {
			m.pruneBacklog()
			return resp.String(), fmt.Errorf("read response: %w", err)
		}
		charsRead++
		if resp.Len() < limit {
			resp.WriteByte(c)
		} else if limit > 0 && !overflow {
			overflow = true
			m.log.Debug("response capture full", "limit", limit)
		}
		m.backlogPush(c)

		// The error token is checked first so it wins when both
		// tokens complete on the same byte.
		if errMatch.Feed(c) {
			isError = true
			found = true
		}
		if okMatch.Feed(c) {
			found = true
		}
	}

	// Drop responses and half-received lines, keep whole URCs.
	m.pruneBacklog()

	switch {
	case found && isError:
		return resp.String(), ErrCommandError
	case found:
		return resp.String(), nil
	case charsRead == 0:
		return "", ErrNoResponse
	default:
		return resp.String(), ErrUnexpectedResponse
	}
}

// expectOK runs a transaction that needs nothing back but the OK.
func (m *Modem) expectOK(cmd string, timeout time.Duration) error {
	_, err := m.sendCommandWithResponse(cmd, "", timeout)
	return err
}

// responsePayload locates prefix inside a captured response and
// returns the text after it with leading spaces skipped.
func responsePayload(resp, prefix string) (string, bool) {
	i := strings.Index(resp, prefix)
	if i < 0 {
		return "", false
	}
	rest := resp[i+len(prefix):]
	for len(rest) > 0 && rest[0] == ' ' {
		rest = rest[1:]
	}
	return rest, true
}
