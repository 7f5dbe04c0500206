package modem

import "testing"

func TestPruneBacklog(t *testing.T) {
	t.Run("keeps notification lines, drops the rest", func(t *testing.T) {
		m, _ := newTestModem(t)
		m.backlog = append(m.backlog,
			"AT+CSQ\r\n+CSQ: 4,2\r\n+UUSORD: 0,5\r\nOK\r\n+UUSOCL: 1\r\n"...)

		m.pruneBacklog()

		if got := string(m.backlog); got != "+UUSORD: 0,5\r\n+UUSOCL: 1\r\n" {
			t.Errorf("unexpected backlog: %q", got)
		}
	})

	t.Run("unterminated notification is kept and terminated", func(t *testing.T) {
		m, _ := newTestModem(t)
		m.backlog = append(m.backlog, "garbage\r\n+UUSOCL: 2"...)

		m.pruneBacklog()

		if got := string(m.backlog); got != "+UUSOCL: 2\r\n" {
			t.Errorf("unexpected backlog: %q", got)
		}
	})

	t.Run("pruning twice changes nothing", func(t *testing.T) {
		m, _ := newTestModem(t)
		m.backlog = append(m.backlog, "+UUSORD: 0,5\r\njunk\r\n+CREG: 1,\"1A2B\",\"3C4D\",7\r\n"...)

		m.pruneBacklog()
		once := string(m.backlog)
		m.pruneBacklog()

		if got := string(m.backlog); got != once {
			t.Errorf("prune not idempotent: %q then %q", once, got)
		}
	})

	t.Run("empty backlog stays empty", func(t *testing.T) {
		m, _ := newTestModem(t)

		m.pruneBacklog()

		if len(m.backlog) != 0 {
			t.Errorf("unexpected backlog: %q", m.backlog)
		}
	})
}

func TestBacklogPush(t *testing.T) {
	t.Run("NUL becomes '0'", func(t *testing.T) {
		m, _ := newTestModem(t)

		m.backlogPush(0)

		if got := string(m.backlog); got != "0" {
			t.Errorf("unexpected backlog: %q", got)
		}
	})

	t.Run("drops bytes at capacity", func(t *testing.T) {
		m, _ := newTestModem(t)
		for i := 0; i < rxBufferSize; i++ {
			m.backlogPush('a')
		}

		m.backlogPush('b')

		if len(m.backlog) != rxBufferSize {
			t.Errorf("backlog grew past capacity: %d", len(m.backlog))
		}
		if m.backlog[len(m.backlog)-1] != 'a' {
			t.Error("byte was appended past capacity")
		}
	})
}
