package modem

import "testing"

func TestBufferedPoll(t *testing.T) {
	t.Run("dispatches a backlogged notification once", func(t *testing.T) {
		m, _ := newTestModem(t)
		var closed []int
		m.OnSocketClosed(func(socket int) { closed = append(closed, socket) })
		m.backlog = append(m.backlog, "+UUSOCL: 3\r\n"...)

		if !m.BufferedPoll() {
			t.Error("expected first poll to handle the notification")
		}
		if m.BufferedPoll() {
			t.Error("expected second poll to be a no-op")
		}
		if len(closed) != 1 || closed[0] != 3 {
			t.Errorf("unexpected dispatches: %v", closed)
		}
	})

	t.Run("drains fresh transport bytes", func(t *testing.T) {
		m, tt := newTestModem(t)
		var state SIMState
		m.OnSIMState(func(s SIMState) { state = s })
		tt.SendData("\r\n+UUSIMSTAT: 6\r\n")

		if !m.BufferedPoll() {
			t.Error("expected poll to handle the notification")
		}
		if state != SIMOperational {
			t.Errorf("unexpected SIM state: %d", state)
		}
	})

	t.Run("returns false when idle", func(t *testing.T) {
		m, _ := newTestModem(t)

		if m.BufferedPoll() {
			t.Error("expected poll of idle modem to return false")
		}
	})

	t.Run("reentrant call is a no-op", func(t *testing.T) {
		m, _ := newTestModem(t)
		inner := true
		m.OnSocketClosed(func(int) { inner = m.BufferedPoll() })
		m.backlog = append(m.backlog, "+UUSOCL: 1\r\n"...)

		m.BufferedPoll()

		if inner {
			t.Error("expected nested BufferedPoll to return false")
		}
	})

	t.Run("notifications from a nested transaction join the pass", func(t *testing.T) {
		m, tt := newTestModem(t)

		// The data indication makes the dispatcher read the socket;
		// that nested transaction carries another notification, which
		// must be handled in the same pass.
		var got []byte
		var closed []int
		m.OnSocketData(func(ev SocketData) { got = ev.Data })
		m.OnSocketClosed(func(socket int) { closed = append(closed, socket) })
		tt.Respond("AT+USORD=2,5", "\r\n+USORD: 2,5,\"hello\"\r\n\r\n+UUSOCL: 1\r\n"+okResponse)
		m.backlog = append(m.backlog, "+UUSORD: 2,5\r\n"...)

		if !m.BufferedPoll() {
			t.Error("expected poll to handle the notifications")
		}
		if string(got) != "hello" {
			t.Errorf("unexpected socket data: %q", got)
		}
		if len(closed) != 1 || closed[0] != 1 {
			t.Errorf("unexpected close dispatches: %v", closed)
		}
	})
}

func TestPoll(t *testing.T) {
	t.Run("dispatches one pending line", func(t *testing.T) {
		m, tt := newTestModem(t)
		var closed int
		m.OnSocketClosed(func(socket int) { closed = socket })
		tt.SendData("+UUSOCL: 2\r\n")

		if !m.Poll() {
			t.Error("expected poll to handle the notification")
		}
		if closed != 2 {
			t.Errorf("unexpected socket: %d", closed)
		}
		if m.Poll() {
			t.Error("expected second poll to be a no-op")
		}
	})

	t.Run("returns false when idle", func(t *testing.T) {
		m, _ := newTestModem(t)

		if m.Poll() {
			t.Error("expected poll of idle modem to return false")
		}
	})
}
