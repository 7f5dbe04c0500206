package modem

import (
	"errors"
	"testing"
	"time"
)

const okResponse = "\r\nOK\r\n"

// newTestModem returns a modem wired to a scripted transport, already
// past Begin.
func newTestModem(t *testing.T) (*Modem, *TestTransport) {
	t.Helper()
	tt := NewTestTransport()
	m, err := New(Config{Transport: tt})
	if err != nil {
		t.Fatalf("unexpected error from New(): %v", err)
	}
	if err := tt.Open(DefaultBaud); err != nil {
		t.Fatalf("unexpected error opening transport: %v", err)
	}
	m.open = true
	return m, tt
}

func TestTransaction(t *testing.T) {
	t.Run("OK terminates the transaction", func(t *testing.T) {
		m, tt := newTestModem(t)
		tt.Respond("AT", okResponse)

		if err := m.At(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if got := tt.Writes(); len(got) != 1 || got[0] != "AT" {
			t.Errorf("unexpected writes: %v", got)
		}
	})

	t.Run("ErrCommandError on ERROR", func(t *testing.T) {
		m, tt := newTestModem(t)
		tt.Respond("AT", "\r\nERROR\r\n")

		if err := m.At(); !errors.Is(err, ErrCommandError) {
			t.Errorf("expected ErrCommandError, got: %v", err)
		}
	})

	t.Run("ErrNoResponse on silence", func(t *testing.T) {
		m, _ := newTestModem(t)

		if err := m.At(); !errors.Is(err, ErrNoResponse) {
			t.Errorf("expected ErrNoResponse, got: %v", err)
		}
	})

	t.Run("silence is waited out for the full timeout and no longer", func(t *testing.T) {
		m, _ := newTestModem(t)

		const timeout = 100 * time.Millisecond
		start := time.Now()
		_, err := m.sendCommandWithResponse("", "", timeout)
		elapsed := time.Since(start)

		if !errors.Is(err, ErrNoResponse) {
			t.Fatalf("expected ErrNoResponse, got: %v", err)
		}
		if elapsed < timeout {
			t.Errorf("gave up after %v, before the %v timeout", elapsed, timeout)
		}
		if elapsed > 10*timeout {
			t.Errorf("still waiting %v after the %v timeout", elapsed, timeout)
		}
	})

	t.Run("ErrUnexpectedResponse without terminating token", func(t *testing.T) {
		m, tt := newTestModem(t)
		tt.Respond("AT", "\r\n+CSQ: 4,2\r\n")

		if err := m.At(); !errors.Is(err, ErrUnexpectedResponse) {
			t.Errorf("expected ErrUnexpectedResponse, got: %v", err)
		}
	})

	t.Run("not open", func(t *testing.T) {
		tt := NewTestTransport()
		m, err := New(Config{Transport: tt})
		if err != nil {
			t.Fatalf("unexpected error from New(): %v", err)
		}

		if err := m.At(); !errors.Is(err, ErrNotOpen) {
			t.Errorf("expected ErrNotOpen, got: %v", err)
		}
	})
}

func TestTransactionBacklog(t *testing.T) {
	t.Run("interleaved notification survives a transaction", func(t *testing.T) {
		m, tt := newTestModem(t)
		tt.Respond("AT+CSQ", "\r\n+UUSOCL: 3\r\n\r\n+CSQ: 4,2\r\n"+okResponse)

		rssi, err := m.RSSI()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rssi != 4 {
			t.Errorf("expected rssi 4, got: %d", rssi)
		}
		if got := string(m.backlog); got != "+UUSOCL: 3\r\n" {
			t.Errorf("unexpected backlog: %q", got)
		}
	})

	t.Run("notification survives a failing transaction", func(t *testing.T) {
		m, tt := newTestModem(t)
		tt.Respond("AT", "\r\n+UUSORD: 2,5\r\n\r\nERROR\r\n")

		if err := m.At(); !errors.Is(err, ErrCommandError) {
			t.Fatalf("expected ErrCommandError, got: %v", err)
		}
		if got := string(m.backlog); got != "+UUSORD: 2,5\r\n" {
			t.Errorf("unexpected backlog: %q", got)
		}
	})

	t.Run("NUL bytes are sanitized in the backlog", func(t *testing.T) {
		m, tt := newTestModem(t)
		tt.Respond("AT", "\r\n+UUSORD: 2,\x002\r\n"+okResponse)

		if err := m.At(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := string(m.backlog); got != "+UUSORD: 2,02\r\n" {
			t.Errorf("unexpected backlog: %q", got)
		}
	})
}
