package modem_test

import (
	"errors"
	"fmt"
	"slices"
	"testing"

	"i4.energy/across/ltegw/modem"
)

const ok = "\r\nOK\r\n"

// scriptBegin registers responses for the whole Begin sequence.
func scriptBegin(tt *modem.TestTransport) {
	for _, cmd := range []string{
		"AT", "ATE0",
		"AT+UGPIOC=16,2", "AT+UGPIOC=19,22",
		"AT+CMGF=1", "AT+CTZU=0",
	} {
		tt.Respond(cmd, ok)
	}
	for s := 0; s < modem.NumSockets; s++ {
		tt.Respond(fmt.Sprintf("AT+USOCL=%d,1", s), ok)
	}
}

// beginModem returns a modem that has completed Begin against a
// scripted transport.
func beginModem(t *testing.T) (*modem.Modem, *modem.TestTransport) {
	t.Helper()
	tt := modem.NewTestTransport()
	scriptBegin(tt)

	config, err := modem.NewConfigBuilder().WithTransport(tt).Build()
	if err != nil {
		t.Fatalf("unexpected error from Build(): %v", err)
	}
	m, err := modem.New(config)
	if err != nil {
		t.Fatalf("unexpected error from New(): %v", err)
	}
	if err := m.Begin(); err != nil {
		t.Fatalf("unexpected error from Begin(): %v", err)
	}
	return m, tt
}

func TestModemBegin(t *testing.T) {
	t.Run("initialization success", func(t *testing.T) {
		m, tt := beginModem(t)
		defer m.Close()

		if got := tt.Baud(); got != modem.DefaultBaud {
			t.Errorf("unexpected baud: %d", got)
		}

		writes := tt.Writes()
		for _, want := range []string{"AT", "ATE0", "AT+CMGF=1", "AT+CTZU=0", "AT+USOCL=5,1"} {
			if !slices.Contains(writes, want) {
				t.Errorf("expected %q in writes: %v", want, writes)
			}
		}
	})

	t.Run("begin after close fails", func(t *testing.T) {
		m, _ := beginModem(t)
		if err := m.Close(); err != nil {
			t.Fatalf("unexpected error from Close(): %v", err)
		}

		if err := m.Begin(); !errors.Is(err, modem.ErrAlreadyClosed) {
			t.Errorf("expected ErrAlreadyClosed, got: %v", err)
		}
	})

	t.Run("double close fails", func(t *testing.T) {
		m, _ := beginModem(t)
		if err := m.Close(); err != nil {
			t.Fatalf("unexpected error from Close(): %v", err)
		}

		if err := m.Close(); !errors.Is(err, modem.ErrAlreadyClosed) {
			t.Errorf("expected ErrAlreadyClosed, got: %v", err)
		}
	})
}

func TestModemInfo(t *testing.T) {
	t.Run("identity queries", func(t *testing.T) {
		m, tt := beginModem(t)
		defer m.Close()

		tt.Respond("AT+CGMI", "\r\nu-blox\r\n"+ok)
		tt.Respond("AT+CGMM", "\r\nLARA-R6001D\r\n"+ok)
		tt.Respond("AT+GSN", "\r\n352656100032138\r\n"+ok)

		if got, err := m.Manufacturer(); err != nil || got != "u-blox" {
			t.Errorf("unexpected manufacturer: %q, %v", got, err)
		}
		if got, err := m.Model(); err != nil || got != "LARA-R6001D" {
			t.Errorf("unexpected model: %q, %v", got, err)
		}
		if got, err := m.IMEI(); err != nil || got != "352656100032138" {
			t.Errorf("unexpected IMEI: %q, %v", got, err)
		}
	})

	t.Run("clock round trip", func(t *testing.T) {
		m, tt := beginModem(t)
		defer m.Close()

		tt.Respond("AT+CCLK?", "\r\n+CCLK: \"24/08/30,10:15:20+08\"\r\n"+ok)

		got, err := m.Clock()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Year() != 2024 || got.Month() != 8 || got.Day() != 30 {
			t.Errorf("unexpected date: %v", got)
		}
		if got.Hour() != 10 || got.Minute() != 15 || got.Second() != 20 {
			t.Errorf("unexpected time: %v", got)
		}
		_, offset := got.Zone()
		if offset != 8*15*60 {
			t.Errorf("unexpected zone offset: %d", offset)
		}
	})

	t.Run("signal quality", func(t *testing.T) {
		m, tt := beginModem(t)
		defer m.Close()

		tt.Respond("AT+CSQ", "\r\n+CSQ: 17,99\r\n"+ok)

		if got, err := m.RSSI(); err != nil || got != 17 {
			t.Errorf("unexpected rssi: %d, %v", got, err)
		}
	})
}

func TestModemNetwork(t *testing.T) {
	t.Run("registered when home network", func(t *testing.T) {
		m, tt := beginModem(t)
		defer m.Close()

		tt.Respond("AT+CEREG?", "\r\n+CEREG: 0,1\r\n"+ok)

		if err := m.IsRegistered(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("deregistered when searching", func(t *testing.T) {
		m, tt := beginModem(t)
		defer m.Close()

		tt.Respond("AT+CEREG?", "\r\n+CEREG: 0,2\r\n"+ok)

		if err := m.IsRegistered(); !errors.Is(err, modem.ErrDeregistered) {
			t.Errorf("expected ErrDeregistered, got: %v", err)
		}
	})

	t.Run("operator name", func(t *testing.T) {
		m, tt := beginModem(t)
		defer m.Close()

		tt.Respond("AT+COPS?", "\r\n+COPS: 0,0,\"Vodafone\",7\r\n"+ok)

		if got, err := m.Operator(); err != nil || got != "Vodafone" {
			t.Errorf("unexpected operator: %q, %v", got, err)
		}
	})
}
