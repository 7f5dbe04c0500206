package modem

import (
	"fmt"
	"strings"
)

// SIMStatus returns the +CPIN state string, e.g. "READY" or "SIM PIN".
func (m *Modem) SIMStatus() (string, error) {
	resp, err := m.sendCommandWithResponse("+CPIN?", "", tenSecondTimeout)
	if err != nil {
		return "", fmt.Errorf("sim status: %w", err)
	}
	rest, ok := responsePayload(resp, "+CPIN:")
	if !ok {
		return "", fmt.Errorf("sim status: %w", ErrUnexpectedResponse)
	}
	if i := strings.Index(rest, "\r"); i >= 0 {
		rest = rest[:i]
	}
	return strings.TrimSpace(rest), nil
}

// EnterPIN supplies the SIM PIN.
func (m *Modem) EnterPIN(pin string) error {
	return m.expectOK(fmt.Sprintf("+CPIN=%q", pin), tenSecondTimeout)
}

// SetSIMStateReporting enables (mode 1) or disables (mode 0) the
// +UUSIMSTAT notification delivered to the SIM state callback.
func (m *Modem) SetSIMStateReporting(mode int) error {
	return m.expectOK(fmt.Sprintf("+USIMSTAT=%d", mode), standardTimeout)
}
