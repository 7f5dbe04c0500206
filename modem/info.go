package modem

import (
	"fmt"
	"strings"
	"time"
)

// At probes the module with a bare attention command.
func (m *Modem) At() error {
	return m.expectOK("", standardTimeout)
}

// SetEcho switches local command echo. The driver assumes echo is off;
// Begin disables it.
func (m *Modem) SetEcho(on bool) error {
	v := 0
	if on {
		v = 1
	}
	return m.expectOK(fmt.Sprintf("E%d", v), standardTimeout)
}

// SetBaud asks the module to switch its UART rate. The response
// arrives at the old rate; reopen the transport at the new rate after
// this returns.
func (m *Modem) SetBaud(baud int) error {
	return m.expectOK(fmt.Sprintf("+IPR=%d", baud), standardTimeout)
}

// Manufacturer returns the manufacturer identification string.
func (m *Modem) Manufacturer() (string, error) { return m.queryString("+CGMI") }

// Model returns the model identification string.
func (m *Modem) Model() (string, error) { return m.queryString("+CGMM") }

// FirmwareVersion returns the firmware version string.
func (m *Modem) FirmwareVersion() (string, error) { return m.queryString("+CGMR") }

// SerialNumber returns the product serial number.
func (m *Modem) SerialNumber() (string, error) { return m.queryString("+CGSN") }

// IMEI returns the module's IMEI.
func (m *Modem) IMEI() (string, error) { return m.queryString("+GSN") }

// IMSI returns the SIM's IMSI.
func (m *Modem) IMSI() (string, error) { return m.queryString("+CIMI") }

// CCID returns the SIM's CCID.
func (m *Modem) CCID() (string, error) {
	resp, err := m.queryString("+CCID")
	if err != nil {
		return "", err
	}
	// The response is "+CCID: <ccid>"; the getters above answer bare.
	if rest, ok := responsePayload(resp, "+CCID:"); ok {
		return strings.TrimSpace(rest), nil
	}
	return resp, nil
}

// queryString runs an identification command and returns the first
// non-empty payload line of the response.
func (m *Modem) queryString(cmd string) (string, error) {
	resp, err := m.sendCommandWithResponse(cmd, "", tenSecondTimeout)
	if err != nil {
		return "", fmt.Errorf("query %s: %w", cmd, err)
	}
	for _, line := range strings.Split(resp, "\r\n") {
		line = strings.TrimSpace(line)
		if line != "" && line != "OK" {
			return line, nil
		}
	}
	return "", fmt.Errorf("query %s: %w", cmd, ErrUnexpectedResponse)
}

// Clock returns the module's real-time clock. The offset reported by
// the module is in quarter hours.
func (m *Modem) Clock() (time.Time, error) {
	resp, err := m.sendCommandWithResponse("+CCLK?", "", standardTimeout)
	if err != nil {
		return time.Time{}, fmt.Errorf("clock query: %w", err)
	}
	rest, ok := responsePayload(resp, "+CCLK:")
	if !ok {
		return time.Time{}, fmt.Errorf("clock query: %w", ErrUnexpectedResponse)
	}

	var yy, mo, dd, hh, mi, ss, tz int
	n, _ := fmt.Sscanf(rest, "\"%d/%d/%d,%d:%d:%d+%d\"", &yy, &mo, &dd, &hh, &mi, &ss, &tz)
	if n < 7 {
		n, _ = fmt.Sscanf(rest, "\"%d/%d/%d,%d:%d:%d-%d\"", &yy, &mo, &dd, &hh, &mi, &ss, &tz)
		if n < 7 {
			return time.Time{}, fmt.Errorf("clock query: %w", ErrUnexpectedResponse)
		}
		tz = -tz
	}

	loc := time.FixedZone("", tz*15*60)
	return time.Date(2000+yy, time.Month(mo), dd, hh, mi, ss, 0, loc), nil
}

// SetClock sets the module's real-time clock.
func (m *Modem) SetClock(t time.Time) error {
	_, offset := t.Zone()
	quarters := offset / (15 * 60)
	sign := "+"
	if quarters < 0 {
		sign = "-"
		quarters = -quarters
	}
	cmd := fmt.Sprintf("+CCLK=\"%02d/%02d/%02d,%02d:%02d:%02d%s%02d\"",
		t.Year()%100, int(t.Month()), t.Day(), t.Hour(), t.Minute(), t.Second(), sign, quarters)
	return m.expectOK(cmd, standardTimeout)
}

// AutoTimeZone enables or disables automatic time zone updates from
// the network.
func (m *Modem) AutoTimeZone(on bool) error {
	v := 0
	if on {
		v = 1
	}
	return m.expectOK(fmt.Sprintf("+CTZU=%d", v), standardTimeout)
}

// RSSI returns the received signal strength indication as reported by
// +CSQ: 0..31, or 99 when unknown.
func (m *Modem) RSSI() (int, error) {
	resp, err := m.sendCommandWithResponse("+CSQ", "", tenSecondTimeout)
	if err != nil {
		return 0, fmt.Errorf("signal quality: %w", err)
	}
	rest, ok := responsePayload(resp, "+CSQ:")
	if !ok {
		return 0, fmt.Errorf("signal quality: %w", ErrUnexpectedResponse)
	}
	var rssi, qual int
	if n, _ := fmt.Sscanf(rest, "%d,%d", &rssi, &qual); n != 2 {
		return 0, fmt.Errorf("signal quality: %w", ErrUnexpectedResponse)
	}
	return rssi, nil
}

// SignalQuality holds the extended signal quality report from +CESQ.
// Fields are the raw 3GPP mapped values; 99 / 255 mean "not known".
type SignalQuality struct {
	RXLev int
	BER   int
	RSCP  int
	ECN0  int
	RSRQ  int
	RSRP  int
}

// ExtendedSignalQuality returns the +CESQ measurement set.
func (m *Modem) ExtendedSignalQuality() (SignalQuality, error) {
	resp, err := m.sendCommandWithResponse("+CESQ", "", tenSecondTimeout)
	if err != nil {
		return SignalQuality{}, fmt.Errorf("extended signal quality: %w", err)
	}
	rest, ok := responsePayload(resp, "+CESQ:")
	if !ok {
		return SignalQuality{}, fmt.Errorf("extended signal quality: %w", ErrUnexpectedResponse)
	}
	var q SignalQuality
	n, _ := fmt.Sscanf(rest, "%d,%d,%d,%d,%d,%d", &q.RXLev, &q.BER, &q.RSCP, &q.ECN0, &q.RSRQ, &q.RSRP)
	if n != 6 {
		return SignalQuality{}, fmt.Errorf("extended signal quality: %w", ErrUnexpectedResponse)
	}
	return q, nil
}

// Functionality levels for SetFunctionality (+CFUN).
type Functionality int

const (
	FuncMinimum        Functionality = 0
	FuncFull           Functionality = 1
	FuncAirplaneMode   Functionality = 4
	FuncSilentReset    Functionality = 15
	FuncSilentResetSIM Functionality = 16
	FuncMinimumNoSIM   Functionality = 19
	FuncDeepSleepPrep  Functionality = 127
)

// SetFunctionality selects the module functionality level, including
// the silent reset variants.
func (m *Modem) SetFunctionality(f Functionality) error {
	return m.expectOK(fmt.Sprintf("+CFUN=%d", f), tenSecondTimeout)
}

// ModulePowerOff switches the module off by command. Prefer it over
// the PowerOff pulse when the module is responsive.
func (m *Modem) ModulePowerOff() error {
	return m.expectOK("+CPWROFF", powerOffTimeout)
}
