package modem

import (
	"fmt"
	"strings"
	"time"

	"i4.energy/across/ltegw/at"
)

const operatorTimeout = 180 * time.Second

// SetRegistrationReporting sets the +CREG unsolicited reporting mode:
// 0 off, 1 status only, 2 status with cell identifiers. Mode 2 is
// required for the registration callback to fire with location data.
func (m *Modem) SetRegistrationReporting(mode int) error {
	return m.expectOK(fmt.Sprintf("+CREG=%d", mode), standardTimeout)
}

// SetEPSRegistrationReporting sets the +CEREG reporting mode.
func (m *Modem) SetEPSRegistrationReporting(mode int) error {
	return m.expectOK(fmt.Sprintf("+CEREG=%d", mode), standardTimeout)
}

// RegistrationStatusQuery reads the current network registration
// state. With eps it queries the EPS (LTE) registration instead of the
// circuit switched one.
func (m *Modem) RegistrationStatusQuery(eps bool) (RegistrationStatus, error) {
	name := "+CREG"
	if eps {
		name = "+CEREG"
	}
	resp, err := m.sendCommandWithResponse(name+"?", "", standardTimeout)
	if err != nil {
		return RegistrationInvalid, fmt.Errorf("registration query: %w", err)
	}
	rest, ok := responsePayload(resp, name+":")
	if !ok {
		return RegistrationInvalid, fmt.Errorf("registration query: %w", ErrUnexpectedResponse)
	}
	var mode, stat int
	if n, _ := fmt.Sscanf(rest, "%d,%d", &mode, &stat); n != 2 {
		return RegistrationInvalid, fmt.Errorf("registration query: %w", ErrUnexpectedResponse)
	}
	return RegistrationStatus(stat), nil
}

// IsRegistered reports whether the module is registered home or
// roaming, returning ErrDeregistered otherwise.
func (m *Modem) IsRegistered() error {
	stat, err := m.RegistrationStatusQuery(true)
	if err != nil {
		return err
	}
	switch stat {
	case RegistrationHome, RegistrationRoaming,
		RegistrationHomeSMSOnly, RegistrationRoamingSMSOnly:
		return nil
	}
	return fmt.Errorf("registration status %d: %w", stat, ErrDeregistered)
}

// Operator returns the long alphanumeric name of the currently
// selected network operator.
func (m *Modem) Operator() (string, error) {
	resp, err := m.sendCommandWithResponse("+COPS?", "", operatorTimeout)
	if err != nil {
		return "", fmt.Errorf("operator query: %w", err)
	}
	rest, ok := responsePayload(resp, "+COPS:")
	if !ok {
		return "", fmt.Errorf("operator query: %w", ErrUnexpectedResponse)
	}
	// +COPS: <mode>[,<format>,"<oper>"[,<AcT>]]
	open := strings.Index(rest, `"`)
	if open < 0 {
		// Not registered yet; no operator field.
		return "", fmt.Errorf("operator query: %w", ErrDeregistered)
	}
	end := strings.Index(rest[open+1:], `"`)
	if end < 0 {
		return "", fmt.Errorf("operator query: %w", ErrUnexpectedResponse)
	}
	return rest[open+1 : open+1+end], nil
}

// AutomaticOperatorSelection lets the module pick the network. This
// can take minutes on a cold start.
func (m *Modem) AutomaticOperatorSelection() error {
	return m.expectOK("+COPS=0", operatorTimeout)
}

// Deregister drops the network registration.
func (m *Modem) Deregister() error {
	return m.expectOK("+COPS=2", operatorTimeout)
}

// SetAPN defines PDP context cid with the given APN, IP type "IP".
func (m *Modem) SetAPN(cid int, apn string) error {
	return m.expectOK(fmt.Sprintf("+CGDCONT=%d,\"IP\",%q", cid, apn), standardTimeout)
}

// APN returns the APN configured for PDP context cid.
func (m *Modem) APN(cid int) (string, error) {
	resp, err := m.sendCommandWithResponse("+CGDCONT?", "", standardTimeout)
	if err != nil {
		return "", fmt.Errorf("apn query: %w", err)
	}
	for _, line := range strings.Split(resp, "\r\n") {
		rest, ok := responsePayload(line, "+CGDCONT:")
		if !ok {
			continue
		}
		var gotCID int
		var ipType, apn string
		if n, _ := fmt.Sscanf(rest, "%d,%q,%q", &gotCID, &ipType, &apn); n >= 3 && gotCID == cid {
			return apn, nil
		}
	}
	return "", fmt.Errorf("apn query: context %d not defined: %w", cid, ErrUnexpectedResponse)
}

// ActivatePDPContext activates (or with on=false deactivates) PDP
// context cid.
func (m *Modem) ActivatePDPContext(cid int, on bool) error {
	v := 0
	if on {
		v = 1
	}
	return m.expectOK(fmt.Sprintf("+CGACT=%d,%d", v, cid), ipActivateTimeout)
}

// MNOProfile returns the configured mobile network operator profile.
func (m *Modem) MNOProfile() (int, error) {
	resp, err := m.sendCommandWithResponse("+UMNOPROF?", "", standardTimeout)
	if err != nil {
		return 0, fmt.Errorf("mno profile query: %w", err)
	}
	rest, ok := responsePayload(resp, "+UMNOPROF:")
	if !ok {
		return 0, fmt.Errorf("mno profile query: %w", ErrUnexpectedResponse)
	}
	var profile int
	if n, _ := fmt.Sscanf(rest, "%d", &profile); n != 1 {
		return 0, fmt.Errorf("mno profile query: %w", ErrUnexpectedResponse)
	}
	return profile, nil
}

// SetMNOProfile selects the mobile network operator profile. The
// module must be in minimum functionality to accept it, and needs a
// reset afterwards.
func (m *Modem) SetMNOProfile(profile int) error {
	return m.expectOK(fmt.Sprintf("+UMNOPROF=%d", profile), standardTimeout)
}

// Ping sends ICMP echo requests to host with module defaults. Replies
// arrive asynchronously as +UUPING notifications.
func (m *Modem) Ping(host string) error {
	return m.expectOK(fmt.Sprintf("+UPING=%q", host), tenSecondTimeout)
}

// PingWithOptions sends count echo requests of the given payload size.
func (m *Modem) PingWithOptions(host string, count, size int) error {
	return m.expectOK(fmt.Sprintf("+UPING=%q,%d,%d", host, count, size), tenSecondTimeout)
}

// DialPPP starts a dial-up data call on PDP context cid. The module
// answers CONNECT and switches the line to PPP framing; everything
// after that is the PPP stack's business.
func (m *Modem) DialPPP(cid int) error {
	_, err := m.sendCommandWithResponse(fmt.Sprintf("D*99***%d#", cid), at.ResponseConnect, ipConnectTimeout)
	if err != nil {
		return fmt.Errorf("dial ppp: %w", err)
	}
	return nil
}
