package modem

import (
	"fmt"
	"strings"
	"time"
)

// GNSSSystem selects the satellite systems the receiver uses. Values
// combine as a bit mask.
type GNSSSystem int

const (
	GNSSSystemGPS     GNSSSystem = 1
	GNSSSystemSBAS    GNSSSystem = 2
	GNSSSystemGalileo GNSSSystem = 4
	GNSSSystemBeiDou  GNSSSystem = 8
	GNSSSystemIMES    GNSSSystem = 16
	GNSSSystemQZSS    GNSSSystem = 32
	GNSSSystemGLONASS GNSSSystem = 64
)

// GNSSAiding selects the aiding mode used when powering the receiver.
type GNSSAiding int

const (
	GNSSAidingNone                GNSSAiding = 0
	GNSSAidingAutomatic           GNSSAiding = 1
	GNSSAidingAssistNowOffline    GNSSAiding = 2
	GNSSAidingAssistNowOnline     GNSSAiding = 4
	GNSSAidingAssistNowAutonomous GNSSAiding = 8
)

// GNSSPowerOn turns the GNSS receiver on with the given aiding mode and
// satellite systems.
func (m *Modem) GNSSPowerOn(aiding GNSSAiding, systems GNSSSystem) error {
	cmd := fmt.Sprintf("+UGPS=1,%d,%d", aiding, systems)
	return m.expectOK(cmd, tenSecondTimeout)
}

// GNSSPowerOff turns the GNSS receiver off.
func (m *Modem) GNSSPowerOff() error {
	return m.expectOK("+UGPS=0", tenSecondTimeout)
}

// GNSSOn reports whether the GNSS receiver is powered.
func (m *Modem) GNSSOn() (bool, error) {
	resp, err := m.sendCommandWithResponse("+UGPS?", "", tenSecondTimeout)
	if err != nil {
		return false, fmt.Errorf("gnss query: %w", err)
	}
	rest, ok := responsePayload(resp, "+UGPS:")
	if !ok {
		return false, fmt.Errorf("gnss query: %w", ErrUnexpectedResponse)
	}
	return strings.HasPrefix(strings.TrimSpace(rest), "1"), nil
}

// RequestLocation starts a single positioning request. The sensor
// argument selects the positioning method (1 GNSS, 2 CellLocate, 3
// combined). The fix is delivered later through OnLocation; detailed
// requests include speed and course. The receiver must be off when the
// request is issued, so it is powered down first if needed.
func (m *Modem) RequestLocation(sensor int, detailed bool, timeout time.Duration, accuracy int) error {
	if on, err := m.GNSSOn(); err == nil && on {
		if err := m.GNSSPowerOff(); err != nil {
			return fmt.Errorf("request location: %w", err)
		}
	}
	secs := int(timeout / time.Second)
	if secs > 999 {
		secs = 999
	}
	if accuracy > 999999 {
		accuracy = 999999
	}
	d := 0
	if detailed {
		d = 1
	}
	cmd := fmt.Sprintf("+ULOC=2,%d,%d,%d,%d", sensor, d, secs, accuracy)
	return m.expectOK(cmd, tenSecondTimeout)
}
