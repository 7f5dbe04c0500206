package modem

import "time"

// Pin drives a single GPIO line on the host, used for the module's
// PWR_ON and RESET_N pins. Implementations that need inversion (some
// carrier boards wire PWR_ON through a FET) handle it internally.
type Pin interface {
	Set(high bool)
}

// Pulse periods from the module datasheet. The reset hold really is
// 23 seconds.
const (
	powerOnPulse  = 100 * time.Millisecond
	powerOffPulse = 3200 * time.Millisecond
	resetHold     = 23 * time.Second
)

// PowerOn pulses the PWR_ON pin to boot the module. A no-op when no
// power pin was configured. The module needs around two seconds after
// the pulse before it accepts commands; Begin handles that wait.
func (m *Modem) PowerOn() {
	if m.powerPin == nil {
		return
	}
	m.powerPin.Set(false)
	time.Sleep(powerOnPulse)
	m.powerPin.Set(true)
	m.log.Debug("power on pulse complete")
}

// PowerOff holds the PWR_ON pin low long enough to switch the module
// off. The +CPWROFF command is preferred when the module is responsive.
func (m *Modem) PowerOff() {
	if m.powerPin == nil {
		return
	}
	m.powerPin.Set(false)
	time.Sleep(powerOffPulse)
	m.powerPin.Set(true)
	m.log.Debug("power off pulse complete")
}

// HardwareReset performs an abrupt emergency shutdown and restart. It
// requires both the RESET_N and PWR_ON pins and takes well over twenty
// seconds.
func (m *Modem) HardwareReset() {
	if m.resetPin == nil || m.powerPin == nil {
		return
	}
	m.resetPin.Set(true)
	m.powerPin.Set(false)
	time.Sleep(resetHold)
	m.resetPin.Set(false)
	time.Sleep(100 * time.Millisecond)
	m.powerPin.Set(true)
	time.Sleep(1500 * time.Millisecond)
	m.resetPin.Set(true)
}
