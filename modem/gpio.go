package modem

import "fmt"

// GPIO names the module's configurable GPIO pads by their pin number.
type GPIO int

const (
	GPIO1 GPIO = 16
	GPIO2 GPIO = 23
	GPIO3 GPIO = 24
	GPIO4 GPIO = 25
	GPIO5 GPIO = 42
	GPIO6 GPIO = 19
)

// GPIOMode selects the function of a module GPIO pad.
type GPIOMode int

const (
	GPIOOutput          GPIOMode = 0
	GPIOInput           GPIOMode = 1
	GPIONetworkStatus   GPIOMode = 2
	GPIOGNSSSupply      GPIOMode = 3
	GPIOGNSSDataReady   GPIOMode = 4
	GPIOGNSSRTCSharing  GPIOMode = 5
	GPIOJammingDetect   GPIOMode = 6
	GPIOSIMCardDetect   GPIOMode = 7
	GPIORingIndication  GPIOMode = 18
	GPIOTimePulseOutput GPIOMode = 22
	GPIOFastPowerOff    GPIOMode = 24
	GPIOPadDisabled     GPIOMode = 255
)

// SetGPIOMode configures a module GPIO pad. value is only meaningful
// in output mode, where it sets the initial level.
func (m *Modem) SetGPIOMode(gpio GPIO, mode GPIOMode, value int) error {
	cmd := fmt.Sprintf("+UGPIOC=%d,%d", gpio, mode)
	if mode == GPIOOutput {
		cmd = fmt.Sprintf("+UGPIOC=%d,%d,%d", gpio, mode, value)
	}
	return m.expectOK(cmd, tenSecondTimeout)
}

// GPIOModeQuery reads back the configured function of a GPIO pad.
func (m *Modem) GPIOModeQuery(gpio GPIO) (GPIOMode, error) {
	resp, err := m.sendCommandWithResponse("+UGPIOC?", "", tenSecondTimeout)
	if err != nil {
		return 0, fmt.Errorf("gpio query: %w", err)
	}
	rest := resp
	for {
		payload, ok := responsePayload(rest, "+UGPIOC:")
		if !ok {
			break
		}
		var pin, mode int
		if n, _ := fmt.Sscanf(payload, "%d,%d", &pin, &mode); n == 2 && GPIO(pin) == gpio {
			return GPIOMode(mode), nil
		}
		rest = payload
	}
	return 0, fmt.Errorf("gpio query: %w", ErrUnexpectedResponse)
}
