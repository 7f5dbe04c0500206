// Package modem implements a driver for u-blox LARA-class LTE-M / NB-IoT
// cellular modules, speaking the AT command set over a serial transport.
//
// The driver is single threaded by design: commands are synchronous
// transactions, and unsolicited result codes (URCs) that arrive while a
// command is in flight are captured into a backlog buffer and replayed
// later by BufferedPoll. Callbacks registered for URC kinds run on the
// caller's stack during BufferedPoll.
package modem

import (
	"fmt"
	"io"
	"log/slog"
	"net/netip"
	"time"
)

const (
	// NumSockets is the number of data sockets the module provides.
	NumSockets = 6

	// rxBufferSize bounds the backlog and the poll working buffer.
	rxBufferSize = 2056

	// rxWindow is the idle window used when draining the transport:
	// reading stops once no byte has arrived for this long. 1 ms is
	// not quite long enough for a single character at 9600 baud.
	rxWindow = 2 * time.Millisecond

	// pollDelay is the yield between polls of an idle transport.
	pollDelay = time.Millisecond
)

// Protocol identifies a socket's transport protocol, using the values
// the module's +USOCR command takes.
type Protocol int

const (
	ProtocolUnknown Protocol = 0
	ProtocolTCP     Protocol = 6
	ProtocolUDP     Protocol = 17
)

// Modem drives a single module. All methods must be called from one
// goroutine; see the package comment for the concurrency model.
type Modem struct {
	transport Transport
	cfg       Config
	log       *slog.Logger

	powerPin Pin
	resetPin Pin

	open   bool
	closed bool
	baud   int

	// backlog holds bytes read while a command transaction was in
	// flight, pruned down to recognized URC lines.
	backlog []byte

	// lastProtocol records the protocol chosen at socket open so data
	// indications can be routed without querying the module.
	lastProtocol [NumSockets]Protocol

	// lastRemote and lastLocal are taken from the most recent listen
	// indication.
	lastRemote netip.AddrPort
	lastLocal  netip.AddrPort

	inBufferedPoll bool
	inPoll         bool

	handlers handlers
}

// New creates a Modem from config. The transport is not touched until
// Begin is called.
func New(config Config) (*Modem, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}
	config.setDefaults()

	log := config.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Modem{
		transport: config.Transport,
		cfg:       config,
		log:       log,
		powerPin:  config.PowerPin,
		resetPin:  config.ResetPin,
		backlog:   make([]byte, 0, rxBufferSize),
	}, nil
}

// Begin opens the transport and brings the module to a known state. It
// retries across connection strategies: a failed autobaud attempt falls
// back to a power cycle and vice versa, up to MaxInitTries.
//
// After the module answers, Begin disables command echo, selects SMS
// text mode, applies the time zone setting and closes any socket left
// open from a previous session.
func (m *Modem) Begin() error {
	if m.closed {
		return ErrAlreadyClosed
	}

	if err := m.transport.Open(m.cfg.Baud); err != nil {
		return fmt.Errorf("open transport: %w", err)
	}
	m.open = true
	m.baud = m.cfg.Baud

	initType := m.cfg.Init
	var err error
	for try := 0; try < m.cfg.MaxInitTries; try++ {
		m.log.Debug("module init", "try", try, "strategy", initType)

		switch initType {
		case InitAutobaud:
			if err = m.autobaud(m.cfg.Baud); err != nil {
				initType = InitPowerCycle
				continue
			}
		case InitPowerCycle:
			m.PowerOff()
			time.Sleep(powerOffPulse)
			m.PowerOn()
			if err = m.transport.Open(m.cfg.Baud); err != nil {
				return fmt.Errorf("reopen transport: %w", err)
			}
			time.Sleep(2 * time.Second)
			if err = m.At(); err != nil {
				initType = InitAutobaud
				continue
			}
		default:
			if err = m.At(); err != nil {
				initType = InitPowerCycle
				continue
			}
		}

		if err = m.SetEcho(false); err != nil {
			m.log.Debug("module failed echo test")
			initType = InitAutobaud
			continue
		}
		break
	}
	if err != nil {
		return fmt.Errorf("module init: %w", ErrNoResponse)
	}

	m.log.Debug("module responded", "baud", m.baud)

	m.SetGPIOMode(GPIO1, GPIONetworkStatus, 0)
	m.SetGPIOMode(GPIO6, GPIOTimePulseOutput, 0)
	if err := m.SetSMSTextMode(); err != nil {
		return fmt.Errorf("set SMS text mode: %w", err)
	}
	if err := m.AutoTimeZone(m.cfg.AutoTimeZone); err != nil {
		return fmt.Errorf("set auto time zone: %w", err)
	}
	for s := 0; s < NumSockets; s++ {
		// Stale sockets from before a host restart. Errors expected
		// for sockets that are not open.
		m.SocketClose(s)
	}

	return nil
}

// autobaud walks the supported rates, pushing the module to desired at
// each one until it answers an AT probe at the desired rate.
func (m *Modem) autobaud(desired int) error {
	err := ErrNoResponse
	for _, baud := range supportedBauds {
		if oerr := m.transport.Open(baud); oerr != nil {
			return fmt.Errorf("open transport at %d: %w", baud, oerr)
		}
		m.SetBaud(desired)
		if oerr := m.transport.Open(desired); oerr != nil {
			return fmt.Errorf("open transport at %d: %w", desired, oerr)
		}
		if err = m.At(); err == nil {
			m.baud = desired
			return nil
		}
	}
	return err
}

// Close shuts the transport down. The module itself is left running;
// use PowerOff or ModulePowerOff first to switch it off.
func (m *Modem) Close() error {
	if m.closed {
		return ErrAlreadyClosed
	}
	m.closed = true
	m.open = false
	return m.transport.Close()
}
