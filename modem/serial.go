package modem

import (
	"fmt"
	"time"

	"go.bug.st/serial"
)

// readTimeout is the poll interval applied to the underlying port so
// reads never block the driver loop for long.
const readTimeout = time.Millisecond

// SerialTransport connects the driver to the module over a serial port
// using go.bug.st/serial.
//
// The serial package exposes a blocking Read, so the transport keeps a
// small readahead buffer: Available tops it up with a short-timeout
// read and reports what is buffered, ReadByte pops from it.
type SerialTransport struct {
	// PortName is the device path, e.g. "/dev/ttyUSB0".
	PortName string

	port      serial.Port
	readahead []byte
	scratch   [256]byte
}

// NewSerialTransport returns an unopened transport for the named port.
func NewSerialTransport(portName string) *SerialTransport {
	return &SerialTransport{PortName: portName}
}

func (t *SerialTransport) Open(baud int) error {
	mode := &serial.Mode{BaudRate: baud}

	if t.port != nil {
		// Reconfigure the open port in place. Autobaud negotiation
		// switches rates without tearing the connection down.
		if err := t.port.SetMode(mode); err != nil {
			return fmt.Errorf("set mode on %s: %w", t.PortName, err)
		}
		return nil
	}

	port, err := serial.Open(t.PortName, mode)
	if err != nil {
		return fmt.Errorf("open %s: %w", t.PortName, err)
	}
	if err := port.SetReadTimeout(readTimeout); err != nil {
		port.Close()
		return fmt.Errorf("set read timeout on %s: %w", t.PortName, err)
	}
	t.port = port
	return nil
}

func (t *SerialTransport) Available() int {
	if t.port == nil {
		return -1
	}
	if len(t.readahead) > 0 {
		return len(t.readahead)
	}
	n, err := t.port.Read(t.scratch[:])
	if err != nil {
		return 0
	}
	t.readahead = append(t.readahead, t.scratch[:n]...)
	return len(t.readahead)
}

func (t *SerialTransport) ReadByte() (byte, error) {
	if t.port == nil {
		return 0, ErrNotOpen
	}
	for len(t.readahead) == 0 {
		n, err := t.port.Read(t.scratch[:])
		if err != nil {
			return 0, fmt.Errorf("read %s: %w", t.PortName, err)
		}
		if n == 0 {
			continue
		}
		t.readahead = append(t.readahead, t.scratch[:n]...)
	}
	c := t.readahead[0]
	t.readahead = t.readahead[1:]
	return c, nil
}

func (t *SerialTransport) Write(p []byte) (int, error) {
	if t.port == nil {
		return 0, ErrNotOpen
	}
	return t.port.Write(p)
}

func (t *SerialTransport) Close() error {
	if t.port == nil {
		return nil
	}
	err := t.port.Close()
	t.port = nil
	t.readahead = nil
	return err
}
