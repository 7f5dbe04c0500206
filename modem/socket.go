package modem

import (
	"fmt"
	"net/netip"
	"strings"
	"time"

	"i4.energy/across/ltegw/at"
)

// maxSocketRead is the largest chunk the module returns from a single
// +USORD / +USORF transaction. Longer reads are split.
const maxSocketRead = 1024

const ipConnectTimeout = 130 * time.Second

// SocketOpen creates a socket for the given protocol and returns its
// id. A non-zero localPort binds the socket. The protocol is recorded
// so later data indications can be routed without querying the module.
func (m *Modem) SocketOpen(protocol Protocol, localPort int) (int, error) {
	cmd := fmt.Sprintf("+USOCR=%d", protocol)
	if localPort != 0 {
		cmd = fmt.Sprintf("+USOCR=%d,%d", protocol, localPort)
	}

	resp, err := m.sendCommandWithResponse(cmd, "", standardTimeout)
	if err != nil {
		return -1, fmt.Errorf("socket open: %w", err)
	}

	rest, ok := responsePayload(resp, "+USOCR:")
	if !ok {
		return -1, fmt.Errorf("socket open: %w", ErrUnexpectedResponse)
	}
	var socket int
	if n, _ := fmt.Sscanf(rest, "%d", &socket); n != 1 {
		return -1, fmt.Errorf("socket open: %w", ErrUnexpectedResponse)
	}
	if socket >= 0 && socket < NumSockets {
		m.lastProtocol[socket] = protocol
	}
	return socket, nil
}

// SocketClose requests an asynchronous close: the command returns OK
// immediately and the module raises +UUSOCL when the socket is down.
// The async form keeps the response parser sane during Begin, when
// sockets from a previous session are swept.
func (m *Modem) SocketClose(socket int) error {
	return m.expectOK(fmt.Sprintf("+USOCL=%d,1", socket), standardTimeout)
}

// SocketCloseSync closes the socket and blocks until the module
// confirms. TCP closure can take a while on a bad link, hence the
// caller-supplied timeout.
func (m *Modem) SocketCloseSync(socket int, timeout time.Duration) error {
	return m.expectOK(fmt.Sprintf("+USOCL=%d", socket), timeout)
}

// SocketConnect establishes a TCP connection (or sets the default UDP
// peer) for the socket. Address may be a hostname or dotted quad.
func (m *Modem) SocketConnect(socket int, address string, port int) error {
	cmd := fmt.Sprintf("+USOCO=%d,%q,%d", socket, address, port)
	if err := m.expectOK(cmd, ipConnectTimeout); err != nil {
		return fmt.Errorf("socket connect: %w", err)
	}
	return nil
}

// SocketWrite sends data on a connected socket using the binary write
// syntax: the module answers the length announcement with "@", then
// expects the payload after a short settle time.
func (m *Modem) SocketWrite(socket int, data []byte) error {
	cmd := fmt.Sprintf("+USOWR=%d,%d", socket, len(data))
	if err := m.sendCommandExpectPrompt(cmd, at.WritePrompt, 5*standardTimeout); err != nil {
		return fmt.Errorf("socket write: %w", err)
	}

	// The module needs 50 ms after raising "@" before it accepts the
	// payload.
	time.Sleep(socketWriteSettle)

	if _, err := m.transport.Write(data); err != nil {
		return fmt.Errorf("socket write payload: %w", err)
	}
	if err := m.waitForResponse(at.ResponseOK, at.ResponseError, tenSecondTimeout); err != nil {
		return fmt.Errorf("socket write: %w", err)
	}
	return nil
}

// SocketWriteUDP sends a single datagram to the given destination.
func (m *Modem) SocketWriteUDP(socket int, address string, port int, data []byte) error {
	cmd := fmt.Sprintf("+USOST=%d,%q,%d,%d", socket, address, port, len(data))
	if err := m.sendCommandExpectPrompt(cmd, at.WritePrompt, 5*standardTimeout); err != nil {
		return fmt.Errorf("udp socket write: %w", err)
	}
	time.Sleep(socketWriteSettle)

	if _, err := m.transport.Write(data); err != nil {
		return fmt.Errorf("udp socket write payload: %w", err)
	}
	if err := m.waitForResponse(at.ResponseOK, at.ResponseError, tenSecondTimeout); err != nil {
		return fmt.Errorf("udp socket write: %w", err)
	}
	return nil
}

// SocketRead pulls length bytes of buffered data from the socket,
// issuing as many +USORD transactions as needed: the module caps a
// single read at 1024 bytes. The module can also return less than
// asked for, so the loop advances by what actually arrived.
func (m *Modem) SocketRead(socket, length int) ([]byte, error) {
	if length == 0 {
		return nil, fmt.Errorf("socket read: %w", ErrInvalidParam)
	}

	out := make([]byte, 0, length)
	for left := length; left > 0; {
		chunk := min(left, maxSocketRead)

		resp, err := m.sendCommandWithResponse(fmt.Sprintf("+USORD=%d,%d", socket, chunk), "", standardTimeout)
		if err != nil {
			return out, fmt.Errorf("socket read: %w", err)
		}

		rest, ok := responsePayload(resp, "+USORD:")
		if !ok {
			return out, fmt.Errorf("socket read: %w", ErrUnexpectedResponse)
		}
		var socketStore, readLength int
		if n, _ := fmt.Sscanf(rest, "%d,%d", &socketStore, &readLength); n != 2 {
			return out, fmt.Errorf("socket read: %w", ErrUnexpectedResponse)
		}
		if readLength == 0 {
			return out, fmt.Errorf("socket read: %w", ErrZeroReadLength)
		}

		data, ok := quotedData(rest, 1, readLength)
		if !ok {
			return out, fmt.Errorf("socket read: %w", ErrUnexpectedResponse)
		}
		out = append(out, data...)
		left -= readLength
	}
	return out, nil
}

// SocketReadUDP pulls a received datagram from the socket and reports
// its source address.
func (m *Modem) SocketReadUDP(socket, length int) ([]byte, netip.AddrPort, error) {
	if length == 0 {
		return nil, netip.AddrPort{}, fmt.Errorf("udp socket read: %w", ErrInvalidParam)
	}

	var remote netip.AddrPort
	out := make([]byte, 0, length)
	for left := length; left > 0; {
		chunk := min(left, maxSocketRead)

		resp, err := m.sendCommandWithResponse(fmt.Sprintf("+USORF=%d,%d", socket, chunk), "", standardTimeout)
		if err != nil {
			return out, remote, fmt.Errorf("udp socket read: %w", err)
		}

		rest, ok := responsePayload(resp, "+USORF:")
		if !ok {
			return out, remote, fmt.Errorf("udp socket read: %w", ErrUnexpectedResponse)
		}
		var (
			socketStore, readLength int
			a, b, c, d, port        int
		)
		n, _ := fmt.Sscanf(rest, "%d,\"%d.%d.%d.%d\",%d,%d",
			&socketStore, &a, &b, &c, &d, &port, &readLength)
		if n != 7 {
			return out, remote, fmt.Errorf("udp socket read: %w", ErrUnexpectedResponse)
		}
		if readLength == 0 {
			return out, remote, fmt.Errorf("udp socket read: %w", ErrZeroReadLength)
		}
		remote = addrPort(a, b, c, d, port)

		// The payload sits after the third quote: the address takes
		// the first pair.
		data, ok := quotedData(rest, 3, readLength)
		if !ok {
			return out, remote, fmt.Errorf("udp socket read: %w", ErrUnexpectedResponse)
		}
		out = append(out, data...)
		left -= readLength
	}
	return out, remote, nil
}

// SocketReadAvailable reports how many received bytes are buffered in
// the module for the socket.
func (m *Modem) SocketReadAvailable(socket int) (int, error) {
	return m.socketAvailable(socket, "+USORD")
}

// SocketReadAvailableUDP is the datagram variant of SocketReadAvailable.
func (m *Modem) SocketReadAvailableUDP(socket int) (int, error) {
	return m.socketAvailable(socket, "+USORF")
}

func (m *Modem) socketAvailable(socket int, op string) (int, error) {
	resp, err := m.sendCommandWithResponse(fmt.Sprintf("%s=%d,0", op, socket), "", standardTimeout)
	if err != nil {
		return 0, fmt.Errorf("socket available: %w", err)
	}
	rest, ok := responsePayload(resp, op+":")
	if !ok {
		return 0, fmt.Errorf("socket available: %w", ErrUnexpectedResponse)
	}
	var socketStore, length int
	if n, _ := fmt.Sscanf(rest, "%d,%d", &socketStore, &length); n != 2 {
		return 0, fmt.Errorf("socket available: %w", ErrUnexpectedResponse)
	}
	return length, nil
}

// SocketListen starts accepting connections on the given port.
// Incoming connections arrive as +UUSOLI notifications.
func (m *Modem) SocketListen(socket, port int) error {
	return m.expectOK(fmt.Sprintf("+USOLI=%d,%d", socket, port), standardTimeout)
}

// SocketDirectLink switches the socket into direct link mode: after
// the CONNECT marker the serial line carries socket payload untouched.
// Leaving data mode again ("+++" escape) is the caller's business.
func (m *Modem) SocketDirectLink(socket int) error {
	_, err := m.sendCommandWithResponse(fmt.Sprintf("+USODL=%d", socket), at.ResponseConnect, 5*standardTimeout)
	if err != nil {
		return fmt.Errorf("direct link: %w", err)
	}
	return nil
}

// SocketGetLastError queries the module's last socket error code.
func (m *Modem) SocketGetLastError() (int, error) {
	resp, err := m.sendCommandWithResponse("+USOER", "", standardTimeout)
	if err != nil {
		return 0, fmt.Errorf("socket error query: %w", err)
	}
	rest, ok := responsePayload(resp, "+USOER:")
	if !ok {
		return 0, fmt.Errorf("socket error query: %w", ErrUnexpectedResponse)
	}
	var code int
	if n, _ := fmt.Sscanf(rest, "%d", &code); n != 1 {
		return 0, fmt.Errorf("socket error query: %w", ErrUnexpectedResponse)
	}
	return code, nil
}

// SocketType queries the protocol of an open socket via the socket
// control command. The answer is recorded alongside the protocols
// noted at socket open, so data indications route correctly for
// sockets this driver did not open itself.
func (m *Modem) SocketType(socket int) (Protocol, error) {
	resp, err := m.sendCommandWithResponse(fmt.Sprintf("+USOCTL=%d,0", socket), "", standardTimeout)
	if err != nil {
		return ProtocolUnknown, fmt.Errorf("socket type query: %w", err)
	}
	rest, ok := responsePayload(resp, "+USOCTL:")
	if !ok {
		return ProtocolUnknown, fmt.Errorf("socket type query: %w", ErrUnexpectedResponse)
	}
	var socketStore, param, proto int
	if n, _ := fmt.Sscanf(rest, "%d,%d,%d", &socketStore, &param, &proto); n != 3 {
		return ProtocolUnknown, fmt.Errorf("socket type query: %w", ErrUnexpectedResponse)
	}
	if socketStore >= 0 && socketStore < NumSockets {
		m.lastProtocol[socketStore] = Protocol(proto)
	}
	return Protocol(proto), nil
}

// LastRemote returns the peer address from the most recent incoming
// connection indication.
func (m *Modem) LastRemote() netip.AddrPort { return m.lastRemote }

// LastLocal returns the local address from the most recent incoming
// connection indication.
func (m *Modem) LastLocal() netip.AddrPort { return m.lastLocal }

// quotedData returns length bytes following the nth double quote in
// rest. Socket payloads are binary, so the closing quote cannot be
// trusted as a delimiter; only the announced length counts.
func quotedData(rest string, nth, length int) ([]byte, bool) {
	pos := 0
	for i := 0; i < nth; i++ {
		rel := strings.IndexByte(rest[pos:], '"')
		if rel < 0 {
			return nil, false
		}
		pos += rel + 1
	}
	if pos+length > len(rest) {
		return nil, false
	}
	return []byte(rest[pos : pos+length]), true
}
