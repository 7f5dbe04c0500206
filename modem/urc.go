package modem

import (
	"bytes"
	"fmt"
	"net/netip"
	"strconv"
	"strings"
	"time"

	"i4.energy/across/ltegw/at"
)

// RegistrationStatus is the <stat> value reported by +CREG / +CEREG.
type RegistrationStatus int

const (
	RegistrationInvalid                 RegistrationStatus = -1
	RegistrationNotRegistered           RegistrationStatus = 0
	RegistrationHome                    RegistrationStatus = 1
	RegistrationSearching               RegistrationStatus = 2
	RegistrationDenied                  RegistrationStatus = 3
	RegistrationUnknown                 RegistrationStatus = 4
	RegistrationRoaming                 RegistrationStatus = 5
	RegistrationHomeSMSOnly             RegistrationStatus = 6
	RegistrationRoamingSMSOnly          RegistrationStatus = 7
	RegistrationEmergencyOnly           RegistrationStatus = 8
	RegistrationHomeCSFBNotPreferred    RegistrationStatus = 9
	RegistrationRoamingCSFBNotPreferred RegistrationStatus = 10
)

// SIMState is the state reported by the +UUSIMSTAT notification.
type SIMState int

const (
	SIMNotPresent SIMState = iota
	SIMPINNeeded
	SIMPINBlocked
	SIMPUKBlocked
	SIMNotOperational
	SIMRestricted
	SIMOperational
)

// MQTTCommand identifies the operation a +UUMQTTC result refers to.
type MQTTCommand int

const (
	MQTTCommandLogout MQTTCommand = iota
	MQTTCommandLogin
	MQTTCommandPublish
	MQTTCommandPublishFile
	MQTTCommandSubscribe
	MQTTCommandUnsubscribe
	MQTTCommandRead
	MQTTCommandRcvMsgFormat
	MQTTCommandPing
	MQTTCommandPublishBinary
)

// FTPCommand identifies the operation a +UUFTPCR result refers to.
type FTPCommand int

const (
	FTPCommandLogout        FTPCommand = 0
	FTPCommandLogin         FTPCommand = 1
	FTPCommandDeleteFile    FTPCommand = 2
	FTPCommandRenameFile    FTPCommand = 3
	FTPCommandGetFile       FTPCommand = 4
	FTPCommandPutFile       FTPCommand = 5
	FTPCommandGetFileDirect FTPCommand = 6
	FTPCommandPutFileDirect FTPCommand = 7
	FTPCommandChangeDir     FTPCommand = 8
	FTPCommandMkdir         FTPCommand = 10
	FTPCommandRmdir         FTPCommand = 11
	FTPCommandDirInfo       FTPCommand = 13
	FTPCommandList          FTPCommand = 14
)

// SocketData is delivered when a data indication arrived and the
// pending bytes were read from the module.
type SocketData struct {
	Socket int
	Data   []byte
	// Remote is the packet source for UDP sockets and the zero value
	// for TCP.
	Remote netip.AddrPort
}

// SocketListen is delivered when a listening socket accepted an
// incoming connection.
type SocketListen struct {
	Socket       int
	Remote       netip.AddrPort
	ListenSocket int
	Local        netip.AddrPort
}

// Location is a CellLocate / GNSS hybrid position report.
type Location struct {
	Time        time.Time
	Lat, Lon    float64
	Alt         float64
	Uncertainty uint32
	// Speed and Course are only present in detailed reports.
	Speed, Course float64
	HasSpeed      bool
}

// HTTPResult reports completion of an HTTP command on a profile.
type HTTPResult struct {
	Profile int
	Command int
	Result  int
}

// MQTTResult reports completion of an MQTT command. QoS and Topic are
// only filled in for subscribe results.
type MQTTResult struct {
	Command MQTTCommand
	Result  int
	QoS     int
	Topic   string
}

// FTPResult reports completion of an FTP command.
type FTPResult struct {
	Command FTPCommand
	Result  int
}

// PingResult is one echo reply from a +UUPING run.
type PingResult struct {
	Retry int
	Size  int
	Host  string
	IP    netip.Addr
	TTL   int
	RTT   time.Duration
}

// Registration is a +CREG or +CEREG status report. Area is the
// location area code (tracking area code for EPS).
type Registration struct {
	Status RegistrationStatus
	Area   uint16
	CellID uint16
	AcT    int
}

type handlers struct {
	socketData      func(SocketData)
	socketClosed    func(socket int)
	socketListen    func(SocketListen)
	location        func(Location)
	simState        func(SIMState)
	httpResult      func(HTTPResult)
	mqttResult      func(MQTTResult)
	ftpResult       func(FTPResult)
	ping            func(PingResult)
	registration    func(Registration)
	epsRegistration func(Registration)
}

// OnSocketData registers the handler run when a socket data indication
// arrives. The pending data is read from the module inside the poll
// pass; without a handler the indication is acknowledged but the data
// stays in the module's buffer.
func (m *Modem) OnSocketData(fn func(SocketData)) { m.handlers.socketData = fn }

// OnSocketClosed registers the handler for remote socket closure.
func (m *Modem) OnSocketClosed(fn func(socket int)) { m.handlers.socketClosed = fn }

// OnSocketListen registers the handler for accepted incoming
// connections on a listening socket.
func (m *Modem) OnSocketListen(fn func(SocketListen)) { m.handlers.socketListen = fn }

// OnLocation registers the handler for position reports requested via
// RequestLocation.
func (m *Modem) OnLocation(fn func(Location)) { m.handlers.location = fn }

// OnSIMState registers the handler for SIM state change reports.
// Reporting must be enabled with SetSIMStateReporting.
func (m *Modem) OnSIMState(fn func(SIMState)) { m.handlers.simState = fn }

// OnHTTPResult registers the handler for HTTP command completions.
func (m *Modem) OnHTTPResult(fn func(HTTPResult)) { m.handlers.httpResult = fn }

// OnMQTTResult registers the handler for MQTT command completions.
func (m *Modem) OnMQTTResult(fn func(MQTTResult)) { m.handlers.mqttResult = fn }

// OnFTPResult registers the handler for FTP command completions.
func (m *Modem) OnFTPResult(fn func(FTPResult)) { m.handlers.ftpResult = fn }

// OnPing registers the handler for ping echo replies.
func (m *Modem) OnPing(fn func(PingResult)) { m.handlers.ping = fn }

// OnRegistration registers the handler for +CREG status reports.
// Reporting must be enabled with SetRegistrationReporting.
func (m *Modem) OnRegistration(fn func(Registration)) { m.handlers.registration = fn }

// OnEPSRegistration registers the handler for +CEREG status reports.
// Reporting must be enabled with SetEPSRegistrationReporting.
func (m *Modem) OnEPSRegistration(fn func(Registration)) { m.handlers.epsRegistration = fn }

// processURCLine tries each known notification signature against the
// line and dispatches the first that parses. Returns false for lines
// that carry no (complete) notification; those are dropped silently.
func (m *Modem) processURCLine(line []byte) bool {
	if rest, ok := urcPayload(line, at.UrcSocketData); ok {
		var socket, length int
		if n, _ := fmt.Sscanf(rest, "%d,%d", &socket, &length); n == 2 {
			m.log.Debug("urc: socket data", "socket", socket, "length", length)
			// UDP sockets raise +UUSORD too; route by the protocol
			// recorded at socket open.
			if socket >= 0 && socket < NumSockets && m.lastProtocol[socket] == ProtocolUDP {
				m.deliverSocketDataUDP(socket, length)
			} else {
				m.deliverSocketData(socket, length)
			}
			return true
		}
	}
	if rest, ok := urcPayload(line, at.UrcSocketDataUDP); ok {
		var socket, length int
		if n, _ := fmt.Sscanf(rest, "%d,%d", &socket, &length); n == 2 {
			m.log.Debug("urc: udp receive", "socket", socket, "length", length)
			m.deliverSocketDataUDP(socket, length)
			return true
		}
	}
	if rest, ok := urcPayload(line, at.UrcSocketListen); ok {
		var (
			socket, listenSocket int
			port, listenPort     int
			r0, r1, r2, r3       int
			l0, l1, l2, l3       int
		)
		n, _ := fmt.Sscanf(rest, "%d,\"%d.%d.%d.%d\",%d,%d,\"%d.%d.%d.%d\",%d",
			&socket, &r0, &r1, &r2, &r3, &port, &listenSocket,
			&l0, &l1, &l2, &l3, &listenPort)
		if n >= 5 {
			ev := SocketListen{
				Socket: socket,
				Remote: addrPort(r0, r1, r2, r3, port),
			}
			if n >= 11 {
				ev.ListenSocket = listenSocket
				ev.Local = addrPort(l0, l1, l2, l3, listenPort)
			}
			m.log.Debug("urc: socket listen", "socket", socket)
			m.lastRemote = ev.Remote
			m.lastLocal = ev.Local
			if m.handlers.socketListen != nil {
				m.handlers.socketListen(ev)
			}
			return true
		}
	}
	if rest, ok := urcPayload(line, at.UrcSocketClosed); ok {
		var socket int
		if n, _ := fmt.Sscanf(rest, "%d", &socket); n == 1 {
			m.log.Debug("urc: socket close", "socket", socket)
			if socket >= 0 && socket <= NumSockets && m.handlers.socketClosed != nil {
				m.handlers.socketClosed(socket)
			}
			return true
		}
	}
	if rest, ok := urcPayload(line, at.UrcLocation); ok {
		if ev, ok := parseLocation(rest); ok {
			m.log.Debug("urc: location", "lat", ev.Lat, "lon", ev.Lon)
			if m.handlers.location != nil {
				m.handlers.location(ev)
			}
			return true
		}
	}
	if rest, ok := urcPayload(line, at.UrcSIMState); ok {
		var state int
		if n, _ := fmt.Sscanf(rest, "%d", &state); n == 1 {
			m.log.Debug("urc: sim state", "state", state)
			if m.handlers.simState != nil {
				m.handlers.simState(SIMState(state))
			}
			return true
		}
	}
	if rest, ok := urcPayload(line, at.UrcHTTPResult); ok {
		var profile, command, result int
		if n, _ := fmt.Sscanf(rest, "%d,%d,%d", &profile, &command, &result); n == 3 {
			m.log.Debug("urc: http result", "profile", profile, "result", result)
			if profile >= 0 && profile < NumHTTPProfiles && m.handlers.httpResult != nil {
				m.handlers.httpResult(HTTPResult{Profile: profile, Command: command, Result: result})
			}
			return true
		}
	}
	if rest, ok := urcPayload(line, at.UrcMQTTResult); ok {
		var command, result int
		if n, _ := fmt.Sscanf(rest, "%d,%d", &command, &result); n == 2 {
			ev := MQTTResult{Command: MQTTCommand(command), Result: result}
			if ev.Command == MQTTCommandSubscribe {
				// Subscribe results carry the granted QoS and topic:
				// +UUMQTTC: 4,<result>,<qos>,"<topic>"
				if parts := strings.SplitN(rest, ",", 4); len(parts) == 4 {
					ev.QoS, _ = strconv.Atoi(parts[2])
					ev.Topic = strings.Trim(parts[3], `"`)
				}
			}
			m.log.Debug("urc: mqtt result", "command", command, "result", result)
			if m.handlers.mqttResult != nil {
				m.handlers.mqttResult(ev)
			}
			return true
		}
	}
	if rest, ok := urcPayload(line, at.UrcFTPResult); ok {
		var command, result int
		if n, _ := fmt.Sscanf(rest, "%d,%d", &command, &result); n == 2 {
			m.log.Debug("urc: ftp result", "command", command, "result", result)
			if m.handlers.ftpResult != nil {
				m.handlers.ftpResult(FTPResult{Command: FTPCommand(command), Result: result})
			}
			return true
		}
	}
	if rest, ok := urcPayload(line, at.UrcPingResult); ok {
		if ev, ok := parsePing(rest); ok {
			m.log.Debug("urc: ping", "host", ev.Host, "rtt", ev.RTT)
			if m.handlers.ping != nil {
				m.handlers.ping(ev)
			}
			return true
		}
	}
	if rest, ok := urcPayload(line, at.UrcRegistration); ok {
		if ev, ok := parseRegistration(rest); ok {
			m.log.Debug("urc: registration", "status", ev.Status)
			if m.handlers.registration != nil {
				m.handlers.registration(ev)
			}
			return true
		}
	}
	if rest, ok := urcPayload(line, at.UrcEPSRegistration); ok {
		if ev, ok := parseRegistration(rest); ok {
			m.log.Debug("urc: eps registration", "status", ev.Status)
			if m.handlers.epsRegistration != nil {
				m.handlers.epsRegistration(ev)
			}
			return true
		}
	}
	return false
}

// deliverSocketData reads the pending bytes announced by a data
// indication and hands them to the socket data handler.
func (m *Modem) deliverSocketData(socket, length int) {
	if socket < 0 || length < 0 || m.handlers.socketData == nil {
		return
	}
	data, err := m.SocketRead(socket, length)
	if err != nil {
		m.log.Debug("socket read after indication failed", "socket", socket, "err", err)
		return
	}
	m.handlers.socketData(SocketData{Socket: socket, Data: data})
}

func (m *Modem) deliverSocketDataUDP(socket, length int) {
	if socket < 0 || length < 0 || m.handlers.socketData == nil {
		return
	}
	data, remote, err := m.SocketReadUDP(socket, length)
	if err != nil {
		m.log.Debug("udp socket read after indication failed", "socket", socket, "err", err)
		return
	}
	m.handlers.socketData(SocketData{Socket: socket, Data: data, Remote: remote})
}

// urcPayload returns the text following the signature, with leading
// spaces skipped, when line contains it.
func urcPayload(line []byte, sig string) (string, bool) {
	i := bytes.Index(line, []byte(sig))
	if i < 0 {
		return "", false
	}
	rest := line[i+len(sig):]
	for len(rest) > 0 && rest[0] == ' ' {
		rest = rest[1:]
	}
	return string(rest), true
}

func addrPort(a, b, c, d, port int) netip.AddrPort {
	return netip.AddrPortFrom(netip.AddrFrom4([4]byte{byte(a), byte(b), byte(c), byte(d)}), uint16(port))
}

// parseLocation decodes a +UULOC payload:
//
//	<dd>/<mm>/<yyyy>,<hh>:<mm>:<ss>.<ms>,<lat>,<lon>,<alt>,<uncertainty>[,<speed>,<cog>,...]
//
// The short form ends at the uncertainty; the detailed form adds speed
// and course over ground.
func parseLocation(rest string) (Location, bool) {
	fields := strings.Split(rest, ",")
	if len(fields) < 6 {
		return Location{}, false
	}

	var day, month, year, hour, minute, sec, ms int
	if n, _ := fmt.Sscanf(fields[0], "%d/%d/%d", &day, &month, &year); n != 3 {
		return Location{}, false
	}
	if n, _ := fmt.Sscanf(fields[1], "%d:%d:%d.%d", &hour, &minute, &sec, &ms); n != 4 {
		return Location{}, false
	}

	lat, errLat := strconv.ParseFloat(fields[2], 64)
	lon, errLon := strconv.ParseFloat(fields[3], 64)
	alt, errAlt := strconv.ParseFloat(fields[4], 64)
	uncertainty, errUnc := strconv.ParseUint(fields[5], 10, 32)
	if errLat != nil || errLon != nil || errAlt != nil || errUnc != nil {
		return Location{}, false
	}

	ev := Location{
		Time:        time.Date(year, time.Month(month), day, hour, minute, sec, ms*int(time.Millisecond), time.UTC),
		Lat:         lat,
		Lon:         lon,
		Alt:         alt,
		Uncertainty: uint32(uncertainty),
	}
	if len(fields) >= 8 {
		speed, errS := strconv.ParseFloat(fields[6], 64)
		course, errC := strconv.ParseFloat(fields[7], 64)
		if errS == nil && errC == nil {
			ev.Speed = speed
			ev.Course = course
			ev.HasSpeed = true
		}
	}
	return ev, true
}

// parsePing decodes a +UUPING payload:
//
//	<retry>,<size>,"<host>","<ip>",<ttl>,<rtt>
func parsePing(rest string) (PingResult, bool) {
	var retry, size int
	if n, _ := fmt.Sscanf(rest, "%d,%d,", &retry, &size); n != 2 {
		return PingResult{}, false
	}

	open := strings.Index(rest, `"`)
	if open < 0 {
		return PingResult{}, false
	}
	closeRel := strings.Index(rest[open+1:], `"`)
	if closeRel < 0 {
		return PingResult{}, false
	}
	host := rest[open+1 : open+1+closeRel]

	var a, b, c, d, ttl, rttMillis int
	tail := rest[open+1+closeRel:]
	if n, _ := fmt.Sscanf(tail, "\",\"%d.%d.%d.%d\",%d,%d", &a, &b, &c, &d, &ttl, &rttMillis); n != 6 {
		return PingResult{}, false
	}

	return PingResult{
		Retry: retry,
		Size:  size,
		Host:  host,
		IP:    netip.AddrFrom4([4]byte{byte(a), byte(b), byte(c), byte(d)}),
		TTL:   ttl,
		RTT:   time.Duration(rttMillis) * time.Millisecond,
	}, true
}

// parseRegistration decodes the long form of +CREG / +CEREG:
//
//	<stat>,"<lac>","<ci>",<AcT>
//
// The short solicited form without cell identifiers is not a
// notification and is ignored here.
func parseRegistration(rest string) (Registration, bool) {
	var (
		status   int
		area, ci uint16
		act      int
	)
	if n, _ := fmt.Sscanf(rest, "%d,\"%4x\",\"%4x\",%d", &status, &area, &ci, &act); n != 4 {
		return Registration{}, false
	}
	return Registration{
		Status: RegistrationStatus(status),
		Area:   area,
		CellID: ci,
		AcT:    act,
	}, true
}
