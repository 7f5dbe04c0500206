package modem

import (
	"net/netip"
	"testing"
	"time"
)

func TestProcessURCLine(t *testing.T) {
	t.Run("registration report with hex cell identifiers", func(t *testing.T) {
		m, _ := newTestModem(t)
		var got Registration
		m.OnRegistration(func(ev Registration) { got = ev })

		if !m.processURCLine([]byte(`+CREG: 5,"1A2B","3C4D",7`)) {
			t.Fatal("expected line to be handled")
		}
		if got.Status != RegistrationRoaming {
			t.Errorf("unexpected status: %d", got.Status)
		}
		if got.Area != 0x1A2B || got.CellID != 0x3C4D {
			t.Errorf("unexpected cell identifiers: %04X %04X", got.Area, got.CellID)
		}
		if got.AcT != 7 {
			t.Errorf("unexpected AcT: %d", got.AcT)
		}
	})

	t.Run("EPS registration report", func(t *testing.T) {
		m, _ := newTestModem(t)
		var got Registration
		m.OnEPSRegistration(func(ev Registration) { got = ev })

		if !m.processURCLine([]byte(`+CEREG: 1,"0012","00EF",9`)) {
			t.Fatal("expected line to be handled")
		}
		if got.Status != RegistrationHome || got.Area != 0x12 || got.CellID != 0xEF {
			t.Errorf("unexpected report: %+v", got)
		}
	})

	t.Run("short registration form is not a notification", func(t *testing.T) {
		m, _ := newTestModem(t)
		m.OnRegistration(func(Registration) { t.Error("handler should not run") })

		if m.processURCLine([]byte("+CREG: 1")) {
			t.Error("expected line to be ignored")
		}
	})

	t.Run("listen indication, remote only", func(t *testing.T) {
		m, _ := newTestModem(t)
		var got SocketListen
		m.OnSocketListen(func(ev SocketListen) { got = ev })

		if !m.processURCLine([]byte(`+UUSOLI: 3,"151.9.34.66",2222`)) {
			t.Fatal("expected line to be handled")
		}
		if got.Socket != 3 {
			t.Errorf("unexpected socket: %d", got.Socket)
		}
		want := netip.AddrPortFrom(netip.AddrFrom4([4]byte{151, 9, 34, 66}), 2222)
		if got.Remote != want {
			t.Errorf("unexpected remote: %v", got.Remote)
		}
	})

	t.Run("listen indication, full form", func(t *testing.T) {
		m, _ := newTestModem(t)
		var got SocketListen
		m.OnSocketListen(func(ev SocketListen) { got = ev })

		if !m.processURCLine([]byte(`+UUSOLI: 3,"151.9.34.66",2222,0,"82.89.67.164",1200`)) {
			t.Fatal("expected line to be handled")
		}
		if got.ListenSocket != 0 {
			t.Errorf("unexpected listen socket: %d", got.ListenSocket)
		}
		wantLocal := netip.AddrPortFrom(netip.AddrFrom4([4]byte{82, 89, 67, 164}), 1200)
		if got.Local != wantLocal {
			t.Errorf("unexpected local: %v", got.Local)
		}
		if m.LastRemote() != got.Remote || m.LastLocal() != wantLocal {
			t.Error("last remote/local not recorded")
		}
	})

	t.Run("socket close", func(t *testing.T) {
		m, _ := newTestModem(t)
		var closed int
		m.OnSocketClosed(func(socket int) { closed = socket })

		if !m.processURCLine([]byte("+UUSOCL: 4")) {
			t.Fatal("expected line to be handled")
		}
		if closed != 4 {
			t.Errorf("unexpected socket: %d", closed)
		}
	})

	t.Run("location report", func(t *testing.T) {
		m, _ := newTestModem(t)
		var got Location
		m.OnLocation(func(ev Location) { got = ev })

		line := "+UULOC: 13/04/2011,09:54:51.000,45.6334520,13.0618620,49,1"
		if !m.processURCLine([]byte(line)) {
			t.Fatal("expected line to be handled")
		}
		want := time.Date(2011, time.April, 13, 9, 54, 51, 0, time.UTC)
		if !got.Time.Equal(want) {
			t.Errorf("unexpected time: %v", got.Time)
		}
		if got.Lat != 45.6334520 || got.Lon != 13.0618620 {
			t.Errorf("unexpected position: %v %v", got.Lat, got.Lon)
		}
		if got.Uncertainty != 1 {
			t.Errorf("unexpected uncertainty: %d", got.Uncertainty)
		}
		if got.HasSpeed {
			t.Error("short report should not carry speed")
		}
	})

	t.Run("detailed location report carries speed", func(t *testing.T) {
		m, _ := newTestModem(t)
		var got Location
		m.OnLocation(func(ev Location) { got = ev })

		line := "+UULOC: 13/04/2011,09:54:51.000,45.6334520,13.0618620,49,1,15.2,83.5,0,0"
		if !m.processURCLine([]byte(line)) {
			t.Fatal("expected line to be handled")
		}
		if !got.HasSpeed || got.Speed != 15.2 || got.Course != 83.5 {
			t.Errorf("unexpected speed/course: %+v", got)
		}
	})

	t.Run("ping reply", func(t *testing.T) {
		m, _ := newTestModem(t)
		var got PingResult
		m.OnPing(func(ev PingResult) { got = ev })

		line := `+UUPING: 1,32,"www.example.com","93.184.216.34",54,16`
		if !m.processURCLine([]byte(line)) {
			t.Fatal("expected line to be handled")
		}
		if got.Host != "www.example.com" {
			t.Errorf("unexpected host: %q", got.Host)
		}
		if got.IP != netip.AddrFrom4([4]byte{93, 184, 216, 34}) {
			t.Errorf("unexpected ip: %v", got.IP)
		}
		if got.TTL != 54 || got.RTT != 16*time.Millisecond {
			t.Errorf("unexpected ttl/rtt: %d %v", got.TTL, got.RTT)
		}
	})

	t.Run("mqtt subscribe result carries qos and topic", func(t *testing.T) {
		m, _ := newTestModem(t)
		var got MQTTResult
		m.OnMQTTResult(func(ev MQTTResult) { got = ev })

		if !m.processURCLine([]byte(`+UUMQTTC: 4,1,0,"sensors/temp"`)) {
			t.Fatal("expected line to be handled")
		}
		if got.Command != MQTTCommandSubscribe || got.Result != 1 {
			t.Errorf("unexpected result: %+v", got)
		}
		if got.QoS != 0 || got.Topic != "sensors/temp" {
			t.Errorf("unexpected qos/topic: %+v", got)
		}
	})

	t.Run("http result", func(t *testing.T) {
		m, _ := newTestModem(t)
		var got HTTPResult
		m.OnHTTPResult(func(ev HTTPResult) { got = ev })

		if !m.processURCLine([]byte("+UUHTTPCR: 0,1,1")) {
			t.Fatal("expected line to be handled")
		}
		if got.Profile != 0 || got.Command != 1 || got.Result != 1 {
			t.Errorf("unexpected result: %+v", got)
		}
	})

	t.Run("ftp result", func(t *testing.T) {
		m, _ := newTestModem(t)
		var got FTPResult
		m.OnFTPResult(func(ev FTPResult) { got = ev })

		if !m.processURCLine([]byte("+UUFTPCR: 4,1")) {
			t.Fatal("expected line to be handled")
		}
		if got.Command != FTPCommandGetFile || got.Result != 1 {
			t.Errorf("unexpected result: %+v", got)
		}
	})

	t.Run("sim state", func(t *testing.T) {
		m, _ := newTestModem(t)
		var got SIMState
		m.OnSIMState(func(ev SIMState) { got = ev })

		if !m.processURCLine([]byte("+UUSIMSTAT: 4")) {
			t.Fatal("expected line to be handled")
		}
		if got != SIMNotOperational {
			t.Errorf("unexpected state: %d", got)
		}
	})

	t.Run("data indication without handler is still consumed", func(t *testing.T) {
		m, _ := newTestModem(t)

		if !m.processURCLine([]byte("+UUSORD: 0,5")) {
			t.Error("expected line to be handled")
		}
	})

	t.Run("unknown lines are ignored", func(t *testing.T) {
		m, _ := newTestModem(t)

		for _, line := range []string{"", "OK", "+CSQ: 4,2", "random noise"} {
			if m.processURCLine([]byte(line)) {
				t.Errorf("expected %q to be ignored", line)
			}
		}
	})
}

func TestDataIndicationRouting(t *testing.T) {
	t.Run("+UUSORD on a UDP socket routes to the datagram read", func(t *testing.T) {
		m, tt := newTestModem(t)
		tt.Respond("AT+USOCR=17", "\r\n+USOCR: 2\r\n"+okResponse)
		tt.Respond("AT+USORF=2,2", "\r\n+USORF: 2,\"192.168.1.5\",3030,2,\"hi\"\r\n"+okResponse)

		socket, err := m.SocketOpen(ProtocolUDP, 0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if socket != 2 {
			t.Fatalf("unexpected socket: %d", socket)
		}

		var got SocketData
		m.OnSocketData(func(ev SocketData) { got = ev })

		if !m.processURCLine([]byte("+UUSORD: 2,2")) {
			t.Fatal("expected line to be handled")
		}
		if string(got.Data) != "hi" {
			t.Errorf("unexpected data: %q", got.Data)
		}
		want := netip.AddrPortFrom(netip.AddrFrom4([4]byte{192, 168, 1, 5}), 3030)
		if got.Remote != want {
			t.Errorf("unexpected remote: %v", got.Remote)
		}
	})

	t.Run("protocol learned from a type query routes the datagram read", func(t *testing.T) {
		m, tt := newTestModem(t)
		tt.Respond("AT+USOCTL=2,0", "\r\n+USOCTL: 2,0,17\r\n"+okResponse)
		tt.Respond("AT+USORF=2,2", "\r\n+USORF: 2,\"192.168.1.5\",3030,2,\"hi\"\r\n"+okResponse)

		// The socket was never opened by this driver, so the protocol
		// table has no entry until the query answers.
		proto, err := m.SocketType(2)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if proto != ProtocolUDP {
			t.Fatalf("unexpected protocol: %d", proto)
		}

		var got SocketData
		m.OnSocketData(func(ev SocketData) { got = ev })

		if !m.processURCLine([]byte("+UUSORD: 2,2")) {
			t.Fatal("expected line to be handled")
		}
		if string(got.Data) != "hi" {
			t.Errorf("unexpected data: %q", got.Data)
		}
		want := netip.AddrPortFrom(netip.AddrFrom4([4]byte{192, 168, 1, 5}), 3030)
		if got.Remote != want {
			t.Errorf("unexpected remote: %v", got.Remote)
		}
	})

	t.Run("+UUSORD on a TCP socket routes to the stream read", func(t *testing.T) {
		m, tt := newTestModem(t)
		tt.Respond("AT+USOCR=6", "\r\n+USOCR: 0\r\n"+okResponse)
		tt.Respond("AT+USORD=0,5", "\r\n+USORD: 0,5,\"hello\"\r\n"+okResponse)

		if _, err := m.SocketOpen(ProtocolTCP, 0); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var got SocketData
		m.OnSocketData(func(ev SocketData) { got = ev })

		if !m.processURCLine([]byte("+UUSORD: 0,5")) {
			t.Fatal("expected line to be handled")
		}
		if string(got.Data) != "hello" {
			t.Errorf("unexpected data: %q", got.Data)
		}
		if got.Remote.IsValid() {
			t.Errorf("unexpected remote on tcp read: %v", got.Remote)
		}
	})
}
