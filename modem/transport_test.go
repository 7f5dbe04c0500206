package modem

import (
	"errors"
	"testing"

	"go.uber.org/mock/gomock"
)

func TestSerialTransportNotOpen(t *testing.T) {
	st := NewSerialTransport("/dev/ttyUSB0")

	if got := st.Available(); got >= 0 {
		t.Errorf("expected negative available on closed port, got: %d", got)
	}
	if _, err := st.Write([]byte("AT\r\n")); !errors.Is(err, ErrNotOpen) {
		t.Errorf("expected ErrNotOpen, got: %v", err)
	}
	if _, err := st.ReadByte(); !errors.Is(err, ErrNotOpen) {
		t.Errorf("expected ErrNotOpen, got: %v", err)
	}
	if err := st.Close(); err != nil {
		t.Errorf("unexpected error closing a closed port: %v", err)
	}
}

func TestTestTransportScript(t *testing.T) {
	tt := NewTestTransport()
	if err := tt.Open(DefaultBaud); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tt.Respond("AT", "\r\nOK\r\n")

	if _, err := tt.Write([]byte("AT\r\n")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := tt.Available(); got != 6 {
		t.Errorf("unexpected available: %d", got)
	}
	var read []byte
	for tt.Available() > 0 {
		c, err := tt.ReadByte()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		read = append(read, c)
	}
	if string(read) != "\r\nOK\r\n" {
		t.Errorf("unexpected bytes: %q", read)
	}
}

// mockLine backs a MockTransport with a byte queue so transactions can
// run against strict Write expectations.
type mockLine struct {
	queue []byte
}

func (l *mockLine) push(s string) { l.queue = append(l.queue, s...) }

func wireMockTransport(mt *MockTransport, line *mockLine) {
	mt.EXPECT().Available().DoAndReturn(func() int { return len(line.queue) }).AnyTimes()
	mt.EXPECT().ReadByte().DoAndReturn(func() (byte, error) {
		if len(line.queue) == 0 {
			return 0, ErrNoResponse
		}
		c := line.queue[0]
		line.queue = line.queue[1:]
		return c, nil
	}).AnyTimes()
}

func TestTransactionCommandSequence(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mt := NewMockTransport(ctrl)
	line := &mockLine{}
	wireMockTransport(mt, line)

	gomock.InOrder(
		mt.EXPECT().Write([]byte("AT+USOCR=6\r\n")).DoAndReturn(func(p []byte) (int, error) {
			line.push("\r\n+USOCR: 0\r\n\r\nOK\r\n")
			return len(p), nil
		}),
		mt.EXPECT().Write([]byte("AT+USOCO=0,\"example.com\",80\r\n")).DoAndReturn(func(p []byte) (int, error) {
			line.push("\r\nOK\r\n")
			return len(p), nil
		}),
		mt.EXPECT().Write([]byte("AT+USOCL=0,1\r\n")).DoAndReturn(func(p []byte) (int, error) {
			line.push("\r\nOK\r\n")
			return len(p), nil
		}),
	)

	m, err := New(Config{Transport: mt})
	if err != nil {
		t.Fatalf("unexpected error from New(): %v", err)
	}
	m.open = true

	socket, err := m.SocketOpen(ProtocolTCP, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := m.SocketConnect(socket, "example.com", 80); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := m.SocketClose(socket); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
