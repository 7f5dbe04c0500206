package modem

import (
	"strings"
	"sync"
)

// TestTransport is a scripted in-memory transport. Written commands are
// recorded and looked up against registered responses, whose bytes then
// become available for reading one at a time, the way the polling loop
// consumes a serial port. Unsolicited data can be queued directly with
// SendData.
// Exported for use in tests.
type TestTransport struct {
	mu        sync.Mutex
	open      bool
	baud      int
	queue     []byte
	writes    []string
	responses map[string]string
}

// NewTestTransport creates a new test transport.
func NewTestTransport() *TestTransport {
	return &TestTransport{
		responses: make(map[string]string),
	}
}

// Respond registers the bytes to queue when cmd is written. The command
// is matched on its framed form minus the trailing CRLF, e.g. "AT+CSQ".
func (t *TestTransport) Respond(cmd, response string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.responses[cmd] = response
}

// SendData queues data for reading, simulating unsolicited bytes from
// the module.
func (t *TestTransport) SendData(data string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.queue = append(t.queue, data...)
}

// Writes returns every write so far, trailing CRLF stripped.
func (t *TestTransport) Writes() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.writes...)
}

// Baud returns the rate passed to the last Open call.
func (t *TestTransport) Baud() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.baud
}

func (t *TestTransport) Open(baud int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.open = true
	t.baud = baud
	return nil
}

func (t *TestTransport) Available() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.open {
		return -1
	}
	return len(t.queue)
}

func (t *TestTransport) ReadByte() (byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.open || len(t.queue) == 0 {
		return 0, ErrNoResponse
	}
	c := t.queue[0]
	t.queue = t.queue[1:]
	return c, nil
}

func (t *TestTransport) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	cmd := strings.TrimSuffix(string(p), "\r\n")
	t.writes = append(t.writes, cmd)
	if resp, ok := t.responses[cmd]; ok {
		t.queue = append(t.queue, resp...)
	}
	return len(p), nil
}

func (t *TestTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.open = false
	return nil
}
