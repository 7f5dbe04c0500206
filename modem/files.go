package modem

import (
	"fmt"
	"strings"
	"time"

	"i4.energy/across/ltegw/at"
)

// FileSize reports the size in bytes of a file on the module file
// system.
func (m *Modem) FileSize(filename string) (int, error) {
	resp, err := m.sendCommandWithResponse(fmt.Sprintf("+ULSTFILE=2,%q", filename), "", standardTimeout)
	if err != nil {
		return 0, fmt.Errorf("file size: %w", err)
	}
	rest, ok := responsePayload(resp, "+ULSTFILE:")
	if !ok {
		return 0, fmt.Errorf("file size: %w", ErrUnexpectedResponse)
	}
	var size int
	if n, _ := fmt.Sscanf(rest, "%d", &size); n != 1 {
		return 0, fmt.Errorf("file size: %w", ErrUnexpectedResponse)
	}
	return size, nil
}

// ListFiles returns the names of the files stored on the module file
// system.
func (m *Modem) ListFiles() ([]string, error) {
	resp, err := m.sendCommandWithResponse("+ULSTFILE=0", "", standardTimeout)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	rest, ok := responsePayload(resp, "+ULSTFILE:")
	if !ok {
		return nil, fmt.Errorf("list files: %w", ErrUnexpectedResponse)
	}
	if end := strings.IndexAny(rest, "\r\n"); end >= 0 {
		rest = rest[:end]
	}
	var names []string
	for _, field := range strings.Split(rest, ",") {
		name := strings.Trim(strings.TrimSpace(field), `"`)
		if name != "" {
			names = append(names, name)
		}
	}
	return names, nil
}

// ReadFile returns the contents of a file on the module file system.
//
// The response carries the whole file in one quoted blob, so the size
// is fetched first to dimension the capture. The terminating token is
// the closing quote followed by OK rather than OK alone, otherwise an
// OK inside the file body would end the scan early.
func (m *Modem) ReadFile(filename string) ([]byte, error) {
	size, err := m.FileSize(filename)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	// The closing quote before the OK anchors the token past the file
	// body.
	const fileReadTerm = "\"\r\nOK\r\n"

	cmd := fmt.Sprintf("+URDFILE=%q", filename)
	resp, err := m.sendCommandWithLargeResponse(cmd, fileReadTerm, 5*standardTimeout, size+rxBufferSize)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	// +URDFILE: "name",<size>,"<data>"
	rest, ok := responsePayload(resp, "+URDFILE:")
	if !ok {
		return nil, fmt.Errorf("read file: %w", ErrUnexpectedResponse)
	}
	second := strings.IndexByte(rest, '"')
	if second >= 0 {
		second += strings.IndexByte(rest[second+1:], '"') + 1
	}
	if second <= 0 {
		return nil, fmt.Errorf("read file: %w", ErrUnexpectedResponse)
	}
	var stored int
	if n, _ := fmt.Sscanf(rest[second:], "\",%d,", &stored); n != 1 {
		return nil, fmt.Errorf("read file: %w", ErrUnexpectedResponse)
	}
	data, ok := quotedData(rest[second+1:], 1, stored)
	if !ok {
		return nil, fmt.Errorf("read file: %w", ErrUnexpectedResponse)
	}
	return data, nil
}

// DownloadFile appends data to a file on the module file system,
// creating it if needed.
func (m *Modem) DownloadFile(filename string, data []byte) error {
	cmd := fmt.Sprintf("+UDWNFILE=%q,%d", filename, len(data))
	if err := m.sendCommandExpectPrompt(cmd, at.Prompt, 2*standardTimeout); err != nil {
		return fmt.Errorf("download file: %w", err)
	}

	// The module wants a pause between the prompt and the payload.
	time.Sleep(socketWriteSettle)

	if err := m.sendCommand(string(data), false); err != nil {
		return fmt.Errorf("download file: %w", err)
	}
	if err := m.waitForResponse(at.ResponseOK, at.ResponseError, 5*standardTimeout); err != nil {
		return fmt.Errorf("download file: %w", err)
	}
	return nil
}

// DeleteFile removes a file from the module file system.
func (m *Modem) DeleteFile(filename string) error {
	return m.expectOK(fmt.Sprintf("+UDELFILE=%q", filename), standardTimeout)
}
