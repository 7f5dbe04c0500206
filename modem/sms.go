package modem

import (
	"fmt"
	"strings"

	"i4.energy/across/ltegw/at"
)

// ctrlZ terminates an SMS body in text mode.
const ctrlZ = "\x1a"

// SMS is a text message stored on the module.
type SMS struct {
	Index  int
	Status string // "REC UNREAD", "REC READ", "STO UNSENT", "STO SENT"
	Sender string
	Time   string
	Text   string
}

// SetSMSTextMode selects SMS text mode. PDU mode is not supported by
// this driver.
func (m *Modem) SetSMSTextMode() error {
	return m.expectOK("+CMGF=1", standardTimeout)
}

// SendSMS sends a text message. The recipient should be in
// international format (e.g. "+1234567890").
//
// The command is a two phase exchange: the module answers the header
// with a ">" prompt, then takes the body terminated by Ctrl+Z. This
// method blocks until the network accepted the message; delivery to
// the final recipient happens asynchronously.
func (m *Modem) SendSMS(recipient, message string) error {
	cmd := fmt.Sprintf("+CMGS=%q", recipient)
	if err := m.sendCommandExpectPrompt(cmd, "\n"+at.Prompt, tenSecondTimeout); err != nil {
		return fmt.Errorf("sms header: %w", err)
	}

	if err := m.sendCommand(message+ctrlZ, false); err != nil {
		return fmt.Errorf("sms body: %w", err)
	}
	if err := m.waitForResponse(at.ResponseOK, at.ResponseError, 3*tenSecondTimeout); err != nil {
		return fmt.Errorf("sms send: %w", err)
	}
	return nil
}

// ReadSMS reads the message stored at index.
func (m *Modem) ReadSMS(index int) (SMS, error) {
	resp, err := m.sendCommandWithResponse(fmt.Sprintf("+CMGR=%d", index), "", tenSecondTimeout)
	if err != nil {
		return SMS{}, fmt.Errorf("sms read: %w", err)
	}

	rest, ok := responsePayload(resp, "+CMGR:")
	if !ok {
		return SMS{}, fmt.Errorf("sms read: %w", ErrUnexpectedResponse)
	}

	// +CMGR: "<status>","<sender>",,"<time>"\r\n<text>\r\nOK
	header, body, found := strings.Cut(rest, "\r\n")
	if !found {
		return SMS{}, fmt.Errorf("sms read: %w", ErrUnexpectedResponse)
	}
	sms := SMS{Index: index}
	fields := splitQuoted(header)
	if len(fields) > 0 {
		sms.Status = fields[0]
	}
	if len(fields) > 1 {
		sms.Sender = fields[1]
	}
	if len(fields) > 3 {
		sms.Time = fields[3]
	}
	if i := strings.Index(body, "\r\nOK"); i >= 0 {
		body = body[:i]
	}
	sms.Text = strings.TrimRight(body, "\r\n")
	return sms, nil
}

// DeleteSMS deletes the message stored at index.
func (m *Modem) DeleteSMS(index int) error {
	return m.expectOK(fmt.Sprintf("+CMGD=%d", index), tenSecondTimeout)
}

// splitQuoted splits a comma separated header line, stripping the
// quotes around quoted fields. Commas inside quotes do not split;
// timestamps carry one. Empty fields stay empty.
func splitQuoted(s string) []string {
	var (
		parts    []string
		field    strings.Builder
		inQuotes bool
	)
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == '"':
			inQuotes = !inQuotes
		case c == ',' && !inQuotes:
			parts = append(parts, strings.TrimSpace(field.String()))
			field.Reset()
		default:
			field.WriteByte(c)
		}
	}
	parts = append(parts, strings.TrimSpace(field.String()))
	return parts
}
