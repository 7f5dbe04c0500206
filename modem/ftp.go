package modem

import "fmt"

// FTP profile parameter opcodes (+UFTP).
const (
	ftpOpIPAddress  = 0
	ftpOpServerName = 1
	ftpOpUsername   = 2
	ftpOpPassword   = 3
	ftpOpAccount    = 4
	ftpOpTimeout    = 5
	ftpOpMode       = 6
)

// SetFTPServer sets the FTP server name for the stored profile.
func (m *Modem) SetFTPServer(serverName string) error {
	return m.expectOK(fmt.Sprintf("+UFTP=%d,%q", ftpOpServerName, serverName), standardTimeout)
}

// SetFTPCredentials sets the username and password used at login.
func (m *Modem) SetFTPCredentials(username, password string) error {
	if err := m.expectOK(fmt.Sprintf("+UFTP=%d,%q", ftpOpUsername, username), standardTimeout); err != nil {
		return err
	}
	return m.expectOK(fmt.Sprintf("+UFTP=%d,%q", ftpOpPassword, password), standardTimeout)
}

// SetFTPTimeouts sets the inactivity timeout and the command and data
// channel linger times, all in seconds.
func (m *Modem) SetFTPTimeouts(timeout, cmdLinger, dataLinger int) error {
	cmd := fmt.Sprintf("+UFTP=%d,%d,%d,%d", ftpOpTimeout, timeout, cmdLinger, dataLinger)
	return m.expectOK(cmd, standardTimeout)
}

// FTPConnect logs in to the configured FTP server. The login result
// arrives later as a command result event, see OnFTPResult.
func (m *Modem) FTPConnect() error {
	return m.expectOK(fmt.Sprintf("+UFTPC=%d", FTPCommandLogin), standardTimeout)
}

// FTPDisconnect logs out from the FTP server.
func (m *Modem) FTPDisconnect() error {
	return m.expectOK(fmt.Sprintf("+UFTPC=%d", FTPCommandLogout), standardTimeout)
}

// FTPGetFile retrieves filename from the server into the module file
// system under the same name. Completion is reported through
// OnFTPResult; the downloaded contents can then be read with ReadFile.
func (m *Modem) FTPGetFile(filename string) error {
	cmd := fmt.Sprintf("+UFTPC=%d,%q,%q", FTPCommandGetFile, filename, filename)
	return m.expectOK(cmd, standardTimeout)
}

// FTPError reports the error class and code of the last failed FTP
// operation.
func (m *Modem) FTPError() (class, code int, err error) {
	resp, err := m.sendCommandWithResponse("+UFTPER", "", tenSecondTimeout)
	if err != nil {
		return 0, 0, fmt.Errorf("ftp error query: %w", err)
	}
	rest, ok := responsePayload(resp, "+UFTPER:")
	if !ok {
		return 0, 0, fmt.Errorf("ftp error query: %w", ErrUnexpectedResponse)
	}
	if n, _ := fmt.Sscanf(rest, "%d,%d", &class, &code); n != 2 {
		return 0, 0, fmt.Errorf("ftp error query: %w", ErrUnexpectedResponse)
	}
	return class, code, nil
}
