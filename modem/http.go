package modem

import "fmt"

// NumHTTPProfiles is the number of HTTP profiles the module supports.
const NumHTTPProfiles = 4

// HTTP profile parameter opcodes (+UHTTP).
const (
	httpOpServerIP      = 0
	httpOpServerName    = 1
	httpOpUsername      = 2
	httpOpPassword      = 3
	httpOpAuthType      = 4
	httpOpServerPort    = 5
	httpOpSecure        = 6
	httpOpCustomHeaders = 9
)

// HTTP command opcodes (+UHTTPC), reported back in HTTPResult.Command.
const (
	HTTPCommandHead     = 0
	HTTPCommandGet      = 1
	HTTPCommandDelete   = 2
	HTTPCommandPut      = 3
	HTTPCommandPostFile = 4
	HTTPCommandPostData = 5
)

func validHTTPProfile(profile int) error {
	if profile < 0 || profile >= NumHTTPProfiles {
		return fmt.Errorf("http profile %d: %w", profile, ErrInvalidParam)
	}
	return nil
}

// ResetHTTPProfile clears all parameters of the profile.
func (m *Modem) ResetHTTPProfile(profile int) error {
	if err := validHTTPProfile(profile); err != nil {
		return err
	}
	return m.expectOK(fmt.Sprintf("+UHTTP=%d", profile), standardTimeout)
}

// SetHTTPServerName sets the target server by hostname.
func (m *Modem) SetHTTPServerName(profile int, server string) error {
	if err := validHTTPProfile(profile); err != nil {
		return err
	}
	return m.expectOK(fmt.Sprintf("+UHTTP=%d,%d,%q", profile, httpOpServerName, server), standardTimeout)
}

// SetHTTPUsername sets the username for server authentication.
func (m *Modem) SetHTTPUsername(profile int, username string) error {
	if err := validHTTPProfile(profile); err != nil {
		return err
	}
	return m.expectOK(fmt.Sprintf("+UHTTP=%d,%d,%q", profile, httpOpUsername, username), standardTimeout)
}

// SetHTTPPassword sets the password for server authentication.
func (m *Modem) SetHTTPPassword(profile int, password string) error {
	if err := validHTTPProfile(profile); err != nil {
		return err
	}
	return m.expectOK(fmt.Sprintf("+UHTTP=%d,%d,%q", profile, httpOpPassword, password), standardTimeout)
}

// SetHTTPAuthentication enables basic authentication on the profile.
func (m *Modem) SetHTTPAuthentication(profile int, on bool) error {
	if err := validHTTPProfile(profile); err != nil {
		return err
	}
	v := 0
	if on {
		v = 1
	}
	return m.expectOK(fmt.Sprintf("+UHTTP=%d,%d,%d", profile, httpOpAuthType, v), standardTimeout)
}

// SetHTTPServerPort sets the server TCP port.
func (m *Modem) SetHTTPServerPort(profile, port int) error {
	if err := validHTTPProfile(profile); err != nil {
		return err
	}
	return m.expectOK(fmt.Sprintf("+UHTTP=%d,%d,%d", profile, httpOpServerPort, port), standardTimeout)
}

// SetHTTPSecure enables TLS for the profile, optionally binding a
// security profile (pass -1 for none).
func (m *Modem) SetHTTPSecure(profile int, secure bool, securityProfile int) error {
	if err := validHTTPProfile(profile); err != nil {
		return err
	}
	v := 0
	if secure {
		v = 1
	}
	if securityProfile < 0 {
		return m.expectOK(fmt.Sprintf("+UHTTP=%d,%d,%d", profile, httpOpSecure, v), standardTimeout)
	}
	return m.expectOK(fmt.Sprintf("+UHTTP=%d,%d,%d,%d", profile, httpOpSecure, v, securityProfile), standardTimeout)
}

// SetHTTPCustomHeader adds a custom header, formatted "index:name:value".
func (m *Modem) SetHTTPCustomHeader(profile int, header string) error {
	if err := validHTTPProfile(profile); err != nil {
		return err
	}
	return m.expectOK(fmt.Sprintf("+UHTTP=%d,%d,%q", profile, httpOpCustomHeaders, header), standardTimeout)
}

// HTTPGet issues a GET for path; the response body lands in the named
// file on the module's file system. Completion arrives as a +UUHTTPCR
// notification.
func (m *Modem) HTTPGet(profile int, path, responseFile string) error {
	if err := validHTTPProfile(profile); err != nil {
		return err
	}
	cmd := fmt.Sprintf("+UHTTPC=%d,%d,%q,%q", profile, HTTPCommandGet, path, responseFile)
	return m.expectOK(cmd, standardTimeout)
}

// HTTPPostData issues a POST with an inline body. contentType is the
// module's content type code (0 = application/x-www-form-urlencoded,
// 1 = text/plain, ...).
func (m *Modem) HTTPPostData(profile int, path, responseFile, data string, contentType int) error {
	if err := validHTTPProfile(profile); err != nil {
		return err
	}
	cmd := fmt.Sprintf("+UHTTPC=%d,%d,%q,%q,%q,%d", profile, HTTPCommandPostData, path, responseFile, data, contentType)
	return m.expectOK(cmd, standardTimeout)
}

// HTTPPostFile issues a POST whose body is a file on the module's
// file system.
func (m *Modem) HTTPPostFile(profile int, path, responseFile, requestFile string, contentType int) error {
	if err := validHTTPProfile(profile); err != nil {
		return err
	}
	cmd := fmt.Sprintf("+UHTTPC=%d,%d,%q,%q,%q,%d", profile, HTTPCommandPostFile, path, responseFile, requestFile, contentType)
	return m.expectOK(cmd, standardTimeout)
}

// HTTPError returns the error class and code of the last HTTP
// operation on the profile.
func (m *Modem) HTTPError(profile int) (class, code int, err error) {
	if err := validHTTPProfile(profile); err != nil {
		return 0, 0, err
	}
	resp, err := m.sendCommandWithResponse(fmt.Sprintf("+UHTTPER=%d", profile), "", standardTimeout)
	if err != nil {
		return 0, 0, fmt.Errorf("http error query: %w", err)
	}
	rest, ok := responsePayload(resp, "+UHTTPER:")
	if !ok {
		return 0, 0, fmt.Errorf("http error query: %w", ErrUnexpectedResponse)
	}
	var profileStore int
	if n, _ := fmt.Sscanf(rest, "%d,%d,%d", &profileStore, &class, &code); n != 3 {
		return 0, 0, fmt.Errorf("http error query: %w", ErrUnexpectedResponse)
	}
	return class, code, nil
}
