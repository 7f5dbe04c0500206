package modem

import "fmt"

// SecurityParam identifies a TLS security profile setting (+USECPRF).
type SecurityParam int

const (
	SecurityParamCertValLevel SecurityParam = 0
	SecurityParamTLSVersion   SecurityParam = 1
	SecurityParamCipherSuite  SecurityParam = 2
	SecurityParamRootCA       SecurityParam = 3
	SecurityParamHostname     SecurityParam = 4
	SecurityParamClientCert   SecurityParam = 5
	SecurityParamClientKey    SecurityParam = 6
	SecurityParamClientKeyPwd SecurityParam = 7
	SecurityParamPSK          SecurityParam = 8
	SecurityParamPSKIdentity  SecurityParam = 9
	SecurityParamSNI          SecurityParam = 10
)

// Certificate validation levels for SecurityParamCertValLevel.
const (
	CertValNone       = 0
	CertValYesNoURL   = 1
	CertValYesURL     = 2
	CertValYesURLDate = 3
)

// TLS version selectors for SecurityParamTLSVersion.
const (
	TLSVersionAny = 0
	TLSVersion1_0 = 1
	TLSVersion1_1 = 2
	TLSVersion1_2 = 3
	TLSVersion1_3 = 4
)

// ResetSecurityProfile resets all settings of a TLS security profile
// to their factory values.
func (m *Modem) ResetSecurityProfile(profile int) error {
	return m.expectOK(fmt.Sprintf("+USECPRF=%d", profile), standardTimeout)
}

// ConfigureSecurityProfile sets a numeric security profile parameter,
// such as the validation level or TLS version.
func (m *Modem) ConfigureSecurityProfile(profile int, param SecurityParam, value int) error {
	return m.expectOK(fmt.Sprintf("+USECPRF=%d,%d,%d", profile, param, value), standardTimeout)
}

// ConfigureSecurityProfileString sets a string security profile
// parameter, such as the expected hostname or the internal name of an
// imported certificate.
func (m *Modem) ConfigureSecurityProfileString(profile int, param SecurityParam, value string) error {
	return m.expectOK(fmt.Sprintf("+USECPRF=%d,%d,%q", profile, param, value), standardTimeout)
}
