package modem

import (
	"log/slog"
	"time"
)

// DefaultBaud is the module's factory baud rate.
const DefaultBaud = 115200

// supportedBauds are the rates walked during autobaud negotiation, in
// probe order.
var supportedBauds = []int{115200, 230400, 460800, 921600, 3000000}

// InitType selects the connection strategy used by Begin.
type InitType int

const (
	// InitStandard assumes the module is powered and already at the
	// configured baud rate.
	InitStandard InitType = iota
	// InitPowerCycle power cycles the module before probing it.
	InitPowerCycle
	// InitAutobaud walks the supported baud rates until the module
	// answers, then pushes it to the configured rate.
	InitAutobaud
)

type Config struct {
	Transport Transport
	Baud      int
	Init      InitType

	// PowerPin and ResetPin are optional. Without a power pin the
	// power cycle strategy degrades to a plain retry.
	PowerPin Pin
	ResetPin Pin

	// MaxInitTries bounds the Begin retry loop across strategies.
	MaxInitTries int

	// ResponseSize caps how many response bytes a transaction captures.
	// Longer responses are scanned for tokens but not returned.
	ResponseSize int

	// AutoTimeZone enables network time zone updates during Begin.
	AutoTimeZone bool

	// Logger receives debug traces of transactions and dispatched
	// notifications. Nil disables logging.
	Logger *slog.Logger
}

func (c *Config) validate() error {
	if c.Transport == nil {
		return ErrNoTransport
	}
	return nil
}

func (c *Config) setDefaults() {
	if c.Baud == 0 {
		c.Baud = DefaultBaud
	}
	if c.MaxInitTries == 0 {
		c.MaxInitTries = 9
	}
	if c.ResponseSize == 0 {
		c.ResponseSize = rxBufferSize
	}
}

// ConfigBuilder assembles a Config fluently. Zero values fall back to
// the same defaults as a literal Config.
type ConfigBuilder struct {
	cfg Config
}

func NewConfigBuilder() *ConfigBuilder {
	return &ConfigBuilder{}
}

func (b *ConfigBuilder) WithTransport(t Transport) *ConfigBuilder {
	b.cfg.Transport = t
	return b
}

func (b *ConfigBuilder) WithSerialPort(portName string) *ConfigBuilder {
	b.cfg.Transport = NewSerialTransport(portName)
	return b
}

func (b *ConfigBuilder) WithBaud(baud int) *ConfigBuilder {
	b.cfg.Baud = baud
	return b
}

func (b *ConfigBuilder) WithInitType(t InitType) *ConfigBuilder {
	b.cfg.Init = t
	return b
}

func (b *ConfigBuilder) WithPowerPin(p Pin) *ConfigBuilder {
	b.cfg.PowerPin = p
	return b
}

func (b *ConfigBuilder) WithResetPin(p Pin) *ConfigBuilder {
	b.cfg.ResetPin = p
	return b
}

func (b *ConfigBuilder) WithAutoTimeZone(on bool) *ConfigBuilder {
	b.cfg.AutoTimeZone = on
	return b
}

func (b *ConfigBuilder) WithLogger(l *slog.Logger) *ConfigBuilder {
	b.cfg.Logger = l
	return b
}

func (b *ConfigBuilder) Build() (Config, error) {
	if err := b.cfg.validate(); err != nil {
		return Config{}, err
	}
	b.cfg.setDefaults()
	return b.cfg, nil
}

// Command timeouts. Most commands answer within the standard second;
// the long variants come from the AT manual's worst-case figures.
const (
	standardTimeout   = time.Second
	tenSecondTimeout  = 10 * time.Second
	ipActivateTimeout = 150 * time.Second
	powerOffTimeout   = 40 * time.Second
	socketWriteSettle = 50 * time.Millisecond
)
