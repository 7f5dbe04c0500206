package modem

//go:generate go tool mockgen -source=transport.go -destination=mock_transport.go -package=modem

// Transport is the byte-level connection to the module.
//
// The driver polls the transport from a single logical thread: it checks
// Available, pulls one byte at a time with ReadByte, and writes commands
// with Write. Implementations must not block in ReadByte when Available
// reported at least one pending byte. Typical implementations are serial
// ports and in-memory fakes used for testing.
type Transport interface {
	// Open establishes the connection at the given baud rate. Open may
	// be called again with a different rate while the transport is
	// open; implementations reconfigure the line in place.
	Open(baud int) error

	// Available returns the number of bytes ready to read without
	// blocking. It returns a negative value when the transport is not
	// open.
	Available() int

	// ReadByte returns the next pending byte.
	ReadByte() (byte, error)

	// Write sends raw bytes to the module.
	Write(p []byte) (n int, err error)

	// Close tears the connection down.
	Close() error
}
