package modem

import "errors"

var (
	// ErrNoTransport is returned when a Modem is constructed without a
	// Transport.
	//
	// This indicates a configuration error. A Transport is required in
	// order to reach the module.
	ErrNoTransport = errors.New("no transport configured")

	// ErrNotOpen is returned when an operation is attempted before the
	// transport has been opened via Begin.
	ErrNotOpen = errors.New("transport not open")

	// ErrAlreadyClosed is returned when Close is called on a Modem that
	// has already been closed.
	ErrAlreadyClosed = errors.New("modem already closed")

	// ErrNoResponse is returned when a command produced no bytes at all
	// before its timeout expired.
	//
	// This usually means the module is powered down, still booting, or
	// running at a different baud rate.
	ErrNoResponse = errors.New("no response from module")

	// ErrUnexpectedResponse is returned when the module produced output
	// but the expected result token never appeared before the timeout.
	ErrUnexpectedResponse = errors.New("unexpected response from module")

	// ErrCommandError is returned when the module answered a command
	// with its error result token.
	ErrCommandError = errors.New("module reported command error")

	// ErrInvalidParam is returned when a command argument is out of the
	// range the module accepts (socket number, HTTP profile, etc.) and
	// would never be sent.
	ErrInvalidParam = errors.New("invalid parameter")

	// ErrDeregistered is returned by registration queries when the
	// module reports it is not registered on a network.
	ErrDeregistered = errors.New("not registered on network")

	// ErrZeroReadLength is returned by socket reads when the module
	// reports zero pending bytes for the socket.
	ErrZeroReadLength = errors.New("zero read length")
)
