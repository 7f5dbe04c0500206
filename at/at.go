// Package at holds the wire-level vocabulary of the u-blox AT command set:
// the response tokens the transaction engine scans for, the unsolicited
// result code signatures, and the tokenizers that carve CR/LF framed
// modem output into lines.
package at

const (
	CRLF = "\r\n"

	// CommandAT prefixes every command written to the modem.
	CommandAT = "AT"

	// Prompt is emitted by the modem when it expects literal text input
	// (SMS body, file download).
	Prompt = ">"
	// WritePrompt is emitted when a socket write command is ready to
	// accept payload bytes.
	WritePrompt = "@"

	// ResponseOK and ResponseError are the final result tokens scanned
	// for by default. The leading LF anchors the match to the start of
	// the result line so a payload containing "OK" does not terminate
	// the transaction early.
	ResponseOK    = "\nOK\r\n"
	ResponseError = "\nERROR\r\n"

	// ResponseConnect announces the switch into direct link or dial-up
	// data mode.
	ResponseConnect = "\r\nCONNECT\r\n"
)

// Unsolicited result code signatures. Order matters: the poll dispatcher
// tries them first to last, and the backlog pruner keeps any line
// containing one of them.
const (
	UrcSocketData      = "+UUSORD:"
	UrcSocketDataUDP   = "+UUSORF:"
	UrcSocketListen    = "+UUSOLI:"
	UrcSocketClosed    = "+UUSOCL:"
	UrcLocation        = "+UULOC:"
	UrcSIMState        = "+UUSIMSTAT:"
	UrcHTTPResult      = "+UUHTTPCR:"
	UrcMQTTResult      = "+UUMQTTC:"
	UrcPingResult      = "+UUPING:"
	UrcRegistration    = "+CREG:"
	UrcEPSRegistration = "+CEREG:"
	UrcFTPResult       = "+UUFTPCR:"
)

// Signatures lists every recognized URC prefix in dispatch priority order.
var Signatures = []string{
	UrcSocketData,
	UrcSocketDataUDP,
	UrcSocketListen,
	UrcSocketClosed,
	UrcLocation,
	UrcSIMState,
	UrcHTTPResult,
	UrcMQTTResult,
	UrcPingResult,
	UrcRegistration,
	UrcEPSRegistration,
	UrcFTPResult,
}
