package tx

import "fmt"

// ErrorKind classifies a TX-side failure.
type ErrorKind uint8

const (
	// ConnectionReset means the ack-valid bit came back true: the line
	// looked idle, so no decoder answered.
	ConnectionReset ErrorKind = iota
	// ProtocolError means the peer NAKed the command, or the busy-wait was
	// cancelled before the peer signalled done.
	ProtocolError
	// BadMessage means a CRC check on a received response byte failed
	// (CvRead, LcDcQuery).
	BadMessage
	// InvalidArgument means a request could not be run as given: Transmit
	// was handed an empty packet or an opcode it doesn't know how to run, or
	// WriteZpp was handed a chunk outside 1..256 bytes.
	InvalidArgument
)

func (k ErrorKind) String() string {
	switch k {
	case ConnectionReset:
		return "ConnectionReset"
	case ProtocolError:
		return "ProtocolError"
	case BadMessage:
		return "BadMessage"
	case InvalidArgument:
		return "InvalidArgument"
	default:
		return "Unknown"
	}
}

// Error is the error type every TX method returns on failure.
type Error struct {
	Kind ErrorKind
	Msg  string
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

// Is lets callers write errors.Is(err, tx.ErrConnectionReset) style checks
// against a sentinel built from the same Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

func errf(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Sentinel errors usable with errors.Is(err, tx.ErrConnectionReset).
var (
	ErrConnectionReset = &Error{Kind: ConnectionReset}
	ErrProtocolError   = &Error{Kind: ProtocolError}
	ErrBadMessage      = &Error{Kind: BadMessage}
	ErrInvalidArgument = &Error{Kind: InvalidArgument}
)
