// Package zusi implements the wire-level building blocks of the ZUSI
// protocol: the frame layout, CRC8, the command enumeration and the
// per-command packet builders. It has no knowledge of GPIO, SPI or timing -
// that lives in pkgs/rx and pkgs/tx, which both import this package.
package zusi

// Command is the closed set of ZUSI opcodes. Any byte outside this set is an
// invalid command.
type Command uint8

const (
	CmdNone         Command = 0x00
	CmdCvRead       Command = 0x01
	CmdCvWrite      Command = 0x02
	CmdZppErase     Command = 0x04
	CmdZppWrite     Command = 0x05
	CmdFeatures     Command = 0x06
	CmdExit         Command = 0x07
	CmdZppLcDcQuery Command = 0x0D
)

func (c Command) String() string {
	switch c {
	case CmdNone:
		return "None"
	case CmdCvRead:
		return "CvRead"
	case CmdCvWrite:
		return "CvWrite"
	case CmdZppErase:
		return "ZppErase"
	case CmdZppWrite:
		return "ZppWrite"
	case CmdFeatures:
		return "Features"
	case CmdExit:
		return "Exit"
	case CmdZppLcDcQuery:
		return "ZppLcDcQuery"
	default:
		return "Unknown"
	}
}

// Known reports whether cmd is one of the opcodes the engine actually
// dispatches (as opposed to merely falling in the valid byte range, see
// InByteRange).
func (c Command) Known() bool {
	switch c {
	case CmdCvRead, CmdCvWrite, CmdZppErase, CmdZppWrite, CmdFeatures, CmdExit, CmdZppLcDcQuery:
		return true
	default:
		return false
	}
}

// InByteRange reports whether b falls within [CvRead, ZppLcDcQuery] as a raw
// byte value. This mirrors a quirk of the original ZUSI firmware
// (is_valid_command clamps the byte between 1 and 13 rather than checking
// set membership): an undefined opcode byte in that range - e.g. 0x03 - is
// accepted by the RX engine's first validity check and only fails later,
// during ReceiveData, because no case in the per-opcode dispatch matches it.
// The net observable behaviour (drop to Error) is identical either way; this
// helper exists so the RX engine can reproduce the original's two-stage
// rejection exactly.
func InByteRange(b byte) bool {
	return b >= byte(CmdCvRead) && b <= byte(CmdZppLcDcQuery)
}
