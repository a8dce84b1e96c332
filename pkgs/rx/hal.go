// Package rx implements the decoder side of the wire protocol: a
// cooperative state machine driven by repeated calls to Tick, backed by a
// hardware abstraction layer supplied by the integrator.
package rx

import "github.com/keskad/zusi-go/pkgs/zusi"

// HAL is the set of capabilities the RX engine needs from its host: byte and
// line I/O, bus mode switching, and the CV/ZPP/feature actions a command
// ultimately triggers.
type HAL interface {
	// ReceiveByte returns the next byte clocked in by the peer, or ok=false
	// if none arrived within the bus's own timeout.
	ReceiveByte() (b byte, ok bool)

	// ReadCV returns the value stored at addr.
	ReadCV(addr uint32) uint8
	// WriteCV stores value at addr.
	WriteCV(addr uint32, value uint8)
	// EraseZpp wipes the entire ZPP region.
	EraseZpp()
	// WriteZpp writes data (at most 256 bytes) starting at addr.
	WriteZpp(addr uint32, data []byte)
	// Features returns this decoder's feature vector.
	Features() zusi.Features
	// Exit leaves load mode. It must never return to its caller.
	Exit(flags uint8)

	// LoadCodeValid reports whether developerCode authorizes a ZPP LC/DC
	// query.
	LoadCodeValid(developerCode [4]byte) bool
	// AddressValid reports whether addr is writable, gating the ack for
	// ZppWrite.
	AddressValid(addr uint32) bool

	// WaitClock blocks until the clock line equals state, or returns false
	// on timeout.
	WaitClock(state bool) bool
	// WriteData drives the data line.
	WriteData(state bool)
	// ToggleLights is a cosmetic hook; implementations may no-op.
	ToggleLights()

	// SPISlave switches the bus to SPI slave mode (the idle/receiving
	// mode).
	SPISlave()
	// GPIOOutput switches the bus to bit-banged GPIO output (used during
	// the ack/busy/data handshake).
	GPIOOutput()
}
