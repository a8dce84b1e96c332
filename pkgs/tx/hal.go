// Package tx implements the programmer side of the wire protocol: a
// synchronous, per-command dispatcher that drives a peer decoder to
// completion and reports either its result or a taxonomised error.
package tx

import "github.com/keskad/zusi-go/pkgs/zusi"

// HAL is the set of capabilities the TX engine needs from its host: bulk
// byte transmission, bus mode switching, bit-level clock/data lines and a
// microsecond delay primitive.
type HAL interface {
	// TransmitBytes clocks out data at the given bitrate.
	TransmitBytes(data []byte, mbps zusi.Mbps)

	// SPIMaster switches the bus to SPI master mode (used while
	// transmitting a packet).
	SPIMaster()
	// GPIOInput switches the bus to bit-banged GPIO input (used during the
	// ack/busy/data handshake).
	GPIOInput()
	// GPIOOutput switches the bus to bit-banged GPIO output (used during
	// the entry preamble).
	GPIOOutput()

	// WriteClock drives the clock line.
	WriteClock(state bool)
	// WriteData drives the data line.
	WriteData(state bool)
	// ReadData samples the data line.
	ReadData() bool

	// DelayUs busy-waits for us microseconds.
	DelayUs(us uint32)
}
