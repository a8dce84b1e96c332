package tx

import (
	"context"

	"github.com/keskad/zusi-go/pkgs/zusi"
)

// Engine is the programmer-side dispatcher. Every exported method runs one
// command to completion: build the packet, transmit it, resync, hand the
// bus to the peer, run the ack/busy handshake and (for some commands) read
// back a response - restoring SPI master mode on every return path.
type Engine struct {
	hal  HAL
	mbps zusi.Mbps
}

// NewEngine wires a fresh engine to hal, starting at the base 0.286 Mbps
// bitrate.
func NewEngine(hal HAL) *Engine {
	return &Engine{hal: hal, mbps: zusi.Mbps0_286}
}

// Enter wakes a peer with the one-off clock/data preamble, then restores SPI
// master mode.
func (e *Engine) Enter() {
	defer e.hal.SPIMaster()
	e.hal.GPIOOutput()
	for i := 0; i < 1_000_000/zusi.ResyncTimeoutUs; i++ {
		e.hal.WriteClock(true)
		e.hal.WriteData(i%2 != 0)
		e.hal.DelayUs(5000)
		e.hal.WriteClock(false)
		e.hal.DelayUs(5000)
	}
	e.hal.DelayUs(zusi.ResyncTimeoutUs)
}

func (e *Engine) resync() {
	e.hal.DelayUs(10)
	e.hal.TransmitBytes([]byte{zusi.ResyncByte}, zusi.Mbps0_1)
}

// readHandshakeBit performs one raw ack-phase bit read: clock high, delay,
// sample data, clock low, delay.
func (e *Engine) readHandshakeBit() bool {
	e.hal.WriteClock(true)
	e.hal.DelayUs(10)
	bit := e.hal.ReadData()
	e.hal.WriteClock(false)
	e.hal.DelayUs(20)
	return bit
}

// ackValidBit reads the first handshake bit. A true value means the line
// looked idle/floating - no decoder answered at all.
func (e *Engine) ackValidBit() bool { return e.readHandshakeBit() }

// ackBit reads the second handshake bit: the peer's real ack/nak.
func (e *Engine) ackBit() bool { return e.readHandshakeBit() }

// busy blocks until the peer signals done, or ctx is cancelled. Timing out
// or cancelling this wait isn't something the original firmware's TX loop
// does at all (it spins forever); exposing a context here is a deliberate
// addition for hosts that need to bound it.
func (e *Engine) busy(ctx context.Context) error {
	e.hal.WriteClock(true)
	e.hal.DelayUs(10)
	e.hal.WriteClock(false)
	e.hal.DelayUs(20)
	for !e.hal.ReadData() {
		select {
		case <-ctx.Done():
			return errf(ProtocolError, "busy-wait cancelled: %v", ctx.Err())
		default:
		}
	}
	return nil
}

func (e *Engine) receiveByte() byte {
	var b byte
	for i := 0; i < 8; i++ {
		e.hal.WriteClock(true)
		e.hal.DelayUs(10)
		if e.hal.ReadData() {
			b |= 1 << uint(i)
		}
		e.hal.WriteClock(false)
		e.hal.DelayUs(20)
	}
	return b
}

// handshake runs resync, the GPIO-input switch, the ack-valid/ack bit pair
// and the busy-wait, returning a TX error if either bit rejects the command
// or the busy-wait is cancelled.
func (e *Engine) handshake(ctx context.Context) error {
	e.resync()
	e.hal.GPIOInput()
	if e.ackValidBit() {
		return errf(ConnectionReset, "no peer answered")
	}
	if !e.ackBit() {
		return errf(ProtocolError, "peer nak")
	}
	return e.busy(ctx)
}

// ReadCV reads one CV's value.
func (e *Engine) ReadCV(ctx context.Context, addr uint32) (uint8, error) {
	defer e.hal.SPIMaster()
	buf := zusi.BuildCvRead(addr)
	e.hal.TransmitBytes(buf, e.mbps)
	if err := e.handshake(ctx); err != nil {
		return 0, err
	}
	value := e.receiveByte()
	crc := e.receiveByte()
	if crc != zusi.CRC8([]byte{value}) {
		return 0, errf(BadMessage, "crc mismatch on cv read response")
	}
	return value, nil
}

// WriteCV stores value at addr.
func (e *Engine) WriteCV(ctx context.Context, addr uint32, value uint8) error {
	defer e.hal.SPIMaster()
	buf := zusi.BuildCvWrite(addr, value)
	e.hal.TransmitBytes(buf, e.mbps)
	return e.handshake(ctx)
}

// EraseZpp erases the entire ZPP region.
func (e *Engine) EraseZpp(ctx context.Context) error {
	defer e.hal.SPIMaster()
	buf := zusi.BuildZppErase()
	e.hal.TransmitBytes(buf, e.mbps)
	return e.handshake(ctx)
}

// WriteZpp writes one chunk (1..256 bytes) starting at addr.
func (e *Engine) WriteZpp(ctx context.Context, addr uint32, data []byte) error {
	defer e.hal.SPIMaster()
	if len(data) == 0 || len(data) > 256 {
		return errf(InvalidArgument, "zpp chunk size %d out of range 1..256", len(data))
	}
	buf := zusi.BuildZppWrite(addr, data)
	e.hal.TransmitBytes(buf, e.mbps)
	return e.handshake(ctx)
}

// Features reads the peer's feature vector and negotiates the fastest
// bitrate it advertises support for.
func (e *Engine) Features(ctx context.Context) (zusi.Features, error) {
	defer e.hal.SPIMaster()
	buf := zusi.BuildFeatures()
	e.hal.TransmitBytes(buf, e.mbps)
	if err := e.handshake(ctx); err != nil {
		return zusi.Features{}, err
	}
	var f zusi.Features
	for i := range f {
		f[i] = e.receiveByte()
	}
	e.negotiateBitrate(f[0])
	return f, nil
}

// negotiateBitrate picks the fastest rate the peer's feature byte allows,
// preferring speed: a clear bit means that rate is supported.
func (e *Engine) negotiateBitrate(f0 byte) {
	switch {
	case f0&zusi.FeatureBit1807Mbps == 0:
		e.mbps = zusi.Mbps1_807
	case f0&zusi.FeatureBit1364Mbps == 0:
		e.mbps = zusi.Mbps1_364
	case f0&zusi.FeatureBit0286Mbps == 0:
		e.mbps = zusi.Mbps0_286
	}
}

// Exit leaves the peer's load mode.
func (e *Engine) Exit(ctx context.Context, flags uint8) error {
	defer e.hal.SPIMaster()
	buf := zusi.BuildExit(flags)
	e.hal.TransmitBytes(buf, e.mbps)
	return e.handshake(ctx)
}

// LcDcQuery asks the peer whether developerCode authorizes a ZPP LC/DC
// operation.
func (e *Engine) LcDcQuery(ctx context.Context, developerCode [4]byte) (bool, error) {
	defer e.hal.SPIMaster()
	buf := zusi.BuildLcDcQuery(developerCode)
	e.hal.TransmitBytes(buf, e.mbps)
	if err := e.handshake(ctx); err != nil {
		return false, err
	}
	value := e.receiveByte()
	crc := e.receiveByte()
	if crc != zusi.CRC8([]byte{value}) {
		return false, errf(BadMessage, "crc mismatch on lc/dc query response")
	}
	return value != 0, nil
}

// Feedback is the result of dispatching an already-built raw packet through
// Transmit.
type Feedback struct {
	Bytes []byte
	Err   error
}

// Transmit inspects packet's opcode byte and runs the matching method,
// folding its result into a Feedback. It exists for callers that build or
// replay raw frames rather than going through the typed methods above.
func (e *Engine) Transmit(ctx context.Context, packet []byte) Feedback {
	if len(packet) == 0 {
		return Feedback{Err: errf(InvalidArgument, "empty packet")}
	}
	addr := func() uint32 {
		var a uint32
		for i := 0; i < 4; i++ {
			a = a<<8 | uint32(packet[zusi.AddrPos+i])
		}
		return a
	}
	switch zusi.Command(packet[zusi.CmdPos]) {
	case zusi.CmdCvRead:
		v, err := e.ReadCV(ctx, addr())
		if err != nil {
			return Feedback{Err: err}
		}
		return Feedback{Bytes: []byte{v}}
	case zusi.CmdCvWrite:
		value := packet[zusi.DataPos]
		if err := e.WriteCV(ctx, addr(), value); err != nil {
			return Feedback{Err: err}
		}
		return Feedback{}
	case zusi.CmdZppErase:
		if err := e.EraseZpp(ctx); err != nil {
			return Feedback{Err: err}
		}
		return Feedback{}
	case zusi.CmdZppWrite:
		count := int(packet[zusi.DataCntPos]) + 1
		data := packet[zusi.DataPos : zusi.DataPos+count]
		if err := e.WriteZpp(ctx, addr(), data); err != nil {
			return Feedback{Err: err}
		}
		return Feedback{}
	case zusi.CmdFeatures:
		f, err := e.Features(ctx)
		if err != nil {
			return Feedback{Err: err}
		}
		return Feedback{Bytes: f[:]}
	case zusi.CmdExit:
		flags := packet[zusi.ExitFlagsPos]
		if err := e.Exit(ctx, flags); err != nil {
			return Feedback{Err: err}
		}
		return Feedback{}
	case zusi.CmdZppLcDcQuery:
		var code [4]byte
		copy(code[:], packet[1:5])
		ok, err := e.LcDcQuery(ctx, code)
		if err != nil {
			return Feedback{Err: err}
		}
		var b byte
		if ok {
			b = 1
		}
		return Feedback{Bytes: []byte{b}}
	default:
		return Feedback{Err: errf(InvalidArgument, "unknown opcode %#x", packet[zusi.CmdPos])}
	}
}
