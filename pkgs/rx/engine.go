package rx

import "github.com/keskad/zusi-go/pkgs/zusi"

// State is one node of the receive FSM.
type State uint8

const (
	ReceiveCommand State = iota
	ReceiveData
	ReceiveResync
	TransmitAck
	TransmitBusy
	TransmitData
	Error
)

func (s State) String() string {
	switch s {
	case ReceiveCommand:
		return "ReceiveCommand"
	case ReceiveData:
		return "ReceiveData"
	case ReceiveResync:
		return "ReceiveResync"
	case TransmitAck:
		return "TransmitAck"
	case TransmitBusy:
		return "TransmitBusy"
	case TransmitData:
		return "TransmitData"
	case Error:
		return "Error"
	default:
		return "Unknown"
	}
}

// Engine is the decoder-side state machine. It owns no goroutines: the host
// drives it by calling Tick from whatever loop samples the clock line.
type Engine struct {
	hal    HAL
	packet zusi.Packet
	crc    byte
	state  State
	ack    bool
}

// NewEngine wires a fresh engine to hal, starting in ReceiveCommand.
func NewEngine(hal HAL) *Engine {
	return &Engine{hal: hal, state: ReceiveCommand}
}

// State reports the engine's current state without advancing it.
func (e *Engine) State() State { return e.state }

// Tick performs exactly one state transition and returns the state reached.
func (e *Engine) Tick() State {
	switch e.state {
	case ReceiveCommand:
		e.hal.ToggleLights()
		e.state = e.receiveCommand()
	case ReceiveData:
		e.state = e.receiveData()
	case ReceiveResync:
		e.state = e.receiveResync()
	case TransmitAck:
		e.state = e.transmitAck()
	case TransmitBusy:
		e.state = e.transmitBusy()
	case TransmitData:
		e.state = e.transmitData()
	case Error:
		e.state = e.reset()
	}
	return e.state
}

func (e *Engine) receiveCommand() State {
	e.packet.Reset()
	if !e.receiveBytes(1) {
		return Error
	}
	if !zusi.InByteRange(e.packet.At(zusi.CmdPos)) {
		return Error
	}
	return ReceiveData
}

func (e *Engine) receiveData() State {
	var ok bool
	switch zusi.Command(e.packet.At(zusi.CmdPos)) {
	case zusi.CmdCvRead:
		ok = e.receiveBytes(6)
	case zusi.CmdCvWrite, zusi.CmdZppWrite:
		if ok = e.receiveBytes(1); ok {
			ok = e.receiveBytes(int(e.packet.At(zusi.DataCntPos)) + 6)
		}
	case zusi.CmdZppErase:
		ok = e.receiveBytes(3)
	case zusi.CmdFeatures:
		ok = e.receiveBytes(1)
	case zusi.CmdExit:
		ok = e.receiveBytes(4)
	case zusi.CmdZppLcDcQuery:
		ok = e.receiveBytes(5)
	}
	if !ok {
		return Error
	}
	return ReceiveResync
}

func (e *Engine) receiveResync() State {
	e.ack = e.ackOrNack()
	b, ok := e.hal.ReceiveByte()
	if !ok {
		return Error
	}
	if b != zusi.ResyncByte {
		return Error
	}
	e.hal.GPIOOutput()
	return TransmitAck
}

func (e *Engine) transmitAck() State {
	if !e.hal.WaitClock(true) {
		return Error
	}
	e.hal.WriteData(false)
	if !e.hal.WaitClock(false) {
		return Error
	}
	if !e.hal.WaitClock(true) {
		return Error
	}
	if e.ack {
		e.hal.WriteData(true)
	}
	if !e.hal.WaitClock(false) {
		return Error
	}
	if !e.ack {
		return Error
	}
	// Exit leaves load mode from here, only once the security bytes and CRC
	// have been accepted - wrong security bytes nak and drop to Error above
	// without ever calling exit().
	if zusi.Command(e.packet.At(zusi.CmdPos)) == zusi.CmdExit {
		e.hal.Exit(e.packet.At(zusi.ExitFlagsPos))
	}
	return TransmitBusy
}

func (e *Engine) transmitBusy() State {
	if !e.hal.WaitClock(true) {
		return Error
	}
	e.hal.WriteData(false)
	next := e.execute(zusi.Command(e.packet.At(zusi.CmdPos)))
	if !e.hal.WaitClock(false) {
		return Error
	}
	e.hal.WriteData(true)
	if next == ReceiveCommand {
		e.hal.SPISlave()
	}
	return next
}

func (e *Engine) transmitData() State {
	for i := 0; i < e.packet.Len(); i++ {
		if !e.transmitByte(e.packet.At(i)) {
			return Error
		}
	}
	return e.reset()
}

// execute runs the opcode's action and lays out any response in the packet
// buffer in place. addr is read unconditionally at AddrPos, exactly as the
// decoder firmware does, even for opcodes whose payload is shorter.
func (e *Engine) execute(cmd zusi.Command) State {
	addr := e.packet.Uint32At(zusi.AddrPos)
	switch cmd {
	case zusi.CmdCvRead:
		value := e.hal.ReadCV(addr)
		e.packet.Set(0, value)
		e.packet.Set(1, zusi.CRC8([]byte{value}))
		e.packet.Truncate(2)
		return TransmitData
	case zusi.CmdCvWrite:
		e.hal.WriteCV(addr, e.packet.At(zusi.DataPos))
	case zusi.CmdZppErase:
		e.hal.EraseZpp()
	case zusi.CmdZppWrite:
		count := int(e.packet.At(zusi.DataCntPos)) + 1
		data := make([]byte, count)
		for i := 0; i < count; i++ {
			data[i] = e.packet.At(zusi.DataPos + i)
		}
		e.hal.WriteZpp(addr, data)
	case zusi.CmdFeatures:
		f := e.hal.Features()
		for i, b := range f {
			e.packet.Set(i, b)
		}
		e.packet.Truncate(len(f))
		return TransmitData
	case zusi.CmdZppLcDcQuery:
		var code [4]byte
		for i := range code {
			code[i] = e.packet.At(1 + i)
		}
		var valid byte
		if e.hal.LoadCodeValid(code) {
			valid = 1
		}
		e.packet.Set(0, valid)
		e.packet.Set(1, zusi.CRC8([]byte{valid}))
		e.packet.Truncate(2)
		return TransmitData
	}
	return ReceiveCommand
}

func (e *Engine) reset() State {
	e.hal.SPISlave()
	e.crc = 0
	e.ack = false
	return ReceiveCommand
}

func (e *Engine) receiveBytes(count int) bool {
	for i := 0; i < count; i++ {
		b, ok := e.hal.ReceiveByte()
		if !ok {
			return false
		}
		if !e.packet.Append(b) {
			return false
		}
		e.crc = zusi.CRCStep(e.crc, b)
	}
	return true
}

func (e *Engine) transmitByte(b byte) bool {
	for i := 0; i < 8; i++ {
		if !e.hal.WaitClock(true) {
			return false
		}
		e.hal.WriteData(b&(1<<uint(i)) != 0)
		if !e.hal.WaitClock(false) {
			return false
		}
	}
	return true
}

// ackOrNack decides the handshake outcome for the just-received packet,
// then unconditionally clears the CRC accumulator.
func (e *Engine) ackOrNack() bool {
	defer func() { e.crc = 0 }()
	crcOK := e.crc == 0
	switch zusi.Command(e.packet.At(zusi.CmdPos)) {
	case zusi.CmdCvRead, zusi.CmdCvWrite, zusi.CmdFeatures, zusi.CmdZppLcDcQuery:
		return crcOK
	case zusi.CmdZppWrite:
		return crcOK && e.hal.AddressValid(e.packet.Uint32At(zusi.AddrPos))
	case zusi.CmdZppErase, zusi.CmdExit:
		return crcOK &&
			e.packet.At(zusi.SecBytesPos) == 0x55 &&
			e.packet.At(zusi.SecBytesPos+1) == 0xAA
	default:
		return false
	}
}
