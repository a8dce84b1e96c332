// Package zusitest provides scripted hardware-abstraction-layer doubles for
// exercising pkgs/rx and pkgs/tx without real GPIO/SPI hardware, in the
// spirit of a replayed byte/bool script.
package zusitest

import "github.com/keskad/zusi-go/pkgs/zusi"

// ByteOrNone is one scripted reply from ReceiveByte: either a byte, or a
// "nothing arrived" timeout.
type ByteOrNone struct {
	Byte byte
	None bool
}

// CVCall records a WriteCV invocation observed by MockRxHAL.
type CVCall struct {
	Addr  uint32
	Value uint8
}

// ZppCall records a WriteZpp invocation observed by MockRxHAL.
type ZppCall struct {
	Addr uint32
	Data []byte
}

type exitSentinel struct{ Flags uint8 }

// RunExit invokes fn and reports whether it triggered a HAL Exit call. Exit
// is documented as [[noreturn]] in the original firmware; Go has no such
// attribute, so MockRxHAL.Exit panics with an internal sentinel and RunExit
// recovers it, letting a test assert "exit fired and nothing after it ran"
// without the process actually terminating.
func RunExit(fn func()) (exited bool, flags uint8) {
	defer func() {
		if r := recover(); r != nil {
			if s, ok := r.(exitSentinel); ok {
				exited, flags = true, s.Flags
				return
			}
			panic(r)
		}
	}()
	fn()
	return false, 0
}

// MockRxHAL is a scripted rx.HAL double. ReceiveBytes is consumed in order,
// one entry per ReceiveByte call; WaitClockResults is consumed the same way
// per WaitClock call (defaulting to true once exhausted, since most tests
// don't care about the handshake's line-level detail).
type MockRxHAL struct {
	ReceiveBytes     []ByteOrNone
	WaitClockResults []bool

	ReadCVFn         func(addr uint32) uint8
	AddressValidFn   func(addr uint32) bool
	LoadCodeValidFn  func(code [4]byte) bool
	FeaturesFn       func() zusi.Features

	recvIdx int
	wcIdx   int

	CVWrites    []CVCall
	ZppWrites   []ZppCall
	ErasedZpp   int
	WrittenData []bool
	ToggledAt   int
	SPISlaveN   int
	GPIOOutN    int
}

func (m *MockRxHAL) ReceiveByte() (byte, bool) {
	if m.recvIdx >= len(m.ReceiveBytes) {
		return 0, false
	}
	entry := m.ReceiveBytes[m.recvIdx]
	m.recvIdx++
	if entry.None {
		return 0, false
	}
	return entry.Byte, true
}

func (m *MockRxHAL) ReadCV(addr uint32) uint8 {
	if m.ReadCVFn != nil {
		return m.ReadCVFn(addr)
	}
	return 0
}

func (m *MockRxHAL) WriteCV(addr uint32, value uint8) {
	m.CVWrites = append(m.CVWrites, CVCall{Addr: addr, Value: value})
}

func (m *MockRxHAL) EraseZpp() { m.ErasedZpp++ }

func (m *MockRxHAL) WriteZpp(addr uint32, data []byte) {
	cp := append([]byte(nil), data...)
	m.ZppWrites = append(m.ZppWrites, ZppCall{Addr: addr, Data: cp})
}

func (m *MockRxHAL) Features() zusi.Features {
	if m.FeaturesFn != nil {
		return m.FeaturesFn()
	}
	return zusi.Features{}
}

func (m *MockRxHAL) Exit(flags uint8) { panic(exitSentinel{Flags: flags}) }

func (m *MockRxHAL) LoadCodeValid(code [4]byte) bool {
	if m.LoadCodeValidFn != nil {
		return m.LoadCodeValidFn(code)
	}
	return false
}

func (m *MockRxHAL) AddressValid(addr uint32) bool {
	if m.AddressValidFn != nil {
		return m.AddressValidFn(addr)
	}
	return true
}

func (m *MockRxHAL) WaitClock(state bool) bool {
	if m.wcIdx >= len(m.WaitClockResults) {
		return true
	}
	r := m.WaitClockResults[m.wcIdx]
	m.wcIdx++
	return r
}

func (m *MockRxHAL) WriteData(state bool) { m.WrittenData = append(m.WrittenData, state) }
func (m *MockRxHAL) ToggleLights()        { m.ToggledAt++ }
func (m *MockRxHAL) SPISlave()            { m.SPISlaveN++ }
func (m *MockRxHAL) GPIOOutput()          { m.GPIOOutN++ }
