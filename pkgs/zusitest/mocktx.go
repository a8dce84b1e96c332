package zusitest

import "github.com/keskad/zusi-go/pkgs/zusi"

// TransmitCall records one TransmitBytes invocation observed by MockTxHAL.
type TransmitCall struct {
	Bytes []byte
	Mbps  zusi.Mbps
}

// MockTxHAL is a scripted tx.HAL double. ReadDataResults is consumed in
// order, one entry per ReadData call - it drives the ack-valid bit, the ack
// bit and every bit of every subsequent receiveByte.
type MockTxHAL struct {
	ReadDataResults []bool

	rdIdx int

	Transmits    []TransmitCall
	SPIMasterN   int
	GPIOInputN   int
	GPIOOutputN  int
	ClockWrites  []bool
	DataWrites   []bool
	DelaysUs     []uint32
}

func (m *MockTxHAL) TransmitBytes(data []byte, mbps zusi.Mbps) {
	cp := append([]byte(nil), data...)
	m.Transmits = append(m.Transmits, TransmitCall{Bytes: cp, Mbps: mbps})
}

func (m *MockTxHAL) SPIMaster()  { m.SPIMasterN++ }
func (m *MockTxHAL) GPIOInput()  { m.GPIOInputN++ }
func (m *MockTxHAL) GPIOOutput() { m.GPIOOutputN++ }

func (m *MockTxHAL) WriteClock(state bool) { m.ClockWrites = append(m.ClockWrites, state) }
func (m *MockTxHAL) WriteData(state bool)  { m.DataWrites = append(m.DataWrites, state) }

func (m *MockTxHAL) ReadData() bool {
	if m.rdIdx >= len(m.ReadDataResults) {
		return true
	}
	r := m.ReadDataResults[m.rdIdx]
	m.rdIdx++
	return r
}

func (m *MockTxHAL) DelayUs(us uint32) { m.DelaysUs = append(m.DelaysUs, us) }
