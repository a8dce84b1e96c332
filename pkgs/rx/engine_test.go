package rx

import (
	"testing"

	"github.com/keskad/zusi-go/pkgs/zusi"
	"github.com/keskad/zusi-go/pkgs/zusitest"
)

// driveToState ticks e until it reports state s or a budget of ticks is
// exhausted; returns false on exhaustion.
func driveToState(e *Engine, s State, budget int) bool {
	for i := 0; i < budget; i++ {
		if e.Tick() == s {
			return true
		}
	}
	return false
}

func scriptBytes(bs ...byte) []zusitest.ByteOrNone {
	out := make([]zusitest.ByteOrNone, len(bs))
	for i, b := range bs {
		out[i] = zusitest.ByteOrNone{Byte: b}
	}
	return out
}

func TestCvReadHappyPath(t *testing.T) {
	req := zusi.BuildCvRead(0x0000008E)
	hal := &zusitest.MockRxHAL{
		ReceiveBytes: append(scriptBytes(req...), zusitest.ByteOrNone{Byte: zusi.ResyncByte}),
		ReadCVFn:     func(addr uint32) uint8 { return 0x2A },
	}
	e := NewEngine(hal)

	if !driveToState(e, TransmitData, 10) {
		t.Fatal("engine never reached TransmitData")
	}
	if got := e.packet.Bytes(); len(got) != 2 || got[0] != 0x2A || got[1] != zusi.CRC8([]byte{0x2A}) {
		t.Fatalf("response packet = % X, want [2A crc]", got)
	}
	if e.Tick() != ReceiveCommand {
		t.Fatal("transmitData did not return to ReceiveCommand via reset")
	}
	if hal.SPISlaveN == 0 {
		t.Fatal("reset() must switch back to SPI slave")
	}
}

func TestExitWithCorrectSecurityBytesInvokesExit(t *testing.T) {
	req := zusi.BuildExit(0x07)
	hal := &zusitest.MockRxHAL{
		ReceiveBytes: append(scriptBytes(req...), zusitest.ByteOrNone{Byte: zusi.ResyncByte}),
	}
	e := NewEngine(hal)

	exited, flags := zusitest.RunExit(func() {
		driveToState(e, TransmitBusy, 10)
	})
	if !exited {
		t.Fatal("expected exit() to be invoked")
	}
	if flags != 0x07 {
		t.Fatalf("exit flags = %#x, want 0x07", flags)
	}
}

func TestExitWithWrongSecurityBytesNaksAndNeverCallsExit(t *testing.T) {
	buf := []byte{byte(zusi.CmdExit), 0x00, 0x00, 0x07}
	buf = append(buf, zusi.CRC8(buf))
	hal := &zusitest.MockRxHAL{
		ReceiveBytes: append(scriptBytes(buf...), zusitest.ByteOrNone{Byte: zusi.ResyncByte}),
	}
	e := NewEngine(hal)

	var reachedError bool
	exited, _ := zusitest.RunExit(func() {
		for i := 0; i < 10; i++ {
			if e.Tick() == Error {
				reachedError = true
				return
			}
		}
	})
	// Wrong security bytes nak during the ack phase, so exit() must never
	// fire and the FSM drops straight to Error.
	if exited {
		t.Fatal("expected exit() not to be invoked when security bytes are wrong")
	}
	if !reachedError {
		t.Fatal("expected the FSM to reach Error")
	}
}

func TestUnknownOpcodeInValidByteRangeDropsToError(t *testing.T) {
	// 0x03 sits inside [CvRead, ZppLcDcQuery] but has no assigned meaning.
	hal := &zusitest.MockRxHAL{ReceiveBytes: scriptBytes(0x03)}
	e := NewEngine(hal)
	if !driveToState(e, Error, 5) {
		t.Fatal("expected Error state for undefined opcode 0x03")
	}
}

func TestAckPolicyExhaustive(t *testing.T) {
	cases := []struct {
		name       string
		buildGood  func() []byte
		corrupt    func(buf []byte) []byte
		addrValid  bool
	}{
		{
			name:      "CvRead requires crc only",
			buildGood: func() []byte { return zusi.BuildCvRead(1) },
		},
		{
			name:      "CvWrite requires crc only",
			buildGood: func() []byte { return zusi.BuildCvWrite(1, 9) },
		},
		{
			name:      "Features requires crc only",
			buildGood: func() []byte { return zusi.BuildFeatures() },
		},
		{
			name:      "ZppLcDcQuery requires crc only",
			buildGood: func() []byte { return zusi.BuildLcDcQuery([4]byte{1, 2, 3, 4}) },
		},
		{
			name:      "ZppWrite requires crc and addressValid",
			buildGood: func() []byte { return zusi.BuildZppWrite(1, []byte{0xAA}) },
			addrValid: true,
		},
		{
			name:      "ZppErase requires crc and security bytes",
			buildGood: func() []byte { return zusi.BuildZppErase() },
		},
	}

	for _, c := range cases {
		t.Run(c.name+"/ack", func(t *testing.T) {
			req := c.buildGood()
			hal := &zusitest.MockRxHAL{
				ReceiveBytes:   append(scriptBytes(req...), zusitest.ByteOrNone{Byte: zusi.ResyncByte}),
				AddressValidFn: func(uint32) bool { return true },
			}
			e := NewEngine(hal)
			if !driveToState(e, TransmitAck, 10) {
				t.Fatal("never reached TransmitAck")
			}
			if !e.ack {
				t.Fatal("expected ack=true for a well-formed request")
			}
		})

		t.Run(c.name+"/corrupted-crc-naks", func(t *testing.T) {
			req := c.buildGood()
			req[len(req)-1] ^= 0xFF // break the trailing CRC byte
			hal := &zusitest.MockRxHAL{
				ReceiveBytes:   append(scriptBytes(req...), zusitest.ByteOrNone{Byte: zusi.ResyncByte}),
				AddressValidFn: func(uint32) bool { return true },
			}
			e := NewEngine(hal)
			driveToState(e, TransmitAck, 10)
			if e.ack {
				t.Fatal("expected ack=false once the CRC no longer folds to zero")
			}
		})
	}
}

func TestResetIsIdempotentOnRepeatedErrors(t *testing.T) {
	hal := &zusitest.MockRxHAL{ReceiveBytes: []zusitest.ByteOrNone{{None: true}}}
	e := NewEngine(hal)
	e.Tick() // -> Error
	if e.State() != Error {
		t.Fatal("expected Error after a failed receive")
	}
	for i := 0; i < 5; i++ {
		if got := e.Tick(); got != ReceiveCommand {
			t.Fatalf("reset() must always land on ReceiveCommand, got %v", got)
		}
		e.state = Error
	}
	if hal.SPISlaveN != 5 {
		t.Fatalf("reset() should switch to SPI slave every time, got %d calls", hal.SPISlaveN)
	}
}
