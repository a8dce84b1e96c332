package tx

import (
	"context"
	"errors"
	"testing"

	"github.com/keskad/zusi-go/pkgs/zusi"
	"github.com/keskad/zusi-go/pkgs/zusitest"
)

// ackScript returns the ReadData sequence for a handshake that accepts the
// command (ack-valid bit false, ack bit true) followed by one busy poll
// that immediately reports done, followed by any response bits requested.
func ackScript(responseBits ...bool) []bool {
	script := []bool{false, true, true}
	return append(script, responseBits...)
}

func bitsOfByte(b byte) []bool {
	bits := make([]bool, 8)
	for i := range bits {
		bits[i] = b&(1<<uint(i)) != 0
	}
	return bits
}

func TestReadCVHappyPath(t *testing.T) {
	value := byte(0x2A)
	crc := zusi.CRC8([]byte{value})
	hal := &zusitest.MockTxHAL{ReadDataResults: ackScript(append(bitsOfByte(value), bitsOfByte(crc)...)...)}
	e := NewEngine(hal)

	got, err := e.ReadCV(context.Background(), 0x0000008E)
	if err != nil {
		t.Fatalf("ReadCV error: %v", err)
	}
	if got != value {
		t.Fatalf("ReadCV = %#x, want %#x", got, value)
	}
	if hal.SPIMasterN != 1 {
		t.Fatalf("expected SPI master restore once, got %d", hal.SPIMasterN)
	}
	if len(hal.Transmits) != 2 {
		t.Fatalf("expected 2 transmits (command + resync), got %d", len(hal.Transmits))
	}
	want := zusi.BuildCvRead(0x0000008E)
	if string(hal.Transmits[0].Bytes) != string(want) {
		t.Fatalf("transmitted packet = % X, want % X", hal.Transmits[0].Bytes, want)
	}
}

func TestWriteCVPayload(t *testing.T) {
	hal := &zusitest.MockTxHAL{ReadDataResults: ackScript()}
	e := NewEngine(hal)
	if err := e.WriteCV(context.Background(), 0x000000FF, 0x0F); err != nil {
		t.Fatalf("WriteCV error: %v", err)
	}
	want := zusi.BuildCvWrite(0x000000FF, 0x0F)
	if string(hal.Transmits[0].Bytes) != string(want) {
		t.Fatalf("transmitted packet = % X, want % X", hal.Transmits[0].Bytes, want)
	}
}

func TestEraseZppPayload(t *testing.T) {
	hal := &zusitest.MockTxHAL{ReadDataResults: ackScript()}
	e := NewEngine(hal)
	if err := e.EraseZpp(context.Background()); err != nil {
		t.Fatalf("EraseZpp error: %v", err)
	}
	want := zusi.BuildZppErase()
	if string(hal.Transmits[0].Bytes) != string(want) {
		t.Fatalf("transmitted packet = % X, want % X", hal.Transmits[0].Bytes, want)
	}
}

func TestExitPayloadAndRate(t *testing.T) {
	hal := &zusitest.MockTxHAL{ReadDataResults: ackScript()}
	e := NewEngine(hal)
	if err := e.Exit(context.Background(), 0x01); err != nil {
		t.Fatalf("Exit error: %v", err)
	}
	want := zusi.BuildExit(0x01)
	if string(hal.Transmits[0].Bytes) != string(want) {
		t.Fatalf("transmitted packet = % X, want % X", hal.Transmits[0].Bytes, want)
	}
	// resync is always sent at 0.1 Mbps regardless of the negotiated rate.
	if hal.Transmits[1].Mbps != zusi.Mbps0_1 {
		t.Fatalf("resync rate = %v, want Mbps0_1", hal.Transmits[1].Mbps)
	}
}

func TestFeaturesReadsFourBytesAndNegotiatesRate(t *testing.T) {
	features := []byte{0x00, 0xAA, 0xBB, 0xCC} // all rate bits clear -> fastest
	var bits []bool
	for _, b := range features {
		bits = append(bits, bitsOfByte(b)...)
	}
	hal := &zusitest.MockTxHAL{ReadDataResults: ackScript(bits...)}
	e := NewEngine(hal)

	got, err := e.Features(context.Background())
	if err != nil {
		t.Fatalf("Features error: %v", err)
	}
	if got != ([4]byte{0x00, 0xAA, 0xBB, 0xCC}) {
		t.Fatalf("Features = % X, want 00 AA BB CC", got)
	}
	if e.mbps != zusi.Mbps1_807 {
		t.Fatalf("negotiated mbps = %v, want Mbps1_807", e.mbps)
	}
}

func TestAckValidFailureSurfacesConnectionReset(t *testing.T) {
	hal := &zusitest.MockTxHAL{ReadDataResults: []bool{true}} // ack-valid bit true -> idle line
	e := NewEngine(hal)

	_, err := e.ReadCV(context.Background(), 1)
	var txErr *Error
	if !errors.As(err, &txErr) || txErr.Kind != ConnectionReset {
		t.Fatalf("err = %v, want ConnectionReset", err)
	}
	if hal.SPIMasterN != 1 {
		t.Fatal("SPI master must be restored even when the handshake fails")
	}
}

func TestProtocolErrorOnNak(t *testing.T) {
	hal := &zusitest.MockTxHAL{ReadDataResults: []bool{false, false}}
	e := NewEngine(hal)

	err := e.WriteCV(context.Background(), 1, 1)
	var txErr *Error
	if !errors.As(err, &txErr) || txErr.Kind != ProtocolError {
		t.Fatalf("err = %v, want ProtocolError", err)
	}
}

func TestBusyWaitOrderingAfterHandshake(t *testing.T) {
	hal := &zusitest.MockTxHAL{ReadDataResults: ackScript()}
	e := NewEngine(hal)
	if err := e.EraseZpp(context.Background()); err != nil {
		t.Fatalf("EraseZpp error: %v", err)
	}
	// transmit(cmd), transmit(resync), then clock toggles for ack-valid,
	// ack and busy: at least 3 clock high/low pairs before SPI master
	// restore.
	highs := 0
	for _, v := range hal.ClockWrites {
		if v {
			highs++
		}
	}
	if highs < 3 {
		t.Fatalf("expected at least 3 clock-high pulses (ack-valid, ack, busy), got %d", highs)
	}
}

func TestBitrateNegotiationIsMonotonicWithFeatureBits(t *testing.T) {
	cases := []struct {
		f0   byte
		want zusi.Mbps
	}{
		{f0: 0b111, want: zusi.Mbps0_286}, // every rate bit set -> stay put
		{f0: 0b101, want: zusi.Mbps1_364},
		{f0: 0b001, want: zusi.Mbps1_807},
		{f0: 0b000, want: zusi.Mbps1_807},
	}
	for _, c := range cases {
		e := &Engine{mbps: zusi.Mbps0_286}
		e.negotiateBitrate(c.f0)
		if e.mbps != c.want {
			t.Fatalf("negotiateBitrate(%03b) = %v, want %v", c.f0, e.mbps, c.want)
		}
	}
}
