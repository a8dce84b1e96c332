package zusi

import (
	"bytes"
	"testing"
)

func TestBuildCvRead(t *testing.T) {
	got := BuildCvRead(0x0000008E)
	want := []byte{byte(CmdCvRead), 0x00, 0x00, 0x00, 0x00, 0x8E}
	want = append(want, CRC8(want))
	if !bytes.Equal(got, want) {
		t.Fatalf("BuildCvRead = % X, want % X", got, want)
	}
}

func TestBuildCvWrite(t *testing.T) {
	got := BuildCvWrite(0x000000FF, 0x0F)
	want := []byte{byte(CmdCvWrite), 0x00, 0x00, 0x00, 0x00, 0xFF, 0x0F}
	want = append(want, CRC8(want))
	if !bytes.Equal(got, want) {
		t.Fatalf("BuildCvWrite = % X, want % X", got, want)
	}
}

func TestBuildZppErase(t *testing.T) {
	got := BuildZppErase()
	want := []byte{byte(CmdZppErase), 0x55, 0xAA}
	want = append(want, CRC8(want))
	if !bytes.Equal(got, want) {
		t.Fatalf("BuildZppErase = % X, want % X", got, want)
	}
}

func TestBuildZppWrite(t *testing.T) {
	data := []byte{0x01, 0x02, 0x03, 0x04}
	got := BuildZppWrite(0x00001000, data)
	want := []byte{byte(CmdZppWrite), byte(len(data) - 1), 0x00, 0x00, 0x10, 0x00}
	want = append(want, data...)
	want = append(want, CRC8(want))
	if !bytes.Equal(got, want) {
		t.Fatalf("BuildZppWrite = % X, want % X", got, want)
	}
}

func TestBuildFeatures(t *testing.T) {
	got := BuildFeatures()
	want := []byte{byte(CmdFeatures)}
	want = append(want, CRC8(want))
	if !bytes.Equal(got, want) {
		t.Fatalf("BuildFeatures = % X, want % X", got, want)
	}
}

func TestBuildExit(t *testing.T) {
	got := BuildExit(0x01)
	want := []byte{byte(CmdExit), 0x55, 0xAA, 0x01}
	want = append(want, CRC8(want))
	if !bytes.Equal(got, want) {
		t.Fatalf("BuildExit = % X, want % X", got, want)
	}
}

func TestBuildLcDcQuery(t *testing.T) {
	code := [4]byte{0x01, 0x02, 0x03, 0x04}
	got := BuildLcDcQuery(code)
	want := []byte{byte(CmdZppLcDcQuery), 0x01, 0x02, 0x03, 0x04}
	want = append(want, CRC8(want))
	if !bytes.Equal(got, want) {
		t.Fatalf("BuildLcDcQuery = % X, want % X", got, want)
	}
}

func TestBuildersEndWithVerifiableCRC(t *testing.T) {
	frames := [][]byte{
		BuildCvRead(1),
		BuildCvWrite(1, 9),
		BuildZppErase(),
		BuildZppWrite(0, []byte{0x00}),
		BuildFeatures(),
		BuildExit(0),
		BuildLcDcQuery([4]byte{}),
	}
	for _, f := range frames {
		body, crc := f[:len(f)-1], f[len(f)-1]
		if CRC8(body) != crc {
			t.Fatalf("frame % X has inconsistent trailing CRC", f)
		}
	}
}
