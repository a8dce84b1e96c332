package zpp

import (
	"bytes"
	"testing"

	"github.com/spf13/afero"

	"github.com/keskad/zusi-go/pkgs/zusi"
)

func TestStageSplitsIntoChunksWithCRC(t *testing.T) {
	fs := afero.NewMemMapFs()
	data := make([]byte, ChunkSize+10)
	for i := range data {
		data[i] = byte(i)
	}
	if err := WriteStub(fs, "firmware.bin", data); err != nil {
		t.Fatalf("WriteStub: %v", err)
	}

	img, err := Stage(fs, "firmware.bin", 0x1000)
	if err != nil {
		t.Fatalf("Stage: %v", err)
	}
	if len(img.Chunks) != 2 {
		t.Fatalf("len(Chunks) = %d, want 2", len(img.Chunks))
	}
	if img.Chunks[0].Addr != 0x1000 || img.Chunks[1].Addr != 0x1000+ChunkSize {
		t.Fatalf("chunk addresses = %#x, %#x", img.Chunks[0].Addr, img.Chunks[1].Addr)
	}
	if !bytes.Equal(img.Chunks[0].Data, data[:ChunkSize]) {
		t.Fatal("first chunk data mismatch")
	}
	for _, c := range img.Chunks {
		if c.CRC != zusi.CRC8(c.Data) {
			t.Fatalf("chunk CRC = %#x, want %#x", c.CRC, zusi.CRC8(c.Data))
		}
	}
}

func TestStageRejectsEmptyFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := WriteStub(fs, "empty.bin", nil); err != nil {
		t.Fatalf("WriteStub: %v", err)
	}
	if _, err := Stage(fs, "empty.bin", 0); err == nil {
		t.Fatal("expected an error staging an empty file")
	}
}

func TestStageRejectsMissingFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	if _, err := Stage(fs, "missing.bin", 0); err == nil {
		t.Fatal("expected an error staging a missing file")
	}
}
