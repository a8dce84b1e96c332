// Package zpp stages a ZPP firmware image for upload: it reads the image
// off a filesystem, splits it into wire-sized chunks and precomputes each
// chunk's CRC ahead of time, off the sequential wire phase.
package zpp

import (
	"fmt"
	"io"

	"github.com/sourcegraph/conc"
	"github.com/spf13/afero"

	"github.com/keskad/zusi-go/pkgs/zusi"
)

// ChunkSize is the largest data payload a single ZppWrite frame carries.
const ChunkSize = 256

// Chunk is one ZppWrite-sized slice of a staged image. Addr is the base
// address passed to Stage plus the chunk's offset within the image.
type Chunk struct {
	Addr uint32
	Data []byte
	CRC  byte
}

// Image is a firmware file split into chunks, with each chunk's CRC already
// computed.
type Image struct {
	Chunks []Chunk
}

// Stage reads path off fs, splits it into ChunkSize pieces starting at
// baseAddr and fans out CRC computation across a worker group - this is the
// only place in the module where command bytes are touched concurrently,
// since it happens entirely before any frame is transmitted.
func Stage(fs afero.Fs, path string, baseAddr uint32) (*Image, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("zpp: open %s: %w", path, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("zpp: read %s: %w", path, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("zpp: %s is empty", path)
	}

	n := (len(data) + ChunkSize - 1) / ChunkSize
	chunks := make([]Chunk, n)
	for i := 0; i < n; i++ {
		start := i * ChunkSize
		end := start + ChunkSize
		if end > len(data) {
			end = len(data)
		}
		chunks[i] = Chunk{
			Addr: baseAddr + uint32(start),
			Data: data[start:end],
		}
	}

	var wg conc.WaitGroup
	for i := range chunks {
		i := i
		wg.Go(func() {
			chunks[i].CRC = zusi.CRC8(chunks[i].Data)
		})
	}
	wg.Wait()

	return &Image{Chunks: chunks}, nil
}

// WriteStub writes data to a file at path on fs, useful for tests that
// exercise Stage without touching a real filesystem.
func WriteStub(fs afero.Fs, path string, data []byte) error {
	return afero.WriteFile(fs, path, data, 0o644)
}
