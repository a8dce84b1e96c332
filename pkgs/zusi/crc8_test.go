package zusi

import "testing"

func TestCRC8KnownVectors(t *testing.T) {
	cases := []struct {
		name string
		data []byte
		want byte
	}{
		{
			name: "twelve byte vector",
			data: []byte{0x0B, 0x0A, 0x00, 0x00, 0x8E, 0x40, 0x00, 0x0D, 0x67, 0x00, 0x01, 0x00},
			want: 0x4C,
		},
		{
			name: "ascii greeting",
			data: []byte("Hello World!"),
			want: 0x9E,
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := CRC8(c.data); got != c.want {
				t.Fatalf("CRC8(%v) = %#x, want %#x", c.data, got, c.want)
			}
		})
	}
}

func TestCRC8AppendedToItselfFolds(t *testing.T) {
	samples := [][]byte{
		{},
		{0x00},
		{0x01, 0x02, 0x03, 0x04, 0x05},
		[]byte("Hello World!"),
		{0xFF, 0xFF, 0xFF, 0xFF},
	}
	for _, s := range samples {
		sum := CRC8(s)
		withSum := append(append([]byte{}, s...), sum)
		if got := CRC8(withSum); got != 0 {
			t.Fatalf("CRC8(%v||crc) = %#x, want 0", s, got)
		}
	}
}

func TestCRCStepMatchesWholeBufferFold(t *testing.T) {
	data := []byte{0x02, 0x00, 0x00, 0x00, 0xFF, 0x0F}
	var acc byte
	for _, b := range data {
		acc = CRCStep(acc, b)
	}
	if want := CRC8(data); acc != want {
		t.Fatalf("incremental fold = %#x, want %#x", acc, want)
	}
}
