package zusi

import "encoding/binary"

// Byte positions within a ZUSI frame.
const (
	CmdPos       = 0
	DataCntPos   = 1
	AddrPos      = 2
	DataPos      = 6
	SecBytesPos  = 1
	ExitFlagsPos = 3
)

// ResyncByte marks the end of a frame and the start of the ack handshake.
const ResyncByte byte = 0x80

// ResyncTimeoutMs/ResyncTimeoutUs bound how long a side waits for a clock
// edge or for the resync byte before giving up.
const (
	ResyncTimeoutMs = 10
	ResyncTimeoutUs = ResyncTimeoutMs * 1000
)

// MaxPacketSize is the largest a frame can get: command + count + address +
// up to 256 data bytes + CRC + the resync byte slot.
const MaxPacketSize = 1 + 1 + 4 + 256 + 1 + 1

// MaxFeedbackSize bounds the TX-visible result of a command: at most 4 bytes
// (CvRead/ZppLcDcQuery: 1 value byte, Features: 4 raw bytes).
const MaxFeedbackSize = 4

// Packet is a fixed-capacity inline byte sequence, mirroring the firmware's
// ztl::inplace_vector<uint8_t, ZUSI_MAX_PACKET_SIZE>: no heap allocation
// happens while a frame is being accumulated or drained.
type Packet struct {
	buf [MaxPacketSize]byte
	n   int
}

// Reset empties the packet, keeping its backing array.
func (p *Packet) Reset() { p.n = 0 }

// Len reports how many bytes have been accumulated so far.
func (p *Packet) Len() int { return p.n }

// Append adds a byte, reporting false if the packet is already at capacity.
func (p *Packet) Append(b byte) bool {
	if p.n >= len(p.buf) {
		return false
	}
	p.buf[p.n] = b
	p.n++
	return true
}

// Truncate sets the logical length to n (n <= MaxPacketSize). It can grow
// the packet as well as shrink it, exposing bytes previously placed with Set.
func (p *Packet) Truncate(n int) { p.n = n }

// Set overwrites the byte at i, which must be < cap(Packet). Unlike Append,
// Set does not extend Len - callers use it together with Truncate to lay out
// a response in place, the way the firmware does.
func (p *Packet) Set(i int, b byte) { p.buf[i] = b }

// At returns the byte at logical position i (i < Len()).
func (p *Packet) At(i int) byte { return p.buf[i] }

// Bytes returns the logical contents of the packet.
func (p *Packet) Bytes() []byte { return p.buf[:p.n] }

// Uint32At reads a big-endian uint32 straight out of the backing array,
// ignoring Len(). The firmware computes the address field unconditionally
// for every command - even ones whose payload doesn't carry an address, such
// as Features or Exit - reading past the logically received bytes but still
// inside the fixed-size buffer. This mirrors that without risking an
// out-of-range panic on a short Go slice.
func (p *Packet) Uint32At(pos int) uint32 {
	return binary.BigEndian.Uint32(p.buf[pos : pos+4])
}

// appendUint32BE appends the big-endian encoding of v to buf.
func appendUint32BE(buf []byte, v uint32) []byte {
	return append(buf, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}
