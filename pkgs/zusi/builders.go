package zusi

// BuildCvRead builds a CvRead request: cmd | count=0 | addr (4 bytes BE) |
// crc. The base implementation always sends count=0 (read exactly one CV);
// the field is preserved on the wire for forward compatibility with
// multi-CV reads.
func BuildCvRead(addr uint32) []byte {
	buf := make([]byte, 0, 7)
	buf = append(buf, byte(CmdCvRead), 0)
	buf = appendUint32BE(buf, addr)
	return append(buf, CRC8(buf))
}

// BuildCvWrite builds a CvWrite request: cmd | count=0 | addr | value | crc.
func BuildCvWrite(addr uint32, value uint8) []byte {
	buf := make([]byte, 0, 8)
	buf = append(buf, byte(CmdCvWrite), 0)
	buf = appendUint32BE(buf, addr)
	buf = append(buf, value)
	return append(buf, CRC8(buf))
}

// BuildZppErase builds a ZppErase request: cmd | 0x55 | 0xAA | crc.
func BuildZppErase() []byte {
	buf := []byte{byte(CmdZppErase), 0x55, 0xAA}
	return append(buf, CRC8(buf))
}

// BuildZppWrite builds a ZppWrite request: cmd | size=len(data)-1 | addr |
// data | crc. data must hold 1..256 bytes; callers are expected to have
// chunked a larger image beforehand.
func BuildZppWrite(addr uint32, data []byte) []byte {
	buf := make([]byte, 0, 6+len(data)+1)
	buf = append(buf, byte(CmdZppWrite), byte(len(data)-1))
	buf = appendUint32BE(buf, addr)
	buf = append(buf, data...)
	return append(buf, CRC8(buf))
}

// BuildFeatures builds a Features request: cmd | crc.
func BuildFeatures() []byte {
	buf := []byte{byte(CmdFeatures)}
	return append(buf, CRC8(buf))
}

// BuildExit builds an Exit request: cmd | 0x55 | 0xAA | flags | crc.
func BuildExit(flags uint8) []byte {
	buf := []byte{byte(CmdExit), 0x55, 0xAA, flags}
	return append(buf, CRC8(buf))
}

// BuildLcDcQuery builds a ZppLcDcQuery request: cmd | developer code (4
// bytes BE) | crc.
func BuildLcDcQuery(developerCode [4]byte) []byte {
	buf := make([]byte, 0, 6)
	buf = append(buf, byte(CmdZppLcDcQuery))
	buf = append(buf, developerCode[:]...)
	return append(buf, CRC8(buf))
}
