package zusi

// Features is the 4-byte feature vector a decoder returns in response to
// Command::Features.
type Features [4]byte

// Bit 0..2 of Features[0] advertise support for increasingly fast bitrates;
// a *clear* bit means the rate is supported (see TX bitrate negotiation in
// pkgs/tx).
const (
	FeatureBit0286Mbps byte = 1 << 0
	FeatureBit1364Mbps byte = 1 << 1
	FeatureBit1807Mbps byte = 1 << 2
)
