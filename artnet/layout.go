package artnet

// Wire layout of an ArtDMX (OpDmx) packet. Offsets are byte positions
// into the UDP payload; ranges are half-open.
const (
	idOffset  = 0
	idLen     = 8
	opCodeLo  = 8
	opCodeHi  = 10
	sequence  = 12
	universe  = 14 // .. 16, little-endian
	length    = 16 // .. 18, big-endian
	dataStart = 18

	minPacketLen = dataStart

	opDMX = 0x5000

	maxUniverseID = 0x7FFF

	minDMXLength = 2
	maxDMXLength = 512
)

// id is the 8-byte ArtNet signature every packet opens with.
var id = [idLen]byte{'A', 'r', 't', '-', 'N', 'e', 't', 0}
