package sacn

// Wire layout of an E1.31 (sACN) data packet. Offsets are byte
// positions into the UDP payload; ranges are half-open.
const (
	preambleOffset  = 0
	postambleOffset = 2
	acnPIDOffset    = 4
	acnPIDLen       = 12
	rootVectorLo    = 18
	rootVectorHi    = 22
	cidOffset       = 22
	cidLen          = 16
	framingVectorLo = 40
	framingVectorHi = 44
	sourceNameLo    = 44
	sourceNameLen   = 64
	sequenceOffset  = 111
	universeLo      = 113
	universeHi      = 115
	dmpVectorOffset = 117
	propCountLo     = 123
	propCountHi     = 125
	startCodeOffset = 125
	dataStart       = 126

	minSignatureLen = dmpVectorOffset + 1 // 118: enough to check the ACN-PID, root, framing and DMP vector fields

	preambleSize  = 0x0010
	postambleSize = 0x0000

	rootVectorData = 0x00000004
	framingVectorDMX = 0x00000002
	dmpVectorSetProperty = 0x02

	minPropertyCount = 2   // start code + at least one slot
	maxPropertyCount = 513 // start code + 512 slots
)

// acnPID is the 12-byte ACN packet identifier every E1.31 packet carries.
var acnPID = [acnPIDLen]byte{'A', 'S', 'C', '-', 'E', '1', '.', '1', '7', 0, 0, 0}
