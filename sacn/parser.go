// Package sacn decodes E1.31 (sACN) DMX data frames from UDP payloads
// captured off the wire.
package sacn

// Frame is a decoded E1.31 DMX data frame.
type Frame struct {
	Universe   uint16
	Sequence   *uint8 // nil when the source left sequencing unused (0)
	CID        string // 32 lowercase hex characters
	SourceName string
	Slots      []byte
}

// Parse decodes payload as an E1.31 DMX data frame.
//
// It returns (nil, nil) when the outer ACN preamble/postamble signature
// does not match at all -- this is not ACN-framed traffic, not a
// malformed one. Once that outer signature matches, an ACN-PID,
// root-vector, framing-vector, or DMP-vector mismatch means this is some
// other ACN sub-type (discovery, extended framing, a foreign protocol
// identifier, ...) and each is reported as its own *DecodeError, the
// same as Art-Net's opcode check after the magic matches.
// Property-value-count range, DMX length, and start-code checks apply
// only once every preceding field matches, and only once the payload is
// long enough to hold the fixed 126-byte header those fields read from
// -- a capture truncated between the DMP vector and the property count
// raises LS-SACN-TOO-SHORT rather than indexing past the payload.
func Parse(payload []byte) (*Frame, error) {
	r := reader{data: payload}

	if !r.requireLen(postambleOffset + 2) {
		// Too short to even check the outer preamble/postamble signature:
		// not enough bytes to tell this apart from non-sACN traffic.
		return nil, nil
	}
	if !outerSignaturePresent(r) {
		return nil, nil
	}
	if !r.requireLen(minSignatureLen) {
		return nil, errTooShort(minSignatureLen, len(payload))
	}

	if !r.signatureAt(acnPIDOffset, acnPID[:]) {
		return nil, errACNPID()
	}

	rootVector := r.u32BE(rootVectorLo)
	if rootVector != rootVectorData {
		return nil, errRootVector(rootVector)
	}

	framingVector := r.u32BE(framingVectorLo)
	if framingVector != framingVectorDMX {
		return nil, errFramingVector(framingVector)
	}

	dmpVector := r.byteAt(dmpVectorOffset)
	if dmpVector != dmpVectorSetProperty {
		return nil, errDMPVector(dmpVector)
	}

	if !r.requireLen(dataStart) {
		return nil, errTooShort(dataStart, len(payload))
	}

	propCount := int(r.u16BE(propCountLo))
	if propCount < minPropertyCount || propCount > maxPropertyCount {
		return nil, errPropertyCount(propCount)
	}

	startCode := r.byteAt(startCodeOffset)
	if startCode != 0x00 {
		return nil, errStartCode(startCode)
	}

	slotsLen := propCount - 1
	if !r.requireLen(dataStart + slotsLen) {
		return nil, errDMXLength(slotsLen)
	}

	frame := &Frame{
		Universe:   r.u16BE(universeLo),
		Sequence:   r.optionalNonZeroU8(sequenceOffset),
		CID:        cidHex(r.slice(cidOffset, cidLen)),
		SourceName: sourceName(r.slice(sourceNameLo, sourceNameLen)),
		Slots:      append([]byte(nil), r.slice(dataStart, slotsLen)...),
	}
	return frame, nil
}

func outerSignaturePresent(r reader) bool {
	if r.u16BE(preambleOffset) != preambleSize {
		return false
	}
	return r.u16BE(postambleOffset) == postambleSize
}

// ErrPort reports sACN traffic observed on a non-standard UDP port.
// Parse itself never checks the port -- callers know the flow's actual
// port from the UDP decode and raise this warning alongside a
// successful Parse result.
func ErrPort() error {
	return errPort()
}
