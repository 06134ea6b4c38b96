// Package artnet decodes ArtDMX (Art-Net DMX output) frames from UDP
// payloads captured off the wire.
package artnet

// Frame is a decoded ArtDMX frame: enough to reconstruct DMX state and
// track per-source sequencing.
type Frame struct {
	Universe uint16
	Sequence *uint8 // nil when the source left sequencing unused (0)
	Slots    []byte
}

// Parse decodes payload as an ArtDMX frame.
//
// It returns (nil, nil) when payload does not start with the Art-Net
// signature at all -- this is not Art-Net traffic, not a malformed
// Art-Net packet. Once the signature matches, every further mismatch
// (wrong opcode, oversized universe, out-of-range/odd length, or a
// payload too short for the declared length) is reported as a
// *DecodeError carrying the packet's stable violation ID.
func Parse(payload []byte) (*Frame, error) {
	r := reader{data: payload}

	if !r.signatureAt(idOffset, id[:]) {
		return nil, nil
	}

	if !r.requireLen(minPacketLen) {
		return nil, errTooShort(minPacketLen, len(payload))
	}

	opCode := r.u16LE(opCodeLo)
	if opCode != opDMX {
		return nil, errOpCode(opCode)
	}

	uni := r.u16LE(universe)
	if uni > maxUniverseID {
		return nil, errUniverseID(uni)
	}

	dmxLen := int(r.u16BE(length))
	if dmxLen < minDMXLength || dmxLen > maxDMXLength || dmxLen%2 != 0 {
		return nil, errLength(dmxLen)
	}

	if !r.requireLen(dataStart + dmxLen) {
		return nil, errTooShort(dataStart+dmxLen, len(payload))
	}

	frame := &Frame{
		Universe: uni,
		Sequence: r.optionalNonZeroU8(sequence),
		Slots:    append([]byte(nil), r.slice(dataStart, dmxLen)...),
	}
	return frame, nil
}

// ErrPort reports ArtDMX traffic observed on a non-standard UDP port.
// Parse itself never checks the port -- callers know the flow's actual
// port from the UDP decode and raise this warning alongside a
// successful Parse result.
func ErrPort() error {
	return errPort()
}
