package sacn

import (
	"encoding/binary"
	"testing"
)

func buildSACN(sequence uint8, universe uint16, cid [16]byte, sourceNameStr string, startCode byte, slots []byte) []byte {
	propCount := len(slots) + 1
	buf := make([]byte, dataStart+len(slots))

	binary.BigEndian.PutUint16(buf[preambleOffset:], preambleSize)
	binary.BigEndian.PutUint16(buf[postambleOffset:], postambleSize)
	copy(buf[acnPIDOffset:], acnPID[:])
	binary.BigEndian.PutUint32(buf[rootVectorLo:], rootVectorData)
	copy(buf[cidOffset:], cid[:])
	binary.BigEndian.PutUint32(buf[framingVectorLo:], framingVectorDMX)
	copy(buf[sourceNameLo:], sourceNameStr)
	buf[sequenceOffset] = sequence
	binary.BigEndian.PutUint16(buf[universeLo:], universe)
	buf[dmpVectorOffset] = dmpVectorSetProperty
	binary.BigEndian.PutUint16(buf[propCountLo:], uint16(propCount))
	buf[startCodeOffset] = startCode
	copy(buf[dataStart:], slots)
	return buf
}

func TestParseValidFrame(t *testing.T) {
	var cid [16]byte
	for i := range cid {
		cid[i] = byte(i)
	}
	slots := []byte{10, 20, 30}
	payload := buildSACN(5, 1, cid, "my source", 0x00, slots)

	frame, err := Parse(payload)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if frame == nil {
		t.Fatal("expected a decoded frame")
	}
	if frame.Universe != 1 {
		t.Errorf("universe = %d, want 1", frame.Universe)
	}
	if frame.Sequence == nil || *frame.Sequence != 5 {
		t.Errorf("sequence = %v, want 5", frame.Sequence)
	}
	if frame.CID != "000102030405060708090a0b0c0d0e0f" {
		t.Errorf("cid = %s", frame.CID)
	}
	if frame.SourceName != "my source" {
		t.Errorf("source name = %q", frame.SourceName)
	}
	if len(frame.Slots) != 3 {
		t.Errorf("slots len = %d, want 3", len(frame.Slots))
	}
}

func TestParseNonACNIsSilentNone(t *testing.T) {
	frame, err := Parse([]byte("not acn traffic at all, just some random udp bytes"))
	if err != nil {
		t.Fatalf("expected silent nil, got error %v", err)
	}
	if frame != nil {
		t.Fatalf("expected nil frame, got %+v", frame)
	}
}

func TestParseShortNonACNIsSilentNone(t *testing.T) {
	frame, err := Parse([]byte{1, 2, 3})
	if err != nil || frame != nil {
		t.Fatalf("expected silent nil for short non-ACN payload, got frame=%v err=%v", frame, err)
	}
}

func TestParseWrongACNPIDIsError(t *testing.T) {
	var cid [16]byte
	payload := buildSACN(1, 1, cid, "", 0x00, []byte{1, 2})
	copy(payload[acnPIDOffset:], "WRONG-PID\x00\x00\x00")
	_, err := Parse(payload)
	de, ok := err.(*DecodeError)
	if !ok || de.ID != "LS-SACN-ACN-PID" {
		t.Fatalf("err = %v, want LS-SACN-ACN-PID", err)
	}
}

func TestParseWrongRootVectorIsError(t *testing.T) {
	var cid [16]byte
	payload := buildSACN(1, 1, cid, "", 0x00, []byte{1, 2})
	binary.BigEndian.PutUint32(payload[rootVectorLo:], 0xDEADBEEF)
	_, err := Parse(payload)
	de, ok := err.(*DecodeError)
	if !ok || de.ID != "LS-SACN-ROOT-VECTOR" {
		t.Fatalf("err = %v, want LS-SACN-ROOT-VECTOR", err)
	}
}

func TestParseWrongFramingVectorIsError(t *testing.T) {
	var cid [16]byte
	payload := buildSACN(1, 1, cid, "", 0x00, []byte{1, 2})
	binary.BigEndian.PutUint32(payload[framingVectorLo:], 0xDEADBEEF)
	_, err := Parse(payload)
	de, ok := err.(*DecodeError)
	if !ok || de.ID != "LS-SACN-FRAMING-VECTOR" {
		t.Fatalf("err = %v, want LS-SACN-FRAMING-VECTOR", err)
	}
}

func TestParseWrongDMPVectorIsError(t *testing.T) {
	var cid [16]byte
	payload := buildSACN(1, 1, cid, "", 0x00, []byte{1, 2})
	payload[dmpVectorOffset] = 0xFF
	_, err := Parse(payload)
	de, ok := err.(*DecodeError)
	if !ok || de.ID != "LS-SACN-DMP-VECTOR" {
		t.Fatalf("err = %v, want LS-SACN-DMP-VECTOR", err)
	}
}

func TestParseBadStartCodeIsError(t *testing.T) {
	var cid [16]byte
	payload := buildSACN(1, 1, cid, "", 0x01, []byte{1, 2})
	_, err := Parse(payload)
	de, ok := err.(*DecodeError)
	if !ok || de.ID != "LS-SACN-START-CODE" {
		t.Fatalf("err = %v, want LS-SACN-START-CODE", err)
	}
}

func TestParsePropertyCountOutOfRange(t *testing.T) {
	var cid [16]byte
	payload := buildSACN(1, 1, cid, "", 0x00, []byte{1, 2})
	binary.BigEndian.PutUint16(payload[propCountLo:], 0)
	_, err := Parse(payload)
	de, ok := err.(*DecodeError)
	if !ok || de.ID != "LS-SACN-PROPERTY-COUNT" {
		t.Fatalf("err = %v, want LS-SACN-PROPERTY-COUNT", err)
	}
}

func TestParseTruncatedBeforePropertyCountIsTooShort(t *testing.T) {
	var cid [16]byte
	payload := buildSACN(1, 1, cid, "", 0x00, []byte{1, 2})
	payload = payload[:dmpVectorOffset+1] // matches every silent/inner field, cut before propCountLo
	_, err := Parse(payload)
	de, ok := err.(*DecodeError)
	if !ok || de.ID != "LS-SACN-TOO-SHORT" {
		t.Fatalf("err = %v, want LS-SACN-TOO-SHORT", err)
	}
}

func TestParseDeclaredLengthExceedsPayload(t *testing.T) {
	var cid [16]byte
	payload := buildSACN(1, 1, cid, "", 0x00, make([]byte, 10))
	payload = payload[:len(payload)-5]
	_, err := Parse(payload)
	de, ok := err.(*DecodeError)
	if !ok || de.ID != "LS-SACN-DMX-LENGTH" {
		t.Fatalf("err = %v, want LS-SACN-DMX-LENGTH", err)
	}
}
