package sacn

import "testing"

func FuzzParse(f *testing.F) {
	var cid [16]byte
	f.Add(buildSACN(1, 1, cid, "source", 0x00, []byte{1, 2, 3, 4}))
	f.Add(buildSACN(0, 0, cid, "", 0x00, []byte{0}))
	f.Add(buildSACN(255, 63999, cid, "full", 0x00, make([]byte, 512)))
	f.Add([]byte("not acn traffic"))
	f.Add([]byte{})

	f.Fuzz(func(t *testing.T, payload []byte) {
		frame, err := Parse(payload)
		if err != nil {
			return
		}
		if frame == nil {
			return
		}
		if len(frame.Slots) > 512 {
			t.Fatalf("slots length %d exceeds 512", len(frame.Slots))
		}
		if len(frame.CID) != 32 {
			t.Fatalf("cid hex length = %d, want 32", len(frame.CID))
		}
	})
}

func FuzzBuildParseRoundtrip(f *testing.F) {
	f.Add(uint8(1), uint16(1), "source", byte(3))
	f.Add(uint8(0), uint16(63999), "", byte(255))

	f.Fuzz(func(t *testing.T, sequence uint8, universe uint16, name string, slotByte byte) {
		if len(name) > sourceNameLen {
			name = name[:sourceNameLen]
		}
		var cid [16]byte
		slots := []byte{slotByte, slotByte, slotByte}
		payload := buildSACN(sequence, universe, cid, name, 0x00, slots)

		frame, err := Parse(payload)
		if err != nil {
			t.Fatalf("Parse: %v", err)
		}
		if frame == nil {
			t.Fatal("expected a decoded frame")
		}
		if frame.Universe != universe {
			t.Fatalf("universe roundtrip mismatch: %d != %d", frame.Universe, universe)
		}
	})
}
