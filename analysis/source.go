// Package analysis wires the protocol decoders and aggregators
// together into the single-threaded dispatch loop that consumes a
// packet source to completion and emits a finished report.
package analysis

import "github.com/google/gopacket/layers"

// PacketEvent is one captured frame, as produced by a PacketSource.
// Ts is the Unix-epoch capture timestamp in seconds; it is absent when
// the source cannot supply one.
type PacketEvent struct {
	Ts       *float64
	LinkType layers.LinkType
	Data     []byte
}

// PacketSource yields packets one at a time until exhausted. Analyze
// stops iterating the first time NextPacket returns a nil event and a
// nil error.
type PacketSource interface {
	NextPacket() (*PacketEvent, error)
}
