// Package udp decodes a single already-captured link-layer frame down
// to its UDP 4-tuple and payload, the way a one-shot equivalent of
// gopacket's live layer extraction would. Ethernet, raw IP (no link
// layer) and BSD loopback/null captures are supported; any other link
// type, or any packet whose transport protocol is not UDP, is a silent skip
// rather than an error -- this analyzer only cares about lighting
// traffic, not exhaustive protocol coverage.
package udp

import (
	"net"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

// Packet is a decoded UDP datagram: its IPv4/IPv6 endpoints, ports, and
// application payload.
type Packet struct {
	SrcIP   net.IP
	SrcPort uint16
	DstIP   net.IP
	DstPort uint16
	Payload []byte
}

// Decode walks a single captured frame of the given link type and
// returns its UDP packet, or (nil, nil) if the frame is not UDP traffic
// at all (unsupported link type, non-UDP transport). A non-nil error
// means the frame could not be sliced, carried no IPv4/IPv6 layer, or
// claimed to be UDP but was structurally malformed.
func Decode(linkType layers.LinkType, data []byte) (*Packet, error) {
	var decodeOptions gopacket.DecodeOptions
	decodeOptions.Lazy = true
	decodeOptions.NoCopy = true

	switch linkType {
	case layers.LinkTypeEthernet, layers.LinkTypeRaw, layers.LinkTypeIPv4, layers.LinkTypeIPv6, layers.LinkTypeLoop, layers.LinkTypeNull:
	default:
		return nil, nil
	}

	packet := gopacket.NewPacket(data, linkType, decodeOptions)
	if err := packet.ErrorLayer(); err != nil {
		if err.Error() != nil {
			return nil, errSlice(err.Error().Error())
		}
	}

	netLayer := packet.NetworkLayer()
	if netLayer == nil {
		return nil, errMissingNetwork()
	}

	var srcIP, dstIP net.IP
	var nextProtocolIsUDP bool

	switch l := netLayer.(type) {
	case *layers.IPv4:
		srcIP, dstIP = l.SrcIP, l.DstIP
		nextProtocolIsUDP = l.Protocol == layers.IPProtocolUDP
	case *layers.IPv6:
		srcIP, dstIP = l.SrcIP, l.DstIP
		nextProtocolIsUDP = l.NextHeader == layers.IPProtocolUDP
	default:
		return nil, errMissingNetwork()
	}

	if !nextProtocolIsUDP {
		return nil, nil
	}

	transportLayer := packet.TransportLayer()
	udpLayer, ok := transportLayer.(*layers.UDP)
	if !ok || udpLayer == nil {
		return nil, nil
	}

	ipPayload := netLayer.LayerPayload()
	if len(ipPayload) == 0 {
		return nil, errMissingPayload()
	}

	if _, err := payloadWithoutHeader(ipPayload); err != nil {
		return nil, err
	}

	return &Packet{
		SrcIP:   srcIP,
		SrcPort: uint16(udpLayer.SrcPort),
		DstIP:   dstIP,
		DstPort: uint16(udpLayer.DstPort),
		Payload: udpLayer.Payload,
	}, nil
}
