package udp

import (
	"net"
	"testing"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

func buildEthernetUDPv4(t *testing.T, payload []byte) []byte {
	t.Helper()

	eth := &layers.Ethernet{
		SrcMAC:       net.HardwareAddr{0, 1, 2, 3, 4, 5},
		DstMAC:       net.HardwareAddr{6, 7, 8, 9, 10, 11},
		EthernetType: layers.EthernetTypeIPv4,
	}
	ip := &layers.IPv4{
		Version:  4,
		IHL:      5,
		TTL:      64,
		Protocol: layers.IPProtocolUDP,
		SrcIP:    net.ParseIP("10.0.0.1").To4(),
		DstIP:    net.ParseIP("10.0.0.2").To4(),
	}
	udp := &layers.UDP{
		SrcPort: 6454,
		DstPort: 6454,
	}
	if err := udp.SetNetworkLayerForChecksum(ip); err != nil {
		t.Fatal(err)
	}

	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{FixLengths: true, ComputeChecksums: true}
	if err := gopacket.SerializeLayers(buf, opts, eth, ip, udp, gopacket.Payload(payload)); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestDecodeEthernetUDPv4(t *testing.T) {
	frame := buildEthernetUDPv4(t, []byte("Art-Net\x00hello"))

	pkt, err := Decode(layers.LinkTypeEthernet, frame)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if pkt == nil {
		t.Fatal("expected a decoded packet")
	}
	if pkt.SrcIP.String() != "10.0.0.1" {
		t.Errorf("src ip = %s", pkt.SrcIP)
	}
	if pkt.SrcPort != 6454 || pkt.DstPort != 6454 {
		t.Errorf("ports = %d/%d", pkt.SrcPort, pkt.DstPort)
	}
	if string(pkt.Payload) != "Art-Net\x00hello" {
		t.Errorf("payload = %q", pkt.Payload)
	}
}

func TestDecodeNonUDPIsSilentSkip(t *testing.T) {
	eth := &layers.Ethernet{
		SrcMAC:       net.HardwareAddr{0, 1, 2, 3, 4, 5},
		DstMAC:       net.HardwareAddr{6, 7, 8, 9, 10, 11},
		EthernetType: layers.EthernetTypeIPv4,
	}
	ip := &layers.IPv4{
		Version:  4,
		IHL:      5,
		TTL:      64,
		Protocol: layers.IPProtocolTCP,
		SrcIP:    net.ParseIP("10.0.0.1").To4(),
		DstIP:    net.ParseIP("10.0.0.2").To4(),
	}
	tcp := &layers.TCP{SrcPort: 80, DstPort: 12345}
	if err := tcp.SetNetworkLayerForChecksum(ip); err != nil {
		t.Fatal(err)
	}

	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{FixLengths: true, ComputeChecksums: true}
	if err := gopacket.SerializeLayers(buf, opts, eth, ip, tcp, gopacket.Payload([]byte("x"))); err != nil {
		t.Fatal(err)
	}

	pkt, err := Decode(layers.LinkTypeEthernet, buf.Bytes())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if pkt != nil {
		t.Fatalf("expected silent skip for TCP traffic, got %+v", pkt)
	}
}

func TestDecodeUnsupportedLinkTypeIsSilentSkip(t *testing.T) {
	pkt, err := Decode(layers.LinkTypeFDDI, []byte{1, 2, 3})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if pkt != nil {
		t.Fatalf("expected nil packet for unsupported link type, got %+v", pkt)
	}
}

func TestDecodeTruncatedFrame(t *testing.T) {
	pkt, err := Decode(layers.LinkTypeEthernet, []byte{0, 1, 2})
	if err == nil && pkt != nil {
		t.Fatalf("expected an error or silent skip for a truncated frame, got packet %+v", pkt)
	}
}
