package udp

// payloadWithoutHeader strips the 8-byte UDP header from b and returns
// the remaining bytes. b must already be known to carry a UDP segment.
func payloadWithoutHeader(b []byte) ([]byte, error) {
	if len(b) < udpHeaderLen {
		return nil, errTooShort(udpHeaderLen, len(b))
	}
	return b[udpHeaderLen:], nil
}
