package udp

// udpHeaderLen is the fixed size of a UDP header: source port, dest
// port, length, checksum, each 2 bytes.
const udpHeaderLen = 8
