// Package capture opens offline packet captures (classic pcap and
// pcapng) and adapts them into analysis.PacketEvent values. This is a
// thin I/O adapter: all decoding and aggregation logic lives in the
// protocol and analysis packages, which never touch the filesystem.
package capture

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"

	"github.com/gopatchy/liveshark/analysis"
)

// pcapngMagic is the first four bytes of every pcapng section header
// block, used to tell the format apart from classic pcap without
// relying on file extensions.
var pcapngMagic = [4]byte{0x0a, 0x0d, 0x0d, 0x0a}

// FileSource reads packets from an open pcap or pcapng file in capture
// order, presenting them as analysis.PacketEvent values.
type FileSource struct {
	file     *os.File
	legacy   *pcapgo.Reader
	ng       *pcapgo.NgReader
	isNg     bool
	linktype layers.LinkType
}

// Open detects the capture format from its leading bytes and returns a
// FileSource ready to be drained by analysis.Analyze. The caller must
// call Close when done.
func Open(path string) (*FileSource, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("capture: open %s: %w", path, err)
	}

	br := bufio.NewReaderSize(file, 64*1024)
	magic, err := br.Peek(4)
	if err != nil && err != io.EOF {
		file.Close()
		return nil, fmt.Errorf("capture: read magic from %s: %w", path, err)
	}

	src := &FileSource{file: file}

	if len(magic) == 4 && [4]byte{magic[0], magic[1], magic[2], magic[3]} == pcapngMagic {
		ng, err := pcapgo.NewNgReader(br, pcapgo.DefaultNgReaderOptions)
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("capture: open pcapng %s: %w", path, err)
		}
		src.ng = ng
		src.isNg = true
		return src, nil
	}

	legacy, err := pcapgo.NewReader(br)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("capture: open pcap %s: %w", path, err)
	}
	src.legacy = legacy
	src.linktype = legacy.LinkType()
	return src, nil
}

// Close releases the underlying file handle.
func (s *FileSource) Close() error {
	return s.file.Close()
}

// NextPacket returns the next captured frame, or (nil, nil) at EOF.
func (s *FileSource) NextPacket() (*analysis.PacketEvent, error) {
	if s.isNg {
		return s.nextNg()
	}
	return s.nextLegacy()
}

func (s *FileSource) nextLegacy() (*analysis.PacketEvent, error) {
	data, ci, err := s.legacy.ReadPacketData()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("capture: read packet: %w", err)
	}
	tsSeconds := float64(ci.Timestamp.UnixNano()) / 1e9
	return &analysis.PacketEvent{
		Ts:       &tsSeconds,
		LinkType: s.linktype,
		Data:     data,
	}, nil
}

func (s *FileSource) nextNg() (*analysis.PacketEvent, error) {
	data, ci, err := s.ng.ReadPacketData()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("capture: read packet: %w", err)
	}

	linktype := layers.LinkTypeEthernet
	if iface, err := s.ng.Interface(ci.InterfaceIndex); err == nil {
		linktype = iface.LinkType
	}

	tsSeconds := float64(ci.Timestamp.UnixNano()) / 1e9
	return &analysis.PacketEvent{
		Ts:       &tsSeconds,
		LinkType: linktype,
		Data:     data,
	}, nil
}
