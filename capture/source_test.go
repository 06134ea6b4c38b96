package capture

import (
	"os"
	"testing"
)

func TestOpenMissingFileReturnsError(t *testing.T) {
	if _, err := Open("/nonexistent/path/to/capture.pcap"); err == nil {
		t.Fatal("expected an error opening a missing file")
	}
}

func TestOpenRejectsGarbageHeader(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "not-a-capture-*.bin")
	if err != nil {
		t.Fatalf("CreateTemp: %v", err)
	}
	if _, err := f.Write([]byte("not a pcap file at all, just some text")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	f.Close()

	if _, err := Open(f.Name()); err == nil {
		t.Fatal("expected an error for a non-pcap file")
	}
}
