package testsupport

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tvcut/internal/cutlist"
)

// tsPacketSize is the MPEG transport stream packet length.
const tsPacketSize = 188

// WriteRecording creates a stand-in transport stream of roughly size bytes:
// whole 188-byte packets that start with the 0x47 sync byte. A size below
// one packet still writes a single packet.
func WriteRecording(t testing.TB, path string, size int64) {
	t.Helper()

	packets := max(size/tsPacketSize, 1)
	packet := make([]byte, tsPacketSize)
	packet[0] = 0x47
	for i := 1; i < len(packet); i++ {
		packet[i] = 0xff
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()
	for range packets {
		if _, err := f.Write(packet); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
}

// WriteCutlist writes removes as a plain "start end" seconds cutlist.
func WriteCutlist(t testing.TB, path string, removes ...cutlist.Interval) {
	t.Helper()

	var b strings.Builder
	for _, r := range removes {
		fmt.Fprintf(&b, "%g %g\n", r.Start, r.End)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
