package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestPrefixedWriterSplitsLines(t *testing.T) {
	var out bytes.Buffer
	w := &prefixedWriter{
		service: "gateway",
		out:     &out,
		now:     func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) },
	}

	n, err := w.Write([]byte("first\nsecond\n"))
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if n != len("first\nsecond\n") {
		t.Fatalf("unexpected count: %d", n)
	}
	want := "2024-05-01T12:00:00Z gateway first\n2024-05-01T12:00:00Z gateway second\n"
	if out.String() != want {
		t.Fatalf("unexpected output: %q", out.String())
	}
}

func TestSetupWritesLogFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	file, err := Setup("renderer", dir)
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	defer file.Close()

	Warnf("font not found name=%s", "missing")

	data, err := os.ReadFile(filepath.Join(dir, "renderer.log"))
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "renderer WARN font not found name=missing") {
		t.Fatalf("unexpected log contents: %q", data)
	}
}
