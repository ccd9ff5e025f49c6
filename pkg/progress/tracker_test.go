package progress

import (
	"bytes"
	"strings"
	"testing"
)

func TestTrackerCounts(t *testing.T) {
	var out bytes.Buffer
	tr := New(100, &out)
	tr.Start()
	tr.Add(40)
	tr.Add(60)
	tr.Stop()

	if got := tr.Processed(); got != 100 {
		t.Errorf("Processed() = %d, want 100", got)
	}
	if !strings.Contains(out.String(), "done:") {
		t.Errorf("missing summary line in %q", out.String())
	}

	// Stopping twice must be safe.
	tr.Stop()
}

func TestWriter(t *testing.T) {
	var sink bytes.Buffer
	tr := New(0, &bytes.Buffer{})
	w := &Writer{W: &sink, T: tr}

	if _, err := w.Write([]byte("12345")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if tr.Processed() != 5 {
		t.Errorf("tracked %d bytes, want 5", tr.Processed())
	}
	if sink.String() != "12345" {
		t.Errorf("sink = %q", sink.String())
	}
}

func TestFormatSize(t *testing.T) {
	cases := map[uint64]string{
		512:             "512 B",
		2048:            "2.0 KiB",
		3 * 1024 * 1024: "3.0 MiB",
	}
	for in, want := range cases {
		if got := FormatSize(in); got != want {
			t.Errorf("FormatSize(%d) = %q, want %q", in, got, want)
		}
	}
}
