package codec

import (
	"bytes"
	"crypto/rand"
	"strings"
	"testing"
)

func compressors(t *testing.T) []Compressor {
	t.Helper()
	zs, err := NewZstd()
	if err != nil {
		t.Fatalf("zstd constructor: %v", err)
	}
	return []Compressor{
		NewGzipNative(),
		NewGzipFallback(),
		NewBrotli(),
		NewZipCompNative(),
		NewZipCompFallback(),
		zs,
		NewLZ4(),
	}
}

func TestCompressorRoundTrip(t *testing.T) {
	payloads := map[string][]byte{
		"repetitive": []byte(strings.Repeat("packpipe says hello. ", 500)),
		"tiny":       []byte("x"),
	}
	random := make([]byte, 64*1024)
	if _, err := rand.Read(random); err != nil {
		t.Fatalf("random payload: %v", err)
	}
	payloads["random"] = random

	for _, c := range compressors(t) {
		_, _, def := c.LevelRange()
		for label, data := range payloads {
			t.Run(c.Name()+"/"+label, func(t *testing.T) {
				compressed, err := c.Compress(data, def)
				if err != nil {
					t.Fatalf("compress: %v", err)
				}
				out, err := c.Decompress(compressed)
				if err != nil {
					t.Fatalf("decompress: %v", err)
				}
				if !bytes.Equal(out, data) {
					t.Fatalf("round trip mismatch: got %d bytes, want %d", len(out), len(data))
				}
			})
		}
	}
}

func TestCompressorShrinksRepetitiveInput(t *testing.T) {
	data := []byte(strings.Repeat("0123456789", 1000))
	for _, c := range compressors(t) {
		min, max, _ := c.LevelRange()
		level := max
		if min > level {
			level = min
		}
		compressed, err := c.Compress(data, level)
		if err != nil {
			t.Fatalf("%s compress: %v", c.Name(), err)
		}
		if len(compressed) >= len(data) {
			t.Errorf("%s: compressed %d bytes to %d, expected shrinkage", c.Name(), len(data), len(compressed))
		}
	}
}

func TestZipCompStoreLevel(t *testing.T) {
	z := NewZipCompNative()
	data := []byte("stored verbatim")
	compressed, err := z.Compress(data, 0)
	if err != nil {
		t.Fatalf("compress at level 0: %v", err)
	}
	// Level 0 stores raw, so the payload must appear uncompressed.
	if !bytes.Contains(compressed, data) {
		t.Fatal("level 0 zip should store the entry uncompressed")
	}
	out, err := z.Decompress(compressed)
	if err != nil {
		t.Fatalf("decompress: %v", err)
	}
	if !bytes.Equal(out, data) {
		t.Fatal("store round trip mismatch")
	}
}

func TestZipCompRejectsGarbage(t *testing.T) {
	z := NewZipCompFallback()
	if _, err := z.Decompress([]byte("definitely not a zip")); err == nil {
		t.Fatal("expected error for non-zip input")
	}
}

func TestMagicDetection(t *testing.T) {
	zs, err := NewZstd()
	if err != nil {
		t.Fatalf("zstd constructor: %v", err)
	}
	sniffable := []Compressor{NewGzipFallback(), zs, NewLZ4(), NewZipCompNative()}
	for _, c := range sniffable {
		_, _, def := c.LevelRange()
		compressed, err := c.Compress([]byte("magic check"), def)
		if err != nil {
			t.Fatalf("%s compress: %v", c.Name(), err)
		}
		if !Sniffable(c.Name()) {
			t.Errorf("%s should be sniffable", c.Name())
		}
		if !MatchesMagic(c.Name(), compressed) {
			t.Errorf("%s output should match its own magic", c.Name())
		}
		if got := SniffAlgorithm(compressed); got != c.Name() {
			t.Errorf("SniffAlgorithm = %q, want %q", got, c.Name())
		}
	}

	if Sniffable("brotli") {
		t.Error("brotli has no magic and must not be sniffable")
	}
	if !MatchesMagic("brotli", []byte{0x00}) {
		t.Error("algorithms without magic always match")
	}
	if got := SniffAlgorithm([]byte("plain text")); got != "" {
		t.Errorf("SniffAlgorithm on plain text = %q, want empty", got)
	}
}
