package codec

import (
	"bytes"
	"fmt"
	"io"

	"github.com/andybalholm/brotli"
)

// Brotli wraps the pure-Go brotli implementation. There is no separate
// optimized build, so the loader uses the same instance for native and
// fallback roles.
type Brotli struct{}

func NewBrotli() *Brotli { return &Brotli{} }

func (b *Brotli) Name() string { return "brotli" }

func (b *Brotli) LevelRange() (int, int, int) { return 0, 11, 6 }

func (b *Brotli) Compress(data []byte, level int) ([]byte, error) {
	var buf bytes.Buffer
	zw := brotli.NewWriterLevel(&buf, level)
	if _, err := zw.Write(data); err != nil {
		return nil, fmt.Errorf("brotli compress: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close brotli writer: %w", err)
	}
	return buf.Bytes(), nil
}

func (b *Brotli) Decompress(data []byte) ([]byte, error) {
	out, err := io.ReadAll(brotli.NewReader(bytes.NewReader(data)))
	if err != nil {
		return nil, fmt.Errorf("brotli decompress: %w", err)
	}
	return out, nil
}
