package codec

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"

	"github.com/klauspost/pgzip"
)

// GzipNative compresses with pgzip, which splits input across CPU cores.
// Only loadable on the server target; wasm hosts get GzipFallback instead.
type GzipNative struct{}

func NewGzipNative() *GzipNative { return &GzipNative{} }

func (g *GzipNative) Name() string { return "gzip" }

func (g *GzipNative) LevelRange() (int, int, int) { return 0, 9, 6 }

func (g *GzipNative) Compress(data []byte, level int) ([]byte, error) {
	var buf bytes.Buffer
	zw, err := pgzip.NewWriterLevel(&buf, level)
	if err != nil {
		return nil, fmt.Errorf("gzip writer: %w", err)
	}
	if _, err := zw.Write(data); err != nil {
		return nil, fmt.Errorf("gzip compress: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close gzip writer: %w", err)
	}
	return buf.Bytes(), nil
}

func (g *GzipNative) Decompress(data []byte) ([]byte, error) {
	zr, err := pgzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("gzip reader: %w", err)
	}
	defer zr.Close()
	out, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("gzip decompress: %w", err)
	}
	return out, nil
}

// GzipFallback is the pure stdlib implementation, functionally complete
// for every input GzipNative accepts.
type GzipFallback struct{}

func NewGzipFallback() *GzipFallback { return &GzipFallback{} }

func (g *GzipFallback) Name() string { return "gzip" }

func (g *GzipFallback) LevelRange() (int, int, int) { return 0, 9, 6 }

func (g *GzipFallback) Compress(data []byte, level int) ([]byte, error) {
	var buf bytes.Buffer
	zw, err := gzip.NewWriterLevel(&buf, level)
	if err != nil {
		return nil, fmt.Errorf("gzip writer: %w", err)
	}
	if _, err := zw.Write(data); err != nil {
		return nil, fmt.Errorf("gzip compress: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close gzip writer: %w", err)
	}
	return buf.Bytes(), nil
}

func (g *GzipFallback) Decompress(data []byte) ([]byte, error) {
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("gzip reader: %w", err)
	}
	defer zr.Close()
	out, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("gzip decompress: %w", err)
	}
	return out, nil
}
