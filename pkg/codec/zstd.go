package codec

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// Zstd wraps the klauspost zstd encoder/decoder. Encoder and decoder are
// created once per handle; both are safe for concurrent EncodeAll/DecodeAll.
type Zstd struct {
	dec *zstd.Decoder
}

func NewZstd() (*Zstd, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("zstd decoder: %w", err)
	}
	return &Zstd{dec: dec}, nil
}

func (z *Zstd) Name() string { return "zstd" }

func (z *Zstd) LevelRange() (int, int, int) { return 1, 22, 3 }

func (z *Zstd) Compress(data []byte, level int) ([]byte, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(level)))
	if err != nil {
		return nil, fmt.Errorf("zstd encoder: %w", err)
	}
	defer enc.Close()
	return enc.EncodeAll(data, make([]byte, 0, len(data)/2)), nil
}

func (z *Zstd) Decompress(data []byte) ([]byte, error) {
	out, err := z.dec.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("zstd decompress: %w", err)
	}
	return out, nil
}
