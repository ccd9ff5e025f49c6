package codec

import (
	"bytes"
	"fmt"
	"io"

	"github.com/pierrec/lz4/v4"
)

// LZ4 wraps the pierrec lz4 frame format. Level 0 selects the fast path;
// 1-9 map onto the corresponding high-compression levels.
type LZ4 struct{}

func NewLZ4() *LZ4 { return &LZ4{} }

func (l *LZ4) Name() string { return "lz4" }

func (l *LZ4) LevelRange() (int, int, int) { return 0, 9, 0 }

func (l *LZ4) Compress(data []byte, level int) ([]byte, error) {
	var buf bytes.Buffer
	zw := lz4.NewWriter(&buf)
	if level > 0 {
		if err := zw.Apply(lz4.CompressionLevelOption(lz4CompressionLevel(level))); err != nil {
			return nil, fmt.Errorf("lz4 level option: %w", err)
		}
	}
	if _, err := zw.Write(data); err != nil {
		return nil, fmt.Errorf("lz4 compress: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close lz4 writer: %w", err)
	}
	return buf.Bytes(), nil
}

func (l *LZ4) Decompress(data []byte) ([]byte, error) {
	out, err := io.ReadAll(lz4.NewReader(bytes.NewReader(data)))
	if err != nil {
		return nil, fmt.Errorf("lz4 decompress: %w", err)
	}
	return out, nil
}

func lz4CompressionLevel(level int) lz4.CompressionLevel {
	switch level {
	case 1:
		return lz4.Level1
	case 2:
		return lz4.Level2
	case 3:
		return lz4.Level3
	case 4:
		return lz4.Level4
	case 5:
		return lz4.Level5
	case 6:
		return lz4.Level6
	case 7:
		return lz4.Level7
	case 8:
		return lz4.Level8
	default:
		return lz4.Level9
	}
}
