package codec

import "bytes"

// Magic byte sequences for formats that carry one. Brotli streams have no
// magic and cannot be sniffed; it is deliberately absent from this table.
var magicTable = map[string][]byte{
	"gzip": {0x1f, 0x8b},
	"zstd": {0x28, 0xb5, 0x2f, 0xfd},
	"lz4":  {0x04, 0x22, 0x4d, 0x18},
	"zip":  {'P', 'K', 0x03, 0x04},
}

// Sniffable reports whether the named algorithm has a magic header that
// can be checked before decompression.
func Sniffable(name string) bool {
	_, ok := magicTable[name]
	return ok
}

// MatchesMagic reports whether data begins with the magic bytes of the
// named algorithm. Algorithms without a magic always match.
func MatchesMagic(name string, data []byte) bool {
	magic, ok := magicTable[name]
	if !ok {
		return true
	}
	return len(data) >= len(magic) && bytes.Equal(data[:len(magic)], magic)
}

// SniffAlgorithm returns the name of the algorithm whose magic bytes open
// data, or "" when nothing in the table matches.
func SniffAlgorithm(data []byte) string {
	// zip's magic is a prefix-free four bytes; gzip's two bytes cannot
	// collide with it, so first-match order does not matter here.
	for name, magic := range magicTable {
		if len(data) >= len(magic) && bytes.Equal(data[:len(magic)], magic) {
			return name
		}
	}
	return ""
}
