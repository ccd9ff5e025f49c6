// Package codec holds the compression and archive primitives the pipeline
// orchestrates. Every implementation works on in-memory byte slices; the
// pipeline never hands a codec a file handle.
package codec

// FileRecord is one named file travelling through the pipeline. Records are
// owned by the caller for the duration of a single call; codecs must not
// retain references to Data.
type FileRecord struct {
	Name string `json:"name"`
	Data []byte `json:"data"`
}

// Compressor compresses and decompresses a single byte stream.
type Compressor interface {
	// Name returns the algorithm name as registered, e.g. "gzip".
	Name() string

	// Compress compresses data at the given level. Level is already
	// validated against LevelRange by the caller.
	Compress(data []byte, level int) ([]byte, error)

	// Decompress is the exact inverse of Compress.
	Decompress(data []byte) ([]byte, error)

	// LevelRange returns the inclusive level bounds and the default level.
	LevelRange() (min, max, def int)
}

// PackOptions controls how an Archiver stores its entries.
type PackOptions struct {
	// CompressInside compresses individual entries inside the archive.
	// Off by default: the archive is usually compressed as a whole
	// afterwards and double compression just burns cycles.
	CompressInside bool
	// Level applies to entry compression when CompressInside is set.
	Level int
}

// Archiver packs multiple named files into one byte stream and back.
// Unpack must preserve entry order.
type Archiver interface {
	Name() string
	Pack(files []FileRecord, opts PackOptions) ([]byte, error)
	Unpack(data []byte) ([]FileRecord, error)
}
