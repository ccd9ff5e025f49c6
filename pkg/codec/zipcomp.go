package codec

import (
	"bytes"
	stdflate "compress/flate"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"io"

	"github.com/klauspost/compress/flate"
)

// ZipComp treats a single-entry zip container as a compression algorithm:
// Compress produces a complete, tool-readable .zip holding one entry,
// Decompress extracts that entry's bytes. Level 0 stores the entry raw;
// any other level deflates it.
//
// The deflate step is pluggable so the native build can use the klauspost
// encoder while the fallback sticks to the stdlib.
type ZipComp struct {
	deflate func(data []byte, level int) ([]byte, error)
}

// zipEntryName is the name of the single entry written by Compress.
const zipEntryName = "data.bin"

const (
	zipMethodStore   uint16 = 0
	zipMethodDeflate uint16 = 8
)

var (
	zipLocalHeaderSig = []byte{'P', 'K', 0x03, 0x04}
	zipCentralDirSig  = []byte{'P', 'K', 0x01, 0x02}
	zipEOCDSig        = []byte{'P', 'K', 0x05, 0x06}
)

// ErrNotZip reports input that carries no zip local header.
var ErrNotZip = errors.New("not a zip stream: missing local file header")

func NewZipCompNative() *ZipComp {
	return &ZipComp{deflate: func(data []byte, level int) ([]byte, error) {
		var buf bytes.Buffer
		fw, err := flate.NewWriter(&buf, level)
		if err != nil {
			return nil, err
		}
		if _, err := fw.Write(data); err != nil {
			return nil, err
		}
		if err := fw.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}}
}

func NewZipCompFallback() *ZipComp {
	return &ZipComp{deflate: func(data []byte, level int) ([]byte, error) {
		var buf bytes.Buffer
		fw, err := stdflate.NewWriter(&buf, level)
		if err != nil {
			return nil, err
		}
		if _, err := fw.Write(data); err != nil {
			return nil, err
		}
		if err := fw.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}}
}

func (z *ZipComp) Name() string { return "zip" }

func (z *ZipComp) LevelRange() (int, int, int) { return 0, 9, 6 }

func (z *ZipComp) Compress(data []byte, level int) ([]byte, error) {
	crc := crc32.ChecksumIEEE(data)

	method := zipMethodStore
	payload := data
	if level > 0 {
		compressed, err := z.deflate(data, level)
		if err != nil {
			return nil, fmt.Errorf("deflate entry: %w", err)
		}
		method = zipMethodDeflate
		payload = compressed
	}

	name := []byte(zipEntryName)
	var out bytes.Buffer

	// Local file header.
	out.Write(zipLocalHeaderSig)
	writeLE16(&out, 20) // version needed
	writeLE16(&out, 0)  // flags
	writeLE16(&out, method)
	writeLE16(&out, 0) // mod time
	writeLE16(&out, 0) // mod date
	writeLE32(&out, crc)
	writeLE32(&out, uint32(len(payload)))
	writeLE32(&out, uint32(len(data)))
	writeLE16(&out, uint16(len(name)))
	writeLE16(&out, 0) // extra len
	out.Write(name)
	out.Write(payload)

	// Central directory, single record.
	cdStart := out.Len()
	out.Write(zipCentralDirSig)
	writeLE16(&out, 20) // version made by
	writeLE16(&out, 20) // version needed
	writeLE16(&out, 0)  // flags
	writeLE16(&out, method)
	writeLE16(&out, 0) // mod time
	writeLE16(&out, 0) // mod date
	writeLE32(&out, crc)
	writeLE32(&out, uint32(len(payload)))
	writeLE32(&out, uint32(len(data)))
	writeLE16(&out, uint16(len(name)))
	writeLE16(&out, 0) // extra len
	writeLE16(&out, 0) // comment len
	writeLE16(&out, 0) // disk number start
	writeLE16(&out, 0) // internal attrs
	writeLE32(&out, 0) // external attrs
	writeLE32(&out, 0) // local header offset
	out.Write(name)
	cdSize := out.Len() - cdStart

	// End of central directory.
	out.Write(zipEOCDSig)
	writeLE16(&out, 0) // disk number
	writeLE16(&out, 0) // disk with central dir
	writeLE16(&out, 1) // entries on this disk
	writeLE16(&out, 1) // total entries
	writeLE32(&out, uint32(cdSize))
	writeLE32(&out, uint32(cdStart))
	writeLE16(&out, 0) // comment len

	return out.Bytes(), nil
}

func (z *ZipComp) Decompress(data []byte) ([]byte, error) {
	pos := bytes.Index(data, zipLocalHeaderSig)
	if pos < 0 || pos+30 > len(data) {
		return nil, ErrNotZip
	}

	flags := binary.LittleEndian.Uint16(data[pos+6:])
	if flags&0x0008 != 0 {
		return nil, errors.New("unsupported zip: data descriptor flag set")
	}
	method := binary.LittleEndian.Uint16(data[pos+8:])
	compSize := int(binary.LittleEndian.Uint32(data[pos+18:]))
	nameLen := int(binary.LittleEndian.Uint16(data[pos+26:]))
	extraLen := int(binary.LittleEndian.Uint16(data[pos+28:]))

	dataStart := pos + 30 + nameLen + extraLen
	dataEnd := dataStart + compSize
	if dataStart > len(data) || dataEnd > len(data) || dataEnd < dataStart {
		return nil, errors.New("corrupt zip: entry data beyond buffer")
	}
	raw := data[dataStart:dataEnd]

	switch method {
	case zipMethodStore:
		out := make([]byte, len(raw))
		copy(out, raw)
		return out, nil
	case zipMethodDeflate:
		fr := flate.NewReader(bytes.NewReader(raw))
		defer fr.Close()
		out, err := io.ReadAll(fr)
		if err != nil {
			return nil, fmt.Errorf("inflate entry: %w", err)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported zip method %d", method)
	}
}

func writeLE16(w *bytes.Buffer, v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	w.Write(b[:])
}

func writeLE32(w *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.Write(b[:])
}
