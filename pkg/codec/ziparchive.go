package codec

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/flate"
)

// ZipArchive packs files into a multi-entry zip container. Entries are
// stored raw unless PackOptions.CompressInside asks for deflate, in which
// case the klauspost encoder is registered for the writer.
type ZipArchive struct{}

func NewZipArchive() *ZipArchive { return &ZipArchive{} }

func (z *ZipArchive) Name() string { return "zip" }

func (z *ZipArchive) Pack(files []FileRecord, opts PackOptions) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	method := zip.Store
	if opts.CompressInside {
		method = zip.Deflate
		level := opts.Level
		if level <= 0 {
			level = 6
		}
		zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
			return flate.NewWriter(out, level)
		})
	}

	for _, f := range files {
		w, err := zw.CreateHeader(&zip.FileHeader{Name: f.Name, Method: method})
		if err != nil {
			return nil, fmt.Errorf("create zip entry %s: %w", f.Name, err)
		}
		if _, err := w.Write(f.Data); err != nil {
			return nil, fmt.Errorf("write zip entry %s: %w", f.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close zip writer: %w", err)
	}
	return buf.Bytes(), nil
}

func (z *ZipArchive) Unpack(data []byte) ([]FileRecord, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open zip: %w", err)
	}

	files := make([]FileRecord, 0, len(zr.File))
	for _, entry := range zr.File {
		rc, err := entry.Open()
		if err != nil {
			return nil, fmt.Errorf("open zip entry %s: %w", entry.Name, err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("read zip entry %s: %w", entry.Name, err)
		}
		files = append(files, FileRecord{Name: entry.Name, Data: content})
	}
	return files, nil
}
