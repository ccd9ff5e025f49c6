package codec

import (
	"archive/tar"
	"bytes"
	"errors"
	"fmt"
	"io"
)

// TarArchive packs files into a tar stream. Tar has no per-entry
// compression, so PackOptions.CompressInside is ignored; the pipeline
// compresses the whole archive afterwards instead.
type TarArchive struct{}

func NewTarArchive() *TarArchive { return &TarArchive{} }

func (t *TarArchive) Name() string { return "tar" }

func (t *TarArchive) Pack(files []FileRecord, _ PackOptions) ([]byte, error) {
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)

	for _, f := range files {
		hdr := &tar.Header{
			Name: f.Name,
			Mode: 0o644,
			Size: int64(len(f.Data)),
		}
		if err := tw.WriteHeader(hdr); err != nil {
			return nil, fmt.Errorf("write tar header %s: %w", f.Name, err)
		}
		if _, err := tw.Write(f.Data); err != nil {
			return nil, fmt.Errorf("write tar entry %s: %w", f.Name, err)
		}
	}
	if err := tw.Close(); err != nil {
		return nil, fmt.Errorf("close tar writer: %w", err)
	}
	return buf.Bytes(), nil
}

func (t *TarArchive) Unpack(data []byte) ([]FileRecord, error) {
	tr := tar.NewReader(bytes.NewReader(data))

	var files []FileRecord
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read tar header: %w", err)
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}
		content, err := io.ReadAll(tr)
		if err != nil {
			return nil, fmt.Errorf("read tar entry %s: %w", hdr.Name, err)
		}
		files = append(files, FileRecord{Name: hdr.Name, Data: content})
	}
	return files, nil
}
