package pipeline

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"hash/crc32"
	"hash/fnv"
	"time"
)

// FormatVersion is bumped on any breaking change to the persisted artifact
// layout; restore implementations refuse higher versions.
const FormatVersion = 1

// MetaEntryName is the extra archive entry carrying the embedded manifest.
// Generic tools that don't know it simply extract one more file.
const MetaEntryName = ".packmeta.json"

// trailerMagic closes the trailing metadata block appended to single-file
// payloads before compression.
var trailerMagic = []byte("PMD1")

// FileStat is the per-file slice of the metadata record. Checksum is
// derived from name and size only, for speed; it is not a content hash and
// gives no tamper evidence.
type FileStat struct {
	Name         string `json:"name"`
	OriginalSize int    `json:"originalSize"`
	Checksum     string `json:"checksum"`
}

// Checksums are CRC-32 (IEEE) digests of the whole input and output
// streams.
type Checksums struct {
	Original   uint32 `json:"original"`
	Compressed uint32 `json:"compressed"`
}

// Compatibility describes what a reader needs to restore the artifact.
type Compatibility struct {
	MinVersion      int      `json:"minVersion"`
	RequiredModules []string `json:"requiredModules"`
}

// Metadata is the full derived record returned by ProcessWithMetadata.
// The pipeline computes it once per call and does not persist it.
type Metadata struct {
	OriginalSize     int           `json:"originalSize"`
	CompressedSize   int           `json:"compressedSize"`
	CompressionRatio float64       `json:"compressionRatio"`
	CompressionAlgo  string        `json:"compressionAlgo"`
	ArchiveAlgo      string        `json:"archiveAlgo,omitempty"`
	FileCount        int           `json:"fileCount"`
	ProcessingTimeMs int64         `json:"processingTimeMs"`
	Timestamp        time.Time     `json:"timestamp"`
	PerFile          []FileStat    `json:"perFile"`
	Checksums        Checksums     `json:"checksums"`
	Compatibility    Compatibility `json:"compatibility"`
}

// Manifest is the subset of metadata embedded inside the payload itself,
// enough to recover original file names from the bytes alone.
type Manifest struct {
	Version       int           `json:"version"`
	CreatedAt     time.Time     `json:"createdAt"`
	Compression   string        `json:"compression"`
	Archive       string        `json:"archive,omitempty"`
	FileCount     int           `json:"fileCount"`
	Files         []FileStat    `json:"files"`
	Compatibility Compatibility `json:"compatibility"`
}

// fileStats computes the per-file records for a file set.
func fileStats(files []FileRecord) []FileStat {
	stats := make([]FileStat, len(files))
	for i, f := range files {
		stats[i] = FileStat{
			Name:         f.Name,
			OriginalSize: len(f.Data),
			Checksum:     quickChecksum(f.Name, len(f.Data)),
		}
	}
	return stats
}

// quickChecksum hashes name and size, not content. Callers needing tamper
// evidence must hash content themselves.
func quickChecksum(name string, size int) string {
	h := fnv.New32a()
	h.Write([]byte(name))
	h.Write([]byte{0})
	fmt.Fprintf(h, "%d", size)
	return fmt.Sprintf("%08x", h.Sum32())
}

// streamChecksum digests the concatenated file contents in order.
func streamChecksum(files []FileRecord) uint32 {
	h := crc32.NewIEEE()
	for _, f := range files {
		h.Write(f.Data)
	}
	return h.Sum32()
}

func buildManifest(eff *effective, files []FileRecord, now time.Time) *Manifest {
	modules := []string{"compression-" + eff.compression}
	if eff.archive != "" {
		modules = append(modules, "archive-"+eff.archive)
	}
	return &Manifest{
		Version:     FormatVersion,
		CreatedAt:   now.UTC(),
		Compression: eff.compression,
		Archive:     eff.archive,
		FileCount:   len(files),
		Files:       fileStats(files),
		Compatibility: Compatibility{
			MinVersion:      FormatVersion,
			RequiredModules: modules,
		},
	}
}

func manifestJSON(m *Manifest) ([]byte, error) {
	blob, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode manifest: %w", err)
	}
	return blob, nil
}

// appendTrailer attaches the manifest to a single-file payload:
// data ‖ manifest JSON ‖ length (u32 BE) ‖ "PMD1". The whole sequence is
// compressed afterwards, so generic decompressors still recover the
// original bytes plus an ignorable tail.
func appendTrailer(data []byte, m *Manifest) ([]byte, error) {
	blob, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode manifest: %w", err)
	}
	out := make([]byte, 0, len(data)+len(blob)+8)
	out = append(out, data...)
	out = append(out, blob...)
	out = binary.BigEndian.AppendUint32(out, uint32(len(blob)))
	out = append(out, trailerMagic...)
	return out, nil
}

// splitTrailer separates payload and manifest again. A payload without a
// trailer is returned unchanged with a nil manifest.
func splitTrailer(payload []byte) ([]byte, *Manifest, error) {
	if len(payload) < 8 || !bytes.Equal(payload[len(payload)-4:], trailerMagic) {
		return payload, nil, nil
	}
	blobLen := int(binary.BigEndian.Uint32(payload[len(payload)-8:]))
	end := len(payload) - 8
	if blobLen <= 0 || blobLen > end {
		// The magic matched by accident; treat the payload as plain data.
		return payload, nil, nil
	}
	var m Manifest
	if err := json.Unmarshal(payload[end-blobLen:end], &m); err != nil {
		return payload, nil, nil
	}
	return payload[:end-blobLen], &m, nil
}

// parseManifestEntry decodes the embedded manifest archive entry.
func parseManifestEntry(data []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, &CorruptInputError{Reason: "malformed metadata entry", Err: err}
	}
	return &m, nil
}
