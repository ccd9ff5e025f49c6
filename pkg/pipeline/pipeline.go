// Package pipeline is the single entry point for compressing file sets and
// restoring them. Process archives multiple files when asked (or by
// default), compresses the result as a whole and embeds a small manifest so
// Restore can recover original names from the bytes alone.
package pipeline

import (
	"bytes"
	"fmt"
	"hash/crc32"
	"time"

	"github.com/go-logr/logr"

	"packpipe/pkg/codec"
	"packpipe/pkg/loader"
	"packpipe/pkg/registry"
)

// FileRecord is re-exported so pipeline callers need not import pkg/codec.
type FileRecord = codec.FileRecord

// RestoredFallbackName names a restored single file when no embedded
// manifest is present.
const RestoredFallbackName = "restored.bin"

// Result pairs the compressed bytes with their derived metadata.
type Result struct {
	Data     []byte
	Metadata *Metadata
}

// Pipeline orchestrates codecs resolved through a loader. Instances are
// stateless and safe for concurrent use.
type Pipeline struct {
	reg *registry.Registry
	ldr *loader.Loader
	log logr.Logger
}

// New builds a pipeline over the given registry and loader.
func New(reg *registry.Registry, ldr *loader.Loader, log logr.Logger) *Pipeline {
	return &Pipeline{reg: reg, ldr: ldr, log: log}
}

// Process validates, optionally archives and compresses files, returning
// the compressed bytes. Metadata is embedded in the payload for Restore
// but not returned; use ProcessWithMetadata for the side channel.
func (p *Pipeline) Process(files []FileRecord, opts ProcessOptions) ([]byte, error) {
	res, err := p.ProcessWithMetadata(files, opts)
	if err != nil {
		return nil, err
	}
	return res.Data, nil
}

// ProcessWithMetadata performs Process and additionally times the run and
// derives the full metadata record.
func (p *Pipeline) ProcessWithMetadata(files []FileRecord, opts ProcessOptions) (*Result, error) {
	start := time.Now()

	if err := validateFiles(files); err != nil {
		return nil, err
	}
	eff, err := p.validate(opts, len(files))
	if err != nil {
		return nil, err
	}

	manifest := buildManifest(eff, files, start)

	var payload []byte
	if eff.archive != "" {
		payload, err = p.pack(eff, files, manifest)
	} else {
		payload, err = appendTrailer(files[0].Data, manifest)
	}
	if err != nil {
		return nil, err
	}

	handle, err := p.ldr.Get(eff.compression, registry.KindCompression)
	if err != nil {
		return nil, err
	}
	data, err := handle.Compressor().Compress(payload, eff.level)
	if err != nil {
		return nil, fmt.Errorf("compress with %s: %w", eff.compression, err)
	}

	originalSize := 0
	for _, f := range files {
		originalSize += len(f.Data)
	}

	meta := &Metadata{
		OriginalSize:     originalSize,
		CompressedSize:   len(data),
		CompressionRatio: 1 - float64(len(data))/float64(originalSize),
		CompressionAlgo:  eff.compression,
		ArchiveAlgo:      eff.archive,
		FileCount:        len(files),
		ProcessingTimeMs: time.Since(start).Milliseconds(),
		Timestamp:        start.UTC(),
		PerFile:          manifest.Files,
		Checksums: Checksums{
			Original:   streamChecksum(files),
			Compressed: crc32.ChecksumIEEE(data),
		},
		Compatibility: manifest.Compatibility,
	}

	p.log.V(1).Info("processed file set",
		"files", len(files),
		"compression", eff.compression,
		"archive", eff.archive,
		"impl", handle.Impl.String(),
		"originalSize", originalSize,
		"compressedSize", len(data),
	)
	return &Result{Data: data, Metadata: meta}, nil
}

// pack archives the files plus the manifest entry.
func (p *Pipeline) pack(eff *effective, files []FileRecord, manifest *Manifest) ([]byte, error) {
	handle, err := p.ldr.Get(eff.archive, registry.KindArchive)
	if err != nil {
		return nil, err
	}

	entryData, err := manifestJSON(manifest)
	if err != nil {
		return nil, err
	}
	entries := make([]FileRecord, 0, len(files)+1)
	entries = append(entries, files...)
	entries = append(entries, FileRecord{Name: MetaEntryName, Data: entryData})

	packed, err := handle.Archiver().Pack(entries, codec.PackOptions{
		CompressInside: eff.compressInside,
		Level:          eff.level,
	})
	if err != nil {
		return nil, fmt.Errorf("pack %s archive: %w", eff.archive, err)
	}
	return packed, nil
}

// Restore is the inverse of Process: it decompresses, unpacks when archive
// framing is present and recovers original file names from the embedded
// manifest.
func (p *Pipeline) Restore(data []byte, opts ProcessOptions) ([]FileRecord, error) {
	files, _, err := p.restore(data, opts)
	return files, err
}

// ReadMetadata extracts just the embedded manifest from compressed bytes
// without materializing files. Returns an error when the payload carries
// no manifest.
func (p *Pipeline) ReadMetadata(data []byte, opts ProcessOptions) (*Manifest, error) {
	_, manifest, err := p.restore(data, opts)
	if err != nil {
		return nil, err
	}
	if manifest == nil {
		return nil, &CorruptInputError{Reason: "payload carries no embedded metadata"}
	}
	return manifest, nil
}

func (p *Pipeline) restore(data []byte, opts ProcessOptions) ([]FileRecord, *Manifest, error) {
	if len(data) == 0 {
		return nil, nil, &CorruptInputError{Reason: "empty input"}
	}
	eff, err := p.validate(opts, -1)
	if err != nil {
		return nil, nil, err
	}

	if codec.Sniffable(eff.compression) && !codec.MatchesMagic(eff.compression, data) {
		return nil, nil, &AlgorithmMismatchError{
			Declared: eff.compression,
			Detected: codec.SniffAlgorithm(data),
		}
	}

	handle, err := p.ldr.Get(eff.compression, registry.KindCompression)
	if err != nil {
		return nil, nil, err
	}
	payload, err := handle.Compressor().Decompress(data)
	if err != nil {
		return nil, nil, &CorruptInputError{Reason: "decompress " + eff.compression, Err: err}
	}

	archive := eff.archive
	if archive == "" && opts.Archive == nil {
		// Archive unset: the payload is self-describing. A trailer
		// manifest marks a single-file artifact even when the file
		// content itself starts with archive magic; only sniff for
		// framing when no trailer is present.
		if _, m, _ := splitTrailer(payload); m != nil {
			archive = m.Archive
		} else {
			archive = detectArchive(payload)
		}
	}

	if archive == "" {
		fileData, manifest, err := splitTrailer(payload)
		if err != nil {
			return nil, nil, err
		}
		if err := checkVersion(manifest); err != nil {
			return nil, nil, err
		}
		name := RestoredFallbackName
		if manifest != nil && len(manifest.Files) > 0 && manifest.Files[0].Name != "" {
			name = manifest.Files[0].Name
		}
		return []FileRecord{{Name: name, Data: fileData}}, manifest, nil
	}

	archHandle, err := p.ldr.Get(archive, registry.KindArchive)
	if err != nil {
		return nil, nil, err
	}
	entries, err := archHandle.Archiver().Unpack(payload)
	if err != nil {
		return nil, nil, &CorruptInputError{Reason: "unpack " + archive + " archive", Err: err}
	}

	var manifest *Manifest
	files := make([]FileRecord, 0, len(entries))
	for _, e := range entries {
		if e.Name == MetaEntryName && manifest == nil {
			m, err := parseManifestEntry(e.Data)
			if err != nil {
				return nil, nil, err
			}
			manifest = m
			continue
		}
		files = append(files, e)
	}
	if err := checkVersion(manifest); err != nil {
		return nil, nil, err
	}

	// Manifest names win over archive entry names when they disagree;
	// some containers mangle names the manifest preserved verbatim.
	if manifest != nil && len(manifest.Files) == len(files) {
		for i := range files {
			if declared := manifest.Files[i].Name; declared != "" && declared != files[i].Name {
				files[i].Name = declared
			}
		}
	}
	return files, manifest, nil
}

func checkVersion(m *Manifest) error {
	if m == nil {
		return nil
	}
	if m.Compatibility.MinVersion > FormatVersion {
		return &CorruptInputError{Reason: fmt.Sprintf(
			"artifact requires format version %d, this build reads up to %d",
			m.Compatibility.MinVersion, FormatVersion)}
	}
	return nil
}

// detectArchive sniffs archive framing in a decompressed payload: a zip
// local header at offset 0, or the ustar magic at offset 257.
func detectArchive(payload []byte) string {
	if len(payload) >= 4 && bytes.Equal(payload[:4], []byte{'P', 'K', 0x03, 0x04}) {
		return "zip"
	}
	if len(payload) >= 262 && bytes.Equal(payload[257:262], []byte("ustar")) {
		return "tar"
	}
	return ""
}
