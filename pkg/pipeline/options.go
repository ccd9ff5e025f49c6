package pipeline

import (
	"fmt"

	"packpipe/pkg/registry"
)

// CompressionOptions selects the outer compression algorithm.
type CompressionOptions struct {
	// Algo is a registry algorithm name, e.g. "gzip".
	Algo string
	// Level overrides the algorithm's default level when non-nil.
	Level *int
}

// ArchiveOptions selects the archive format for multi-file inputs.
type ArchiveOptions struct {
	// Algo is a registry archive name, or "none" to disable archiving
	// explicitly.
	Algo string
	// CompressInside additionally compresses entries inside the archive.
	// Off by default since the archive is compressed as a whole anyway.
	CompressInside bool
}

// ProcessOptions drives one Process or Restore call.
type ProcessOptions struct {
	Compression CompressionOptions
	// Archive nil means "unset": Process defaults to the zip format when
	// more than one file is supplied, and Restore auto-detects archive
	// framing in the decompressed stream. An explicit "none" disables
	// archiving outright.
	Archive *ArchiveOptions
}

// archiveDisabled reports whether the caller explicitly opted out.
func (o ProcessOptions) archiveDisabled() bool {
	return o.Archive != nil && (o.Archive.Algo == "" || o.Archive.Algo == "none")
}

// effective holds validated, defaulted options for one run.
type effective struct {
	compression    string
	level          int
	archive        string // empty when no archive framing
	compressInside bool
}

// validate checks options against the registry and resolves defaults.
// fileCount drives the archive default; Restore passes -1 to skip the
// file-set rules.
func (p *Pipeline) validate(opts ProcessOptions, fileCount int) (*effective, error) {
	eff := &effective{compression: opts.Compression.Algo}

	if eff.compression == "" {
		return nil, &ValidationError{Reason: "no compression algorithm given"}
	}
	if !p.reg.IsCompressionSupported(eff.compression) {
		if p.reg.IsKnownCompression(eff.compression) {
			return nil, &UnsupportedPlatformError{
				Name:   eff.compression,
				Kind:   registry.KindCompression,
				Target: p.reg.Platform(),
			}
		}
		return nil, &ValidationError{Reason: fmt.Sprintf("unknown compression algorithm %q", eff.compression)}
	}

	desc := p.reg.Describe(eff.compression, registry.KindCompression)
	eff.level = desc.LevelRange.Default
	if opts.Compression.Level != nil {
		if !desc.LevelRange.Contains(*opts.Compression.Level) {
			return nil, &ValidationError{Reason: fmt.Sprintf(
				"level %d out of range %d-%d for %s",
				*opts.Compression.Level, desc.LevelRange.Min, desc.LevelRange.Max, eff.compression)}
		}
		eff.level = *opts.Compression.Level
	}

	switch {
	case opts.archiveDisabled():
		if fileCount > 1 {
			return nil, &ValidationError{Reason: "archiving disabled but multiple files supplied"}
		}
	case opts.Archive != nil:
		name := opts.Archive.Algo
		if !p.reg.IsArchiveSupported(name) {
			if p.reg.IsKnownArchive(name) {
				return nil, &UnsupportedPlatformError{
					Name:   name,
					Kind:   registry.KindArchive,
					Target: p.reg.Platform(),
				}
			}
			return nil, &ValidationError{Reason: fmt.Sprintf("unknown archive format %q", name)}
		}
		eff.archive = name
		eff.compressInside = opts.Archive.CompressInside
	default:
		// Unset: multiple files default to the zip format.
		if fileCount > 1 {
			eff.archive = "zip"
		}
	}

	return eff, nil
}

// validateFiles applies the input-set rules shared by Process variants.
func validateFiles(files []FileRecord) error {
	if len(files) == 0 {
		return &ValidationError{Reason: "no input files"}
	}
	for i, f := range files {
		if f.Name == "" {
			return &ValidationError{Reason: fmt.Sprintf("file %d has an empty name", i)}
		}
		if len(f.Data) == 0 {
			return &ValidationError{Reason: fmt.Sprintf("file %q has no data", f.Name)}
		}
	}
	return nil
}
