// Package naming maps (archive, compression) choices to canonical file
// extensions and back. All functions are pure; no I/O, no registry access.
package naming

import (
	"fmt"
	"strings"
	"time"
)

// None is the neutral value for either slot of a pair.
const None = "none"

// Parsed is the result of ParseExtension.
type Parsed struct {
	BaseName    string
	Archive     string
	Compression string
}

// suffixRule binds one canonical suffix to its (archive, compression) pair.
type suffixRule struct {
	suffix      string
	archive     string
	compression string
}

// suffixRules is tried in order, longest/most-specific first. A bare .zip
// always parses as an archive; zip-as-compression is never inferred from a
// filename, only selected by an explicit caller option.
var suffixRules = []suffixRule{
	{".tar.zst", "tar", "zstd"},
	{".tar.lz4", "tar", "lz4"},
	{".tar.zip", "tar", "zip"},
	{".zip.zst", "zip", "zstd"},
	{".zip.lz4", "zip", "lz4"},
	{".zip.zip", "zip", "zip"},
	{".tar.gz", "tar", "gzip"},
	{".tar.br", "tar", "brotli"},
	{".zip.gz", "zip", "gzip"},
	{".zip.br", "zip", "brotli"},
	{".tgz", "tar", "gzip"},
	{".lz4", None, "lz4"},
	{".zst", None, "zstd"},
	{".zip", "zip", None},
	{".tar", "tar", None},
	{".gz", None, "gzip"},
	{".br", None, "brotli"},
}

var compressionSuffix = map[string]string{
	"gzip":   "gz",
	"brotli": "br",
	"zip":    "zip",
	"zstd":   "zst",
	"lz4":    "lz4",
}

var archiveSuffix = map[string]string{
	"zip": "zip",
	"tar": "tar",
}

// ComposeExtension returns the canonical extension for an (archive,
// compression) pair, archive suffix first: (tar, gzip) -> ".tar.gz".
// A none archive contributes nothing, so (none, brotli) -> ".br".
// Unknown names contribute nothing.
func ComposeExtension(archive, compression string) string {
	var b strings.Builder
	if s, ok := archiveSuffix[normalize(archive)]; ok {
		b.WriteByte('.')
		b.WriteString(s)
	}
	if s, ok := compressionSuffix[normalize(compression)]; ok {
		b.WriteByte('.')
		b.WriteString(s)
	}
	return b.String()
}

// ParseExtension splits a filename into base name and the (archive,
// compression) pair encoded by its suffix. Longest known suffixes win:
// "report.tar.gz" parses as base "report", never "report.tar" + gz.
// Unknown suffixes are left on the base name with both slots none.
func ParseExtension(filename string) Parsed {
	lower := strings.ToLower(filename)
	for _, rule := range suffixRules {
		if len(filename) > len(rule.suffix) && strings.HasSuffix(lower, rule.suffix) {
			return Parsed{
				BaseName:    filename[:len(filename)-len(rule.suffix)],
				Archive:     rule.archive,
				Compression: rule.compression,
			}
		}
	}
	return Parsed{BaseName: filename, Archive: None, Compression: None}
}

// NameOptions drives SmartFilename.
type NameOptions struct {
	Archive     string
	Compression string
	// Timestamp inserts a -YYYYMMDD-HHMMSS token between base name and
	// extension.
	Timestamp bool
	// Now overrides the clock; nil means time.Now. Exists for tests.
	Now func() time.Time
}

// SmartFilename appends the canonical extension for the given options to
// base: SmartFilename("backup", {tar, gzip}) -> "backup.tar.gz".
func SmartFilename(base string, opts NameOptions) string {
	name := base
	if opts.Timestamp {
		now := time.Now
		if opts.Now != nil {
			now = opts.Now
		}
		name += "-" + now().Format("20060102-150405")
	}
	return name + ComposeExtension(opts.Archive, opts.Compression)
}

// SplitExtension splits a filename at its extension boundary: the longest
// known suffix when one matches, otherwise at the first dot (so
// "report.backup.txt" splits as "report" + ".backup.txt"). Dotless names
// return an empty extension.
func SplitExtension(filename string) (stem, ext string) {
	lower := strings.ToLower(filename)
	for _, rule := range suffixRules {
		if len(filename) > len(rule.suffix) && strings.HasSuffix(lower, rule.suffix) {
			cut := len(filename) - len(rule.suffix)
			return filename[:cut], filename[cut:]
		}
	}
	if idx := strings.Index(filename, "."); idx > 0 {
		return filename[:idx], filename[idx:]
	}
	return filename, ""
}

// NumberedCandidate inserts "(n)" immediately before the extension
// boundary of filename: ("report.tar.gz", 2) -> "report(2).tar.gz".
func NumberedCandidate(filename string, n int) string {
	stem, ext := SplitExtension(filename)
	return fmt.Sprintf("%s(%d)%s", stem, n, ext)
}

func normalize(name string) string {
	if name == "" {
		return None
	}
	return strings.ToLower(name)
}
