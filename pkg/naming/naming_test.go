package naming

import (
	"testing"
	"time"
)

func TestComposeExtension(t *testing.T) {
	cases := []struct {
		archive     string
		compression string
		want        string
	}{
		{"tar", "gzip", ".tar.gz"},
		{"tar", "brotli", ".tar.br"},
		{"tar", "zstd", ".tar.zst"},
		{"zip", "brotli", ".zip.br"},
		{"zip", "gzip", ".zip.gz"},
		{"zip", "zip", ".zip.zip"},
		{"none", "gzip", ".gz"},
		{"none", "brotli", ".br"},
		{"none", "zip", ".zip"},
		{"", "lz4", ".lz4"},
		{"zip", "none", ".zip"},
		{"tar", "", ".tar"},
		{"none", "none", ""},
		{"cabinet", "rot13", ""},
	}
	for _, tc := range cases {
		if got := ComposeExtension(tc.archive, tc.compression); got != tc.want {
			t.Errorf("ComposeExtension(%q, %q) = %q, want %q", tc.archive, tc.compression, got, tc.want)
		}
	}
}

func TestParseExtension(t *testing.T) {
	cases := []struct {
		filename string
		want     Parsed
	}{
		{"report.tar.gz", Parsed{"report", "tar", "gzip"}},
		{"report.tgz", Parsed{"report", "tar", "gzip"}},
		{"bundle.zip.br", Parsed{"bundle", "zip", "brotli"}},
		{"bundle.zip.zip", Parsed{"bundle", "zip", "zip"}},
		{"dump.tar.zst", Parsed{"dump", "tar", "zstd"}},
		{"notes.gz", Parsed{"notes", "none", "gzip"}},
		{"notes.br", Parsed{"notes", "none", "brotli"}},
		// A bare .zip is always the archive, never zip-as-compression.
		{"photos.zip", Parsed{"photos", "zip", "none"}},
		{"layers.tar", Parsed{"layers", "tar", "none"}},
		{"UPPER.TAR.GZ", Parsed{"UPPER", "tar", "gzip"}},
		// Unknown suffixes stay on the base name.
		{"readme.txt", Parsed{"readme.txt", "none", "none"}},
		{"noext", Parsed{"noext", "none", "none"}},
		{".gz", Parsed{".gz", "none", "none"}},
		// Longest suffix wins over the inner .tar match.
		{"a.b.tar.gz", Parsed{"a.b", "tar", "gzip"}},
	}
	for _, tc := range cases {
		if got := ParseExtension(tc.filename); got != tc.want {
			t.Errorf("ParseExtension(%q) = %+v, want %+v", tc.filename, got, tc.want)
		}
	}
}

func TestSmartFilename(t *testing.T) {
	got := SmartFilename("backup", NameOptions{Archive: "tar", Compression: "gzip"})
	if got != "backup.tar.gz" {
		t.Errorf("SmartFilename = %q, want backup.tar.gz", got)
	}

	clock := func() time.Time {
		return time.Date(2024, 5, 17, 9, 30, 0, 0, time.UTC)
	}
	got = SmartFilename("backup", NameOptions{Archive: "zip", Compression: "brotli", Timestamp: true, Now: clock})
	if got != "backup-20240517-093000.zip.br" {
		t.Errorf("SmartFilename with timestamp = %q", got)
	}
}

// Every pair the registry can advertise must round-trip, with one
// documented exception: compression zip without an archive parses back as
// the zip archive.
func TestExtensionRoundTrip(t *testing.T) {
	archives := []string{"none", "zip", "tar"}
	compressions := []string{"none", "gzip", "brotli", "zip", "zstd", "lz4"}

	for _, ar := range archives {
		for _, comp := range compressions {
			if ar == "none" && comp == "none" {
				continue
			}
			name := SmartFilename("data", NameOptions{Archive: ar, Compression: comp})
			parsed := ParseExtension(name)

			wantArchive, wantCompression := ar, comp
			if ar == "none" && comp == "zip" {
				wantArchive, wantCompression = "zip", "none"
			}
			if parsed.BaseName != "data" || parsed.Archive != wantArchive || parsed.Compression != wantCompression {
				t.Errorf("round trip (%s, %s): name %q parsed to %+v", ar, comp, name, parsed)
			}
		}
	}
}

func TestNumberedCandidate(t *testing.T) {
	cases := []struct {
		filename string
		n        int
		want     string
	}{
		{"report.tar.gz", 1, "report(1).tar.gz"},
		{"report.tar.gz", 2, "report(2).tar.gz"},
		{"photos.zip", 1, "photos(1).zip"},
		{"notes.txt", 3, "notes(3).txt"},
		{"report.backup.txt", 1, "report(1).backup.txt"},
		{"plain", 1, "plain(1)"},
	}
	for _, tc := range cases {
		if got := NumberedCandidate(tc.filename, tc.n); got != tc.want {
			t.Errorf("NumberedCandidate(%q, %d) = %q, want %q", tc.filename, tc.n, got, tc.want)
		}
	}
}
