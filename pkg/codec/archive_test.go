package codec

import (
	"bytes"
	"testing"
)

func sampleFiles() []FileRecord {
	return []FileRecord{
		{Name: "a.txt", Data: []byte("alpha contents")},
		{Name: "b.json", Data: []byte(`{"beta":true}`)},
		{Name: "empty.bin", Data: []byte{}},
	}
}

func TestArchiverRoundTrip(t *testing.T) {
	for _, a := range []Archiver{NewZipArchive(), NewTarArchive()} {
		for _, compressInside := range []bool{false, true} {
			files := sampleFiles()
			packed, err := a.Pack(files, PackOptions{CompressInside: compressInside, Level: 6})
			if err != nil {
				t.Fatalf("%s pack: %v", a.Name(), err)
			}
			out, err := a.Unpack(packed)
			if err != nil {
				t.Fatalf("%s unpack: %v", a.Name(), err)
			}
			if len(out) != len(files) {
				t.Fatalf("%s: got %d entries, want %d", a.Name(), len(out), len(files))
			}
			for i, f := range files {
				if out[i].Name != f.Name {
					t.Errorf("%s entry %d: name %q, want %q (order must be preserved)", a.Name(), i, out[i].Name, f.Name)
				}
				if !bytes.Equal(out[i].Data, f.Data) {
					t.Errorf("%s entry %s: content mismatch", a.Name(), f.Name)
				}
			}
		}
	}
}

func TestZipArchiveStoresRawByDefault(t *testing.T) {
	files := []FileRecord{{Name: "raw.txt", Data: []byte("visible when stored")}}
	packed, err := NewZipArchive().Pack(files, PackOptions{})
	if err != nil {
		t.Fatalf("pack: %v", err)
	}
	if !bytes.Contains(packed, files[0].Data) {
		t.Fatal("default pack should store entries uncompressed")
	}
}

func TestUnpackGarbage(t *testing.T) {
	for _, a := range []Archiver{NewZipArchive()} {
		if _, err := a.Unpack([]byte("not an archive at all")); err == nil {
			t.Errorf("%s: expected error for garbage input", a.Name())
		}
	}
}
