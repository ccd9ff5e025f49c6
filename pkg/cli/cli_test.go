package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/go-logr/logr"
	"github.com/mandelsoft/vfs/pkg/memoryfs"
	"github.com/mandelsoft/vfs/pkg/vfs"

	"packpipe/pkg/registry"
)

func testRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	reg, err := registry.New()
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	return reg
}

func TestCompressDecompressRoundTrip(t *testing.T) {
	ctx := context.Background()
	log := logr.Discard()
	reg := testRegistry(t)
	fs := memoryfs.New()

	content := bytes.Repeat([]byte("round trip through the commands "), 64)
	if err := vfs.WriteFile(fs, "notes.txt", content, 0o644); err != nil {
		t.Fatal(err)
	}

	comp := &CompressOptions{
		Inputs: []string{"notes.txt"},
		Algo:   "gzip",
		JSON:   true,
	}
	if err := comp.Run(ctx, log, reg, fs); err != nil {
		t.Fatalf("compress: %v", err)
	}
	if ok, _ := vfs.FileExists(fs, "notes.txt.gz"); !ok {
		t.Fatal("expected derived output notes.txt.gz")
	}

	dec := &DecompressOptions{
		Input:     "notes.txt.gz",
		OutputDir: "out",
		JSON:      true,
	}
	if err := dec.Run(ctx, log, reg, fs); err != nil {
		t.Fatalf("decompress: %v", err)
	}
	restored, err := vfs.ReadFile(fs, "out/notes.txt")
	if err != nil {
		t.Fatalf("read restored file: %v", err)
	}
	if !bytes.Equal(restored, content) {
		t.Error("restored content differs from the original")
	}
}

func TestCompressMultipleFilesDefaultsToZip(t *testing.T) {
	ctx := context.Background()
	log := logr.Discard()
	reg := testRegistry(t)
	fs := memoryfs.New()

	inputs := map[string][]byte{
		"a.txt": []byte("first file"),
		"b.txt": bytes.Repeat([]byte("second file "), 32),
	}
	for name, data := range inputs {
		if err := vfs.WriteFile(fs, name, data, 0o644); err != nil {
			t.Fatal(err)
		}
	}

	comp := &CompressOptions{
		Inputs: []string{"a.txt", "b.txt"},
		Algo:   "brotli",
		Output: "bundle.zip.br",
		JSON:   true,
	}
	if err := comp.Run(ctx, log, reg, fs); err != nil {
		t.Fatalf("compress: %v", err)
	}

	dec := &DecompressOptions{
		Input:     "bundle.zip.br",
		OutputDir: "out",
		JSON:      true,
	}
	if err := dec.Run(ctx, log, reg, fs); err != nil {
		t.Fatalf("decompress: %v", err)
	}
	for name, want := range inputs {
		got, err := vfs.ReadFile(fs, "out/"+name)
		if err != nil {
			t.Fatalf("read out/%s: %v", name, err)
		}
		if !bytes.Equal(got, want) {
			t.Errorf("out/%s differs from the original", name)
		}
	}
}

func TestDecompressKeepsBothOnConflict(t *testing.T) {
	ctx := context.Background()
	log := logr.Discard()
	reg := testRegistry(t)
	fs := memoryfs.New()

	original := []byte("payload")
	if err := vfs.WriteFile(fs, "data.txt", original, 0o644); err != nil {
		t.Fatal(err)
	}
	comp := &CompressOptions{Inputs: []string{"data.txt"}, Algo: "gzip", JSON: true}
	if err := comp.Run(ctx, log, reg, fs); err != nil {
		t.Fatalf("compress: %v", err)
	}

	// Pre-existing file with other content must survive a keep-both restore.
	if err := fs.MkdirAll("out", 0o755); err != nil {
		t.Fatal(err)
	}
	if err := vfs.WriteFile(fs, "out/data.txt", []byte("keep me"), 0o644); err != nil {
		t.Fatal(err)
	}
	dec := &DecompressOptions{
		Input:      "data.txt.gz",
		OutputDir:  "out",
		OnConflict: "keep-both",
		JSON:       true,
	}
	if err := dec.Run(ctx, log, reg, fs); err != nil {
		t.Fatalf("decompress: %v", err)
	}

	kept, err := vfs.ReadFile(fs, "out/data.txt")
	if err != nil {
		t.Fatal(err)
	}
	if string(kept) != "keep me" {
		t.Error("existing file was overwritten under keep-both")
	}
	renamed, err := vfs.ReadFile(fs, "out/data(1).txt")
	if err != nil {
		t.Fatalf("read renamed copy: %v", err)
	}
	if !bytes.Equal(renamed, original) {
		t.Error("renamed copy differs from the original")
	}
}

func TestDecompressRejectsUnknownPolicy(t *testing.T) {
	dec := &DecompressOptions{Input: "x.gz", OnConflict: "overwrite-always"}
	err := dec.Run(context.Background(), logr.Discard(), testRegistry(t), memoryfs.New())
	if err == nil {
		t.Fatal("expected an error for an unknown conflict policy")
	}
}

func TestDecompressRequiresInferableAlgorithm(t *testing.T) {
	fs := memoryfs.New()
	if err := vfs.WriteFile(fs, "blob.unknownext", []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	dec := &DecompressOptions{Input: "blob.unknownext"}
	err := dec.Run(context.Background(), logr.Discard(), testRegistry(t), fs)
	if err == nil {
		t.Fatal("expected an error when the algorithm cannot be inferred")
	}
}
