package loader

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/go-logr/logr"

	"packpipe/pkg/codec"
	"packpipe/pkg/platform"
	"packpipe/pkg/registry"
)

func newLoader(t *testing.T, target platform.Platform) *Loader {
	t.Helper()
	reg, err := registry.NewForPlatform(target)
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	return New(reg, logr.Discard())
}

func TestGetResolvesNativeOnServer(t *testing.T) {
	l := newLoader(t, platform.Server)

	h, err := l.Get("gzip", registry.KindCompression)
	if err != nil {
		t.Fatalf("Get(gzip): %v", err)
	}
	if h.Impl != ImplNative {
		t.Errorf("gzip on server resolved to %s, want native", h.Impl)
	}
	if h.Compressor() == nil {
		t.Fatal("compression handle has nil compressor")
	}
	if h.Archiver() != nil {
		t.Error("compression handle should not carry an archiver")
	}
}

func TestGetFallsBackOffServer(t *testing.T) {
	l := newLoader(t, platform.Browser)

	h, err := l.Get("gzip", registry.KindCompression)
	if err != nil {
		t.Fatalf("Get(gzip): %v", err)
	}
	if h.Impl != ImplFallback {
		t.Errorf("gzip in browser resolved to %s, want fallback", h.Impl)
	}

	// The fallback must be functionally complete.
	data := []byte("fallback round trip")
	compressed, err := h.Compressor().Compress(data, 6)
	if err != nil {
		t.Fatalf("compress: %v", err)
	}
	out, err := h.Compressor().Decompress(compressed)
	if err != nil {
		t.Fatalf("decompress: %v", err)
	}
	if string(out) != string(data) {
		t.Fatal("fallback round trip mismatch")
	}
}

func TestGetMemoizes(t *testing.T) {
	l := newLoader(t, platform.Server)

	h1, err := l.Get("brotli", registry.KindCompression)
	if err != nil {
		t.Fatalf("first Get: %v", err)
	}
	h2, err := l.Get("brotli", registry.KindCompression)
	if err != nil {
		t.Fatalf("second Get: %v", err)
	}
	if h1 != h2 {
		t.Error("Get should return the cached handle")
	}

	l.Reload("brotli")
	h3, err := l.Get("brotli", registry.KindCompression)
	if err != nil {
		t.Fatalf("Get after Reload: %v", err)
	}
	if h3 == h1 {
		t.Error("Reload should force re-instantiation")
	}
}

func TestConcurrentGetInitializesOnce(t *testing.T) {
	l := newLoader(t, platform.Server)

	var calls atomic.Int32
	l.compressors["counted"] = compressorCtors{
		native: func(platform.Platform) (codec.Compressor, error) {
			calls.Add(1)
			return codec.NewGzipFallback(), nil
		},
		fallback: func(platform.Platform) (codec.Compressor, error) {
			return codec.NewGzipFallback(), nil
		},
	}

	var wg sync.WaitGroup
	handles := make([]*Handle, 16)
	for i := range handles {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			h, err := l.Get("counted", registry.KindCompression)
			if err != nil {
				t.Errorf("Get: %v", err)
				return
			}
			handles[i] = h
		}(i)
	}
	wg.Wait()

	if got := calls.Load(); got != 1 {
		t.Errorf("native constructor ran %d times, want 1", got)
	}
	for i := 1; i < len(handles); i++ {
		if handles[i] != handles[0] {
			t.Fatal("concurrent Gets returned different handles")
		}
	}
}

func TestLoadFailureWhenFallbackFails(t *testing.T) {
	l := newLoader(t, platform.Server)

	broken := errors.New("instantiation exploded")
	l.compressors["broken"] = compressorCtors{
		native: func(platform.Platform) (codec.Compressor, error) {
			return nil, broken
		},
		fallback: func(platform.Platform) (codec.Compressor, error) {
			return nil, broken
		},
	}

	_, err := l.Get("broken", registry.KindCompression)
	var lf *LoadFailure
	if !errors.As(err, &lf) {
		t.Fatalf("want LoadFailure, got %v", err)
	}
	if lf.Name != "broken" || !errors.Is(lf, broken) {
		t.Errorf("LoadFailure not populated: %+v", lf)
	}
}

func TestArchiveHandles(t *testing.T) {
	l := newLoader(t, platform.Server)
	for _, name := range []string{"zip", "tar"} {
		h, err := l.Get(name, registry.KindArchive)
		if err != nil {
			t.Fatalf("Get(%s): %v", name, err)
		}
		if h.Archiver() == nil {
			t.Errorf("%s: archive handle has nil archiver", name)
		}
		if h.Compressor() != nil {
			t.Errorf("%s: archive handle should not carry a compressor", name)
		}
	}
}

func TestUnknownAlgorithm(t *testing.T) {
	l := newLoader(t, platform.Server)
	if _, err := l.Get("zpaq", registry.KindCompression); err == nil {
		t.Fatal("expected error for unregistered algorithm")
	}
}
