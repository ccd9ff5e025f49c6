// Package loader turns validated algorithm names into ready codec handles.
// It tries the optimized ("native") build of each algorithm first and falls
// back to the pure-Go implementation when that build is unavailable on the
// current target. Handles are memoized for the process lifetime.
package loader

import (
	"errors"
	"fmt"
	"sync"

	"github.com/go-logr/logr"

	"packpipe/pkg/codec"
	"packpipe/pkg/platform"
	"packpipe/pkg/registry"
)

// Impl tags which implementation a handle resolved to.
type Impl int

const (
	// ImplNative is the optimized build for this target.
	ImplNative Impl = iota
	// ImplFallback is the pure-software implementation.
	ImplFallback
)

func (i Impl) String() string {
	if i == ImplNative {
		return "native"
	}
	return "fallback"
}

// errNativeUnavailable signals that an algorithm ships no optimized build
// for the current target. The loader treats it as an expected condition.
var errNativeUnavailable = errors.New("no native build for this target")

// LoadFailure is returned when both the native and the fallback
// implementation of an algorithm failed to instantiate.
type LoadFailure struct {
	Name        string
	Kind        registry.Kind
	NativeErr   error
	FallbackErr error
}

func (e *LoadFailure) Error() string {
	return fmt.Sprintf("load %s %s: native: %v, fallback: %v", e.Kind, e.Name, e.NativeErr, e.FallbackErr)
}

func (e *LoadFailure) Unwrap() error { return e.FallbackErr }

// Handle is a resolved codec instance. Exactly one of Compressor/Archiver
// is non-nil, matching the kind it was requested for.
type Handle struct {
	Name string
	Kind registry.Kind
	Impl Impl

	compressor codec.Compressor
	archiver   codec.Archiver
}

// Compressor returns the resolved compressor, or nil for archive handles.
func (h *Handle) Compressor() codec.Compressor { return h.compressor }

// Archiver returns the resolved archiver, or nil for compression handles.
func (h *Handle) Archiver() codec.Archiver { return h.archiver }

type compressorCtors struct {
	native   func(target platform.Platform) (codec.Compressor, error)
	fallback func(target platform.Platform) (codec.Compressor, error)
}

type archiverCtors struct {
	native   func(target platform.Platform) (codec.Archiver, error)
	fallback func(target platform.Platform) (codec.Archiver, error)
}

type cacheKey struct {
	name string
	kind registry.Kind
}

type cacheEntry struct {
	once   sync.Once
	handle *Handle
	err    error
}

// Loader resolves and caches codec handles for one registry/platform pair.
type Loader struct {
	reg *registry.Registry
	log logr.Logger

	compressors map[string]compressorCtors
	archivers   map[string]archiverCtors

	mu    sync.Mutex
	cache map[cacheKey]*cacheEntry
}

// New builds a loader over the given registry.
func New(reg *registry.Registry, log logr.Logger) *Loader {
	return &Loader{
		reg:         reg,
		log:         log,
		compressors: builtinCompressors(),
		archivers:   builtinArchivers(),
		cache:       map[cacheKey]*cacheEntry{},
	}
}

// Get resolves the named algorithm of the given kind. Concurrent calls for
// the same key share a single initialization; unrelated keys never block
// each other.
func (l *Loader) Get(name string, kind registry.Kind) (*Handle, error) {
	key := cacheKey{name: name, kind: kind}

	l.mu.Lock()
	e, ok := l.cache[key]
	if !ok {
		e = &cacheEntry{}
		l.cache[key] = e
	}
	l.mu.Unlock()

	e.once.Do(func() {
		e.handle, e.err = l.resolve(name, kind)
	})
	return e.handle, e.err
}

// Reload drops the cached handle for name (all handles when name is empty)
// so the next Get re-instantiates, e.g. after recovering from a corrupted
// instance.
func (l *Loader) Reload(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if name == "" {
		l.cache = map[cacheKey]*cacheEntry{}
		return
	}
	for key := range l.cache {
		if key.name == name {
			delete(l.cache, key)
		}
	}
}

func (l *Loader) resolve(name string, kind registry.Kind) (*Handle, error) {
	target := l.reg.Platform()

	switch kind {
	case registry.KindCompression:
		ctors, ok := l.compressors[name]
		if !ok {
			return nil, fmt.Errorf("no implementation registered for compression %q", name)
		}
		c, err := ctors.native(target)
		if err == nil {
			return &Handle{Name: name, Kind: kind, Impl: ImplNative, compressor: c}, nil
		}
		if !errors.Is(err, errNativeUnavailable) {
			l.log.Info("native codec failed to load, using fallback", "algorithm", name, "error", err.Error())
		} else {
			l.log.V(1).Info("no native codec for target, using fallback", "algorithm", name, "target", target.String())
		}
		nativeErr := err
		c, err = ctors.fallback(target)
		if err != nil {
			return nil, &LoadFailure{Name: name, Kind: kind, NativeErr: nativeErr, FallbackErr: err}
		}
		return &Handle{Name: name, Kind: kind, Impl: ImplFallback, compressor: c}, nil

	case registry.KindArchive:
		ctors, ok := l.archivers[name]
		if !ok {
			return nil, fmt.Errorf("no implementation registered for archive %q", name)
		}
		a, err := ctors.native(target)
		if err == nil {
			return &Handle{Name: name, Kind: kind, Impl: ImplNative, archiver: a}, nil
		}
		nativeErr := err
		l.log.V(1).Info("no native archiver for target, using fallback", "format", name, "target", target.String())
		a, err = ctors.fallback(target)
		if err != nil {
			return nil, &LoadFailure{Name: name, Kind: kind, NativeErr: nativeErr, FallbackErr: err}
		}
		return &Handle{Name: name, Kind: kind, Impl: ImplFallback, archiver: a}, nil
	}
	return nil, fmt.Errorf("unknown plugin kind %q", kind)
}

// builtinCompressors wires each advertised algorithm to its native and
// fallback constructors. Every algorithm the registry can advertise has a
// complete fallback here.
func builtinCompressors() map[string]compressorCtors {
	return map[string]compressorCtors{
		"gzip": {
			native: func(target platform.Platform) (codec.Compressor, error) {
				// The parallel gzip build is only shipped server-side.
				if target != platform.Server {
					return nil, errNativeUnavailable
				}
				return codec.NewGzipNative(), nil
			},
			fallback: func(platform.Platform) (codec.Compressor, error) {
				return codec.NewGzipFallback(), nil
			},
		},
		"brotli": {
			native: func(platform.Platform) (codec.Compressor, error) {
				return codec.NewBrotli(), nil
			},
			fallback: func(platform.Platform) (codec.Compressor, error) {
				return codec.NewBrotli(), nil
			},
		},
		"zip": {
			native: func(platform.Platform) (codec.Compressor, error) {
				return codec.NewZipCompNative(), nil
			},
			fallback: func(platform.Platform) (codec.Compressor, error) {
				return codec.NewZipCompFallback(), nil
			},
		},
		"zstd": {
			native: func(platform.Platform) (codec.Compressor, error) {
				return codec.NewZstd()
			},
			fallback: func(platform.Platform) (codec.Compressor, error) {
				return codec.NewZstd()
			},
		},
		"lz4": {
			native: func(platform.Platform) (codec.Compressor, error) {
				return codec.NewLZ4(), nil
			},
			fallback: func(platform.Platform) (codec.Compressor, error) {
				return codec.NewLZ4(), nil
			},
		},
	}
}

func builtinArchivers() map[string]archiverCtors {
	return map[string]archiverCtors{
		"zip": {
			native: func(platform.Platform) (codec.Archiver, error) {
				return codec.NewZipArchive(), nil
			},
			fallback: func(platform.Platform) (codec.Archiver, error) {
				return codec.NewZipArchive(), nil
			},
		},
		"tar": {
			native: func(platform.Platform) (codec.Archiver, error) {
				return codec.NewTarArchive(), nil
			},
			fallback: func(platform.Platform) (codec.Archiver, error) {
				return codec.NewTarArchive(), nil
			},
		},
	}
}
