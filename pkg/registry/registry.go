// Package registry answers capability questions: which compression
// algorithms and archive formats are available on the current execution
// target, and which algorithm a file extension maps to.
//
// A Registry is constructed explicitly and injected where needed; there is
// no package-level singleton. Reads go through an immutable snapshot and
// need no locking; Reload swaps the snapshot atomically.
package registry

import (
	"sort"
	"sync"
	"sync/atomic"

	"packpipe/pkg/platform"
)

// Registry holds the plugin capability tables for one execution target.
type Registry struct {
	target platform.Platform

	reloadMu sync.Mutex
	snap     atomic.Pointer[snapshot]
}

type snapshot struct {
	compressionByName map[string]*PluginDescriptor
	archiveByName     map[string]*PluginDescriptor
	compressionByExt  map[string]string
	archiveByExt      map[string]string

	// Names known on at least one platform, used to tell "no such
	// algorithm" apart from "not available here".
	knownCompression map[string]bool
	knownArchive     map[string]bool
}

// New builds a registry for the auto-detected platform.
func New() (*Registry, error) {
	return NewForPlatform(platform.Detect())
}

// NewForPlatform builds a registry for an explicit platform, mainly so
// tests can exercise browser/bundler behavior on a server host.
func NewForPlatform(target platform.Platform) (*Registry, error) {
	r := &Registry{target: target}
	if err := r.Reload(); err != nil {
		return nil, err
	}
	return r, nil
}

// Platform returns the execution target this registry was built for.
func (r *Registry) Platform() platform.Platform {
	return r.target
}

// Reload clears and rebuilds the capability tables from the manifest.
// Concurrent Reload calls serialize; readers keep working against the
// previous snapshot until the swap.
func (r *Registry) Reload() error {
	r.reloadMu.Lock()
	defer r.reloadMu.Unlock()

	m, err := loadManifest()
	if err != nil {
		return err
	}

	s := &snapshot{
		compressionByName: map[string]*PluginDescriptor{},
		archiveByName:     map[string]*PluginDescriptor{},
		compressionByExt:  map[string]string{},
		archiveByExt:      map[string]string{},
		knownCompression:  map[string]bool{},
		knownArchive:      map[string]bool{},
	}
	for i := range m.Plugins {
		d := &m.Plugins[i]
		switch d.Kind {
		case KindCompression:
			s.knownCompression[d.Name] = true
			if !d.AppliesTo(r.target.String()) {
				continue
			}
			s.compressionByName[d.Name] = d
			for _, ext := range d.SupportedExtensions {
				s.compressionByExt[ext] = d.Name
			}
		case KindArchive:
			s.knownArchive[d.Name] = true
			if !d.AppliesTo(r.target.String()) {
				continue
			}
			s.archiveByName[d.Name] = d
			for _, ext := range d.SupportedExtensions {
				s.archiveByExt[ext] = d.Name
			}
		}
	}
	r.snap.Store(s)
	return nil
}

// IsCompressionSupported reports whether the named algorithm is available
// on this registry's platform.
func (r *Registry) IsCompressionSupported(name string) bool {
	_, ok := r.snap.Load().compressionByName[name]
	return ok
}

// IsArchiveSupported reports whether the named archive format is available
// on this registry's platform.
func (r *Registry) IsArchiveSupported(name string) bool {
	_, ok := r.snap.Load().archiveByName[name]
	return ok
}

// IsKnownCompression reports whether the algorithm exists for any platform,
// even if not this one.
func (r *Registry) IsKnownCompression(name string) bool {
	return r.snap.Load().knownCompression[name]
}

// IsKnownArchive reports whether the archive format exists for any platform.
func (r *Registry) IsKnownArchive(name string) bool {
	return r.snap.Load().knownArchive[name]
}

// AlgorithmForExtension maps a bare extension (no leading dot) to a
// compression algorithm name, or "" when unknown.
func (r *Registry) AlgorithmForExtension(ext string) string {
	return r.snap.Load().compressionByExt[ext]
}

// ArchiveForExtension maps a bare extension to an archive format name,
// or "" when unknown.
func (r *Registry) ArchiveForExtension(ext string) string {
	return r.snap.Load().archiveByExt[ext]
}

// Describe returns the descriptor for a supported plugin, or nil.
func (r *Registry) Describe(name string, kind Kind) *PluginDescriptor {
	s := r.snap.Load()
	switch kind {
	case KindCompression:
		return s.compressionByName[name]
	case KindArchive:
		return s.archiveByName[name]
	}
	return nil
}

// Compressions returns the sorted names of the supported compression
// algorithms, for error hints and CLI help.
func (r *Registry) Compressions() []string {
	return sortedKeys(r.snap.Load().compressionByName)
}

// Archives returns the sorted names of the supported archive formats.
func (r *Registry) Archives() []string {
	return sortedKeys(r.snap.Load().archiveByName)
}

func sortedKeys(m map[string]*PluginDescriptor) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
