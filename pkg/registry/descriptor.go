package registry

// Kind separates the two plugin families.
type Kind string

const (
	KindCompression Kind = "compression"
	KindArchive     Kind = "archive"
)

// PlatformAny marks a descriptor as loadable on every execution target.
const PlatformAny = "any"

// LevelRange is the inclusive compression-level window of one algorithm.
type LevelRange struct {
	Min     int `json:"min"`
	Max     int `json:"max"`
	Default int `json:"default"`
}

// Contains reports whether level falls inside the range.
func (r LevelRange) Contains(level int) bool {
	return level >= r.Min && level <= r.Max
}

// PluginDescriptor describes one codec or archive plugin. Descriptors are
// created at build time in the manifest, loaded read-only at startup and
// never mutated afterwards.
type PluginDescriptor struct {
	Name                string      `json:"name"`
	Kind                Kind        `json:"kind"`
	Version             string      `json:"version"`
	SupportedExtensions []string    `json:"extensions"`
	LevelRange          *LevelRange `json:"levels,omitempty"`
	TargetPlatform      string      `json:"platform"`
}

// AppliesTo reports whether the descriptor is usable on the given target.
func (d *PluginDescriptor) AppliesTo(target string) bool {
	return d.TargetPlatform == PlatformAny || d.TargetPlatform == target
}
