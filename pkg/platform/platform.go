// Package platform detects the execution target the process runs under.
// The same algorithm name may resolve to different implementations per
// target, so the registry and loader key their decisions on this value.
package platform

import (
	"os"
	"runtime"
	"sync"
)

// Platform identifies an execution target.
type Platform string

const (
	// Server is an ordinary server-side runtime.
	Server Platform = "server"
	// Browser is a js/wasm runtime driven directly by a browser host.
	Browser Platform = "browser"
	// Bundler is a js/wasm runtime packaged by a bundler toolchain.
	Bundler Platform = "bundler"
)

// OverrideEnvVar forces the detected platform, mainly for embedders and
// bundler builds that cannot be told apart from a browser at runtime.
const OverrideEnvVar = "PACKPIPE_PLATFORM"

var (
	detectOnce sync.Once
	detected   Platform
)

// Valid reports whether p names one of the known targets.
func (p Platform) Valid() bool {
	switch p {
	case Server, Browser, Bundler:
		return true
	}
	return false
}

func (p Platform) String() string {
	return string(p)
}

// Detect returns the platform of the current process. The result is
// computed once and cached for the process lifetime.
func Detect() Platform {
	detectOnce.Do(func() {
		detected = detect(os.Getenv(OverrideEnvVar), runtime.GOOS, runtime.GOARCH)
	})
	return detected
}

func detect(override, goos, goarch string) Platform {
	if p := Platform(override); p.Valid() {
		return p
	}
	if goos == "js" && goarch == "wasm" {
		return Browser
	}
	return Server
}
