package platform

import "testing"

func TestDetect(t *testing.T) {
	cases := []struct {
		name     string
		override string
		goos     string
		goarch   string
		want     Platform
	}{
		{"linux defaults to server", "", "linux", "amd64", Server},
		{"darwin defaults to server", "", "darwin", "arm64", Server},
		{"wasm defaults to browser", "", "js", "wasm", Browser},
		{"override bundler", "bundler", "js", "wasm", Bundler},
		{"override server wins over wasm", "server", "js", "wasm", Server},
		{"bogus override ignored", "mainframe", "linux", "amd64", Server},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := detect(tc.override, tc.goos, tc.goarch); got != tc.want {
				t.Fatalf("detect(%q, %q, %q) = %q, want %q", tc.override, tc.goos, tc.goarch, got, tc.want)
			}
		})
	}
}

func TestValid(t *testing.T) {
	for _, p := range []Platform{Server, Browser, Bundler} {
		if !p.Valid() {
			t.Errorf("%q should be valid", p)
		}
	}
	if Platform("desktop").Valid() {
		t.Error("unknown platform should not be valid")
	}
}
