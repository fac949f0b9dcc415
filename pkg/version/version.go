// Package version reports the gitupdater build version.
package version

import "runtime/debug"

// Set at build time with -ldflags "-X github.com/rshade/gitupdater/pkg/version.version=v1.2.3".
//
//nolint:gochecknoglobals // Overwritten by the linker.
var (
	version = ""
	commit  = ""
)

const devVersion = "dev"

// GetVersion returns the release version, the module version recorded in
// the build info, or "dev".
func GetVersion() string {
	if version != "" {
		return version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return devVersion
}

// GetCommit returns the git commit the binary was built from, if known.
func GetCommit() string {
	if commit != "" {
		return commit
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, s := range info.Settings {
			if s.Key == "vcs.revision" {
				return s.Value
			}
		}
	}
	return ""
}
