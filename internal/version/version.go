// Package version holds the build version for curator.
package version

import "runtime/debug"

// Version and Commit are set at build time via -ldflags.
var (
	Version = "dev"
	Commit  = ""
)

// FullVersion returns "vX.Y.Z (commit <sha>)", or the bare version when no
// commit was stamped. A dev build installed with `go install mod@vX` reports
// the module version from the build info.
func FullVersion() string {
	v := Version
	if v == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
			v = info.Main.Version
		}
	}
	if Commit != "" {
		return v + " (commit " + Commit + ")"
	}
	return v
}
