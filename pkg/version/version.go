// Package version carries build metadata stamped in via -ldflags.
package version

import "runtime/debug"

// Version is the semantic version of the bugtrail binary. Overridden at
// build time with -ldflags "-X .../pkg/version.Version=v1.2.3".
var Version = "dev"

// Commit is the Git hash the binary was built from.
var Commit = "<unknown>"

// String returns the version with commit hash when available.
func String() string {
	v := Version
	if v == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
			v = info.Main.Version
		}
	}

	if Commit == "<unknown>" {
		return v
	}

	return v + " (" + Commit + ")"
}
