// Package version reports build metadata for the snaplabel binaries.
package version

import "runtime/debug"

// Set at build time via -ldflags "-X github.com/saransh1220/snaplabel/internal/shared/version.version=...".
var (
	version = ""
	commit  = ""
	date    = ""
)

// Version returns the release version.
// Priority: ldflags > debug.ReadBuildInfo > "(devel)"
func Version() string {
	if version != "" {
		return version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "(devel)"
}

// Commit returns the short VCS revision, or "unknown".
func Commit() string {
	if commit != "" {
		return commit
	}
	if rev := setting("vcs.revision"); rev != "" {
		if len(rev) > 7 {
			return rev[:7]
		}
		return rev
	}
	return "unknown"
}

// Date returns the build or commit time, or "unknown".
func Date() string {
	if date != "" {
		return date
	}
	if t := setting("vcs.time"); t != "" {
		return t
	}
	return "unknown"
}

func setting(key string) string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, s := range info.Settings {
		if s.Key == key {
			return s.Value
		}
	}
	return ""
}
