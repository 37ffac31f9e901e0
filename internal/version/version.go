// Package version exposes the build identity of the recitevault binary.
package version

// Stamped by the release build via
// -ldflags "-X .../internal/version.Version=...". A source build reports
// the defaults.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)
