// Package version exposes build metadata stamped by the release pipeline
// via -ldflags, logged once at startup.
package version

//nolint:revive // Overwritten by ldflags at build time.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)
