// Package version exposes build metadata injected at link time.
package version

// Set with -ldflags "-X github.com/farcloser/tonematch/version.version=...".
//
//nolint:gochecknoglobals // link-time variables
var (
	name    = "tonematch"
	version = "dev"
	commit  = "unknown"
)

// Name returns the application name.
func Name() string {
	return name
}

// Version returns the release version.
func Version() string {
	return version
}

// Commit returns the VCS revision the binary was built from.
func Commit() string {
	return commit
}
