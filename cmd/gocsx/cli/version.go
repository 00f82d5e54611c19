package cli

import "github.com/willibrandon/gocsx/cmd/gocsx/version"

// GetVersion returns the version string.
func GetVersion() string {
	return version.Version
}

// GetFullVersion returns detailed version information
func GetFullVersion() string {
	return "gocsx version " + version.Version + "\n" +
		"commit: " + version.Commit + "\n" +
		"built: " + version.Date + "\n" +
		"go: " + version.GoVersion
}
