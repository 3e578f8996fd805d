// Package version holds build metadata set through -ldflags.
package version

// Version is the CLI version reported to the backend.
var Version = "0.0.0-dev"
