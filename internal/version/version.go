// Package version holds lexrag build metadata injected via ldflags:
//
//	-X github.com/kailas-cloud/lexrag/internal/version.Version=v1.2.0
package version

//nolint:revive // Set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)
