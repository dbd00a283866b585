// Package version holds build information set via -ldflags.
package version

// Build information. Overridden at link time:
//
//	go build -ldflags "-X postcode_lookup/internal/version.Version=v1.2.0 -X postcode_lookup/internal/version.Commit=abc123"
var (
	Version = "dev"
	Commit  = "none"
)
