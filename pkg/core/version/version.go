// ============================================================================
// hermes - AI Command Gateway
// ============================================================================
//
// Package:     version
// Description: Central version information for the gateway
// License:     MIT
// ============================================================================

package version

import "fmt"

// Version constants for the gateway
const (
	// Gateway version
	Gateway = "1.0.0"

	// API version exposed under /api
	API = "v1"
)

// Build metadata, set via -ldflags at build time
var (
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// String returns the full version string including build metadata
func String() string {
	return fmt.Sprintf("hermes %s (commit %s, built %s)", Gateway, GitCommit, BuildDate)
}

// Short returns just the semantic version
func Short() string {
	return Gateway
}
