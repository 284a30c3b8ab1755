// Package cmd contains build-time variables injected via ldflags.
package cmd

import "fmt"

// Build-time variables set via ldflags, e.g.
//
//	-ldflags "-X github.com/thoreinstein/savekeep/cmd.Version=v1.2.0"
var (
	// Version is the semantic version of the build.
	Version = "dev"
	// Commit is the git commit SHA of the build.
	Commit = "none"
	// Date is the build date.
	Date = "unknown"
)

// Summary is a one-line description of the build.
func Summary() string {
	return fmt.Sprintf("savekeep %s (%s, %s)", Version, Commit, Date)
}
