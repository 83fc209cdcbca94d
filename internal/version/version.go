// Package version carries build metadata injected with -ldflags, e.g.
//
//	go build -ldflags "-X git.home.luguber.info/inful/pullfrom/internal/version.Version=v1.2.0"
package version

import "fmt"

var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

// String is printed by --version.
func String() string {
	return fmt.Sprintf("pullfrom %s (commit %s, built %s)", Version, GitCommit, BuildTime)
}

// UserAgent is sent with every forge API request.
func UserAgent() string {
	return "pullfrom/" + Version
}
