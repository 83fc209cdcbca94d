package selector

import (
	"slices"
	"strings"
)

// Classification partitions branch names by naming convention.
type Classification struct {
	HasMaster bool
	Releases  []string
	Hotfixes  []string
}

// Patterns names the master branch and the release/hotfix markers.
type Patterns struct {
	Master        string
	ReleaseMarker string
	HotfixMarker  string
}

// DefaultPatterns matches master, release/* and hotfix/*.
func DefaultPatterns() Patterns {
	return Patterns{Master: "master", ReleaseMarker: "release/", HotfixMarker: "hotfix/"}
}

// Classify splits names into master, release and hotfix groups. A name is a
// release or hotfix branch when it contains the marker anywhere, so
// "team/release/1.0" counts as a release. Listing order is preserved.
func Classify(names []string, p Patterns) Classification {
	var c Classification
	for _, name := range names {
		if name == p.Master {
			c.HasMaster = true
		}
		if strings.Contains(name, p.ReleaseMarker) {
			c.Releases = append(c.Releases, name)
		}
		if strings.Contains(name, p.HotfixMarker) {
			c.Hotfixes = append(c.Hotfixes, name)
		}
	}
	return c
}

// Latest returns the lexicographically greatest name. This is plain string
// order: "release/10.0" sorts before "release/9.0".
func Latest(names []string) (string, bool) {
	if len(names) == 0 {
		return "", false
	}
	return slices.Max(names), true
}
