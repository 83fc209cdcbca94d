package selector

import "time"

// Kind tells which group the chosen branch came from.
type Kind string

const (
	KindMaster  Kind = "master"
	KindRelease Kind = "release"
	KindHotfix  Kind = "hotfix"
)

// Candidate is the current best branch to pull from. It is a value; every
// comparison step returns a new Candidate instead of changing one.
type Candidate struct {
	Branch string
	Kind   Kind
	SHA    string
	Date   time.Time
}

// Prefer returns other when it is strictly newer than c, and c otherwise.
func (c Candidate) Prefer(other Candidate) Candidate {
	if other.Date.After(c.Date) {
		return other
	}
	return c
}
