package forge

import "time"

// Repository is the subset of repository metadata pullfrom reads.
type Repository struct {
	FullName      string `json:"full_name"`
	DefaultBranch string `json:"default_branch"`
	Private       bool   `json:"private"`
	HTMLURL       string `json:"html_url"`
}

// Branch is one entry of the branch listing.
type Branch struct {
	Name   string    `json:"name"`
	Commit CommitRef `json:"commit"`
}

// CommitRef points at a commit resource.
type CommitRef struct {
	SHA string `json:"sha"`
	URL string `json:"url"`
}

// Commit is a commit with its committer time, always in UTC.
type Commit struct {
	SHA         string
	URL         string
	CommittedAt time.Time
}

// githubCommit is the commit detail document returned by the commit URL.
type githubCommit struct {
	SHA    string `json:"sha"`
	URL    string `json:"url"`
	Commit struct {
		Committer struct {
			Name  string    `json:"name"`
			Email string    `json:"email"`
			Date  time.Time `json:"date"`
		} `json:"committer"`
	} `json:"commit"`
}

// BranchNames returns the names of branches in listing order.
func BranchNames(branches []Branch) []string {
	names := make([]string, 0, len(branches))
	for _, b := range branches {
		names = append(names, b.Name)
	}
	return names
}
