// Package repository turns user-supplied repository identifiers into the
// bare owner/name form used by the forge API.
package repository

import (
	"regexp"
	"strings"

	"git.home.luguber.info/inful/pullfrom/internal/foundation/errors"
)

// ErrInvalidRepository is returned for input that is empty or has no owner/name shape.
var ErrInvalidRepository = errors.ConfigError("invalid repository").Build()

// refPattern accepts owner/name optionally followed by .git and preceded by
// a host. After a scheme or user@ prefix any host name is accepted; a bare
// "host/owner/name" needs a dotted host or localhost. Owners never contain
// dots, which keeps "host/owner" from being read as "owner/name" when the
// repository segment is missing.
var refPattern = regexp.MustCompile(
	`^(?:` +
		`(?:(?:ssh|git|https?)://(?:[\w.-]+@)?|[\w.-]+@)[\w.-]+(?::\d+)?[:/]` +
		`|(?:[\w-]+(?:\.[\w-]+)+|localhost)(?::\d+)?[:/]` +
		`)?` +
		`([\w-]+)/([\w.-]+?)(?:\.git)?/?$`)

// RepositoryRef identifies a repository as owner/name.
type RepositoryRef struct {
	Owner string
	Name  string
}

// String returns the owner/name form.
func (r RepositoryRef) String() string {
	return r.Owner + "/" + r.Name
}

// Path returns the repository API path, e.g. "/repos/acme/api".
func (r RepositoryRef) Path() string {
	return "/repos/" + r.String()
}

// Normalize accepts "owner/name", "git@host:owner/name.git",
// "https://host/owner/name.git" and similar variants.
func Normalize(raw string) (RepositoryRef, error) {
	input := strings.TrimSpace(raw)
	if input == "" {
		return RepositoryRef{}, ErrInvalidRepository
	}

	m := refPattern.FindStringSubmatch(input)
	if m == nil || m[2] == "" || strings.Trim(m[2], ".") == "" {
		return RepositoryRef{}, ErrInvalidRepository.WithContext("input", raw)
	}
	return RepositoryRef{Owner: m[1], Name: m[2]}, nil
}
