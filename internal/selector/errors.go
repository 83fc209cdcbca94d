package selector

import "git.home.luguber.info/inful/pullfrom/internal/foundation/errors"

var (
	// ErrInvalidToken is returned when no access token was supplied.
	ErrInvalidToken = errors.AuthError("invalid api token").Build()

	// ErrRepositoryUnavailable is returned when the repository or its branch
	// listing cannot be read.
	ErrRepositoryUnavailable = errors.NotFoundError("repository not found or not available").Build()

	// ErrNoRecentActivity is returned when master has no commit inside the window.
	ErrNoRecentActivity = errors.SelectionError("no recent activity on master").Build()
)
