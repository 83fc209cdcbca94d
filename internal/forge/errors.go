package forge

import (
	"git.home.luguber.info/inful/pullfrom/internal/foundation/errors"
)

var (
	// ErrNoCommits signals that a branch has no commit matching the query.
	ErrNoCommits = errors.ForgeError("no qualifying commits on branch").Warning().Build()

	// ErrAuthRequired signals that a client was built without a token.
	ErrAuthRequired = errors.AuthError("invalid api token").Build()
)
