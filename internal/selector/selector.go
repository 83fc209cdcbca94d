// Package selector decides which branch a deployment should pull from.
package selector

import (
	"context"
	stderrors "errors"
	"log/slog"
	"strings"
	"time"

	"git.home.luguber.info/inful/pullfrom/internal/forge"
	"git.home.luguber.info/inful/pullfrom/internal/foundation/errors"
	"git.home.luguber.info/inful/pullfrom/internal/logfields"
	"git.home.luguber.info/inful/pullfrom/internal/metrics"
	"git.home.luguber.info/inful/pullfrom/internal/repository"
)

// Forge is the subset of the forge API the selection needs.
type Forge interface {
	GetRepository(ctx context.Context, ref repository.RepositoryRef) (*forge.Repository, error)
	ListBranches(ctx context.Context, ref repository.RepositoryRef) ([]forge.Branch, error)
	LatestCommit(ctx context.Context, ref repository.RepositoryRef, branch string, since *time.Time) (*forge.Commit, error)
}

// ForgeFactory builds a Forge authenticated with token.
type ForgeFactory func(token string) (Forge, error)

// Observer is told about branch groups as soon as they are known.
type Observer interface {
	BranchesListed(names []string)
	ReleasesFound(names []string)
	HotfixesFound(names []string)
}

type nopObserver struct{}

func (nopObserver) BranchesListed([]string) {}
func (nopObserver) ReleasesFound([]string)  {}
func (nopObserver) HotfixesFound([]string)  {}

// Result is the outcome of a successful selection.
type Result struct {
	Repository     repository.RepositoryRef
	Branches       []string
	Classification Classification
	Since          time.Time
	Candidate      Candidate
}

// Selector runs the branch selection against a forge.
type Selector struct {
	NewForge ForgeFactory
	Window   time.Duration
	Patterns Patterns
	Now      func() time.Time
	Observer Observer
	Recorder metrics.Recorder
	Logger   *slog.Logger
}

// New returns a Selector with default patterns, a 7 day window and no-op hooks.
func New(factory ForgeFactory) *Selector {
	return &Selector{
		NewForge: factory,
		Window:   7 * 24 * time.Hour,
		Patterns: DefaultPatterns(),
		Now:      time.Now,
		Observer: nopObserver{},
		Recorder: metrics.NoopRecorder{},
		Logger:   slog.Default(),
	}
}

// Select picks the branch to pull from. rawRepo may be any form accepted by
// repository.Normalize. Input is validated before any request is made.
func (s *Selector) Select(ctx context.Context, rawRepo, token string) (*Result, error) {
	ref, err := repository.Normalize(rawRepo)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(token) == "" {
		return nil, ErrInvalidToken
	}

	log := s.Logger.With(logfields.Repository(ref.String()))

	f, err := s.NewForge(token)
	if err != nil {
		return nil, err
	}

	if _, err := f.GetRepository(ctx, ref); err != nil {
		if errors.HasCategory(err, errors.CategoryNotFound) {
			return nil, unavailable(ref, err)
		}
		return nil, err
	}

	branches, err := f.ListBranches(ctx, ref)
	if err != nil {
		return nil, unavailable(ref, err)
	}
	names := forge.BranchNames(branches)
	s.Observer.BranchesListed(names)
	log.Debug("Listed branches", logfields.Count(len(names)))

	since := s.Now().UTC().Add(-s.Window).Truncate(time.Second)
	classes := Classify(names, s.Patterns)

	best, err := s.seedMaster(ctx, f, ref, classes, since)
	if err != nil {
		return nil, err
	}
	log.Debug("Master candidate",
		logfields.Since(since),
		logfields.SHA(best.SHA),
		logfields.Date(best.Date))

	if len(classes.Releases) > 0 {
		s.Observer.ReleasesFound(classes.Releases)
		if best, err = s.challenge(ctx, f, ref, best, classes.Releases, KindRelease); err != nil {
			return nil, err
		}
	}
	if len(classes.Hotfixes) > 0 {
		s.Observer.HotfixesFound(classes.Hotfixes)
		if best, err = s.challenge(ctx, f, ref, best, classes.Hotfixes, KindHotfix); err != nil {
			return nil, err
		}
	}

	s.Recorder.IncSelection(string(best.Kind))
	s.Recorder.SetSelectedCommitTime(best.Date)
	log.Info("Selected branch", logfields.Branch(best.Branch), logfields.Date(best.Date))

	return &Result{
		Repository:     ref,
		Branches:       names,
		Classification: classes,
		Since:          since,
		Candidate:      best,
	}, nil
}

// seedMaster builds the initial candidate from master's latest commit inside the window.
func (s *Selector) seedMaster(ctx context.Context, f Forge, ref repository.RepositoryRef, classes Classification, since time.Time) (Candidate, error) {
	if !classes.HasMaster {
		return Candidate{}, ErrNoRecentActivity.
			WithContext("branch", s.Patterns.Master).
			WithContext("reason", "branch not found")
	}

	commit, err := f.LatestCommit(ctx, ref, s.Patterns.Master, &since)
	switch {
	case stderrors.Is(err, forge.ErrNoCommits):
		return Candidate{}, ErrNoRecentActivity.
			WithContext("branch", s.Patterns.Master).
			WithContext("since", forge.FormatSince(since))
	case err != nil:
		return Candidate{}, commitLookupFailed(s.Patterns.Master, err)
	}

	return Candidate{Branch: s.Patterns.Master, Kind: KindMaster, SHA: commit.SHA, Date: commit.CommittedAt}, nil
}

// challenge compares the latest branch of a group against best. A branch
// without commits is skipped.
func (s *Selector) challenge(ctx context.Context, f Forge, ref repository.RepositoryRef, best Candidate, group []string, kind Kind) (Candidate, error) {
	name, _ := Latest(group)

	commit, err := f.LatestCommit(ctx, ref, name, nil)
	switch {
	case stderrors.Is(err, forge.ErrNoCommits):
		s.Logger.Warn("Skipping branch without commits",
			logfields.Repository(ref.String()),
			logfields.Branch(name))
		return best, nil
	case err != nil:
		return best, commitLookupFailed(name, err)
	}

	s.Logger.Debug("Challenger",
		logfields.Branch(name),
		logfields.SHA(commit.SHA),
		logfields.Date(commit.CommittedAt))
	return best.Prefer(Candidate{Branch: name, Kind: kind, SHA: commit.SHA, Date: commit.CommittedAt}), nil
}

func unavailable(ref repository.RepositoryRef, cause error) error {
	return errors.NotFoundError(ErrRepositoryUnavailable.Message()).
		WithCause(cause).
		WithContext("repository", ref.String()).
		Build()
}

func commitLookupFailed(branch string, cause error) error {
	return errors.SelectionError("failed to read latest commit").
		WithCause(cause).
		WithContext("branch", branch).
		Build()
}
