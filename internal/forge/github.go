package forge

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"git.home.luguber.info/inful/pullfrom/internal/foundation/errors"
	"git.home.luguber.info/inful/pullfrom/internal/logfields"
	"git.home.luguber.info/inful/pullfrom/internal/metrics"
	"git.home.luguber.info/inful/pullfrom/internal/repository"
	"git.home.luguber.info/inful/pullfrom/internal/version"
)

// DefaultAPIURL is the public GitHub REST endpoint.
const DefaultAPIURL = "https://api.github.com"

// DefaultTimeout bounds a request when no timeout is configured.
const DefaultTimeout = 30 * time.Second

// sinceLayout is the ISO 8601 form GitHub expects for the since parameter.
const sinceLayout = "2006-01-02T15:04:05Z"

// GitHubClient talks to a GitHub-compatible REST API. It performs one request
// at a time and never paginates.
type GitHubClient struct {
	base     *BaseForge
	recorder metrics.Recorder
	logger   *slog.Logger
}

// Option customizes a GitHubClient.
type Option func(*clientOptions)

type clientOptions struct {
	httpClient *http.Client
	timeout    time.Duration
	recorder   metrics.Recorder
	logger     *slog.Logger
}

// WithHTTPClient replaces the underlying HTTP client. Its timeout is kept as is.
func WithHTTPClient(c *http.Client) Option {
	return func(o *clientOptions) { o.httpClient = c }
}

// WithTimeout bounds every request of the HTTP client NewGitHubClient builds.
// Values of zero or less keep DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(o *clientOptions) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithRecorder reports request metrics to r.
func WithRecorder(r metrics.Recorder) Option {
	return func(o *clientOptions) { o.recorder = r }
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(o *clientOptions) { o.logger = l }
}

// NewGitHubClient creates a client for apiURL authenticating with token.
func NewGitHubClient(apiURL, token string, opts ...Option) (*GitHubClient, error) {
	if strings.TrimSpace(token) == "" {
		return nil, ErrAuthRequired
	}
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}

	o := clientOptions{
		timeout:  DefaultTimeout,
		recorder: metrics.NoopRecorder{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.httpClient == nil {
		o.httpClient = &http.Client{Timeout: o.timeout}
	}

	base := NewBaseForge(o.httpClient, apiURL, token)
	base.SetCustomHeader("Accept", "application/vnd.github+json")
	base.SetCustomHeader("User-Agent", version.UserAgent())

	return &GitHubClient{base: base, recorder: o.recorder, logger: o.logger}, nil
}

// get performs a GET against endpoint, decodes into out and records metrics
// under the given endpoint label.
func (c *GitHubClient) get(ctx context.Context, label, endpoint string, out any) error {
	req, err := c.base.NewRequest(ctx, http.MethodGet, endpoint)
	if err != nil {
		return err
	}

	start := time.Now()
	err = c.base.DoRequest(req, out)
	elapsed := time.Since(start)

	result := metrics.ResultSuccess
	if err != nil {
		result = metrics.ResultFailure
	}
	c.recorder.ObserveAPIRequest(label, elapsed, result)

	attrs := []slog.Attr{
		logfields.URL(req.URL.String()),
		slog.String("endpoint", label),
		logfields.DurationMS(float64(elapsed.Microseconds()) / 1000),
		slog.Bool("ok", err == nil),
	}
	if classified, ok := errors.AsClassified(err); ok {
		if code, ok := classified.Context().GetInt("code"); ok {
			attrs = append(attrs, logfields.Status(code))
		}
	}
	c.logger.LogAttrs(ctx, slog.LevelDebug, "Forge request", attrs...)
	return err
}

// GetRepository fetches repository metadata. It doubles as an access check.
func (c *GitHubClient) GetRepository(ctx context.Context, ref repository.RepositoryRef) (*Repository, error) {
	var repo Repository
	if err := c.get(ctx, "repository", ref.Path(), &repo); err != nil {
		return nil, err
	}
	return &repo, nil
}

// ListBranches returns the first page of branches.
func (c *GitHubClient) ListBranches(ctx context.Context, ref repository.RepositoryRef) ([]Branch, error) {
	var branches []Branch
	if err := c.get(ctx, "branches", ref.Path()+"/branches", &branches); err != nil {
		return nil, err
	}
	return branches, nil
}

// ListCommits returns the first page of commits reachable from branch,
// restricted to commits after since when it is non-nil.
func (c *GitHubClient) ListCommits(ctx context.Context, ref repository.RepositoryRef, branch string, since *time.Time) ([]CommitRef, error) {
	var commits []CommitRef
	if err := c.get(ctx, "commits", commitsEndpoint(ref, branch, since), &commits); err != nil {
		return nil, err
	}
	return commits, nil
}

func commitsEndpoint(ref repository.RepositoryRef, branch string, since *time.Time) string {
	q := "sha=" + url.QueryEscape(branch)
	if since != nil {
		q += "&since=" + FormatSince(*since)
	}
	return ref.Path() + "/commits?" + q
}

// FormatSince renders t as YYYY-MM-DDTHH:MM:SSZ in UTC.
func FormatSince(t time.Time) string {
	return t.UTC().Format(sinceLayout)
}

// CommitTimestamp fetches the commit at commitURL and returns its committer time in UTC.
func (c *GitHubClient) CommitTimestamp(ctx context.Context, commitURL string) (time.Time, error) {
	var detail githubCommit
	if err := c.get(ctx, "commit", commitURL, &detail); err != nil {
		return time.Time{}, err
	}
	if detail.Commit.Committer.Date.IsZero() {
		return time.Time{}, errors.ForgeError("commit has no committer date").
			WithContext("url", commitURL).
			Build()
	}
	return detail.Commit.Committer.Date.UTC(), nil
}

// LatestCommit returns the commit on branch with the greatest committer time.
// Commits whose detail cannot be fetched are skipped. Ties keep the commit
// listed first. ErrNoCommits is returned when nothing qualifies.
func (c *GitHubClient) LatestCommit(ctx context.Context, ref repository.RepositoryRef, branch string, since *time.Time) (*Commit, error) {
	summaries, err := c.ListCommits(ctx, ref, branch, since)
	if err != nil {
		return nil, err
	}

	var latest *Commit
	for _, s := range summaries {
		ts, err := c.CommitTimestamp(ctx, s.URL)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			c.logger.Warn("Commit fetch failed",
				logfields.Branch(branch),
				logfields.SHA(s.SHA),
				logfields.Error(err))
			continue
		}
		if latest == nil || ts.After(latest.CommittedAt) {
			latest = &Commit{SHA: s.SHA, URL: s.URL, CommittedAt: ts}
		}
	}

	if latest == nil {
		return nil, ErrNoCommits.WithContext("branch", branch)
	}
	return latest, nil
}
