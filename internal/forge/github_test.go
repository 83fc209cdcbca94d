package forge

import (
	"context"
	stderrors "errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/pullfrom/internal/foundation/errors"
	"git.home.luguber.info/inful/pullfrom/internal/metrics"
	"git.home.luguber.info/inful/pullfrom/internal/repository"
	"git.home.luguber.info/inful/pullfrom/internal/testforge"
)

var acmeAPI = repository.RepositoryRef{Owner: "acme", Name: "api"}

func newTestClient(t *testing.T, srv *testforge.Server, opts ...Option) *GitHubClient {
	t.Helper()
	opts = append([]Option{
		WithHTTPClient(srv.Client()),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}, opts...)
	client, err := NewGitHubClient(srv.URL, "s3cret", opts...)
	require.NoError(t, err)
	return client
}

func TestNewGitHubClient_RequiresToken(t *testing.T) {
	_, err := NewGitHubClient("", "  ")
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, ErrAuthRequired))
}

func TestGitHubClient_Headers(t *testing.T) {
	var got http.Header
	srv := testforge.NewServer()
	defer srv.Close()
	srv.RequireToken("s3cret")
	srv.AddRepository("acme/api")

	client := newTestClient(t, srv)
	client.base.httpClient = &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		got = r.Header.Clone()
		return http.DefaultTransport.RoundTrip(r)
	})}

	_, err := client.GetRepository(context.Background(), acmeAPI)
	require.NoError(t, err)
	assert.Equal(t, "token s3cret", got.Get("Authorization"))
	assert.Equal(t, "application/vnd.github+json", got.Get("Accept"))
	assert.True(t, strings.HasPrefix(got.Get("User-Agent"), "pullfrom/"))
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func TestGitHubClient_GetRepository(t *testing.T) {
	srv := testforge.NewServer()
	defer srv.Close()
	srv.AddRepository("acme/api")

	client := newTestClient(t, srv)
	repo, err := client.GetRepository(context.Background(), acmeAPI)
	require.NoError(t, err)
	assert.Equal(t, "acme/api", repo.FullName)
	assert.Equal(t, "master", repo.DefaultBranch)

	_, err = client.GetRepository(context.Background(), repository.RepositoryRef{Owner: "acme", Name: "missing"})
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryNotFound))
}

func TestGitHubClient_ListBranches(t *testing.T) {
	srv := testforge.NewServer()
	defer srv.Close()
	srv.AddRepository("acme/api").
		AddBranch("master").
		AddBranch("release/1.9").
		AddBranch("hotfix/3")

	client := newTestClient(t, srv)
	branches, err := client.ListBranches(context.Background(), acmeAPI)
	require.NoError(t, err)
	assert.Equal(t, []string{"master", "release/1.9", "hotfix/3"}, BranchNames(branches))
}

func TestGitHubClient_ListCommits_Query(t *testing.T) {
	srv := testforge.NewServer()
	defer srv.Close()
	day := time.Date(2024, 5, 10, 8, 30, 0, 0, time.UTC)
	srv.AddRepository("acme/api").AddBranch("release/2.0", testforge.Commit{SHA: "a1", Date: day})

	client := newTestClient(t, srv)
	since := day.Add(-time.Hour)
	commits, err := client.ListCommits(context.Background(), acmeAPI, "release/2.0", &since)
	require.NoError(t, err)
	require.Len(t, commits, 1)
	assert.Equal(t, "a1", commits[0].SHA)

	reqs := srv.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "/repos/acme/api/commits?sha=release%2F2.0&since=2024-05-10T07:30:00Z", reqs[0])
}

func TestFormatSince(t *testing.T) {
	local := time.FixedZone("CEST", 2*60*60)
	ts := time.Date(2024, 1, 2, 5, 4, 3, 999, local)
	assert.Equal(t, "2024-01-02T03:04:03Z", FormatSince(ts))
}

func TestGitHubClient_LatestCommit(t *testing.T) {
	t0 := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		commits []testforge.Commit
		wantSHA string
		wantErr error
	}{
		{
			name: "greatest timestamp wins regardless of order",
			commits: []testforge.Commit{
				{SHA: "mid", Date: t0},
				{SHA: "newest", Date: t0.Add(2 * time.Hour)},
				{SHA: "oldest", Date: t0.Add(-time.Hour)},
			},
			wantSHA: "newest",
		},
		{
			name: "tie keeps first encountered",
			commits: []testforge.Commit{
				{SHA: "first", Date: t0},
				{SHA: "second", Date: t0},
			},
			wantSHA: "first",
		},
		{
			name: "failed detail fetch contributes nothing",
			commits: []testforge.Commit{
				{SHA: "broken", Date: t0.Add(time.Hour), Broken: true},
				{SHA: "ok", Date: t0},
			},
			wantSHA: "ok",
		},
		{
			name:    "no commits",
			wantErr: ErrNoCommits,
		},
		{
			name:    "all details fail",
			commits: []testforge.Commit{{SHA: "broken", Date: t0, Broken: true}},
			wantErr: ErrNoCommits,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := testforge.NewServer()
			defer srv.Close()
			srv.AddRepository("acme/api").AddBranch("master", tt.commits...)

			client := newTestClient(t, srv)
			commit, err := client.LatestCommit(context.Background(), acmeAPI, "master", nil)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, stderrors.Is(err, tt.wantErr), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantSHA, commit.SHA)
			assert.Equal(t, time.UTC, commit.CommittedAt.Location())
		})
	}
}

func TestGitHubClient_LatestCommit_Since(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	srv := testforge.NewServer()
	defer srv.Close()
	srv.AddRepository("acme/api").AddBranch("master",
		testforge.Commit{SHA: "stale", Date: now.AddDate(0, 0, -10)},
	)

	client := newTestClient(t, srv)
	since := now.AddDate(0, 0, -7)
	_, err := client.LatestCommit(context.Background(), acmeAPI, "master", &since)
	assert.True(t, stderrors.Is(err, ErrNoCommits))
}

func TestGitHubClient_LatestCommit_ListingFailure(t *testing.T) {
	srv := testforge.NewServer()
	defer srv.Close()
	srv.AddRepository("acme/api")
	srv.Fail(testforge.EndpointCommits, http.StatusInternalServerError, "boom")

	client := newTestClient(t, srv)
	_, err := client.LatestCommit(context.Background(), acmeAPI, "master", nil)
	require.Error(t, err)
	assert.False(t, stderrors.Is(err, ErrNoCommits))
	assert.True(t, errors.HasCategory(err, errors.CategoryForge))
}

func TestGitHubClient_RecordsMetrics(t *testing.T) {
	srv := testforge.NewServer()
	defer srv.Close()
	t0 := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	srv.AddRepository("acme/api").AddBranch("master",
		testforge.Commit{SHA: "a", Date: t0},
		testforge.Commit{SHA: "b", Date: t0, Broken: true},
	)

	reg := prom.NewRegistry()
	client := newTestClient(t, srv, WithRecorder(metrics.NewPrometheusRecorder(reg)))

	_, err := client.LatestCommit(context.Background(), acmeAPI, "master", nil)
	require.NoError(t, err)

	count, err := testutil.GatherAndCount(reg, "pullfrom_api_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 3, count, "commits/success, commit/success, commit/failure")
}

func TestGitHubClient_Timeout(t *testing.T) {
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	}))
	defer slow.Close()

	client, err := NewGitHubClient(slow.URL, "s3cret",
		WithTimeout(50*time.Millisecond),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	require.NoError(t, err)

	_, err = client.GetRepository(context.Background(), acmeAPI)
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryNetwork))
}

func TestGitHubClient_LatestCommit_Cancelled(t *testing.T) {
	srv := testforge.NewServer()
	defer srv.Close()
	srv.AddRepository("acme/api").AddBranch("master", testforge.Commit{SHA: "a", Date: time.Now()})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestClient(t, srv).LatestCommit(ctx, acmeAPI, "master", nil)
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, context.Canceled))
	assert.False(t, stderrors.Is(err, ErrNoCommits))
}

func TestWithTimeout_NonPositiveKeepsDefault(t *testing.T) {
	for _, d := range []time.Duration{0, -time.Second} {
		client, err := NewGitHubClient("", "s3cret", WithTimeout(d))
		require.NoError(t, err)
		assert.Equal(t, DefaultTimeout, client.base.httpClient.Timeout)
	}

	client, err := NewGitHubClient("", "s3cret", WithTimeout(5*time.Second))
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, client.base.httpClient.Timeout)
}

func TestGitHubClient_LogsResponseStatus(t *testing.T) {
	srv := testforge.NewServer()
	defer srv.Close()
	srv.AddRepository("acme/api")
	srv.Fail(testforge.EndpointRepository, http.StatusBadGateway, "upstream down")

	var logs strings.Builder
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	client := newTestClient(t, srv, WithLogger(logger))

	_, err := client.GetRepository(context.Background(), acmeAPI)
	require.Error(t, err)
	assert.Contains(t, logs.String(), "status=502")
	assert.Contains(t, logs.String(), "ok=false")
}
