package report

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/pullfrom/internal/config"
	"git.home.luguber.info/inful/pullfrom/internal/repository"
	"git.home.luguber.info/inful/pullfrom/internal/selector"
)

func sampleResult() *selector.Result {
	return &selector.Result{
		Repository: repository.RepositoryRef{Owner: "acme", Name: "api"},
		Branches:   []string{"master", "release/2.0", "hotfix/3"},
		Since:      time.Date(2024, 5, 3, 12, 0, 0, 0, time.UTC),
		Candidate: selector.Candidate{
			Branch: "release/2.0",
			Kind:   selector.KindRelease,
			SHA:    "abc123",
			Date:   time.Date(2024, 5, 9, 8, 30, 0, 0, time.UTC),
		},
	}
}

func TestPrinter_Text(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf, config.OutputText, WithColor(false))

	obs := p.Observer()
	obs.BranchesListed([]string{"master", "release/2.0", "hotfix/3"})
	obs.ReleasesFound([]string{"release/2.0"})
	obs.HotfixesFound([]string{"hotfix/3"})
	require.NoError(t, p.Result(sampleResult()))

	want := "Branches: master, release/2.0, hotfix/3\n" +
		"Releases: release/2.0\n" +
		"Hotfixes: hotfix/3\n" +
		"Pull from release/2.0\n"
	assert.Equal(t, want, buf.String())
}

func TestPrinter_TextHighlight(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf, config.OutputText, WithColor(true))

	require.NoError(t, p.Result(sampleResult()))
	assert.Contains(t, buf.String(), "\x1b[")
	assert.Contains(t, buf.String(), "release/2.0")
}

func TestPrinter_MachineFormatsAreQuiet(t *testing.T) {
	tests := []struct {
		format config.OutputFormat
		want   string
	}{
		{config.OutputName, "release/2.0\n"},
		{config.OutputRef, "refs/heads/release/2.0\n"},
	}
	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			var buf bytes.Buffer
			p := New(&buf, tt.format)
			p.Observer().BranchesListed([]string{"master"})
			require.NoError(t, p.Result(sampleResult()))
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestPrinter_JSON(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf, config.OutputJSON)
	require.NoError(t, p.Result(sampleResult()))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "acme/api", got["repository"])
	assert.Equal(t, "release/2.0", got["branch"])
	assert.Equal(t, "release", got["kind"])
	assert.Equal(t, "refs/heads/release/2.0", got["ref"])
	assert.Equal(t, "abc123", got["sha"])
	assert.Equal(t, "2024-05-09T08:30:00Z", got["date"])
	assert.Equal(t, "2024-05-03T12:00:00Z", got["since"])
}

func TestPrinter_Errors(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, New(&buf, config.OutputText).Result(nil))
	assert.Error(t, New(&buf, config.OutputFormat("xml")).Result(sampleResult()))
	assert.Empty(t, buf.String())
}
