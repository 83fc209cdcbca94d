package metrics

import "time"

// ResultLabel enumerates request result categories for counters.
type ResultLabel string

const (
	ResultSuccess ResultLabel = "success"
	ResultFailure ResultLabel = "failure"
)

// Recorder defines observability hooks for a pullfrom run.
type Recorder interface {
	// ObserveAPIRequest records one forge API call; endpoint is a low-cardinality
	// name such as "repository", "branches", "commits" or "commit".
	ObserveAPIRequest(endpoint string, d time.Duration, result ResultLabel)
	// IncSelection counts the kind of branch finally chosen (master|release|hotfix).
	IncSelection(kind string)
	// SetSelectedCommitTime records the commit time that justified the choice.
	SetSelectedCommitTime(t time.Time)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveAPIRequest(string, time.Duration, ResultLabel) {}
func (NoopRecorder) IncSelection(string)                                  {}
func (NoopRecorder) SetSelectedCommitTime(time.Time)                      {}
