package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "pullfrom"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	registry       *prom.Registry
	apiRequests    *prom.CounterVec
	apiDuration    *prom.HistogramVec
	selections     *prom.CounterVec
	selectedCommit prom.Gauge
}

// NewPrometheusRecorder constructs and registers the pullfrom metrics on reg.
// A nil registry gets a fresh one.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		registry: reg,
		apiRequests: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "api_requests_total",
			Help:      "Forge API requests by endpoint and result",
		}, []string{"endpoint", "result"}),
		apiDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "api_request_duration_seconds",
			Help:      "Duration of forge API requests",
			Buckets:   prom.DefBuckets,
		}, []string{"endpoint"}),
		selections: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "selections_total",
			Help:      "Selected branch kind",
		}, []string{"kind"}),
		selectedCommit: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "selected_commit_timestamp_seconds",
			Help:      "Committer time of the latest commit on the selected branch",
		}),
	}
	reg.MustRegister(pr.apiRequests, pr.apiDuration, pr.selections, pr.selectedCommit)
	return pr
}

func (p *PrometheusRecorder) ObserveAPIRequest(endpoint string, d time.Duration, result ResultLabel) {
	p.apiRequests.WithLabelValues(endpoint, string(result)).Inc()
	p.apiDuration.WithLabelValues(endpoint).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncSelection(kind string) {
	p.selections.WithLabelValues(kind).Inc()
}

func (p *PrometheusRecorder) SetSelectedCommitTime(t time.Time) {
	p.selectedCommit.Set(float64(t.Unix()))
}

// WriteTextfile writes the registry to path in the Prometheus text format.
// The file is replaced atomically.
func (p *PrometheusRecorder) WriteTextfile(path string) error {
	return prom.WriteToTextfile(path, p.registry)
}
