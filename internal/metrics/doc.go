// Package metrics records forge API traffic and selection outcomes.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so no nil checks are needed at call sites:
//
//	client, err := forge.NewGitHubClient(apiURL, token, forge.WithRecorder(recorder))
//
// A pullfrom run is short-lived, so there is no scrape endpoint. When a
// metrics file is configured the PrometheusRecorder registry is written once
// at exit in the text exposition format, ready for the node_exporter textfile
// collector.
package metrics
