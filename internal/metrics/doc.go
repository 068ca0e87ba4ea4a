// Package metrics records build observability for docpub.
//
// Components receive a Recorder and default to NoopRecorder, so callers never check for nil.
// When a metrics textfile is configured the CLI swaps in a PrometheusRecorder and writes its
// registry with WriteTextfile after the run:
//
//	rec := metrics.NewPrometheusRecorder(nil)
//	runner := build.NewRunner(sink, build.WithRecorder(rec))
//	...
//	_ = metrics.WriteTextfile(cfg.MetricsTextfile, rec.Registry())
package metrics
