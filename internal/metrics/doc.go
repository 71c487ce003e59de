// Package metrics records build observations.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so nothing needs a nil check:
//
//	gen := site.NewGenerator(cfg, site.WithRecorder(metrics.NewPrometheusRecorder(reg)))
//
// The preview server activates the Prometheus implementation and exposes it
// through HTTPHandler. One-shot builds keep the noop recorder.
package metrics
