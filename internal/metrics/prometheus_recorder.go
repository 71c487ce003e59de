package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "mdsite"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	stageDuration *prom.HistogramVec
	stageResults  *prom.CounterVec
	pageDuration  prom.Histogram
	pageResults   *prom.CounterVec
	buildDuration prom.Histogram
	buildOutcome  *prom.CounterVec
	cloneDuration *prom.HistogramVec
	brokenLinks   prom.Counter
}

// NewPrometheusRecorder constructs the collectors and registers them with reg.
// A nil reg gets a private registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		stageDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of individual build stages",
			Buckets:   prom.DefBuckets,
		}, []string{"stage"}),
		stageResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "stage_results_total",
			Help:      "Stage result counts by outcome",
		}, []string{"stage", "result"}),
		pageDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "page_duration_seconds",
			Help:      "Time to convert and write a single page",
			Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25},
		}),
		pageResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "pages_total",
			Help:      "Content files processed by result",
		}, []string{"result"}),
		buildDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "build_duration_seconds",
			Help:      "Total build duration",
			Buckets:   prom.DefBuckets,
		}),
		buildOutcome: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "build_outcomes_total",
			Help:      "Build outcomes by final status",
		}, []string{"outcome"}),
		cloneDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "clone_duration_seconds",
			Help:      "Duration of content repository clones",
			Buckets:   prom.DefBuckets,
		}, []string{"result"}),
		brokenLinks: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "broken_links_total",
			Help:      "Broken internal links found by verification",
		}),
	}
	reg.MustRegister(pr.stageDuration, pr.stageResults, pr.pageDuration, pr.pageResults,
		pr.buildDuration, pr.buildOutcome, pr.cloneDuration, pr.brokenLinks)
	return pr
}

func (p *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	p.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncStageResult(stage string, result ResultLabel) {
	p.stageResults.WithLabelValues(stage, string(result)).Inc()
}

func (p *PrometheusRecorder) ObservePageDuration(d time.Duration) {
	p.pageDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncPageResult(result PageResult) {
	p.pageResults.WithLabelValues(string(result)).Inc()
}

func (p *PrometheusRecorder) ObserveBuildDuration(d time.Duration) {
	p.buildDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncBuildOutcome(outcome BuildOutcomeLabel) {
	p.buildOutcome.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) ObserveCloneDuration(d time.Duration, success bool) {
	res := "failed"
	if success {
		res = "success"
	}
	p.cloneDuration.WithLabelValues(res).Observe(d.Seconds())
}

func (p *PrometheusRecorder) AddBrokenLinks(n int) {
	if n <= 0 {
		return
	}
	p.brokenLinks.Add(float64(n))
}
