package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "docpub"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	reg            *prom.Registry
	stepDuration   *prom.HistogramVec
	stepResults    *prom.CounterVec
	buildDuration  *prom.HistogramVec
	buildOutcome   *prom.CounterVec
	publishResults *prom.CounterVec
	inventory      *prom.GaugeVec
}

// NewPrometheusRecorder constructs and registers the metrics on reg (a fresh registry if nil).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		reg: reg,
		stepDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "step_duration_seconds",
			Help:      "Duration of individual build steps",
			Buckets:   prom.DefBuckets,
		}, []string{"doctype", "step"}),
		stepResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "step_results_total",
			Help:      "Build step result counts by outcome",
		}, []string{"doctype", "step", "result"}),
		buildDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "build_duration_seconds",
			Help:      "Duration of complete document builds",
			Buckets:   prom.ExponentialBuckets(0.5, 2, 10),
		}, []string{"doctype"}),
		buildOutcome: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "build_outcomes_total",
			Help:      "Document build outcomes by final status",
		}, []string{"doctype", "outcome"}),
		publishResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "publish_results_total",
			Help:      "Publish swaps by success/failure",
		}, []string{"result"}),
		inventory: prom.NewGaugeVec(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "inventory_documents",
			Help:      "Documents per status class at the last scan",
		}, []string{"class"}),
	}
	reg.MustRegister(pr.stepDuration, pr.stepResults, pr.buildDuration, pr.buildOutcome, pr.publishResults, pr.inventory)
	return pr
}

// Registry returns the registry the metrics are registered on.
func (p *PrometheusRecorder) Registry() *prom.Registry { return p.reg }

func (p *PrometheusRecorder) ObserveStepDuration(doctype, step string, d time.Duration) {
	if p == nil {
		return
	}
	p.stepDuration.WithLabelValues(doctype, step).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncStepResult(doctype, step string, result ResultLabel) {
	if p == nil {
		return
	}
	p.stepResults.WithLabelValues(doctype, step, string(result)).Inc()
}

func (p *PrometheusRecorder) ObserveBuildDuration(doctype string, d time.Duration) {
	if p == nil {
		return
	}
	p.buildDuration.WithLabelValues(doctype).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncBuildOutcome(doctype string, outcome BuildOutcomeLabel) {
	if p == nil {
		return
	}
	p.buildOutcome.WithLabelValues(doctype, string(outcome)).Inc()
}

func (p *PrometheusRecorder) IncPublishResult(success bool) {
	if p == nil {
		return
	}
	res := "failed"
	if success {
		res = "success"
	}
	p.publishResults.WithLabelValues(res).Inc()
}

func (p *PrometheusRecorder) SetInventoryCount(class string, n int) {
	if p == nil {
		return
	}
	p.inventory.WithLabelValues(class).Set(float64(n))
}
