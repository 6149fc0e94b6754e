package metrics

import (
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	runsTotal      *prom.CounterVec
	runDuration    prom.Histogram
	issuesMarked   prom.Counter
	issuesUnmarked prom.Counter
	issuesClosed   prom.Counter
	commentsPosted prom.Counter
	operationsUsed prom.Counter
}

var _ Recorder = (*PrometheusRecorder)(nil)

// NewPrometheusRecorder creates a PrometheusRecorder and registers its
// collectors with the given registry.
func NewPrometheusRecorder(reg prom.Registerer) *PrometheusRecorder {
	r := &PrometheusRecorder{
		runsTotal: prom.NewCounterVec(prom.CounterOpts{
			Name: "stalekeeper_runs_total",
			Help: "Triage runs by trigger and outcome.",
		}, []string{"trigger", "outcome"}),
		runDuration: prom.NewHistogram(prom.HistogramOpts{
			Name:    "stalekeeper_run_duration_seconds",
			Help:    "Duration of triage runs.",
			Buckets: prom.DefBuckets,
		}),
		issuesMarked: prom.NewCounter(prom.CounterOpts{
			Name: "stalekeeper_issues_marked_total",
			Help: "Issues marked stale.",
		}),
		issuesUnmarked: prom.NewCounter(prom.CounterOpts{
			Name: "stalekeeper_issues_unmarked_total",
			Help: "Stale labels removed after renewed activity.",
		}),
		issuesClosed: prom.NewCounter(prom.CounterOpts{
			Name: "stalekeeper_issues_closed_total",
			Help: "Issues closed by triage.",
		}),
		commentsPosted: prom.NewCounter(prom.CounterOpts{
			Name: "stalekeeper_comments_posted_total",
			Help: "Comments posted by triage.",
		}),
		operationsUsed: prom.NewCounter(prom.CounterOpts{
			Name: "stalekeeper_operations_used_total",
			Help: "GitHub mutations spent against the operations budget.",
		}),
	}

	reg.MustRegister(
		r.runsTotal, r.runDuration,
		r.issuesMarked, r.issuesUnmarked, r.issuesClosed,
		r.commentsPosted, r.operationsUsed,
	)

	return r
}

func (r *PrometheusRecorder) RunCompleted(trigger, outcome string, d time.Duration) {
	r.runsTotal.WithLabelValues(trigger, outcome).Inc()
	r.runDuration.Observe(d.Seconds())
}

func (r *PrometheusRecorder) IssuesMarked(n int)   { r.issuesMarked.Add(float64(n)) }
func (r *PrometheusRecorder) IssuesUnmarked(n int) { r.issuesUnmarked.Add(float64(n)) }
func (r *PrometheusRecorder) IssuesClosed(n int)   { r.issuesClosed.Add(float64(n)) }
func (r *PrometheusRecorder) CommentsPosted(n int) { r.commentsPosted.Add(float64(n)) }
func (r *PrometheusRecorder) OperationsUsed(n int) { r.operationsUsed.Add(float64(n)) }

// HTTPHandler returns an http.Handler serving Prometheus metrics for the
// provided registry.
func HTTPHandler(reg *prom.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
