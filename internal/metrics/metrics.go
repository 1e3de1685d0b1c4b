package metrics

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

const (
	namespace = "lizzy"
	subsystem = "client"
	job       = "lizzy_client"
)

// Run results.
const (
	ResultSuccess = "success"
	ResultFailed  = "failed"
)

// Metrics holds the counters of one CLI invocation. They are pushed to a
// Pushgateway at exit since the process does not live long enough to be
// scraped.
type Metrics struct {
	registry *prometheus.Registry
	pushURL  string

	Runs            *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	TestMetric      prometheus.Counter
}

// New creates the metrics on a private registry. An empty pushURL disables
// pushing.
func New(pushURL string) *Metrics {
	reg := prometheus.NewRegistry()
	return &Metrics{
		registry: reg,
		pushURL:  pushURL,
		Runs: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "runs_total",
			Help:      "CLI invocations by result",
		}, []string{"result"}),
		RequestDuration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "agent_request_duration_seconds",
			Help:      "Duration of requests to the deployment agent",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation", "code"}),
		TestMetric: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "test_metric_total",
			Help:      "Pushed by the troubleshooting command",
		}),
	}
}

// Available reports whether a Pushgateway is configured.
func (m *Metrics) Available() bool {
	return m.pushURL != ""
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordRun counts one invocation as failed when err is not nil.
func (m *Metrics) RecordRun(err error) {
	result := ResultSuccess
	if err != nil {
		result = ResultFailed
	}
	m.Runs.WithLabelValues(result).Inc()
}

// ObserveRequest records one agent call. code 0 means the agent was not
// reached.
func (m *Metrics) ObserveRequest(operation string, code int, elapsed time.Duration) {
	m.RequestDuration.WithLabelValues(operation, strconv.Itoa(code)).Observe(elapsed.Seconds())
}

// Push sends everything to the Pushgateway. It is a no-op when none is
// configured.
func (m *Metrics) Push(ctx context.Context) error {
	if !m.Available() {
		return nil
	}
	if err := push.New(m.pushURL, job).Gatherer(m.registry).PushContext(ctx); err != nil {
		return fmt.Errorf("failed to push metrics to %s: %w", m.pushURL, err)
	}
	return nil
}
