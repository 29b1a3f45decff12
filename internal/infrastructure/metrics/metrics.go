package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
	"github.com/semmidev/dbhook/internal/domain"
)

const metricsNamespace = "dbhook"

// Collector holds the gauges describing the last run of one
// application/action pair.
type Collector struct {
	duration  prometheus.Gauge
	bytes     prometheus.Gauge
	success   prometheus.Gauge
	timestamp prometheus.Gauge
	failures  *prometheus.GaugeVec
}

func NewCollector() *Collector {
	return &Collector{
		duration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "last_run_duration_seconds",
			Help:      "Wall time of the last transfer.",
		}),
		bytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "last_run_bytes",
			Help:      "Archive bytes moved by the last transfer.",
		}),
		success: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "last_run_success",
			Help:      "1 if the last run succeeded, 0 otherwise.",
		}),
		timestamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last run finished.",
		}),
		failures: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "last_run_failure",
			Help:      "1 for the error kind that failed the last run.",
		}, []string{"kind"}),
	}
}

// Describe is part of the prometheus.Collector interface.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	c.duration.Describe(ch)
	c.bytes.Describe(ch)
	c.success.Describe(ch)
	c.timestamp.Describe(ch)
	c.failures.Describe(ch)
}

// Collect is part of the prometheus.Collector interface.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.duration.Collect(ch)
	c.bytes.Collect(ch)
	c.success.Collect(ch)
	c.timestamp.Collect(ch)
	c.failures.Collect(ch)
}

func (c *Collector) observe(o domain.Outcome, now time.Time) {
	c.duration.Set(o.Stats.Duration.Seconds())
	c.bytes.Set(float64(o.Stats.Bytes))
	c.timestamp.Set(float64(now.Unix()))
	c.failures.Reset()

	if o.Succeeded() {
		c.success.Set(1)
		return
	}
	c.success.Set(0)
	c.failures.WithLabelValues(string(domain.Kind(o.Err))).Set(1)
}

// Pusher sends the run's metrics to a Pushgateway. A one-shot hook has no
// scrape endpoint, so push is the only way out.
type Pusher struct {
	url string
	job string
	now func() time.Time
}

func NewPusher(url, job string) *Pusher {
	return &Pusher{url: url, job: job, now: time.Now}
}

func (p *Pusher) Name() string {
	return "pushgateway"
}

func (p *Pusher) Report(ctx context.Context, outcome domain.Outcome) error {
	collector := NewCollector()
	collector.observe(outcome, p.now())

	registry := prometheus.NewRegistry()
	if err := registry.Register(collector); err != nil {
		return fmt.Errorf("failed to register collector: %w", err)
	}

	app := outcome.ApplicationName
	if app == "" {
		app = "unknown"
	}

	err := push.New(p.url, p.job).
		Gatherer(registry).
		Grouping("application", app).
		Grouping("action", string(outcome.Action)).
		PushContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to push metrics: %w", err)
	}
	return nil
}
