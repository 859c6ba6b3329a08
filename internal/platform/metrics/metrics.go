package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	CreatorsRegistered prometheus.Counter
	DropsScheduled     prometheus.Counter
	MintsExecuted      prometheus.Counter
	MintsRejected      *prometheus.CounterVec
	UnitsMinted        prometheus.Counter
	ProceedsAccrued    *prometheus.CounterVec
	ProceedsWithdrawn  *prometheus.CounterVec
	OutboxDepth        prometheus.Gauge
	PublishFailures    prometheus.Counter
}

// New creates and registers all Prometheus metrics on the default registry.
func New() *Metrics {
	return &Metrics{
		CreatorsRegistered: promauto.NewCounter(prometheus.CounterOpts{
			Name: "dropforge_creators_registered_total",
			Help: "Total number of creators registered.",
		}),
		DropsScheduled: promauto.NewCounter(prometheus.CounterOpts{
			Name: "dropforge_drops_scheduled_total",
			Help: "Total number of drops scheduled.",
		}),
		MintsExecuted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "dropforge_mints_executed_total",
			Help: "Total number of successful mint operations.",
		}),
		MintsRejected: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "dropforge_mints_rejected_total",
			Help: "Mint rejections by failure kind.",
		}, []string{"kind"}),
		UnitsMinted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "dropforge_units_minted_total",
			Help: "Total units minted across all drops.",
		}),
		ProceedsAccrued: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "dropforge_proceeds_accrued_total",
			Help: "Proceeds accrued into pending buckets, by bucket kind.",
		}, []string{"bucket"}),
		ProceedsWithdrawn: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "dropforge_proceeds_withdrawn_total",
			Help: "Proceeds withdrawn from pending buckets, by bucket kind.",
		}, []string{"bucket"}),
		OutboxDepth: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "dropforge_activity_outbox_depth",
			Help: "Activity events waiting in the outbox.",
		}),
		PublishFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "dropforge_activity_publish_failures_total",
			Help: "Activity events that failed to publish to Kafka.",
		}),
	}
}

func (m *Metrics) IncMintRejected(kind string) {
	if kind == "" {
		kind = "unknown"
	}
	m.MintsRejected.WithLabelValues(kind).Inc()
}

func (m *Metrics) AddProceedsAccrued(bucket string, amount uint64) {
	m.ProceedsAccrued.WithLabelValues(bucket).Add(float64(amount))
}

func (m *Metrics) AddProceedsWithdrawn(bucket string, amount uint64) {
	m.ProceedsWithdrawn.WithLabelValues(bucket).Add(float64(amount))
}
