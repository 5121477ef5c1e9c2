package blockfetch

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

var ErrFailedToRegisterStats = errors.New("failed to register stats collector")

const (
	reasonTimeout          = "timeout"
	reasonNotFound         = "not_found"
	reasonConnectionClosed = "connection_closed"
)

// Stats holds the Prometheus metrics of a Fetcher.
type Stats struct {
	requested       prometheus.Counter
	received        prometheus.Counter
	discarded       prometheus.Counter
	failed          *prometheus.CounterVec
	pending         prometheus.Gauge
	requestDuration prometheus.Histogram
}

func NewStats() *Stats {
	return &Stats{
		requested: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "blockfetch_blocks_requested_total",
			Help: "Number of getdata requests sent for blocks",
		}),
		received: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "blockfetch_blocks_received_total",
			Help: "Number of requested blocks received",
		}),
		discarded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "blockfetch_blocks_discarded_total",
			Help: "Number of received blocks matching no pending request",
		}),
		failed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "blockfetch_block_requests_failed_total",
			Help: "Number of failed block requests by reason",
		}, []string{"reason"}),
		pending: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "blockfetch_block_requests_pending",
			Help: "Current number of outstanding block requests",
		}),
		requestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "blockfetch_block_request_duration_seconds",
			Help:    "Time from sending getdata until the block was received",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
		}),
	}
}

func (s *Stats) collectors() []prometheus.Collector {
	return []prometheus.Collector{s.requested, s.received, s.discarded, s.failed, s.pending, s.requestDuration}
}

// Register registers all metrics with reg. Already registered metrics are unregistered
// again on failure.
func (s *Stats) Register(reg prometheus.Registerer) error {
	var registered []prometheus.Collector

	for _, c := range s.collectors() {
		err := reg.Register(c)
		if err != nil {
			unregisterStats(reg, registered...)
			return errors.Join(ErrFailedToRegisterStats, err)
		}

		registered = append(registered, c)
	}

	return nil
}

func (s *Stats) Unregister(reg prometheus.Registerer) {
	unregisterStats(reg, s.collectors()...)
}

func unregisterStats(reg prometheus.Registerer, cs ...prometheus.Collector) {
	for _, c := range cs {
		_ = reg.Unregister(c)
	}
}
