// Package metrics exposes Prometheus counters and histograms for the TX
// dispatcher. It has no effect on protocol behaviour - Observe* calls are
// no-ops on a nil *Metrics, for callers that never construct one.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the counters and histograms recorded while dispatching
// commands.
type Metrics struct {
	commands    *prometheus.CounterVec
	crcFailures prometheus.Counter
	naks        prometheus.Counter
	ackWait     prometheus.Histogram
}

// New registers a fresh set of metrics on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		commands: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "zusi",
			Name:      "commands_total",
			Help:      "Commands dispatched by the TX engine, by opcode and outcome.",
		}, []string{"command", "outcome"}),
		crcFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "zusi",
			Name:      "crc_failures_total",
			Help:      "Responses rejected due to a CRC mismatch.",
		}),
		naks: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "zusi",
			Name:      "nak_total",
			Help:      "Commands that ended in a protocol error: a peer nak during the ack phase or a cancelled busy-wait.",
		}),
		ackWait: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "zusi",
			Name:      "ack_wait_seconds",
			Help:      "Time spent waiting on the ack/busy handshake.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

// ObserveCommand records the outcome of one command dispatch.
func (m *Metrics) ObserveCommand(command, outcome string) {
	if m == nil {
		return
	}
	m.commands.WithLabelValues(command, outcome).Inc()
}

// ObserveCRCFailure records one CRC mismatch on a received response.
func (m *Metrics) ObserveCRCFailure() {
	if m == nil {
		return
	}
	m.crcFailures.Inc()
}

// ObserveNak records one protocol error: a peer nak or a cancelled busy-wait.
func (m *Metrics) ObserveNak() {
	if m == nil {
		return
	}
	m.naks.Inc()
}

// ObserveAckWait records how long the ack/busy handshake took.
func (m *Metrics) ObserveAckWait(d time.Duration) {
	if m == nil {
		return
	}
	m.ackWait.Observe(d.Seconds())
}
