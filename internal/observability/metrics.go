package observability

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	framesReceived = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "mllpctl",
			Subsystem: "echo",
			Name:      "frames_received_total",
			Help:      "Total MLLP frames received.",
		},
	)
	frameBytes = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "mllpctl",
			Subsystem: "echo",
			Name:      "frame_bytes",
			Help:      "Size of received MLLP frames in bytes.",
			Buckets:   prometheus.ExponentialBuckets(64, 4, 8),
		},
	)
	repliesSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mllpctl",
			Subsystem: "echo",
			Name:      "replies_sent_total",
			Help:      "Replies written, by reply mode.",
		},
		[]string{"mode"},
	)
	replyLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "mllpctl",
			Subsystem: "echo",
			Name:      "reply_latency_seconds",
			Help:      "Time from frame receipt to reply write.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"mode"},
	)
	repliesDropped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "mllpctl",
			Subsystem: "echo",
			Name:      "replies_dropped_total",
			Help:      "Frames deliberately left unanswered by the drop simulator.",
		},
	)
	ackFallbacks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "mllpctl",
			Subsystem: "echo",
			Name:      "ack_fallbacks_total",
			Help:      "Inbound messages without a usable MSH answered with the fallback payload.",
		},
	)
	activeConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "mllpctl",
			Subsystem: "echo",
			Name:      "active_connections",
			Help:      "Currently open MLLP connections.",
		},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			framesReceived,
			frameBytes,
			repliesSent,
			replyLatency,
			repliesDropped,
			ackFallbacks,
			activeConnections,
		)
	})
}

func RecordFrameReceived(size int) {
	RegisterMetrics()
	framesReceived.Inc()
	frameBytes.Observe(float64(size))
}

func RecordReplySent(mode string, latency time.Duration) {
	RegisterMetrics()
	repliesSent.WithLabelValues(mode).Inc()
	replyLatency.WithLabelValues(mode).Observe(latency.Seconds())
}

func RecordReplyDropped() {
	RegisterMetrics()
	repliesDropped.Inc()
}

func RecordAckFallback() {
	RegisterMetrics()
	ackFallbacks.Inc()
}

func SetActiveConnections(n int) {
	RegisterMetrics()
	activeConnections.Set(float64(n))
}
