package zkudp

import (
	"time"

	"go.uber.org/atomic"
)

// Metrics counts the traffic of one client. Fields may be read from any
// goroutine.
type Metrics struct {
	CommandsSent    *atomic.Int64
	RepliesReceived *atomic.Int64
	Timeouts        *atomic.Int64
	Retries         *atomic.Int64
	StaleReplies    *atomic.Int64
	BulkChunks      *atomic.Int64
	BytesSent       *atomic.Int64
	BytesReceived   *atomic.Int64
	LastLatency     *atomic.Duration
}

func newMetrics() *Metrics {
	return &Metrics{
		CommandsSent:    atomic.NewInt64(0),
		RepliesReceived: atomic.NewInt64(0),
		Timeouts:        atomic.NewInt64(0),
		Retries:         atomic.NewInt64(0),
		StaleReplies:    atomic.NewInt64(0),
		BulkChunks:      atomic.NewInt64(0),
		BytesSent:       atomic.NewInt64(0),
		BytesReceived:   atomic.NewInt64(0),
		LastLatency:     atomic.NewDuration(0),
	}
}

type MetricsSnapshot struct {
	CommandsSent    int64         `json:"commands_sent"`
	RepliesReceived int64         `json:"replies_received"`
	Timeouts        int64         `json:"timeouts"`
	Retries         int64         `json:"retries"`
	StaleReplies    int64         `json:"stale_replies"`
	BulkChunks      int64         `json:"bulk_chunks"`
	BytesSent       int64         `json:"bytes_sent"`
	BytesReceived   int64         `json:"bytes_received"`
	LastLatency     time.Duration `json:"last_latency"`
}

func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		CommandsSent:    m.CommandsSent.Load(),
		RepliesReceived: m.RepliesReceived.Load(),
		Timeouts:        m.Timeouts.Load(),
		Retries:         m.Retries.Load(),
		StaleReplies:    m.StaleReplies.Load(),
		BulkChunks:      m.BulkChunks.Load(),
		BytesSent:       m.BytesSent.Load(),
		BytesReceived:   m.BytesReceived.Load(),
		LastLatency:     m.LastLatency.Load(),
	}
}
