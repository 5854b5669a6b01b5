// Package metrics holds the prometheus collectors of the entry write path.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	namespace = "daybook"

	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"
)

var (
	entriesWritten = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "entries_written_total",
			Help:      "Committed entry writes by operation and entry type.",
		},
		[]string{"op", "type"},
	)

	mentionsSynced = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mentions_synced_total",
			Help:      "Mention names upserted during entry sync.",
		},
		[]string{"kind"},
	)

	entryWriteDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "entry_write_duration_seconds",
			Help:      "Wall time of entry write transactions.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"op"},
	)
)

// ObserveEntryWrite records a committed write.
func ObserveEntryWrite(op, entryType string, started time.Time) {
	entriesWritten.WithLabelValues(op, entryType).Inc()
	entryWriteDuration.WithLabelValues(op).Observe(time.Since(started).Seconds())
}

func AddMentionsSynced(kind string, n int) {
	if n <= 0 {
		return
	}
	mentionsSynced.WithLabelValues(kind).Add(float64(n))
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
