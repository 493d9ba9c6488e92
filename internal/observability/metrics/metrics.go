package metrics

import (
	"database/sql"
	"log"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "billing_"

	resultSuccess = "success"
	resultError   = "error"
)

var (
	registerOnce sync.Once

	exportTotal   *prometheus.CounterVec
	exportLatency *prometheus.HistogramVec

	fetchErrors *prometheus.CounterVec

	droppedRecords *prometheus.CounterVec

	renderBytes *prometheus.HistogramVec
)

// Init registers export metrics and DB-backed gauges.
func Init(db *sql.DB, logger *log.Logger) {
	registerOnce.Do(func() {
		exportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "export_total",
				Help: "Total report exports by kind, format and result",
			},
			[]string{"kind", "format", "result"},
		)
		exportLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "export_latency_seconds",
				Help:    "Report export latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"kind", "format", "result"},
		)

		fetchErrors = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "fetch_errors_total",
				Help: "Total upstream billing API fetch errors by reason",
			},
			[]string{"reason"},
		)

		droppedRecords = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "dropped_records_total",
				Help: "Total records dropped for unparseable periods by report kind",
			},
			[]string{"kind"},
		)

		renderBytes = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "render_bytes",
				Help:    "Rendered document size in bytes",
				Buckets: prometheus.ExponentialBuckets(1024, 4, 8),
			},
			[]string{"format"},
		)

		prometheus.MustRegister(
			exportTotal,
			exportLatency,
			fetchErrors,
			droppedRecords,
			renderBytes,
		)

		if db != nil {
			registerDBMetrics(db, logger)
		}
	})
}

// ObserveExport records export duration and result.
func ObserveExport(kind, format, result string, duration time.Duration) {
	if kind == "" {
		kind = "unknown"
	}
	if format == "" {
		format = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if exportTotal != nil {
		exportTotal.WithLabelValues(kind, format, result).Inc()
	}
	if exportLatency != nil {
		exportLatency.WithLabelValues(kind, format, result).Observe(duration.Seconds())
	}
}

// IncFetchError increments upstream fetch error counter.
func IncFetchError(reason string) {
	if reason == "" {
		reason = "unknown"
	}
	if fetchErrors != nil {
		fetchErrors.WithLabelValues(reason).Inc()
	}
}

// AddDroppedRecords increments dropped record counter by count.
func AddDroppedRecords(kind string, count int) {
	if count <= 0 {
		return
	}
	if kind == "" {
		kind = "unknown"
	}
	if droppedRecords != nil {
		droppedRecords.WithLabelValues(kind).Add(float64(count))
	}
}

// ObserveRenderSize records the rendered document size.
func ObserveRenderSize(format string, size int) {
	if format == "" {
		format = "unknown"
	}
	if size < 0 {
		return
	}
	if renderBytes != nil {
		renderBytes.WithLabelValues(format).Observe(float64(size))
	}
}

// Exported constants for callers.
const (
	ResultSuccess = resultSuccess
	ResultError   = resultError
)
