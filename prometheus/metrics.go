package prometheus

import (
	"time"

	"feature-service/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request metrics
	HttpRequestsTotal   prometheus.CounterVec
	HttpRequestDuration prometheus.HistogramVec

	// Database operation metrics
	DbOperationDuration prometheus.HistogramVec

	// Component tree metrics
	ComponentOperationsCounter prometheus.CounterVec
	ChildOperationsCounter     prometheus.CounterVec
	BulkDeleteFailuresCounter  prometheus.Counter

	// Flat entity metrics
	FeatureOperationsCounter        prometheus.CounterVec
	EndpointOperationsCounter       prometheus.CounterVec
	DatabaseChangeOperationsCounter prometheus.CounterVec

	// Image upload metrics
	ImageUploadBytes prometheus.Counter
)

// InitMetrics initializes Prometheus metrics with configuration
func InitMetrics(config *config.Config) {
	// Use metric prefix from configuration
	prefix := config.Metrics.Prefix

	// HTTP request metrics
	HttpRequestsTotal = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTP request duration
	HttpRequestDuration = *promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// Database operation metrics
	DbOperationDuration = *promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation_type"},
	)

	// Component tree metrics
	ComponentOperationsCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_component_operations_total",
			Help: "Total number of root component operations",
		},
		[]string{"operation"},
	)

	ChildOperationsCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_component_child_operations_total",
			Help: "Total number of child component operations",
		},
		[]string{"operation"},
	)

	BulkDeleteFailuresCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_component_bulk_delete_failures_total",
			Help: "Total number of ids that failed during bulk component deletes",
		},
	)

	// Flat entity metrics
	FeatureOperationsCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_feature_operations_total",
			Help: "Total number of feature operations",
		},
		[]string{"operation"},
	)

	EndpointOperationsCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_endpoint_operations_total",
			Help: "Total number of endpoint operations",
		},
		[]string{"operation"},
	)

	DatabaseChangeOperationsCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_database_change_operations_total",
			Help: "Total number of database change operations",
		},
		[]string{"operation"},
	)

	// Image upload metrics
	ImageUploadBytes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_image_upload_bytes_total",
			Help: "Total bytes of uploaded images",
		},
	)
}

// TrackDBOperation returns a function that records the duration of a database operation
func TrackDBOperation(operationType string) func(startTime time.Time) {
	return func(startTime time.Time) {
		duration := time.Since(startTime).Seconds()
		DbOperationDuration.WithLabelValues(operationType).Observe(duration)
	}
}

// RecordComponentOperation increments the counter for root component operations
func RecordComponentOperation(operation string) {
	ComponentOperationsCounter.WithLabelValues(operation).Inc()
}

// RecordChildOperation increments the counter for child component operations
func RecordChildOperation(operation string) {
	ChildOperationsCounter.WithLabelValues(operation).Inc()
}

// RecordFeatureOperation increments the counter for feature operations
func RecordFeatureOperation(operation string) {
	FeatureOperationsCounter.WithLabelValues(operation).Inc()
}

// RecordEndpointOperation increments the counter for endpoint operations
func RecordEndpointOperation(operation string) {
	EndpointOperationsCounter.WithLabelValues(operation).Inc()
}

// RecordDatabaseChangeOperation increments the counter for database change operations
func RecordDatabaseChangeOperation(operation string) {
	DatabaseChangeOperationsCounter.WithLabelValues(operation).Inc()
}
