package upload

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Observer captures telemetry for scheduled uploads. kind is the uploader
// name, e.g. "image" or "material".
type Observer interface {
	RecordUpload(kind string, duration time.Duration, sizeBytes int, err error)
	RecordCacheHit(kind string)
	RecordRetry(kind string, err error)
}

// PrometheusObserver exports scheduler metrics to Prometheus.
type PrometheusObserver struct {
	duration  *prometheus.HistogramVec
	failures  *prometheus.CounterVec
	bytes     *prometheus.CounterVec
	cacheHits *prometheus.CounterVec
	retries   *prometheus.CounterVec
}

var _ Observer = (*PrometheusObserver)(nil)

// NewPrometheusObserver registers upload metrics under namespace.
func NewPrometheusObserver(namespace string, reg prometheus.Registerer) (*PrometheusObserver, error) {
	if namespace == "" {
		namespace = "wxpub"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	observer := &PrometheusObserver{
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "upload",
			Name:      "operation_duration_seconds",
			Help:      "Latency of platform upload calls.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "upload",
			Name:      "operation_errors_total",
			Help:      "Count of failed platform upload calls.",
		}, []string{"operation"}),
		bytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "upload",
			Name:      "uploaded_bytes_total",
			Help:      "Cumulative payload size accepted by the platform.",
		}, []string{"operation"}),
		cacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "upload",
			Name:      "cache_hits_total",
			Help:      "Uploads resolved from the content cache.",
		}, []string{"operation"}),
		retries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "upload",
			Name:      "retries_total",
			Help:      "Upload attempts scheduled after a transient failure.",
		}, []string{"operation"}),
	}

	var err error
	if observer.duration, err = adopt(reg, observer.duration); err != nil {
		return nil, err
	}
	for _, vec := range []**prometheus.CounterVec{&observer.failures, &observer.bytes, &observer.cacheHits, &observer.retries} {
		if *vec, err = adopt(reg, *vec); err != nil {
			return nil, err
		}
	}
	return observer, nil
}

// adopt registers collector, reusing the existing one when another client
// already registered the same metric.
func adopt[T prometheus.Collector](reg prometheus.Registerer, collector T) (T, error) {
	err := reg.Register(collector)
	if err == nil {
		return collector, nil
	}
	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		if existing, ok := are.ExistingCollector.(T); ok {
			return existing, nil
		}
	}
	return collector, fmt.Errorf("register upload metric: %w", err)
}

func (o *PrometheusObserver) RecordUpload(kind string, duration time.Duration, sizeBytes int, err error) {
	if o == nil {
		return
	}
	o.duration.WithLabelValues(kind).Observe(duration.Seconds())
	if err != nil {
		o.failures.WithLabelValues(kind).Inc()
		return
	}
	o.bytes.WithLabelValues(kind).Add(float64(sizeBytes))
}

func (o *PrometheusObserver) RecordCacheHit(kind string) {
	if o == nil {
		return
	}
	o.cacheHits.WithLabelValues(kind).Inc()
}

func (o *PrometheusObserver) RecordRetry(kind string, _ error) {
	if o == nil {
		return
	}
	o.retries.WithLabelValues(kind).Inc()
}

type nopObserver struct{}

func (nopObserver) RecordUpload(string, time.Duration, int, error) {}

func (nopObserver) RecordCacheHit(string) {}

func (nopObserver) RecordRetry(string, error) {}
