package commands

import (
	"context"
	"errors"
	"time"

	command "github.com/goliatone/go-command"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/goliatone/go-publisher/internal/logging"
	"github.com/goliatone/go-publisher/pkg/interfaces"
)

// TelemetryStatus captures the result category for command execution.
type TelemetryStatus string

const (
	TelemetryStatusSuccess      TelemetryStatus = "success"
	TelemetryStatusFailed       TelemetryStatus = "failed"
	TelemetryStatusContextError TelemetryStatus = "context_error"
)

// TelemetryInfo describes a command execution outcome.
type TelemetryInfo struct {
	Command   string
	Operation string
	Fields    map[string]any
	Duration  time.Duration
	Error     error
	Status    TelemetryStatus
	// Logger already carries Fields.
	Logger interfaces.Logger
}

// Telemetry is invoked once after every execution.
type Telemetry[T command.Message] func(ctx context.Context, msg T, info TelemetryInfo)

// DefaultTelemetry logs command outcomes. A nil logger uses the one carried
// in TelemetryInfo.
func DefaultTelemetry[T command.Message](logger interfaces.Logger) Telemetry[T] {
	return func(_ context.Context, _ T, info TelemetryInfo) {
		entry := info.Logger
		if entry == nil || logger != nil {
			entry = logging.WithFields(logging.Ensure(logger), info.Fields)
		}
		args := []any{"duration_ms", info.Duration.Milliseconds()}
		switch info.Status {
		case TelemetryStatusSuccess:
			entry.Info("command.execute.success", args...)
		case TelemetryStatusContextError:
			entry.Error("command.execute.context_error", append(args, "error", info.Error)...)
		default:
			entry.Error("command.execute.failed", append(args, "error", info.Error)...)
		}
	}
}

// Metrics records command durations and outcomes in Prometheus.
type Metrics struct {
	duration *prometheus.HistogramVec
	total    *prometheus.CounterVec
}

// NewMetrics registers command collectors on reg. Collectors that already
// exist on reg are reused so several clients can share a registry.
func NewMetrics(namespace string, reg prometheus.Registerer) (*Metrics, error) {
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "command",
		Name:      "duration_seconds",
		Help:      "Command execution time.",
		Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
	}, []string{"command", "status"})
	total := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "command",
		Name:      "executions_total",
		Help:      "Command executions by outcome.",
	}, []string{"command", "status"})

	m := &Metrics{duration: duration, total: total}
	if reg == nil {
		return m, nil
	}
	var err error
	if m.duration, err = register(reg, duration); err != nil {
		return nil, err
	}
	if m.total, err = register(reg, total); err != nil {
		return nil, err
	}
	return m, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// Observe records one execution.
func (m *Metrics) Observe(info TelemetryInfo) {
	if m == nil {
		return
	}
	status := string(info.Status)
	m.duration.WithLabelValues(info.Command, status).Observe(info.Duration.Seconds())
	m.total.WithLabelValues(info.Command, status).Inc()
}

// MetricsTelemetry chains metric recording in front of next.
func MetricsTelemetry[T command.Message](m *Metrics, next Telemetry[T]) Telemetry[T] {
	return func(ctx context.Context, msg T, info TelemetryInfo) {
		m.Observe(info)
		if next != nil {
			next(ctx, msg, info)
		}
	}
}
