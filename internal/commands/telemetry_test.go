package commands

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/goliatone/go-publisher/pkg/interfaces"
)

type entry struct {
	level string
	msg   string
	args  []any
}

type recordingLogger struct {
	mu      *sync.Mutex
	entries *[]entry
	fields  map[string]any
}

func newRecordingLogger() *recordingLogger {
	return &recordingLogger{mu: &sync.Mutex{}, entries: &[]entry{}, fields: map[string]any{}}
}

func (l *recordingLogger) log(level, msg string, args []any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	*l.entries = append(*l.entries, entry{level: level, msg: msg, args: args})
}

func (l *recordingLogger) Trace(msg string, args ...any) { l.log("trace", msg, args) }
func (l *recordingLogger) Debug(msg string, args ...any) { l.log("debug", msg, args) }
func (l *recordingLogger) Info(msg string, args ...any)  { l.log("info", msg, args) }
func (l *recordingLogger) Warn(msg string, args ...any)  { l.log("warn", msg, args) }
func (l *recordingLogger) Error(msg string, args ...any) { l.log("error", msg, args) }
func (l *recordingLogger) Fatal(msg string, args ...any) { l.log("fatal", msg, args) }

func (l *recordingLogger) WithContext(context.Context) interfaces.Logger { return l }

func (l *recordingLogger) WithFields(fields map[string]any) interfaces.Logger {
	merged := map[string]any{}
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &recordingLogger{mu: l.mu, entries: l.entries, fields: merged}
}

func (l *recordingLogger) messages() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, 0, len(*l.entries))
	for _, e := range *l.entries {
		out = append(out, e.level+":"+e.msg)
	}
	return out
}

type pathMessage struct{ Path string }

func (pathMessage) Type() string { return "publisher.test.path" }

func (pathMessage) Validate() error { return nil }

func TestTelemetryReceivesOutcome(t *testing.T) {
	var got TelemetryInfo
	h := NewHandler(func(ctx context.Context, msg pathMessage) error {
		return errors.New("boom")
	},
		WithOperation[pathMessage]("publish.article"),
		WithMessageFields(func(msg pathMessage) map[string]any {
			return map[string]any{"path": msg.Path}
		}),
		WithTelemetry(func(_ context.Context, _ pathMessage, info TelemetryInfo) {
			got = info
		}),
	)

	err := h.Execute(context.Background(), pathMessage{Path: "post.md"})
	if err == nil {
		t.Fatal("expected execution error")
	}
	if got.Status != TelemetryStatusFailed {
		t.Fatalf("expected failed status, got %q", got.Status)
	}
	if got.Command != "publisher.test.path" || got.Operation != "publish.article" {
		t.Fatalf("unexpected command/operation %q/%q", got.Command, got.Operation)
	}
	if got.Fields["path"] != "post.md" {
		t.Fatalf("expected path field, got %v", got.Fields)
	}
	if got.Error != err {
		t.Fatalf("expected telemetry error %v, got %v", err, got.Error)
	}
}

func TestDefaultTelemetryLogsOutcome(t *testing.T) {
	logger := newRecordingLogger()
	h := NewHandler(func(ctx context.Context, msg pathMessage) error { return nil },
		WithLogger[pathMessage](logger),
		WithTelemetry(DefaultTelemetry[pathMessage](nil)),
	)
	if err := h.Execute(context.Background(), pathMessage{}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	want := []string{"debug:command.execute.start", "info:command.execute.success"}
	if got := logger.messages(); !slices.Equal(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestMetricsTelemetryCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics, err := NewMetrics("wxpub", reg)
	if err != nil {
		t.Fatalf("new metrics: %v", err)
	}
	again, err := NewMetrics("wxpub", reg)
	if err != nil {
		t.Fatalf("metrics on shared registry: %v", err)
	}

	clock := time.Unix(0, 0)
	h := NewHandler(func(ctx context.Context, msg pathMessage) error { return nil },
		WithTelemetry(MetricsTelemetry[pathMessage](metrics, nil)),
	)
	h.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	if err := h.Execute(context.Background(), pathMessage{}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	second := NewHandler(func(ctx context.Context, msg pathMessage) error { return nil },
		WithTelemetry(MetricsTelemetry[pathMessage](again, nil)),
	)
	if err := second.Execute(context.Background(), pathMessage{}); err != nil {
		t.Fatalf("execute second: %v", err)
	}

	if got := testutil.ToFloat64(metrics.total.WithLabelValues("publisher.test.path", "success")); got != 2 {
		t.Fatalf("expected 2 successful executions, got %v", got)
	}
}

func TestCommandLoggerModule(t *testing.T) {
	provider := &namedProvider{logger: newRecordingLogger()}
	logger := CommandLogger(provider, " publish ")
	if logger == nil {
		t.Fatal("expected logger")
	}
	if provider.name != "publisher.commands.publish" {
		t.Fatalf("expected module name publisher.commands.publish, got %q", provider.name)
	}

	rec, ok := logger.(*recordingLogger)
	if !ok {
		t.Fatalf("expected recording logger, got %T", logger)
	}
	if rec.fields["command_module"] != "publish" || rec.fields["component"] != "command" {
		t.Fatalf("unexpected logger fields %v", rec.fields)
	}
}

type namedProvider struct {
	name   string
	logger *recordingLogger
}

func (p *namedProvider) GetLogger(name string) interfaces.Logger {
	p.name = name
	return p.logger
}
