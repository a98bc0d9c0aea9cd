package publishcmd

import (
	"errors"

	"github.com/goliatone/go-publisher/internal/commands"
	"github.com/goliatone/go-publisher/pkg/interfaces"
)

// CommandRegistry is the minimal registration contract expected when wiring command handlers.
type CommandRegistry interface {
	RegisterCommand(handler any) error
}

// HandlerSet groups the handlers produced by RegisterPublishCommands.
type HandlerSet struct {
	Publish      *PublishArticleHandler
	UpdateDraft  *UpdateDraftHandler
	DeleteDraft  *DeleteDraftHandler
	UploadImages *UploadImagesHandler
}

// Option customises handler wiring during registration.
type Option func(*options)

type options struct {
	reporter    Reporter
	metrics     *commands.Metrics
	publishOpts []commands.HandlerOption[PublishArticleCommand]
	updateOpts  []commands.HandlerOption[UpdateDraftCommand]
	deleteOpts  []commands.HandlerOption[DeleteDraftCommand]
	imageOpts   []commands.HandlerOption[UploadImagesCommand]
}

// WithReporter receives the result of every successful command.
func WithReporter(reporter Reporter) Option {
	return func(cfg *options) {
		cfg.reporter = reporter
	}
}

// WithMetrics records execution counts and durations for every handler.
func WithMetrics(metrics *commands.Metrics) Option {
	return func(cfg *options) {
		cfg.metrics = metrics
	}
}

// WithPublishHandlerOptions forwards options to the PublishArticleHandler constructor.
func WithPublishHandlerOptions(opts ...commands.HandlerOption[PublishArticleCommand]) Option {
	return func(cfg *options) {
		cfg.publishOpts = append(cfg.publishOpts, opts...)
	}
}

// WithUpdateHandlerOptions forwards options to the UpdateDraftHandler constructor.
func WithUpdateHandlerOptions(opts ...commands.HandlerOption[UpdateDraftCommand]) Option {
	return func(cfg *options) {
		cfg.updateOpts = append(cfg.updateOpts, opts...)
	}
}

// WithDeleteHandlerOptions forwards options to the DeleteDraftHandler constructor.
func WithDeleteHandlerOptions(opts ...commands.HandlerOption[DeleteDraftCommand]) Option {
	return func(cfg *options) {
		cfg.deleteOpts = append(cfg.deleteOpts, opts...)
	}
}

// WithUploadImagesHandlerOptions forwards options to the UploadImagesHandler constructor.
func WithUploadImagesHandlerOptions(opts ...commands.HandlerOption[UploadImagesCommand]) Option {
	return func(cfg *options) {
		cfg.imageOpts = append(cfg.imageOpts, opts...)
	}
}

// RegisterPublishCommands builds the publishing handlers and registers them
// with reg when it is non-nil. The handlers are returned so callers can
// execute them directly or wire them into a dispatcher.
func RegisterPublishCommands(reg CommandRegistry, pub Publisher, provider interfaces.LoggerProvider, opts ...Option) (*HandlerSet, error) {
	if pub == nil {
		return nil, errors.New("publish command registration: publisher is nil")
	}

	cfg := options{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	logger := commands.CommandLogger(provider, "publish")

	if cfg.metrics != nil {
		cfg.publishOpts = append(cfg.publishOpts, commands.WithTelemetry(commands.MetricsTelemetry(cfg.metrics, commands.DefaultTelemetry[PublishArticleCommand](logger))))
		cfg.updateOpts = append(cfg.updateOpts, commands.WithTelemetry(commands.MetricsTelemetry(cfg.metrics, commands.DefaultTelemetry[UpdateDraftCommand](logger))))
		cfg.deleteOpts = append(cfg.deleteOpts, commands.WithTelemetry(commands.MetricsTelemetry(cfg.metrics, commands.DefaultTelemetry[DeleteDraftCommand](logger))))
		cfg.imageOpts = append(cfg.imageOpts, commands.WithTelemetry(commands.MetricsTelemetry(cfg.metrics, commands.DefaultTelemetry[UploadImagesCommand](logger))))
	}

	set := &HandlerSet{
		Publish:      NewPublishArticleHandler(pub, logger, cfg.reporter, cfg.publishOpts...),
		UpdateDraft:  NewUpdateDraftHandler(pub, logger, cfg.reporter, cfg.updateOpts...),
		DeleteDraft:  NewDeleteDraftHandler(pub, logger, cfg.reporter, cfg.deleteOpts...),
		UploadImages: NewUploadImagesHandler(pub, logger, cfg.reporter, cfg.imageOpts...),
	}

	if reg != nil {
		for _, handler := range []any{set.Publish, set.UpdateDraft, set.DeleteDraft, set.UploadImages} {
			if err := reg.RegisterCommand(handler); err != nil {
				return nil, err
			}
		}
	}
	return set, nil
}
