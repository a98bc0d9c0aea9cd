package publishcmd

import (
	"context"
	"errors"
	"fmt"

	command "github.com/goliatone/go-command"
	publisher "github.com/goliatone/go-publisher"
	"github.com/goliatone/go-publisher/internal/commands"
	"github.com/goliatone/go-publisher/internal/logging"
	"github.com/goliatone/go-publisher/internal/upload"
	"github.com/goliatone/go-publisher/pkg/interfaces"
)

const (
	publishOperation      = "publish.article"
	updateDraftOperation  = "publish.update_draft"
	deleteDraftOperation  = "publish.delete_draft"
	uploadImagesOperation = "publish.upload_images"
)

// ErrImagesFailed is returned when at least one standalone image upload failed.
var ErrImagesFailed = errors.New("publish command: image uploads failed")

var (
	_ command.Commander[PublishArticleCommand] = (*PublishArticleHandler)(nil)
	_ command.Commander[UpdateDraftCommand]    = (*UpdateDraftHandler)(nil)
	_ command.Commander[DeleteDraftCommand]    = (*DeleteDraftHandler)(nil)
	_ command.Commander[UploadImagesCommand]   = (*UploadImagesHandler)(nil)
)

// Publisher is the client surface the handlers drive. *publisher.Client
// satisfies it.
type Publisher interface {
	Upload(ctx context.Context, markdownPath string, opts publisher.UploadOptions) (string, error)
	UpdateDraft(ctx context.Context, mediaID, markdownPath string, opts publisher.UploadOptions) error
	DeleteDraft(ctx context.Context, mediaID string) error
	UploadImages(ctx context.Context, items []publisher.UploadItem) []publisher.Outcome
}

// Result describes what a handler did. Outcomes is only set for image uploads.
type Result struct {
	Operation string
	Path      string
	MediaID   string
	Outcomes  []publisher.Outcome
}

// Reporter receives a Result after each successful execution.
type Reporter func(Result)

func (r Reporter) report(result Result) {
	if r != nil {
		r(result)
	}
}

// PublishArticleHandler publishes a Markdown file as a draft.
type PublishArticleHandler struct {
	inner *commands.Handler[PublishArticleCommand]
}

// NewPublishArticleHandler creates a handler bound to the supplied publisher.
func NewPublishArticleHandler(pub Publisher, logger interfaces.Logger, reporter Reporter, opts ...commands.HandlerOption[PublishArticleCommand]) *PublishArticleHandler {
	baseLogger := logging.Ensure(logger)

	exec := func(ctx context.Context, msg PublishArticleCommand) error {
		mediaID, err := pub.Upload(ctx, msg.Path, msg.UploadOptions())
		if err != nil {
			return err
		}
		logging.WithFields(baseLogger, map[string]any{
			"path":     msg.Path,
			"media_id": mediaID,
		}).Info("publish.command.article.completed")
		reporter.report(Result{Operation: publishOperation, Path: msg.Path, MediaID: mediaID})
		return nil
	}

	handlerOpts := []commands.HandlerOption[PublishArticleCommand]{
		commands.WithLogger[PublishArticleCommand](baseLogger),
		commands.WithOperation[PublishArticleCommand](publishOperation),
		commands.WithMessageFields(func(msg PublishArticleCommand) map[string]any {
			return articleFields(msg.Path, msg.ArticleOptions)
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[PublishArticleCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &PublishArticleHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[PublishArticleCommand].
func (h *PublishArticleHandler) Execute(ctx context.Context, msg PublishArticleCommand) error {
	return h.inner.Execute(ctx, msg)
}

// UpdateDraftHandler overwrites an existing draft from a Markdown file.
type UpdateDraftHandler struct {
	inner *commands.Handler[UpdateDraftCommand]
}

func NewUpdateDraftHandler(pub Publisher, logger interfaces.Logger, reporter Reporter, opts ...commands.HandlerOption[UpdateDraftCommand]) *UpdateDraftHandler {
	baseLogger := logging.Ensure(logger)

	exec := func(ctx context.Context, msg UpdateDraftCommand) error {
		if err := pub.UpdateDraft(ctx, msg.MediaID, msg.Path, msg.UploadOptions()); err != nil {
			return err
		}
		reporter.report(Result{Operation: updateDraftOperation, Path: msg.Path, MediaID: msg.MediaID})
		return nil
	}

	handlerOpts := []commands.HandlerOption[UpdateDraftCommand]{
		commands.WithLogger[UpdateDraftCommand](baseLogger),
		commands.WithOperation[UpdateDraftCommand](updateDraftOperation),
		commands.WithMessageFields(func(msg UpdateDraftCommand) map[string]any {
			fields := articleFields(msg.Path, msg.ArticleOptions)
			fields["media_id"] = msg.MediaID
			return fields
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[UpdateDraftCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &UpdateDraftHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

func (h *UpdateDraftHandler) Execute(ctx context.Context, msg UpdateDraftCommand) error {
	return h.inner.Execute(ctx, msg)
}

// DeleteDraftHandler removes a draft.
type DeleteDraftHandler struct {
	inner *commands.Handler[DeleteDraftCommand]
}

func NewDeleteDraftHandler(pub Publisher, logger interfaces.Logger, reporter Reporter, opts ...commands.HandlerOption[DeleteDraftCommand]) *DeleteDraftHandler {
	baseLogger := logging.Ensure(logger)

	exec := func(ctx context.Context, msg DeleteDraftCommand) error {
		if err := pub.DeleteDraft(ctx, msg.MediaID); err != nil {
			return err
		}
		reporter.report(Result{Operation: deleteDraftOperation, MediaID: msg.MediaID})
		return nil
	}

	handlerOpts := []commands.HandlerOption[DeleteDraftCommand]{
		commands.WithLogger[DeleteDraftCommand](baseLogger),
		commands.WithOperation[DeleteDraftCommand](deleteDraftOperation),
		commands.WithMessageFields(func(msg DeleteDraftCommand) map[string]any {
			return map[string]any{"media_id": msg.MediaID}
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[DeleteDraftCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &DeleteDraftHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

func (h *DeleteDraftHandler) Execute(ctx context.Context, msg DeleteDraftCommand) error {
	return h.inner.Execute(ctx, msg)
}

// UploadImagesHandler uploads standalone images. Every outcome is reported,
// and the handler fails when any single upload failed.
type UploadImagesHandler struct {
	inner *commands.Handler[UploadImagesCommand]
}

func NewUploadImagesHandler(pub Publisher, logger interfaces.Logger, reporter Reporter, opts ...commands.HandlerOption[UploadImagesCommand]) *UploadImagesHandler {
	baseLogger := logging.Ensure(logger)

	exec := func(ctx context.Context, msg UploadImagesCommand) error {
		items := make([]publisher.UploadItem, 0, len(msg.Paths))
		for _, path := range msg.Paths {
			items = append(items, publisher.UploadItem{Reference: path, Path: path})
		}
		outcomes := pub.UploadImages(ctx, items)
		reporter.report(Result{Operation: uploadImagesOperation, Outcomes: outcomes})

		failed := upload.Failures(outcomes)
		if len(failed) == 0 {
			return nil
		}
		errs := []error{fmt.Errorf("%w: %d of %d", ErrImagesFailed, len(failed), len(outcomes))}
		for _, out := range failed {
			errs = append(errs, out.Err)
		}
		return errors.Join(errs...)
	}

	handlerOpts := []commands.HandlerOption[UploadImagesCommand]{
		commands.WithLogger[UploadImagesCommand](baseLogger),
		commands.WithOperation[UploadImagesCommand](uploadImagesOperation),
		commands.WithMessageFields(func(msg UploadImagesCommand) map[string]any {
			return map[string]any{"image_count": len(msg.Paths)}
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[UploadImagesCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &UploadImagesHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

func (h *UploadImagesHandler) Execute(ctx context.Context, msg UploadImagesCommand) error {
	return h.inner.Execute(ctx, msg)
}

func articleFields(path string, opts ArticleOptions) map[string]any {
	fields := map[string]any{"path": path}
	if opts.Theme != "" {
		fields["theme"] = opts.Theme
	}
	if opts.Title != "" {
		fields["title"] = opts.Title
	}
	if opts.Cover != "" {
		fields["cover"] = opts.Cover
	}
	return fields
}
