package publishcmd

import (
	"path/filepath"
	"slices"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	publisher "github.com/goliatone/go-publisher"
)

const (
	publishArticleMessageType = "publisher.publish.article"
	updateDraftMessageType    = "publisher.publish.update_draft"
	deleteDraftMessageType    = "publisher.publish.delete_draft"
	uploadImagesMessageType   = "publisher.publish.upload_images"
)

// ArticleOptions mirrors publisher.UploadOptions in a form that decodes
// from flags and JSON. HideCover is inverted so the zero value shows it.
type ArticleOptions struct {
	Theme            string `json:"theme,omitempty"`
	Title            string `json:"title,omitempty"`
	Author           string `json:"author,omitempty"`
	Cover            string `json:"cover,omitempty"`
	HideCover        bool   `json:"hide_cover,omitempty"`
	EnableComments   bool   `json:"enable_comments,omitempty"`
	FansOnlyComments bool   `json:"fans_only_comments,omitempty"`
	SourceURL        string `json:"source_url,omitempty"`
}

// UploadOptions converts to the client options.
func (o ArticleOptions) UploadOptions() publisher.UploadOptions {
	return publisher.DefaultUploadOptions().
		WithTheme(o.Theme).
		WithTitle(o.Title).
		WithAuthor(o.Author).
		WithCover(o.Cover).
		WithShowCover(!o.HideCover).
		WithComments(o.EnableComments, o.FansOnlyComments).
		WithSourceURL(o.SourceURL)
}

// Validate checks the limits the platform enforces on article metadata.
func (o *ArticleOptions) Validate() error {
	return validation.ValidateStruct(o,
		validation.Field(&o.Title, validation.Length(0, 64)),
		validation.Field(&o.Author, validation.Length(0, 16)),
		validation.Field(&o.SourceURL, is.URL),
	)
}

// PublishArticleCommand renders a Markdown file and stores it as a draft.
type PublishArticleCommand struct {
	Path string `json:"path"`
	ArticleOptions
}

// Type implements command.Message.
func (PublishArticleCommand) Type() string { return publishArticleMessageType }

func (cmd PublishArticleCommand) Validate() error {
	if err := validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Path, validation.Required, validation.By(markdownPath)),
	); err != nil {
		return err
	}
	return cmd.ArticleOptions.Validate()
}

// UpdateDraftCommand re-renders a Markdown file into an existing draft.
type UpdateDraftCommand struct {
	MediaID string `json:"media_id"`
	Path    string `json:"path"`
	ArticleOptions
}

func (UpdateDraftCommand) Type() string { return updateDraftMessageType }

func (cmd UpdateDraftCommand) Validate() error {
	if err := validation.ValidateStruct(&cmd,
		validation.Field(&cmd.MediaID, validation.Required, validation.By(notBlank("publisher.publish.update_draft.media_id_required", "media id is required"))),
		validation.Field(&cmd.Path, validation.Required, validation.By(markdownPath)),
	); err != nil {
		return err
	}
	return cmd.ArticleOptions.Validate()
}

// DeleteDraftCommand removes a draft.
type DeleteDraftCommand struct {
	MediaID string `json:"media_id"`
}

func (DeleteDraftCommand) Type() string { return deleteDraftMessageType }

func (cmd DeleteDraftCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.MediaID, validation.Required, validation.By(notBlank("publisher.publish.delete_draft.media_id_required", "media id is required"))),
	)
}

// UploadImagesCommand uploads standalone images for use in hand written
// article HTML.
type UploadImagesCommand struct {
	Paths []string `json:"paths"`
}

func (UploadImagesCommand) Type() string { return uploadImagesMessageType }

func (cmd UploadImagesCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Paths, validation.Required, validation.Each(validation.Required, validation.By(notBlank("publisher.publish.upload_images.path_required", "path is required")))),
	)
}

var markdownExtensions = []string{".md", ".markdown"}

func markdownPath(value any) error {
	path, _ := value.(string)
	if strings.TrimSpace(path) == "" {
		return validation.NewError("publisher.publish.path_required", "path is required")
	}
	if !slices.Contains(markdownExtensions, strings.ToLower(filepath.Ext(path))) {
		return validation.NewError("publisher.publish.path_not_markdown", "path must be a .md or .markdown file")
	}
	return nil
}

func notBlank(code, message string) validation.RuleFunc {
	return func(value any) error {
		if s, _ := value.(string); strings.TrimSpace(s) == "" {
			return validation.NewError(code, message)
		}
		return nil
	}
}
