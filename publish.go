package publisher

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/goliatone/go-publisher/internal/identity"
	"github.com/goliatone/go-publisher/internal/logging"
	"github.com/goliatone/go-publisher/internal/markdown"
	"github.com/goliatone/go-publisher/internal/upload"
	"github.com/goliatone/go-publisher/internal/validation"
	"github.com/goliatone/go-publisher/pkg/interfaces"
)

const (
	defaultTitle  = "Untitled"
	defaultAuthor = "Anonymous"
	digestLength  = 120
)

var (
	markdownExtensions = []string{".md", ".markdown"}
	coverExtensions    = []string{".jpg", ".jpeg", ".png", ".gif", ".bmp"}
)

// Upload renders the Markdown file at markdownPath and stores it as a draft,
// returning the draft media id. With title dedup enabled an existing draft
// carrying the same title is updated in place instead.
func (c *Client) Upload(ctx context.Context, markdownPath string, opts UploadOptions) (string, error) {
	ctx, logger := c.runLogger(ctx, markdownPath)
	article, err := c.prepare(ctx, markdownPath, opts, logger)
	if err != nil {
		return "", err
	}

	if c.cfg.Drafts.DedupByTitle {
		existing, found, err := c.drafts.FindByTitle(ctx, article.Title)
		if err != nil {
			return "", fmt.Errorf("look up draft %q: %w", article.Title, err)
		}
		if found {
			if err := c.drafts.Update(ctx, existing.MediaID, []Article{article}); err != nil {
				return "", err
			}
			logger.Info("publisher.draft.replaced", "media_id", existing.MediaID, "title", article.Title)
			return existing.MediaID, nil
		}
	}

	mediaID, err := c.drafts.Create(ctx, []Article{article})
	if err != nil {
		return "", err
	}
	logger.Info("publisher.draft.created", "media_id", mediaID, "title", article.Title)
	return mediaID, nil
}

// UpdateDraft renders markdownPath and replaces the first article of the
// draft identified by mediaID.
func (c *Client) UpdateDraft(ctx context.Context, mediaID, markdownPath string, opts UploadOptions) error {
	ctx, logger := c.runLogger(ctx, markdownPath)
	article, err := c.prepare(ctx, markdownPath, opts, logger)
	if err != nil {
		return err
	}
	if err := c.drafts.Update(ctx, mediaID, []Article{article}); err != nil {
		return err
	}
	logger.Info("publisher.draft.updated", "media_id", mediaID, "title", article.Title)
	return nil
}

func (c *Client) runLogger(ctx context.Context, markdownPath string) (context.Context, interfaces.Logger) {
	articleID := identity.ArticleID(markdownPath).String()
	ctx = logging.ContextWithFields(ctx, map[string]any{
		"run_id": identity.RunID().String(),
	})
	return ctx, logging.WithArticle(c.logger, markdownPath, articleID).WithContext(ctx)
}

// prepare runs every publishing step that comes before the draft call.
func (c *Client) prepare(ctx context.Context, markdownPath string, opts UploadOptions, logger interfaces.Logger) (Article, error) {
	if err := checkMarkdown(markdownPath); err != nil {
		return Article{}, err
	}
	doc, err := markdown.ParseFile(markdownPath)
	if err != nil {
		return Article{}, err
	}
	fm := doc.FrontMatter
	if err := validation.ValidateFrontMatter(fm); err != nil {
		return Article{}, fmt.Errorf("%s: %w", markdownPath, err)
	}
	baseDir := filepath.Dir(markdownPath)

	coverPath, err := resolveCover(baseDir, opts.CoverImage, fm.Cover)
	if err != nil {
		return Article{}, err
	}
	theme := cmp.Or(fm.Theme, opts.Theme, c.cfg.Theme.Default)
	if !c.HasTheme(theme) {
		return Article{}, fmt.Errorf("%w: %s", ErrThemeNotFound, theme)
	}

	if c.diagrams != nil {
		body, diagrams, err := c.diagrams.Process(ctx, markdownPath, doc.Body)
		if err != nil {
			return Article{}, err
		}
		if len(diagrams) > 0 {
			doc.Body = body
			doc.Images = markdown.ExtractImages(body)
			logger.Debug("publisher.diagrams.rendered", "count", len(diagrams))
		}
	}

	if err := c.uploadBodyImages(ctx, doc, baseDir, logger); err != nil {
		return Article{}, err
	}

	cover := c.materials.Upload(ctx, upload.Item{Reference: coverPath, Path: coverPath})
	if cover.Err != nil {
		return Article{}, fmt.Errorf("upload cover %s: %w", coverPath, cover.Err)
	}

	content, err := c.themes.Render(doc.Body, theme, cmp.Or(fm.Code, c.cfg.Theme.CodeTheme))
	if err != nil {
		return Article{}, err
	}

	article := Article{
		Title:            cmp.Or(opts.Title, fm.Title, defaultTitle),
		Author:           cmp.Or(opts.Author, fm.Author, defaultAuthor),
		Digest:           cmp.Or(strings.TrimSpace(fm.Description), doc.Summary(digestLength)),
		Content:          content,
		ContentSourceURL: cmp.Or(opts.SourceURL, fm.SourceURL),
		ThumbMediaID:     cover.Entry.MediaID,
		ShowCoverPic:     flag(opts.ShowCover),
		NeedOpenComment:  flag(opts.EnableComments),
	}
	if opts.EnableComments {
		article.OnlyFansCanComment = flag(opts.FansOnlyComments)
	}
	logger.Debug("publisher.article.prepared", "theme", theme, "title", article.Title, "bytes", len(content))
	return article, nil
}

// uploadBodyImages uploads every local image and rewrites the body. Failed
// uploads abort the publish unless partial uploads are allowed, in which case
// failed references stay in the body as written.
func (c *Client) uploadBodyImages(ctx context.Context, doc *markdown.Document, baseDir string, logger interfaces.Logger) error {
	refs := doc.LocalImages()
	if len(refs) == 0 {
		return nil
	}

	items := make([]upload.Item, 0, len(refs))
	seen := make(map[string]struct{}, len(refs))
	for _, ref := range refs {
		if _, dup := seen[ref.Source]; dup {
			continue
		}
		seen[ref.Source] = struct{}{}
		items = append(items, upload.Item{Reference: ref.Source, Path: localPath(baseDir, ref.Source)})
	}

	outcomes := c.images.UploadAll(ctx, items)
	if failed := upload.Failures(outcomes); len(failed) > 0 {
		if !c.cfg.Upload.AllowPartial {
			errs := []error{ErrPartialUpload}
			for _, out := range failed {
				errs = append(errs, fmt.Errorf("%s: %w", out.Reference, out.Err))
			}
			return errors.Join(errs...)
		}
		logger.Warn("publisher.images.partial", "failed", len(failed), "total", len(outcomes))
	}

	doc.ReplaceImages(upload.BuildMapping(outcomes))
	logger.Info("publisher.images.uploaded", "count", len(outcomes))
	return nil
}

func checkMarkdown(path string) error {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return fmt.Errorf("%w: %s", ErrFileNotFound, path)
	}
	if !slices.Contains(markdownExtensions, strings.ToLower(filepath.Ext(path))) {
		return fmt.Errorf("%w: %s", ErrNotMarkdown, path)
	}
	return nil
}

// resolveCover prefers the option path as given and falls back to the
// frontmatter path, which is relative to the article.
func resolveCover(baseDir, fromOptions, fromFrontMatter string) (string, error) {
	var path string
	switch {
	case strings.TrimSpace(fromOptions) != "":
		path = strings.TrimSpace(fromOptions)
	case strings.TrimSpace(fromFrontMatter) != "":
		path = localPath(baseDir, strings.TrimSpace(fromFrontMatter))
	default:
		return "", ErrCoverRequired
	}
	if info, err := os.Stat(path); err != nil || info.IsDir() {
		return "", fmt.Errorf("%w: cover %s", ErrFileNotFound, path)
	}
	if !slices.Contains(coverExtensions, strings.ToLower(filepath.Ext(path))) {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedImage, path)
	}
	return path, nil
}

// localPath resolves a Markdown image destination against the article
// directory, decoding %20 style escapes when the raw name does not exist.
func localPath(baseDir, src string) string {
	path := src
	if !filepath.IsAbs(path) {
		path = filepath.Join(baseDir, filepath.FromSlash(src))
	}
	if _, err := os.Stat(path); err == nil {
		return path
	}
	if decoded, err := url.PathUnescape(src); err == nil && decoded != src {
		return localPath(baseDir, decoded)
	}
	return path
}

func flag(b bool) int {
	if b {
		return 1
	}
	return 0
}
