package publisher

import (
	"cmp"
	"fmt"
	"strings"

	"github.com/goliatone/go-publisher/internal/markdown"
	"github.com/goliatone/go-publisher/internal/themes"
	"github.com/goliatone/go-publisher/internal/validation"
)

// Preview is an article rendered locally. Nothing is uploaded, so image
// references are left as written.
type Preview struct {
	Title     string
	Author    string
	Digest    string
	Theme     string
	CodeTheme string
	HTML      string
	// LocalImages lists the references Upload would send to the platform.
	LocalImages []string
}

// RenderPreview renders markdownPath with the same theme resolution Upload
// uses. It needs no credentials and makes no network calls. Mermaid blocks
// stay as code.
func RenderPreview(markdownPath string, opts UploadOptions, theme ThemeConfig) (Preview, error) {
	if err := checkMarkdown(markdownPath); err != nil {
		return Preview{}, err
	}
	doc, err := markdown.ParseFile(markdownPath)
	if err != nil {
		return Preview{}, err
	}
	fm := doc.FrontMatter
	if err := validation.ValidateFrontMatter(fm); err != nil {
		return Preview{}, fmt.Errorf("%s: %w", markdownPath, err)
	}

	p := Preview{
		Title:     cmp.Or(opts.Title, fm.Title, defaultTitle),
		Author:    cmp.Or(opts.Author, fm.Author, defaultAuthor),
		Digest:    cmp.Or(strings.TrimSpace(fm.Description), doc.Summary(digestLength)),
		Theme:     cmp.Or(fm.Theme, opts.Theme, theme.Default, themes.DefaultTheme),
		CodeTheme: cmp.Or(fm.Code, theme.CodeTheme, themes.DefaultCodeTheme),
	}

	renderer := themes.NewRenderer(nil, themes.WithCacheSize(0))
	if !renderer.Registry().Has(p.Theme) {
		return Preview{}, fmt.Errorf("%w: %s", ErrThemeNotFound, p.Theme)
	}
	if p.HTML, err = renderer.Render(doc.Body, p.Theme, p.CodeTheme); err != nil {
		return Preview{}, err
	}
	for _, ref := range doc.LocalImages() {
		p.LocalImages = append(p.LocalImages, ref.Source)
	}
	return p, nil
}
