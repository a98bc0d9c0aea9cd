package markdown

import (
	"bytes"
	"fmt"
	"maps"
	"strings"

	"github.com/adrg/frontmatter"

	"github.com/goliatone/go-publisher/pkg/interfaces"
)

// ParseFrontMatter extracts metadata and Markdown body content from the
// provided source bytes. Sources without a frontmatter block return an empty
// FrontMatter and the full input as body.
func ParseFrontMatter(source []byte) (interfaces.FrontMatter, []byte, error) {
	var meta frontMatterEnvelope

	body, err := frontmatter.Parse(bytes.NewReader(source), &meta)
	if err != nil {
		return interfaces.FrontMatter{}, nil, fmt.Errorf("parse frontmatter: %w", err)
	}

	return envelopeToFrontMatter(meta), body, nil
}

type frontMatterEnvelope struct {
	Title       string         `yaml:"title"`
	Author      string         `yaml:"author"`
	Description string         `yaml:"description"`
	Cover       string         `yaml:"cover"`
	Theme       string         `yaml:"theme"`
	Code        string         `yaml:"code"`
	SourceURL   string         `yaml:"source_url"`
	Custom      map[string]any `yaml:",inline"`
}

func envelopeToFrontMatter(env frontMatterEnvelope) interfaces.FrontMatter {
	custom := maps.Clone(env.Custom)
	if custom == nil {
		custom = map[string]any{}
	}
	return interfaces.FrontMatter{
		Title:       strings.TrimSpace(env.Title),
		Author:      strings.TrimSpace(env.Author),
		Description: strings.TrimSpace(env.Description),
		Cover:       strings.TrimSpace(env.Cover),
		Theme:       strings.TrimSpace(env.Theme),
		Code:        strings.TrimSpace(env.Code),
		SourceURL:   strings.TrimSpace(env.SourceURL),
		Custom:      custom,
	}
}
