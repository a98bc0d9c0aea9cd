package mermaid

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/goliatone/go-slug"

	"github.com/goliatone/go-publisher/internal/logging"
	"github.com/goliatone/go-publisher/internal/upload"
	"github.com/goliatone/go-publisher/pkg/interfaces"
)

// DefaultOutputDir is relative to the article's directory.
const DefaultOutputDir = ".mermaid"

var fencePattern = regexp.MustCompile("(?ms)^[ \t]*```mermaid[ \t]*\r?\n(.*?)^[ \t]*```[ \t]*$")

// Processor replaces mermaid fences with references to rendered images.
type Processor struct {
	renderer  interfaces.DiagramRenderer
	outputDir string
	logger    interfaces.Logger
}

// Option customises a Processor.
type Option func(*Processor)

func WithOutputDir(dir string) Option {
	return func(p *Processor) {
		if strings.TrimSpace(dir) != "" {
			p.outputDir = dir
		}
	}
}

func WithLogger(logger interfaces.Logger) Option {
	return func(p *Processor) {
		p.logger = logging.Ensure(logger)
	}
}

func NewProcessor(renderer interfaces.DiagramRenderer, opts ...Option) *Processor {
	p := &Processor{
		renderer:  renderer,
		outputDir: DefaultOutputDir,
		logger:    logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

// Diagram is one rendered fence.
type Diagram struct {
	Index      int
	Definition []byte
	// Reference is the image path written into the body, relative to the
	// article directory.
	Reference string
	Path      string
}

// Process renders every mermaid fence of body, which belongs to the article
// at docPath. It returns the rewritten body and the image references to
// upload. Diagrams whose image already exists are not rendered again.
func (p *Processor) Process(ctx context.Context, docPath string, body []byte) ([]byte, []interfaces.ImageRef, error) {
	matches := fencePattern.FindAllSubmatchIndex(body, -1)
	if len(matches) == 0 {
		return body, nil, nil
	}
	if p.renderer == nil {
		return nil, nil, fmt.Errorf("mermaid: %d diagrams found but no renderer configured", len(matches))
	}

	baseDir := filepath.Dir(docPath)
	docSlug := DocumentSlug(docPath)

	var (
		out    []byte
		refs   []interfaces.ImageRef
		cursor int
	)
	for i, m := range matches {
		definition := body[m[2]:m[3]]
		diagram := p.diagramFor(baseDir, docSlug, i+1, definition)

		if _, err := os.Stat(diagram.Path); err != nil {
			if err := p.renderer.Render(ctx, definition, diagram.Path); err != nil {
				return nil, nil, fmt.Errorf("render diagram %d of %s: %w", diagram.Index, docPath, err)
			}
			p.logger.Info("mermaid.diagram.rendered", "path", diagram.Path)
		}

		image := fmt.Sprintf("![diagram %d](%s)", diagram.Index, diagram.Reference)
		out = append(out, body[cursor:m[0]]...)
		out = append(out, image...)
		cursor = m[1]

		refs = append(refs, interfaces.ImageRef{
			Alt:    fmt.Sprintf("diagram %d", diagram.Index),
			Source: diagram.Reference,
		})
	}
	out = append(out, body[cursor:]...)
	return out, refs, nil
}

func (p *Processor) diagramFor(baseDir, docSlug string, index int, definition []byte) Diagram {
	name := fmt.Sprintf("%s-%d-%s.png", docSlug, index, upload.Hash(definition).Short()[:8])
	reference := filepath.ToSlash(filepath.Join(p.outputDir, name))
	path := filepath.Join(p.outputDir, name)
	if !filepath.IsAbs(path) {
		path = filepath.Join(baseDir, path)
	}
	return Diagram{
		Index:      index,
		Definition: definition,
		Reference:  reference,
		Path:       path,
	}
}

// DocumentSlug derives a file-name-safe slug from the article file name.
func DocumentSlug(docPath string) string {
	base := strings.TrimSuffix(filepath.Base(docPath), filepath.Ext(docPath))
	normalized, err := slug.Normalize(base)
	if err != nil || normalized == "" {
		return "document"
	}
	return normalized
}
