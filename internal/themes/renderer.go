package themes

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"html"
	"slices"
	"strings"

	"github.com/PuerkitoBio/goquery"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/zeebo/blake3"

	"github.com/goliatone/go-publisher/internal/logging"
	"github.com/goliatone/go-publisher/internal/markdown"
	"github.com/goliatone/go-publisher/pkg/interfaces"
)

const defaultCacheSize = 64

// Renderer turns article Markdown into HTML with every style inlined, which
// is the only styling the draft editor keeps.
type Renderer struct {
	registry *Registry
	parser   *markdown.GoldmarkParser
	cache    *lru.Cache[string, string]
	logger   interfaces.Logger
}

// RendererOption configures a Renderer.
type RendererOption func(*Renderer)

// WithCacheSize bounds the number of rendered articles kept in memory. Zero
// or negative disables the cache.
func WithCacheSize(size int) RendererOption {
	return func(r *Renderer) {
		if size <= 0 {
			r.cache = nil
			return
		}
		if cache, err := lru.New[string, string](size); err == nil {
			r.cache = cache
		}
	}
}

// WithLogger sets the renderer logger.
func WithLogger(logger interfaces.Logger) RendererOption {
	return func(r *Renderer) {
		r.logger = logger
	}
}

// WithParser swaps the Markdown parser.
func WithParser(parser *markdown.GoldmarkParser) RendererOption {
	return func(r *Renderer) {
		if parser != nil {
			r.parser = parser
		}
	}
}

// NewRenderer builds a renderer over the registry. A nil registry uses the
// built-in themes.
func NewRenderer(registry *Registry, opts ...RendererOption) *Renderer {
	if registry == nil {
		registry = NewRegistry()
	}
	r := &Renderer{
		registry: registry,
		parser:   markdown.NewGoldmarkParser(interfaces.ParseOptions{}),
	}
	WithCacheSize(defaultCacheSize)(r)
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	r.logger = logging.Ensure(r.logger)
	return r
}

// Registry exposes the themes the renderer resolves names against.
func (r *Renderer) Registry() *Registry {
	return r.registry
}

// Render converts body to styled HTML. Empty theme and code names fall back
// to DefaultTheme and DefaultCodeTheme.
func (r *Renderer) Render(body []byte, theme, code string) (string, error) {
	t, c, err := r.registry.resolve(theme, code)
	if err != nil {
		return "", err
	}

	key := cacheKey(t.Name, c.Name, body)
	if r.cache != nil {
		if out, ok := r.cache.Get(key); ok {
			r.logger.Debug("themes.render.cache_hit", "theme", t.Name, "code_theme", c.Name)
			return out, nil
		}
	}

	raw, err := r.parser.Parse(body)
	if err != nil {
		return "", err
	}
	out, err := inline(raw, t, c)
	if err != nil {
		return "", fmt.Errorf("themes: style %s: %w", t.Name, err)
	}
	if r.cache != nil {
		r.cache.Add(key, out)
	}
	r.logger.Debug("themes.render.completed", "theme", t.Name, "code_theme", c.Name, "bytes", len(out))
	return out, nil
}

func inline(raw []byte, t Theme, c CodeTheme) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return "", err
	}
	body := doc.Find("body")

	selectors := make([]string, 0, len(t.Styles))
	for sel := range t.Styles {
		selectors = append(selectors, sel)
	}
	slices.Sort(selectors)
	for _, sel := range selectors {
		body.Find(sel).Each(func(_ int, s *goquery.Selection) {
			appendStyle(s, t.Styles[sel])
		})
	}

	body.Find("pre").Each(func(_ int, s *goquery.Selection) {
		appendStyle(s, fmt.Sprintf("background: %s; color: %s; border: 1px solid %s; border-radius: 5px; padding: 12px 14px; margin: 1em 0; overflow-x: auto; font-size: 13px; line-height: 1.6;", c.Background, c.Foreground, c.Border))
		s.Find("code").Each(func(_ int, code *goquery.Selection) {
			appendStyle(code, "font-family: Menlo, Consolas, Monaco, monospace; background: none; color: inherit; white-space: pre;")
		})
	})
	body.Find("code").Each(func(_ int, s *goquery.Selection) {
		if s.ParentsFiltered("pre").Length() > 0 {
			return
		}
		appendStyle(s, fmt.Sprintf("font-family: Menlo, Consolas, Monaco, monospace; background: %s; color: %s; padding: 2px 4px; border-radius: 3px; font-size: 90%%;", c.InlineBg, c.InlineColor))
	})

	content, err := body.Html()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(`<section style="%s">%s</section>`, html.EscapeString(t.Container), strings.TrimSpace(content)), nil
}

func appendStyle(s *goquery.Selection, style string) {
	if style == "" {
		return
	}
	existing := strings.TrimSpace(s.AttrOr("style", ""))
	if existing != "" && !strings.HasSuffix(existing, ";") {
		existing += ";"
	}
	if existing != "" {
		existing += " "
	}
	s.SetAttr("style", existing+style)
}

func cacheKey(theme, code string, body []byte) string {
	h := blake3.New()
	h.WriteString(theme)
	h.WriteString("\x00")
	h.WriteString(code)
	h.WriteString("\x00")
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}
