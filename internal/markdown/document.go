package markdown

import (
	"bytes"
	"fmt"
	"os"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/goliatone/go-publisher/pkg/interfaces"
)

// Document is a parsed article source.
type Document struct {
	Path        string
	FrontMatter interfaces.FrontMatter
	Body        []byte
	Images      []interfaces.ImageRef
}

// ParseFile reads and parses the Markdown file at path.
func ParseFile(path string) (*Document, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read markdown %s: %w", path, err)
	}
	return ParseDocument(path, source)
}

// ParseDocument splits frontmatter from source and collects the image
// references of the body.
func ParseDocument(path string, source []byte) (*Document, error) {
	fm, body, err := ParseFrontMatter(source)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &Document{
		Path:        path,
		FrontMatter: fm,
		Body:        body,
		Images:      ExtractImages(body),
	}, nil
}

// LocalImages returns the references that point at local files.
func (d *Document) LocalImages() []interfaces.ImageRef {
	var local []interfaces.ImageRef
	for _, ref := range d.Images {
		if !IsRemote(ref.Source) {
			local = append(local, ref)
		}
	}
	return local
}

// ReplaceImages rewrites image destinations found in mapping.
func (d *Document) ReplaceImages(mapping map[string]string) {
	d.Body = RewriteImages(d.Body, mapping)
}

// Summary returns the first limit runes of the body as plain text.
func (d *Document) Summary(limit int) string {
	return Summarize(d.Body, limit)
}

// IsRemote reports whether src already lives on the network.
func IsRemote(src string) bool {
	lower := strings.ToLower(strings.TrimSpace(src))
	for _, prefix := range []string{"http://", "https://", "//", "data:"} {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}

var htmlImageSrc = regexp.MustCompile(`(?i)(<img\b[^>]*?\bsrc\s*=\s*["'])([^"']+)(["'])`)

// ExtractImages walks the Markdown AST and returns image references in
// document order. Inline <img> tags are included; code is skipped.
func ExtractImages(body []byte) []interfaces.ImageRef {
	doc := newGoldmarkEngine(interfaces.ParseOptions{}).Parser().Parse(text.NewReader(body))

	var refs []interfaces.ImageRef
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.FencedCodeBlock, *ast.CodeBlock, *ast.CodeSpan:
			return ast.WalkSkipChildren, nil
		case *ast.Image:
			refs = append(refs, interfaces.ImageRef{
				Alt:    plainText(node, body),
				Source: string(node.Destination),
				Line:   lineOf(node, body),
			})
			return ast.WalkSkipChildren, nil
		case *ast.HTMLBlock:
			refs = append(refs, htmlImages(node.Lines(), body, lineOf(node, body))...)
		case *ast.RawHTML:
			refs = append(refs, htmlImages(node.Segments, body, lineOf(node, body))...)
		}
		return ast.WalkContinue, nil
	})
	return refs
}

func htmlImages(lines *text.Segments, source []byte, line int) []interfaces.ImageRef {
	var buf bytes.Buffer
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(source))
	}
	var refs []interfaces.ImageRef
	for _, match := range htmlImageSrc.FindAllSubmatch(buf.Bytes(), -1) {
		refs = append(refs, interfaces.ImageRef{Source: string(match[2]), Line: line})
	}
	return refs
}

func plainText(n ast.Node, source []byte) string {
	var buf strings.Builder
	_ = ast.Walk(n, func(child ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering {
			if t, ok := child.(*ast.Text); ok {
				buf.Write(t.Segment.Value(source))
			}
		}
		return ast.WalkContinue, nil
	})
	return buf.String()
}

// lineOf finds the first line of the closest block carrying source lines.
func lineOf(n ast.Node, source []byte) int {
	for cur := n; cur != nil; cur = cur.Parent() {
		if cur.Type() != ast.TypeBlock {
			continue
		}
		if lines := cur.Lines(); lines != nil && lines.Len() > 0 {
			return bytes.Count(source[:lines.At(0).Start], []byte("\n")) + 1
		}
	}
	return 0
}

var markdownImage = regexp.MustCompile(`!\[([^\]]*)\]\(\s*<?([^\s)>]+)>?((?:\s+"[^"]*")?)\s*\)`)

// RewriteImages replaces image destinations that have an entry in mapping.
// Fenced code blocks are left untouched.
func RewriteImages(body []byte, mapping map[string]string) []byte {
	if len(mapping) == 0 {
		return body
	}

	var out bytes.Buffer
	inFence := false
	fence := ""
	for _, line := range bytes.SplitAfter(body, []byte("\n")) {
		trimmed := strings.TrimSpace(string(line))
		if marker, ok := fenceMarker(trimmed); ok {
			switch {
			case !inFence:
				inFence, fence = true, marker
			case strings.HasPrefix(trimmed, fence):
				inFence = false
			}
			out.Write(line)
			continue
		}
		if inFence {
			out.Write(line)
			continue
		}
		line = markdownImage.ReplaceAllFunc(line, func(match []byte) []byte {
			parts := markdownImage.FindSubmatch(match)
			target, ok := mapping[string(parts[2])]
			if !ok {
				return match
			}
			return fmt.Appendf(nil, "![%s](%s%s)", parts[1], target, parts[3])
		})
		line = htmlImageSrc.ReplaceAllFunc(line, func(match []byte) []byte {
			parts := htmlImageSrc.FindSubmatch(match)
			target, ok := mapping[string(parts[2])]
			if !ok {
				return match
			}
			return fmt.Appendf(nil, "%s%s%s", parts[1], target, parts[3])
		})
		out.Write(line)
	}
	return out.Bytes()
}

func fenceMarker(line string) (string, bool) {
	for _, marker := range []string{"```", "~~~"} {
		if strings.HasPrefix(line, marker) {
			return marker, true
		}
	}
	return "", false
}

// Summarize flattens body to plain text and cuts it at limit runes, adding
// an ellipsis when text was dropped. Code and raw HTML are skipped.
func Summarize(body []byte, limit int) string {
	doc := newGoldmarkEngine(interfaces.ParseOptions{}).Parser().Parse(text.NewReader(body))

	var buf strings.Builder
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		switch node := n.(type) {
		case *ast.FencedCodeBlock, *ast.CodeBlock, *ast.HTMLBlock, *ast.RawHTML, *ast.Image:
			return ast.WalkSkipChildren, nil
		case *ast.Text:
			if entering {
				buf.Write(node.Segment.Value(body))
				if node.SoftLineBreak() || node.HardLineBreak() {
					buf.WriteByte(' ')
				}
			}
		case *ast.String:
			if entering {
				buf.Write(node.Value)
			}
		default:
			if !entering && n.Type() == ast.TypeBlock {
				buf.WriteByte(' ')
			}
		}
		return ast.WalkContinue, nil
	})

	summary := strings.Join(strings.Fields(buf.String()), " ")
	if limit <= 0 || utf8.RuneCountInString(summary) <= limit {
		return summary
	}
	runes := []rune(summary)
	return strings.TrimSpace(string(runes[:limit])) + "..."
}
