// Package markdown reads article sources: frontmatter, image references,
// image URL rewriting, plain-text summaries and goldmark HTML rendering.
package markdown
