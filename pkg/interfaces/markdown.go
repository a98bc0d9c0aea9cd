package interfaces

import "context"

// ParseOptions customises Markdown rendering behaviour, keeping option names
// readable for configuration unmarshalling and CLI flags.
type ParseOptions struct {
	Extensions []string
	HardWraps  bool
	SafeMode   bool
}

// FrontMatter models the article metadata recognised at the top of a
// Markdown file. Unknown keys are preserved in Custom.
type FrontMatter struct {
	Title       string         `yaml:"title" json:"title"`
	Author      string         `yaml:"author" json:"author"`
	Description string         `yaml:"description" json:"description"`
	Cover       string         `yaml:"cover" json:"cover"`
	Theme       string         `yaml:"theme" json:"theme"`
	Code        string         `yaml:"code" json:"code"`
	SourceURL   string         `yaml:"source_url" json:"source_url"`
	Custom      map[string]any `yaml:",inline" json:"custom"`
}

// ImageRef is a single image reference discovered in Markdown content.
type ImageRef struct {
	// Alt is the alternative text attached to the image.
	Alt string
	// Source is the destination exactly as written in the document.
	Source string
	// Line is the 1-based line where the reference starts, zero when unknown.
	Line int
}

// DiagramRenderer turns a diagram definition into an image file on disk.
type DiagramRenderer interface {
	Render(ctx context.Context, definition []byte, outputPath string) error
}
