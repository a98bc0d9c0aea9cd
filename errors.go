package publisher

import (
	"errors"

	"github.com/goliatone/go-publisher/internal/themes"
	"github.com/goliatone/go-publisher/internal/validation"
)

var (
	ErrFileNotFound     = errors.New("publisher: file not found")
	ErrNotMarkdown      = errors.New("publisher: file is not markdown")
	ErrCoverRequired    = errors.New("publisher: cover image is required")
	ErrUnsupportedImage = errors.New("publisher: unsupported image format")
	ErrThemeNotFound    = themes.ErrThemeNotFound
	// ErrInvalidFrontMatter matches errors listing the metadata fields that
	// exceed platform limits. validation.Issues extracts them.
	ErrInvalidFrontMatter = validation.ErrFrontMatterInvalid
	// ErrPartialUpload is joined with every failed image error when partial
	// uploads are not allowed.
	ErrPartialUpload = errors.New("publisher: some images failed to upload")
)
