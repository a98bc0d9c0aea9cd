package logging

import (
	"maps"
	"strings"

	"github.com/goliatone/go-publisher/pkg/interfaces"
)

const (
	fieldArticlePath = "article_path"
	fieldArticleID   = "article_id"
	fieldReference   = "reference"
	fieldContentID   = "content_id"
)

// WithFields attaches structured fields to a logger when the implementation
// supports the optional FieldsLogger extension. Callers can pass nil or an
// empty map to skip allocation safely.
func WithFields(logger interfaces.Logger, fields map[string]any) interfaces.Logger {
	if logger == nil || len(fields) == 0 {
		return logger
	}

	if fieldsLogger, ok := logger.(interfaces.FieldsLogger); ok {
		return fieldsLogger.WithFields(maps.Clone(fields))
	}

	return logger
}

// WithArticle enriches the logger with the article path and correlation id.
// Empty values are ignored.
func WithArticle(logger interfaces.Logger, path, articleID string) interfaces.Logger {
	fields := map[string]any{}
	if trimmed := strings.TrimSpace(path); trimmed != "" {
		fields[fieldArticlePath] = trimmed
	}
	if trimmed := strings.TrimSpace(articleID); trimmed != "" {
		fields[fieldArticleID] = trimmed
	}
	return WithFields(logger, fields)
}

// WithTask enriches the logger with the upload task reference and content id.
func WithTask(logger interfaces.Logger, reference, contentID string) interfaces.Logger {
	fields := map[string]any{}
	if reference != "" {
		fields[fieldReference] = reference
	}
	if contentID != "" {
		fields[fieldContentID] = contentID
	}
	return WithFields(logger, fields)
}
