package publisher

import (
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/goliatone/go-publisher/pkg/interfaces"
)

// UploadOptions tunes a single publish. Empty fields fall back to the
// frontmatter and then to the client defaults.
type UploadOptions struct {
	Theme            string
	Title            string
	Author           string
	CoverImage       string
	ShowCover        bool
	EnableComments   bool
	FansOnlyComments bool
	SourceURL        string
}

// DefaultUploadOptions shows the cover and keeps comments closed.
func DefaultUploadOptions() UploadOptions {
	return UploadOptions{ShowCover: true}
}

// WithTheme starts an options chain with the given theme.
func WithTheme(theme string) UploadOptions {
	return DefaultUploadOptions().WithTheme(theme)
}

func (o UploadOptions) WithTheme(theme string) UploadOptions {
	o.Theme = strings.TrimSpace(theme)
	return o
}

func (o UploadOptions) WithTitle(title string) UploadOptions {
	o.Title = strings.TrimSpace(title)
	return o
}

func (o UploadOptions) WithAuthor(author string) UploadOptions {
	o.Author = strings.TrimSpace(author)
	return o
}

func (o UploadOptions) WithCover(path string) UploadOptions {
	o.CoverImage = strings.TrimSpace(path)
	return o
}

func (o UploadOptions) WithShowCover(show bool) UploadOptions {
	o.ShowCover = show
	return o
}

// WithComments opens comments. fansOnly only matters when enable is true.
func (o UploadOptions) WithComments(enable, fansOnly bool) UploadOptions {
	o.EnableComments = enable
	o.FansOnlyComments = enable && fansOnly
	return o
}

func (o UploadOptions) WithSourceURL(url string) UploadOptions {
	o.SourceURL = strings.TrimSpace(url)
	return o
}

// Option customises a Client at construction.
type Option func(*clientOptions)

type clientOptions struct {
	provider   interfaces.LoggerProvider
	httpClient *http.Client
	baseURL    string
	registerer prometheus.Registerer
	renderer   interfaces.DiagramRenderer
	now        func() time.Time
}

// WithLoggerProvider replaces the provider selected by Config.Logging.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(o *clientOptions) {
		o.provider = provider
	}
}

func WithHTTPClient(client *http.Client) Option {
	return func(o *clientOptions) {
		o.httpClient = client
	}
}

// WithBaseURL points the client at another platform host, mostly for tests.
func WithBaseURL(baseURL string) Option {
	return func(o *clientOptions) {
		o.baseURL = strings.TrimSpace(baseURL)
	}
}

// WithMetricsRegisterer registers upload and command metrics on reg even
// when Config.Metrics is disabled.
func WithMetricsRegisterer(reg prometheus.Registerer) Option {
	return func(o *clientOptions) {
		o.registerer = reg
	}
}

// WithDiagramRenderer swaps the mermaid CLI renderer.
func WithDiagramRenderer(renderer interfaces.DiagramRenderer) Option {
	return func(o *clientOptions) {
		o.renderer = renderer
	}
}

// WithClock overrides the clock used for credential expiry.
func WithClock(now func() time.Time) Option {
	return func(o *clientOptions) {
		o.now = now
	}
}
