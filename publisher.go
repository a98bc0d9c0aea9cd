package publisher

import (
	"cmp"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/goliatone/go-publisher/internal/auth"
	"github.com/goliatone/go-publisher/internal/datacube"
	"github.com/goliatone/go-publisher/internal/drafts"
	"github.com/goliatone/go-publisher/internal/logging"
	"github.com/goliatone/go-publisher/internal/logging/console"
	"github.com/goliatone/go-publisher/internal/logging/gologger"
	"github.com/goliatone/go-publisher/internal/mermaid"
	"github.com/goliatone/go-publisher/internal/themes"
	"github.com/goliatone/go-publisher/internal/transport"
	"github.com/goliatone/go-publisher/internal/upload"
	"github.com/goliatone/go-publisher/pkg/interfaces"
)

type (
	Article    = drafts.Article
	Draft      = drafts.Draft
	DraftPage  = drafts.Page
	Credential = auth.Credential
	UploadItem = upload.Item
	Outcome    = upload.Outcome
)

// Client publishes Markdown articles as platform drafts. It owns one
// credential cache and one upload cache per media kind, shared by every call
// for the lifetime of the Client.
type Client struct {
	cfg      Config
	provider interfaces.LoggerProvider
	logger   interfaces.Logger

	transport *transport.Client
	tokens    *auth.Cache
	images    *upload.Scheduler
	materials *upload.Scheduler
	diagrams  *mermaid.Processor
	themes    *themes.Renderer
	drafts    *drafts.Service
	datacube  *datacube.Client
}

// New validates cfg and wires the client. No network call is made until the
// first operation needs a credential.
func New(cfg Config, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := clientOptions{}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	provider := o.provider
	if provider == nil {
		var err error
		if provider, err = newLoggerProvider(cfg.Logging); err != nil {
			return nil, err
		}
	}

	baseURL := cfg.BaseURL
	if o.baseURL != "" {
		baseURL = o.baseURL
	}
	tp := transport.New(baseURL,
		transport.WithTimeout(cfg.HTTP.Timeout),
		transport.WithHTTPClient(o.httpClient),
		transport.WithLogger(logging.TransportLogger(provider)),
	)

	tokens := auth.NewCache(tp.Issuer(strings.TrimSpace(cfg.AppID), strings.TrimSpace(cfg.AppSecret)),
		auth.WithRefreshMargin(cfg.Auth.RefreshMargin),
		auth.WithRefreshTimeout(cfg.Auth.RefreshTimeout),
		auth.WithClock(o.now),
		auth.WithLogger(logging.AuthLogger(provider)),
	)

	schedulerOpts := []upload.SchedulerOption{
		upload.WithConcurrency(cfg.Upload.Concurrency),
		upload.WithRetryPolicy(cfg.Upload.MaxAttempts, cfg.Upload.BackoffBase, cfg.Upload.MaxBackoff),
		upload.WithLogger(logging.UploadLogger(provider)),
	}
	if cfg.Metrics.Enabled || o.registerer != nil {
		reg := o.registerer
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		observer, err := upload.NewPrometheusObserver(cfg.Metrics.Namespace, reg)
		if err != nil {
			return nil, fmt.Errorf("publisher: register upload metrics: %w", err)
		}
		schedulerOpts = append(schedulerOpts, upload.WithObserver(observer))
	}

	cfg.Theme.Default = cmp.Or(strings.TrimSpace(cfg.Theme.Default), themes.DefaultTheme)
	cfg.Theme.CodeTheme = cmp.Or(strings.TrimSpace(cfg.Theme.CodeTheme), themes.DefaultCodeTheme)
	registry := themes.NewRegistry()
	if !registry.Has(cfg.Theme.Default) {
		return nil, fmt.Errorf("%w: %s", ErrThemeNotFound, cfg.Theme.Default)
	}
	if _, ok := registry.CodeTheme(cfg.Theme.CodeTheme); !ok {
		return nil, fmt.Errorf("%w: %s", themes.ErrCodeThemeNotFound, cfg.Theme.CodeTheme)
	}

	c := &Client{
		cfg:       cfg,
		provider:  provider,
		logger:    logging.RootLogger(provider),
		transport: tp,
		tokens:    tokens,
		images:    upload.NewScheduler(upload.NewImageUploader(tp), tokens, schedulerOpts...),
		materials: upload.NewScheduler(upload.NewMaterialUploader(tp), tokens, schedulerOpts...),
		themes:    themes.NewRenderer(registry, themes.WithLogger(logging.ThemesLogger(provider))),
		drafts:    drafts.NewService(tp, tokens, drafts.WithLogger(logging.DraftsLogger(provider))),
		datacube:  datacube.New(tp, tokens, datacube.WithLogger(logging.DatacubeLogger(provider))),
	}

	if cfg.Diagrams.Enabled {
		diagramLogger := logging.DiagramsLogger(provider)
		renderer := o.renderer
		if renderer == nil {
			renderer = mermaid.NewCLIRenderer(cfg.Diagrams.Command, mermaid.WithRendererLogger(diagramLogger))
		}
		c.diagrams = mermaid.NewProcessor(renderer,
			mermaid.WithOutputDir(cfg.Diagrams.OutputDir),
			mermaid.WithLogger(diagramLogger),
		)
	}

	return c, nil
}

// LoggerProvider returns the provider the client logs through, so callers
// can attach their own modules to the same output.
func (c *Client) LoggerProvider() interfaces.LoggerProvider {
	return c.provider
}

// Config returns the configuration the client was built with.
func (c *Client) Config() Config {
	return c.cfg
}

// GetDraft fetches a stored draft.
func (c *Client) GetDraft(ctx context.Context, mediaID string) (*Draft, error) {
	return c.drafts.Get(ctx, mediaID)
}

func (c *Client) DeleteDraft(ctx context.Context, mediaID string) error {
	return c.drafts.Delete(ctx, mediaID)
}

// ListDrafts returns one page of drafts, at most drafts.MaxPageSize long.
func (c *Client) ListDrafts(ctx context.Context, offset, count int) (DraftPage, error) {
	return c.drafts.List(ctx, offset, count)
}

// CreateDraft stores pre-rendered articles as a new draft.
func (c *Client) CreateDraft(ctx context.Context, articles []Article) (string, error) {
	return c.drafts.Create(ctx, articles)
}

// UploadImage uploads one local image for use inside article bodies and
// returns its URL.
func (c *Client) UploadImage(ctx context.Context, imagePath string) (string, error) {
	if _, err := os.Stat(imagePath); err != nil {
		return "", fmt.Errorf("%w: %s", ErrFileNotFound, imagePath)
	}
	out := c.images.Upload(ctx, upload.Item{Reference: imagePath, Path: imagePath})
	if out.Err != nil {
		return "", out.Err
	}
	return out.Entry.URL, nil
}

// UploadImages uploads body images concurrently. Outcomes follow the input
// order and failures never stop sibling uploads.
func (c *Client) UploadImages(ctx context.Context, items []UploadItem) []Outcome {
	return c.images.UploadAll(ctx, items)
}

// AvailableThemes lists the article theme names.
func (c *Client) AvailableThemes() []string {
	return c.themes.Registry().Names()
}

// AvailableCodeThemes lists the code block theme names.
func (c *Client) AvailableCodeThemes() []string {
	return c.themes.Registry().CodeNames()
}

func (c *Client) HasTheme(name string) bool {
	return c.themes.Registry().Has(name)
}

// TokenInfo reports the cached credential without refreshing it.
func (c *Client) TokenInfo() (Credential, bool) {
	return c.tokens.Current()
}

// RefreshToken replaces the cached credential.
func (c *Client) RefreshToken(ctx context.Context) (Credential, error) {
	current, _ := c.tokens.Current()
	return c.tokens.ForceRefresh(ctx, current)
}

// Datacube exposes the statistics endpoints.
func (c *Client) Datacube() *datacube.Client {
	return c.datacube
}

func newLoggerProvider(cfg LoggingConfig) (interfaces.LoggerProvider, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", "console":
		level, _ := console.ParseLevel(cfg.Level)
		return console.NewProvider(console.Options{Level: level}), nil
	case "gologger":
		provider, err := gologger.NewProvider(gologger.Config{
			Level:     cfg.Level,
			Format:    cfg.Format,
			AddSource: cfg.AddSource,
			Focus:     cfg.Focus,
		})
		if err != nil {
			return nil, err
		}
		return provider, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, cfg.Provider)
	}
}
