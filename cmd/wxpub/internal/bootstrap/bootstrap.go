package bootstrap

import (
	"context"
	"fmt"
	"strings"

	publisher "github.com/goliatone/go-publisher"
	publishcmd "github.com/goliatone/go-publisher/internal/commands/publish"
	"github.com/goliatone/go-publisher/internal/datacube"
	"github.com/goliatone/go-publisher/internal/logging"
	"github.com/goliatone/go-publisher/pkg/interfaces"
)

// Options captures what the CLI collects before a client can be built.
type Options struct {
	ConfigPath     string
	Verbose        bool
	AppID          string
	AppSecret      string
	LoggerProvider interfaces.LoggerProvider
	Reporter       publishcmd.Reporter
}

// Client is the part of *publisher.Client the CLI drives directly. Mutating
// operations go through the command handlers instead.
type Client interface {
	publishcmd.Publisher
	GetDraft(ctx context.Context, mediaID string) (*publisher.Draft, error)
	ListDrafts(ctx context.Context, offset, count int) (publisher.DraftPage, error)
	AvailableThemes() []string
	AvailableCodeThemes() []string
	TokenInfo() (publisher.Credential, bool)
	RefreshToken(ctx context.Context) (publisher.Credential, error)
	Datacube() *datacube.Client
}

var _ Client = (*publisher.Client)(nil)

// App bundles the client with its registered command handlers.
type App struct {
	Client   Client
	Handlers *publishcmd.HandlerSet
	Logger   interfaces.Logger
}

// BuildApp loads configuration, constructs the client and registers the
// publishing commands.
func BuildApp(opts Options) (*App, error) {
	cfg, err := publisher.LoadConfig(strings.TrimSpace(opts.ConfigPath))
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if id := strings.TrimSpace(opts.AppID); id != "" {
		cfg.AppID = id
	}
	if secret := strings.TrimSpace(opts.AppSecret); secret != "" {
		cfg.AppSecret = secret
	}
	if opts.Verbose {
		cfg.Logging.Level = "debug"
	}

	clientOpts := []publisher.Option{}
	if opts.LoggerProvider != nil {
		clientOpts = append(clientOpts, publisher.WithLoggerProvider(opts.LoggerProvider))
	}

	client, err := publisher.New(cfg, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("initialise publisher: %w", err)
	}

	return Assemble(client, client.LoggerProvider(), opts.Reporter)
}

// Assemble registers the command handlers for an existing client.
func Assemble(client Client, provider interfaces.LoggerProvider, reporter publishcmd.Reporter) (*App, error) {
	handlers, err := publishcmd.RegisterPublishCommands(nil, client, provider, publishcmd.WithReporter(reporter))
	if err != nil {
		return nil, fmt.Errorf("register commands: %w", err)
	}
	return &App{
		Client:   client,
		Handlers: handlers,
		Logger:   logging.RootLogger(provider),
	}, nil
}
