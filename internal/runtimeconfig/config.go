package runtimeconfig

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// DefaultBaseURL is the production endpoint of the drafting platform.
const DefaultBaseURL = "https://api.weixin.qq.com"

var ErrAppIDRequired = errors.New("publisher config: app id is required")
var ErrAppSecretRequired = errors.New("publisher config: app secret is required")

// ErrCredentialFormat reports an app id or secret that cannot belong to an account.
var ErrCredentialFormat = errors.New("publisher config: credential format is invalid")
var ErrBaseURLRequired = errors.New("publisher config: base url is required")
var ErrRefreshMarginInvalid = errors.New("publisher config: refresh margin must be positive")
var ErrConcurrencyInvalid = errors.New("publisher config: upload concurrency must be at least 1")
var ErrMaxAttemptsInvalid = errors.New("publisher config: upload max attempts must be at least 1")
var ErrBackoffInvalid = errors.New("publisher config: upload backoff must be positive and below the cap")
var ErrDiagramCommandRequired = errors.New("publisher config: diagram command is required when diagrams are enabled")
var ErrLoggingProviderUnknown = errors.New("publisher config: logging provider is invalid")
var ErrLoggingLevelInvalid = errors.New("publisher config: logging level is invalid")
var ErrLoggingFormatInvalid = errors.New("publisher config: logging format is invalid")

var (
	appIDPattern  = regexp.MustCompile(`^wx[0-9A-Za-z]{16}$`)
	secretPattern = regexp.MustCompile(`^[0-9A-Za-z]{32}$`)
)

// Config aggregates every knob of the publisher client and the wxpub CLI.
type Config struct {
	AppID     string `mapstructure:"app_id"`
	AppSecret string `mapstructure:"app_secret"`
	BaseURL   string `mapstructure:"base_url"`

	HTTP     HTTPConfig     `mapstructure:"http"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Upload   UploadConfig   `mapstructure:"upload"`
	Drafts   DraftsConfig   `mapstructure:"drafts"`
	Theme    ThemeConfig    `mapstructure:"theme"`
	Diagrams DiagramsConfig `mapstructure:"diagrams"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// HTTPConfig controls the platform transport.
type HTTPConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

// AuthConfig controls the credential cache.
type AuthConfig struct {
	// RefreshMargin is the minimum remaining lifetime of a credential handed out.
	RefreshMargin  time.Duration `mapstructure:"refresh_margin"`
	RefreshTimeout time.Duration `mapstructure:"refresh_timeout"`
}

// UploadConfig controls the upload scheduler.
type UploadConfig struct {
	Concurrency int `mapstructure:"concurrency"`
	// MaxAttempts counts the first try.
	MaxAttempts  int           `mapstructure:"max_attempts"`
	BackoffBase  time.Duration `mapstructure:"backoff_base"`
	MaxBackoff   time.Duration `mapstructure:"max_backoff"`
	AllowPartial bool          `mapstructure:"allow_partial"`
}

// DraftsConfig controls draft creation.
type DraftsConfig struct {
	DedupByTitle bool `mapstructure:"dedup_by_title"`
}

// ThemeConfig selects the default article and code themes.
type ThemeConfig struct {
	Default   string `mapstructure:"default"`
	CodeTheme string `mapstructure:"code_theme"`
}

// DiagramsConfig controls mermaid rendering.
type DiagramsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Command   string `mapstructure:"command"`
	OutputDir string `mapstructure:"output_dir"`
}

// MetricsConfig toggles the Prometheus upload observer.
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace"`
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string   `mapstructure:"provider"`
	Level     string   `mapstructure:"level"`
	Format    string   `mapstructure:"format"`
	AddSource bool     `mapstructure:"add_source"`
	Focus     []string `mapstructure:"focus"`
}

// DefaultConfig returns the defaults used when a field is left unset.
func DefaultConfig() Config {
	return Config{
		BaseURL: DefaultBaseURL,
		HTTP: HTTPConfig{
			Timeout: 30 * time.Second,
		},
		Auth: AuthConfig{
			RefreshMargin:  5 * time.Minute,
			RefreshTimeout: 30 * time.Second,
		},
		Upload: UploadConfig{
			Concurrency: 5,
			MaxAttempts: 3,
			BackoffBase: 500 * time.Millisecond,
			MaxBackoff:  10 * time.Second,
		},
		Drafts: DraftsConfig{
			DedupByTitle: true,
		},
		Theme: ThemeConfig{
			Default:   "default",
			CodeTheme: "vscode",
		},
		Diagrams: DiagramsConfig{
			Enabled:   true,
			Command:   "mmdc",
			OutputDir: ".mermaid",
		},
		Metrics: MetricsConfig{
			Namespace: "wxpub",
		},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
		},
	}
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	if err := cfg.ValidateCredentials(); err != nil {
		return err
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return ErrBaseURLRequired
	}
	if cfg.Auth.RefreshMargin <= 0 {
		return ErrRefreshMarginInvalid
	}
	if cfg.Upload.Concurrency < 1 {
		return fmt.Errorf("%w: %d", ErrConcurrencyInvalid, cfg.Upload.Concurrency)
	}
	if cfg.Upload.MaxAttempts < 1 {
		return fmt.Errorf("%w: %d", ErrMaxAttemptsInvalid, cfg.Upload.MaxAttempts)
	}
	if cfg.Upload.BackoffBase <= 0 || cfg.Upload.MaxBackoff < cfg.Upload.BackoffBase {
		return ErrBackoffInvalid
	}
	if cfg.Diagrams.Enabled && strings.TrimSpace(cfg.Diagrams.Command) == "" {
		return ErrDiagramCommandRequired
	}
	return cfg.Logging.validate()
}

// ValidateCredentials checks the app id and secret shape without contacting
// the platform.
func (cfg Config) ValidateCredentials() error {
	appID := strings.TrimSpace(cfg.AppID)
	secret := strings.TrimSpace(cfg.AppSecret)
	if appID == "" {
		return ErrAppIDRequired
	}
	if secret == "" {
		return ErrAppSecretRequired
	}
	err := validation.Errors{
		"app_id": validation.Validate(appID,
			validation.Match(appIDPattern).Error("must start with wx followed by 16 letters or digits")),
		"app_secret": validation.Validate(secret,
			validation.Match(secretPattern).Error("must be 32 letters or digits")),
	}.Filter()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCredentialFormat, err)
	}
	return nil
}

func (cfg LoggingConfig) validate() error {
	provider := normalize(cfg.Provider)
	switch provider {
	case "", "console", "gologger":
	default:
		return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
	}
	if level := normalize(cfg.Level); level != "" && !isSupportedLevel(level) {
		return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
	}
	if provider == "gologger" {
		if format := normalize(cfg.Format); format != "" && !isSupportedFormat(format) {
			return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
		}
	}
	return nil
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func isSupportedLevel(level string) bool {
	switch level {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch format {
	case "json", "console", "text", "pretty":
		return true
	default:
		return false
	}
}
