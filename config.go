package publisher

import "github.com/goliatone/go-publisher/internal/runtimeconfig"

var (
	ErrAppIDRequired          = runtimeconfig.ErrAppIDRequired
	ErrAppSecretRequired      = runtimeconfig.ErrAppSecretRequired
	ErrCredentialFormat       = runtimeconfig.ErrCredentialFormat
	ErrBaseURLRequired        = runtimeconfig.ErrBaseURLRequired
	ErrRefreshMarginInvalid   = runtimeconfig.ErrRefreshMarginInvalid
	ErrConcurrencyInvalid     = runtimeconfig.ErrConcurrencyInvalid
	ErrMaxAttemptsInvalid     = runtimeconfig.ErrMaxAttemptsInvalid
	ErrBackoffInvalid         = runtimeconfig.ErrBackoffInvalid
	ErrDiagramCommandRequired = runtimeconfig.ErrDiagramCommandRequired
	ErrLoggingProviderUnknown = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid    = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid   = runtimeconfig.ErrLoggingFormatInvalid
)

type (
	Config         = runtimeconfig.Config
	HTTPConfig     = runtimeconfig.HTTPConfig
	AuthConfig     = runtimeconfig.AuthConfig
	UploadConfig   = runtimeconfig.UploadConfig
	DraftsConfig   = runtimeconfig.DraftsConfig
	ThemeConfig    = runtimeconfig.ThemeConfig
	DiagramsConfig = runtimeconfig.DiagramsConfig
	MetricsConfig  = runtimeconfig.MetricsConfig
	LoggingConfig  = runtimeconfig.LoggingConfig
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}

// LoadConfig reads defaults, an optional config file and WXPUB_ environment
// overrides.
func LoadConfig(path string) (Config, error) {
	return runtimeconfig.Load(path)
}
