package runtimeconfig

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides, e.g. WXPUB_UPLOAD_CONCURRENCY.
const EnvPrefix = "WXPUB"

// Load reads configuration from an optional file plus WXPUB_ environment
// variables. Unset keys fall back to DefaultConfig. The result is not
// validated; callers decide which checks apply.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v, DefaultConfig())

	if path = strings.TrimSpace(path); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("publisher config: read %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("publisher config: decode: %w", err)
	}
	return cfg, nil
}

// setDefaults registers every key so AutomaticEnv can resolve nested values
// during Unmarshal.
func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("app_id", d.AppID)
	v.SetDefault("app_secret", d.AppSecret)
	v.SetDefault("base_url", d.BaseURL)

	v.SetDefault("http.timeout", d.HTTP.Timeout)

	v.SetDefault("auth.refresh_margin", d.Auth.RefreshMargin)
	v.SetDefault("auth.refresh_timeout", d.Auth.RefreshTimeout)

	v.SetDefault("upload.concurrency", d.Upload.Concurrency)
	v.SetDefault("upload.max_attempts", d.Upload.MaxAttempts)
	v.SetDefault("upload.backoff_base", d.Upload.BackoffBase)
	v.SetDefault("upload.max_backoff", d.Upload.MaxBackoff)
	v.SetDefault("upload.allow_partial", d.Upload.AllowPartial)

	v.SetDefault("drafts.dedup_by_title", d.Drafts.DedupByTitle)

	v.SetDefault("theme.default", d.Theme.Default)
	v.SetDefault("theme.code_theme", d.Theme.CodeTheme)

	v.SetDefault("diagrams.enabled", d.Diagrams.Enabled)
	v.SetDefault("diagrams.command", d.Diagrams.Command)
	v.SetDefault("diagrams.output_dir", d.Diagrams.OutputDir)

	v.SetDefault("metrics.enabled", d.Metrics.Enabled)
	v.SetDefault("metrics.namespace", d.Metrics.Namespace)

	v.SetDefault("logging.provider", d.Logging.Provider)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.add_source", d.Logging.AddSource)
	v.SetDefault("logging.focus", d.Logging.Focus)
}
