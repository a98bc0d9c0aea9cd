package runtimeconfig_test

import (
	"errors"
	"testing"

	"github.com/goliatone/go-publisher/internal/runtimeconfig"
)

const (
	testAppID  = "wx0123456789abcdef"
	testSecret = "0123456789abcdef0123456789abcdef"
)

func validConfig() runtimeconfig.Config {
	cfg := runtimeconfig.DefaultConfig()
	cfg.AppID = testAppID
	cfg.AppSecret = testSecret
	return cfg
}

func TestConfigValidate_AcceptsDefaultsWithCredentials(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("Validate() returned unexpected error: %v", err)
	}
}

func TestConfigValidate_RequiresCredentials(t *testing.T) {
	cfg := validConfig()
	cfg.AppID = " "
	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrAppIDRequired) {
		t.Fatalf("expected ErrAppIDRequired, got %v", err)
	}

	cfg = validConfig()
	cfg.AppSecret = ""
	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrAppSecretRequired) {
		t.Fatalf("expected ErrAppSecretRequired, got %v", err)
	}
}

func TestConfigValidate_RejectsMalformedCredentials(t *testing.T) {
	cases := map[string]func(*runtimeconfig.Config){
		"app id without prefix": func(c *runtimeconfig.Config) { c.AppID = "ab0123456789abcdef" },
		"app id too short":      func(c *runtimeconfig.Config) { c.AppID = "wx0123" },
		"secret too long":       func(c *runtimeconfig.Config) { c.AppSecret = testSecret + "0" },
		"secret with symbols":   func(c *runtimeconfig.Config) { c.AppSecret = "0123456789abcdef0123456789abcde!" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := validConfig()
			mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrCredentialFormat) {
				t.Fatalf("expected ErrCredentialFormat, got %v", err)
			}
		})
	}
}

func TestConfigValidate_RejectsInvalidUploadSettings(t *testing.T) {
	cfg := validConfig()
	cfg.Upload.Concurrency = 0
	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrConcurrencyInvalid) {
		t.Fatalf("expected ErrConcurrencyInvalid, got %v", err)
	}

	cfg = validConfig()
	cfg.Upload.MaxAttempts = 0
	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrMaxAttemptsInvalid) {
		t.Fatalf("expected ErrMaxAttemptsInvalid, got %v", err)
	}

	cfg = validConfig()
	cfg.Upload.MaxBackoff = cfg.Upload.BackoffBase / 2
	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrBackoffInvalid) {
		t.Fatalf("expected ErrBackoffInvalid, got %v", err)
	}
}

func TestConfigValidate_RequiresPositiveRefreshMargin(t *testing.T) {
	cfg := validConfig()
	cfg.Auth.RefreshMargin = 0
	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrRefreshMarginInvalid) {
		t.Fatalf("expected ErrRefreshMarginInvalid, got %v", err)
	}
}

func TestConfigValidate_RequiresDiagramCommandWhenEnabled(t *testing.T) {
	cfg := validConfig()
	cfg.Diagrams.Command = ""
	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrDiagramCommandRequired) {
		t.Fatalf("expected ErrDiagramCommandRequired, got %v", err)
	}

	cfg.Diagrams.Enabled = false
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected disabled diagrams to skip command check, got %v", err)
	}
}

func TestConfigValidate_Logging(t *testing.T) {
	cfg := validConfig()
	cfg.Logging.Provider = "syslog"
	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrLoggingProviderUnknown) {
		t.Fatalf("expected ErrLoggingProviderUnknown, got %v", err)
	}

	cfg = validConfig()
	cfg.Logging.Level = "verbose"
	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrLoggingLevelInvalid) {
		t.Fatalf("expected ErrLoggingLevelInvalid, got %v", err)
	}

	cfg = validConfig()
	cfg.Logging.Provider = "gologger"
	cfg.Logging.Format = "xml"
	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrLoggingFormatInvalid) {
		t.Fatalf("expected ErrLoggingFormatInvalid, got %v", err)
	}
}
