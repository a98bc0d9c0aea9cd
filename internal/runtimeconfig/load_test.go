package runtimeconfig_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/goliatone/go-publisher/internal/runtimeconfig"
)

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	cfg, err := runtimeconfig.Load("")
	if err != nil {
		t.Fatalf("load defaults: %v", err)
	}

	want := runtimeconfig.DefaultConfig()
	if cfg.BaseURL != want.BaseURL {
		t.Fatalf("expected base url %q, got %q", want.BaseURL, cfg.BaseURL)
	}
	if cfg.Upload.Concurrency != want.Upload.Concurrency {
		t.Fatalf("expected concurrency %d, got %d", want.Upload.Concurrency, cfg.Upload.Concurrency)
	}
	if cfg.Auth.RefreshMargin != want.Auth.RefreshMargin {
		t.Fatalf("expected refresh margin %s, got %s", want.Auth.RefreshMargin, cfg.Auth.RefreshMargin)
	}
	if !cfg.Drafts.DedupByTitle {
		t.Fatal("expected title dedup enabled by default")
	}
	if cfg.Theme.CodeTheme != "vscode" {
		t.Fatalf("expected vscode code theme, got %q", cfg.Theme.CodeTheme)
	}
}

func TestLoad_ReadsFileAndEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "wxpub.yaml")
	content := `
app_id: wx0123456789abcdef
app_secret: 0123456789abcdef0123456789abcdef
upload:
  concurrency: 2
  backoff_base: 250ms
theme:
  default: lapis
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("WXPUB_UPLOAD_MAX_ATTEMPTS", "7")
	t.Setenv("WXPUB_AUTH_REFRESH_MARGIN", "90s")

	cfg, err := runtimeconfig.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.AppID != "wx0123456789abcdef" {
		t.Fatalf("unexpected app id %q", cfg.AppID)
	}
	if cfg.Upload.Concurrency != 2 || cfg.Upload.BackoffBase != 250*time.Millisecond {
		t.Fatalf("unexpected upload settings %+v", cfg.Upload)
	}
	if cfg.Upload.MaxAttempts != 7 {
		t.Fatalf("expected env max attempts 7, got %d", cfg.Upload.MaxAttempts)
	}
	if cfg.Auth.RefreshMargin != 90*time.Second {
		t.Fatalf("expected env refresh margin 90s, got %s", cfg.Auth.RefreshMargin)
	}
	if cfg.Theme.Default != "lapis" {
		t.Fatalf("expected lapis theme, got %q", cfg.Theme.Default)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := runtimeconfig.Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}
