package publisher_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	publisher "github.com/goliatone/go-publisher"
)

const (
	testAppID     = "wx0123456789abcdef"
	testAppSecret = "0123456789abcdef0123456789abcdef"
)

func validConfig() publisher.Config {
	cfg := publisher.DefaultConfig()
	cfg.AppID = testAppID
	cfg.AppSecret = testAppSecret
	cfg.Diagrams.Enabled = false
	return cfg
}

func TestNewRejectsMissingCredentials(t *testing.T) {
	cfg := publisher.DefaultConfig()
	_, err := publisher.New(cfg)
	assert.ErrorIs(t, err, publisher.ErrAppIDRequired)

	cfg.AppID = testAppID
	_, err = publisher.New(cfg)
	assert.ErrorIs(t, err, publisher.ErrAppSecretRequired)
}

func TestNewRejectsInvalidSettings(t *testing.T) {
	cases := map[string]struct {
		mutate func(*publisher.Config)
		want   error
	}{
		"malformed app id": {func(c *publisher.Config) { c.AppID = "not-an-app-id" }, publisher.ErrCredentialFormat},
		"unknown theme":    {func(c *publisher.Config) { c.Theme.Default = "neon" }, publisher.ErrThemeNotFound},
		"zero concurrency": {func(c *publisher.Config) { c.Upload.Concurrency = 0 }, publisher.ErrConcurrencyInvalid},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(&cfg)
			_, err := publisher.New(cfg)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestLoadConfigFeedsNew(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wxpub.yaml")
	contents := "app_id: " + testAppID + "\napp_secret: " + testAppSecret + "\n" +
		"theme:\n  default: maize\ndiagrams:\n  enabled: false\nlogging:\n  provider: console\n"
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))

	cfg, err := publisher.LoadConfig(path)
	require.NoError(t, err)
	client, err := publisher.New(cfg)
	require.NoError(t, err)

	assert.Equal(t, "maize", client.Config().Theme.Default)
	assert.NotNil(t, client.LoggerProvider())
}
