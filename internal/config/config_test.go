package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSecret(t *testing.T) {
	t.Run("String redacts", func(t *testing.T) {
		s := Secret("ghp_supersecret")
		assert.Equal(t, "[REDACTED]", s.String())
		assert.Equal(t, "[REDACTED]", fmt.Sprintf("%s", s))
		assert.Equal(t, "Secret([REDACTED])", fmt.Sprintf("%#v", s))
	})

	t.Run("empty secret stays empty", func(t *testing.T) {
		s := Secret("")
		assert.Equal(t, "", s.String())
		assert.False(t, s.IsSet())
	})

	t.Run("Value returns raw", func(t *testing.T) {
		s := Secret("token")
		assert.Equal(t, "token", s.Value())
		assert.True(t, s.IsSet())
	})

	t.Run("JSON redacts", func(t *testing.T) {
		out, err := json.Marshal(struct {
			Token Secret `json:"token"`
		}{Token: "abc"})
		require.NoError(t, err)
		assert.JSONEq(t, `{"token":"[REDACTED]"}`, string(out))
	})
}

func TestDuration(t *testing.T) {
	var d Duration
	require.NoError(t, d.UnmarshalText([]byte("90s")))
	assert.Equal(t, 90*time.Second, d.Duration())

	assert.Error(t, d.UnmarshalText([]byte("-1s")))
	assert.Error(t, d.UnmarshalText([]byte("bogus")))
}

func TestDefaultValidates(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.False(t, cfg.TicketLookupEnabled())
}

func TestValidate(t *testing.T) {
	t.Run("bad port", func(t *testing.T) {
		cfg := Default()
		cfg.Server.Port = 0
		assert.Error(t, cfg.Validate())
	})

	t.Run("jira partially configured", func(t *testing.T) {
		cfg := Default()
		cfg.Jira.BaseURL = "https://example.atlassian.net"
		assert.Error(t, cfg.Validate())

		cfg.Jira.Email = "bot@example.com"
		cfg.Jira.APIToken = "tok"
		require.NoError(t, cfg.Validate())
		assert.True(t, cfg.TicketLookupEnabled())
	})

	t.Run("negative retries", func(t *testing.T) {
		cfg := Default()
		cfg.Publish.MaxRetries = -1
		assert.Error(t, cfg.Validate())
	})
}

func TestLoad(t *testing.T) {
	t.Run("defaults without file", func(t *testing.T) {
		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, 9000, cfg.Server.Port)
		assert.Equal(t, 3, cfg.Publish.MaxRetries)
	})

	t.Run("yaml file overrides defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte(
			"server:\n  port: 8123\nreview:\n  producer_timeout: 45s\n"), 0o600))

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, 8123, cfg.Server.Port)
		assert.Equal(t, 45*time.Second, cfg.Review.ProducerTimeout.Duration())
	})

	t.Run("env overrides yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 8123\n"), 0o600))
		t.Setenv("REVIEWD_SERVER_PORT", "8456")
		t.Setenv("REVIEWD_GITHUB_TOKEN", "ghp_fromenv")

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, 8456, cfg.Server.Port)
		assert.Equal(t, "ghp_fromenv", cfg.GitHub.Token.Value())
	})

	t.Run("missing file is not an error", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		require.NoError(t, err)
	})
}
