package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flanksource/changelog/provider"
)

func clearEnv(t *testing.T) {
	for _, k := range []string{"GITHUB_TOKEN", "GH_TOKEN", "GITHUB_API_URL", "GITLAB_TOKEN", "GITLAB_API_URL", "OPENAI_API_KEY", "OPENAI_BASE_URL", "CHANGELOG_ADDR"} {
		t.Setenv(k, "")
	}
}

func write(t *testing.T, name, content string) string {
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load("")
	require.NoError(t, err)

	cc := cfg.CacheConfig()
	assert.Equal(t, 15*time.Minute, cc.Commits.TTL)
	assert.Equal(t, 500, cc.Commits.MaxEntries)
	assert.Equal(t, 5*time.Minute, cc.Repositories.TTL)
	assert.Equal(t, 1000, cc.Repositories.MaxEntries)
	assert.Equal(t, 30*time.Minute, cc.Changelogs.TTL)
	assert.Equal(t, 200, cc.Changelogs.MaxEntries)
	assert.Equal(t, 10*time.Minute, cc.TokenHealth.TTL)
	assert.Equal(t, 100, cc.TokenHealth.MaxEntries)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "gpt-4o-mini", cfg.OpenAIConfig().Model)
}

func TestLoadYAML(t *testing.T) {
	clearEnv(t)
	path := write(t, "changelog.yaml", `
server:
  addr: ":9090"
github:
  token: file-token
cache:
  commits:
    ttl: 1m
    maxEntries: 10
ai:
  model: gpt-4.1
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "file-token", cfg.GitHub.Token)
	assert.Equal(t, time.Minute, cfg.Cache.Commits.TTL.Std())
	assert.Equal(t, 10, cfg.Cache.Commits.MaxEntries)
	assert.Equal(t, 30*time.Minute, cfg.Cache.Changelogs.TTL.Std(), "unset sections keep defaults")
	assert.Equal(t, "gpt-4.1", cfg.AI.Model)
}

func TestLoadTOML(t *testing.T) {
	clearEnv(t)
	path := write(t, "changelog.toml", `
[server]
addr = ":7070"
shutdown_timeout = "3s"

[gitlab]
base_url = "https://gitlab.example.com/api/v4"

[cache.token_health]
ttl = "30s"
max_entries = 5
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.Server.Addr)
	assert.Equal(t, 3*time.Second, cfg.Server.ShutdownTimeout.Std())
	assert.Equal(t, "https://gitlab.example.com/api/v4", cfg.GitLab.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.Cache.TokenHealth.TTL.Std())
	assert.Equal(t, 5, cfg.Cache.TokenHealth.MaxEntries)
}

func TestEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("GH_TOKEN", "gh-env")
	t.Setenv("GITLAB_TOKEN", "gl-env")
	t.Setenv("OPENAI_API_KEY", "sk-env")
	t.Setenv("CHANGELOG_ADDR", ":1234")

	path := write(t, "changelog.yaml", "github:\n  token: file-token\n")
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "gh-env", cfg.GitHub.Token)
	assert.Equal(t, "gl-env", cfg.GitLab.Token)
	assert.Equal(t, "sk-env", cfg.OpenAIConfig().APIKey)
	assert.Equal(t, ":1234", cfg.Server.Addr)
}

func TestLoadErrors(t *testing.T) {
	clearEnv(t)
	tests := []struct {
		name    string
		file    string
		content string
		errText string
	}{
		{"bad extension", "changelog.ini", "x=1", "unsupported config extension"},
		{"bad duration", "changelog.yaml", "cache:\n  commits:\n    ttl: soon\n", "invalid duration"},
		{"zero size", "changelog.toml", "[cache.commits]\nmax_entries = 0\n", "cache commits"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(write(t, tt.file, tt.content))
			assert.ErrorContains(t, err, tt.errText)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read config")
}

func TestCredentialsFallBackToConfig(t *testing.T) {
	cfg := Default()
	cfg.GitHub = ProviderConfig{Token: "gh", BaseURL: "https://ghe.example.com/api/v3"}
	cfg.GitLab = ProviderConfig{Token: "gl"}
	cfg.Local.Path = "/src/repo"

	creds := cfg.Credentials(provider.KindGitHub, provider.Credentials{})
	assert.Equal(t, "gh", creds.Token)
	assert.Equal(t, "https://ghe.example.com/api/v3", creds.BaseURL)

	creds = cfg.Credentials(provider.KindGitHub, provider.Credentials{Token: "caller"})
	assert.Equal(t, "caller", creds.Token, "caller token wins")

	creds = cfg.Credentials(provider.KindGitLab, provider.Credentials{})
	assert.Equal(t, "gl", creds.Token)
	assert.Empty(t, creds.BaseURL)

	creds = cfg.Credentials(provider.KindLocal, provider.Credentials{})
	assert.Equal(t, "/src/repo", creds.Path)
	creds = cfg.Credentials(provider.KindLocal, provider.Credentials{Path: "other"})
	assert.Equal(t, "other", creds.Path)
}

func TestConfiguredTokenStaysOnConfiguredHost(t *testing.T) {
	cfg := Default()
	cfg.GitHub = ProviderConfig{Token: "gh", BaseURL: "https://ghe.example.com/api/v3"}
	cfg.GitLab = ProviderConfig{Token: "gl"}

	creds := cfg.Credentials(provider.KindGitHub, provider.Credentials{BaseURL: "https://attacker.example"})
	assert.Empty(t, creds.Token)
	assert.Equal(t, "https://attacker.example", creds.BaseURL)

	creds = cfg.Credentials(provider.KindGitLab, provider.Credentials{BaseURL: "https://attacker.example"})
	assert.Empty(t, creds.Token)

	creds = cfg.Credentials(provider.KindGitHub, provider.Credentials{BaseURL: "https://ghe.example.com/api/v3"})
	assert.Equal(t, "gh", creds.Token, "same host as configured")
}

func TestFactoryBuildsSources(t *testing.T) {
	cfg := Default()
	cfg.GitHub.Token = "gh"
	src, err := cfg.Factory()(provider.KindGitHub, provider.Credentials{})
	require.NoError(t, err)
	assert.NotNil(t, src)

	_, err = cfg.Factory()(provider.Kind("svn"), provider.Credentials{})
	assert.Error(t, err)
}
