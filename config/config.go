// Package config loads the changelog service configuration from YAML or TOML
// files and the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ghodss/yaml"
	"github.com/pelletier/go-toml/v2"

	"github.com/flanksource/changelog/cache"
	"github.com/flanksource/changelog/narrative"
)

// Duration is a time.Duration written as a string ("15m") in config files.
type Duration time.Duration

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) Std() time.Duration { return time.Duration(d) }

type Config struct {
	Server ServerConfig   `json:"server" toml:"server"`
	GitHub ProviderConfig `json:"github" toml:"github"`
	GitLab ProviderConfig `json:"gitlab" toml:"gitlab"`
	Local  LocalConfig    `json:"local" toml:"local"`
	Cache  CacheConfig    `json:"cache" toml:"cache"`
	AI     AIConfig       `json:"ai" toml:"ai"`
}

type ServerConfig struct {
	Addr            string   `json:"addr" toml:"addr"`
	ReadTimeout     Duration `json:"readTimeout" toml:"read_timeout"`
	WriteTimeout    Duration `json:"writeTimeout" toml:"write_timeout"`
	ShutdownTimeout Duration `json:"shutdownTimeout" toml:"shutdown_timeout"`
}

type ProviderConfig struct {
	Token   string `json:"token,omitempty" toml:"token,omitempty"`
	BaseURL string `json:"baseURL,omitempty" toml:"base_url,omitempty"`
}

type LocalConfig struct {
	Path string `json:"path,omitempty" toml:"path,omitempty"`
}

type CacheSettings struct {
	TTL        Duration `json:"ttl" toml:"ttl"`
	MaxEntries int      `json:"maxEntries" toml:"max_entries"`
}

type CacheConfig struct {
	Commits      CacheSettings `json:"commits" toml:"commits"`
	Repositories CacheSettings `json:"repositories" toml:"repositories"`
	Changelogs   CacheSettings `json:"changelogs" toml:"changelogs"`
	TokenHealth  CacheSettings `json:"tokenHealth" toml:"token_health"`
}

type AIConfig struct {
	APIKey      string   `json:"apiKey,omitempty" toml:"api_key,omitempty"`
	BaseURL     string   `json:"baseURL,omitempty" toml:"base_url,omitempty"`
	Model       string   `json:"model" toml:"model"`
	Temperature float64  `json:"temperature" toml:"temperature"`
	MaxTokens   int64    `json:"maxTokens" toml:"max_tokens"`
	Timeout     Duration `json:"timeout" toml:"timeout"`
}

func settings(s cache.Settings) CacheSettings {
	return CacheSettings{TTL: Duration(s.TTL), MaxEntries: s.MaxEntries}
}

func Default() *Config {
	c := cache.DefaultConfig()
	ai := narrative.DefaultOpenAIConfig()
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     Duration(30 * time.Second),
			WriteTimeout:    Duration(2 * time.Minute),
			ShutdownTimeout: Duration(10 * time.Second),
		},
		Local: LocalConfig{Path: "."},
		Cache: CacheConfig{
			Commits:      settings(c.Commits),
			Repositories: settings(c.Repositories),
			Changelogs:   settings(c.Changelogs),
			TokenHealth:  settings(c.TokenHealth),
		},
		AI: AIConfig{
			Model:       ai.Model,
			Temperature: ai.Temperature,
			MaxTokens:   ai.MaxTokens,
			Timeout:     Duration(ai.Timeout),
		},
	}
}

// Load reads path over the defaults, then applies environment overrides.
// An empty path loads only defaults and environment.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := cfg.decode(filepath.Ext(path), data); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) decode(ext string, data []byte) error {
	switch strings.ToLower(ext) {
	case ".yaml", ".yml", ".json":
		return yaml.Unmarshal(data, c)
	case ".toml":
		return toml.Unmarshal(data, c)
	default:
		return fmt.Errorf("unsupported config extension %q, expected .yaml, .yml, .json or .toml", ext)
	}
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}

func (c *Config) applyEnv() {
	overrides := []struct {
		target *string
		keys   []string
	}{
		{&c.GitHub.Token, []string{"GITHUB_TOKEN", "GH_TOKEN"}},
		{&c.GitHub.BaseURL, []string{"GITHUB_API_URL"}},
		{&c.GitLab.Token, []string{"GITLAB_TOKEN"}},
		{&c.GitLab.BaseURL, []string{"GITLAB_API_URL"}},
		{&c.AI.APIKey, []string{"OPENAI_API_KEY"}},
		{&c.AI.BaseURL, []string{"OPENAI_BASE_URL"}},
		{&c.Server.Addr, []string{"CHANGELOG_ADDR"}},
	}
	for _, o := range overrides {
		if v := firstEnv(o.keys...); v != "" {
			*o.target = v
		}
	}
}

func (c *Config) Validate() error {
	for name, s := range map[string]CacheSettings{
		cache.NameCommits:      c.Cache.Commits,
		cache.NameRepositories: c.Cache.Repositories,
		cache.NameChangelogs:   c.Cache.Changelogs,
		cache.NameTokenHealth:  c.Cache.TokenHealth,
	} {
		if s.TTL <= 0 || s.MaxEntries <= 0 {
			return fmt.Errorf("cache %s: ttl and maxEntries must be positive (got %s, %d)", name, s.TTL.Std(), s.MaxEntries)
		}
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr must be set")
	}
	return nil
}

func (s CacheSettings) settings() cache.Settings {
	return cache.Settings{TTL: s.TTL.Std(), MaxEntries: s.MaxEntries}
}

func (c *Config) CacheConfig() cache.Config {
	return cache.Config{
		Commits:      c.Cache.Commits.settings(),
		Repositories: c.Cache.Repositories.settings(),
		Changelogs:   c.Cache.Changelogs.settings(),
		TokenHealth:  c.Cache.TokenHealth.settings(),
	}
}

func (c *Config) OpenAIConfig() narrative.OpenAIConfig {
	return narrative.OpenAIConfig{
		APIKey:      c.AI.APIKey,
		BaseURL:     c.AI.BaseURL,
		Model:       c.AI.Model,
		Temperature: c.AI.Temperature,
		MaxTokens:   c.AI.MaxTokens,
		Timeout:     c.AI.Timeout.Std(),
	}
}
