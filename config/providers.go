package config

import (
	"github.com/flanksource/changelog/provider"
)

// Factory builds provider sources, filling credentials the caller left empty
// from the configured ones.
func (c *Config) Factory() provider.Factory {
	return func(kind provider.Kind, creds provider.Credentials) (provider.Source, error) {
		return provider.New(kind, c.Credentials(kind, creds))
	}
}

// Credentials fills empty fields of creds from the provider's configuration.
func (c *Config) Credentials(kind provider.Kind, creds provider.Credentials) provider.Credentials {
	var p ProviderConfig
	switch kind {
	case provider.KindGitHub:
		p = c.GitHub
	case provider.KindGitLab:
		p = c.GitLab
	case provider.KindLocal:
		if creds.Path == "" {
			creds.Path = c.Local.Path
		}
		return creds
	}
	// The configured token is only ever sent to the configured host.
	if creds.Token == "" && (creds.BaseURL == "" || creds.BaseURL == p.BaseURL) {
		creds.Token = p.Token
	}
	if creds.BaseURL == "" {
		creds.BaseURL = p.BaseURL
	}
	return creds
}
