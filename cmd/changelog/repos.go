package main

import (
	"context"

	"github.com/flanksource/clicky"
	"github.com/flanksource/clicky/api"

	"github.com/flanksource/changelog/changelog"
	"github.com/flanksource/changelog/export"
)

type ReposOptions struct {
	Provider string `json:"provider" flag:"provider" help:"Commit source: github, gitlab or local" default:"github"`
}

func (o ReposOptions) GetName() string { return "repos" }

func (o ReposOptions) Help() api.Text {
	return clicky.Text(`List the repositories visible to the configured token.`)
}

type RefsOptions struct {
	Provider string `json:"provider" flag:"provider" help:"Commit source: github, gitlab or local" default:"github"`
	Repo     string `json:"repo" flag:"repo" help:"owner/repo, project id or working copy path" default:"."`
}

func (o RefsOptions) GetName() string { return "refs" }

func (o RefsOptions) Help() api.Text {
	return clicky.Text(`List tags (newest semver first) and branches of a repository.

EXAMPLES:
  changelog refs --provider local
  changelog refs --repo flanksource/gavel`)
}

type TokenOptions struct {
	Provider string `json:"provider" flag:"provider" help:"Provider to validate against: github or gitlab" default:"github"`
}

func (o TokenOptions) GetName() string { return "token" }

type FormatsOptions struct{}

func (o FormatsOptions) GetName() string { return "formats" }

func init() {
	clicky.AddCommand(rootCmd, ReposOptions{}, func(opts ReposOptions) (any, error) {
		conn, err := connection(opts.Provider)
		if err != nil {
			return nil, err
		}
		_, svc, err := loadService()
		if err != nil {
			return nil, err
		}
		return svc.ListRepositories(context.Background(), conn)
	})

	clicky.AddCommand(rootCmd, RefsOptions{}, func(opts RefsOptions) (any, error) {
		conn, err := connection(opts.Provider)
		if err != nil {
			return nil, err
		}
		_, svc, err := loadService()
		if err != nil {
			return nil, err
		}
		return svc.ListRefs(context.Background(), changelog.Request{Connection: conn, Repository: opts.Repo})
	})

	clicky.AddCommand(rootCmd, TokenOptions{}, func(opts TokenOptions) (any, error) {
		conn, err := connection(opts.Provider)
		if err != nil {
			return nil, err
		}
		_, svc, err := loadService()
		if err != nil {
			return nil, err
		}
		return svc.CheckToken(context.Background(), conn)
	})

	clicky.AddCommand(rootCmd, FormatsOptions{}, func(FormatsOptions) (any, error) {
		return export.Formats(), nil
	})
}
