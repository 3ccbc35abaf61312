package main

import (
	"context"

	"github.com/flanksource/clicky"
	"github.com/flanksource/clicky/api"
	"github.com/flanksource/commons/logger"

	"github.com/flanksource/changelog/changelog"
	"github.com/flanksource/changelog/git"
)

type FilesOptions struct {
	Provider string `json:"provider" flag:"provider" help:"Commit source: github, gitlab or local" default:"local"`
	Repo     string `json:"repo" flag:"repo" help:"owner/repo, project id or working copy path" default:"."`
	From     string `json:"from" flag:"from" help:"Start ref (exclusive)"`
	To       string `json:"to" flag:"to" help:"End ref (inclusive)"`
}

func (o FilesOptions) GetName() string { return "files" }

func (o FilesOptions) Help() api.Text {
	return clicky.Text(`Show a tree of the files changed in a ref range, with line and commit
counts rolled up per directory.

EXAMPLES:
  changelog files --from previous --to latest
  changelog files --provider github --repo flanksource/gavel --from v1.0.0`)
}

func init() {
	clicky.AddCommand(rootCmd, FilesOptions{}, func(opts FilesOptions) (any, error) {
		conn, err := connection(opts.Provider)
		if err != nil {
			return nil, err
		}
		_, svc, err := loadService()
		if err != nil {
			return nil, err
		}
		doc, err := svc.Generate(context.Background(), changelog.Request{
			Connection:     conn,
			Repository:     opts.Repo,
			FromRef:        opts.From,
			ToRef:          opts.To,
			IncludeDetails: true,
		})
		if err != nil {
			logger.Errorf("files failed: %v", err)
			return nil, err
		}
		return git.SummarizePaths(doc.Groups), nil
	})
}
