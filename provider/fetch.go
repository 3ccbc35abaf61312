package provider

import (
	"context"

	"github.com/flanksource/commons/logger"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/flanksource/changelog/models"
)

type FetchOptions struct {
	Repository     string
	FromRef        string
	ToRef          string
	IncludeDetails bool
}

// FetchCommits lists the commits of a range, de-duplicated by SHA, and
// optionally enriches each with its files and stats.
func FetchCommits(ctx context.Context, src Source, opts FetchOptions) ([]models.CommitRecord, error) {
	commits, err := src.ListCommits(ctx, opts.Repository, opts.FromRef, opts.ToRef)
	if err != nil {
		return nil, err
	}
	commits = lo.UniqBy(commits, func(c models.CommitRecord) string { return c.SHA })

	if !opts.IncludeDetails || len(commits) == 0 {
		return commits, nil
	}
	return Enrich(ctx, src, opts.Repository, commits)
}

// Enrich fetches commit details concurrently and merges them back by position.
// A failed detail fetch is logged and leaves that commit with no files and
// zero stats; it never fails the batch. Only cancellation of ctx does.
func Enrich(ctx context.Context, src Source, repo string, commits []models.CommitRecord) ([]models.CommitRecord, error) {
	out := make([]models.CommitRecord, len(commits))
	copy(out, commits)

	g, gctx := errgroup.WithContext(ctx)
	for i := range out {
		g.Go(func() error {
			detail, err := src.CommitDetail(gctx, repo, out[i].SHA)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				logger.Warnf("%v", models.DetailFetchWarning{SHA: out[i].SHA, Err: err})
				out[i].Files = []models.FileChange{}
				out[i].Stats = &models.CommitStats{}
				return nil
			}
			out[i].Files = detail.Files
			if out[i].Files == nil {
				out[i].Files = []models.FileChange{}
			}
			out[i].Stats = detail.Stats
			if out[i].Stats == nil {
				out[i].Stats = &models.CommitStats{}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	failed := lo.CountBy(out, func(c models.CommitRecord) bool { return len(c.Files) == 0 })
	logger.Debugf("enriched %d commits, %d without file data", len(out), failed)
	return out, nil
}
