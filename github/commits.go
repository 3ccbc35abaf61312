package github

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/flanksource/commons/logger"

	"github.com/flanksource/changelog/models"
)

// ListCommits returns one page of commits for repo ("owner/repo").
//
//	from and to set:  compare/{from}...{to}, commits unique to the range
//	only from:        compare/{from}...HEAD
//	only to:          commits reachable from to
//	neither:          the default branch
func (c *Client) ListCommits(ctx context.Context, repo, fromRef, toRef string) ([]models.CommitRecord, error) {
	repo, err := NormalizeRepo(repo)
	if err != nil {
		return nil, err
	}
	var raw []restCommit

	if fromRef != "" {
		if toRef == "" {
			toRef = "HEAD"
		}
		var compare restCompare
		path := fmt.Sprintf("/repos/%s/compare/%s...%s", repo, fromRef, toRef)
		if _, err := c.get(ctx, path, url.Values{"per_page": {strconv.Itoa(pageSize)}}, &compare); err != nil {
			return nil, err
		}
		if compare.TotalCommits > len(compare.Commits) {
			logger.Warnf("github: %s %s...%s has %d commits, only %d returned", repo, fromRef, toRef, compare.TotalCommits, len(compare.Commits))
		}
		raw = compare.Commits
	} else {
		query := url.Values{"per_page": {strconv.Itoa(pageSize)}}
		if toRef != "" {
			query.Set("sha", toRef)
		}
		if _, err := c.get(ctx, fmt.Sprintf("/repos/%s/commits", repo), query, &raw); err != nil {
			return nil, err
		}
	}

	commits := make([]models.CommitRecord, 0, len(raw))
	for _, rc := range raw {
		commits = append(commits, rc.toCommitRecord())
	}
	logger.Debugf("github: fetched %d commits from %s", len(commits), repo)
	return commits, nil
}

// CommitDetail fetches the stats and changed files of a single commit.
func (c *Client) CommitDetail(ctx context.Context, repo, sha string) (models.CommitRecord, error) {
	repo, err := NormalizeRepo(repo)
	if err != nil {
		return models.CommitRecord{}, err
	}
	var rc restCommit
	if _, err := c.get(ctx, fmt.Sprintf("/repos/%s/commits/%s", repo, sha), nil, &rc); err != nil {
		return models.CommitRecord{}, err
	}
	return rc.toCommitRecord(), nil
}
