package gitlab

import (
	"context"
	"net/url"

	"github.com/flanksource/commons/logger"

	"github.com/flanksource/changelog/models"
)

// ListCommits returns one page of commits reachable from toRef (the default
// branch when empty). GitLab has no two-ref commit listing, so fromRef is
// not applied and the result may include commits older than it.
func (c *Client) ListCommits(ctx context.Context, project, fromRef, toRef string) ([]models.CommitRecord, error) {
	if fromRef != "" {
		logger.Infof("gitlab: fromRef %q is ignored, listing commits reachable from %q", fromRef, toRef)
	}
	query := url.Values{"per_page": {pageSize}}
	if toRef != "" {
		query.Set("ref_name", toRef)
	}

	var raw []restCommit
	if _, err := c.get(ctx, projectPath(project)+"/repository/commits", query, &raw); err != nil {
		return nil, err
	}
	commits := make([]models.CommitRecord, 0, len(raw))
	for _, rc := range raw {
		commits = append(commits, rc.toCommitRecord())
	}
	logger.Debugf("gitlab: fetched %d commits from %s", len(commits), project)
	return commits, nil
}

// CommitDetail fetches the per-file diff of a commit. Only SHA, Stats and
// Files are populated on the returned record.
func (c *Client) CommitDetail(ctx context.Context, project, sha string) (models.CommitRecord, error) {
	var diffs []restDiff
	resp, err := c.get(ctx, projectPath(project)+"/repository/commits/"+sha+"/diff", url.Values{"per_page": {pageSize}}, &diffs)
	if err != nil {
		return models.CommitRecord{}, err
	}
	if resp.Header.Get("X-Next-Page") != "" {
		logger.Warnf("gitlab: %s commit %s has more than %d changed files, only the first page is counted", project, sha, len(diffs))
	}

	record := models.CommitRecord{SHA: sha, Stats: &models.CommitStats{}}
	for _, d := range diffs {
		change := d.toFileChange()
		record.Stats.Additions += change.Additions
		record.Stats.Deletions += change.Deletions
		record.Files = append(record.Files, change)
	}
	return record, nil
}
