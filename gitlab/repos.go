package gitlab

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/samber/lo"

	"github.com/flanksource/changelog/models"
)

// ListRepositories returns the first page of projects the token is a member of.
func (c *Client) ListRepositories(ctx context.Context) ([]models.Repository, error) {
	var raw []restProject
	query := url.Values{
		"membership": {"true"},
		"order_by":   {"last_activity_at"},
		"per_page":   {pageSize},
	}
	if _, err := c.get(ctx, "/projects", query, &raw); err != nil {
		return nil, err
	}
	return lo.Map(raw, func(p restProject, _ int) models.Repository { return p.toRepository() }), nil
}

func (c *Client) ListTags(ctx context.Context, project string) ([]models.Ref, error) {
	return c.listRefs(ctx, projectPath(project)+"/repository/tags", models.RefKindTag)
}

func (c *Client) ListBranches(ctx context.Context, project string) ([]models.Ref, error) {
	return c.listRefs(ctx, projectPath(project)+"/repository/branches", models.RefKindBranch)
}

func (c *Client) listRefs(ctx context.Context, path string, kind models.RefKind) ([]models.Ref, error) {
	var raw []restRef
	if _, err := c.get(ctx, path, url.Values{"per_page": {pageSize}}, &raw); err != nil {
		return nil, err
	}
	return lo.Map(raw, func(r restRef, _ int) models.Ref { return r.toRef(kind) }), nil
}

func (c *Client) ValidateToken(ctx context.Context) (*models.TokenHealth, error) {
	health := &models.TokenHealth{Provider: Provider, CheckedAt: time.Now()}

	var user restUser
	resp, err := c.get(ctx, "/user", nil, &user)
	if resp != nil {
		health.RateLimit = rateLimit(resp)
	}

	var perr *models.ProviderError
	switch {
	case errors.As(err, &perr) && (perr.Status == 401 || perr.Status == 403):
		health.Message = perr.Message
		return health, nil
	case err != nil:
		return nil, err
	}
	health.Valid = true
	health.Login = user.Username
	return health, nil
}
