package github

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/flanksource/changelog/models"
)

// ListRepositories returns the first page of repositories visible to the token,
// most recently updated first.
func (c *Client) ListRepositories(ctx context.Context) ([]models.Repository, error) {
	var raw []restRepo
	query := url.Values{
		"per_page": {strconv.Itoa(pageSize)},
		"sort":     {"updated"},
	}
	if _, err := c.get(ctx, "/user/repos", query, &raw); err != nil {
		return nil, err
	}
	return lo.Map(raw, func(r restRepo, _ int) models.Repository { return r.toRepository() }), nil
}

func (c *Client) ListTags(ctx context.Context, repo string) ([]models.Ref, error) {
	repo, err := NormalizeRepo(repo)
	if err != nil {
		return nil, err
	}
	return c.listRefs(ctx, fmt.Sprintf("/repos/%s/tags", repo), models.RefKindTag)
}

func (c *Client) ListBranches(ctx context.Context, repo string) ([]models.Ref, error) {
	repo, err := NormalizeRepo(repo)
	if err != nil {
		return nil, err
	}
	return c.listRefs(ctx, fmt.Sprintf("/repos/%s/branches", repo), models.RefKindBranch)
}

func (c *Client) listRefs(ctx context.Context, path string, kind models.RefKind) ([]models.Ref, error) {
	var raw []restRef
	if _, err := c.get(ctx, path, url.Values{"per_page": {strconv.Itoa(pageSize)}}, &raw); err != nil {
		return nil, err
	}
	return lo.Map(raw, func(r restRef, _ int) models.Ref { return r.toRef(kind) }), nil
}

// ValidateToken calls /user. A rejected token is reported as an invalid
// TokenHealth rather than an error; transport failures are still errors.
func (c *Client) ValidateToken(ctx context.Context) (*models.TokenHealth, error) {
	health := &models.TokenHealth{Provider: Provider, CheckedAt: time.Now()}

	var user restUser
	resp, err := c.get(ctx, "/user", nil, &user)
	if resp != nil {
		health.RateLimit = rateLimit(resp)
		health.Scopes = splitScopes(resp.Header.Get("X-OAuth-Scopes"))
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
	health.Login = user.Login
	return health, nil
}

func splitScopes(header string) []string {
	var scopes []string
	for _, s := range strings.Split(header, ",") {
		if s = strings.TrimSpace(s); s != "" {
			scopes = append(scopes, s)
		}
	}
	return scopes
}
