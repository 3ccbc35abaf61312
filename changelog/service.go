package changelog

import (
	"context"
	"fmt"
	"time"

	"github.com/flanksource/commons/logger"

	"github.com/flanksource/changelog/cache"
	"github.com/flanksource/changelog/git"
	"github.com/flanksource/changelog/models"
	"github.com/flanksource/changelog/narrative"
	"github.com/flanksource/changelog/provider"
	"github.com/flanksource/changelog/render"
)

// Connection identifies the caller's credentials for one provider.
type Connection struct {
	UserID       string        `json:"userId,omitempty"`
	ConnectionID string        `json:"connectionId,omitempty"`
	Provider     provider.Kind `json:"provider"`
	Token        string        `json:"-"`
	BaseURL      string        `json:"baseURL,omitempty"`
}

type Request struct {
	Connection
	// RepoID keys the caches; it defaults to Repository.
	RepoID         string `json:"repoId,omitempty"`
	Repository     string `json:"repository"`
	FromRef        string `json:"fromRef,omitempty"`
	ToRef          string `json:"toRef,omitempty"`
	IncludeDetails bool   `json:"includeDetails,omitempty"`
	Narrative      bool   `json:"narrative,omitempty"`
}

func (r Request) repoID() string {
	if r.RepoID != "" {
		return r.RepoID
	}
	return r.Repository
}

// Service generates changelogs. It owns no global state: caches, provider
// construction and the narrator are all injected.
type Service struct {
	caches   *cache.Caches
	factory  provider.Factory
	narrator *narrative.Renderer
	now      func() time.Time
}

type Option func(*Service)

func WithFactory(f provider.Factory) Option {
	return func(s *Service) { s.factory = f }
}

func WithNarrator(r *narrative.Renderer) Option {
	return func(s *Service) { s.narrator = r }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(caches *cache.Caches, opts ...Option) *Service {
	s := &Service{caches: caches, factory: provider.New, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// normalize defaults the provider to GitHub.
func (c Connection) normalize() Connection {
	if c.Provider == "" {
		c.Provider = provider.KindGitHub
	}
	return c
}

func (s *Service) source(conn Connection, path string) (provider.Source, error) {
	return s.factory(conn.Provider, provider.Credentials{Token: conn.Token, BaseURL: conn.BaseURL, Path: path})
}

// optional drops empty strings from cache params.
func optional(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func commitParams(req Request) cache.Params {
	return cache.Params{
		"provider": string(req.Provider),
		"baseURL":  optional(req.BaseURL),
		"repoId":   req.repoID(),
		"fromRef":  optional(req.FromRef),
		"toRef":    optional(req.ToRef),
		"details":  req.IncludeDetails,
	}
}

func changelogParams(req Request) cache.Params {
	p := commitParams(req)
	p["narrative"] = req.Narrative
	return p
}

// Generate produces a changelog for a ref range, serving from the changelog
// and commit caches where possible. A range with no commits is an
// EmptyResultError and is not cached.
func (s *Service) Generate(ctx context.Context, req Request) (*models.ChangelogDocument, error) {
	if req.Repository == "" {
		return nil, fmt.Errorf("repository is required")
	}
	req.Connection = req.Connection.normalize()
	src, err := s.source(req.Connection, req.Repository)
	if err != nil {
		return nil, err
	}
	if req.FromRef, req.ToRef, err = provider.ResolveRefs(ctx, src, req.Repository, req.FromRef, req.ToRef); err != nil {
		return nil, err
	}

	if doc, ok := s.caches.Changelogs.Get(changelogParams(req)); ok {
		logger.Debugf("changelog for %s %s served from cache", req.Repository, rangeOf(req))
		return doc, nil
	}

	commits, err := s.commits(ctx, src, req)
	if err != nil {
		return nil, err
	}
	if len(commits) == 0 {
		return nil, &models.EmptyResultError{Repository: req.Repository, FromRef: req.FromRef, ToRef: req.ToRef}
	}

	groups := git.Classify(commits)

	opts := render.Options{
		Provider:    string(req.Provider),
		Repository:  req.Repository,
		FromRef:     req.FromRef,
		ToRef:       req.ToRef,
		GeneratedAt: s.now(),
	}
	if req.Narrative {
		if opts.Narrative, err = s.narrator.Render(ctx, narrative.Input{
			Repository: req.Repository,
			FromRef:    req.FromRef,
			ToRef:      req.ToRef,
			Groups:     groups,
		}); err != nil {
			return nil, err
		}
	}

	doc, err := render.Build(groups, opts)
	if err != nil {
		return nil, err
	}
	s.caches.Changelogs.Set(changelogParams(req), doc)
	logger.Infof("generated changelog for %s %s: %d commits in %d groups", req.Repository, rangeOf(req), doc.Stats.TotalCommits, len(groups))
	return doc, nil
}

func (s *Service) commits(ctx context.Context, src provider.Source, req Request) ([]models.CommitRecord, error) {
	params := commitParams(req)
	if commits, ok := s.caches.Commits.Get(params); ok {
		return commits, nil
	}
	commits, err := provider.FetchCommits(ctx, src, provider.FetchOptions{
		Repository:     req.Repository,
		FromRef:        req.FromRef,
		ToRef:          req.ToRef,
		IncludeDetails: req.IncludeDetails,
	})
	if err != nil {
		return nil, err
	}
	if len(commits) > 0 {
		s.caches.Commits.Set(params, commits)
	}
	return commits, nil
}

func rangeOf(req Request) string {
	return models.Metadata{FromRef: req.FromRef, ToRef: req.ToRef}.RangeString()
}

// ListRepositories lists the repositories visible to a connection.
func (s *Service) ListRepositories(ctx context.Context, conn Connection) ([]models.Repository, error) {
	conn = conn.normalize()
	params := cache.Params{"userId": optional(conn.UserID), "provider": string(conn.Provider), "baseURL": optional(conn.BaseURL)}
	if repos, ok := s.caches.Repositories.Get(params); ok {
		return repos, nil
	}
	src, err := s.source(conn, "")
	if err != nil {
		return nil, err
	}
	repos, err := src.ListRepositories(ctx)
	if err != nil {
		return nil, err
	}
	s.caches.Repositories.Set(params, repos)
	return repos, nil
}

// CheckToken validates a connection's token against its provider.
func (s *Service) CheckToken(ctx context.Context, conn Connection) (*models.TokenHealth, error) {
	conn = conn.normalize()
	params := cache.Params{"connectionId": optional(conn.ConnectionID), "provider": string(conn.Provider), "baseURL": optional(conn.BaseURL)}
	if health, ok := s.caches.TokenHealth.Get(params); ok {
		return health, nil
	}
	src, err := s.source(conn, "")
	if err != nil {
		return nil, err
	}
	health, err := src.ValidateToken(ctx)
	if err != nil {
		return nil, err
	}
	s.caches.TokenHealth.Set(params, health)
	return health, nil
}

// ResolveRefs maps latest/previous aliases in the request to tag names.
func (s *Service) ResolveRefs(ctx context.Context, req Request) (string, string, error) {
	src, err := s.source(req.Connection.normalize(), req.Repository)
	if err != nil {
		return "", "", err
	}
	return provider.ResolveRefs(ctx, src, req.Repository, req.FromRef, req.ToRef)
}

// ListRefs returns semver-sorted tags followed by branches.
func (s *Service) ListRefs(ctx context.Context, req Request) ([]models.Ref, error) {
	src, err := s.source(req.Connection.normalize(), req.Repository)
	if err != nil {
		return nil, err
	}
	tags, err := src.ListTags(ctx, req.Repository)
	if err != nil {
		return nil, err
	}
	branches, err := src.ListBranches(ctx, req.Repository)
	if err != nil {
		return nil, err
	}
	sorted := provider.SortTags(tags)
	if len(sorted) < len(tags) {
		// keep non-semver tags, after the versioned ones
		seen := map[string]bool{}
		for _, t := range sorted {
			seen[t.Name] = true
		}
		for _, t := range tags {
			if !seen[t.Name] {
				sorted = append(sorted, t)
			}
		}
	}
	return append(sorted, branches...), nil
}
