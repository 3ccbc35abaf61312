package provider

import (
	"context"
	"fmt"
	"strings"

	"github.com/flanksource/changelog/github"
	"github.com/flanksource/changelog/gitlab"
	"github.com/flanksource/changelog/local"
	"github.com/flanksource/changelog/models"
)

type Kind string

const (
	KindGitHub Kind = github.Provider
	KindGitLab Kind = gitlab.Provider
	KindLocal  Kind = local.Provider
)

var Kinds = []Kind{KindGitHub, KindGitLab, KindLocal}

func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if strings.EqualFold(s, string(k)) {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown provider %q, expected one of: github, gitlab, local", s)
}

// Source is one commit host. repo is "owner/repo" for GitHub, a project id
// or path for GitLab and a working copy path for local.
type Source interface {
	ListCommits(ctx context.Context, repo, fromRef, toRef string) ([]models.CommitRecord, error)
	CommitDetail(ctx context.Context, repo, sha string) (models.CommitRecord, error)
	ListRepositories(ctx context.Context) ([]models.Repository, error)
	ListTags(ctx context.Context, repo string) ([]models.Ref, error)
	ListBranches(ctx context.Context, repo string) ([]models.Ref, error)
	ValidateToken(ctx context.Context) (*models.TokenHealth, error)
}

var (
	_ Source = (*github.Client)(nil)
	_ Source = (*gitlab.Client)(nil)
	_ Source = (*local.Client)(nil)
)

// Credentials carry the caller's plain token; BaseURL points at a
// self-hosted instance. Path is only used by the local source.
type Credentials struct {
	Token   string
	BaseURL string
	Path    string
}

// Factory builds a Source for a provider kind and token.
type Factory func(kind Kind, creds Credentials) (Source, error)

func New(kind Kind, creds Credentials) (Source, error) {
	switch kind {
	case KindGitHub:
		return github.NewClient(github.Options{Token: creds.Token, BaseURL: creds.BaseURL})
	case KindGitLab:
		return gitlab.NewClient(gitlab.Options{Token: creds.Token, BaseURL: creds.BaseURL})
	case KindLocal:
		return local.NewClient(local.Options{Path: creds.Path})
	default:
		return nil, fmt.Errorf("unknown provider %q", kind)
	}
}
