package local

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/flanksource/commons/logger"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"

	gitparse "github.com/flanksource/changelog/git"
	"github.com/flanksource/changelog/models"
)

const (
	Provider   = "local"
	maxCommits = 100
)

type Options struct {
	Path string // working copy used when no repository is given, defaults to "."
}

// Client reads history straight from a git working copy, no network needed.
type Client struct {
	root string
}

func NewClient(opts Options) (*Client, error) {
	root := opts.Path
	if root == "" {
		root = "."
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	return &Client{root: abs}, nil
}

func (c *Client) open(path string) (*git.Repository, error) {
	if path == "" {
		path = c.root
	}
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return repo, nil
}

// resolveRef accepts tags (annotated or lightweight), local and origin branches,
// and anything else go-git can resolve as a revision.
func resolveRef(repo *git.Repository, ref string) (plumbing.Hash, error) {
	if tagRef, err := repo.Tag(ref); err == nil {
		if tagObj, err := repo.TagObject(tagRef.Hash()); err == nil {
			return tagObj.Target, nil
		}
		return tagRef.Hash(), nil
	}
	if branchRef, err := repo.Reference(plumbing.NewBranchReferenceName(ref), true); err == nil {
		return branchRef.Hash(), nil
	}
	if remoteRef, err := repo.Reference(plumbing.NewRemoteReferenceName("origin", ref), true); err == nil {
		return remoteRef.Hash(), nil
	}
	hash, err := repo.ResolveRevision(plumbing.Revision(ref))
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("reference %s not found: %w", ref, err)
	}
	return *hash, nil
}

// ListCommits walks history from toRef (HEAD when empty) and stops at the
// page limit. With fromRef set, every commit reachable from fromRef is
// excluded, matching `git log from..to`.
func (c *Client) ListCommits(ctx context.Context, path, fromRef, toRef string) ([]models.CommitRecord, error) {
	repo, err := c.open(path)
	if err != nil {
		return nil, err
	}
	if toRef == "" {
		toRef = "HEAD"
	}
	toHash, err := resolveRef(repo, toRef)
	if err != nil {
		return nil, err
	}

	exclude := map[plumbing.Hash]bool{}
	if fromRef != "" {
		fromHash, err := resolveRef(repo, fromRef)
		if err != nil {
			return nil, err
		}
		if exclude, err = ancestors(ctx, repo, fromHash); err != nil {
			return nil, err
		}
	}

	iter, err := repo.Log(&git.LogOptions{From: toHash, Order: git.LogOrderCommitterTime})
	if err != nil {
		return nil, fmt.Errorf("git log %s: %w", toRef, err)
	}
	defer iter.Close()

	var commits []models.CommitRecord
	err = iter.ForEach(func(commit *object.Commit) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if exclude[commit.Hash] {
			return nil
		}
		commits = append(commits, toCommitRecord(commit))
		if len(commits) >= maxCommits {
			return storer.ErrStop
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.Debugf("local: %d commits in %s..%s", len(commits), fromRef, toRef)
	return commits, nil
}

func ancestors(ctx context.Context, repo *git.Repository, from plumbing.Hash) (map[plumbing.Hash]bool, error) {
	iter, err := repo.Log(&git.LogOptions{From: from})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	seen := map[plumbing.Hash]bool{}
	err = iter.ForEach(func(commit *object.Commit) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		seen[commit.Hash] = true
		return nil
	})
	return seen, err
}

func toCommitRecord(commit *object.Commit) models.CommitRecord {
	return models.CommitRecord{
		SHA:     commit.Hash.String(),
		Message: strings.TrimRight(commit.Message, "\n"),
		Author: models.Author{
			Name:  commit.Author.Name,
			Email: commit.Author.Email,
			Date:  commit.Author.When,
		},
	}
}

// CommitDetail diffs a commit against its first parent (the empty tree for a
// root commit) and returns the per-file changes.
func (c *Client) CommitDetail(ctx context.Context, path, sha string) (models.CommitRecord, error) {
	repo, err := c.open(path)
	if err != nil {
		return models.CommitRecord{}, err
	}
	commit, err := repo.CommitObject(plumbing.NewHash(sha))
	if err != nil {
		return models.CommitRecord{}, fmt.Errorf("commit %s: %w", sha, err)
	}
	tree, err := commit.Tree()
	if err != nil {
		return models.CommitRecord{}, err
	}

	var parentTree *object.Tree
	if commit.NumParents() > 0 {
		parent, err := commit.Parent(0)
		if err != nil {
			return models.CommitRecord{}, err
		}
		if parentTree, err = parent.Tree(); err != nil {
			return models.CommitRecord{}, err
		}
	}

	changes, err := object.DiffTreeWithOptions(ctx, parentTree, tree, object.DefaultDiffTreeOptions)
	if err != nil {
		return models.CommitRecord{}, fmt.Errorf("diff %s: %w", sha, err)
	}
	patch, err := changes.PatchContext(ctx)
	if err != nil {
		return models.CommitRecord{}, fmt.Errorf("patch %s: %w", sha, err)
	}

	record := toCommitRecord(commit)
	record.Files = gitparse.ParsePatch(patch.String())
	record.Stats = &models.CommitStats{}
	for _, f := range record.Files {
		record.Stats.Additions += f.Additions
		record.Stats.Deletions += f.Deletions
	}
	return record, nil
}

// ListRepositories reports the working copy itself.
func (c *Client) ListRepositories(ctx context.Context) ([]models.Repository, error) {
	repo, err := c.open("")
	if err != nil {
		return nil, err
	}
	r := models.Repository{
		ID:       c.root,
		Provider: Provider,
		FullName: c.root,
		Name:     filepath.Base(c.root),
	}
	if head, err := repo.Head(); err == nil && head.Name().IsBranch() {
		r.DefaultBranch = head.Name().Short()
	}
	if remote, err := repo.Remote("origin"); err == nil && len(remote.Config().URLs) > 0 {
		r.URL = remote.Config().URLs[0]
	}
	return []models.Repository{r}, nil
}

func (c *Client) ListTags(ctx context.Context, path string) ([]models.Ref, error) {
	repo, err := c.open(path)
	if err != nil {
		return nil, err
	}
	iter, err := repo.Tags()
	if err != nil {
		return nil, fmt.Errorf("failed to get tags: %w", err)
	}

	var refs []models.Ref
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		hash := ref.Hash()
		if tag, err := repo.TagObject(hash); err == nil {
			hash = tag.Target
		}
		refs = append(refs, models.Ref{Name: ref.Name().Short(), Kind: models.RefKindTag, SHA: hash.String()})
		return nil
	})
	return refs, err
}

func (c *Client) ListBranches(ctx context.Context, path string) ([]models.Ref, error) {
	repo, err := c.open(path)
	if err != nil {
		return nil, err
	}
	iter, err := repo.Branches()
	if err != nil {
		return nil, fmt.Errorf("failed to get branches: %w", err)
	}

	var refs []models.Ref
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		refs = append(refs, models.Ref{Name: ref.Name().Short(), Kind: models.RefKindBranch, SHA: ref.Hash().String()})
		return nil
	})
	return refs, err
}

// ValidateToken has nothing to authenticate; it reports whether the working copy opens.
func (c *Client) ValidateToken(ctx context.Context) (*models.TokenHealth, error) {
	health := &models.TokenHealth{Provider: Provider, CheckedAt: time.Now()}
	if _, err := c.open(""); err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			health.Message = "not a git repository: " + c.root
			return health, nil
		}
		return nil, err
	}
	health.Valid = true
	health.Login = c.root
	return health, nil
}
