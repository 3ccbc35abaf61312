package gitlab

import (
	"strconv"
	"time"

	"github.com/flanksource/changelog/git"
	"github.com/flanksource/changelog/models"
)

type restCommit struct {
	ID           string    `json:"id"`
	Message      string    `json:"message"`
	AuthorName   string    `json:"author_name"`
	AuthorEmail  string    `json:"author_email"`
	AuthoredDate time.Time `json:"authored_date"`
	WebURL       string    `json:"web_url"`
}

func (c restCommit) toCommitRecord() models.CommitRecord {
	return models.CommitRecord{
		SHA:     c.ID,
		Message: c.Message,
		URL:     c.WebURL,
		Author: models.Author{
			Name:  c.AuthorName,
			Email: c.AuthorEmail,
			Date:  c.AuthoredDate,
		},
	}
}

type restDiff struct {
	OldPath     string `json:"old_path"`
	NewPath     string `json:"new_path"`
	NewFile     bool   `json:"new_file"`
	RenamedFile bool   `json:"renamed_file"`
	DeletedFile bool   `json:"deleted_file"`
	Diff        string `json:"diff"`
}

// GitLab reports no per-file counts; they are derived from the unified diff.
func (d restDiff) toFileChange() models.FileChange {
	adds, dels := git.CountPatchLines(d.Diff)
	change := models.FileChange{
		Filename:  d.NewPath,
		Status:    models.FileStatusModified,
		Additions: adds,
		Deletions: dels,
		Changes:   adds + dels,
		Patch:     d.Diff,
	}
	switch {
	case d.NewFile:
		change.Status = models.FileStatusAdded
	case d.DeletedFile:
		change.Status = models.FileStatusRemoved
		if change.Filename == "" {
			change.Filename = d.OldPath
		}
	case d.RenamedFile:
		change.Status = models.FileStatusRenamed
		change.PreviousFilename = d.OldPath
	}
	return change
}

type restProject struct {
	ID                int64  `json:"id"`
	Name              string `json:"name"`
	PathWithNamespace string `json:"path_with_namespace"`
	Namespace         struct {
		FullPath string `json:"full_path"`
	} `json:"namespace"`
	Description    string    `json:"description"`
	DefaultBranch  string    `json:"default_branch"`
	Visibility     string    `json:"visibility"`
	WebURL         string    `json:"web_url"`
	LastActivityAt time.Time `json:"last_activity_at"`
}

func (p restProject) toRepository() models.Repository {
	return models.Repository{
		ID:            strconv.FormatInt(p.ID, 10),
		Provider:      Provider,
		FullName:      p.PathWithNamespace,
		Name:          p.Name,
		Owner:         p.Namespace.FullPath,
		Description:   p.Description,
		DefaultBranch: p.DefaultBranch,
		Private:       p.Visibility != "public",
		URL:           p.WebURL,
		UpdatedAt:     p.LastActivityAt,
	}
}

type restRef struct {
	Name   string `json:"name"`
	Commit struct {
		ID string `json:"id"`
	} `json:"commit"`
}

func (r restRef) toRef(kind models.RefKind) models.Ref {
	return models.Ref{Name: r.Name, Kind: kind, SHA: r.Commit.ID}
}

type restUser struct {
	Username string `json:"username"`
}
