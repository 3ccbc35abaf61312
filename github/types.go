package github

import (
	"strconv"
	"time"

	"github.com/flanksource/changelog/models"
)

// REST response types (snake_case JSON), mapped into models by the toX functions.

type restCommit struct {
	SHA     string `json:"sha"`
	HTMLURL string `json:"html_url"`
	Commit  struct {
		Message string `json:"message"`
		Author  *struct {
			Name  string    `json:"name"`
			Email string    `json:"email"`
			Date  time.Time `json:"date"`
		} `json:"author"`
	} `json:"commit"`
	Stats *struct {
		Additions int `json:"additions"`
		Deletions int `json:"deletions"`
	} `json:"stats"`
	Files []restFile `json:"files"`
}

func (c restCommit) toCommitRecord() models.CommitRecord {
	record := models.CommitRecord{
		SHA:     c.SHA,
		Message: c.Commit.Message,
		URL:     c.HTMLURL,
	}
	if a := c.Commit.Author; a != nil {
		record.Author = models.Author{Name: a.Name, Email: a.Email, Date: a.Date}
	}
	if c.Stats != nil {
		record.Stats = &models.CommitStats{Additions: c.Stats.Additions, Deletions: c.Stats.Deletions}
	}
	for _, f := range c.Files {
		record.Files = append(record.Files, f.toFileChange())
	}
	return record
}

type restFile struct {
	Filename         string `json:"filename"`
	Status           string `json:"status"`
	Additions        int    `json:"additions"`
	Deletions        int    `json:"deletions"`
	Changes          int    `json:"changes"`
	Patch            string `json:"patch"`
	PreviousFilename string `json:"previous_filename"`
}

func (f restFile) toFileChange() models.FileChange {
	return models.FileChange{
		Filename:         f.Filename,
		Status:           toFileStatus(f.Status),
		Additions:        f.Additions,
		Deletions:        f.Deletions,
		Changes:          f.Changes,
		Patch:            f.Patch,
		PreviousFilename: f.PreviousFilename,
	}
}

// GitHub also reports copied, changed and unchanged; those read as modified.
func toFileStatus(status string) models.FileStatus {
	switch models.FileStatus(status) {
	case models.FileStatusAdded, models.FileStatusRemoved, models.FileStatusRenamed:
		return models.FileStatus(status)
	default:
		return models.FileStatusModified
	}
}

type restCompare struct {
	TotalCommits int          `json:"total_commits"`
	Commits      []restCommit `json:"commits"`
}

type restRepo struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	FullName string `json:"full_name"`
	Owner    struct {
		Login string `json:"login"`
	} `json:"owner"`
	Description   string    `json:"description"`
	DefaultBranch string    `json:"default_branch"`
	Private       bool      `json:"private"`
	HTMLURL       string    `json:"html_url"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (r restRepo) toRepository() models.Repository {
	return models.Repository{
		ID:            strconv.FormatInt(r.ID, 10),
		Provider:      Provider,
		FullName:      r.FullName,
		Name:          r.Name,
		Owner:         r.Owner.Login,
		Description:   r.Description,
		DefaultBranch: r.DefaultBranch,
		Private:       r.Private,
		URL:           r.HTMLURL,
		UpdatedAt:     r.UpdatedAt,
	}
}

// Tags and branches share this shape.
type restRef struct {
	Name   string `json:"name"`
	Commit struct {
		SHA string `json:"sha"`
	} `json:"commit"`
}

func (r restRef) toRef(kind models.RefKind) models.Ref {
	return models.Ref{Name: r.Name, Kind: kind, SHA: r.Commit.SHA}
}

type restUser struct {
	Login string `json:"login"`
}
