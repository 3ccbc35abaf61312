package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/flanksource/clicky"
	"github.com/flanksource/clicky/api"
)

// Author identifies who wrote a commit. It is informational only.
type Author struct {
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Date  time.Time `json:"date"`
}

type CommitStats struct {
	Additions int `json:"additions"`
	Deletions int `json:"deletions"`
}

type FileStatus string

const (
	FileStatusAdded    FileStatus = "added"
	FileStatusModified FileStatus = "modified"
	FileStatusRemoved  FileStatus = "removed"
	FileStatusRenamed  FileStatus = "renamed"
)

// FileChange is one file touched by a commit.
type FileChange struct {
	Filename         string     `json:"filename"`
	Status           FileStatus `json:"status"`
	Additions        int        `json:"additions"`
	Deletions        int        `json:"deletions"`
	Changes          int        `json:"changes"`
	Patch            string     `json:"patch,omitempty"`
	PreviousFilename string     `json:"previous_filename,omitempty"`
}

// CommitRecord is a provider independent view of a single commit.
// Files is empty when detail enrichment was skipped or failed for the commit.
type CommitRecord struct {
	SHA     string       `json:"sha"`
	Message string       `json:"message"`
	Author  Author       `json:"author"`
	URL     string       `json:"url"`
	Stats   *CommitStats `json:"stats,omitempty"`
	Files   []FileChange `json:"files"`
}

// MarshalJSON always emits files as an array, never null.
func (c CommitRecord) MarshalJSON() ([]byte, error) {
	type record CommitRecord
	if c.Files == nil {
		c.Files = []FileChange{}
	}
	return json.Marshal(record(c))
}

// Subject returns the first line of the commit message.
func (c CommitRecord) Subject() string {
	subject, _, _ := strings.Cut(c.Message, "\n")
	return strings.TrimSpace(subject)
}

func (c CommitRecord) ShortSHA() string {
	if len(c.SHA) > 7 {
		return c.SHA[:7]
	}
	return c.SHA
}

func (c CommitRecord) Additions() int {
	if c.Stats == nil {
		return 0
	}
	return c.Stats.Additions
}

func (c CommitRecord) Deletions() int {
	if c.Stats == nil {
		return 0
	}
	return c.Stats.Deletions
}

func (c CommitRecord) Pretty() api.Text {
	t := clicky.Text(c.ShortSHA(), "font-mono text-yellow-600").
		Space().
		Append(c.Subject(), "").
		Append(" ("+c.Author.Name+")", "text-muted")
	if c.Stats != nil {
		t = t.Append(fmt.Sprintf(" +%d", c.Stats.Additions), "text-green-600").
			Append(fmt.Sprintf(" -%d", c.Stats.Deletions), "text-red-600")
	}
	return t
}

type Commits []CommitRecord

func (c Commits) Pretty() api.Text {
	t := clicky.Text(fmt.Sprintf("%d commits", len(c)), "font-bold")
	for _, commit := range c {
		t = t.NewLine().Append("  ").Add(commit.Pretty())
	}
	return t
}
