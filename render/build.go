package render

import (
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/flanksource/changelog/models"
)

type Options struct {
	Provider    string
	Repository  string
	FromRef     string
	ToRef       string
	GeneratedAt time.Time
	// Narrative replaces the rule-based Markdown body (and so the HTML) when set.
	Narrative string
}

// Build assembles a complete document from classified groups.
func Build(groups []models.CommitGroup, opts Options) (*models.ChangelogDocument, error) {
	if opts.GeneratedAt.IsZero() {
		opts.GeneratedAt = time.Now()
	}
	doc := &models.ChangelogDocument{
		Metadata: models.Metadata{
			Provider:    opts.Provider,
			Repository:  opts.Repository,
			FromRef:     opts.FromRef,
			ToRef:       opts.ToRef,
			GeneratedAt: opts.GeneratedAt.UTC(),
			DateRange:   dateRange(groups),
			Narrative:   opts.Narrative != "",
		},
		Stats:  Stats(groups),
		Groups: groups,
	}

	doc.Markdown = Markdown(doc)
	if doc.Metadata.Narrative {
		doc.Markdown = opts.Narrative
	}
	html, err := HTML(doc.Metadata, doc.Markdown)
	if err != nil {
		return nil, err
	}
	doc.HTML = html
	doc.Text = Text(doc)
	return doc, nil
}

func allCommits(groups []models.CommitGroup) []models.CommitRecord {
	return lo.FlatMap(groups, func(g models.CommitGroup, _ int) []models.CommitRecord { return g.Commits })
}

// Stats totals commits and line counts. Contributors are distinct author
// emails compared case-insensitively.
func Stats(groups []models.CommitGroup) models.DocumentStats {
	commits := allCommits(groups)
	emails := lo.Uniq(lo.FilterMap(commits, func(c models.CommitRecord, _ int) (string, bool) {
		email := strings.ToLower(strings.TrimSpace(c.Author.Email))
		return email, email != ""
	}))
	return models.DocumentStats{
		TotalCommits: len(commits),
		Additions:    lo.SumBy(commits, func(c models.CommitRecord) int { return c.Additions() }),
		Deletions:    lo.SumBy(commits, func(c models.CommitRecord) int { return c.Deletions() }),
		Contributors: len(emails),
	}
}

func dateRange(groups []models.CommitGroup) models.DateRange {
	var r models.DateRange
	for _, c := range allCommits(groups) {
		date := c.Author.Date
		if date.IsZero() {
			continue
		}
		if r.From.IsZero() || date.Before(r.From) {
			r.From = date
		}
		if r.To.IsZero() || date.After(r.To) {
			r.To = date
		}
	}
	return r
}
