package models

import (
	"fmt"
	"time"

	"github.com/flanksource/clicky"
	"github.com/flanksource/clicky/api"
)

// Category is the key of a classification bucket.
type Category string

const (
	CategoryBreaking    Category = "breaking"
	CategoryFeatures    Category = "features"
	CategoryFixes       Category = "fixes"
	CategoryPerformance Category = "performance"
	CategoryDocs        Category = "docs"
	CategoryStyle       Category = "style"
	CategoryRefactor    Category = "refactor"
	CategoryTest        Category = "test"
	CategoryBuild       Category = "build"
	CategoryCI          Category = "ci"
	CategoryChore       Category = "chore"
	CategoryOther       Category = "other"
)

// Categories lists every bucket in emission order.
var Categories = []Category{
	CategoryBreaking,
	CategoryFeatures,
	CategoryFixes,
	CategoryPerformance,
	CategoryDocs,
	CategoryStyle,
	CategoryRefactor,
	CategoryTest,
	CategoryBuild,
	CategoryCI,
	CategoryChore,
	CategoryOther,
}

var categoryLabels = map[Category]string{
	CategoryBreaking:    "🚨 Breaking Changes",
	CategoryFeatures:    "✨ Features",
	CategoryFixes:       "🐛 Bug Fixes",
	CategoryPerformance: "⚡ Performance",
	CategoryDocs:        "📝 Documentation",
	CategoryStyle:       "💄 Styling",
	CategoryRefactor:    "♻️ Refactoring",
	CategoryTest:        "✅ Tests",
	CategoryBuild:       "📦 Build",
	CategoryCI:          "👷 CI/CD",
	CategoryChore:       "🔧 Chores",
	CategoryOther:       "📌 Other Changes",
}

func (c Category) Label() string {
	if label, ok := categoryLabels[c]; ok {
		return label
	}
	return categoryLabels[CategoryOther]
}

// CommitGroup is one classification bucket, commits kept in source order.
type CommitGroup struct {
	Category Category       `json:"category"`
	Label    string         `json:"label"`
	Commits  []CommitRecord `json:"commits"`
}

func (g CommitGroup) Pretty() api.Text {
	t := clicky.Text(g.Label, "font-bold").Append(fmt.Sprintf(" (%d)", len(g.Commits)), "text-muted")
	for _, c := range g.Commits {
		t = t.NewLine().Append("  ").Add(c.Pretty())
	}
	return t
}

type DateRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

type Metadata struct {
	Provider    string    `json:"provider,omitempty"`
	Repository  string    `json:"repository"`
	FromRef     string    `json:"from_ref,omitempty"`
	ToRef       string    `json:"to_ref,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`
	DateRange   DateRange `json:"date_range"`
	// Narrative is set when the Markdown body was written by the AI narrator.
	Narrative bool `json:"narrative,omitempty"`
}

// HasRange reports whether either end of the ref range is set.
func (m Metadata) HasRange() bool {
	return m.FromRef != "" || m.ToRef != ""
}

// RangeString renders the ref range as "from...to", using HEAD for a missing end.
func (m Metadata) RangeString() string {
	if !m.HasRange() {
		return ""
	}
	from, to := m.FromRef, m.ToRef
	if from == "" {
		from = "(start)"
	}
	if to == "" {
		to = "HEAD"
	}
	return from + "..." + to
}

type DocumentStats struct {
	TotalCommits int `json:"total_commits"`
	Additions    int `json:"additions"`
	Deletions    int `json:"deletions"`
	Contributors int `json:"contributors"`
}

// ChangelogDocument is built once per generation request and never mutated afterwards.
type ChangelogDocument struct {
	Metadata Metadata      `json:"metadata"`
	Stats    DocumentStats `json:"stats"`
	Groups   []CommitGroup `json:"groups"`
	Markdown string        `json:"-"`
	HTML     string        `json:"-"`
	Text     string        `json:"-"`
}

func (d ChangelogDocument) Pretty() api.Text {
	t := clicky.Text(d.Metadata.Repository, "font-bold text-blue-600")
	if r := d.Metadata.RangeString(); r != "" {
		t = t.Space().Append(r, "font-mono text-cyan-600")
	}
	t = t.NewLine().
		Append(fmt.Sprintf("%d commits", d.Stats.TotalCommits), "").
		Append(fmt.Sprintf(" +%d", d.Stats.Additions), "text-green-600").
		Append(fmt.Sprintf(" -%d", d.Stats.Deletions), "text-red-600").
		Append(fmt.Sprintf(" %d contributors", d.Stats.Contributors), "text-muted")
	for _, g := range d.Groups {
		t = t.NewLine().Add(g.Pretty())
	}
	return t
}
