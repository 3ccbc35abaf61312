package render_test

import (
	"encoding/json"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/flanksource/changelog/git"
	"github.com/flanksource/changelog/models"
	"github.com/flanksource/changelog/render"
)

var day = time.Date(2024, 1, 15, 9, 30, 0, 0, time.UTC)

func fixtureGroups() []models.CommitGroup {
	return git.Classify([]models.CommitRecord{
		{
			SHA:     "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
			Message: "feat(auth): add login",
			URL:     "https://github.com/org/repo/commit/aaaaaaa",
			Author:  models.Author{Name: "Alice", Email: "Alice@Example.com", Date: day},
			Stats:   &models.CommitStats{Additions: 12, Deletions: 3},
			Files: []models.FileChange{
				{Filename: "login.go", Status: models.FileStatusAdded, Additions: 10},
				{Filename: "main.go", Status: models.FileStatusModified, Additions: 2, Deletions: 3},
				{Filename: "b.go", PreviousFilename: "a.go", Status: models.FileStatusRenamed},
				{Filename: "gone.go", Status: models.FileStatusRemoved},
				{Filename: "weird.go", Status: "copied"},
			},
		},
		{
			SHA:     "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb",
			Message: "fix: crash on null\n\nlong body",
			Author:  models.Author{Name: "Bob", Email: "bob@example.com", Date: day.Add(-48 * time.Hour)},
			Stats:   &models.CommitStats{Additions: 1, Deletions: 1},
		},
		{
			SHA:     "cccccccccccccccccccccccccccccccccccccccc",
			Message: "random message",
			Author:  models.Author{Name: "Alice", Email: "alice@example.com", Date: day.Add(24 * time.Hour)},
		},
	})
}

func build(at time.Time) *models.ChangelogDocument {
	doc, err := render.Build(fixtureGroups(), render.Options{
		Provider:    "github",
		Repository:  "org/repo",
		FromRef:     "v1.0.0",
		ToRef:       "v1.1.0",
		GeneratedAt: at,
	})
	Expect(err).NotTo(HaveOccurred())
	return doc
}

func withoutGenerated(s string) string {
	var kept []string
	for _, line := range strings.Split(s, "\n") {
		if strings.Contains(line, "Generated:") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

var _ = Describe("Build", func() {
	It("computes stats and the author date range", func() {
		doc := build(day)

		Expect(doc.Stats.TotalCommits).To(Equal(3))
		Expect(doc.Stats.Additions).To(Equal(13))
		Expect(doc.Stats.Deletions).To(Equal(4))
		Expect(doc.Stats.Contributors).To(Equal(2), "emails compare case-insensitively")
		Expect(doc.Metadata.DateRange.From).To(Equal(day.Add(-48 * time.Hour)))
		Expect(doc.Metadata.DateRange.To).To(Equal(day.Add(24 * time.Hour)))
		Expect(doc.Metadata.Narrative).To(BeFalse())
	})

	It("uses the narrative as the Markdown and HTML body", func() {
		doc, err := render.Build(fixtureGroups(), render.Options{
			Repository: "org/repo",
			Narrative:  "## Summary\n\nThe release adds login.",
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(doc.Metadata.Narrative).To(BeTrue())
		Expect(doc.Markdown).To(Equal("## Summary\n\nThe release adds login."))
		Expect(doc.HTML).To(ContainSubstring("<p>The release adds login.</p>"))
		Expect(doc.Text).To(ContainSubstring("add login"), "text stays rule based")
	})

	It("handles no groups", func() {
		doc, err := render.Build(nil, render.Options{Repository: "org/repo"})
		Expect(err).NotTo(HaveOccurred())
		Expect(doc.Stats.TotalCommits).To(BeZero())
		Expect(doc.Metadata.GeneratedAt.IsZero()).To(BeFalse())
	})
})

var _ = Describe("Markdown", func() {
	It("is stable apart from the generation timestamp", func() {
		first := build(day)
		second := build(day.Add(time.Hour))

		Expect(first.Markdown).NotTo(Equal(second.Markdown))
		Expect(withoutGenerated(first.Markdown)).To(Equal(withoutGenerated(second.Markdown)))
		Expect(withoutGenerated(first.Text)).To(Equal(withoutGenerated(second.Text)))
	})

	It("follows the fixed layout", func() {
		md := build(day).Markdown

		Expect(md).To(HavePrefix("# Changelog\n\n**Repository:** org/repo\n\n**Range:** `v1.0.0...v1.1.0`\n\n**Generated:** 2024-01-15 09:30:00 UTC\n\n---\n"))
		Expect(md).To(ContainSubstring("\n## ✨ Features\n\n- **add login** ([`aaaaaaa`](https://github.com/org/repo/commit/aaaaaaa))\n  - _by Alice on 2024-01-15_\n"))
		Expect(md).To(ContainSubstring("  - 🟢 `login.go` (+10 / -0)\n"))
		Expect(md).To(ContainSubstring("  - 🔵 `main.go` (+2 / -3)\n"))
		Expect(md).To(ContainSubstring("  - 🟡 `b.go` (+0 / -0) ← `a.go`\n"))
		Expect(md).To(ContainSubstring("  - 🔴 `gone.go` (+0 / -0)\n"))
		Expect(md).To(ContainSubstring("  - ⚪ `weird.go` (+0 / -0)\n"))
		Expect(md).To(ContainSubstring("- **crash on null** (`bbbbbbb`)\n"), "no link without a URL")
		Expect(md).NotTo(ContainSubstring("long body"))
	})

	It("emits sections in category order", func() {
		md := build(day).Markdown
		features := strings.Index(md, "## ✨ Features")
		fixes := strings.Index(md, "## 🐛 Bug Fixes")
		other := strings.Index(md, "## 📌 Other Changes")

		Expect(features).To(BeNumerically(">", 0))
		Expect(fixes).To(BeNumerically(">", features))
		Expect(other).To(BeNumerically(">", fixes))
	})

	It("omits the range line without refs", func() {
		doc, err := render.Build(fixtureGroups(), render.Options{Repository: "org/repo", GeneratedAt: day})
		Expect(err).NotTo(HaveOccurred())
		Expect(doc.Markdown).NotTo(ContainSubstring("**Range:**"))
	})
})

var _ = Describe("Text", func() {
	It("has underlined titles and no Markdown syntax", func() {
		text := build(day).Text

		Expect(text).To(HavePrefix("Changelog\n=========\n"))
		Expect(text).To(ContainSubstring("✨ Features\n----------\n"))
		Expect(text).To(ContainSubstring("  * add login (aaaaaaa) by Alice on 2024-01-15\n"))
		Expect(text).To(ContainSubstring("      R b.go (+0/-0) from a.go\n"))
		Expect(text).To(ContainSubstring("Commits: 3 (+13 / -4), 2 contributors"))
		Expect(text).NotTo(ContainSubstring("**"))
		Expect(text).NotTo(ContainSubstring("##"))
		Expect(text).NotTo(ContainSubstring("]("))
	})

	It("falls back to the author email like Markdown does", func() {
		groups := git.Classify([]models.CommitRecord{{
			SHA:     "dddddddddddddddddddddddddddddddddddddddd",
			Message: "fix: anonymous",
			Author:  models.Author{Email: "ghost@example.com", Date: day},
		}})
		doc, err := render.Build(groups, render.Options{Repository: "org/repo", GeneratedAt: day})
		Expect(err).NotTo(HaveOccurred())

		Expect(doc.Text).To(ContainSubstring("  * anonymous (ddddddd) by ghost@example.com on 2024-01-15\n"))
		Expect(doc.Markdown).To(ContainSubstring("  - _by ghost@example.com on 2024-01-15_\n"))
	})
})

var _ = Describe("HTML", func() {
	It("wraps the converted Markdown in a styled page", func() {
		page := build(day).HTML

		Expect(page).To(HavePrefix("<!DOCTYPE html>"))
		Expect(page).To(ContainSubstring("<title>Changelog - org/repo</title>"))
		Expect(page).To(ContainSubstring("<style>"))
		Expect(page).To(ContainSubstring(`<a href="https://github.com/org/repo/commit/aaaaaaa"><code>aaaaaaa</code></a>`))
		Expect(page).To(ContainSubstring("<strong>add login</strong>"))
		Expect(page).To(HaveSuffix("</html>\n"))
	})

	It("escapes the title", func() {
		page, err := render.HTML(models.Metadata{Repository: "<script>"}, "text")
		Expect(err).NotTo(HaveOccurred())
		Expect(page).To(ContainSubstring("<title>Changelog - &lt;script&gt;</title>"))
	})
})

var _ = Describe("JSON", func() {
	It("carries metadata, stats and groups only", func() {
		doc := build(day)
		data, err := render.JSON(doc)
		Expect(err).NotTo(HaveOccurred())

		var decoded map[string]any
		Expect(json.Unmarshal(data, &decoded)).To(Succeed())
		Expect(decoded).To(HaveKey("metadata"))
		Expect(decoded).To(HaveKey("stats"))
		Expect(decoded).To(HaveKey("groups"))
		Expect(decoded).NotTo(HaveKey("markdown"))
		Expect(decoded).NotTo(HaveKey("html"))
		Expect(string(data)).NotTo(ContainSubstring("# Changelog"))

		var typed render.JSONDocument
		Expect(json.Unmarshal(data, &typed)).To(Succeed())
		Expect(typed.Groups).To(HaveLen(3))
		Expect(typed.Groups[0].Category).To(Equal(models.CategoryFeatures))
		Expect(typed.Stats.TotalCommits).To(Equal(3))
	})

	It("renders commits without file details with an empty files list", func() {
		groups := git.Classify([]models.CommitRecord{{
			SHA:     "eeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeee",
			Message: "chore: bump",
			Author:  models.Author{Name: "Eve", Date: day},
		}})
		doc, err := render.Build(groups, render.Options{Repository: "org/repo", GeneratedAt: day})
		Expect(err).NotTo(HaveOccurred())
		data, err := render.JSON(doc)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(ContainSubstring(`"files": []`))
	})

	It("renders an empty group list as an array", func() {
		data, err := render.JSON(&models.ChangelogDocument{})
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(ContainSubstring(`"groups": []`))
	})
})
