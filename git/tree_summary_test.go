package git_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/flanksource/changelog/git"
	"github.com/flanksource/changelog/models"
)

func file(name string, adds, dels int) models.FileChange {
	return models.FileChange{Filename: name, Status: models.FileStatusModified, Additions: adds, Deletions: dels, Changes: adds + dels}
}

func paths(nodes []git.PathSummary) []string {
	var out []string
	for _, n := range nodes {
		out = append(out, n.Path)
	}
	return out
}

var _ = Describe("Count", func() {
	It("merges counts and categories", func() {
		c1 := git.Count{Adds: 100, Dels: 50, Commits: 5, Files: 3, Categories: map[models.Category]int{models.CategoryFeatures: 3}}
		c2 := git.Count{Adds: 200, Dels: 75, Commits: 3, Files: 2, Categories: map[models.Category]int{models.CategoryFeatures: 1, models.CategoryFixes: 2}}

		c1.Add(c2)

		Expect(c1.Adds).To(Equal(300))
		Expect(c1.Dels).To(Equal(125))
		Expect(c1.Commits).To(Equal(8))
		Expect(c1.Files).To(Equal(5))
		Expect(c1.Categories).To(Equal(map[models.Category]int{models.CategoryFeatures: 4, models.CategoryFixes: 2}))
		Expect(c1.Total()).To(Equal(425))
	})

	It("initialises categories on an empty count", func() {
		var c git.Count
		c.Add(git.Count{Adds: 1})
		Expect(c.Categories).NotTo(BeNil())
		Expect(c.Adds).To(Equal(1))
	})
})

var _ = Describe("SummarizePaths", func() {
	groups := []models.CommitGroup{
		{Category: models.CategoryFeatures, Commits: []models.CommitRecord{
			{SHA: "a1", Files: []models.FileChange{file("cmd/app/main.go", 10, 2), file("cmd/app/util.go", 5, 0)}},
		}},
		{Category: models.CategoryFixes, Commits: []models.CommitRecord{
			{SHA: "b2", Files: []models.FileChange{file("cmd/app/main.go", 1, 1)}},
			{SHA: "c3", Files: []models.FileChange{file("README.md", 3, 0)}},
		}},
		{Category: models.CategoryDocs, Commits: []models.CommitRecord{
			{SHA: "d4"},
		}},
	}

	It("rolls counts up to the root", func() {
		root := git.SummarizePaths(groups)

		Expect(root.Adds).To(Equal(19))
		Expect(root.Dels).To(Equal(3))
		Expect(root.Commits).To(Equal(3))
		Expect(root.Files).To(Equal(3))
		Expect(root.Categories).To(Equal(map[models.Category]int{models.CategoryFeatures: 1, models.CategoryFixes: 2}))
	})

	It("collapses single directory chains and sorts by volume", func() {
		root := git.SummarizePaths(groups)

		Expect(paths(root.Children)).To(Equal([]string{"cmd/app", "README.md"}))

		app := root.Children[0]
		Expect(app.Commits).To(Equal(2), "a commit touching two files counts once")
		Expect(app.Files).To(Equal(2))
		Expect(app.Adds).To(Equal(16))
		Expect(paths(app.Children)).To(Equal([]string{"main.go", "util.go"}))

		main := app.Children[0]
		Expect(main.Commits).To(Equal(2))
		Expect(main.Total()).To(Equal(14))
		Expect(main.Children).To(BeEmpty())
	})

	It("returns an empty tree when no commit has files", func() {
		root := git.SummarizePaths([]models.CommitGroup{{Category: models.CategoryOther, Commits: []models.CommitRecord{{SHA: "x"}}}})
		Expect(root.Children).To(BeEmpty())
		Expect(root.Total()).To(BeZero())
	})

	It("exposes children as tree nodes", func() {
		root := git.SummarizePaths(groups)
		Expect(root.GetChildren()).To(HaveLen(2))
		Expect(root.Pretty().String()).To(ContainSubstring("+19"))
	})
})
