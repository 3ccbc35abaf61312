package git_test

import (
	"fmt"
	"math/rand"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/flanksource/changelog/git"
	"github.com/flanksource/changelog/models"
)

func commits(messages ...string) []models.CommitRecord {
	var out []models.CommitRecord
	for i, msg := range messages {
		out = append(out, models.CommitRecord{
			SHA:     fmt.Sprintf("%040d", i+1),
			Message: msg,
			Author: models.Author{
				Name:  "Dev",
				Email: "dev@example.com",
				Date:  time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC).Add(-time.Duration(i) * time.Hour),
			},
		})
	}
	return out
}

func categories(groups []models.CommitGroup) []models.Category {
	var out []models.Category
	for _, g := range groups {
		out = append(out, g.Category)
	}
	return out
}

func shas(groups []models.CommitGroup) []string {
	var out []string
	for _, g := range groups {
		for _, c := range g.Commits {
			out = append(out, c.SHA)
		}
	}
	return out
}

var _ = Describe("Classify", func() {
	It("groups conventional commits in priority order", func() {
		groups := git.Classify(commits("feat: add login", "fix: crash on null", "chore: bump deps", "random message"))

		Expect(groups).To(HaveLen(4))
		Expect(categories(groups)).To(Equal([]models.Category{
			models.CategoryFeatures,
			models.CategoryFixes,
			models.CategoryChore,
			models.CategoryOther,
		}))
		Expect(groups[0].Label).To(Equal("✨ Features"))
		Expect(groups[1].Label).To(Equal("🐛 Bug Fixes"))
		Expect(groups[2].Label).To(Equal("🔧 Chores"))
		Expect(groups[3].Label).To(Equal("📌 Other Changes"))
		for _, g := range groups {
			Expect(g.Commits).To(HaveLen(1))
		}
	})

	It("places breaking changes only in the breaking bucket", func() {
		groups := git.Classify(commits("feat!: remove old API\n\nBREAKING CHANGE: old API removed"))

		Expect(groups).To(HaveLen(1))
		Expect(groups[0].Category).To(Equal(models.CategoryBreaking))
		Expect(groups[0].Label).To(Equal("🚨 Breaking Changes"))
	})

	It("prefers the BREAKING CHANGE footer over a matching type", func() {
		groups := git.Classify(commits("feat: new config format\n\nBREAKING CHANGE: config v1 is gone", "feat: other"))

		Expect(categories(groups)).To(Equal([]models.Category{models.CategoryBreaking, models.CategoryFeatures}))
		Expect(groups[1].Commits).To(HaveLen(1))
		Expect(groups[1].Commits[0].Message).To(Equal("feat: other"))
	})

	It("accepts scopes and the ! marker", func() {
		Expect(git.CategoryOf(commits("fix(api): handle nil")[0])).To(Equal(models.CategoryFixes))
		Expect(git.CategoryOf(commits("refactor(core)!: rename types")[0])).To(Equal(models.CategoryBreaking))
		Expect(git.CategoryOf(commits("PERF: faster cache")[0])).To(Equal(models.CategoryPerformance))
	})

	It("falls back to other for unknown types and malformed prefixes", func() {
		Expect(git.CategoryOf(commits("feature: nope")[0])).To(Equal(models.CategoryOther))
		Expect(git.CategoryOf(commits("revert: undo")[0])).To(Equal(models.CategoryOther))
		Expect(git.CategoryOf(commits("update readme feat: later")[0])).To(Equal(models.CategoryOther))
	})

	It("maps every type token to its bucket", func() {
		input := commits(
			"chore: c", "ci: c", "build: b", "test: t", "refactor: r",
			"style: s", "docs: d", "perf: p", "fix: f", "feat: f", "misc",
		)
		groups := git.Classify(input)

		Expect(categories(groups)).To(Equal([]models.Category{
			models.CategoryFeatures,
			models.CategoryFixes,
			models.CategoryPerformance,
			models.CategoryDocs,
			models.CategoryStyle,
			models.CategoryRefactor,
			models.CategoryTest,
			models.CategoryBuild,
			models.CategoryCI,
			models.CategoryChore,
			models.CategoryOther,
		}))
	})

	It("keeps every commit exactly once and preserves input order within a group", func() {
		input := commits(
			"fix: one", "feat: two", "fix: three", "nothing", "feat!: four",
			"docs: five", "fix: six", "chore: seven", "BREAKING CHANGE in body", "feat: eight",
		)
		groups := git.Classify(input)

		var inputSHAs []string
		for _, c := range input {
			inputSHAs = append(inputSHAs, c.SHA)
		}
		Expect(shas(groups)).To(ConsistOf(inputSHAs))
		Expect(shas(groups)).To(HaveLen(len(input)))

		for _, g := range groups {
			if g.Category == models.CategoryFixes {
				Expect(g.Commits[0].Message).To(Equal("fix: one"))
				Expect(g.Commits[1].Message).To(Equal("fix: three"))
				Expect(g.Commits[2].Message).To(Equal("fix: six"))
			}
		}
	})

	It("emits groups in the same order regardless of input order", func() {
		input := commits("chore: a", "misc", "fix: b", "feat: c", "feat!: d", "ci: e", "docs: f")
		expected := categories(git.Classify(input))

		r := rand.New(rand.NewSource(42))
		for i := 0; i < 20; i++ {
			shuffled := append([]models.CommitRecord(nil), input...)
			r.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
			Expect(categories(git.Classify(shuffled))).To(Equal(expected))
		}
	})

	It("returns no groups for no commits", func() {
		Expect(git.Classify(nil)).To(BeEmpty())
	})
})

var _ = Describe("ParseConventional", func() {
	It("splits type, scope and subject", func() {
		c := git.ParseConventional("feat(API): Add Endpoint\n\nbody")

		Expect(c.Type).To(Equal(git.CommitTypeFeat))
		Expect(c.Scope).To(Equal("api"))
		Expect(c.Breaking).To(BeFalse())
		Expect(c.Subject).To(Equal("Add Endpoint"))
	})

	It("flags the ! marker", func() {
		c := git.ParseConventional("fix!: drop flag")

		Expect(c.Type).To(Equal(git.CommitTypeFix))
		Expect(c.Breaking).To(BeTrue())
		Expect(c.Subject).To(Equal("drop flag"))
	})

	It("leaves non conventional subjects alone", func() {
		c := git.ParseConventional("Merge pull request #12 from org/branch")

		Expect(c.Type).To(Equal(git.CommitTypeUnknown))
		Expect(c.Subject).To(Equal("Merge pull request #12 from org/branch"))
	})
})

var _ = Describe("StripPrefix", func() {
	DescribeTable("removes conventional prefixes",
		func(in, out string) {
			Expect(git.StripPrefix(in)).To(Equal(out))
		},
		Entry("plain type", "feat: add login", "add login"),
		Entry("scoped", "fix(ui): button", "button"),
		Entry("breaking", "refactor(core)!: rename", "rename"),
		Entry("unknown type", "wip: stuff", "stuff"),
		Entry("no prefix", "random message", "random message"),
		Entry("prefix only", "feat:", "feat:"),
	)
})

var _ = Describe("ParseReference", func() {
	It("extracts a parenthesised reference", func() {
		subject, ref := git.ParseReference("add login (#42)")
		Expect(subject).To(Equal("add login"))
		Expect(ref).To(Equal("42"))
	})

	It("extracts a bare reference", func() {
		subject, ref := git.ParseReference("closes #7 crash")
		Expect(subject).To(Equal("closes  crash"))
		Expect(ref).To(Equal("7"))
	})
})
