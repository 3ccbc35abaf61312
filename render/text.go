package render

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/flanksource/changelog/git"
	"github.com/flanksource/changelog/models"
)

var textGlyphs = map[models.FileStatus]string{
	models.FileStatusAdded:    "A",
	models.FileStatusModified: "M",
	models.FileStatusRemoved:  "D",
	models.FileStatusRenamed:  "R",
}

func underline(title, char string) string {
	return title + "\n" + strings.Repeat(char, utf8.RuneCountInString(title)) + "\n"
}

// Text renders the changelog without any Markdown syntax.
func Text(doc *models.ChangelogDocument) string {
	var sb strings.Builder
	meta := doc.Metadata

	sb.WriteString(underline("Changelog", "="))
	fmt.Fprintf(&sb, "\nRepository: %s\n", meta.Repository)
	if r := meta.RangeString(); r != "" {
		fmt.Fprintf(&sb, "Range: %s\n", r)
	}
	fmt.Fprintf(&sb, "Generated: %s\n", meta.GeneratedAt.UTC().Format(timestampFormat))
	fmt.Fprintf(&sb, "Commits: %d (+%d / -%d), %d contributors\n",
		doc.Stats.TotalCommits, doc.Stats.Additions, doc.Stats.Deletions, doc.Stats.Contributors)

	for _, group := range doc.Groups {
		sb.WriteString("\n")
		sb.WriteString(underline(group.Label, "-"))
		for _, commit := range group.Commits {
			fmt.Fprintf(&sb, "  * %s (%s)", git.StripPrefix(commit.Subject()), commit.ShortSHA())
			if author := authorName(commit.Author); author != "" {
				fmt.Fprintf(&sb, " by %s", author)
			}
			if !commit.Author.Date.IsZero() {
				fmt.Fprintf(&sb, " on %s", commit.Author.Date.UTC().Format(dateFormat))
			}
			sb.WriteString("\n")
			for _, file := range commit.Files {
				glyph, ok := textGlyphs[file.Status]
				if !ok {
					glyph = "?"
				}
				fmt.Fprintf(&sb, "      %s %s (+%d/-%d)", glyph, file.Filename, file.Additions, file.Deletions)
				if file.PreviousFilename != "" {
					fmt.Fprintf(&sb, " from %s", file.PreviousFilename)
				}
				sb.WriteString("\n")
			}
		}
	}
	return sb.String()
}
