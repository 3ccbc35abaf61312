package render

import (
	"fmt"
	"strings"

	"github.com/flanksource/changelog/git"
	"github.com/flanksource/changelog/models"
)

const (
	dateFormat      = "2006-01-02"
	timestampFormat = "2006-01-02 15:04:05 MST"
)

var statusGlyphs = map[models.FileStatus]string{
	models.FileStatusAdded:    "🟢",
	models.FileStatusModified: "🔵",
	models.FileStatusRemoved:  "🔴",
	models.FileStatusRenamed:  "🟡",
}

func statusGlyph(status models.FileStatus) string {
	if g, ok := statusGlyphs[status]; ok {
		return g
	}
	return "⚪"
}

// Markdown renders the rule-based changelog. Only the "Generated" line
// depends on anything but the groups and refs.
func Markdown(doc *models.ChangelogDocument) string {
	var sb strings.Builder
	meta := doc.Metadata

	sb.WriteString("# Changelog\n\n")
	fmt.Fprintf(&sb, "**Repository:** %s\n\n", meta.Repository)
	if r := meta.RangeString(); r != "" {
		fmt.Fprintf(&sb, "**Range:** `%s`\n\n", r)
	}
	fmt.Fprintf(&sb, "**Generated:** %s\n\n", meta.GeneratedAt.UTC().Format(timestampFormat))
	sb.WriteString("---\n")

	for _, group := range doc.Groups {
		fmt.Fprintf(&sb, "\n## %s\n\n", group.Label)
		for _, commit := range group.Commits {
			writeMarkdownCommit(&sb, commit)
		}
	}
	return sb.String()
}

// authorName is the display name of an author, falling back to the email.
func authorName(a models.Author) string {
	if a.Name != "" {
		return a.Name
	}
	return a.Email
}

func writeMarkdownCommit(sb *strings.Builder, commit models.CommitRecord) {
	subject := git.StripPrefix(commit.Subject())
	sha := "`" + commit.ShortSHA() + "`"
	if commit.URL != "" {
		sha = "[" + sha + "](" + commit.URL + ")"
	}
	fmt.Fprintf(sb, "- **%s** (%s)\n", subject, sha)

	author := authorName(commit.Author)
	if !commit.Author.Date.IsZero() {
		fmt.Fprintf(sb, "  - _by %s on %s_\n", author, commit.Author.Date.UTC().Format(dateFormat))
	} else if author != "" {
		fmt.Fprintf(sb, "  - _by %s_\n", author)
	}

	for _, file := range commit.Files {
		fmt.Fprintf(sb, "  - %s `%s` (+%d / -%d)", statusGlyph(file.Status), file.Filename, file.Additions, file.Deletions)
		if file.PreviousFilename != "" {
			fmt.Fprintf(sb, " ← `%s`", file.PreviousFilename)
		}
		sb.WriteString("\n")
	}
}
