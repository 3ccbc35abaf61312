package git

import (
	"strings"

	"github.com/flanksource/changelog/models"
)

// ParsePatch splits a multi-file git patch ("diff --git a/x b/x" sections) into
// one FileChange per file, carrying status, rename source, line counts and the
// hunk text of that file.
func ParsePatch(patch string) []models.FileChange {
	if patch == "" {
		return nil
	}

	var changes []models.FileChange
	var current *models.FileChange
	var hunk strings.Builder

	flush := func() {
		if current == nil {
			return
		}
		current.Patch = strings.TrimRight(hunk.String(), "\n")
		current.Additions, current.Deletions = CountPatchLines(current.Patch)
		current.Changes = current.Additions + current.Deletions
		changes = append(changes, *current)
		current = nil
		hunk.Reset()
	}

	inHunk := false
	for _, line := range strings.Split(patch, "\n") {
		switch {
		case strings.HasPrefix(line, "diff --git"):
			flush()
			current = &models.FileChange{
				Filename: diffTarget(line),
				Status:   models.FileStatusModified,
			}
			inHunk = false
		case current == nil:
			continue
		case inHunk:
			hunk.WriteString(line)
			hunk.WriteByte('\n')
		case strings.HasPrefix(line, "new file"):
			current.Status = models.FileStatusAdded
		case strings.HasPrefix(line, "deleted file"):
			current.Status = models.FileStatusRemoved
		case strings.HasPrefix(line, "rename from "):
			current.Status = models.FileStatusRenamed
			current.PreviousFilename = strings.TrimPrefix(line, "rename from ")
		case strings.HasPrefix(line, "rename to "):
			current.Filename = strings.TrimPrefix(line, "rename to ")
		case strings.HasPrefix(line, "@@"):
			inHunk = true
			hunk.WriteString(line)
			hunk.WriteByte('\n')
		}
	}
	flush()

	return changes
}

// CountPatchLines counts added and deleted lines in the hunks of a unified diff.
// File headers ("+++", "---") are only skipped before the first "@@"; inside a
// hunk such lines are content.
func CountPatchLines(patch string) (adds, dels int) {
	inHunk := false
	for _, line := range strings.Split(patch, "\n") {
		switch {
		case strings.HasPrefix(line, "@@"):
			inHunk = true
		case strings.HasPrefix(line, "diff --git"):
			inHunk = false
		case !inHunk && (strings.HasPrefix(line, "+++") || strings.HasPrefix(line, "---")):
		case strings.HasPrefix(line, "+"):
			adds++
		case strings.HasPrefix(line, "-"):
			dels++
		}
	}
	return adds, dels
}

// Extract file path from "diff --git a/<path> b/<path>", quoted or not.
func diffTarget(line string) string {
	if idx := strings.Index(line, ` "b/`); idx != -1 {
		path := line[idx+4:]
		if endQuote := strings.Index(path, `"`); endQuote != -1 {
			return path[:endQuote]
		}
		return path
	}
	if idx := strings.Index(line, " b/"); idx != -1 {
		return line[idx+3:]
	}
	return ""
}
