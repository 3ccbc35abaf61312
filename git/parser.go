package git

import (
	"regexp"
	"strings"

	"github.com/flanksource/changelog/models"
)

// CommitType is a conventional-commit type token.
type CommitType string

const (
	CommitTypeFeat     CommitType = "feat"
	CommitTypeFix      CommitType = "fix"
	CommitTypePerf     CommitType = "perf"
	CommitTypeDocs     CommitType = "docs"
	CommitTypeStyle    CommitType = "style"
	CommitTypeRefactor CommitType = "refactor"
	CommitTypeTest     CommitType = "test"
	CommitTypeBuild    CommitType = "build"
	CommitTypeCi       CommitType = "ci"
	CommitTypeChore    CommitType = "chore"
	CommitTypeUnknown  CommitType = ""
)

var typeCategories = map[CommitType]models.Category{
	CommitTypeFeat:     models.CategoryFeatures,
	CommitTypeFix:      models.CategoryFixes,
	CommitTypePerf:     models.CategoryPerformance,
	CommitTypeDocs:     models.CategoryDocs,
	CommitTypeStyle:    models.CategoryStyle,
	CommitTypeRefactor: models.CategoryRefactor,
	CommitTypeTest:     models.CategoryTest,
	CommitTypeBuild:    models.CategoryBuild,
	CommitTypeCi:       models.CategoryCI,
	CommitTypeChore:    models.CategoryChore,
}

// Category maps the type to its bucket, CategoryOther for anything outside the vocabulary.
func (ct CommitType) Category() models.Category {
	if c, ok := typeCategories[ct]; ok {
		return c
	}
	return models.CategoryOther
}

// matched against the lower-cased message
var commitTypeScopeRegex = regexp.MustCompile(`^(feat|fix|perf|docs|style|refactor|test|build|ci|chore)(\([^)]*\))?(!)?:\s*(.*)`)

// strips any conventional prefix, not only the known vocabulary, for display
var prefixRegex = regexp.MustCompile(`^\w+(\([^)]*\))?!?:\s*`)

// Conventional is the parsed header of a conventional commit.
type Conventional struct {
	Type     CommitType
	Scope    string
	Breaking bool
	Subject  string
}

// ParseConventional parses the first line of message (e.g. "feat(api)!: drop v1").
// Type and scope are lower-cased; Subject keeps the original casing.
func ParseConventional(message string) Conventional {
	subject, _, _ := strings.Cut(message, "\n")
	subject = strings.TrimSpace(subject)

	matches := commitTypeScopeRegex.FindStringSubmatch(strings.ToLower(subject))
	if len(matches) != 5 {
		return Conventional{Subject: subject}
	}
	return Conventional{
		Type:     CommitType(matches[1]),
		Scope:    strings.Trim(matches[2], "()"),
		Breaking: matches[3] == "!" || IsBreaking(message),
		Subject:  StripPrefix(subject),
	}
}

// IsBreaking reports whether a message carries a breaking-change marker,
// either the "BREAKING CHANGE" phrase anywhere or "!:" after the type.
func IsBreaking(message string) bool {
	lower := strings.ToLower(message)
	return strings.Contains(lower, "breaking change") || strings.Contains(lower, "!:")
}

// StripPrefix removes a leading "type(scope)!: " from a subject line.
func StripPrefix(subject string) string {
	stripped := prefixRegex.ReplaceAllString(subject, "")
	if strings.TrimSpace(stripped) == "" {
		return subject
	}
	return stripped
}

var refRegex = regexp.MustCompile(`#(\d+)`)
var refWithParansRegex = regexp.MustCompile(`\(#(\d+)\)`)

// ParseReference splits an issue/PR reference off a subject line ("subject (#1234)" -> "subject", "1234").
func ParseReference(subject string) (string, string) {
	var ref string
	matches := refWithParansRegex.FindStringSubmatch(subject)
	if len(matches) == 2 {
		ref = matches[1]
		subject = strings.ReplaceAll(subject, matches[0], "")
	} else {
		matches = refRegex.FindStringSubmatch(subject)
		if len(matches) == 2 {
			ref = matches[1]
			subject = strings.ReplaceAll(subject, matches[0], "")
		}
	}

	return strings.TrimSpace(subject), strings.TrimSpace(ref)
}
