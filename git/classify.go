package git

import (
	"github.com/flanksource/changelog/models"
)

// CategoryOf returns the bucket a commit belongs to. Breaking-change markers
// take priority over the type prefix.
func CategoryOf(commit models.CommitRecord) models.Category {
	if IsBreaking(commit.Message) {
		return models.CategoryBreaking
	}
	return ParseConventional(commit.Message).Type.Category()
}

// Classify groups commits into buckets, emitted in models.Categories order.
// Empty buckets are omitted and commits keep their input order inside a bucket.
func Classify(commits []models.CommitRecord) []models.CommitGroup {
	buckets := make(map[models.Category][]models.CommitRecord, len(models.Categories))
	for _, commit := range commits {
		category := CategoryOf(commit)
		buckets[category] = append(buckets[category], commit)
	}

	var groups []models.CommitGroup
	for _, category := range models.Categories {
		members := buckets[category]
		if len(members) == 0 {
			continue
		}
		groups = append(groups, models.CommitGroup{
			Category: category,
			Label:    category.Label(),
			Commits:  members,
		})
	}
	return groups
}
