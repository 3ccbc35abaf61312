package render

import (
	"encoding/json"

	"github.com/flanksource/changelog/models"
)

// JSONDocument is the machine readable body: metadata, stats and groups,
// no rendered Markdown or HTML.
type JSONDocument struct {
	Metadata models.Metadata      `json:"metadata"`
	Stats    models.DocumentStats `json:"stats"`
	Groups   []models.CommitGroup `json:"groups"`
}

func NewJSONDocument(doc *models.ChangelogDocument) JSONDocument {
	groups := doc.Groups
	if groups == nil {
		groups = []models.CommitGroup{}
	}
	return JSONDocument{Metadata: doc.Metadata, Stats: doc.Stats, Groups: groups}
}

func JSON(doc *models.ChangelogDocument) ([]byte, error) {
	return json.MarshalIndent(NewJSONDocument(doc), "", "  ")
}
