package export

import (
	"fmt"
	"strings"

	"github.com/gosimple/slug"

	"github.com/flanksource/changelog/models"
	"github.com/flanksource/changelog/render"
)

type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
	FormatHTML     Format = "html"
	FormatText     Format = "text"
)

// Spec is the MIME type and file extension served for a format.
type Spec struct {
	Format    Format `json:"format"`
	MIME      string `json:"mime"`
	Extension string `json:"extension"`
}

var specs = []Spec{
	{Format: FormatMarkdown, MIME: "text/markdown", Extension: "md"},
	{Format: FormatJSON, MIME: "application/json", Extension: "json"},
	{Format: FormatHTML, MIME: "text/html", Extension: "html"},
	{Format: FormatText, MIME: "text/plain", Extension: "txt"},
}

// Formats lists the supported formats in a stable order.
func Formats() []Spec {
	return append([]Spec(nil), specs...)
}

func Names() []string {
	names := make([]string, len(specs))
	for i, s := range specs {
		names[i] = string(s.Format)
	}
	return names
}

// Negotiate maps a format token to its Spec. An empty token means markdown.
func Negotiate(format string) (Spec, error) {
	token := strings.ToLower(strings.TrimSpace(format))
	if token == "" {
		token = string(FormatMarkdown)
	}
	for _, s := range specs {
		if string(s.Format) == token {
			return s, nil
		}
	}
	return Spec{}, &models.InvalidFormatError{Format: format, Valid: Names()}
}

// Body returns the document rendered in the negotiated format.
func Body(doc *models.ChangelogDocument, spec Spec) ([]byte, error) {
	switch spec.Format {
	case FormatMarkdown:
		return []byte(doc.Markdown), nil
	case FormatHTML:
		return []byte(doc.HTML), nil
	case FormatText:
		return []byte(doc.Text), nil
	case FormatJSON:
		return render.JSON(doc)
	default:
		return nil, &models.InvalidFormatError{Format: string(spec.Format), Valid: Names()}
	}
}

// Filename builds a download name such as "changelog-org-repo-v1-0-0-v1-1-0.md".
func Filename(meta models.Metadata, spec Spec) string {
	parts := []string{"changelog", meta.Repository}
	if meta.FromRef != "" {
		parts = append(parts, meta.FromRef)
	}
	if meta.ToRef != "" {
		parts = append(parts, meta.ToRef)
	}
	return fmt.Sprintf("%s.%s", slug.Make(strings.Join(parts, " ")), spec.Extension)
}

// ContentType adds a charset to textual MIME types.
func (s Spec) ContentType() string {
	return s.MIME + "; charset=utf-8"
}
