package narrative

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/flanksource/commons/logger"
	"github.com/flanksource/gomplate/v3"

	"github.com/flanksource/changelog/git"
	"github.com/flanksource/changelog/models"
	"github.com/flanksource/changelog/render"
)

//go:embed system.md
var systemPrompt string

//go:embed prompt.md
var userPrompt string

// maxPatchLines bounds the diff excerpt sent per file.
const maxPatchLines = 40

// Completer sends one system + user prompt pair to a text generation service.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Renderer writes the changelog body with a Completer instead of the fixed template.
type Renderer struct {
	completer Completer
}

func New(completer Completer) *Renderer {
	return &Renderer{completer: completer}
}

type Input struct {
	Repository string
	FromRef    string
	ToRef      string
	Groups     []models.CommitGroup
}

// Render returns the generated Markdown. Every failure is a
// *models.SummaryGenerationError; there is no fallback to the rule-based body.
func (r *Renderer) Render(ctx context.Context, in Input) (string, error) {
	if r == nil || r.completer == nil {
		return "", &models.SummaryGenerationError{Err: fmt.Errorf("no AI completer configured")}
	}

	prompt, err := Prompt(in)
	if err != nil {
		return "", &models.SummaryGenerationError{Err: err}
	}
	logger.Debugf("narrative: prompt for %s is %d bytes", in.Repository, len(prompt))

	reply, err := r.completer.Complete(ctx, systemPrompt, prompt)
	if err != nil {
		return "", &models.SummaryGenerationError{Err: err}
	}
	body := stripFences(reply)
	if body == "" {
		return "", &models.SummaryGenerationError{Err: fmt.Errorf("empty response")}
	}
	return body, nil
}

// Prompt renders the user prompt for in.
func Prompt(in Input) (string, error) {
	meta := models.Metadata{FromRef: in.FromRef, ToRef: in.ToRef}
	prompt, err := gomplate.RunTemplate(map[string]any{
		"repository": in.Repository,
		"range":      meta.RangeString(),
		"stats":      render.Stats(in.Groups),
		"groups":     promptGroups(in.Groups),
	}, gomplate.Template{Template: userPrompt})
	if err != nil {
		return "", fmt.Errorf("failed to render prompt template: %w", err)
	}
	return prompt, nil
}

func promptGroups(groups []models.CommitGroup) []map[string]any {
	out := make([]map[string]any, 0, len(groups))
	for _, g := range groups {
		commits := make([]map[string]any, 0, len(g.Commits))
		for _, c := range g.Commits {
			subject, ref := git.ParseReference(git.StripPrefix(c.Subject()))
			files := make([]map[string]any, 0, len(c.Files))
			for _, f := range c.Files {
				files = append(files, map[string]any{
					"filename":  f.Filename,
					"status":    string(f.Status),
					"additions": f.Additions,
					"deletions": f.Deletions,
					"patch":     excerpt(f.Patch, maxPatchLines),
				})
			}
			commits = append(commits, map[string]any{
				"sha":       c.ShortSHA(),
				"subject":   subject,
				"reference": ref,
				"author":    c.Author.Name,
				"files":     files,
			})
		}
		out = append(out, map[string]any{
			"label":   g.Label,
			"commits": commits,
		})
	}
	return out
}

func excerpt(patch string, maxLines int) string {
	lines := strings.Split(strings.TrimRight(patch, "\n"), "\n")
	if len(lines) <= maxLines {
		return strings.TrimRight(patch, "\n")
	}
	return strings.Join(lines[:maxLines], "\n") + fmt.Sprintf("\n... %d more lines", len(lines)-maxLines)
}

func stripFences(reply string) string {
	reply = strings.TrimSpace(reply)
	if strings.HasPrefix(reply, "```markdown") {
		reply = strings.TrimPrefix(reply, "```markdown")
	} else if strings.HasPrefix(reply, "```md") {
		reply = strings.TrimPrefix(reply, "```md")
	} else if strings.HasPrefix(reply, "```") {
		reply = strings.TrimPrefix(reply, "```")
	} else {
		return reply
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(reply), "```"))
}
