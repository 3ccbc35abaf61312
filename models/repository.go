package models

import (
	"strings"
	"time"

	"github.com/flanksource/clicky"
	"github.com/flanksource/clicky/api"
	"github.com/flanksource/clicky/api/icons"
)

// Repository is an entry returned by a provider's repository listing.
type Repository struct {
	ID            string    `json:"id"`
	Provider      string    `json:"provider"`
	FullName      string    `json:"full_name"`
	Name          string    `json:"name"`
	Owner         string    `json:"owner"`
	Description   string    `json:"description,omitempty"`
	DefaultBranch string    `json:"default_branch,omitempty"`
	Private       bool      `json:"private"`
	URL           string    `json:"url"`
	UpdatedAt     time.Time `json:"updated_at,omitempty"`
}

func (r Repository) Pretty() api.Text {
	t := clicky.Text(r.FullName, "font-bold")
	if r.Private {
		t = t.Space().Add(icons.Lock)
	}
	if r.DefaultBranch != "" {
		t = t.Append(" ("+r.DefaultBranch+")", "text-cyan-600")
	}
	if r.Description != "" {
		t = t.Append(" "+r.Description, "text-muted")
	}
	return t
}

type RefKind string

const (
	RefKindTag    RefKind = "tag"
	RefKindBranch RefKind = "branch"
)

// Ref is a named point in history.
type Ref struct {
	Name string  `json:"name"`
	Kind RefKind `json:"kind"`
	SHA  string  `json:"sha"`
}

func (r Ref) Pretty() api.Text {
	return clicky.Text(string(r.Kind)+" ", "text-muted").
		Append(r.Name, "font-mono").
		Append(" "+shortSHA(r.SHA), "text-yellow-600")
}

// RateLimit mirrors the rate-limit headers a provider returned on its last response.
type RateLimit struct {
	Limit     int       `json:"limit,omitempty"`
	Remaining int       `json:"remaining,omitempty"`
	Reset     time.Time `json:"reset,omitempty"`
}

// TokenHealth is the outcome of validating an access token against a provider.
type TokenHealth struct {
	Provider  string    `json:"provider"`
	Valid     bool      `json:"valid"`
	Login     string    `json:"login,omitempty"`
	Scopes    []string  `json:"scopes,omitempty"`
	Message   string    `json:"message,omitempty"`
	RateLimit RateLimit `json:"rate_limit"`
	CheckedAt time.Time `json:"checked_at"`
}

func (h TokenHealth) Pretty() api.Text {
	t := clicky.Text(h.Provider+" ", "font-bold")
	if h.Valid {
		t = t.Add(icons.Check.WithStyle("text-green-600")).Append(" "+h.Login, "text-blue-600")
	} else {
		t = t.Add(icons.Cross.WithStyle("text-red-600")).Append(" "+h.Message, "text-red-600")
	}
	if len(h.Scopes) > 0 {
		t = t.Append(" scopes: ", "text-muted").Append(strings.Join(h.Scopes, ","), "font-mono")
	}
	return t
}

func shortSHA(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}
