package gitlab

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/flanksource/commons/http"
	"github.com/flanksource/commons/logger"

	"github.com/flanksource/changelog/models"
)

const (
	Provider       = "gitlab"
	DefaultBaseURL = "https://gitlab.com/api/v4"
	pageSize       = "100"
)

type Options struct {
	BaseURL string // defaults to https://gitlab.com/api/v4
	Token   string // optional; falls back to GITLAB_TOKEN env
}

func (o Options) token() (string, error) {
	if o.Token != "" {
		return o.Token, nil
	}
	if t := os.Getenv("GITLAB_TOKEN"); t != "" {
		return t, nil
	}
	return "", fmt.Errorf("no GitLab token: set Options.Token or GITLAB_TOKEN")
}

// Client talks to the GitLab v4 REST API.
type Client struct {
	http *http.Client
}

func NewClient(opts Options) (*Client, error) {
	token, err := opts.token()
	if err != nil {
		return nil, err
	}
	base := opts.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	return &Client{
		http: http.NewClient().
			BaseURL(strings.TrimRight(base, "/")).
			Header("PRIVATE-TOKEN", token).
			Header("Accept", "application/json"),
	}, nil
}

// projectPath turns a numeric id or "group/sub/project" into the :id path segment.
func projectPath(project string) string {
	return "/projects/" + url.PathEscape(strings.Trim(project, "/"))
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) (*http.Response, error) {
	if len(query) > 0 {
		path += "?" + query.Encode()
	}
	logger.Tracef("gitlab: GET %s", path)
	resp, err := c.http.R(ctx).Get(path)
	if err != nil {
		return nil, &models.NetworkError{Op: "GET " + path, Err: err}
	}
	if !resp.IsOK() {
		return resp, providerError(resp)
	}
	if rl := rateLimit(resp); !rl.IsZero() {
		logger.Debugf("gitlab: rate limit %d/%d", rl.Remaining, rl.Limit)
	}
	if out != nil {
		if err := resp.Into(out); err != nil {
			return resp, fmt.Errorf("parse %s response: %w", path, err)
		}
	}
	return resp, nil
}

// GitLab errors carry either {"message": "..."} or {"error": "..."}; message
// is sometimes an object of field errors.
type restError struct {
	Message json.RawMessage `json:"message"`
	Error   string          `json:"error"`
}

func providerError(resp *http.Response) error {
	body, _ := resp.AsString()
	message := strings.TrimSpace(body)

	var parsed restError
	if err := json.Unmarshal([]byte(body), &parsed); err == nil {
		var s string
		switch {
		case len(parsed.Message) > 0 && json.Unmarshal(parsed.Message, &s) == nil:
			message = s
		case len(parsed.Message) > 0:
			message = string(parsed.Message)
		case parsed.Error != "":
			message = parsed.Error
		}
	}
	if message == "" {
		message = resp.Status
	}
	return &models.ProviderError{Provider: Provider, Status: resp.StatusCode, Message: message}
}

func rateLimit(resp *http.Response) models.RateLimit {
	return models.ParseRateLimit(resp.Header, "RateLimit-Limit", "RateLimit-Remaining", "RateLimit-Reset")
}
