package github

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/flanksource/commons/http"
	"github.com/flanksource/commons/logger"

	"github.com/flanksource/changelog/models"
)

const (
	Provider       = "github"
	DefaultBaseURL = "https://api.github.com"
	pageSize       = 100
)

type Options struct {
	BaseURL string // defaults to https://api.github.com
	Token   string // optional; falls back to GITHUB_TOKEN then GH_TOKEN env
}

func (o Options) token() (string, error) {
	if o.Token != "" {
		return o.Token, nil
	}
	if t := os.Getenv("GITHUB_TOKEN"); t != "" {
		return t, nil
	}
	if t := os.Getenv("GH_TOKEN"); t != "" {
		return t, nil
	}
	return "", fmt.Errorf("no GitHub token: set Options.Token, GITHUB_TOKEN, or GH_TOKEN")
}

var repoPatterns = []*regexp.Regexp{
	regexp.MustCompile(`github\.com[:/]([^/]+/[^/.]+?)(?:\.git)?$`),
}

func parseGitHubRepo(remoteURL string) (string, error) {
	for _, re := range repoPatterns {
		if m := re.FindStringSubmatch(remoteURL); len(m) >= 2 {
			return m[1], nil
		}
	}
	return "", fmt.Errorf("cannot parse GitHub owner/repo from %q", remoteURL)
}

var ownerRepo = regexp.MustCompile(`^[\w.-]+/[\w.-]+$`)

// NormalizeRepo accepts "owner/repo" or any GitHub remote URL and returns "owner/repo".
func NormalizeRepo(repo string) (string, error) {
	repo = strings.TrimSpace(repo)
	if ownerRepo.MatchString(repo) {
		return strings.TrimSuffix(repo, ".git"), nil
	}
	return parseGitHubRepo(repo)
}

// Client talks to the GitHub REST API with a caller supplied token.
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
	return &Client{http: newClient(base, token)}, nil
}

func newClient(baseURL, token string) *http.Client {
	return http.NewClient().
		BaseURL(strings.TrimRight(baseURL, "/")).
		Header("Authorization", "Bearer "+token).
		Header("Accept", "application/vnd.github+json").
		Header("X-GitHub-Api-Version", "2022-11-28")
}

type restError struct {
	Message string `json:"message"`
}

// get issues a GET and decodes a 2xx body into out. Transport failures become
// NetworkError, any other status a ProviderError.
func (c *Client) get(ctx context.Context, path string, query url.Values, out any) (*http.Response, error) {
	if len(query) > 0 {
		path += "?" + query.Encode()
	}
	logger.Tracef("github: GET %s", path)
	resp, err := c.http.R(ctx).Get(path)
	if err != nil {
		return nil, &models.NetworkError{Op: "GET " + path, Err: err}
	}
	if !resp.IsOK() {
		return resp, providerError(resp)
	}
	if rl := rateLimit(resp); !rl.IsZero() {
		logger.Debugf("github: rate limit %d/%d", rl.Remaining, rl.Limit)
	}
	if out != nil {
		if err := resp.Into(out); err != nil {
			return resp, fmt.Errorf("parse %s response: %w", path, err)
		}
	}
	return resp, nil
}

func providerError(resp *http.Response) error {
	body, _ := resp.AsString()
	message := strings.TrimSpace(body)
	var parsed restError
	if err := json.Unmarshal([]byte(body), &parsed); err == nil && parsed.Message != "" {
		message = parsed.Message
	}
	if message == "" {
		message = resp.Status
	}
	return &models.ProviderError{Provider: Provider, Status: resp.StatusCode, Message: message}
}

func rateLimit(resp *http.Response) models.RateLimit {
	return models.ParseRateLimit(resp.Header, "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset")
}
