package server

import (
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/flanksource/changelog/cache"
	"github.com/flanksource/changelog/changelog"
	"github.com/flanksource/changelog/export"
	"github.com/flanksource/changelog/provider"
)

const maxRequestBody = 1 << 20

// Handler builds the routed, middleware wrapped API handler.
func Handler(svc *changelog.Service) http.Handler {
	h := &handlers{svc: svc}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealthz)
	mux.HandleFunc("GET /api/formats", handleFormats)
	mux.HandleFunc("GET /api/changelog", h.changelog)
	mux.HandleFunc("GET /api/refs", h.refs)
	mux.HandleFunc("GET /api/repositories", h.repositories)
	mux.HandleFunc("GET /api/token", h.token)
	mux.HandleFunc("GET /api/cache", h.cacheStats)
	mux.HandleFunc("POST /api/cache/invalidate", h.invalidate)

	return chain(mux)
}

// chain wraps h so the request id is assigned before logging and recovery see
// the request.
func chain(h http.Handler) http.Handler {
	return applyMiddleware(h,
		requestIDMiddleware,
		loggingMiddleware,
		recoveryMiddleware,
	)
}

type handlers struct {
	svc *changelog.Service
}

func handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleFormats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, export.Formats())
}

// providerToken reads the caller's provider token from the Authorization header.
func providerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(auth, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return r.Header.Get("X-Provider-Token")
}

func connection(r *http.Request) (changelog.Connection, error) {
	q := r.URL.Query()
	conn := changelog.Connection{
		UserID:       q.Get("userId"),
		ConnectionID: q.Get("connectionId"),
		Provider:     provider.KindGitHub,
		Token:        providerToken(r),
		BaseURL:      q.Get("baseURL"),
	}
	if p := q.Get("provider"); p != "" {
		kind, err := provider.ParseKind(p)
		if err != nil {
			return conn, &badRequest{msg: err.Error()}
		}
		conn.Provider = kind
	}
	if conn.Provider == provider.KindLocal {
		return conn, &badRequest{msg: "the local provider is not available over HTTP"}
	}
	if conn.BaseURL != "" && conn.Token == "" {
		return conn, &badRequest{msg: "baseURL requires a provider token in the Authorization header"}
	}
	return conn, nil
}

func boolParam(r *http.Request, name string) (bool, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, &badRequest{msg: fmt.Sprintf("%s: expected a boolean, got %q", name, v)}
	}
	return b, nil
}

func changelogRequest(r *http.Request) (changelog.Request, error) {
	conn, err := connection(r)
	if err != nil {
		return changelog.Request{}, err
	}
	q := r.URL.Query()
	req := changelog.Request{
		Connection: conn,
		RepoID:     q.Get("repoId"),
		Repository: q.Get("repository"),
		FromRef:    q.Get("from"),
		ToRef:      q.Get("to"),
	}
	if req.Repository == "" {
		return req, &badRequest{msg: "repository is required"}
	}
	if req.IncludeDetails, err = boolParam(r, "details"); err != nil {
		return req, err
	}
	if req.Narrative, err = boolParam(r, "narrative"); err != nil {
		return req, err
	}
	return req, nil
}

func (h *handlers) changelog(w http.ResponseWriter, r *http.Request) {
	spec, err := export.Negotiate(r.URL.Query().Get("format"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	req, err := changelogRequest(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	download, err := boolParam(r, "download")
	if err != nil {
		writeError(w, r, err)
		return
	}

	doc, err := h.svc.Generate(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	body, err := export.Body(doc, spec)
	if err != nil {
		writeError(w, r, err)
		return
	}

	disposition := "inline"
	if download {
		disposition = "attachment"
	}
	w.Header().Set("Content-Type", spec.ContentType())
	w.Header().Set("Content-Disposition", mime.FormatMediaType(disposition, map[string]string{
		"filename": export.Filename(doc.Metadata, spec),
	}))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (h *handlers) refs(w http.ResponseWriter, r *http.Request) {
	req, err := changelogRequest(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	refs, err := h.svc.ListRefs(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, refs)
}

func (h *handlers) repositories(w http.ResponseWriter, r *http.Request) {
	conn, err := connection(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	repos, err := h.svc.ListRepositories(r.Context(), conn)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, repos)
}

func (h *handlers) token(w http.ResponseWriter, r *http.Request) {
	conn, err := connection(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	health, err := h.svc.CheckToken(r.Context(), conn)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, health)
}

func (h *handlers) cacheStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.CacheStats())
}

// Invalidation events raised by the systems that own repositories and tokens.
const (
	EventRepositoryAdded   = "repositoryAdded"
	EventRepositoryRemoved = "repositoryRemoved"
	EventTokenUpdated      = "tokenUpdated"
)

// InvalidateRequest either names an event or a cache with partial key params.
type InvalidateRequest struct {
	Event        string       `json:"event,omitempty"`
	UserID       string       `json:"userId,omitempty"`
	RepoID       string       `json:"repoId,omitempty"`
	ConnectionID string       `json:"connectionId,omitempty"`
	Cache        string       `json:"cache,omitempty"`
	Params       cache.Params `json:"params,omitempty"`
}

type InvalidateResponse struct {
	Invalidated int `json:"invalidated"`
}

func (h *handlers) invalidate(w http.ResponseWriter, r *http.Request) {
	var req InvalidateRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody)).Decode(&req); err != nil {
		writeError(w, r, &badRequest{msg: fmt.Sprintf("invalid JSON: %v", err)})
		return
	}

	n, err := h.apply(req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, InvalidateResponse{Invalidated: n})
}

func (h *handlers) apply(req InvalidateRequest) (int, error) {
	switch req.Event {
	case EventRepositoryAdded:
		if req.UserID == "" {
			return 0, &badRequest{msg: "userId is required"}
		}
		return h.svc.RepositoryAdded(req.UserID), nil
	case EventRepositoryRemoved:
		if req.UserID == "" || req.RepoID == "" {
			return 0, &badRequest{msg: "userId and repoId are required"}
		}
		return h.svc.RepositoryRemoved(req.UserID, req.RepoID), nil
	case EventTokenUpdated:
		if req.UserID == "" || req.ConnectionID == "" {
			return 0, &badRequest{msg: "userId and connectionId are required"}
		}
		return h.svc.TokenUpdated(req.UserID, req.ConnectionID), nil
	case "":
	default:
		return 0, &badRequest{msg: fmt.Sprintf("unknown event %q", req.Event)}
	}

	if req.Cache == "" {
		return 0, &badRequest{msg: "either event or cache is required"}
	}
	n, err := h.svc.Invalidate(req.Cache, req.Params)
	if err != nil {
		return 0, &badRequest{msg: err.Error()}
	}
	return n, nil
}
