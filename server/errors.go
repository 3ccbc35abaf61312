package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/flanksource/commons/logger"

	"github.com/flanksource/changelog/models"
)

type errorBody struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	RequestID string `json:"requestId,omitempty"`
}

// badRequest marks request validation failures.
type badRequest struct{ msg string }

func (e *badRequest) Error() string { return e.msg }

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warnf("failed to encode response: %v", err)
	}
}

// statusOf maps a service error to an HTTP status and error code.
func statusOf(err error) (int, string) {
	var (
		bad      *badRequest
		format   *models.InvalidFormatError
		empty    *models.EmptyResultError
		summary  *models.SummaryGenerationError
		provider *models.ProviderError
		network  *models.NetworkError
	)
	switch {
	case errors.As(err, &bad):
		return http.StatusBadRequest, "bad_request"
	case errors.As(err, &format):
		return http.StatusBadRequest, "invalid_format"
	case errors.As(err, &empty):
		return http.StatusNotFound, "empty_range"
	case errors.As(err, &summary):
		return http.StatusBadGateway, "summary_failed"
	case errors.As(err, &provider):
		switch provider.Status {
		case http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
			return provider.Status, "provider_error"
		}
		return http.StatusBadGateway, "provider_error"
	case errors.As(err, &network):
		return http.StatusBadGateway, "network_error"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "timeout"
	case errors.Is(err, context.Canceled):
		// client went away
		return 499, "canceled"
	}
	return http.StatusInternalServerError, "internal_error"
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusOf(err)
	if status >= http.StatusInternalServerError {
		logger.Errorf("%s %s failed: %v request_id=%s", r.Method, r.URL.Path, err, requestID(r.Context()))
	} else {
		logger.Debugf("%s %s rejected: %v", r.Method, r.URL.Path, err)
	}
	writeJSON(w, status, errorBody{Error: code, Message: err.Error(), RequestID: requestID(r.Context())})
}
