// Package server exposes the changelog service over HTTP.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/flanksource/commons/logger"
	"github.com/google/uuid"
)

type contextKey string

const contextKeyRequestID contextKey = "request_id"

func requestID(ctx context.Context) string {
	id, _ := ctx.Value(contextKeyRequestID).(string)
	return id
}

// requestIDMiddleware reuses an incoming X-Request-ID or generates one.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get("X-Request-ID")
		if reqID == "" {
			reqID = uuid.New().String()
		}
		ctx := context.WithValue(r.Context(), contextKeyRequestID, reqID)
		w.Header().Set("X-Request-ID", reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		logger.Infof("%s %s status=%d latency=%dms request_id=%s",
			r.Method, r.URL.Path, rw.statusCode, time.Since(start).Milliseconds(), requestID(r.Context()))
	})
}

// recoveryMiddleware turns a handler panic into a 500 if nothing was written yet.
func recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rw := &responseWriter{ResponseWriter: w}
		defer func() {
			if rec := recover(); rec != nil {
				logger.Errorf("panic recovered: %v request_id=%s", rec, requestID(r.Context()))
				if rw.statusCode == 0 {
					writeJSON(rw, http.StatusInternalServerError, errorBody{
						Error:     "internal_error",
						Message:   "internal server error",
						RequestID: requestID(r.Context()),
					})
				}
			}
		}()
		next.ServeHTTP(rw, r)
	})
}

// applyMiddleware wraps h so that mws[0] runs first.
func applyMiddleware(h http.Handler, mws ...func(http.Handler) http.Handler) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if rw.statusCode == 0 {
		rw.statusCode = http.StatusOK
	}
	return rw.ResponseWriter.Write(b)
}

func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}
