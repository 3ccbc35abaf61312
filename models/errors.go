package models

import (
	"fmt"
	"strings"
)

// ProviderError is a non-2xx answer to a primary provider call.
type ProviderError struct {
	Provider string
	Status   int
	Message  string
}

func (e *ProviderError) Error() string {
	if e.Provider == "" {
		return fmt.Sprintf("provider error (%d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("%s error (%d): %s", e.Provider, e.Status, e.Message)
}

// NetworkError is a transport level failure reaching a provider or the AI service.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// DetailFetchWarning describes a per-commit detail fetch that failed.
// It is only ever logged, never returned to the caller.
type DetailFetchWarning struct {
	SHA string
	Err error
}

func (w DetailFetchWarning) Error() string {
	return fmt.Sprintf("detail fetch for %s failed, continuing without file data: %v", shortSHA(w.SHA), w.Err)
}

func (w DetailFetchWarning) Unwrap() error { return w.Err }

// SummaryGenerationError is returned when the AI narrative could not be produced.
type SummaryGenerationError struct {
	Err error
}

func (e *SummaryGenerationError) Error() string {
	return fmt.Sprintf("summary generation failed: %v", e.Err)
}

func (e *SummaryGenerationError) Unwrap() error { return e.Err }

type InvalidFormatError struct {
	Format string
	Valid  []string
}

func (e *InvalidFormatError) Error() string {
	return fmt.Sprintf("invalid format %q, expected one of: %s", e.Format, strings.Join(e.Valid, ", "))
}

// EmptyResultError signals that the requested range holds no commits.
type EmptyResultError struct {
	Repository string
	FromRef    string
	ToRef      string
}

func (e *EmptyResultError) Error() string {
	if e.FromRef == "" && e.ToRef == "" {
		return fmt.Sprintf("no commits found in %s", e.Repository)
	}
	return fmt.Sprintf("no commits found in %s between %q and %q", e.Repository, e.FromRef, e.ToRef)
}
