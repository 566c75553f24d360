package api

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound matches any APIError carrying a 404 status, so callers can
// check errors.Is(err, api.ErrNotFound) without caring about the entity.
var ErrNotFound = errors.New("resource not found")

// ErrorDetail is the error block of the API response envelope.
type ErrorDetail struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// APIError is a failure reported by the console API. Server-side validation
// messages are passed through verbatim; this layer adds nothing to them.
type APIError struct {
	Status  int
	Code    string
	Message string
	Details map[string]string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("api: %s (%d): %s", e.Code, e.Status, e.Message)
	}
	return fmt.Sprintf("api: %d: %s", e.Status, e.Message)
}

func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.Status == http.StatusNotFound
}
