package remote

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrNotConfigured is returned when no base URL is set.
var ErrNotConfigured = errors.New("remote API base URL is not configured")

// ErrForeignLink is returned when a next-page link points outside the configured API.
// The request is never sent, so the bearer token stays with the API host.
var ErrForeignLink = errors.New("next-page link points outside the remote API")

// APIError is a non-2xx response from the remote API.
type APIError struct {
	StatusCode int
	Message    string
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("HTTP %d: %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// IsNotFound reports whether err is a 404 from the remote API.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// errorBody covers the error envelopes the API is known to return.
type errorBody struct {
	Message string `json:"message"`
	Errors  []struct {
		Title  string `json:"title"`
		Detail string `json:"detail"`
	} `json:"errors"`
}

// newAPIError extracts a readable message from an error response body.
func newAPIError(status int, body []byte) *APIError {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil {
		var parts []string
		if eb.Message != "" {
			parts = append(parts, eb.Message)
		}
		for _, e := range eb.Errors {
			switch {
			case e.Detail != "":
				parts = append(parts, e.Detail)
			case e.Title != "":
				parts = append(parts, e.Title)
			}
		}
		if len(parts) > 0 {
			return &APIError{StatusCode: status, Message: strings.Join(parts, "; ")}
		}
	}
	return &APIError{StatusCode: status, Message: strings.TrimSpace(string(body))}
}
