package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrLoginRejected is returned when the token endpoint rejects the
// submitted username/password. The server's message is surfaced to the
// login UI through the session's Error field.
var ErrLoginRejected = errors.New("apiclient: login rejected")

// APIError is a non-2xx response from the platform API.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("apiclient: request failed with status %d", e.StatusCode)
	}
	return fmt.Sprintf("apiclient: request failed with status %d: %s", e.StatusCode, e.Detail)
}

// errorDetail extracts the server's human-readable "detail" field from
// an error response body, falling back to the given default.
func errorDetail(body []byte, fallback string) string {
	var payload struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Detail != "" {
		return payload.Detail
	}
	return fallback
}
