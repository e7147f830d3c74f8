package transport

import "fmt"

// InvalidResponseError is returned when an upstream answers with a non-2xx
// status. Body holds the response text for diagnostics.
type InvalidResponseError struct {
	StatusCode int
	Body       string
}

func (e *InvalidResponseError) Error() string {
	return fmt.Sprintf("invalid response: status %d: %s", e.StatusCode, e.Body)
}

// APIError is a structured error reported by a provider in a response or
// stream body.
type APIError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Type == "" {
		return "api error: " + e.Message
	}
	return fmt.Sprintf("api error: %s (type: %s)", e.Message, e.Type)
}
