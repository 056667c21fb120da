// Package apierror holds the JSON error envelopes returned by the API. Handlers
// never put raw storage errors in Detail.
package apierror

// APIError is the body of every 4xx/5xx response except validation failures.
type APIError struct {
	Detail    string `json:"detail"`
	RequestID string `json:"request_id,omitempty"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// ValidationError is returned with 422 and maps field names to messages.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "validation failed", Fields: fields}
}
