// Package apierror provides standardized error response structures for the API.
// All errors returned to clients go through this package to ensure consistency
// and to prevent leaking internal details (stack traces, DB errors, etc.).
package apierror

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
// Wire shape: {"ok":false,"error":"<code>"}.
type APIError struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

func New(code string) *APIError {
	return &APIError{OK: false, Error: code}
}

// ValidationError wraps multiple field errors under the VALIDATION code.
type ValidationError struct {
	OK     bool              `json:"ok"`
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{OK: false, Error: "VALIDATION", Fields: fields}
}
