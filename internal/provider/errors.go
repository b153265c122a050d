package provider

import "fmt"

// ErrorCode classifies a provider failure.
type ErrorCode string

const (
	ErrorCodeNetwork      ErrorCode = "network_error"
	ErrorCodeHTTP         ErrorCode = "http_error"
	ErrorCodeInvalidModel ErrorCode = "invalid_model"
)

// Error wraps a backend failure with enough context for the caller to decide
// whether to abort the session.
type Error struct {
	Code       ErrorCode
	Message    string
	StatusCode int
	Underlying error
}

func (e *Error) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Underlying)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Underlying
}
