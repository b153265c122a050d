package tool

import "fmt"

// Result status values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Result is the structured outcome of a tool run. Beyond "status" the keys
// are tool-specific; error results carry an "error" message.
type Result map[string]any

// Success builds a success result with the given tool-specific fields.
func Success(fields map[string]any) Result {
	r := Result{"status": StatusSuccess}
	for k, v := range fields {
		r[k] = v
	}
	return r
}

// Errorf builds an error result with a formatted message.
func Errorf(format string, args ...any) Result {
	return Result{
		"status": StatusError,
		"error":  fmt.Sprintf(format, args...),
	}
}

// Status returns the result status string.
func (r Result) Status() string {
	s, _ := r["status"].(string)
	return s
}

// IsError reports whether the result carries an error status.
func (r Result) IsError() bool {
	return r.Status() == StatusError
}

// ErrorMessage returns the error text, or "" for success results.
func (r Result) ErrorMessage() string {
	msg, _ := r["error"].(string)
	return msg
}
