// Package tool defines the contract shared by all tools: a declared
// parameter schema and a handler that maps any failure into a structured
// error result instead of returning a Go error to the caller.
package tool

import (
	"context"
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// ParamSpec describes one declared tool parameter.
type ParamSpec struct {
	Type        string
	Required    bool
	Description string
}

// Declaration is a tool's name and parameter schema.
type Declaration struct {
	Name        string
	Description string
	Params      map[string]ParamSpec
}

// Tool executes one operation against the workspace.
// Run never panics and never returns a Go error; failures come back as an
// error-status Result so the model can see and react to them.
type Tool interface {
	Declaration() Declaration
	Run(ctx context.Context, params map[string]any) Result
}

// Validator is implemented by request types that check their own fields.
type Validator interface {
	Validate() error
}

// DecodeParams decodes a raw parameter map into a typed request and runs its
// validation when present.
func DecodeParams[Req any](params map[string]any) (Req, error) {
	var req Req
	if err := mapstructure.Decode(params, &req); err != nil {
		return req, fmt.Errorf("invalid parameters: %w", err)
	}
	if v, ok := any(&req).(Validator); ok {
		if err := v.Validate(); err != nil {
			return req, err
		}
	}
	return req, nil
}
