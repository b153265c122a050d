package config

import (
	"fmt"
	"strings"
)

// Validate checks config values for correctness.
// Returns an error if any values are invalid.
func (c *Config) Validate() error {
	var errs []string

	// Provider validation
	if strings.TrimSpace(c.Provider.Endpoint) == "" {
		errs = append(errs, "provider.endpoint must not be empty")
	}
	if !strings.HasPrefix(c.Provider.Endpoint, "http://") && !strings.HasPrefix(c.Provider.Endpoint, "https://") {
		errs = append(errs, "provider.endpoint must start with http:// or https://")
	}
	if strings.TrimSpace(c.Provider.Model) == "" {
		errs = append(errs, "provider.model must not be empty")
	}
	if c.Provider.Temperature < 0.0 || c.Provider.Temperature > 1.0 {
		errs = append(errs, "provider.temperature must be between 0.0 and 1.0")
	}
	if c.Provider.MaxTokens < 1 {
		errs = append(errs, "provider.max_tokens must be >= 1")
	}

	// Security validation
	if strings.TrimSpace(c.Security.WorkingDirectory) == "" {
		errs = append(errs, "security.working_directory must not be empty")
	}

	// Processor validation
	if c.Processor.MaxFollowupDepth < 0 {
		errs = append(errs, "processor.max_followup_depth must be >= 0")
	}

	// History validation
	if c.History.MaxTokens < 1 {
		errs = append(errs, "history.max_tokens must be >= 1")
	}
	if strings.TrimSpace(c.History.HistoryFile) == "" {
		errs = append(errs, "history.history_file must not be empty")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed: %v", errs)
	}

	return nil
}
