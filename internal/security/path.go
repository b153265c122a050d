package security

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// CheckPath decides whether a filesystem path may be accessed for the given
// operation. The path is resolved to an absolute form before checking, so a
// relative traversal cannot sidestep a prefix rule.
//
// Forbidden paths are blocked for every operation. Read-only system paths
// apply to write and execute; the working-directory confinement applies to
// every operation, reads included.
func (p *Policy) CheckPath(path string, op Operation) Decision {
	if !p.safeMode {
		p.logger.Warn("safe mode disabled, allowing path access", zap.String("path", path))
		return Allow()
	}

	abs, err := normalizePath(path)
	if err != nil {
		return Deny(fmt.Sprintf("Error resolving path: %v", err))
	}

	for _, forbidden := range forbiddenPaths {
		if abs == forbidden || strings.HasPrefix(abs, forbidden) {
			p.logger.Warn("blocked access to forbidden path", zap.String("path", abs))
			return Deny(fmt.Sprintf("Access to %s is forbidden", forbidden))
		}
	}

	if op == OpWrite || op == OpExecute {
		for _, readOnly := range readOnlyPaths {
			if strings.HasPrefix(abs, readOnly) {
				p.logger.Warn("blocked write access to read-only path", zap.String("path", abs))
				return Deny(fmt.Sprintf("Write access to %s is restricted in safe mode", readOnly))
			}
		}
	}

	if !strings.HasPrefix(abs, p.workingDir) {
		p.logger.Warn("blocked operation outside working directory",
			zap.String("path", abs), zap.String("operation", string(op)))
		return Deny(fmt.Sprintf("Operation restricted to working directory: %s", p.workingDir))
	}

	return Allow()
}

// SanitizePath resolves a possibly-relative path against the working
// directory and validates the result. The check runs after resolution: a path
// is never approved in one form and used in another.
func (p *Policy) SanitizePath(path string, op Operation) (string, error) {
	if !filepath.IsAbs(path) && !strings.HasPrefix(path, "~") {
		path = filepath.Join(p.workingDir, path)
	}

	abs, err := normalizePath(path)
	if err != nil {
		return "", fmt.Errorf("error sanitizing path: %w", err)
	}

	if decision := p.CheckPath(abs, op); !decision.Allowed {
		return "", fmt.Errorf("%s", decision.Reason)
	}

	return abs, nil
}

// normalizePath expands a leading ~ and converts to a cleaned absolute path.
func normalizePath(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		if path == "~" {
			path = home
		} else {
			path = filepath.Join(home, path[2:])
		}
	}
	return filepath.Abs(path)
}
