// Package logging builds the application logger.
//
// Log output goes to a file under the workspace (.lmcode/lmcode.log) so it
// never interleaves with streamed model output on the terminal. Verbose mode
// additionally mirrors entries to stderr.
package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogDir is the directory name under the workspace that holds the log file.
const LogDir = ".lmcode"

// LogFile is the log file name.
const LogFile = "lmcode.log"

// New creates the application logger writing to workspaceDir/.lmcode/lmcode.log.
// When verbose is true, entries are also written to stderr at debug level.
func New(workspaceDir string, verbose bool) (*zap.Logger, error) {
	if workspaceDir == "" {
		return nil, fmt.Errorf("workspace directory required")
	}

	logDir := filepath.Join(workspaceDir, LogDir)
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	logPath := filepath.Join(logDir, LogFile)
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}

	fileCore := zapcore.NewCore(
		zapcore.NewJSONEncoder(encCfg),
		zapcore.Lock(file),
		level,
	)

	core := fileCore
	if verbose {
		consoleCfg := zap.NewDevelopmentEncoderConfig()
		consoleCore := zapcore.NewCore(
			zapcore.NewConsoleEncoder(consoleCfg),
			zapcore.Lock(os.Stderr),
			zapcore.DebugLevel,
		)
		core = zapcore.NewTee(fileCore, consoleCore)
	}

	return zap.New(core), nil
}

// NewNop returns a logger that discards everything. Used in tests and as a
// safe default before configuration is loaded.
func NewNop() *zap.Logger {
	return zap.NewNop()
}
