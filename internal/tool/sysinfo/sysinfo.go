// Package sysinfo implements the sys_info tool.
package sysinfo

import (
	"context"
	"os"
	"runtime"
	"time"

	"github.com/Cyclone1070/lmcode/internal/tool"
)

// Environment variables exposed by sys_info. Everything else is withheld.
var safeEnvVars = []string{"PATH", "USER", "HOME", "SHELL", "LANG", "PWD", "TERM"}

// Tool reports host and process facts plus an allow-listed slice of the
// environment.
type Tool struct {
	workingDir string
}

func New(workingDir string) *Tool {
	if workingDir == "" {
		panic("sysinfo.New: working directory required")
	}
	return &Tool{workingDir: workingDir}
}

func (t *Tool) Declaration() tool.Declaration {
	return tool.Declaration{
		Name:        "sys_info",
		Description: "Get system information",
		Params:      map[string]tool.ParamSpec{},
	}
}

func (t *Tool) Run(ctx context.Context, params map[string]any) tool.Result {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}

	env := map[string]string{}
	for _, name := range safeEnvVars {
		if value, ok := os.LookupEnv(name); ok {
			env[name] = value
		}
	}

	info := map[string]any{
		"os":                runtime.GOOS,
		"architecture":      runtime.GOARCH,
		"hostname":          hostname,
		"runtime_version":   runtime.Version(),
		"time":              time.Now().Format(time.RFC3339),
		"working_directory": t.workingDir,
		"environment":       env,
	}

	return tool.Success(map[string]any{"info": info})
}
