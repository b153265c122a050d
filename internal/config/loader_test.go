package config

import (
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockFileSystem implements FileSystem for testing.
type MockFileSystem struct {
	HomeDir     string
	HomeDirErr  error
	Files       map[string][]byte
	ReadFileErr error
}

func (m *MockFileSystem) UserHomeDir() (string, error) {
	return m.HomeDir, m.HomeDirErr
}

func (m *MockFileSystem) ReadFile(path string) ([]byte, error) {
	if m.ReadFileErr != nil {
		return nil, m.ReadFileErr
	}
	data, ok := m.Files[path]
	if !ok {
		return nil, os.ErrNotExist
	}
	return data, nil
}

// --- HAPPY PATH TESTS ---

func TestLoad_NoConfigFile_ReturnsDefaults(t *testing.T) {
	// Config file doesn't exist - should return all defaults
	fs := &MockFileSystem{
		HomeDir: "/home/user",
		Files:   map[string][]byte{}, // Empty - no config file
	}
	loader := NewLoaderWithFS(fs)

	cfg, err := loader.Load()

	require.NoError(t, err)
	assert.Equal(t, "http://localhost:11434", cfg.Provider.Endpoint)
	assert.Equal(t, "qwen2.5-coder", cfg.Provider.Model)
	assert.Equal(t, 16000, cfg.History.MaxTokens)
	assert.Equal(t, 2, cfg.Processor.MaxFollowupDepth)
	assert.True(t, cfg.Security.SafeMode)
}

func TestLoad_NoConfigFile_ExpandsWorkspacePath(t *testing.T) {
	fs := &MockFileSystem{
		HomeDir: "/home/user",
		Files:   map[string][]byte{},
	}
	loader := NewLoaderWithFS(fs)

	cfg, err := loader.Load()

	require.NoError(t, err)
	assert.Equal(t, "/home/user/lmcode_workspace", cfg.Security.WorkingDirectory)
}

func TestLoad_FullOverride_AllValuesReplaced(t *testing.T) {
	// Config file overrides every section
	configJSON := `{
		"provider": {"endpoint": "http://10.0.0.2:11434", "model": "codellama", "temperature": 0.2, "max_tokens": 8192},
		"security": {"safe_mode": false, "enable_bash": false, "enable_tools": true, "allowed_tools": ["file_read"], "working_directory": "/srv/agent"},
		"processor": {"auto_extract_code": true, "max_followup_depth": 4},
		"history": {"max_tokens": 32000, "history_file": "/srv/agent/history.json"}
	}`
	fs := &MockFileSystem{
		HomeDir: "/home/user",
		Files: map[string][]byte{
			"/home/user/.config/lmcode/config.json": []byte(configJSON),
		},
	}
	loader := NewLoaderWithFS(fs)

	cfg, err := loader.Load()

	require.NoError(t, err)
	assert.Equal(t, "http://10.0.0.2:11434", cfg.Provider.Endpoint)
	assert.Equal(t, "codellama", cfg.Provider.Model)
	assert.Equal(t, 0.2, cfg.Provider.Temperature)
	assert.False(t, cfg.Security.SafeMode)
	assert.False(t, cfg.Security.EnableBash)
	assert.Equal(t, []string{"file_read"}, cfg.Security.AllowedTools)
	assert.Equal(t, "/srv/agent", cfg.Security.WorkingDirectory)
	assert.True(t, cfg.Processor.AutoExtractCode)
	assert.Equal(t, 4, cfg.Processor.MaxFollowupDepth)
	assert.Equal(t, 32000, cfg.History.MaxTokens)
}

func TestLoad_PartialOverride_MergesWithDefaults(t *testing.T) {
	// Config file only overrides the model - rest should be defaults
	configJSON := `{"provider": {"model": "deepseek-coder"}}`
	fs := &MockFileSystem{
		HomeDir: "/home/user",
		Files: map[string][]byte{
			"/home/user/.config/lmcode/config.json": []byte(configJSON),
		},
	}
	loader := NewLoaderWithFS(fs)

	cfg, err := loader.Load()

	require.NoError(t, err)
	assert.Equal(t, "deepseek-coder", cfg.Provider.Model)              // Overridden
	assert.Equal(t, "http://localhost:11434", cfg.Provider.Endpoint)   // Default
	assert.Equal(t, 16000, cfg.History.MaxTokens)                      // Default
	assert.Contains(t, cfg.Security.AllowedTools, "python_run")        // Default list
}

func TestLoad_EmptyConfigFile_ReturnsDefaults(t *testing.T) {
	fs := &MockFileSystem{
		HomeDir: "/home/user",
		Files: map[string][]byte{
			"/home/user/.config/lmcode/config.json": []byte(`{}`),
		},
	}
	loader := NewLoaderWithFS(fs)

	cfg, err := loader.Load()

	require.NoError(t, err)
	assert.Equal(t, "qwen2.5-coder", cfg.Provider.Model)
}

func TestLoad_ExplicitZeroValue_OverridesDefault(t *testing.T) {
	// false in the file must win over the true default
	configJSON := `{"security": {"enable_tools": false}}`
	fs := &MockFileSystem{
		HomeDir: "/home/user",
		Files: map[string][]byte{
			"/home/user/.config/lmcode/config.json": []byte(configJSON),
		},
	}
	loader := NewLoaderWithFS(fs)

	cfg, err := loader.Load()

	require.NoError(t, err)
	assert.False(t, cfg.Security.EnableTools)
	assert.True(t, cfg.Security.EnableBash) // untouched default
}

// --- ERROR PATH TESTS ---

func TestLoad_MalformedJSON_ReturnsError(t *testing.T) {
	fs := &MockFileSystem{
		HomeDir: "/home/user",
		Files: map[string][]byte{
			"/home/user/.config/lmcode/config.json": []byte(`{not json`),
		},
	}
	loader := NewLoaderWithFS(fs)

	cfg, err := loader.Load()

	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoad_PermissionError_ReturnsError(t *testing.T) {
	fs := &MockFileSystem{
		HomeDir:     "/home/user",
		ReadFileErr: errors.New("permission denied"),
	}
	loader := NewLoaderWithFS(fs)

	cfg, err := loader.Load()

	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoad_HomeDirError_ReturnsDefaults(t *testing.T) {
	fs := &MockFileSystem{
		HomeDirErr: errors.New("no home"),
	}
	loader := NewLoaderWithFS(fs)

	cfg, err := loader.Load()

	require.NoError(t, err)
	assert.Equal(t, "http://localhost:11434", cfg.Provider.Endpoint)
}

func TestLoad_InvalidMergedConfig_ReturnsValidationError(t *testing.T) {
	configJSON := `{"provider": {"temperature": 3.5}}`
	fs := &MockFileSystem{
		HomeDir: "/home/user",
		Files: map[string][]byte{
			"/home/user/.config/lmcode/config.json": []byte(configJSON),
		},
	}
	loader := NewLoaderWithFS(fs)

	cfg, err := loader.Load()

	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "temperature")
}
