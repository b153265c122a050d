package config

// Config holds all application configuration values.
// Defaults are set in DefaultConfig() and can be overridden via dotfile.
// NOTE: Values in config files override defaults, including explicit zero values.
// Missing keys are left at their default values.
type Config struct {
	Provider  ProviderConfig  `json:"provider"`
	Security  SecurityConfig  `json:"security"`
	Processor ProcessorConfig `json:"processor"`
	History   HistoryConfig   `json:"history"`
}

// ProviderConfig controls how requests are sent to the model backend.
type ProviderConfig struct {
	Endpoint    string  `json:"endpoint"`    // Default: http://localhost:11434
	Model       string  `json:"model"`       // Default: qwen2.5-coder
	Temperature float64 `json:"temperature"` // Default: 0.7
	MaxTokens   int     `json:"max_tokens"`  // Default: 4096
}

// SecurityConfig controls the safety policy applied to commands, paths and URLs.
type SecurityConfig struct {
	SafeMode         bool     `json:"safe_mode"`         // Default: true
	EnableBash       bool     `json:"enable_bash"`       // Default: true
	EnableTools      bool     `json:"enable_tools"`      // Default: true
	AllowedTools     []string `json:"allowed_tools"`     // Default: all built-in tools
	WorkingDirectory string   `json:"working_directory"` // Default: ~/lmcode_workspace
}

// ProcessorConfig controls how model responses are turned into actions.
type ProcessorConfig struct {
	AutoExtractCode         bool   `json:"auto_extract_code"`         // Default: false
	AutoRunPython           bool   `json:"auto_run_python"`           // Default: false
	AutoSaveCode            bool   `json:"auto_save_code"`            // Default: false
	CodeDirectory           string `json:"code_directory"`            // Default: "" (workspace root)
	ProcessFollowupCommands bool   `json:"process_followup_commands"` // Default: false
	MaxFollowupDepth        int    `json:"max_followup_depth"`        // Default: 2
}

// HistoryConfig controls conversation history retention.
type HistoryConfig struct {
	MaxTokens   int    `json:"max_tokens"`   // Default: 16000
	HistoryFile string `json:"history_file"` // Default: .lmcode/history.json (under workspace)
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Provider: ProviderConfig{
			Endpoint:    "http://localhost:11434",
			Model:       "qwen2.5-coder",
			Temperature: 0.7,
			MaxTokens:   4096,
		},
		Security: SecurityConfig{
			SafeMode:    true,
			EnableBash:  true,
			EnableTools: true,
			AllowedTools: []string{
				"file_read", "file_write", "file_list", "file_search", "file_grep",
				"edit", "web_get", "sys_info", "python_run", "batch",
			},
			WorkingDirectory: "~/lmcode_workspace",
		},
		Processor: ProcessorConfig{
			MaxFollowupDepth: 2,
		},
		History: HistoryConfig{
			MaxTokens:   16000,
			HistoryFile: ".lmcode/history.json",
		},
	}
}
