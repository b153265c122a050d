package ui

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Cyclone1070/lmcode/internal/config"
	"github.com/Cyclone1070/lmcode/internal/history"
	"github.com/Cyclone1070/lmcode/internal/provider"
	"github.com/Cyclone1070/lmcode/internal/security"
	"github.com/Cyclone1070/lmcode/internal/tool/service/executor"
)

// modelClient is a provider.Client stub for commands that only list models.
type modelClient struct {
	models []string
	err    error
}

func (c *modelClient) ChatStream(ctx context.Context, req provider.ChatRequest, onChunk func(string)) (string, error) {
	return "", nil
}

func (c *modelClient) ListModels(ctx context.Context) ([]string, error) {
	return c.models, c.err
}

func (c *modelClient) Ping(ctx context.Context) error {
	return c.err
}

func newTestEnv(t *testing.T) (*Env, *bytes.Buffer, *Registry) {
	t.Helper()
	dir := t.TempDir()

	cfg := config.DefaultConfig()
	cfg.Security.WorkingDirectory = dir

	out := &bytes.Buffer{}
	env := &Env{
		Config:   cfg,
		Policy:   security.NewPolicy(cfg.Security, zap.NewNop()),
		Client:   &modelClient{},
		History:  history.New(cfg.History.MaxTokens, "system prompt", zap.NewNop()),
		Console:  NewConsole(out),
		Executor: executor.New(dir),
		Out:      out,
		Renderer: PlainRenderer{},
		Logger:   zap.NewNop(),
	}
	return env, out, NewRegistry()
}

func TestExecute_UnknownCommand(t *testing.T) {
	env, out, registry := newTestEnv(t)

	cont := registry.Execute(context.Background(), "/frobnicate", env)

	assert.True(t, cont)
	assert.Contains(t, out.String(), "Unknown command: /frobnicate")
}

func TestExecute_QuitAndAliases(t *testing.T) {
	for _, line := range []string{"/quit", "/exit", "/q"} {
		env, _, registry := newTestEnv(t)
		assert.False(t, registry.Execute(context.Background(), line, env), line)
	}
}

func TestExecute_Clear(t *testing.T) {
	env, out, registry := newTestEnv(t)
	env.History.Add("user", "hello")
	env.History.Add("assistant", "hi")
	require.Equal(t, 3, env.History.Len())

	registry.Execute(context.Background(), "/clear", env)

	assert.Equal(t, 1, env.History.Len(), "system message survives")
	assert.Contains(t, out.String(), "Conversation history cleared.")
}

func TestExecute_Help(t *testing.T) {
	env, out, registry := newTestEnv(t)

	registry.Execute(context.Background(), "/help", env)

	assert.Contains(t, out.String(), "/quit")
	assert.Contains(t, out.String(), "/model")
	assert.Contains(t, out.String(), "/workspace")
}

func TestExecute_Temp(t *testing.T) {
	tests := []struct {
		name     string
		args     string
		wantTemp float64
		wantMsg  string
	}{
		{name: "valid", args: "/temp 0.3", wantTemp: 0.3, wantMsg: "Temperature set to 0.3"},
		{name: "out of range", args: "/temp 1.5", wantTemp: 0.7, wantMsg: "between 0.0 and 1.0"},
		{name: "not a number", args: "/temp hot", wantTemp: 0.7, wantMsg: "Invalid temperature value"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, out, registry := newTestEnv(t)

			registry.Execute(context.Background(), tt.args, env)

			assert.Equal(t, tt.wantTemp, env.Config.Provider.Temperature)
			assert.Contains(t, out.String(), tt.wantMsg)
		})
	}
}

func TestExecute_ToggleBashFlipsPolicy(t *testing.T) {
	env, out, registry := newTestEnv(t)
	require.True(t, env.Policy.BashEnabled())

	registry.Execute(context.Background(), "/bash", env)

	assert.False(t, env.Config.Security.EnableBash)
	assert.False(t, env.Policy.BashEnabled())
	assert.Contains(t, out.String(), "Bash execution disabled.")

	registry.Execute(context.Background(), "/bash", env)
	assert.True(t, env.Policy.BashEnabled())
}

func TestExecute_ToggleSafeWarnsOnDisable(t *testing.T) {
	env, out, registry := newTestEnv(t)

	registry.Execute(context.Background(), "/safe", env)

	assert.False(t, env.Policy.SafeMode())
	assert.Contains(t, out.String(), "Warning: Disabling safe mode removes security restrictions.")
}

func TestExecute_AutoSaveDrivesAutoExtract(t *testing.T) {
	env, _, registry := newTestEnv(t)

	registry.Execute(context.Background(), "/auto_save", env)
	assert.True(t, env.Config.Processor.AutoSaveCode)
	assert.True(t, env.Config.Processor.AutoExtractCode)

	registry.Execute(context.Background(), "/auto_save", env)
	assert.False(t, env.Config.Processor.AutoSaveCode)
	assert.False(t, env.Config.Processor.AutoExtractCode, "extract off when both toggles off")
}

func TestExecute_AutoRunKeepsExtractWhileSaveOn(t *testing.T) {
	env, _, registry := newTestEnv(t)

	registry.Execute(context.Background(), "/auto_save", env)
	registry.Execute(context.Background(), "/auto_run", env)
	registry.Execute(context.Background(), "/auto_run", env)

	assert.True(t, env.Config.Processor.AutoExtractCode, "auto_save still on")
}

func TestExecute_ModelShowsCurrent(t *testing.T) {
	env, out, registry := newTestEnv(t)

	registry.Execute(context.Background(), "/model", env)

	assert.Contains(t, out.String(), "Current model: qwen2.5-coder")
}

func TestExecute_ModelSwitchValidated(t *testing.T) {
	env, out, registry := newTestEnv(t)
	env.Client = &modelClient{models: []string{"llama3", "qwen2.5-coder"}}

	registry.Execute(context.Background(), "/model llama3", env)
	assert.Equal(t, "llama3", env.Config.Provider.Model)
	assert.Contains(t, out.String(), "Switched to model: llama3")

	registry.Execute(context.Background(), "/model ghost", env)
	assert.Equal(t, "llama3", env.Config.Provider.Model, "unknown model rejected")
	assert.Contains(t, out.String(), "ollama pull ghost")
}

func TestExecute_SaveWritesLastResponse(t *testing.T) {
	env, out, registry := newTestEnv(t)
	env.LastResponse = "the model said things"
	target := filepath.Join(t.TempDir(), "reply.md")

	registry.Execute(context.Background(), "/save "+target, env)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "the model said things", string(data))
	assert.Contains(t, out.String(), "Response saved to")
}

func TestExecute_SaveWithoutResponse(t *testing.T) {
	env, out, registry := newTestEnv(t)

	registry.Execute(context.Background(), "/save anywhere.md", env)

	assert.Contains(t, out.String(), "No response to save.")
}

func TestExecute_Config(t *testing.T) {
	env, out, registry := newTestEnv(t)

	registry.Execute(context.Background(), "/config", env)

	assert.Contains(t, out.String(), "model: qwen2.5-coder")
	assert.Contains(t, out.String(), "safe_mode: true")
}

func TestExecute_Workspace(t *testing.T) {
	env, out, registry := newTestEnv(t)
	dir := env.Policy.WorkingDirectory()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))

	registry.Execute(context.Background(), "/workspace", env)

	assert.Contains(t, out.String(), "Current working directory: "+dir)
	assert.Contains(t, out.String(), "sub/")
	assert.Contains(t, out.String(), "notes.txt (1 bytes)")
}

func TestExecute_ListCodeEmpty(t *testing.T) {
	env, out, registry := newTestEnv(t)

	registry.Execute(context.Background(), "/list_code", env)

	assert.Contains(t, out.String(), "No code files found")
}

func TestExecute_RunLastCodeBlock(t *testing.T) {
	env, out, registry := newTestEnv(t)
	env.LastResponse = "Try this:\n```bash\necho from run command\n```"

	registry.Execute(context.Background(), "/run", env)

	assert.Contains(t, out.String(), "Running bash code...")
	assert.Contains(t, out.String(), "from run command")
}

func TestExecute_RunWithoutCodeBlocks(t *testing.T) {
	env, out, registry := newTestEnv(t)
	env.LastResponse = "no fences here"

	registry.Execute(context.Background(), "/run", env)

	assert.Contains(t, out.String(), "No code blocks found in the last response.")
}
