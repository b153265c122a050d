package session

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Cyclone1070/lmcode/internal/config"
	"github.com/Cyclone1070/lmcode/internal/history"
	"github.com/Cyclone1070/lmcode/internal/processor"
	"github.com/Cyclone1070/lmcode/internal/provider"
	"github.com/Cyclone1070/lmcode/internal/tool"
)

// fakeClient replays scripted responses and records every request.
type fakeClient struct {
	responses []string
	requests  []provider.ChatRequest
	models    []string
	listErr   error
}

func (f *fakeClient) ChatStream(ctx context.Context, req provider.ChatRequest, onChunk func(string)) (string, error) {
	f.requests = append(f.requests, req)
	idx := len(f.requests) - 1
	response := "default response"
	if idx < len(f.responses) {
		response = f.responses[idx]
	}
	if onChunk != nil {
		onChunk(response)
	}
	return response, nil
}

func (f *fakeClient) ListModels(ctx context.Context) ([]string, error) {
	return f.models, f.listErr
}

func (f *fakeClient) Ping(ctx context.Context) error {
	_, err := f.ListModels(ctx)
	return err
}

// fakeProcessor returns canned results for the first N calls, then nothing.
type fakeProcessor struct {
	queue [][]processor.Result
	texts []string
}

func (f *fakeProcessor) Process(ctx context.Context, text string) []processor.Result {
	f.texts = append(f.texts, text)
	if len(f.queue) == 0 {
		return nil
	}
	next := f.queue[0]
	f.queue = f.queue[1:]
	return next
}

func bashResult(command string) []processor.Result {
	return []processor.Result{{
		Kind:    processor.KindBash,
		Command: command,
		Result:  tool.Success(map[string]any{"stdout": "ok"}),
	}}
}

type sessionEnv struct {
	session *Session
	client  *fakeClient
	proc    *fakeProcessor
	stream  *bytes.Buffer
	history *history.History
}

func newSessionEnv(t *testing.T, mutate func(*config.Config)) *sessionEnv {
	t.Helper()
	cfg := config.DefaultConfig()
	if mutate != nil {
		mutate(cfg)
	}

	env := &sessionEnv{
		client:  &fakeClient{},
		proc:    &fakeProcessor{},
		stream:  &bytes.Buffer{},
		history: history.New(cfg.History.MaxTokens, "You are a coding assistant.", zap.NewNop()),
	}
	env.session = New(cfg, env.history, env.client, env.proc, nil, env.stream, zap.NewNop())
	return env
}

func TestSend_DepthLimitShortCircuits(t *testing.T) {
	env := newSessionEnv(t, nil)

	out, err := env.session.Send(context.Background(), "synthetic", Options{Followup: true, Depth: 3})

	require.NoError(t, err)
	assert.Equal(t, "Follow-up limit reached. Please continue with a new prompt.", out)
	assert.Empty(t, env.client.requests, "limit breaker must not contact the model")
}

func TestSend_UserPromptAndReplyEnterHistory(t *testing.T) {
	env := newSessionEnv(t, nil)
	env.client.responses = []string{"the answer"}

	_, err := env.session.Send(context.Background(), "what is up", Options{})

	require.NoError(t, err)
	msgs := env.history.Messages()
	require.Len(t, msgs, 3) // system + user + assistant
	assert.Equal(t, "user", msgs[1].Role)
	assert.Equal(t, "what is up", msgs[1].Content)
	assert.Equal(t, "assistant", msgs[2].Role)
	assert.Equal(t, "the answer", msgs[2].Content)
}

func TestSend_FollowupPromptNeverStored(t *testing.T) {
	env := newSessionEnv(t, nil)
	env.client.responses = []string{"followup reply"}

	_, err := env.session.Send(context.Background(), "synthetic results", Options{Followup: true, Depth: 1})

	require.NoError(t, err)
	require.Len(t, env.history.Messages(), 1) // system only
}

func TestSend_RequestCarriesHistoryAndPrompt(t *testing.T) {
	env := newSessionEnv(t, nil)
	env.client.responses = []string{"ok"}

	_, err := env.session.Send(context.Background(), "hello", Options{})

	require.NoError(t, err)
	require.Len(t, env.client.requests, 1)
	req := env.client.requests[0]
	assert.Equal(t, "qwen2.5-coder", req.Model)
	require.Len(t, req.Messages, 2)
	assert.Equal(t, "system", req.Messages[0].Role)
	assert.Equal(t, provider.Message{Role: "user", Content: "hello"}, req.Messages[1])
}

func TestSend_RecursesOnResultsAndConcatenates(t *testing.T) {
	env := newSessionEnv(t, nil)
	env.client.responses = []string{"first reply", "second reply"}
	env.proc.queue = [][]processor.Result{bashResult("ls")}

	out, err := env.session.Send(context.Background(), "do something", Options{})

	require.NoError(t, err)
	assert.Equal(t, "first reply\n\nsecond reply", out)

	require.Len(t, env.client.requests, 2)
	followupPrompt := env.client.requests[1].Messages[len(env.client.requests[1].Messages)-1].Content
	assert.Contains(t, followupPrompt, "Here are the results of the commands and tools you requested")
	assert.Contains(t, followupPrompt, "## Bash Command Result: `ls`")
}

func TestSend_OnlyOutermostReplyStored(t *testing.T) {
	env := newSessionEnv(t, nil)
	env.client.responses = []string{"outer", "inner"}
	env.proc.queue = [][]processor.Result{bashResult("pwd")}

	_, err := env.session.Send(context.Background(), "go", Options{})

	require.NoError(t, err)
	msgs := env.history.Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, "outer", msgs[2].Content)
}

func TestSend_NoRecursionWithoutResults(t *testing.T) {
	env := newSessionEnv(t, nil)
	env.client.responses = []string{"plain prose"}

	out, err := env.session.Send(context.Background(), "chat", Options{})

	require.NoError(t, err)
	assert.Equal(t, "plain prose", out)
	assert.Len(t, env.client.requests, 1)
}

func TestSend_FollowupProcessingDoubleGate(t *testing.T) {
	env := newSessionEnv(t, nil) // ProcessFollowupCommands defaults to false
	env.client.responses = []string{"followup reply"}
	env.proc.queue = [][]processor.Result{bashResult("ls")}

	_, err := env.session.Send(context.Background(), "results", Options{Followup: true, Depth: 1})

	require.NoError(t, err)
	assert.Empty(t, env.proc.texts, "followup responses are not processed when disabled")
}

func TestSend_FollowupProcessingEnabled(t *testing.T) {
	env := newSessionEnv(t, func(c *config.Config) {
		c.Processor.ProcessFollowupCommands = true
	})
	env.client.responses = []string{"followup reply"}

	_, err := env.session.Send(context.Background(), "results", Options{Followup: true, Depth: 1})

	require.NoError(t, err)
	assert.Equal(t, []string{"followup reply"}, env.proc.texts)
}

func TestSend_StreamEchoAtShallowDepthOnly(t *testing.T) {
	env := newSessionEnv(t, func(c *config.Config) {
		c.Processor.ProcessFollowupCommands = true
	})
	env.client.responses = []string{"d0", "d1", "d2", "d3"}
	env.proc.queue = [][]processor.Result{
		bashResult("a"), bashResult("b"), bashResult("c"),
	}

	out, err := env.session.Send(context.Background(), "go", Options{})

	require.NoError(t, err)
	streamed := env.stream.String()
	assert.Contains(t, streamed, "d0")
	assert.Contains(t, streamed, "d1")
	assert.NotContains(t, streamed, "d2", "deep frames are not echoed")
	// The depth-2 reply still reaches the caller through concatenation at
	// depth 1, it just is not streamed live.
	assert.Equal(t, "d0\n\nd1\n\nd2", out)
}

func TestValidateModel(t *testing.T) {
	tests := []struct {
		name    string
		models  []string
		wantErr bool
	}{
		{name: "model available", models: []string{"llama3", "qwen2.5-coder"}, wantErr: false},
		{name: "model missing", models: []string{"llama3"}, wantErr: true},
		{name: "empty list is inconclusive", models: nil, wantErr: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newSessionEnv(t, nil)
			env.client.models = tt.models

			err := env.session.ValidateModel(context.Background())
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "pull it first")
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateModel_BackendError(t *testing.T) {
	env := newSessionEnv(t, nil)
	env.client.listErr = &provider.Error{Code: provider.ErrorCodeNetwork, Message: "refused"}

	err := env.session.ValidateModel(context.Background())
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "refused"))
}

func TestSystemPrompt_BatchExampleMatchesBatchTool(t *testing.T) {
	// The batch tool reads per-invocation params from the "input" key; the
	// prompt's example must advertise the same shape.
	assert.Contains(t, SystemPrompt, `"input": {"path": "a.txt"}`)
	assert.NotContains(t, SystemPrompt, `"parameters"`)
}
