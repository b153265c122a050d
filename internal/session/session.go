// Package session owns the conversation loop: one user prompt in, streamed
// model output and executed actions out, with bounded followup recursion.
package session

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/Cyclone1070/lmcode/internal/config"
	"github.com/Cyclone1070/lmcode/internal/history"
	"github.com/Cyclone1070/lmcode/internal/processor"
	"github.com/Cyclone1070/lmcode/internal/processor/format"
	"github.com/Cyclone1070/lmcode/internal/provider"
)

// depthLimitMessage is returned without contacting the model once the
// followup chain is exhausted. It is the cycle breaker for runaway tool-call
// loops.
const depthLimitMessage = "Follow-up limit reached. Please continue with a new prompt."

// Options control one Send call. Depth starts at 0 for a user-initiated turn
// and grows by one per synthetic followup.
type Options struct {
	Followup bool
	Depth    int
}

// ResponseProcessor executes the actions found in a model response.
type ResponseProcessor interface {
	Process(ctx context.Context, text string) []processor.Result
}

// Session ties history, provider and processor into the request loop.
type Session struct {
	cfg       *config.Config
	history   *history.History
	client    provider.Client
	processor ResponseProcessor
	console   processor.Console
	stream    io.Writer
	logger    *zap.Logger
}

func New(cfg *config.Config, hist *history.History, client provider.Client, proc ResponseProcessor, console processor.Console, stream io.Writer, logger *zap.Logger) *Session {
	if cfg == nil {
		panic("session.New: config is required")
	}
	if hist == nil {
		panic("session.New: history is required")
	}
	if client == nil {
		panic("session.New: provider client is required")
	}
	if proc == nil {
		panic("session.New: processor is required")
	}
	if logger == nil {
		panic("session.New: logger is required")
	}
	if console == nil {
		console = processor.NopConsole{}
	}
	return &Session{
		cfg:       cfg,
		history:   hist,
		client:    client,
		processor: proc,
		console:   console,
		stream:    stream,
		logger:    logger,
	}
}

// History exposes the conversation history for the UI layer.
func (s *Session) History() *history.History { return s.history }

// ValidateModel checks that the backend is reachable and serves the
// configured model. An empty model list is treated as inconclusive, not as a
// failure.
func (s *Session) ValidateModel(ctx context.Context) error {
	names, err := s.client.ListModels(ctx)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		return nil
	}
	for _, name := range names {
		if name == s.cfg.Provider.Model {
			return nil
		}
	}
	return &provider.Error{
		Code: provider.ErrorCodeInvalidModel,
		Message: fmt.Sprintf("model %q not found; pull it first with: ollama pull %s",
			s.cfg.Provider.Model, s.cfg.Provider.Model),
	}
}

// Send runs one turn. User-initiated prompts and only the outermost
// assistant reply enter permanent history; synthetic followup prompts never
// do. Streamed content and recursive responses are echoed only at depth <= 1
// to keep console output readable.
func (s *Session) Send(ctx context.Context, prompt string, opts Options) (string, error) {
	maxDepth := s.cfg.Processor.MaxFollowupDepth
	if opts.Depth > maxDepth {
		s.console.Infof("Warning: Maximum followup depth (%d) reached.", maxDepth)
		s.logger.Warn("followup depth limit reached", zap.Int("max_depth", maxDepth))
		return depthLimitMessage, nil
	}

	echo := !opts.Followup || opts.Depth <= 1

	var onChunk func(string)
	if echo && s.stream != nil {
		onChunk = func(chunk string) { io.WriteString(s.stream, chunk) }
	}

	full, err := s.client.ChatStream(ctx, provider.ChatRequest{
		Model:       s.cfg.Provider.Model,
		Messages:    s.apiMessages(prompt),
		Temperature: s.cfg.Provider.Temperature,
		MaxTokens:   s.cfg.Provider.MaxTokens,
	}, onChunk)
	if err != nil {
		return "", err
	}
	if echo && s.stream != nil {
		io.WriteString(s.stream, "\n")
	}

	if !opts.Followup {
		s.history.Add("user", prompt)
		s.history.Add("assistant", full)
	}

	// First responses are always processed; followup responses only when
	// enabled and still under the depth ceiling.
	shouldProcess := !opts.Followup ||
		(s.cfg.Processor.ProcessFollowupCommands && opts.Depth < maxDepth)
	if !shouldProcess {
		return full, nil
	}

	if opts.Followup {
		s.console.Infof("Processing commands in followup response (depth: %d)...", opts.Depth)
	}

	results := s.processor.Process(ctx, full)
	followup := format.FollowUp(results)
	if followup == "" {
		return full, nil
	}

	s.console.Infof("Sharing command/tool results with the model...")
	followupResponse, err := s.Send(ctx, followup, Options{Followup: true, Depth: opts.Depth + 1})
	if err != nil {
		return full, err
	}
	if echo {
		full += "\n\n" + followupResponse
	}
	return full, nil
}

// apiMessages builds the wire message list: history first, then the new
// prompt. The prompt is not yet in history at this point.
func (s *Session) apiMessages(prompt string) []provider.Message {
	stored := s.history.Messages()
	messages := make([]provider.Message, 0, len(stored)+1)
	for _, msg := range stored {
		messages = append(messages, provider.Message{Role: msg.Role, Content: msg.Content})
	}
	return append(messages, provider.Message{Role: "user", Content: prompt})
}
