// Package ollama implements the provider contract against an Ollama-style
// HTTP backend with newline-delimited JSON streaming.
package ollama

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/Cyclone1070/lmcode/internal/provider"
)

// scanBufferSize bounds a single NDJSON line. Chunks are tiny in practice;
// this is headroom, not a target.
const scanBufferSize = 1 << 20

// Client talks to one Ollama endpoint.
type Client struct {
	endpoint   string
	httpClient *http.Client
	logger     *zap.Logger
}

// New creates a Client for the given endpoint. The underlying HTTP client
// carries no timeout: generation streams for as long as the model talks, and
// cancellation comes from the caller's context.
func New(endpoint string, logger *zap.Logger) *Client {
	if endpoint == "" {
		panic("ollama.New: endpoint is required")
	}
	if logger == nil {
		panic("ollama.New: logger is required")
	}
	return &Client{
		endpoint:   strings.TrimRight(endpoint, "/"),
		httpClient: &http.Client{},
		logger:     logger,
	}
}

type chatPayload struct {
	Model       string             `json:"model"`
	Messages    []provider.Message `json:"messages"`
	Stream      bool               `json:"stream"`
	Temperature float64            `json:"temperature"`
	MaxTokens   int                `json:"max_tokens"`
}

type chatChunk struct {
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
	Done bool `json:"done"`
}

// ChatStream posts the chat request and accumulates the streamed reply.
// Undecodable lines are skipped, not fatal; a non-200 status is.
func (c *Client) ChatStream(ctx context.Context, req provider.ChatRequest, onChunk func(string)) (string, error) {
	payload := chatPayload{
		Model:       req.Model,
		Messages:    req.Messages,
		Stream:      true,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", &provider.Error{Code: provider.ErrorCodeNetwork, Message: "encoding chat request", Underlying: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return "", &provider.Error{Code: provider.ErrorCodeNetwork, Message: "building chat request", Underlying: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", &provider.Error{Code: provider.ErrorCodeNetwork, Message: "contacting backend", Underlying: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", c.statusError(resp)
	}

	var full strings.Builder
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), scanBufferSize)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var chunk chatChunk
		if err := json.Unmarshal(line, &chunk); err != nil {
			c.logger.Debug("skipping undecodable stream line", zap.ByteString("line", line))
			continue
		}
		if chunk.Message.Content != "" {
			full.WriteString(chunk.Message.Content)
			if onChunk != nil {
				onChunk(chunk.Message.Content)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return full.String(), &provider.Error{Code: provider.ErrorCodeNetwork, Message: "reading stream", Underlying: err}
	}

	return full.String(), nil
}

type tagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// ListModels queries /api/tags for the model names the backend serves.
func (c *Client) ListModels(ctx context.Context) ([]string, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"/api/tags", nil)
	if err != nil {
		return nil, &provider.Error{Code: provider.ErrorCodeNetwork, Message: "building tags request", Underlying: err}
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &provider.Error{Code: provider.ErrorCodeNetwork, Message: "contacting backend", Underlying: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.statusError(resp)
	}

	var tags tagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return nil, &provider.Error{Code: provider.ErrorCodeNetwork, Message: "decoding tags response", Underlying: err}
	}

	names := make([]string, 0, len(tags.Models))
	for _, model := range tags.Models {
		names = append(names, model.Name)
	}
	return names, nil
}

// Ping reports whether the backend answers on /api/tags.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.ListModels(ctx)
	return err
}

// statusError reads the failed response and extracts the backend's error
// message when it sent one.
func (c *Client) statusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	message := fmt.Sprintf("HTTP %d", resp.StatusCode)
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
		message = fmt.Sprintf("HTTP %d: %s", resp.StatusCode, payload.Error)
	}

	c.logger.Error("backend request failed",
		zap.Int("status", resp.StatusCode), zap.String("message", message))
	return &provider.Error{
		Code:       provider.ErrorCodeHTTP,
		Message:    message,
		StatusCode: resp.StatusCode,
	}
}
