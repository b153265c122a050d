// Package web implements the web_get tool.
package web

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html/charset"

	"github.com/Cyclone1070/lmcode/internal/security"
	"github.com/Cyclone1070/lmcode/internal/tool"
)

const (
	requestTimeout = 10 * time.Second
	userAgent      = "lmcode/1.0"

	// maxContentChars caps the content field in the result.
	maxContentChars = 50000

	// maxBinaryBytes bounds the base64 sample included for binary responses.
	maxBinaryBytes = 1024
)

type GetRequest struct {
	URL string `mapstructure:"url"`
}

func (r *GetRequest) Validate() error {
	if r.URL == "" {
		return fmt.Errorf("Missing required parameter: url")
	}
	return nil
}

// GetTool fetches a URL and returns its decoded content.
type GetTool struct {
	policy *security.Policy
	client *http.Client
}

func NewGetTool(policy *security.Policy) *GetTool {
	if policy == nil {
		panic("web.NewGetTool: policy is required")
	}
	return &GetTool{
		policy: policy,
		client: &http.Client{Timeout: requestTimeout},
	}
}

func (t *GetTool) Declaration() tool.Declaration {
	return tool.Declaration{
		Name:        "web_get",
		Description: "Make a GET request to a URL and return the response",
		Params: map[string]tool.ParamSpec{
			"url": {Type: "string", Required: true, Description: "URL to fetch, http or https"},
		},
	}
}

func (t *GetTool) Run(ctx context.Context, params map[string]any) tool.Result {
	req, err := tool.DecodeParams[GetRequest](params)
	if err != nil {
		return tool.Errorf("%v", err)
	}

	if decision := t.policy.CheckURL(req.URL); !decision.Allowed {
		return tool.Errorf("%s", decision.Reason)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, req.URL, nil)
	if err != nil {
		return tool.Errorf("%v", err)
	}
	httpReq.Header.Set("User-Agent", userAgent)

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return tool.Errorf("%v", err)
	}
	defer resp.Body.Close()

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "text/plain"
	}

	var content string
	if isTextual(contentType) {
		// Decode using the declared charset, replacing undecodable bytes.
		reader, err := charset.NewReader(resp.Body, contentType)
		if err != nil {
			reader = resp.Body
		}
		data, err := io.ReadAll(reader)
		if err != nil {
			return tool.Errorf("%v", err)
		}
		content = strings.ToValidUTF8(string(data), "�")
	} else {
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return tool.Errorf("%v", err)
		}
		content = fmt.Sprintf("[Binary data, %d bytes, Content-Type: %s]", len(data), contentType)
		if len(data) > maxBinaryBytes {
			content += " (truncated)"
			data = data[:maxBinaryBytes]
		}
		content += "\nBase64: " + base64.StdEncoding.EncodeToString(data)
	}

	if len(content) > maxContentChars {
		content = content[:maxContentChars]
	}

	return tool.Success(map[string]any{
		"url":          req.URL,
		"status_code":  resp.StatusCode,
		"content_type": contentType,
		"content":      content,
	})
}

func isTextual(contentType string) bool {
	ct := strings.ToLower(contentType)
	return strings.Contains(ct, "text") ||
		strings.Contains(ct, "json") ||
		strings.Contains(ct, "xml")
}
