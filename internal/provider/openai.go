// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/pdiddy/reader-engine/internal/httputil"
	"github.com/pdiddy/reader-engine/pkg/types"
)

// defaultOpenAIBase is the OpenAI API base URL. Package-level var for test
// substitution.
var defaultOpenAIBase = "https://api.openai.com/v1"

// OpenAI calls the OpenAI chat-completions API over HTTP.
type OpenAI struct {
	runner
	chat chatClient
}

// NewOpenAI constructs the OpenAI provider. cfg.BaseURL overrides the
// default endpoint for gateways and tests.
func NewOpenAI(cfg types.AIConfig) (*OpenAI, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai: api key required")
	}
	base := cfg.BaseURL
	if base == "" {
		base = defaultOpenAIBase
	}

	o := &OpenAI{chat: newChatClient("openai", base, cfg)}
	o.runner = runner{c: o}
	return o, nil
}

func (o *OpenAI) Name() string { return "openai" }

func (o *OpenAI) complete(ctx context.Context, c completion) (string, types.Usage, error) {
	return o.chat.complete(ctx, c)
}

// chatClient implements the OpenAI chat-completions wire protocol, which
// Groq speaks as well. Rate-limited calls retry through httputil.
type chatClient struct {
	name       string
	baseURL    string
	apiKey     string
	model      string
	userAgent  string
	maxRetries int
	http       *http.Client
}

func newChatClient(name, baseURL string, cfg types.AIConfig) chatClient {
	return chatClient{
		name:       name,
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		userAgent:  cfg.UserAgent,
		maxRetries: cfg.MaxRetries,
		http:       &http.Client{Timeout: cfg.Timeout},
	}
}

// chatRequest is the request body for the chat-completions endpoint.
type chatRequest struct {
	Model          string              `json:"model"`
	Messages       []chatMessage       `json:"messages"`
	MaxTokens      int                 `json:"max_tokens,omitempty"`
	ResponseFormat *chatResponseFormat `json:"response_format,omitempty"`
}

// chatMessage is a single message in the conversation.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatResponseFormat selects structured output.
type chatResponseFormat struct {
	Type string `json:"type"`
}

// chatResponse is the response body from the chat-completions endpoint.
type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

func (cc *chatClient) complete(ctx context.Context, c completion) (string, types.Usage, error) {
	var msgs []chatMessage
	if c.system != "" {
		msgs = append(msgs, chatMessage{Role: "system", Content: c.system})
	}
	msgs = append(msgs, chatMessage{Role: "user", Content: c.prompt})

	reqBody := chatRequest{Model: cc.model, Messages: msgs}
	if c.maxTokens > 0 {
		reqBody.MaxTokens = c.maxTokens
	}
	if c.json {
		reqBody.ResponseFormat = &chatResponseFormat{Type: "json_object"}
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", types.Usage{}, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		cc.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", types.Usage{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+cc.apiKey)
	if cc.userAgent != "" {
		req.Header.Set("User-Agent", cc.userAgent)
	}

	resp, err := httputil.DoWithRetry(ctx, cc.http, req, cc.maxRetries)
	if err != nil {
		return "", types.Usage{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", types.Usage{}, &statusError{
			status: resp.StatusCode,
			body:   strings.TrimSpace(string(body)),
		}
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", types.Usage{}, fmt.Errorf("%w: %v", errMalformedResponse, err)
	}
	if len(out.Choices) == 0 {
		return "", types.Usage{}, errEmptyResponse
	}

	usage := types.Usage{
		Input:  out.Usage.PromptTokens,
		Output: out.Usage.CompletionTokens,
		Total:  out.Usage.TotalTokens,
	}
	return out.Choices[0].Message.Content, usage, nil
}
