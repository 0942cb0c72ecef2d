// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	genai "google.golang.org/genai"

	"github.com/pdiddy/reader-engine/pkg/types"
)

// Gemini calls the Gemini API through the official genai SDK.
type Gemini struct {
	runner
	client  *genai.Client
	model   string
	timeout time.Duration
}

// NewGemini constructs the Gemini provider. When cfg.APIKey is empty the SDK
// falls back to the GEMINI_API_KEY environment variable.
func NewGemini(cfg types.AIConfig) (*Gemini, error) {
	cc := &genai.ClientConfig{Backend: genai.BackendGeminiAPI}
	if cfg.APIKey != "" {
		cc.APIKey = cfg.APIKey
	}
	client, err := genai.NewClient(context.Background(), cc)
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	g := &Gemini{client: client, model: cfg.Model, timeout: cfg.Timeout}
	g.runner = runner{c: g}
	return g, nil
}

func (g *Gemini) Name() string { return "gemini" }

func (g *Gemini) complete(ctx context.Context, c completion) (string, types.Usage, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	gcfg := &genai.GenerateContentConfig{}
	if c.json {
		gcfg.ResponseMIMEType = "application/json"
	}
	if c.system != "" {
		gcfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: c.system}}}
	}
	if c.maxTokens > 0 {
		gcfg.MaxOutputTokens = int32(c.maxTokens)
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{{Parts: []*genai.Part{{Text: c.prompt}}}},
		gcfg,
	)
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			return "", types.Usage{}, &statusError{status: apiErr.Code, body: apiErr.Message}
		}
		return "", types.Usage{}, err
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", types.Usage{}, errEmptyResponse
	}

	var usage types.Usage
	if resp.UsageMetadata != nil {
		usage = types.Usage{
			Input:  int(resp.UsageMetadata.PromptTokenCount),
			Output: int(resp.UsageMetadata.CandidatesTokenCount),
			Total:  int(resp.UsageMetadata.TotalTokenCount),
		}
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	return sb.String(), usage, nil
}
