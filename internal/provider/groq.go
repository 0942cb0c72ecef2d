// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package provider

import (
	"context"
	"errors"

	"github.com/pdiddy/reader-engine/pkg/types"
)

// defaultGroqBase is the Groq API base URL. Package-level var for test
// substitution.
var defaultGroqBase = "https://api.groq.com/openai/v1"

// Groq calls the Groq API, which speaks the OpenAI chat-completions
// protocol at a different base URL.
type Groq struct {
	runner
	chat chatClient
}

// NewGroq constructs the Groq provider.
func NewGroq(cfg types.AIConfig) (*Groq, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("groq: api key required")
	}
	base := cfg.BaseURL
	if base == "" {
		base = defaultGroqBase
	}

	g := &Groq{chat: newChatClient("groq", base, cfg)}
	g.runner = runner{c: g}
	return g, nil
}

func (g *Groq) Name() string { return "groq" }

func (g *Groq) complete(ctx context.Context, c completion) (string, types.Usage, error) {
	return g.chat.complete(ctx, c)
}
