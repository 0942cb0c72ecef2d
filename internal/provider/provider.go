// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package provider defines the generation capability boundary: stage-named
// operations against an external LLM vendor, each returning the requested
// stage's artifact plus token usage, or a classified *Error. The concrete
// vendor is selected by configuration at construction time; the pipeline
// never inspects which one it got.
package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/pdiddy/reader-engine/pkg/types"
)

// SelectionRequest asks the provider to pick a topic and target vocabulary.
type SelectionRequest struct {
	// Topic is the caller's topic preference, possibly empty.
	Topic string

	// CandidateWords are the vocabulary words to choose from.
	CandidateWords []string

	// News are candidate stories gathered by the news collaborator. May be
	// empty; the provider then relies on its own knowledge of the topic.
	News []types.NewsItem

	// Date is the target publication date.
	Date time.Time
}

// SelectionResult is the selection stage's artifact.
type SelectionResult struct {
	Words      []string
	Summary    string
	SourceURLs []string
	Usage      types.Usage
}

// PlanRequest asks for a structural blueprint of the article.
type PlanRequest struct {
	Topic   string
	Words   []string
	Summary string
}

// PlanResult is the plan stage's artifact, consumed verbatim by drafting.
type PlanResult struct {
	Plan  string
	Usage types.Usage
}

// DraftRequest asks for the article text.
type DraftRequest struct {
	Plan    string
	Words   []string
	Summary string
}

// DraftResult is the draft stage's artifact.
type DraftResult struct {
	Draft string
	Usage types.Usage
}

// ConvertRequest asks for the draft rewritten into difficulty levels.
type ConvertRequest struct {
	Draft string
	Words []string

	// Levels is the number of difficulty levels required.
	Levels int
}

// ConvertResult is the convert stage's artifact.
type ConvertResult struct {
	Document *types.Document
	Usage    types.Usage
}

// GenerateRequest is a raw generation call with no stage semantics attached.
// The annotation engine uses it for batch prompts.
type GenerateRequest struct {
	// System is an optional system instruction.
	System string

	// Prompt is the user prompt.
	Prompt string

	// JSON requests a JSON-only response where the vendor supports it.
	JSON bool

	// MaxTokens caps the response length; zero uses the vendor default.
	MaxTokens int
}

// GenerateResult is the raw generation output.
type GenerateResult struct {
	Text  string
	Usage types.Usage
}

// Provider is the generation capability consumed by the pipeline and the
// annotation engine. Implementations return classified errors rather than
// malformed success, and report usage as zero counts when the vendor omits
// them.
type Provider interface {
	Name() string
	Select(ctx context.Context, req SelectionRequest) (SelectionResult, error)
	Plan(ctx context.Context, req PlanRequest) (PlanResult, error)
	Draft(ctx context.Context, req DraftRequest) (DraftResult, error)
	Convert(ctx context.Context, req ConvertRequest) (ConvertResult, error)
	Generate(ctx context.Context, req GenerateRequest) (GenerateResult, error)
}

// New constructs the provider selected by cfg.Provider.
func New(cfg types.AIConfig) (Provider, error) {
	switch cfg.Provider {
	case "gemini":
		return NewGemini(cfg)
	case "openai":
		return NewOpenAI(cfg)
	case "groq":
		return NewGroq(cfg)
	case "":
		return nil, fmt.Errorf("no provider configured")
	default:
		return nil, fmt.Errorf("unknown provider %q (want gemini, openai, or groq)", cfg.Provider)
	}
}

// completion is one raw model call as the vendor transport sees it.
type completion struct {
	system    string
	prompt    string
	json      bool
	maxTokens int
}

// completer is the vendor transport: one model call in, response text and
// usage out. Transport errors come back raw or as *statusError; the runner
// classifies them.
type completer interface {
	Name() string
	complete(ctx context.Context, c completion) (string, types.Usage, error)
}

// runner implements the stage operations on top of a vendor transport.
// Vendors embed it so each vendor file stays transport-only.
type runner struct {
	c completer
}

// selectionPayload is the wire shape of the selection artifact.
type selectionPayload struct {
	Words      []string `json:"words"`
	Summary    string   `json:"summary"`
	SourceURLs []string `json:"source_urls"`
}

func (r runner) Select(ctx context.Context, req SelectionRequest) (SelectionResult, error) {
	const op = "select"
	start := time.Now()

	prompt, err := renderSelectionPrompt(req)
	if err != nil {
		return SelectionResult{}, Classify(op, r.c.Name(), start, err)
	}
	text, usage, err := r.c.complete(ctx, completion{prompt: prompt, json: true})
	if err != nil {
		return SelectionResult{}, Classify(op, r.c.Name(), start, err)
	}

	var out selectionPayload
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		return SelectionResult{}, validationError(op, r.c.Name(), start,
			fmt.Errorf("parsing selection response: %w", err))
	}
	if len(out.Words) == 0 {
		return SelectionResult{}, validationError(op, r.c.Name(), start,
			errors.New("selection returned no words"))
	}
	return SelectionResult{
		Words:      out.Words,
		Summary:    out.Summary,
		SourceURLs: out.SourceURLs,
		Usage:      usage,
	}, nil
}

func (r runner) Plan(ctx context.Context, req PlanRequest) (PlanResult, error) {
	const op = "plan"
	start := time.Now()

	prompt, err := renderPlanPrompt(req)
	if err != nil {
		return PlanResult{}, Classify(op, r.c.Name(), start, err)
	}
	text, usage, err := r.c.complete(ctx, completion{prompt: prompt})
	if err != nil {
		return PlanResult{}, Classify(op, r.c.Name(), start, err)
	}
	if text == "" {
		return PlanResult{}, validationError(op, r.c.Name(), start,
			errors.New("plan returned empty text"))
	}
	return PlanResult{Plan: text, Usage: usage}, nil
}

func (r runner) Draft(ctx context.Context, req DraftRequest) (DraftResult, error) {
	const op = "draft"
	start := time.Now()

	prompt, err := renderDraftPrompt(req)
	if err != nil {
		return DraftResult{}, Classify(op, r.c.Name(), start, err)
	}
	text, usage, err := r.c.complete(ctx, completion{prompt: prompt})
	if err != nil {
		return DraftResult{}, Classify(op, r.c.Name(), start, err)
	}
	if text == "" {
		return DraftResult{}, validationError(op, r.c.Name(), start,
			errors.New("draft returned empty text"))
	}
	return DraftResult{Draft: text, Usage: usage}, nil
}

// convertPayload is the wire shape of the convert artifact.
type convertPayload struct {
	Title  string `json:"title"`
	Levels []struct {
		Level   int    `json:"level"`
		Title   string `json:"title"`
		Content string `json:"content"`
	} `json:"levels"`
}

func (r runner) Convert(ctx context.Context, req ConvertRequest) (ConvertResult, error) {
	const op = "convert"
	start := time.Now()

	prompt, err := renderConvertPrompt(req)
	if err != nil {
		return ConvertResult{}, Classify(op, r.c.Name(), start, err)
	}
	text, usage, err := r.c.complete(ctx, completion{prompt: prompt, json: true})
	if err != nil {
		return ConvertResult{}, Classify(op, r.c.Name(), start, err)
	}

	var out convertPayload
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		return ConvertResult{}, validationError(op, r.c.Name(), start,
			fmt.Errorf("parsing convert response: %w", err))
	}
	doc, err := buildDocument(out, req.Levels)
	if err != nil {
		return ConvertResult{}, validationError(op, r.c.Name(), start, err)
	}
	return ConvertResult{Document: doc, Usage: usage}, nil
}

// buildDocument validates the convert payload and assembles the document
// with levels sorted ascending. The level set must be exactly 1..want.
func buildDocument(p convertPayload, want int) (*types.Document, error) {
	if len(p.Levels) == 0 {
		return nil, errors.New("convert returned no levels")
	}
	doc := &types.Document{Title: p.Title}
	for _, l := range p.Levels {
		if l.Content == "" {
			return nil, fmt.Errorf("level %d has empty content", l.Level)
		}
		doc.Levels = append(doc.Levels, types.Level{
			Level:   l.Level,
			Title:   l.Title,
			Content: l.Content,
		})
	}
	sort.SliceStable(doc.Levels, func(i, j int) bool {
		return doc.Levels[i].Level < doc.Levels[j].Level
	})
	for i, l := range doc.Levels {
		if l.Level != i+1 {
			return nil, fmt.Errorf("level numbering is not 1..%d: got %v", len(doc.Levels), levelNumbers(doc))
		}
	}
	if want > 0 && len(doc.Levels) != want {
		return nil, fmt.Errorf("convert returned %d levels, want %d", len(doc.Levels), want)
	}
	return doc, nil
}

func levelNumbers(d *types.Document) []int {
	nums := make([]int, 0, len(d.Levels))
	for _, l := range d.Levels {
		nums = append(nums, l.Level)
	}
	return nums
}

func (r runner) Generate(ctx context.Context, req GenerateRequest) (GenerateResult, error) {
	const op = "generate"
	start := time.Now()

	text, usage, err := r.c.complete(ctx, completion{
		system:    req.System,
		prompt:    req.Prompt,
		json:      req.JSON,
		maxTokens: req.MaxTokens,
	})
	if err != nil {
		return GenerateResult{}, Classify(op, r.c.Name(), start, err)
	}
	return GenerateResult{Text: text, Usage: usage}, nil
}
