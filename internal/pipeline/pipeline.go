// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline drives the graded-article generation workflow: a
// resumable state machine over the ordered stages selection, plan, draft,
// converted, annotated. A checkpoint is emitted after every completed stage
// and, during annotation, after every completed difficulty level, so a
// crash or timeout never costs more than one stage or level of work.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/pdiddy/reader-engine/internal/annotate"
	"github.com/pdiddy/reader-engine/internal/provider"
	"github.com/pdiddy/reader-engine/pkg/types"
)

const (
	defaultLevels      = 3
	defaultMinDraftLen = 200

	// minSummaryLen is the shortest selection summary accepted, in bytes.
	minSummaryLen = 20
)

// citationPattern matches inline citation markers such as [NASA] or
// [1; 2], together with the whitespace preceding them.
var citationPattern = regexp.MustCompile(`\s*\[[^\[\]]+\]`)

// NewsFetcher is the best-effort news-candidate collaborator. A fetch
// failure downgrades to a warning; selection proceeds without candidates.
type NewsFetcher interface {
	Fetch(ctx context.Context, topics []string, date time.Time) ([]types.NewsItem, error)
}

// Sink receives checkpoints as stages and levels complete. The pipeline
// calls it synchronously and never retries it; a sink error aborts the run.
type Sink func(ctx context.Context, cp *types.Checkpoint) error

// Pipeline owns the stage sequence. Stages run strictly sequentially; the
// provider boundary is the only suspension point.
type Pipeline struct {
	Provider provider.Provider

	// News supplies candidate stories for selection. Optional.
	News NewsFetcher

	// Sink persists checkpoints. Optional.
	Sink Sink

	// Out receives progress lines. Defaults to io.Discard.
	Out io.Writer

	// Log receives warnings. Defaults to slog.Default().
	Log *slog.Logger

	// Levels is the default difficulty level count (default 3).
	Levels int

	// MinDraftLen is the minimum draft length in bytes after citation
	// stripping (default 200).
	MinDraftLen int
}

// Request is one pipeline invocation.
type Request struct {
	// Topic is the topic preference passed to selection. May be empty.
	Topic string

	// CandidateWords is the vocabulary pool selection picks from.
	CandidateWords []string

	// Date is the target publication date; zero means now.
	Date time.Time

	// Checkpoint resumes a prior run. Nil starts fresh.
	Checkpoint *types.Checkpoint

	// Levels overrides the pipeline's difficulty level count when positive.
	Levels int
}

// Result is a completed run's output.
type Result struct {
	Document   *types.Document
	Words      []string
	Summary    string
	SourceURLs []string
	Usage      map[string]types.Usage
}

// Run executes every stage the checkpoint has not already completed, in
// order. Stages selection, plan, and draft are skipped when the checkpoint
// is at or past them; converted re-executes on every invocation; annotation
// skips completed levels. A failed run returns only the error — partial
// progress is observable through the checkpoint stream.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Result, error) {
	if p.Provider == nil {
		return nil, fmt.Errorf("no provider configured")
	}

	levels := req.Levels
	if levels <= 0 {
		levels = p.Levels
	}
	if levels <= 0 {
		levels = defaultLevels
	}
	minDraft := p.MinDraftLen
	if minDraft <= 0 {
		minDraft = defaultMinDraftLen
	}
	date := req.Date
	if date.IsZero() {
		date = time.Now()
	}

	cp := req.Checkpoint.Clone()
	if cp == nil {
		cp = &types.Checkpoint{Stage: types.StageStart}
	}
	if !cp.Stage.Valid() {
		return nil, fmt.Errorf("checkpoint stage %q is not a known stage", cp.Stage)
	}
	if cp.Usage == nil {
		cp.Usage = make(map[string]types.Usage)
	}

	if cp.Stage.AtLeast(types.StageSelection) {
		fmt.Fprintf(p.out(), "selection: completed in checkpoint, skipping\n")
	} else {
		if err := p.runSelection(ctx, cp, req, date); err != nil {
			return nil, err
		}
		if err := p.emit(ctx, cp); err != nil {
			return nil, err
		}
	}

	if cp.Stage.AtLeast(types.StagePlan) {
		fmt.Fprintf(p.out(), "plan: completed in checkpoint, skipping\n")
	} else {
		if err := p.runPlan(ctx, cp, req.Topic); err != nil {
			return nil, err
		}
		if err := p.emit(ctx, cp); err != nil {
			return nil, err
		}
	}

	if cp.Stage.AtLeast(types.StageDraft) {
		fmt.Fprintf(p.out(), "draft: completed in checkpoint, skipping\n")
	} else {
		if err := p.runDraft(ctx, cp, minDraft); err != nil {
			return nil, err
		}
		if err := p.emit(ctx, cp); err != nil {
			return nil, err
		}
	}

	// Conversion is never gated on the checkpoint stage: the document is
	// re-derived from the draft on every invocation.
	if err := p.runConvert(ctx, cp, levels); err != nil {
		return nil, err
	}
	if err := p.emit(ctx, cp); err != nil {
		return nil, err
	}

	if err := p.runAnnotate(ctx, cp); err != nil {
		return nil, err
	}

	return &Result{
		Document:   cp.Document,
		Words:      cp.Words,
		Summary:    cp.Summary,
		SourceURLs: cp.SourceURLs,
		Usage:      cp.Usage,
	}, nil
}

func (p *Pipeline) runSelection(ctx context.Context, cp *types.Checkpoint, req Request, date time.Time) error {
	var news []types.NewsItem
	if p.News != nil {
		var topics []string
		if req.Topic != "" {
			topics = append(topics, req.Topic)
		}
		items, err := p.News.Fetch(ctx, topics, date)
		if err != nil {
			p.log().Warn("news fetch failed, selection continues without candidates", "error", err)
			fmt.Fprintf(p.out(), "warning: news fetch failed: %v\n", err)
		} else {
			news = items
		}
	}
	fmt.Fprintf(p.out(), "selection: choosing words from %d news candidates\n", len(news))

	res, err := p.Provider.Select(ctx, provider.SelectionRequest{
		Topic:          req.Topic,
		CandidateWords: req.CandidateWords,
		News:           news,
		Date:           date,
	})
	if err != nil {
		return err
	}
	if len(res.Words) == 0 {
		return fmt.Errorf("selection returned no words")
	}
	if len(strings.TrimSpace(res.Summary)) < minSummaryLen {
		return fmt.Errorf("selection summary too short: %d bytes", len(res.Summary))
	}

	cp.Words = res.Words
	cp.Summary = res.Summary
	cp.SourceURLs = res.SourceURLs
	cp.Usage["selection"] = res.Usage
	cp.Stage = types.StageSelection
	fmt.Fprintf(p.out(), "selection: %d words, %d sources\n", len(cp.Words), len(cp.SourceURLs))
	return nil
}

func (p *Pipeline) runPlan(ctx context.Context, cp *types.Checkpoint, topic string) error {
	fmt.Fprintf(p.out(), "plan: outlining article\n")
	res, err := p.Provider.Plan(ctx, provider.PlanRequest{
		Topic:   topic,
		Words:   cp.Words,
		Summary: cp.Summary,
	})
	if err != nil {
		return err
	}
	cp.Plan = res.Plan
	cp.Usage["plan"] = res.Usage
	cp.Stage = types.StagePlan
	return nil
}

func (p *Pipeline) runDraft(ctx context.Context, cp *types.Checkpoint, minLen int) error {
	fmt.Fprintf(p.out(), "draft: writing article\n")
	res, err := p.Provider.Draft(ctx, provider.DraftRequest{
		Plan:    cp.Plan,
		Words:   cp.Words,
		Summary: cp.Summary,
	})
	if err != nil {
		return err
	}

	draft := stripCitations(res.Draft)
	if len(draft) < minLen {
		return fmt.Errorf("draft too short: %d bytes after citation stripping, want at least %d", len(draft), minLen)
	}
	cp.Draft = draft
	cp.Usage["draft"] = res.Usage
	cp.Stage = types.StageDraft
	fmt.Fprintf(p.out(), "draft: %d bytes\n", len(cp.Draft))
	return nil
}

func (p *Pipeline) runConvert(ctx context.Context, cp *types.Checkpoint, levels int) error {
	fmt.Fprintf(p.out(), "convert: deriving %d levels\n", levels)
	res, err := p.Provider.Convert(ctx, provider.ConvertRequest{
		Draft:  cp.Draft,
		Words:  cp.Words,
		Levels: levels,
	})
	if err != nil {
		return err
	}

	prior := cp.Document
	cp.Document = res.Document
	carryAnnotations(cp, prior)
	cp.Usage["convert"] = res.Usage
	cp.Stage = types.StageConverted
	return nil
}

func (p *Pipeline) runAnnotate(ctx context.Context, cp *types.Checkpoint) error {
	if cp.Document == nil || len(cp.Document.Levels) == 0 {
		return fmt.Errorf("no document to annotate")
	}

	eng := &annotate.Engine{
		Provider: p.Provider,
		Out:      p.out(),
		Log:      p.log(),
		OnLevel: func(ctx context.Context, done []annotate.LevelResult) error {
			applyResults(cp, done)
			cp.Stage = types.StageAnnotated
			return p.emit(ctx, cp)
		},
	}

	results, err := eng.Annotate(ctx, cp.Document.Levels, completedFromCheckpoint(cp))
	if err != nil {
		return err
	}
	applyResults(cp, results)
	cp.Stage = types.StageAnnotated
	return nil
}

// completedFromCheckpoint rebuilds the already-annotated level results the
// engine passes through untouched.
func completedFromCheckpoint(cp *types.Checkpoint) []annotate.LevelResult {
	var done []annotate.LevelResult
	for _, n := range cp.AnnotatedLevels {
		lvl := cp.Document.Level(n)
		if lvl == nil {
			continue
		}
		done = append(done, annotate.LevelResult{
			Level:       n,
			Annotations: append([]types.Annotation(nil), lvl.Annotations...),
			Usage:       cp.Usage[levelUsageKey(n)],
		})
	}
	return done
}

// applyResults attaches level results to the checkpoint's document and
// updates the annotated-level list and per-level usage.
func applyResults(cp *types.Checkpoint, results []annotate.LevelResult) {
	nums := make([]int, 0, len(results))
	for _, r := range results {
		if lvl := cp.Document.Level(r.Level); lvl != nil {
			lvl.Annotations = append([]types.Annotation(nil), r.Annotations...)
		}
		nums = append(nums, r.Level)
		cp.Usage[levelUsageKey(r.Level)] = r.Usage
	}
	cp.AnnotatedLevels = nums
}

// carryAnnotations re-attaches completed levels' annotations from the
// document that existed before re-conversion, keeping checkpoint fields
// cumulative across the unconditional convert stage.
func carryAnnotations(cp *types.Checkpoint, prior *types.Document) {
	if prior == nil {
		return
	}
	for _, n := range cp.AnnotatedLevels {
		old := prior.Level(n)
		fresh := cp.Document.Level(n)
		if old == nil || fresh == nil {
			continue
		}
		fresh.Annotations = append([]types.Annotation(nil), old.Annotations...)
	}
}

func levelUsageKey(n int) string {
	return fmt.Sprintf("annotate-level-%d", n)
}

// emit snapshots the checkpoint and hands it to the sink.
func (p *Pipeline) emit(ctx context.Context, cp *types.Checkpoint) error {
	if p.Sink == nil {
		return nil
	}
	snapshot := cp.Clone()
	snapshot.CreatedAt = time.Now().UTC()
	if err := p.Sink(ctx, snapshot); err != nil {
		return fmt.Errorf("checkpoint sink at %s: %w", cp.Stage, err)
	}
	return nil
}

// stripCitations removes bracketed citation markers from draft text.
func stripCitations(text string) string {
	return strings.TrimSpace(citationPattern.ReplaceAllString(text, ""))
}

func (p *Pipeline) out() io.Writer {
	if p.Out != nil {
		return p.Out
	}
	return io.Discard
}

func (p *Pipeline) log() *slog.Logger {
	if p.Log != nil {
		return p.Log
	}
	return slog.Default()
}
