// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package annotate

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"

	"github.com/pdiddy/reader-engine/internal/provider"
	"github.com/pdiddy/reader-engine/pkg/types"
)

// Generator is the single provider capability the engine needs: one raw
// generation call per batch. Retry and backoff belong behind this boundary,
// not in the engine.
type Generator interface {
	Generate(ctx context.Context, req provider.GenerateRequest) (provider.GenerateResult, error)
}

// LevelResult is one level's annotation outcome.
type LevelResult struct {
	// Level is the difficulty number.
	Level int

	// Annotations are the level's resolved tags, sorted by start offset.
	Annotations []types.Annotation

	// Usage sums the provider usage across the level's batches.
	Usage types.Usage
}

// Engine runs the per-level, per-batch annotation loop. Batches within a
// level run strictly sequentially: prompts and checkpoints depend on
// deterministic ordering, and providers may rate-limit.
type Engine struct {
	Provider Generator

	// OnLevel, when set, runs after each level completes, receiving every
	// level result so far. The pipeline checkpoints from this hook, which
	// bounds a mid-run failure to at most one level's work.
	OnLevel func(ctx context.Context, done []LevelResult) error

	// Out receives progress lines. Defaults to io.Discard.
	Out io.Writer

	// Log receives parse and resolution warnings. Defaults to slog.Default().
	Log *slog.Logger
}

// Annotate processes every level absent from completed, in ascending level
// order, and returns all level results sorted by level number. Levels
// already in completed pass through untouched, byte for byte. A provider
// error aborts the remaining batches and levels immediately; malformed
// responses and unresolvable spans only reduce coverage.
func (e *Engine) Annotate(ctx context.Context, levels []types.Level, completed []LevelResult) ([]LevelResult, error) {
	done := cloneResults(completed)
	sortResults(done)

	sorted := append([]types.Level(nil), levels...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Level < sorted[j].Level })

	for _, lvl := range sorted {
		if hasLevel(done, lvl.Level) {
			fmt.Fprintf(e.out(), "level %d: already annotated, skipping\n", lvl.Level)
			continue
		}
		res, err := e.annotateLevel(ctx, lvl)
		if err != nil {
			return nil, err
		}
		done = append(done, res)
		sortResults(done)
		if e.OnLevel != nil {
			if err := e.OnLevel(ctx, cloneResults(done)); err != nil {
				return nil, fmt.Errorf("after level %d: %w", lvl.Level, err)
			}
		}
	}
	return done, nil
}

func (e *Engine) annotateLevel(ctx context.Context, lvl types.Level) (LevelResult, error) {
	batches := Plan(lvl.Content)
	res := LevelResult{Level: lvl.Level}
	fmt.Fprintf(e.out(), "level %d: annotating %d batches\n", lvl.Level, len(batches))

	for _, b := range batches {
		prompt, err := RenderPrompt(b)
		if err != nil {
			return LevelResult{}, fmt.Errorf("rendering batch %d: %w", b.Index, err)
		}
		gen, err := e.Provider.Generate(ctx, provider.GenerateRequest{Prompt: prompt, JSON: true})
		if err != nil {
			return LevelResult{}, fmt.Errorf("level %d batch %d: %w", lvl.Level, b.Index, err)
		}
		res.Usage = res.Usage.Add(gen.Usage)

		log := e.log().With("level", lvl.Level, "batch", b.Index)
		spans := ParseResponse(log, gen.Text, len(b.Sentences))
		for i, s := range b.Sentences {
			res.Annotations = append(res.Annotations, Resolve(lvl.Content, s, b.Tokens[i], spans[i])...)
		}
	}

	sort.SliceStable(res.Annotations, func(i, j int) bool {
		return res.Annotations[i].Start < res.Annotations[j].Start
	})
	return res, nil
}

func (e *Engine) out() io.Writer {
	if e.Out != nil {
		return e.Out
	}
	return io.Discard
}

func (e *Engine) log() *slog.Logger {
	if e.Log != nil {
		return e.Log
	}
	return slog.Default()
}

func hasLevel(rs []LevelResult, n int) bool {
	for _, r := range rs {
		if r.Level == n {
			return true
		}
	}
	return false
}

func sortResults(rs []LevelResult) {
	sort.SliceStable(rs, func(i, j int) bool { return rs[i].Level < rs[j].Level })
}

func cloneResults(rs []LevelResult) []LevelResult {
	out := make([]LevelResult, len(rs))
	for i, r := range rs {
		r.Annotations = append([]types.Annotation(nil), r.Annotations...)
		out[i] = r
	}
	return out
}
