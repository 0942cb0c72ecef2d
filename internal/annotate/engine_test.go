// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package annotate

import (
	"bytes"
	"context"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/pdiddy/reader-engine/internal/provider"
	"github.com/pdiddy/reader-engine/pkg/types"
)

// scriptedGen returns one canned response for every batch.
type scriptedGen struct {
	text    string
	err     error
	calls   int
	prompts []string
}

func (g *scriptedGen) Generate(_ context.Context, req provider.GenerateRequest) (provider.GenerateResult, error) {
	g.calls++
	g.prompts = append(g.prompts, req.Prompt)
	if g.err != nil {
		return provider.GenerateResult{}, g.err
	}
	return provider.GenerateResult{
		Text:  g.text,
		Usage: types.Usage{Input: 5, Output: 2, Total: 7},
	}, nil
}

const subjectResponse = `{"S0": [{"role": "s", "from": 0, "to": 1}]}`

func testLevels(n int) []types.Level {
	var levels []types.Level
	for i := 1; i <= n; i++ {
		levels = append(levels, types.Level{
			Level:   i,
			Title:   fmt.Sprintf("Level %d", i),
			Content: "The ice is melting quickly today.",
		})
	}
	return levels
}

func TestAnnotateProducesEveryLevel(t *testing.T) {
	gen := &scriptedGen{text: subjectResponse}
	var out bytes.Buffer
	var onLevelSizes []int
	eng := &Engine{
		Provider: gen,
		Out:      &out,
		Log:      discardLogger(),
		OnLevel: func(_ context.Context, done []LevelResult) error {
			onLevelSizes = append(onLevelSizes, len(done))
			return nil
		},
	}

	results, err := eng.Annotate(context.Background(), testLevels(2), nil)
	if err != nil {
		t.Fatalf("Annotate: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("results = %+v, want 2 levels", results)
	}
	for i, r := range results {
		if r.Level != i+1 {
			t.Errorf("result %d is level %d, want sorted order", i, r.Level)
		}
		if len(r.Annotations) != 1 || r.Annotations[0].Text != "The ice" {
			t.Errorf("level %d annotations = %+v", r.Level, r.Annotations)
		}
		if r.Usage.Total != 7 {
			t.Errorf("level %d usage = %+v", r.Level, r.Usage)
		}
	}
	if !reflect.DeepEqual(onLevelSizes, []int{1, 2}) {
		t.Errorf("OnLevel saw %v results, want growing [1 2]", onLevelSizes)
	}
	if gen.calls != 2 {
		t.Errorf("generate calls = %d, want 2", gen.calls)
	}
	if !strings.Contains(out.String(), "level 1: annotating 1 batches") {
		t.Errorf("progress output = %q", out.String())
	}
}

func TestAnnotateSkipsCompletedLevels(t *testing.T) {
	gen := &scriptedGen{text: subjectResponse}
	var out bytes.Buffer
	eng := &Engine{Provider: gen, Out: &out, Log: discardLogger()}

	carried := LevelResult{
		Level:       1,
		Annotations: []types.Annotation{{Role: "v", Start: 8, End: 10, Text: "is"}},
		Usage:       types.Usage{Input: 1, Output: 1, Total: 2},
	}
	results, err := eng.Annotate(context.Background(), testLevels(2), []LevelResult{carried})
	if err != nil {
		t.Fatalf("Annotate: %v", err)
	}

	if gen.calls != 1 {
		t.Errorf("generate calls = %d, want 1 (level 1 already done)", gen.calls)
	}
	if !reflect.DeepEqual(results[0], carried) {
		t.Errorf("completed level altered: %+v", results[0])
	}
	if results[1].Level != 2 || len(results[1].Annotations) != 1 {
		t.Errorf("level 2 result = %+v", results[1])
	}
	if !strings.Contains(out.String(), "level 1: already annotated, skipping") {
		t.Errorf("progress output = %q", out.String())
	}
}

func TestAnnotateProviderErrorAborts(t *testing.T) {
	gen := &scriptedGen{err: fmt.Errorf("back off")}
	onLevelCalls := 0
	eng := &Engine{
		Provider: gen,
		Log:      discardLogger(),
		OnLevel: func(context.Context, []LevelResult) error {
			onLevelCalls++
			return nil
		},
	}

	_, err := eng.Annotate(context.Background(), testLevels(3), nil)
	if err == nil || !strings.Contains(err.Error(), "level 1 batch 0") {
		t.Fatalf("err = %v, want the failing level and batch named", err)
	}
	if gen.calls != 1 {
		t.Errorf("generate calls = %d, want the run aborted after the first failure", gen.calls)
	}
	if onLevelCalls != 0 {
		t.Errorf("OnLevel ran %d times despite the failure", onLevelCalls)
	}
}

func TestAnnotateMalformedResponseDegrades(t *testing.T) {
	gen := &scriptedGen{text: "I'd rather not."}
	eng := &Engine{Provider: gen, Log: discardLogger()}

	results, err := eng.Annotate(context.Background(), testLevels(1), nil)
	if err != nil {
		t.Fatalf("Annotate: %v", err)
	}
	if len(results) != 1 || len(results[0].Annotations) != 0 {
		t.Errorf("results = %+v, want the level completed with zero annotations", results)
	}
	// Usage still counts: the request was made and billed.
	if results[0].Usage.Total != 7 {
		t.Errorf("usage = %+v", results[0].Usage)
	}
}

func TestAnnotateOnLevelErrorStops(t *testing.T) {
	gen := &scriptedGen{text: subjectResponse}
	eng := &Engine{
		Provider: gen,
		Log:      discardLogger(),
		OnLevel: func(context.Context, []LevelResult) error {
			return fmt.Errorf("sink unavailable")
		},
	}

	_, err := eng.Annotate(context.Background(), testLevels(2), nil)
	if err == nil || !strings.Contains(err.Error(), "after level 1") {
		t.Fatalf("err = %v, want the hook failure surfaced with its level", err)
	}
	if gen.calls != 1 {
		t.Errorf("generate calls = %d, want level 2 never attempted", gen.calls)
	}
}

func TestAnnotateSumsUsageAcrossBatches(t *testing.T) {
	gen := &scriptedGen{text: subjectResponse}
	eng := &Engine{Provider: gen, Log: discardLogger()}

	levels := []types.Level{{
		Level:   1,
		Content: "The ice is melting quickly today.\n\nScientists watch the ice closely now.",
	}}
	results, err := eng.Annotate(context.Background(), levels, nil)
	if err != nil {
		t.Fatalf("Annotate: %v", err)
	}
	if gen.calls != 2 {
		t.Fatalf("generate calls = %d, want one per paragraph", gen.calls)
	}
	want := types.Usage{Input: 10, Output: 4, Total: 14}
	if results[0].Usage != want {
		t.Errorf("usage = %+v, want %+v", results[0].Usage, want)
	}
}

func TestAnnotateEmptyContentNoCalls(t *testing.T) {
	gen := &scriptedGen{text: subjectResponse}
	eng := &Engine{Provider: gen, Log: discardLogger()}

	results, err := eng.Annotate(context.Background(), []types.Level{{Level: 1, Content: "Hi."}}, nil)
	if err != nil {
		t.Fatalf("Annotate: %v", err)
	}
	if gen.calls != 0 {
		t.Errorf("generate calls = %d, want 0 for a level below the batch threshold", gen.calls)
	}
	if len(results) != 1 || len(results[0].Annotations) != 0 {
		t.Errorf("results = %+v, want an empty level result", results)
	}
}
