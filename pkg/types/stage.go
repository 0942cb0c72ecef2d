// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the reader-engine
// pipeline: workflow stages and checkpoints, the graded article document,
// news candidates, and configuration.
package types

import "time"

// Stage identifies a completed point in the generation workflow. Stages are
// ordered and the pipeline only ever moves forward through them.
type Stage string

const (
	StageStart     Stage = "start"
	StageSelection Stage = "selection"
	StagePlan      Stage = "plan"
	StageDraft     Stage = "draft"
	StageConverted Stage = "converted"
	StageAnnotated Stage = "annotated"
)

// stageOrder lists all stages in forward execution order.
var stageOrder = []Stage{
	StageStart,
	StageSelection,
	StagePlan,
	StageDraft,
	StageConverted,
	StageAnnotated,
}

// Stages returns all stages in forward execution order.
func Stages() []Stage {
	out := make([]Stage, len(stageOrder))
	copy(out, stageOrder)
	return out
}

// Index returns the position of s in the stage order, or -1 if s is not a
// known stage.
func (s Stage) Index() int {
	for i, st := range stageOrder {
		if st == s {
			return i
		}
	}
	return -1
}

// Valid reports whether s is a known stage.
func (s Stage) Valid() bool {
	return s.Index() >= 0
}

// AtLeast reports whether s is at or past other in the stage order.
// Unknown stages compare as earliest.
func (s Stage) AtLeast(other Stage) bool {
	i, j := s.Index(), other.Index()
	if i < 0 {
		return false
	}
	return i >= j
}

// IsTerminal reports whether s is the final stage.
func (s Stage) IsTerminal() bool {
	return s == StageAnnotated
}

// Checkpoint is a snapshot of pipeline progress, emitted after each completed
// stage and after each completed difficulty level during annotation. Fields
// are cumulative: every checkpoint carries all data produced at or before its
// Stage, so the latest checkpoint alone is enough to resume a run. Emitted
// checkpoints are never mutated; the pipeline builds a fresh one each time.
type Checkpoint struct {
	// Stage is the most recently completed stage.
	Stage Stage `json:"stage" yaml:"stage"`

	// Words are the selected target vocabulary words, in selection order.
	// Non-empty from the selection stage onward.
	Words []string `json:"words,omitempty" yaml:"words,omitempty"`

	// Summary is the news/context summary produced by selection.
	Summary string `json:"summary,omitempty" yaml:"summary,omitempty"`

	// SourceURLs lists the news sources behind the summary.
	SourceURLs []string `json:"source_urls,omitempty" yaml:"source_urls,omitempty"`

	// Plan is the structural blueprint produced by the plan stage.
	Plan string `json:"plan,omitempty" yaml:"plan,omitempty"`

	// Draft is the article text produced by the draft stage, after citation
	// markers have been stripped.
	Draft string `json:"draft,omitempty" yaml:"draft,omitempty"`

	// Document is the converted multi-level article. During annotation it
	// carries each completed level's annotations.
	Document *Document `json:"document,omitempty" yaml:"document,omitempty"`

	// AnnotatedLevels lists difficulty levels whose annotation is complete,
	// in ascending order.
	AnnotatedLevels []int `json:"annotated_levels,omitempty" yaml:"annotated_levels,omitempty"`

	// Usage maps a stage name to the token usage accumulated by that stage.
	Usage map[string]Usage `json:"usage,omitempty" yaml:"usage,omitempty"`

	// CreatedAt is when this checkpoint was built.
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// HasLevel reports whether level n is recorded as fully annotated.
func (c *Checkpoint) HasLevel(n int) bool {
	if c == nil {
		return false
	}
	for _, l := range c.AnnotatedLevels {
		if l == n {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the checkpoint, so a sink can retain it
// without observing later pipeline state.
func (c *Checkpoint) Clone() *Checkpoint {
	if c == nil {
		return nil
	}
	out := *c
	out.Words = append([]string(nil), c.Words...)
	out.SourceURLs = append([]string(nil), c.SourceURLs...)
	out.AnnotatedLevels = append([]int(nil), c.AnnotatedLevels...)
	out.Document = c.Document.Clone()
	if c.Usage != nil {
		out.Usage = make(map[string]Usage, len(c.Usage))
		for k, v := range c.Usage {
			out.Usage[k] = v
		}
	}
	return &out
}
