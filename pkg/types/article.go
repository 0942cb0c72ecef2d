// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"sort"
	"time"
)

// Article is the exported artifact of one completed generation run, written
// as JSON with a YAML sidecar.
type Article struct {
	// RunID identifies the generation run that produced this article.
	RunID string `json:"run_id" yaml:"run_id"`

	// GeneratedAt is when the run completed.
	GeneratedAt time.Time `json:"generated_at" yaml:"generated_at"`

	// Topic is the topic preference the run was invoked with, possibly empty.
	Topic string `json:"topic,omitempty" yaml:"topic,omitempty"`

	// Words are the selected target vocabulary words.
	Words []string `json:"words" yaml:"words"`

	// Summary is the story summary the article was written from.
	Summary string `json:"summary" yaml:"summary"`

	// SourceURLs lists the news sources behind the summary.
	SourceURLs []string `json:"source_urls,omitempty" yaml:"source_urls,omitempty"`

	// Document is the fully annotated multi-level article.
	Document *Document `json:"document" yaml:"document"`

	// Usage maps stage names to token usage.
	Usage map[string]Usage `json:"usage,omitempty" yaml:"usage,omitempty"`
}

// Document is the converted multi-level article: the same story rewritten at
// each difficulty level.
type Document struct {
	// Title is the article headline shared by all levels.
	Title string `json:"title" yaml:"title"`

	// Levels holds the difficulty-graded rewrites, sorted by level number.
	Levels []Level `json:"levels" yaml:"levels"`
}

// Level returns the level numbered n, or nil if the document has no such level.
func (d *Document) Level(n int) *Level {
	if d == nil {
		return nil
	}
	for i := range d.Levels {
		if d.Levels[i].Level == n {
			return &d.Levels[i]
		}
	}
	return nil
}

// LevelNumbers returns the document's level numbers in ascending order.
func (d *Document) LevelNumbers() []int {
	if d == nil {
		return nil
	}
	nums := make([]int, 0, len(d.Levels))
	for _, l := range d.Levels {
		nums = append(nums, l.Level)
	}
	sort.Ints(nums)
	return nums
}

// Clone returns a deep copy of the document.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	out := &Document{Title: d.Title, Levels: make([]Level, len(d.Levels))}
	for i, l := range d.Levels {
		cl := l
		cl.Annotations = append([]Annotation(nil), l.Annotations...)
		out.Levels[i] = cl
	}
	return out
}

// Level is one difficulty-graded rewrite of the article.
type Level struct {
	// Level is the difficulty number, starting at 1.
	Level int `json:"level" yaml:"level"`

	// Title is an optional level-specific headline.
	Title string `json:"title,omitempty" yaml:"title,omitempty"`

	// Content is the level's plain text. Annotation and token offsets are
	// byte offsets into this string.
	Content string `json:"content" yaml:"content"`

	// Annotations are the level's grammatical tags, sorted by start offset.
	// Empty until the annotation stage completes for this level.
	Annotations []Annotation `json:"annotations,omitempty" yaml:"annotations,omitempty"`
}

// Annotation is a grammatical tag over the half-open byte range [Start, End)
// of a level's content.
type Annotation struct {
	// Role is the grammatical role code (e.g. "s" for subject, "v" for verb,
	// "con" for connective).
	Role string `json:"role" yaml:"role"`

	// Start is the inclusive start offset into the level content.
	Start int `json:"start" yaml:"start"`

	// End is the exclusive end offset into the level content.
	End int `json:"end" yaml:"end"`

	// Text is the exact substring content[Start:End], recorded so offset
	// integrity can be verified independently of the content string.
	Text string `json:"text" yaml:"text"`
}

// Usage counts tokens for one provider call, or a sum of calls.
type Usage struct {
	// Input is the prompt token count.
	Input int `json:"input" yaml:"input"`

	// Output is the completion token count.
	Output int `json:"output" yaml:"output"`

	// Total is the provider-reported total, usually Input+Output.
	Total int `json:"total" yaml:"total"`
}

// Add returns the element-wise sum of u and v.
func (u Usage) Add(v Usage) Usage {
	return Usage{
		Input:  u.Input + v.Input,
		Output: u.Output + v.Output,
		Total:  u.Total + v.Total,
	}
}

// IsZero reports whether no counts were recorded.
func (u Usage) IsZero() bool {
	return u == Usage{}
}
