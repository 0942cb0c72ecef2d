// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package annotate turns a difficulty level's text into grammatical
// annotations with global byte offsets. It plans per-paragraph request
// batches, parses provider responses tolerantly, resolves local word indices
// or text snippets to exact character ranges, and runs the per-level loop
// with resume support.
package annotate

import (
	"github.com/pdiddy/reader-engine/internal/textseg"
)

// minParagraphWords is the smallest paragraph worth a provider request.
// Shorter paragraphs carry too little grammatical content to annotate.
const minParagraphWords = 4

// Batch groups one paragraph's sentences for a single provider request.
// Sentence and word numbering in the rendered prompt is local to the batch
// and resets with every batch.
type Batch struct {
	// Index is the batch's zero-based position within the level.
	Index int

	// Sentences are the paragraph's sentences with global offsets.
	Sentences []textseg.Sentence

	// Tokens holds each sentence's word tokens, parallel to Sentences.
	// Token IDs are sentence-local and zero-based; offsets are global.
	Tokens [][]textseg.Token
}

// Plan splits content into per-paragraph batches. Paragraphs with fewer than
// minParagraphWords words are skipped entirely. Empty content yields no
// batches, which the caller treats as nothing to annotate.
func Plan(content string) []Batch {
	sents := textseg.Sentences(content)
	paras := textseg.Paragraphs(content, sents)

	var batches []Batch
	for _, para := range paras {
		toks := make([][]textseg.Token, 0, len(para))
		words := 0
		for _, s := range para {
			st := textseg.SentenceTokens(content, s)
			words += len(st)
			toks = append(toks, st)
		}
		if words < minParagraphWords {
			continue
		}
		batches = append(batches, Batch{
			Index:     len(batches),
			Sentences: para,
			Tokens:    toks,
		})
	}
	return batches
}
