// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package annotate

import (
	"testing"

	"github.com/pdiddy/reader-engine/internal/textseg"
)

// resolveFixture tokenizes a single-sentence content string for the tests.
func resolveFixture(t *testing.T, content string) (textseg.Sentence, []textseg.Token) {
	t.Helper()
	sents := textseg.Sentences(content)
	if len(sents) != 1 {
		t.Fatalf("fixture %q split into %d sentences, want 1", content, len(sents))
	}
	return sents[0], textseg.SentenceTokens(content, sents[0])
}

func TestResolveIndexSpan(t *testing.T) {
	content := "After the storm, the crew cleaned the deck."
	sent, toks := resolveFixture(t, content)

	anns := Resolve(content, sent, toks, []Span{{Role: "v", From: 5, To: 5, HasIndex: true}})
	if len(anns) != 1 {
		t.Fatalf("anns = %+v, want 1", anns)
	}
	if anns[0].Text != "cleaned" || content[anns[0].Start:anns[0].End] != "cleaned" {
		t.Errorf("ann = %+v, want offsets slicing to %q", anns[0], "cleaned")
	}
}

func TestResolveIndexSpanMultiWord(t *testing.T) {
	content := "After the storm, the crew cleaned the deck."
	sent, toks := resolveFixture(t, content)

	anns := Resolve(content, sent, toks, []Span{{Role: "s", From: 3, To: 4, HasIndex: true}})
	if len(anns) != 1 || anns[0].Text != "the crew" {
		t.Fatalf("anns = %+v, want span over %q", anns, "the crew")
	}
	if content[anns[0].Start:anns[0].End] != anns[0].Text {
		t.Errorf("offsets [%d,%d) do not slice back to %q", anns[0].Start, anns[0].End, anns[0].Text)
	}
}

func TestResolveSnippetFirstOccurrence(t *testing.T) {
	// "the" appears three times; the snippet form must land on the first.
	content := "After the storm, the crew cleaned the deck."
	sent, toks := resolveFixture(t, content)

	anns := Resolve(content, sent, toks, []Span{{Role: "con", Text: "the"}})
	if len(anns) != 1 {
		t.Fatalf("anns = %+v, want 1", anns)
	}
	if anns[0].Start != 6 || anns[0].End != 9 {
		t.Errorf("snippet resolved to [%d,%d), want first occurrence [6,9)", anns[0].Start, anns[0].End)
	}
}

func TestResolveSnippetConfinedToSentence(t *testing.T) {
	content := "The crew slept below. The storm returned at midnight."
	sents := textseg.Sentences(content)
	if len(sents) != 2 {
		t.Fatalf("fixture split into %d sentences, want 2", len(sents))
	}
	first := sents[0]
	toks := textseg.SentenceTokens(content, first)

	// "storm" only occurs in the second sentence; resolving against the
	// first must not reach across the boundary.
	anns := Resolve(content, first, toks, []Span{{Role: "s", Text: "storm"}})
	if len(anns) != 0 {
		t.Errorf("anns = %+v, want the out-of-sentence snippet dropped", anns)
	}

	second := sents[1]
	toks2 := textseg.SentenceTokens(content, second)
	anns = Resolve(content, second, toks2, []Span{{Role: "s", Text: "storm"}})
	if len(anns) != 1 || content[anns[0].Start:anns[0].End] != "storm" {
		t.Errorf("anns = %+v, want %q resolved inside its own sentence", anns, "storm")
	}
}

func TestResolveDropsOutOfRangeIndices(t *testing.T) {
	content := "After the storm, the crew cleaned the deck."
	sent, toks := resolveFixture(t, content)

	spans := []Span{
		{Role: "s", From: 7, To: 9, HasIndex: true},
		{Role: "s", From: -1, To: 0, HasIndex: true},
		{Role: "s", From: 4, To: 2, HasIndex: true},
	}
	if anns := Resolve(content, sent, toks, spans); len(anns) != 0 {
		t.Errorf("anns = %+v, want every out-of-range span dropped", anns)
	}
}

func TestResolveDropsAbsentSnippet(t *testing.T) {
	content := "After the storm, the crew cleaned the deck."
	sent, toks := resolveFixture(t, content)

	if anns := Resolve(content, sent, toks, []Span{{Role: "o", Text: "harbor"}}); len(anns) != 0 {
		t.Errorf("anns = %+v, want absent snippet dropped", anns)
	}
}

func TestResolveRoundTrip(t *testing.T) {
	content := "After the storm, the crew cleaned the deck."
	sent, toks := resolveFixture(t, content)

	spans := []Span{
		{Role: "prep", From: 0, To: 2, HasIndex: true},
		{Role: "s", From: 3, To: 4, HasIndex: true},
		{Role: "v", Text: "cleaned"},
		{Role: "o", Text: "the deck"},
	}
	anns := Resolve(content, sent, toks, spans)
	if len(anns) != len(spans) {
		t.Fatalf("resolved %d of %d spans", len(anns), len(spans))
	}
	for _, a := range anns {
		if content[a.Start:a.End] != a.Text {
			t.Errorf("annotation %+v: content[%d:%d] = %q", a, a.Start, a.End, content[a.Start:a.End])
		}
	}
}
