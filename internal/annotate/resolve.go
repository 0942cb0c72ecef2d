// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package annotate

import (
	"strings"

	"github.com/pdiddy/reader-engine/internal/textseg"
	"github.com/pdiddy/reader-engine/pkg/types"
)

// Resolve maps one sentence's parsed spans onto annotations with global byte
// offsets into content.
//
// Index spans resolve through the sentence's token table: start and end come
// straight from the from/to tokens, so repeated words are never ambiguous.
// Snippet spans fall back to the first literal occurrence of the text
// scanning left to right, strictly within the sentence's own range; a
// snippet repeated inside the sentence therefore always resolves to its
// first occurrence. Spans that cannot be resolved (indices out of range,
// snippet absent from the sentence) are dropped; resolution is best-effort
// and never fails.
func Resolve(content string, sentence textseg.Sentence, tokens []textseg.Token, spans []Span) []types.Annotation {
	var anns []types.Annotation
	for _, sp := range spans {
		if sp.HasIndex {
			if sp.From < 0 || sp.To < sp.From || sp.To >= len(tokens) {
				continue
			}
			start := tokens[sp.From].Start
			end := tokens[sp.To].End
			anns = append(anns, types.Annotation{
				Role:  sp.Role,
				Start: start,
				End:   end,
				Text:  content[start:end],
			})
			continue
		}
		local := strings.Index(content[sentence.Start:sentence.End], sp.Text)
		if local < 0 {
			continue
		}
		start := sentence.Start + local
		anns = append(anns, types.Annotation{
			Role:  sp.Role,
			Start: start,
			End:   start + len(sp.Text),
			Text:  sp.Text,
		})
	}
	return anns
}
