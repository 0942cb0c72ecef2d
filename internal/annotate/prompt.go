// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package annotate

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

// batchPromptTmpl is the prompt sent to the provider for one batch of
// sentences. It asks for word-index ranges first and allows an exact-text
// snippet only when indices cannot express a constituent; the resolver
// treats snippets as a fallback.
var batchPromptTmpl = template.Must(template.New("annotate").Parse(`You are a grammar annotation system for language learners. For every numbered sentence below, identify its grammatical constituents.

Respond with a single JSON object whose keys are the sentence labels ("S0" through "S{{.Last}}"). Each value must be an array of constituent objects:
- {"role": "<code>", "from": <first word index>, "to": <last word index>} using the bracketed word numbers, inclusive on both ends; or
- {"role": "<code>", "text": "<exact words copied from the sentence>"} only if a constituent cannot be expressed as word indices.

Role codes: s=subject, v=verb, o=object, io=indirect object, c=complement, rel=relative clause, prep=prepositional phrase, adv=adverbial, app=appositive, pass=passive marker, con=connective, inf=infinitive, ger=gerund, part=participle.

Tag every sentence. Use an empty array for a sentence with nothing to tag. Do not include any text outside the JSON object.

Example response:
{"S0": [{"role": "s", "from": 0, "to": 1}, {"role": "v", "from": 2, "to": 2}], "S1": []}

Sentences:
{{.Sentences}}
`))

// RenderPrompt renders one batch into its request payload. Sentences are
// labeled S0..Sn-1 for this batch only, and each sentence's words carry
// bracketed zero-based indices:
//
//	S0: [0]The [1]cat [2]sat
func RenderPrompt(b Batch) (string, error) {
	var lines []string
	for i, toks := range b.Tokens {
		var sb strings.Builder
		fmt.Fprintf(&sb, "S%d:", i)
		for _, tok := range toks {
			fmt.Fprintf(&sb, " [%d]%s", tok.ID, tok.Text)
		}
		lines = append(lines, sb.String())
	}

	var buf bytes.Buffer
	data := struct {
		Last      int
		Sentences string
	}{
		Last:      len(b.Sentences) - 1,
		Sentences: strings.Join(lines, "\n"),
	}
	if err := batchPromptTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
