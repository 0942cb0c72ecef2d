// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package annotate

import (
	"strings"
	"testing"
)

func TestRenderPromptNumbering(t *testing.T) {
	batches := Plan("The cat sat on the mat. The dog barked loudly.")
	if len(batches) != 1 {
		t.Fatalf("got %d batches, want 1", len(batches))
	}
	prompt, err := RenderPrompt(batches[0])
	if err != nil {
		t.Fatalf("RenderPrompt: %v", err)
	}

	for _, want := range []string{
		`"S0" through "S1"`,
		"S0: [0]The [1]cat [2]sat [3]on [4]the [5]mat",
		"S1: [0]The [1]dog [2]barked [3]loudly",
		"Example response:",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestRenderPromptNumberingResetsPerBatch(t *testing.T) {
	batches := Plan("Storms battered the coast all night.\n\nCleanup crews arrived at dawn today.")
	if len(batches) != 2 {
		t.Fatalf("got %d batches, want 2", len(batches))
	}
	prompt, err := RenderPrompt(batches[1])
	if err != nil {
		t.Fatalf("RenderPrompt: %v", err)
	}
	if !strings.Contains(prompt, "S0: [0]Cleanup") {
		t.Errorf("second batch should restart at S0 and word 0:\n%s", prompt)
	}
	if strings.Contains(prompt, "S1:") {
		t.Errorf("second batch rendered a sentence it does not contain:\n%s", prompt)
	}
}
