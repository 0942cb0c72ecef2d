// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package annotate

import (
	"encoding/json"
	"log/slog"
	"strconv"
	"strings"
)

// Span is one parsed annotation directive for a sentence, before offset
// resolution. The index form (HasIndex) carries inclusive word indices; the
// snippet form carries the literal text to locate.
type Span struct {
	Role     string
	Text     string
	From, To int
	HasIndex bool
}

// spanEntry is the wire shape of one constituent in a batch response.
type spanEntry struct {
	Role string `json:"role"`
	Text string `json:"text"`
	From *int   `json:"from"`
	To   *int   `json:"to"`
}

// ParseResponse extracts per-sentence spans from one batch's raw response.
// It never fails: a response with no usable JSON logs a warning and yields
// an empty result, so a malformed batch degrades to zero annotations
// instead of aborting the level. Keys must carry a numeric suffix
// ("S<digits>" or plain digits) within the batch's sentence range; entries
// must be objects with a recognized role and either word indices or a
// non-empty text snippet. Everything else is dropped silently.
func ParseResponse(log *slog.Logger, raw string, sentenceCount int) map[int][]Span {
	out := make(map[int][]Span)

	payload := extractJSON(raw)
	var keyed map[string]json.RawMessage
	if err := json.Unmarshal([]byte(payload), &keyed); err != nil {
		log.Warn("annotation response is not valid JSON", "error", err)
		return out
	}

	for key, rawVal := range keyed {
		idx, ok := sentenceIndex(key)
		if !ok || idx < 0 || idx >= sentenceCount {
			continue
		}
		var entries []json.RawMessage
		if err := json.Unmarshal(rawVal, &entries); err != nil {
			continue
		}
		for _, e := range entries {
			var ent spanEntry
			if err := json.Unmarshal(e, &ent); err != nil {
				continue
			}
			role, ok := NormalizeRole(ent.Role)
			if !ok {
				continue
			}
			switch {
			case ent.From != nil && ent.To != nil:
				out[idx] = append(out[idx], Span{Role: role, From: *ent.From, To: *ent.To, HasIndex: true})
			case strings.TrimSpace(ent.Text) != "":
				out[idx] = append(out[idx], Span{Role: role, Text: ent.Text})
			}
		}
	}
	return out
}

// sentenceIndex extracts the numeric suffix from a response key. Accepted
// forms are "S<digits>" (either case) and plain digits.
func sentenceIndex(key string) (int, bool) {
	k := strings.TrimSpace(key)
	if len(k) > 0 && (k[0] == 'S' || k[0] == 's') {
		k = k[1:]
	}
	if k == "" {
		return 0, false
	}
	n, err := strconv.Atoi(k)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// extractJSON returns the most plausible JSON payload inside raw: a fenced
// code block when present, else the span from the first '{' to the last
// '}', else raw unchanged.
func extractJSON(raw string) string {
	if block, ok := fencedBlock(raw); ok {
		return block
	}
	if i := strings.Index(raw, "{"); i >= 0 {
		if j := strings.LastIndex(raw, "}"); j > i {
			return raw[i : j+1]
		}
	}
	return raw
}

// fencedBlock returns the contents of the first ``` block whose language tag
// is empty or "json".
func fencedBlock(raw string) (string, bool) {
	const fence = "```"
	start := strings.Index(raw, fence)
	if start < 0 {
		return "", false
	}
	rest := raw[start+len(fence):]
	nl := strings.IndexByte(rest, '\n')
	if nl < 0 {
		return "", false
	}
	lang := strings.TrimSpace(rest[:nl])
	if lang != "" && !strings.EqualFold(lang, "json") {
		return "", false
	}
	rest = rest[nl+1:]
	end := strings.Index(rest, fence)
	if end < 0 {
		return "", false
	}
	return strings.TrimSpace(rest[:end]), true
}
