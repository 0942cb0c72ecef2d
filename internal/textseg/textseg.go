// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package textseg splits article text into sentence and word units carrying
// exact byte offsets into the original string. Offsets are half-open
// [start, end) ranges; slicing the content with them reproduces the unit
// text exactly. Tokenization never fails: empty or punctuation-only input
// yields empty sequences.
package textseg

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Sentence is a contiguous run of characters within the content, identified
// by a zero-based ordinal. Sentences are non-overlapping and ordered by
// start offset.
type Sentence struct {
	ID    int
	Start int
	End   int
	Text  string
}

// Token is an addressable word unit with a zero-based sequence index and an
// exact byte range into the content.
type Token struct {
	ID    int
	Start int
	End   int
	Text  string
}

// sentenceStarters lists words that commonly begin an English sentence.
// After a capital-letter-plus-period segment (a likely middle initial), the
// following segment is merged back unless it starts with one of these. The
// lookup is case-insensitive.
var sentenceStarters = map[string]struct{}{}

func init() {
	for _, w := range []string{
		"a", "an", "the",
		"i", "you", "he", "she", "it", "we", "they",
		"my", "your", "his", "her", "its", "our", "their",
		"this", "that", "these", "those", "there", "here",
		"and", "but", "or", "so", "yet", "nor", "because",
		"however", "meanwhile", "moreover", "instead", "also", "still",
		"then", "now", "today", "yesterday", "tomorrow",
		"finally", "later", "next", "soon", "first", "second",
		"in", "on", "at", "by", "with", "from", "to", "of",
		"after", "before", "during", "since", "as",
		"when", "while", "if", "although", "though",
		"some", "many", "most", "several", "one", "two",
		"not", "no", "what", "who", "how", "why", "where",
	} {
		sentenceStarters[w] = struct{}{}
	}
}

// Sentences splits content into ordered sentences. The baseline pass breaks
// after a terminator run (".", "!", "?", the ellipsis, plus any trailing
// closing quotes or brackets) followed by whitespace, and at line breaks.
// A correction pass then re-joins breaks caused by middle initials: a
// segment ending in a single capital letter plus period is merged with the
// next segment unless that segment begins with a sentence-starter word.
func Sentences(content string) []Sentence {
	segs := splitSegments(content)
	segs = mergeInitials(content, segs)

	sents := make([]Sentence, 0, len(segs))
	for i, sg := range segs {
		sents = append(sents, Sentence{
			ID:    i,
			Start: sg.start,
			End:   sg.end,
			Text:  content[sg.start:sg.end],
		})
	}
	return sents
}

type segment struct {
	start, end int
}

func splitSegments(content string) []segment {
	var segs []segment
	n := len(content)
	i := 0
	start := -1

	flush := func(end int) {
		text := strings.TrimRightFunc(content[start:end], unicode.IsSpace)
		if text != "" {
			segs = append(segs, segment{start, start + len(text)})
		}
		start = -1
	}

	for i < n {
		r, size := utf8.DecodeRuneInString(content[i:])
		if start < 0 {
			if unicode.IsSpace(r) {
				i += size
				continue
			}
			start = i
		}
		if r == '\n' {
			flush(i)
			i += size
			continue
		}
		if isTerminator(r) {
			j := i + size
			for j < n {
				r2, s2 := utf8.DecodeRuneInString(content[j:])
				if isTerminator(r2) || isCloser(r2) {
					j += s2
					continue
				}
				break
			}
			if j >= n || beginsWithSpace(content[j:]) {
				segs = append(segs, segment{start, j})
				start = -1
				i = j
				continue
			}
			// Terminator inside a word, e.g. "3.14" or "v2.0".
			i = j
			continue
		}
		i += size
	}
	if start >= 0 {
		flush(n)
	}
	return segs
}

func isTerminator(r rune) bool {
	switch r {
	case '.', '!', '?', '…':
		return true
	}
	return false
}

func isCloser(r rune) bool {
	switch r {
	case '"', '\'', '”', '’', ')', ']', '»':
		return true
	}
	return false
}

func beginsWithSpace(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsSpace(r)
}

// mergeInitials re-joins segments split after a likely middle initial. The
// trade-off runs both ways: a real sentence break after an initial is lost
// unless the next segment starts with a starter word.
func mergeInitials(content string, segs []segment) []segment {
	if len(segs) < 2 {
		return segs
	}
	merged := []segment{segs[0]}
	for _, next := range segs[1:] {
		cur := &merged[len(merged)-1]
		if endsWithInitial(content[cur.start:cur.end]) && !startsWithStarter(content[next.start:next.end]) {
			cur.end = next.end
			continue
		}
		merged = append(merged, next)
	}
	return merged
}

// endsWithInitial reports whether the segment's final word is a single
// capital letter followed by a period, e.g. "W.".
func endsWithInitial(seg string) bool {
	fields := strings.Fields(seg)
	if len(fields) == 0 {
		return false
	}
	last := fields[len(fields)-1]
	head, ok := strings.CutSuffix(last, ".")
	if !ok || head == "" {
		return false
	}
	r, size := utf8.DecodeRuneInString(head)
	return size == len(head) && unicode.IsUpper(r)
}

// startsWithStarter reports whether the segment's first word is in the
// sentence-starter list.
func startsWithStarter(seg string) bool {
	fields := strings.Fields(seg)
	if len(fields) == 0 {
		return false
	}
	w := strings.TrimFunc(fields[0], func(r rune) bool { return !unicode.IsLetter(r) })
	if w == "" {
		return false
	}
	_, ok := sentenceStarters[strings.ToLower(w)]
	return ok
}

// Tokens splits content into word tokens. A token starts at a letter or
// digit and continues through letters, digits, and an apostrophe directly
// followed by a letter ("don't" is one token). Punctuation and whitespace
// are dropped; kept tokens get zero-based contiguous IDs.
func Tokens(content string) []Token {
	return scanTokens(content, 0, len(content))
}

// SentenceTokens returns the tokens of one sentence with sentence-local
// zero-based IDs and global byte offsets.
func SentenceTokens(content string, s Sentence) []Token {
	return scanTokens(content, s.Start, s.End)
}

func scanTokens(content string, lo, hi int) []Token {
	var toks []Token
	i := lo
	for i < hi {
		r, size := utf8.DecodeRuneInString(content[i:hi])
		if !isWordRune(r) {
			i += size
			continue
		}
		start := i
		i += size
		for i < hi {
			r2, s2 := utf8.DecodeRuneInString(content[i:hi])
			if isWordRune(r2) {
				i += s2
				continue
			}
			if (r2 == '\'' || r2 == '’') && i+s2 < hi {
				r3, _ := utf8.DecodeRuneInString(content[i+s2 : hi])
				if unicode.IsLetter(r3) {
					i += s2
					continue
				}
			}
			break
		}
		toks = append(toks, Token{
			ID:    len(toks),
			Start: start,
			End:   i,
			Text:  content[start:i],
		})
	}
	return toks
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// Paragraphs groups sentences into paragraphs: a sentence starts a new
// paragraph when the raw gap between it and the previous sentence contains a
// line break. Grouping never changes offsets; it only sizes batches.
func Paragraphs(content string, sents []Sentence) [][]Sentence {
	var paras [][]Sentence
	for i, s := range sents {
		if i == 0 || strings.ContainsRune(content[sents[i-1].End:s.Start], '\n') {
			paras = append(paras, []Sentence{s})
			continue
		}
		paras[len(paras)-1] = append(paras[len(paras)-1], s)
	}
	return paras
}
