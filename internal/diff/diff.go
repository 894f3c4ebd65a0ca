// Package diff computes word-level alignments between an original text and
// its rewritten version.
package diff

import (
	"strings"
	"unicode"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Kind classifies a span relative to the original text.
type Kind string

const (
	Unchanged Kind = "unchanged"
	Added     Kind = "added"
	Removed   Kind = "removed"
)

// Span is a contiguous run of text tagged with how it changed. Spans follow
// the revised document's left-to-right order; removed spans are
// informational and do not shift the position of subsequent spans.
type Span struct {
	Text string `json:"text"`
	Kind Kind   `json:"kind"`
}

// Spans computes a minimal word-granularity alignment between original and
// revised. Tokens are maximal runs of word characters, whitespace, or
// punctuation, so "Hello" survives unchanged when "Hello," gains a comma.
// Concatenating unchanged and added spans reproduces the revised text
// exactly. Output is deterministic: equal inputs always produce
// byte-identical spans.
func Spans(original, revised string) []Span {
	if original == "" && revised == "" {
		return nil
	}

	tokens := newTokenIndex()
	chars1 := tokens.encode(tokenize(original))
	chars2 := tokens.encode(tokenize(revised))

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(chars1, chars2, false)

	spans := make([]Span, 0, len(diffs))
	for _, d := range diffs {
		text := tokens.decode(d.Text)
		if text == "" {
			continue
		}
		spans = append(spans, Span{Text: text, Kind: kindOf(d.Type)})
	}
	return spans
}

func kindOf(op diffmatchpatch.Operation) Kind {
	switch op {
	case diffmatchpatch.DiffInsert:
		return Added
	case diffmatchpatch.DiffDelete:
		return Removed
	default:
		return Unchanged
	}
}

// tokenClass buckets runes for tokenization: words, whitespace, and
// everything else (punctuation and symbols).
type tokenClass int

const (
	classWord tokenClass = iota
	classSpace
	classOther
)

func classify(r rune) tokenClass {
	switch {
	case unicode.IsSpace(r):
		return classSpace
	case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_':
		return classWord
	default:
		return classOther
	}
}

// tokenize splits text into maximal runs of a single token class. The
// concatenation of all tokens is the input, byte for byte.
func tokenize(text string) []string {
	var tokens []string
	start := 0
	var prev tokenClass

	for i, r := range text {
		class := classify(r)
		if i > 0 && class != prev {
			tokens = append(tokens, text[start:i])
			start = i
		}
		prev = class
	}
	if start < len(text) {
		tokens = append(tokens, text[start:])
	}
	return tokens
}

// tokenIndex maps distinct tokens to single runes so the diff runs over the
// word sequence instead of characters, then maps the diff output back
// through the table. Same idea as the diff library's line-mode encoding,
// applied at word granularity.
type tokenIndex struct {
	table []string
	index map[string]rune
}

func newTokenIndex() *tokenIndex {
	return &tokenIndex{
		table: []string{""}, // ordinal 0 unused
		index: make(map[string]rune),
	}
}

// Ordinals at or above the UTF-16 surrogate floor are shifted past the
// surrogate block, which cannot be carried in a Go string. Without the
// shift, vocabularies past ~55k distinct tokens would all collapse onto
// U+FFFD and collide.
const (
	surrogateMin = 0xD800
	surrogateGap = 0x800
)

func tokenRune(ordinal int) rune {
	if ordinal >= surrogateMin {
		ordinal += surrogateGap
	}
	return rune(ordinal)
}

func tokenOrdinal(r rune) int {
	if r >= surrogateMin {
		return int(r) - surrogateGap
	}
	return int(r)
}

func (t *tokenIndex) encode(tokens []string) string {
	var sb strings.Builder
	for _, tok := range tokens {
		r, ok := t.index[tok]
		if !ok {
			r = tokenRune(len(t.table))
			t.index[tok] = r
			t.table = append(t.table, tok)
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// decode expands an encoded diff text back into the tokens it stands for.
func (t *tokenIndex) decode(encoded string) string {
	var sb strings.Builder
	for _, r := range encoded {
		sb.WriteString(t.table[tokenOrdinal(r)])
	}
	return sb.String()
}
