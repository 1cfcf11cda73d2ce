package absa

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// ImplicitTarget is the term SemEval uses for opinions without a literal
// target. Its span is 0:0 and never checked.
const ImplicitTarget = "NULL"

// UnknownOffset is the From and To of a term kept although its offsets could
// not be read. Such a span never matches.
const UnknownOffset = -1

// RuneLen returns the length of s in characters. All offsets of the model
// count characters, not bytes.
func RuneLen(s string) int {
	return utf8.RuneCountInString(s)
}

// Span returns the characters [from, to) of text. ok is false if the range
// does not fit in text; the returned string is then the clamped range.
func Span(text string, from, to int) (string, bool) {
	runes := []rune(text)
	ok := from >= 0 && to >= from && to <= len(runes)

	if from < 0 {
		from = 0
	}
	if to > len(runes) {
		to = len(runes)
	}
	if from > to {
		return "", false
	}
	return string(runes[from:to]), ok
}

// Normalize folds s for span comparison: NFC, lower case and collapsed
// whitespace.
func Normalize(s string) string {
	s = norm.NFC.String(s)
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// SpanMatches reports whether the span of t in text equals its term after
// normalization. Implicit targets always match.
func (t AspectTerm) SpanMatches(text string) bool {
	if t.Term == ImplicitTarget {
		return true
	}
	span, ok := Span(text, t.From, t.To)
	if !ok {
		return false
	}
	return Normalize(span) == Normalize(t.Term)
}
