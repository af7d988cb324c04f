// Package rewrite produces case-adapted replacements for words in a text
// buffer.  Like tokenize, it is purely functional: callers pass immutable
// snapshots and receive new strings.
package rewrite

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/quillflow/QuillScope-Engine/internal/engine/tokenize"
)

type caseClass int

const (
	caseLower caseClass = iota
	caseUpper
	caseTitle
)

// classifyCase buckets original into ALL-UPPER, Title-Case, or lower.
// ALL-UPPER requires a real case distinction, so "123" and "" fall through
// to lower rather than matching their own upper-case forms.
func classifyCase(original string) caseClass {
	if original == "" {
		return caseLower
	}
	upper := strings.ToUpper(original)
	if original == upper && upper != strings.ToLower(original) {
		return caseUpper
	}
	if r, _ := utf8.DecodeRuneInString(original); unicode.IsUpper(r) {
		return caseTitle
	}
	return caseLower
}

// titleCaseToken upper-cases the first rune of tok and lower-cases the rest.
func titleCaseToken(tok string) string {
	r, size := utf8.DecodeRuneInString(tok)
	return string(unicode.ToUpper(r)) + strings.ToLower(tok[size:])
}

// titleCase title-cases every space-delimited token of s that starts with a
// letter; other tokens pass through unchanged.
func titleCase(s string) string {
	tokens := strings.Split(s, " ")
	for i, tok := range tokens {
		if tok == "" {
			continue
		}
		if r, _ := utf8.DecodeRuneInString(tok); !unicode.IsLetter(r) {
			continue
		}
		tokens[i] = titleCaseToken(tok)
	}
	return strings.Join(tokens, " ")
}

// PreserveCase returns replacement recased to match the casing pattern of
// original: fully upper when original is ALL-UPPER, title-cased per token
// when original is Title-Case, lower otherwise.
//
//	PreserveCase("HELLO", "world")        == "WORLD"
//	PreserveCase("Hello", "good morning") == "Good Morning"
//	PreserveCase("hello", "WORLD")        == "world"
func PreserveCase(original, replacement string) string {
	switch classifyCase(original) {
	case caseUpper:
		return strings.ToUpper(replacement)
	case caseTitle:
		return titleCase(replacement)
	default:
		return strings.ToLower(replacement)
	}
}

// ReplaceGlobally replaces every free-standing occurrence of target in s
// with replacement, matching case-insensitively and recasing each
// occurrence via PreserveCase from that occurrence's own casing.  A word is
// free-standing when it is a maximal run of word-class characters, so
// replacing "cat" leaves "cats", "catches", and "cat's" untouched.  The
// second return value is the number of occurrences replaced.
func ReplaceGlobally(s, target, replacement string) (string, int) {
	if s == "" || target == "" {
		return s, 0
	}

	var sb strings.Builder
	last := 0
	replaced := 0
	for _, frag := range tokenize.Words(s) {
		if !strings.EqualFold(frag.Word, target) {
			continue
		}
		sb.WriteString(s[last:frag.Span.Start])
		sb.WriteString(PreserveCase(frag.Word, replacement))
		last = frag.Span.End
		replaced++
	}
	if replaced == 0 {
		return s, 0
	}
	sb.WriteString(s[last:])
	return sb.String(), replaced
}
