// Package tokenize locates word and sentence boundaries in Unicode text.
// Everything here is a pure function over an immutable text snapshot; the
// caller owns the buffer and offsets are byte positions into it.
package tokenize

import (
	"unicode"
	"unicode/utf8"

	textTypes "github.com/quillflow/QuillScope-Engine/pkg/types/text"
)

// Apostrophe and hyphen variants that join a word rather than end it.
const (
	apostrophe         = '\''
	modifierApostrophe = 'ʼ'
	rightSingleQuote   = '’'
	hyphenMinus        = '-'
	hyphen             = '‐'
	nonBreakingHyphen  = '‑'
)

// isWordRune reports whether r belongs to the word class: Unicode letters,
// Unicode numbers, apostrophe variants, and hyphen variants.
func isWordRune(r rune) bool {
	if unicode.IsLetter(r) || unicode.IsNumber(r) {
		return true
	}
	switch r {
	case apostrophe, modifierApostrophe, rightSingleQuote:
		return true
	case hyphenMinus, hyphen, nonBreakingHyphen:
		return true
	}
	return false
}

// isTerminatorByte reports whether b ends a sentence.  All terminators are
// single ASCII bytes, which never occur inside a UTF-8 multi-byte sequence,
// so byte-wise scanning is rune-safe.
func isTerminatorByte(b byte) bool {
	switch b {
	case '.', '!', '?', '\n':
		return true
	}
	return false
}

// clampOffset forces offset into [0, len(s)] and snaps it back onto a rune
// boundary so that a multi-byte character is never split.
func clampOffset(s string, offset int) int {
	if offset < 0 {
		return 0
	}
	if offset > len(s) {
		return len(s)
	}
	for offset > 0 && offset < len(s) && !utf8.RuneStart(s[offset]) {
		offset--
	}
	return offset
}

// WordFragmentAt returns the maximal run of word-class characters containing
// offset.  The result satisfies span.Start <= offset <= span.End for every
// in-range offset.  When offset sits on a boundary between non-word runs the
// fragment is empty with Start == End == offset.
func WordFragmentAt(s string, offset int) textTypes.WordFragment {
	offset = clampOffset(s, offset)

	start := offset
	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(s[:start])
		if !isWordRune(r) {
			break
		}
		start -= size
	}

	end := offset
	for end < len(s) {
		r, size := utf8.DecodeRuneInString(s[end:])
		if !isWordRune(r) {
			break
		}
		end += size
	}

	return textTypes.WordFragment{
		Word: s[start:end],
		Span: textTypes.Span{Start: start, End: end},
	}
}

// SentenceBoundsAt returns the span of the sentence containing offset.
// Start is one past the nearest terminator at or before offset, clamped to
// 0; End is one past the nearest terminator at or after offset, or len(s)
// when none follows.  Consecutive terminators yield an empty sentence.
func SentenceBoundsAt(s string, offset int) textTypes.SentenceBounds {
	offset = clampOffset(s, offset)

	start := 0
	p := offset
	if p >= len(s) {
		p = len(s) - 1
	}
	for ; p >= 0; p-- {
		if isTerminatorByte(s[p]) {
			start = p + 1
			break
		}
	}

	end := len(s)
	for q := offset; q < len(s); q++ {
		if isTerminatorByte(s[q]) {
			end = q + 1
			break
		}
	}

	return textTypes.SentenceBounds{Start: start, End: end}
}

// Words returns every word in s in document order with its span.  A run of
// word-class characters counts as a word only if it contains at least one
// letter or number, so stray hyphens and quotes are not words.
func Words(s string) []textTypes.WordFragment {
	var words []textTypes.WordFragment
	i := 0
	for i < len(s) {
		r, size := utf8.DecodeRuneInString(s[i:])
		if !isWordRune(r) {
			i += size
			continue
		}

		start := i
		substantive := unicode.IsLetter(r) || unicode.IsNumber(r)
		i += size
		for i < len(s) {
			r2, size2 := utf8.DecodeRuneInString(s[i:])
			if !isWordRune(r2) {
				break
			}
			if unicode.IsLetter(r2) || unicode.IsNumber(r2) {
				substantive = true
			}
			i += size2
		}

		if substantive {
			words = append(words, textTypes.WordFragment{
				Word: s[start:i],
				Span: textTypes.Span{Start: start, End: i},
			})
		}
	}
	return words
}

// WordCount returns the number of words in s, as defined by Words, without
// allocating the fragment slice.
func WordCount(s string) int {
	count := 0
	i := 0
	for i < len(s) {
		r, size := utf8.DecodeRuneInString(s[i:])
		if !isWordRune(r) {
			i += size
			continue
		}

		substantive := unicode.IsLetter(r) || unicode.IsNumber(r)
		i += size
		for i < len(s) {
			r2, size2 := utf8.DecodeRuneInString(s[i:])
			if !isWordRune(r2) {
				break
			}
			if unicode.IsLetter(r2) || unicode.IsNumber(r2) {
				substantive = true
			}
			i += size2
		}

		if substantive {
			count++
		}
	}
	return count
}
