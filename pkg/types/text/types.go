// Package text defines the shared result types produced by the lexical
// analysis engine.  No analysis logic lives here, only plain data types
// consumed by the engine packages, the application layer, and the CLI.
package text

// Span is a half-open [Start, End) byte-offset range into a text buffer.
// Invariant: 0 <= Start <= End <= len(buffer).
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len returns the byte length of the span.
func (s Span) Len() int {
	return s.End - s.Start
}

// Empty reports whether the span covers no bytes.
func (s Span) Empty() bool {
	return s.Start >= s.End
}

// WordFragment is the maximal run of word-class characters containing a
// given offset.  Word is empty when the offset lies on a boundary, in which
// case Span.Start == Span.End == the queried offset.
type WordFragment struct {
	Word string `json:"word"`
	Span Span   `json:"span"`
}

// Empty reports whether the fragment contains no word.
func (f WordFragment) Empty() bool {
	return f.Word == ""
}

// SentenceBounds is the span of the sentence containing a given offset,
// delimited by sentence terminators (. ! ? newline) or buffer edges.  End is
// inclusive of the terminator when one exists.
type SentenceBounds struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Confidence is the coarse reliability tier attached to a heuristic
// classification.  It is a label, not a calibrated probability.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
	ConfidenceNone   Confidence = "none"
)

// Marker returns the display suffix for the confidence tier: nothing for
// high, "?" for medium, "??" for low and none.
func (c Confidence) Marker() string {
	switch c {
	case ConfidenceHigh:
		return ""
	case ConfidenceMedium:
		return "?"
	default:
		return "??"
	}
}

// WeakMatch is one detected weak word or phrase occurrence.  Suggestion is
// empty when the recommended action is removal or when no replacement is
// known.  A WeakMatch is valid only for the text buffer it was computed from.
type WeakMatch struct {
	Text       string `json:"text"`
	Span       Span   `json:"span"`
	Category   string `json:"category"`
	Suggestion string `json:"suggestion,omitempty"`
}

// POSResult is one part-of-speech tagging outcome for one word.
type POSResult struct {
	Label      string     `json:"label"`
	Confidence Confidence `json:"confidence"`
	Rationale  string     `json:"rationale,omitempty"`
}

// Keyword is one extracted topic term with its ranking score.  Score is a
// raw occurrence count under the frequency algorithm and a TF-IDF value
// under the tfidf algorithm; Count is always the raw occurrence count.
type Keyword struct {
	Term  string  `json:"term"`
	Score float64 `json:"score"`
	Count int     `json:"count"`
}

// Grade is the qualitative band assigned to a writing-strength score.
type Grade string

const (
	GradeExcellent Grade = "Excellent"
	GradeGood      Grade = "Good"
	GradeFair      Grade = "Fair"
	GradeWeak      Grade = "Weak"
	GradeVeryWeak  Grade = "Very Weak"
)

// StrengthReport aggregates weak-language findings into a single score.
type StrengthReport struct {
	Score          float64        `json:"score"`
	Grade          Grade          `json:"grade"`
	Density        float64        `json:"density"`
	WordCount      int            `json:"word_count"`
	MatchCount     int            `json:"match_count"`
	CategoryCounts map[string]int `json:"category_counts"`
}
