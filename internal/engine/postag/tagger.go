// Package postag classifies single words into part-of-speech labels through
// a strictly ordered heuristic cascade: -ly and -ing suffixes, closed-class
// lookup tables, configurable suffix rules, then capitalization and length
// fallbacks.  The ordering is a contract; several checks overlap and the
// first match wins.  Tags are heuristic and admit false positives.
package postag

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/quillflow/QuillScope-Engine/internal/engine/common"
	"github.com/quillflow/QuillScope-Engine/internal/infrastructure/monitoring/logging"
	"github.com/quillflow/QuillScope-Engine/pkg/errors"
	textTypes "github.com/quillflow/QuillScope-Engine/pkg/types/text"
)

// ---------------------------------------------------------------------------
// Configuration
// ---------------------------------------------------------------------------

// SuffixRule is one configurable entry for cascade step four.  Suffix may be
// written with or without the leading dash.  Rules for -ly and -ing are
// skipped at build time because the cascade handles them first.
type SuffixRule struct {
	Suffix     string               `mapstructure:"suffix" json:"suffix"`
	Label      string               `mapstructure:"label" json:"label"`
	Confidence textTypes.Confidence `mapstructure:"confidence" json:"confidence"`
}

// Config holds the tagger configuration.
type Config struct {
	SuffixRules []SuffixRule `mapstructure:"suffix_rules" json:"suffix_rules"`
}

// DefaultConfig returns the built-in suffix rules.
func DefaultConfig() *Config {
	return &Config{SuffixRules: DefaultSuffixRules()}
}

// DefaultSuffixRules returns the ordered default rules for cascade step
// four.  Noun and adjective suffixes carry medium confidence; the ambiguous
// -er/-or/-est endings carry low.
func DefaultSuffixRules() []SuffixRule {
	return []SuffixRule{
		{Suffix: "-ness", Label: LabelNoun, Confidence: textTypes.ConfidenceMedium},
		{Suffix: "-ment", Label: LabelNoun, Confidence: textTypes.ConfidenceMedium},
		{Suffix: "-tion", Label: LabelNoun, Confidence: textTypes.ConfidenceMedium},
		{Suffix: "-sion", Label: LabelNoun, Confidence: textTypes.ConfidenceMedium},
		{Suffix: "-ity", Label: LabelNoun, Confidence: textTypes.ConfidenceMedium},
		{Suffix: "-ed", Label: LabelVerbPast, Confidence: textTypes.ConfidenceMedium},
		{Suffix: "-ful", Label: LabelAdjective, Confidence: textTypes.ConfidenceMedium},
		{Suffix: "-less", Label: LabelAdjective, Confidence: textTypes.ConfidenceMedium},
		{Suffix: "-ous", Label: LabelAdjective, Confidence: textTypes.ConfidenceMedium},
		{Suffix: "-ive", Label: LabelAdjective, Confidence: textTypes.ConfidenceMedium},
		{Suffix: "-able", Label: LabelAdjective, Confidence: textTypes.ConfidenceMedium},
		{Suffix: "-ible", Label: LabelAdjective, Confidence: textTypes.ConfidenceMedium},
		{Suffix: "-ize", Label: LabelVerb, Confidence: textTypes.ConfidenceMedium},
		{Suffix: "-ise", Label: LabelVerb, Confidence: textTypes.ConfidenceMedium},
		{Suffix: "-ify", Label: LabelVerb, Confidence: textTypes.ConfidenceMedium},
		{Suffix: "-er", Label: LabelNoun, Confidence: textTypes.ConfidenceLow},
		{Suffix: "-or", Label: LabelNoun, Confidence: textTypes.ConfidenceLow},
		{Suffix: "-est", Label: LabelAdjective, Confidence: textTypes.ConfidenceLow},
	}
}

// Validate checks every suffix rule: non-empty suffix, a label this package
// can produce, and a known confidence tier.
func (c *Config) Validate() error {
	for i, r := range c.SuffixRules {
		if normalizeSuffix(r.Suffix) == "" {
			return errors.Newf(errors.ErrCodeSuffixRuleInvalid, "suffix rule %d has empty suffix", i)
		}
		if !KnownLabel(r.Label) {
			return errors.Newf(errors.ErrCodeLabelUnknown, "suffix rule %d has unknown label %q", i, r.Label)
		}
		switch r.Confidence {
		case textTypes.ConfidenceHigh, textTypes.ConfidenceMedium, textTypes.ConfidenceLow, textTypes.ConfidenceNone:
		default:
			return errors.Newf(errors.ErrCodeSuffixRuleInvalid,
				"suffix rule %d has unknown confidence %q", i, r.Confidence)
		}
	}
	return nil
}

func normalizeSuffix(s string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), "-"))
}

// ---------------------------------------------------------------------------
// Tagger
// ---------------------------------------------------------------------------

// cascadeStep is one predicate in the ordered cascade.  ok is false when the
// step does not apply and evaluation moves to the next step.
type cascadeStep struct {
	name string
	tag  func(w wordShape) (textTypes.POSResult, bool)
}

// wordShape caches the per-word facts the cascade predicates share.
type wordShape struct {
	lower      string
	runeCount  int
	firstUpper bool
	allUpper   bool
}

func shapeOf(word string) wordShape {
	first, _ := utf8.DecodeRuneInString(word)
	upper := strings.ToUpper(word)
	return wordShape{
		lower:      fastLower(word),
		runeCount:  utf8.RuneCountInString(word),
		firstUpper: unicode.IsUpper(first),
		allUpper:   word != "" && word == upper && upper != strings.ToLower(word),
	}
}

// Tagger classifies words.  It is immutable after construction and safe for
// concurrent use; each call is independent, so batch tagging is simply
// per-word application.
type Tagger struct {
	steps   []cascadeStep
	logger  logging.Logger
	metrics common.AnalysisMetrics
}

// NewTagger builds the cascade from config.  A nil config uses the default
// suffix rules; nil logger or metrics fall back to no-ops.  Invalid suffix
// rules are the only error.
func NewTagger(config *Config, logger logging.Logger, metrics common.AnalysisMetrics) (*Tagger, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if metrics == nil {
		metrics = common.NewNoopAnalysisMetrics()
	}

	t := &Tagger{
		steps:   buildCascade(config.SuffixRules),
		logger:  logger.Named("postag"),
		metrics: metrics,
	}
	t.logger.Debug("tagger initialized",
		logging.Int("steps", len(t.steps)),
		logging.Int("suffix_rules", len(config.SuffixRules)),
	)
	return t, nil
}

// Tag classifies one word.  It is total: empty input and words no rule
// covers yield the unknown label with confidence none.
func (t *Tagger) Tag(word string) textTypes.POSResult {
	start := time.Now()
	result := t.classify(word)
	t.metrics.RecordTagging(result.Label, string(result.Confidence),
		float64(time.Since(start).Microseconds())/1000.0)
	return result
}

// TagAll classifies each word independently.
func (t *Tagger) TagAll(words []string) []textTypes.POSResult {
	results := make([]textTypes.POSResult, len(words))
	for i, w := range words {
		results[i] = t.Tag(w)
	}
	return results
}

// DisplayForm renders a result as its label plus the confidence marker,
// e.g. "adverb", "noun?", "proper noun??".
func DisplayForm(r textTypes.POSResult) string {
	return r.Label + r.Confidence.Marker()
}

func (t *Tagger) classify(word string) textTypes.POSResult {
	if word == "" {
		return textTypes.POSResult{
			Label:      LabelUnknown,
			Confidence: textTypes.ConfidenceNone,
			Rationale:  "empty word",
		}
	}
	w := shapeOf(word)
	for _, step := range t.steps {
		if r, ok := step.tag(w); ok {
			return r
		}
	}
	return textTypes.POSResult{
		Label:      LabelUnknown,
		Confidence: textTypes.ConfidenceNone,
		Rationale:  "no rule matched",
	}
}

// ---------------------------------------------------------------------------
// Cascade construction
// ---------------------------------------------------------------------------

func buildCascade(rules []SuffixRule) []cascadeStep {
	steps := []cascadeStep{
		suffixStep("ly", LabelAdverb, textTypes.ConfidenceHigh),
		suffixStep("ing", LabelVerbGerund, textTypes.ConfidenceHigh),
	}

	for _, table := range closedClassTables() {
		steps = append(steps, tableStep(table))
	}

	for _, r := range rules {
		suffix := normalizeSuffix(r.Suffix)
		if suffix == "ly" || suffix == "ing" {
			continue // handled by the fixed leading steps
		}
		steps = append(steps, suffixStep(suffix, r.Label, r.Confidence))
	}

	steps = append(steps,
		cascadeStep{
			name: "capitalization",
			tag: func(w wordShape) (textTypes.POSResult, bool) {
				if w.firstUpper && !w.allUpper && w.runeCount > 2 {
					return textTypes.POSResult{
						Label:      LabelProperNoun,
						Confidence: textTypes.ConfidenceLow,
						Rationale:  "capitalized word",
					}, true
				}
				return textTypes.POSResult{}, false
			},
		},
		cascadeStep{
			name: "short word",
			tag: func(w wordShape) (textTypes.POSResult, bool) {
				if w.runeCount <= 3 {
					return textTypes.POSResult{
						Label:      LabelFunctionWord,
						Confidence: textTypes.ConfidenceLow,
						Rationale:  "short word",
					}, true
				}
				return textTypes.POSResult{}, false
			},
		},
	)
	return steps
}

func suffixStep(suffix, label string, confidence textTypes.Confidence) cascadeStep {
	rationale := "suffix -" + suffix
	return cascadeStep{
		name: rationale,
		tag: func(w wordShape) (textTypes.POSResult, bool) {
			if len(w.lower) > len(suffix) && strings.HasSuffix(w.lower, suffix) {
				return textTypes.POSResult{
					Label:      label,
					Confidence: confidence,
					Rationale:  rationale,
				}, true
			}
			return textTypes.POSResult{}, false
		},
	}
}

func tableStep(table closedClass) cascadeStep {
	rationale := "closed class: " + table.name
	return cascadeStep{
		name: rationale,
		tag: func(w wordShape) (textTypes.POSResult, bool) {
			if _, ok := table.words[w.lower]; ok {
				return textTypes.POSResult{
					Label:      table.label,
					Confidence: textTypes.ConfidenceHigh,
					Rationale:  rationale,
				}, true
			}
			return textTypes.POSResult{}, false
		},
	}
}

// fastLower returns s unchanged when it contains no ASCII uppercase letters,
// avoiding an allocation on the common all-lowercase path.
func fastLower(s string) string {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if 'A' <= c && c <= 'Z' {
			return strings.ToLower(s)
		}
	}
	// Non-ASCII uppercase still needs the slow path.
	for _, r := range s {
		if unicode.IsUpper(r) {
			return strings.ToLower(s)
		}
	}
	return s
}
