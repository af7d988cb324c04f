package weaklang

import (
	"strings"
	"sync"
	"time"

	"github.com/quillflow/QuillScope-Engine/internal/engine/common"
	"github.com/quillflow/QuillScope-Engine/internal/engine/tokenize"
	"github.com/quillflow/QuillScope-Engine/internal/infrastructure/monitoring/logging"
	textTypes "github.com/quillflow/QuillScope-Engine/pkg/types/text"
)

// ---------------------------------------------------------------------------
// Configuration
// ---------------------------------------------------------------------------

// Default markers used by Flag when the caller passes empty ones.
const (
	DefaultLeftMarker  = "«" // U+00AB
	DefaultRightMarker = "»" // U+00BB
)

const matcherCacheName = "matcher"

// Config holds the detector configuration.
type Config struct {
	Rules       RuleSet `mapstructure:"rules" json:"rules"`
	LeftMarker  string  `mapstructure:"left_marker" json:"left_marker"`
	RightMarker string  `mapstructure:"right_marker" json:"right_marker"`
}

// DefaultConfig returns the built-in rule set and the « » markers.
func DefaultConfig() *Config {
	return &Config{
		Rules:       DefaultRuleSet(),
		LeftMarker:  DefaultLeftMarker,
		RightMarker: DefaultRightMarker,
	}
}

// ---------------------------------------------------------------------------
// Detector
// ---------------------------------------------------------------------------

// Detector finds weak language in text and derives density, strength and
// flagged renditions from the matches.  The rule set compiles lazily on
// first use and stays cached until Invalidate or SetRules.  A Detector is
// safe for concurrent use.
type Detector struct {
	mu          sync.RWMutex
	rules       RuleSet
	matcher     *matcher
	leftMarker  string
	rightMarker string
	logger      logging.Logger
	metrics     common.AnalysisMetrics
}

// NewDetector creates a detector.  A nil config, empty category list, nil
// suggestion table, nil logger or nil metrics each fall back to defaults.
// Rule problems surface from the first operation that compiles, or from an
// explicit Compile call.
func NewDetector(config *Config, logger logging.Logger, metrics common.AnalysisMetrics) *Detector {
	if config == nil {
		config = DefaultConfig()
	}
	rules := config.Rules
	if len(rules.Categories) == 0 {
		rules.Categories = DefaultRuleSet().Categories
	}
	if rules.Suggestions == nil {
		rules.Suggestions = DefaultRuleSet().Suggestions
	}
	left := config.LeftMarker
	if left == "" {
		left = DefaultLeftMarker
	}
	right := config.RightMarker
	if right == "" {
		right = DefaultRightMarker
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if metrics == nil {
		metrics = common.NewNoopAnalysisMetrics()
	}

	return &Detector{
		rules:       rules,
		leftMarker:  left,
		rightMarker: right,
		logger:      logger.Named("weaklang"),
		metrics:     metrics,
	}
}

// Compile forces compilation of the current rule set, so callers can surface
// configuration errors at startup instead of on the first detection.
func (d *Detector) Compile() error {
	_, err := d.ensure()
	return err
}

// Invalidate drops the compiled matcher.  The next operation recompiles from
// the current rules.
func (d *Detector) Invalidate() {
	d.mu.Lock()
	d.matcher = nil
	d.mu.Unlock()
}

// SetRules compiles rs and, only on success, swaps it in atomically.  On
// failure the previous rules stay active, so a bad reload never degrades a
// running detector.
func (d *Detector) SetRules(rs RuleSet) error {
	m, err := d.compileAndRecord(rs)
	if err != nil {
		return err
	}
	d.mu.Lock()
	d.rules = rs
	d.matcher = m
	d.mu.Unlock()
	return nil
}

// Rules returns a copy of the active rule set.
func (d *Detector) Rules() RuleSet {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := RuleSet{
		Categories:  make([]CategoryRule, len(d.rules.Categories)),
		Suggestions: make(map[string]string, len(d.rules.Suggestions)),
	}
	copy(out.Categories, d.rules.Categories)
	for k, v := range d.rules.Suggestions {
		out.Suggestions[k] = v
	}
	return out
}

// ---------------------------------------------------------------------------
// Detection
// ---------------------------------------------------------------------------

// Detect returns every weak-language match in text, sorted by ascending
// start offset; matches starting at the same offset keep category order.
// Overlapping matches are all reported.  Suggestions from the configured
// table are attached where available.  Empty text yields an empty slice.
func (d *Detector) Detect(text string) ([]textTypes.WeakMatch, error) {
	if text == "" {
		return []textTypes.WeakMatch{}, nil
	}
	m, err := d.ensure()
	if err != nil {
		return nil, err
	}
	return d.scan(m, text), nil
}

// Suggest returns the configured replacement for a weak word.  The lookup is
// keyed by the lowercased word; words whose recommended fix is removal, and
// unknown words, yield ok == false.  The category mirrors the detection
// result shape and does not narrow the lookup.
func (d *Detector) Suggest(word, category string) (string, bool) {
	_ = category
	d.mu.RLock()
	suggestion, present := d.rules.Suggestions[strings.ToLower(word)]
	d.mu.RUnlock()
	if !present || suggestion == "" {
		return "", false
	}
	return suggestion, true
}

// Density returns weak-language matches per hundred words.  Text with no
// words has density zero.
func (d *Detector) Density(text string) (float64, error) {
	matches, err := d.Detect(text)
	if err != nil {
		return 0, err
	}
	return density(len(matches), tokenize.WordCount(text)), nil
}

// WritingStrength scores text from 0 to 100.  The base score is
// 100 - 2*density, with an extra 2-point penalty per match in the
// top-severity category, clamped to [0, 100] at each step.
func (d *Detector) WritingStrength(text string) (*textTypes.StrengthReport, error) {
	if text == "" {
		return &textTypes.StrengthReport{
			Score:          100,
			Grade:          textTypes.GradeExcellent,
			CategoryCounts: map[string]int{},
		}, nil
	}

	m, err := d.ensure()
	if err != nil {
		return nil, err
	}

	matches := d.scan(m, text)
	wordCount := tokenize.WordCount(text)
	dens := density(len(matches), wordCount)

	counts := make(map[string]int, len(matches))
	for _, match := range matches {
		counts[match.Category]++
	}

	score := clampScore(100 - dens*2)
	score = clampScore(score - 2*float64(counts[m.topCategory]))

	return &textTypes.StrengthReport{
		Score:          score,
		Grade:          gradeFor(score),
		Density:        dens,
		WordCount:      wordCount,
		MatchCount:     len(matches),
		CategoryCounts: counts,
	}, nil
}

// Flag returns text with every match wrapped in left and right markers.
// Empty markers fall back to the configured ones.  Markers are inserted in
// descending start-offset order, which keeps earlier offsets valid while
// later ones are rewritten.
func (d *Detector) Flag(text, left, right string) (string, error) {
	if text == "" {
		return "", nil
	}
	if left == "" {
		left = d.leftMarker
	}
	if right == "" {
		right = d.rightMarker
	}

	m, err := d.ensure()
	if err != nil {
		return "", err
	}

	matches := d.scan(m, text)
	out := text
	for i := len(matches) - 1; i >= 0; i-- {
		span := matches[i].Span
		out = out[:span.End] + right + out[span.End:]
		out = out[:span.Start] + left + out[span.Start:]
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Internals
// ---------------------------------------------------------------------------

// ensure returns the compiled matcher, compiling once if needed.
func (d *Detector) ensure() (*matcher, error) {
	d.mu.RLock()
	m := d.matcher
	d.mu.RUnlock()
	if m != nil {
		d.metrics.RecordCacheAccess(matcherCacheName, true)
		return m, nil
	}
	d.metrics.RecordCacheAccess(matcherCacheName, false)

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.matcher != nil {
		return d.matcher, nil
	}
	m, err := d.compileAndRecord(d.rules)
	if err != nil {
		return nil, err
	}
	d.matcher = m
	return m, nil
}

func (d *Detector) compileAndRecord(rs RuleSet) (*matcher, error) {
	start := time.Now()
	m, err := compileRuleSet(rs)
	elapsedMs := float64(time.Since(start).Microseconds()) / 1000.0

	if err != nil {
		d.metrics.RecordCompile(len(rs.Categories), elapsedMs, false)
		d.logger.Error("rule set compilation failed", logging.Err(err))
		return nil, err
	}
	d.metrics.RecordCompile(len(rs.Categories), elapsedMs, true)
	d.logger.Debug("rule set compiled",
		logging.Int("categories", len(rs.Categories)),
		logging.Int("patterns", len(m.patterns)),
	)
	return m, nil
}

// scan runs the matcher, attaches suggestions and records metrics.
func (d *Detector) scan(m *matcher, text string) []textTypes.WeakMatch {
	start := time.Now()

	matches := m.findAll(text)
	if matches == nil {
		matches = []textTypes.WeakMatch{}
	}

	d.mu.RLock()
	suggestions := d.rules.Suggestions
	d.mu.RUnlock()

	counts := make(map[string]int, len(matches))
	for i := range matches {
		counts[matches[i].Category]++
		if s, ok := suggestions[strings.ToLower(matches[i].Text)]; ok && s != "" {
			matches[i].Suggestion = s
		}
	}

	d.metrics.RecordDetection(&common.DetectionMetricParams{
		WordCount:      tokenize.WordCount(text),
		MatchCount:     len(matches),
		DurationMs:     float64(time.Since(start).Microseconds()) / 1000.0,
		CategoryCounts: counts,
	})
	return matches
}

func density(matchCount, wordCount int) float64 {
	if wordCount == 0 {
		return 0
	}
	return float64(matchCount) / float64(wordCount) * 100
}

func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func gradeFor(score float64) textTypes.Grade {
	switch {
	case score >= 90:
		return textTypes.GradeExcellent
	case score >= 75:
		return textTypes.GradeGood
	case score >= 60:
		return textTypes.GradeFair
	case score >= 40:
		return textTypes.GradeWeak
	default:
		return textTypes.GradeVeryWeak
	}
}
