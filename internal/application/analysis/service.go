// Package analysis provides the application-level service for lexical
// analysis operations.  This package serves as the interface between the CLI
// (or any other front end) and the engine packages: it owns one session's
// component instances, their configuration, and rule hot-swapping.
package analysis

import (
	"reflect"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/quillflow/QuillScope-Engine/internal/config"
	"github.com/quillflow/QuillScope-Engine/internal/engine/common"
	"github.com/quillflow/QuillScope-Engine/internal/engine/postag"
	"github.com/quillflow/QuillScope-Engine/internal/engine/rewrite"
	"github.com/quillflow/QuillScope-Engine/internal/engine/tokenize"
	"github.com/quillflow/QuillScope-Engine/internal/engine/topics"
	"github.com/quillflow/QuillScope-Engine/internal/engine/weaklang"
	"github.com/quillflow/QuillScope-Engine/internal/infrastructure/monitoring/logging"
	"github.com/quillflow/QuillScope-Engine/pkg/errors"
	textTypes "github.com/quillflow/QuillScope-Engine/pkg/types/text"
)

// ─────────────────────────────────────────────────────────────────────────────
// Service interface
// ─────────────────────────────────────────────────────────────────────────────

// Service defines the interface for analysis application operations.  All
// methods are safe for concurrent use; text buffers are read, never retained.
type Service interface {
	// SessionID returns the identifier attached to every log entry and
	// report produced by this service instance.
	SessionID() string

	// Analyze runs the full pass over text: weak-language detection, the
	// writing-strength score and topic keywords.
	Analyze(text string) (*Report, error)

	// Flag returns text with every weak match wrapped in the given markers.
	// Empty markers fall back to the configured pair.
	Flag(text, left, right string) (string, error)

	// Suggest returns the replacement for a weak word and whether a
	// non-removal suggestion exists.
	Suggest(word string) (string, bool)

	// Density returns weak matches per 100 words.
	Density(text string) (float64, error)

	// Rewrite replaces every whole-word occurrence of target in text,
	// preserving the casing of each occurrence.  It returns the rewritten
	// text and the number of replacements.
	Rewrite(text, target, replacement string) (string, int)

	// TagWords tokenizes text and tags every substantive word.
	TagWords(text string) []TaggedWord

	// TagWord tags a single word.
	TagWord(word string) TaggedWord

	// Keywords extracts topic keywords per the input options.
	Keywords(input *KeywordsInput) []textTypes.Keyword

	// WordAt returns the word fragment containing the byte offset.
	WordAt(text string, offset int) textTypes.WordFragment

	// SentenceAt returns the sentence bounds containing the byte offset.
	SentenceAt(text string, offset int) textTypes.SentenceBounds

	// CorpusSize returns the document-frequency table size and the number
	// of documents folded into the corpus so far.
	CorpusSize() (terms, documents int)

	// Stats returns a point-in-time engine telemetry snapshot.
	Stats() *common.EngineStats

	// Reset clears the topic corpus and cache, returning the session to a
	// cold-start state.  Compiled detector rules are unaffected.
	Reset()

	// ReloadRules swaps in a new configuration atomically: either every
	// component accepts its section or the previous state stays in force.
	// Topic corpus statistics survive the swap unless the topics section
	// itself changed.
	ReloadRules(cfg *config.Config) error
}

// ─────────────────────────────────────────────────────────────────────────────
// DTOs
// ─────────────────────────────────────────────────────────────────────────────

// KeywordsInput contains input for keyword extraction.
type KeywordsInput struct {
	Text string

	// Count limits the result; 0 uses the configured default.
	Count int

	// MinLength overrides the configured minimum term length when > 0.
	// A non-zero value bypasses the topic cache, whose entries are keyed
	// by text alone.
	MinLength int

	// Algorithm is "frequency" or "tfidf"; empty uses the configured
	// default.
	Algorithm string

	// NoCache forces a fresh extraction pass.
	NoCache bool
}

// Report aggregates one full analysis pass over a text snapshot.
type Report struct {
	SessionID  string                    `json:"session_id"`
	Strength   *textTypes.StrengthReport `json:"strength"`
	Matches    []textTypes.WeakMatch     `json:"matches"`
	Keywords   []textTypes.Keyword       `json:"keywords"`
	DurationMs float64                   `json:"duration_ms"`
}

// TaggedWord pairs one word of the input with its tagging outcome.
type TaggedWord struct {
	Word       string              `json:"word"`
	Span       textTypes.Span      `json:"span"`
	POS        textTypes.POSResult `json:"pos"`
	Display    string              `json:"display"`
	Simplified string              `json:"simplified"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Implementation
// ─────────────────────────────────────────────────────────────────────────────

// serviceImpl implements the Service interface.
type serviceImpl struct {
	id      string
	logger  logging.Logger
	metrics common.AnalysisMetrics

	// mu guards the component references and markers during rule reloads.
	// The components themselves carry their own internal locking.
	mu          sync.Mutex
	detector    *weaklang.Detector
	tagger      *postag.Tagger
	extractor   *topics.Extractor
	topicsCfg   topics.Config
	leftMarker  string
	rightMarker string
}

// NewService creates a new analysis application service.  A nil cfg runs on
// defaults; a nil logger or metrics falls back to the noop implementation.
// Detector rules are compiled eagerly so a broken configuration fails here
// rather than on the first Analyze call.
func NewService(cfg *config.Config, logger logging.Logger, metrics common.AnalysisMetrics) (Service, error) {
	cp := config.Config{}
	if cfg != nil {
		cp = *cfg
	}
	config.ApplyDefaults(&cp)
	if err := cp.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if metrics == nil {
		metrics = common.NewNoopAnalysisMetrics()
	}

	id := uuid.NewString()
	logger = logger.Named("analysis").With(logging.String("session_id", id))

	detector := weaklang.NewDetector(&cp.Detector, logger, metrics)
	if err := detector.Compile(); err != nil {
		return nil, err
	}
	tagger, err := postag.NewTagger(&cp.Tagger, logger, metrics)
	if err != nil {
		return nil, err
	}
	extractor, err := topics.NewExtractor(&cp.Topics, logger, metrics)
	if err != nil {
		return nil, err
	}

	logger.Info("analysis session started",
		logging.Int("categories", len(cp.Detector.Rules.Categories)),
		logging.Int("suffix_rules", len(cp.Tagger.SuffixRules)))

	return &serviceImpl{
		id:          id,
		logger:      logger,
		metrics:     metrics,
		detector:    detector,
		tagger:      tagger,
		extractor:   extractor,
		topicsCfg:   cp.Topics,
		leftMarker:  cp.Detector.LeftMarker,
		rightMarker: cp.Detector.RightMarker,
	}, nil
}

// snapshot returns the current component set under the lock so an in-flight
// operation keeps one consistent view across a concurrent reload.
func (s *serviceImpl) snapshot() (*weaklang.Detector, *postag.Tagger, *topics.Extractor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.detector, s.tagger, s.extractor
}

func (s *serviceImpl) SessionID() string {
	return s.id
}

func (s *serviceImpl) Analyze(text string) (*Report, error) {
	start := time.Now()
	detector, _, extractor := s.snapshot()

	matches, err := detector.Detect(text)
	if err != nil {
		return nil, err
	}
	strength, err := detector.WritingStrength(text)
	if err != nil {
		return nil, err
	}
	keywords := extractor.CachedTopics(text, 0, "")

	report := &Report{
		SessionID:  s.id,
		Strength:   strength,
		Matches:    matches,
		Keywords:   keywords,
		DurationMs: float64(time.Since(start).Microseconds()) / 1000.0,
	}
	s.logger.Debug("analysis complete",
		logging.Int("word_count", strength.WordCount),
		logging.Int("matches", len(matches)),
		logging.Float64("score", strength.Score),
		logging.Float64("duration_ms", report.DurationMs))
	return report, nil
}

func (s *serviceImpl) Flag(text, left, right string) (string, error) {
	s.mu.Lock()
	detector := s.detector
	if left == "" {
		left = s.leftMarker
	}
	if right == "" {
		right = s.rightMarker
	}
	s.mu.Unlock()
	return detector.Flag(text, left, right)
}

func (s *serviceImpl) Suggest(word string) (string, bool) {
	detector, _, _ := s.snapshot()
	return detector.Suggest(word, "")
}

func (s *serviceImpl) Density(text string) (float64, error) {
	detector, _, _ := s.snapshot()
	return detector.Density(text)
}

func (s *serviceImpl) Rewrite(text, target, replacement string) (string, int) {
	start := time.Now()
	out, n := rewrite.ReplaceGlobally(text, target, replacement)
	s.metrics.RecordRewrite(n, float64(time.Since(start).Microseconds())/1000.0)
	s.logger.Debug("rewrite applied",
		logging.String("target", target),
		logging.Int("replacements", n))
	return out, n
}

func (s *serviceImpl) TagWords(text string) []TaggedWord {
	_, tagger, _ := s.snapshot()
	fragments := tokenize.Words(text)
	out := make([]TaggedWord, len(fragments))
	for i, f := range fragments {
		out[i] = newTaggedWord(f.Word, f.Span, tagger.Tag(f.Word))
	}
	return out
}

func (s *serviceImpl) TagWord(word string) TaggedWord {
	_, tagger, _ := s.snapshot()
	span := textTypes.Span{Start: 0, End: len(word)}
	return newTaggedWord(word, span, tagger.Tag(word))
}

func (s *serviceImpl) Keywords(input *KeywordsInput) []textTypes.Keyword {
	if input == nil {
		return []textTypes.Keyword{}
	}
	_, _, extractor := s.snapshot()
	if input.NoCache || input.MinLength > 0 {
		return extractor.ExtractKeywords(input.Text, topics.ExtractOptions{
			Count:       input.Count,
			MinLength:   input.MinLength,
			Algorithm:   input.Algorithm,
			UpdateStats: true,
		})
	}
	return extractor.CachedTopics(input.Text, input.Count, input.Algorithm)
}

func (s *serviceImpl) WordAt(text string, offset int) textTypes.WordFragment {
	return tokenize.WordFragmentAt(text, offset)
}

func (s *serviceImpl) SentenceAt(text string, offset int) textTypes.SentenceBounds {
	return tokenize.SentenceBoundsAt(text, offset)
}

func (s *serviceImpl) CorpusSize() (terms, documents int) {
	_, _, extractor := s.snapshot()
	return extractor.CorpusSize()
}

func (s *serviceImpl) Stats() *common.EngineStats {
	return s.metrics.GetCurrentStats()
}

func (s *serviceImpl) Reset() {
	_, _, extractor := s.snapshot()
	extractor.Reset()
	s.logger.Info("session state reset")
}

func (s *serviceImpl) ReloadRules(cfg *config.Config) error {
	if cfg == nil {
		return errors.InvalidParam("cfg must not be nil")
	}
	cp := *cfg
	config.ApplyDefaults(&cp)
	if err := cp.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Build replacements first; live state is only touched once every
	// section has been accepted.
	tagger, err := postag.NewTagger(&cp.Tagger, s.logger, s.metrics)
	if err != nil {
		return err
	}
	var extractor *topics.Extractor
	if !reflect.DeepEqual(s.topicsCfg, cp.Topics) {
		if extractor, err = topics.NewExtractor(&cp.Topics, s.logger, s.metrics); err != nil {
			return err
		}
	}
	if err := s.detector.SetRules(cp.Detector.Rules); err != nil {
		return err
	}

	s.tagger = tagger
	if extractor != nil {
		// The topics section changed, so the corpus statistics gathered
		// under the old stopword and length settings no longer apply.
		s.extractor = extractor
		s.topicsCfg = cp.Topics
	}
	s.leftMarker = cp.Detector.LeftMarker
	s.rightMarker = cp.Detector.RightMarker

	s.logger.Info("rules reloaded",
		logging.Int("categories", len(cp.Detector.Rules.Categories)),
		logging.Bool("corpus_rebuilt", extractor != nil))
	return nil
}

func newTaggedWord(word string, span textTypes.Span, r textTypes.POSResult) TaggedWord {
	return TaggedWord{
		Word:       word,
		Span:       span,
		POS:        r,
		Display:    postag.DisplayForm(r),
		Simplified: postag.SimplifiedLabel(r.Label),
	}
}
