// Package topics extracts document keywords by raw term frequency or TF-IDF.
// An Extractor is a long-lived session: it accumulates corpus-level document
// frequencies with bounded memory and serves repeat queries from an LRU
// cache keyed by a lossy text fingerprint.  Reset clears both so unrelated
// documents do not bias each other.
package topics

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/quillflow/QuillScope-Engine/internal/engine/common"
	"github.com/quillflow/QuillScope-Engine/internal/engine/tokenize"
	"github.com/quillflow/QuillScope-Engine/internal/infrastructure/monitoring/logging"
	"github.com/quillflow/QuillScope-Engine/pkg/errors"
	textTypes "github.com/quillflow/QuillScope-Engine/pkg/types/text"
)

// Supported ranking algorithms.
const (
	AlgorithmFrequency = "frequency"
	AlgorithmTFIDF     = "tfidf"
)

const (
	topicCacheName = "topics"

	// Fingerprints keep the whole text up to this many bytes; longer texts
	// use a truncated prefix plus a length marker.  Intentionally lossy and
	// collision-tolerant.
	fingerprintMaxBytes = 100

	// Compaction fires when the document-frequency table exceeds
	// corpusCompactTrigger times the corpus cap and keeps the
	// corpusCompactKeep highest-frequency multiples of the cap.
	corpusCompactTrigger = 10
	corpusCompactKeep    = 5

	defaultMinTermLength = 3
	defaultCorpusCap     = 1000
	defaultCacheCapacity = 100
	defaultKeywordCount  = 5
)

// ---------------------------------------------------------------------------
// Configuration
// ---------------------------------------------------------------------------

// Config holds the extractor configuration.  Zero values fall back to the
// package defaults at construction.  Stopwords replaces the built-in list
// wholesale when non-nil; ExtraStopwords extends whichever list is active.
type Config struct {
	Stopwords        []string `mapstructure:"stopwords" json:"stopwords,omitempty"`
	ExtraStopwords   []string `mapstructure:"extra_stopwords" json:"extra_stopwords,omitempty"`
	MinTermLength    int      `mapstructure:"min_term_length" json:"min_term_length"`
	CorpusCap        int      `mapstructure:"corpus_cap" json:"corpus_cap"`
	CacheCapacity    int      `mapstructure:"cache_capacity" json:"cache_capacity"`
	DefaultCount     int      `mapstructure:"default_count" json:"default_count"`
	DefaultAlgorithm string   `mapstructure:"default_algorithm" json:"default_algorithm"`
}

// DefaultConfig returns the built-in extractor settings.
func DefaultConfig() *Config {
	return &Config{
		Stopwords:        DefaultStopwords(),
		MinTermLength:    defaultMinTermLength,
		CorpusCap:        defaultCorpusCap,
		CacheCapacity:    defaultCacheCapacity,
		DefaultCount:     defaultKeywordCount,
		DefaultAlgorithm: AlgorithmFrequency,
	}
}

// Validate checks the configuration after defaults are applied.
func (c *Config) Validate() error {
	if c.CorpusCap < 1 {
		return errors.New(errors.ErrCodeCapacityInvalid, "corpus_cap must be >= 1")
	}
	if c.CacheCapacity < 1 {
		return errors.New(errors.ErrCodeCapacityInvalid, "cache_capacity must be >= 1")
	}
	if c.MinTermLength < 1 {
		return errors.Validation("min_term_length", "must be >= 1")
	}
	if c.DefaultCount < 1 {
		return errors.Validation("default_count", "must be >= 1")
	}
	switch c.DefaultAlgorithm {
	case AlgorithmFrequency, AlgorithmTFIDF:
	default:
		return errors.Newf(errors.ErrCodeAlgorithmUnknown,
			"unknown default algorithm %q", c.DefaultAlgorithm)
	}
	return nil
}

// ExtractOptions tune one ExtractKeywords call.  Zero values fall back to
// the extractor configuration.
type ExtractOptions struct {
	Count       int
	MinLength   int
	Algorithm   string
	UpdateStats bool
}

// ---------------------------------------------------------------------------
// Extractor
// ---------------------------------------------------------------------------

// Extractor is the keyword extraction session.  Corpus statistics and the
// topic cache are the only mutable state; both are guarded by one mutex, so
// an Extractor is safe for concurrent use.
type Extractor struct {
	mu        sync.Mutex
	config    Config
	stopwords map[string]struct{}
	docFreq   map[string]int
	totalDocs int
	cache     *topicCache
	logger    logging.Logger
	metrics   common.AnalysisMetrics
}

// NewExtractor creates an extraction session.  A nil config uses defaults;
// zero fields in a non-nil config default individually.  Invalid capacities
// or an unknown default algorithm are the only errors.
func NewExtractor(config *Config, logger logging.Logger, metrics common.AnalysisMetrics) (*Extractor, error) {
	cfg := Config{}
	if config != nil {
		cfg = *config
	}
	if cfg.Stopwords == nil {
		cfg.Stopwords = DefaultStopwords()
	}
	if cfg.MinTermLength == 0 {
		cfg.MinTermLength = defaultMinTermLength
	}
	if cfg.CorpusCap == 0 {
		cfg.CorpusCap = defaultCorpusCap
	}
	if cfg.CacheCapacity == 0 {
		cfg.CacheCapacity = defaultCacheCapacity
	}
	if cfg.DefaultCount == 0 {
		cfg.DefaultCount = defaultKeywordCount
	}
	if cfg.DefaultAlgorithm == "" {
		cfg.DefaultAlgorithm = AlgorithmFrequency
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if metrics == nil {
		metrics = common.NewNoopAnalysisMetrics()
	}

	stopwords := make(map[string]struct{}, len(cfg.Stopwords)+len(cfg.ExtraStopwords))
	for _, w := range cfg.Stopwords {
		stopwords[foldTerm(w)] = struct{}{}
	}
	for _, w := range cfg.ExtraStopwords {
		stopwords[foldTerm(w)] = struct{}{}
	}

	return &Extractor{
		config:    cfg,
		stopwords: stopwords,
		docFreq:   make(map[string]int),
		cache:     newTopicCache(cfg.CacheCapacity),
		logger:    logger.Named("topics"),
		metrics:   metrics,
	}, nil
}

// ---------------------------------------------------------------------------
// Term statistics
// ---------------------------------------------------------------------------

// TermFrequency returns each qualifying term mapped to its count divided by
// the total retained token count.  Terms shorter than minLength (runes,
// after folding) and stopwords are dropped; minLength <= 0 uses the
// configured minimum.  Empty result for text with no qualifying terms.
func (e *Extractor) TermFrequency(text string, minLength int) map[string]float64 {
	tc := e.termize(text, minLength)
	freq := make(map[string]float64, len(tc.counts))
	if tc.total == 0 {
		return freq
	}
	for term, count := range tc.counts {
		freq[term] = float64(count) / float64(tc.total)
	}
	return freq
}

// UpdateDocumentFrequency registers text as one observed document: every
// unique qualifying term has its document counter incremented, then the
// document total advances.  Empty text is a no-op.  Once the table exceeds
// ten times the corpus cap it is compacted to the five-times-cap
// highest-frequency terms.
func (e *Extractor) UpdateDocumentFrequency(text string) {
	if text == "" {
		return
	}
	tc := e.termize(text, e.config.MinTermLength)

	e.mu.Lock()
	e.updateLocked(tc)
	e.mu.Unlock()
}

// Idf returns ln((totalDocuments+1) / (documentFrequency+1)) for the folded
// term, or 0 when no documents have been observed or the term is unseen.
func (e *Extractor) Idf(term string) float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.idfLocked(foldTerm(term))
}

// TfIdf returns each qualifying term mapped to termFrequency times idf.
func (e *Extractor) TfIdf(text string, minLength int) map[string]float64 {
	tc := e.termize(text, minLength)
	scores := make(map[string]float64, len(tc.counts))
	if tc.total == 0 {
		return scores
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	for term, count := range tc.counts {
		tf := float64(count) / float64(tc.total)
		scores[term] = tf * e.idfLocked(term)
	}
	return scores
}

// CorpusSize reports the document-frequency table size and the number of
// observed documents.
func (e *Extractor) CorpusSize() (terms, documents int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.docFreq), e.totalDocs
}

// ---------------------------------------------------------------------------
// Keyword extraction
// ---------------------------------------------------------------------------

// ExtractKeywords returns the top keywords of text.  The frequency
// algorithm ranks by raw retained-term counts.  The tfidf algorithm first
// registers the document when opts.UpdateStats is set and the corpus has
// not reached its cap, then ranks by TF-IDF; with an empty corpus it
// degrades to frequency ranking.  Unknown algorithm names degrade to
// frequency as well.  Ties keep discovery order.
func (e *Extractor) ExtractKeywords(text string, opts ExtractOptions) []textTypes.Keyword {
	start := time.Now()

	count := opts.Count
	if count <= 0 {
		count = e.config.DefaultCount
	}
	minLength := opts.MinLength
	if minLength <= 0 {
		minLength = e.config.MinTermLength
	}
	algorithm := e.resolveAlgorithm(opts.Algorithm)

	tc := e.termize(text, minLength)
	if tc.total == 0 {
		e.metrics.RecordExtraction(algorithm, 0, elapsedMs(start))
		return []textTypes.Keyword{}
	}

	// Candidates in discovery order; the stable sort below preserves that
	// order for equal scores.
	candidates := make([]textTypes.Keyword, 0, len(tc.order))
	for _, term := range tc.order {
		candidates = append(candidates, textTypes.Keyword{
			Term:  term,
			Score: float64(tc.counts[term]),
			Count: tc.counts[term],
		})
	}

	if algorithm == AlgorithmTFIDF {
		e.mu.Lock()
		if opts.UpdateStats && e.totalDocs < e.config.CorpusCap {
			e.updateLocked(e.termize(text, e.config.MinTermLength))
		}
		if e.totalDocs > 0 {
			for i := range candidates {
				tf := float64(candidates[i].Count) / float64(tc.total)
				candidates[i].Score = tf * e.idfLocked(candidates[i].Term)
			}
		} else {
			algorithm = AlgorithmFrequency
		}
		e.mu.Unlock()
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
	if len(candidates) > count {
		candidates = candidates[:count]
	}

	e.metrics.RecordExtraction(algorithm, len(candidates), elapsedMs(start))
	return candidates
}

// CachedTopics answers the top-n query through the LRU cache.  The key is a
// fingerprint of the text alone; a hit is promoted to most-recently-used
// and trimmed to n when the cached list is longer.  Misses extract with
// UpdateStats set and insert, evicting the least-recently-used entry when
// over capacity.
func (e *Extractor) CachedTopics(text string, n int, algorithm string) []textTypes.Keyword {
	if text == "" {
		return []textTypes.Keyword{}
	}
	key := fingerprint(text)

	e.mu.Lock()
	cached, ok := e.cache.get(key)
	e.mu.Unlock()
	if ok {
		e.metrics.RecordCacheAccess(topicCacheName, true)
		return copyTopN(cached, n)
	}
	e.metrics.RecordCacheAccess(topicCacheName, false)

	keywords := e.ExtractKeywords(text, ExtractOptions{
		Count:       n,
		Algorithm:   algorithm,
		UpdateStats: true,
	})

	e.mu.Lock()
	e.cache.put(key, keywords)
	e.mu.Unlock()
	return copyTopN(keywords, n)
}

// Reset clears corpus statistics and the topic cache, detaching the session
// from everything it has observed.
func (e *Extractor) Reset() {
	e.mu.Lock()
	e.docFreq = make(map[string]int)
	e.totalDocs = 0
	e.cache.reset()
	e.mu.Unlock()

	e.metrics.SetCorpusSize(0, 0)
	e.logger.Debug("corpus statistics and topic cache cleared")
}

// ---------------------------------------------------------------------------
// Internals
// ---------------------------------------------------------------------------

// termCounts carries one document's qualifying terms: per-term counts, the
// discovery order of unique terms, and the total retained token count.
type termCounts struct {
	counts map[string]int
	order  []string
	total  int
}

func (e *Extractor) termize(text string, minLength int) termCounts {
	if minLength <= 0 {
		minLength = e.config.MinTermLength
	}
	tc := termCounts{counts: make(map[string]int)}
	for _, frag := range tokenize.Words(text) {
		term := foldTerm(frag.Word)
		if utf8.RuneCountInString(term) < minLength {
			continue
		}
		if _, stop := e.stopwords[term]; stop {
			continue
		}
		if _, seen := tc.counts[term]; !seen {
			tc.order = append(tc.order, term)
		}
		tc.counts[term]++
		tc.total++
	}
	return tc
}

func (e *Extractor) updateLocked(tc termCounts) {
	for _, term := range tc.order {
		e.docFreq[term]++
	}
	e.totalDocs++
	e.compactLocked()
	e.metrics.SetCorpusSize(len(e.docFreq), e.totalDocs)
}

func (e *Extractor) idfLocked(term string) float64 {
	if e.totalDocs == 0 {
		return 0
	}
	df, ok := e.docFreq[term]
	if !ok {
		return 0
	}
	return math.Log(float64(e.totalDocs+1) / float64(df+1))
}

// compactLocked bounds the document-frequency table: past ten times the
// cap, only the five-times-cap highest-frequency terms survive.  This
// biases future IDF toward already-frequent terms, which is the accepted
// trade for bounded memory.
func (e *Extractor) compactLocked() {
	if len(e.docFreq) <= e.config.CorpusCap*corpusCompactTrigger {
		return
	}

	type termFreq struct {
		term  string
		count int
	}
	all := make([]termFreq, 0, len(e.docFreq))
	for term, count := range e.docFreq {
		all = append(all, termFreq{term: term, count: count})
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].count != all[j].count {
			return all[i].count > all[j].count
		}
		return all[i].term < all[j].term
	})

	keep := e.config.CorpusCap * corpusCompactKeep
	if keep > len(all) {
		keep = len(all)
	}
	compacted := make(map[string]int, keep)
	for _, tf := range all[:keep] {
		compacted[tf.term] = tf.count
	}

	e.logger.Info("compacted document frequencies",
		logging.Int("before", len(e.docFreq)),
		logging.Int("after", len(compacted)),
	)
	e.docFreq = compacted
}

func (e *Extractor) resolveAlgorithm(algorithm string) string {
	switch algorithm {
	case "":
		return e.config.DefaultAlgorithm
	case AlgorithmFrequency, AlgorithmTFIDF:
		return algorithm
	default:
		e.logger.Warn("unknown algorithm, using frequency", logging.String("algorithm", algorithm))
		return AlgorithmFrequency
	}
}

// fingerprint derives the cache key: the text itself when short, otherwise
// a rune-aligned prefix plus the total byte length.
func fingerprint(text string) string {
	if len(text) <= fingerprintMaxBytes {
		return text
	}
	cut := fingerprintMaxBytes
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut] + "#" + strconv.Itoa(len(text))
}

func copyTopN(keywords []textTypes.Keyword, n int) []textTypes.Keyword {
	m := len(keywords)
	if n > 0 && n < m {
		m = n
	}
	out := make([]textTypes.Keyword, m)
	copy(out, keywords[:m])
	return out
}

// foldTerm normalizes a token into its index form: NFC, lowercased, with
// combining marks stripped so accented and plain spellings collapse.
func foldTerm(word string) string {
	lower := strings.ToLower(norm.NFC.String(word))
	ascii := true
	for i := 0; i < len(lower); i++ {
		if lower[i] >= utf8.RuneSelf {
			ascii = false
			break
		}
	}
	if ascii {
		return lower
	}

	decomposed := norm.NFD.String(lower)
	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	return norm.NFC.String(b.String())
}

func elapsedMs(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000.0
}
