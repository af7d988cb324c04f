// Package common provides shared infrastructure for the engine packages:
// the metrics contract and its Prometheus, noop, and in-memory
// implementations.
package common

import (
	"math"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

// ---------------------------------------------------------------------------
// Interfaces
// ---------------------------------------------------------------------------

// AnalysisMetrics is the unified telemetry API for the lexical analysis
// engine.  Every component (detector, tagger, topic extractor, rewriter)
// records through this interface so the backing implementation can be
// swapped without touching analysis code.
type AnalysisMetrics interface {
	// RecordDetection records one weak-language detection pass.
	RecordDetection(params *DetectionMetricParams)

	// RecordTagging records one part-of-speech tagging outcome.
	RecordTagging(label, confidence string, durationMs float64)

	// RecordExtraction records one keyword extraction pass.
	RecordExtraction(algorithm string, keywordCount int, durationMs float64)

	// RecordRewrite records one global replacement pass.
	RecordRewrite(replacements int, durationMs float64)

	// RecordCompile records a matcher compilation attempt.
	RecordCompile(categories int, durationMs float64, success bool)

	// RecordCacheAccess records a hit or miss on a named cache.
	RecordCacheAccess(cache string, hit bool)

	// SetCorpusSize publishes the current corpus statistics table sizes.
	SetCorpusSize(terms, documents int)

	// GetDetectionLatencyHistogram returns the detection latency histogram.
	GetDetectionLatencyHistogram() LatencyHistogram

	// GetCurrentStats returns a point-in-time statistics snapshot.
	GetCurrentStats() *EngineStats
}

// LatencyHistogram provides percentile-based latency observation.
type LatencyHistogram interface {
	// Observe records a latency sample in milliseconds.
	Observe(durationMs float64)

	// Percentile returns the value at the given percentile (0 to 100).
	Percentile(p float64) float64

	// Count returns the total number of observed samples.
	Count() int64

	// Sum returns the sum of all observed values.
	Sum() float64
}

// ---------------------------------------------------------------------------
// Parameter structs
// ---------------------------------------------------------------------------

// DetectionMetricParams carries the data for one detection pass.
type DetectionMetricParams struct {
	WordCount      int            `json:"word_count"`
	MatchCount     int            `json:"match_count"`
	DurationMs     float64        `json:"duration_ms"`
	CategoryCounts map[string]int `json:"category_counts,omitempty"`
}

// EngineStats is a point-in-time snapshot of engine telemetry.
type EngineStats struct {
	TotalDetections      int64   `json:"total_detections"`
	TotalMatches         int64   `json:"total_matches"`
	TotalTaggings        int64   `json:"total_taggings"`
	TotalExtractions     int64   `json:"total_extractions"`
	TotalRewrites        int64   `json:"total_rewrites"`
	AvgDetectionMs       float64 `json:"avg_detection_ms"`
	P50DetectionMs       float64 `json:"p50_detection_ms"`
	P95DetectionMs       float64 `json:"p95_detection_ms"`
	P99DetectionMs       float64 `json:"p99_detection_ms"`
	CacheHitRate         float64 `json:"cache_hit_rate"`
	CorpusTermCount      int     `json:"corpus_term_count"`
	CorpusDocumentCount  int     `json:"corpus_document_count"`
}

// ---------------------------------------------------------------------------
// Prometheus implementation
// ---------------------------------------------------------------------------

const metricsPrefix = "quillscope_engine_"

var defaultLatencyBuckets = []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25, 50, 100}

type prometheusAnalysisMetrics struct {
	operationDuration *prometheus.HistogramVec
	matchesTotal      *prometheus.CounterVec
	tagsTotal         *prometheus.CounterVec
	keywordsTotal     *prometheus.CounterVec
	rewritesTotal     prometheus.Counter
	compilesTotal     *prometheus.CounterVec
	cacheAccessTotal  *prometheus.CounterVec
	corpusSize        *prometheus.GaugeVec

	// in-memory tracking for GetCurrentStats / the latency histogram
	latencyHist  *latencyHistogram
	detections   atomic.Int64
	matches      atomic.Int64
	taggings     atomic.Int64
	extractions  atomic.Int64
	rewrites     atomic.Int64
	cacheHits    atomic.Int64
	cacheMisses  atomic.Int64
	corpusTerms  atomic.Int64
	corpusDocs   atomic.Int64
}

// NewPrometheusAnalysisMetrics creates a Prometheus-backed collector and
// registers every metric with the supplied Registerer.  A nil registerer
// falls back to prometheus.DefaultRegisterer.
func NewPrometheusAnalysisMetrics(registerer prometheus.Registerer) (*prometheusAnalysisMetrics, error) {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	m := &prometheusAnalysisMetrics{
		latencyHist: newLatencyHistogram(),
	}

	m.operationDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    metricsPrefix + "operation_duration_milliseconds",
		Help:    "Histogram of engine operation latency in milliseconds.",
		Buckets: defaultLatencyBuckets,
	}, []string{"operation"})

	m.matchesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: metricsPrefix + "weak_matches_total",
		Help: "Total weak-language matches by category.",
	}, []string{"category"})

	m.tagsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: metricsPrefix + "pos_tags_total",
		Help: "Total part-of-speech tagging outcomes.",
	}, []string{"label", "confidence"})

	m.keywordsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: metricsPrefix + "keywords_total",
		Help: "Total keywords returned by extraction passes.",
	}, []string{"algorithm"})

	m.rewritesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: metricsPrefix + "rewrites_total",
		Help: "Total occurrences replaced by the rewriter.",
	})

	m.compilesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: metricsPrefix + "matcher_compiles_total",
		Help: "Total matcher compilation attempts.",
	}, []string{"status"})

	m.cacheAccessTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: metricsPrefix + "cache_access_total",
		Help: "Total cache accesses by cache name and result.",
	}, []string{"cache", "result"})

	m.corpusSize = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: metricsPrefix + "corpus_size",
		Help: "Current corpus statistics sizes (terms, documents).",
	}, []string{"kind"})

	collectors := []prometheus.Collector{
		m.operationDuration,
		m.matchesTotal,
		m.tagsTotal,
		m.keywordsTotal,
		m.rewritesTotal,
		m.compilesTotal,
		m.cacheAccessTotal,
		m.corpusSize,
	}
	for _, c := range collectors {
		if err := registerer.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

func (m *prometheusAnalysisMetrics) RecordDetection(p *DetectionMetricParams) {
	if p == nil {
		return
	}
	m.operationDuration.WithLabelValues("detect").Observe(p.DurationMs)
	for category, n := range p.CategoryCounts {
		m.matchesTotal.WithLabelValues(category).Add(float64(n))
	}

	m.latencyHist.Observe(p.DurationMs)
	m.detections.Add(1)
	m.matches.Add(int64(p.MatchCount))
}

func (m *prometheusAnalysisMetrics) RecordTagging(label, confidence string, durationMs float64) {
	m.operationDuration.WithLabelValues("tag").Observe(durationMs)
	m.tagsTotal.WithLabelValues(label, confidence).Inc()
	m.taggings.Add(1)
}

func (m *prometheusAnalysisMetrics) RecordExtraction(algorithm string, keywordCount int, durationMs float64) {
	m.operationDuration.WithLabelValues("extract").Observe(durationMs)
	m.keywordsTotal.WithLabelValues(algorithm).Add(float64(keywordCount))
	m.extractions.Add(1)
}

func (m *prometheusAnalysisMetrics) RecordRewrite(replacements int, durationMs float64) {
	m.operationDuration.WithLabelValues("rewrite").Observe(durationMs)
	m.rewritesTotal.Add(float64(replacements))
	m.rewrites.Add(1)
}

func (m *prometheusAnalysisMetrics) RecordCompile(categories int, durationMs float64, success bool) {
	status := "success"
	if !success {
		status = "failure"
	}
	m.operationDuration.WithLabelValues("compile").Observe(durationMs)
	m.compilesTotal.WithLabelValues(status).Inc()
	_ = categories
}

func (m *prometheusAnalysisMetrics) RecordCacheAccess(cache string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
		m.cacheHits.Add(1)
	} else {
		m.cacheMisses.Add(1)
	}
	m.cacheAccessTotal.WithLabelValues(cache, result).Inc()
}

func (m *prometheusAnalysisMetrics) SetCorpusSize(terms, documents int) {
	m.corpusSize.WithLabelValues("terms").Set(float64(terms))
	m.corpusSize.WithLabelValues("documents").Set(float64(documents))
	m.corpusTerms.Store(int64(terms))
	m.corpusDocs.Store(int64(documents))
}

func (m *prometheusAnalysisMetrics) GetDetectionLatencyHistogram() LatencyHistogram {
	return m.latencyHist
}

func (m *prometheusAnalysisMetrics) GetCurrentStats() *EngineStats {
	total := m.detections.Load()

	var avg float64
	if total > 0 {
		avg = m.latencyHist.Sum() / float64(total)
	}

	hits := m.cacheHits.Load()
	misses := m.cacheMisses.Load()
	var hitRate float64
	if hits+misses > 0 {
		hitRate = float64(hits) / float64(hits+misses)
	}

	return &EngineStats{
		TotalDetections:     total,
		TotalMatches:        m.matches.Load(),
		TotalTaggings:       m.taggings.Load(),
		TotalExtractions:    m.extractions.Load(),
		TotalRewrites:       m.rewrites.Load(),
		AvgDetectionMs:      avg,
		P50DetectionMs:      m.latencyHist.Percentile(50),
		P95DetectionMs:      m.latencyHist.Percentile(95),
		P99DetectionMs:      m.latencyHist.Percentile(99),
		CacheHitRate:        hitRate,
		CorpusTermCount:     int(m.corpusTerms.Load()),
		CorpusDocumentCount: int(m.corpusDocs.Load()),
	}
}

// ---------------------------------------------------------------------------
// Noop implementation
// ---------------------------------------------------------------------------

type noopAnalysisMetrics struct{}

// NewNoopAnalysisMetrics returns a metrics implementation that discards
// everything.  Constructors use it as the fallback for nil metrics.
func NewNoopAnalysisMetrics() *noopAnalysisMetrics {
	return &noopAnalysisMetrics{}
}

func (n *noopAnalysisMetrics) RecordDetection(*DetectionMetricParams)            {}
func (n *noopAnalysisMetrics) RecordTagging(string, string, float64)             {}
func (n *noopAnalysisMetrics) RecordExtraction(string, int, float64)             {}
func (n *noopAnalysisMetrics) RecordRewrite(int, float64)                        {}
func (n *noopAnalysisMetrics) RecordCompile(int, float64, bool)                  {}
func (n *noopAnalysisMetrics) RecordCacheAccess(string, bool)                    {}
func (n *noopAnalysisMetrics) SetCorpusSize(int, int)                            {}
func (n *noopAnalysisMetrics) GetDetectionLatencyHistogram() LatencyHistogram    { return newLatencyHistogram() }
func (n *noopAnalysisMetrics) GetCurrentStats() *EngineStats                     { return &EngineStats{} }

// ---------------------------------------------------------------------------
// In-memory implementation (for testing)
// ---------------------------------------------------------------------------

type inMemoryAnalysisMetrics struct {
	mu sync.Mutex

	detections  []*DetectionMetricParams
	tagCounts   map[string]int64
	extractions map[string]int64
	rewrites    int64
	compiles    map[string]int64
	cacheHits   map[string]int64
	cacheMisses map[string]int64
	corpusTerms int
	corpusDocs  int
	latencyHist *latencyHistogram
}

// NewInMemoryAnalysisMetrics returns an in-memory metrics implementation
// with query accessors, suitable for unit tests.
func NewInMemoryAnalysisMetrics() *inMemoryAnalysisMetrics {
	return &inMemoryAnalysisMetrics{
		tagCounts:   make(map[string]int64),
		extractions: make(map[string]int64),
		compiles:    make(map[string]int64),
		cacheHits:   make(map[string]int64),
		cacheMisses: make(map[string]int64),
		latencyHist: newLatencyHistogram(),
	}
}

func (m *inMemoryAnalysisMetrics) RecordDetection(p *DetectionMetricParams) {
	if p == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.detections = append(m.detections, &cp)
	m.latencyHist.observeUnlocked(p.DurationMs)
}

func (m *inMemoryAnalysisMetrics) RecordTagging(label, confidence string, _ float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tagCounts[label+"/"+confidence]++
}

func (m *inMemoryAnalysisMetrics) RecordExtraction(algorithm string, keywordCount int, _ float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.extractions[algorithm] += int64(keywordCount)
}

func (m *inMemoryAnalysisMetrics) RecordRewrite(replacements int, _ float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rewrites += int64(replacements)
}

func (m *inMemoryAnalysisMetrics) RecordCompile(_ int, _ float64, success bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if success {
		m.compiles["success"]++
	} else {
		m.compiles["failure"]++
	}
}

func (m *inMemoryAnalysisMetrics) RecordCacheAccess(cache string, hit bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if hit {
		m.cacheHits[cache]++
	} else {
		m.cacheMisses[cache]++
	}
}

func (m *inMemoryAnalysisMetrics) SetCorpusSize(terms, documents int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.corpusTerms = terms
	m.corpusDocs = documents
}

func (m *inMemoryAnalysisMetrics) GetDetectionLatencyHistogram() LatencyHistogram {
	return m.latencyHist
}

func (m *inMemoryAnalysisMetrics) GetCurrentStats() *EngineStats {
	m.mu.Lock()
	defer m.mu.Unlock()

	total := int64(len(m.detections))
	var matches int64
	var sumLatency float64
	for _, d := range m.detections {
		matches += int64(d.MatchCount)
		sumLatency += d.DurationMs
	}

	var avg float64
	if total > 0 {
		avg = sumLatency / float64(total)
	}

	var taggings int64
	for _, n := range m.tagCounts {
		taggings += n
	}

	var hits, misses int64
	for _, n := range m.cacheHits {
		hits += n
	}
	for _, n := range m.cacheMisses {
		misses += n
	}
	var hitRate float64
	if hits+misses > 0 {
		hitRate = float64(hits) / float64(hits+misses)
	}

	return &EngineStats{
		TotalDetections:     total,
		TotalMatches:        matches,
		TotalTaggings:       taggings,
		TotalRewrites:       m.rewrites,
		AvgDetectionMs:      avg,
		P50DetectionMs:      m.latencyHist.Percentile(50),
		P95DetectionMs:      m.latencyHist.Percentile(95),
		P99DetectionMs:      m.latencyHist.Percentile(99),
		CacheHitRate:        hitRate,
		CorpusTermCount:     m.corpusTerms,
		CorpusDocumentCount: m.corpusDocs,
	}
}

// GetRecordedDetections returns a copy of all recorded detection params.
func (m *inMemoryAnalysisMetrics) GetRecordedDetections() []*DetectionMetricParams {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*DetectionMetricParams, len(m.detections))
	for i, p := range m.detections {
		cp := *p
		out[i] = &cp
	}
	return out
}

// GetTagCount returns the count recorded for a label/confidence pair.
func (m *inMemoryAnalysisMetrics) GetTagCount(label, confidence string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tagCounts[label+"/"+confidence]
}

// GetExtractedKeywords returns the keyword count recorded per algorithm.
func (m *inMemoryAnalysisMetrics) GetExtractedKeywords(algorithm string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.extractions[algorithm]
}

// GetCacheHits returns the hit count for a named cache.
func (m *inMemoryAnalysisMetrics) GetCacheHits(cache string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cacheHits[cache]
}

// GetCacheMisses returns the miss count for a named cache.
func (m *inMemoryAnalysisMetrics) GetCacheMisses(cache string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cacheMisses[cache]
}

// GetCompileCount returns the compile count for a status ("success"/"failure").
func (m *inMemoryAnalysisMetrics) GetCompileCount(status string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.compiles[status]
}

// ---------------------------------------------------------------------------
// latencyHistogram
// ---------------------------------------------------------------------------

// latencyHistogram keeps raw samples, sorting lazily when a percentile is
// requested.  Engine operations are sub-millisecond, so the sample slice
// stays small for editor-sized workloads.
type latencyHistogram struct {
	mu      sync.RWMutex
	samples []float64
	sum     float64
	sorted  bool
}

func newLatencyHistogram() *latencyHistogram {
	return &latencyHistogram{
		samples: make([]float64, 0, 1024),
	}
}

func (h *latencyHistogram) Observe(durationMs float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.observeUnlocked(durationMs)
}

// observeUnlocked is for callers that already hold a covering lock.
func (h *latencyHistogram) observeUnlocked(durationMs float64) {
	h.samples = append(h.samples, durationMs)
	h.sum += durationMs
	h.sorted = false
}

// Percentile returns the value at percentile p (0 to 100) using linear
// interpolation between the two nearest ranks.
func (h *latencyHistogram) Percentile(p float64) float64 {
	h.mu.RLock()
	n := len(h.samples)
	if n == 0 {
		h.mu.RUnlock()
		return 0
	}

	if !h.sorted {
		h.mu.RUnlock()
		h.mu.Lock()
		if !h.sorted {
			sort.Float64s(h.samples)
			h.sorted = true
		}
		h.mu.Unlock()
		h.mu.RLock()
	}

	defer h.mu.RUnlock()

	if p <= 0 {
		return h.samples[0]
	}
	if p >= 100 {
		return h.samples[n-1]
	}

	rank := (p / 100) * float64(n-1)
	lower := int(math.Floor(rank))
	upper := lower + 1
	if upper >= n {
		return h.samples[n-1]
	}
	frac := rank - float64(lower)
	return h.samples[lower] + frac*(h.samples[upper]-h.samples[lower])
}

func (h *latencyHistogram) Count() int64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return int64(len(h.samples))
}

func (h *latencyHistogram) Sum() float64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.sum
}

// compile-time interface checks
var (
	_ AnalysisMetrics  = (*prometheusAnalysisMetrics)(nil)
	_ AnalysisMetrics  = (*noopAnalysisMetrics)(nil)
	_ AnalysisMetrics  = (*inMemoryAnalysisMetrics)(nil)
	_ LatencyHistogram = (*latencyHistogram)(nil)
)
