package topics

import (
	"math"
	"strings"
	"testing"

	"github.com/quillflow/QuillScope-Engine/internal/engine/common"
	"github.com/quillflow/QuillScope-Engine/pkg/errors"
)

const floatTolerance = 1e-9

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < floatTolerance
}

func newDefaultExtractor(t *testing.T) *Extractor {
	t.Helper()
	e, err := NewExtractor(nil, nil, nil)
	if err != nil {
		t.Fatalf("NewExtractor returned error: %v", err)
	}
	return e
}

// ---------------------------------------------------------------------------
// Term frequency
// ---------------------------------------------------------------------------

func TestTermFrequency(t *testing.T) {
	e := newDefaultExtractor(t)

	freq := e.TermFrequency("The quick brown fox jumps over the quick fence", 0)

	// Retained: quick, brown, fox, jumps, quick, fence (6 tokens).
	if len(freq) != 5 {
		t.Fatalf("expected 5 distinct terms, got %d: %+v", len(freq), freq)
	}
	if !almostEqual(freq["quick"], 2.0/6.0) {
		t.Errorf("freq[quick] = %v, want %v", freq["quick"], 2.0/6.0)
	}
	if !almostEqual(freq["fox"], 1.0/6.0) {
		t.Errorf("freq[fox] = %v, want %v", freq["fox"], 1.0/6.0)
	}

	sum := 0.0
	for _, f := range freq {
		sum += f
	}
	if !almostEqual(sum, 1.0) {
		t.Errorf("frequencies should sum to 1, got %v", sum)
	}
}

func TestTermFrequency_EmptyAndStopwordOnly(t *testing.T) {
	e := newDefaultExtractor(t)

	if freq := e.TermFrequency("", 0); freq == nil || len(freq) != 0 {
		t.Errorf("empty text should give empty non-nil map, got %v", freq)
	}
	if freq := e.TermFrequency("the of and was", 0); len(freq) != 0 {
		t.Errorf("stopword-only text should give empty map, got %v", freq)
	}
}

func TestTermFrequency_MinLength(t *testing.T) {
	e := newDefaultExtractor(t)

	// "ox" survives only when the per-call minimum drops below the default.
	if freq := e.TermFrequency("ox axe hammer", 0); len(freq) != 2 {
		t.Errorf("default min length should drop 'ox', got %v", freq)
	}
	if freq := e.TermFrequency("ox axe hammer", 2); len(freq) != 3 {
		t.Errorf("min length 2 should keep 'ox', got %v", freq)
	}
}

func TestTermFrequency_FoldsAccentsAndCase(t *testing.T) {
	e := newDefaultExtractor(t)

	freq := e.TermFrequency("Café CAFE café", 0) // Café CAFE café
	if len(freq) != 1 {
		t.Fatalf("accented and plain spellings should collapse, got %v", freq)
	}
	if !almostEqual(freq["cafe"], 1.0) {
		t.Errorf("freq[cafe] = %v, want 1.0", freq["cafe"])
	}
}

func TestFoldTerm(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"hello", "hello"},
		{"Hello", "hello"},
		{"café", "cafe"},
		{"CAFÉ", "cafe"},
		{"naïve", "naive"},
		{"Straße", "straße"}, // ß is not a combining mark
	}
	for _, tc := range tests {
		if got := foldTerm(tc.in); got != tc.want {
			t.Errorf("foldTerm(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

// ---------------------------------------------------------------------------
// Document frequency and IDF
// ---------------------------------------------------------------------------

func TestIdf(t *testing.T) {
	e := newDefaultExtractor(t)

	if got := e.Idf("solar"); !almostEqual(got, 0) {
		t.Errorf("idf with empty corpus = %v, want 0", got)
	}

	e.UpdateDocumentFrequency("the solar panel")
	e.UpdateDocumentFrequency("solar energy storage")

	// solar appears in both documents: ln(3/3) = 0.
	if got := e.Idf("solar"); !almostEqual(got, 0) {
		t.Errorf("idf(solar) = %v, want 0", got)
	}
	// energy appears in one of two: ln(3/2).
	want := math.Log(3.0 / 2.0)
	if got := e.Idf("energy"); !almostEqual(got, want) {
		t.Errorf("idf(energy) = %v, want %v", got, want)
	}
	// The queried term is folded before lookup.
	if got := e.Idf("ÉNERGY"); !almostEqual(got, want) {
		t.Errorf("idf(ÉNERGY) = %v, want %v", got, want)
	}
	if got := e.Idf("unseen"); !almostEqual(got, 0) {
		t.Errorf("idf of unseen term = %v, want 0", got)
	}
}

func TestUpdateDocumentFrequency(t *testing.T) {
	e := newDefaultExtractor(t)

	e.UpdateDocumentFrequency("solar panel solar panel solar")
	terms, docs := e.CorpusSize()
	if terms != 2 || docs != 1 {
		t.Errorf("CorpusSize = (%d, %d), want (2, 1): repeats count once per document", terms, docs)
	}

	e.UpdateDocumentFrequency("")
	if _, docs := e.CorpusSize(); docs != 1 {
		t.Errorf("empty text must be a no-op, got %d documents", docs)
	}

	e.UpdateDocumentFrequency("panel grid")
	terms, docs = e.CorpusSize()
	if terms != 3 || docs != 2 {
		t.Errorf("CorpusSize = (%d, %d), want (3, 2)", terms, docs)
	}
}

func TestTfIdf(t *testing.T) {
	e := newDefaultExtractor(t)
	e.UpdateDocumentFrequency("solar panel efficiency")
	e.UpdateDocumentFrequency("wind turbine efficiency")

	scores := e.TfIdf("solar panel solar", 0)
	if !(scores["solar"] > scores["panel"] && scores["panel"] > 0) {
		t.Errorf("expected solar > panel > 0, got %v", scores)
	}
	if !almostEqual(scores["solar"], 2*scores["panel"]) {
		t.Errorf("same idf, double tf: want solar = 2*panel, got %v", scores)
	}

	// A term present in every document has idf 0.
	scores = e.TfIdf("efficiency efficiency", 0)
	if !almostEqual(scores["efficiency"], 0) {
		t.Errorf("ubiquitous term should score 0, got %v", scores["efficiency"])
	}
}

func TestCompaction(t *testing.T) {
	cfg := &Config{CorpusCap: 1}
	e, err := NewExtractor(cfg, nil, nil)
	if err != nil {
		t.Fatalf("NewExtractor returned error: %v", err)
	}

	// 11 unique terms exceed 10x the cap, compaction keeps 5x the cap.
	e.UpdateDocumentFrequency("alpha beta gamma delta epsilon zeta eta theta iota kappa lambda")

	terms, docs := e.CorpusSize()
	if terms != 5 {
		t.Errorf("expected compaction to keep 5 terms, got %d", terms)
	}
	if docs != 1 {
		t.Errorf("documents = %d, want 1", docs)
	}
}

// ---------------------------------------------------------------------------
// Keyword extraction
// ---------------------------------------------------------------------------

func TestExtractKeywords_Frequency(t *testing.T) {
	e := newDefaultExtractor(t)

	kws := e.ExtractKeywords("apple banana apple cherry banana apple", ExtractOptions{Count: 2})
	if len(kws) != 2 {
		t.Fatalf("expected 2 keywords, got %d: %+v", len(kws), kws)
	}
	if kws[0].Term != "apple" || kws[0].Count != 3 || !almostEqual(kws[0].Score, 3) {
		t.Errorf("kws[0] = %+v, want apple count 3 score 3", kws[0])
	}
	if kws[1].Term != "banana" || kws[1].Count != 2 || !almostEqual(kws[1].Score, 2) {
		t.Errorf("kws[1] = %+v, want banana count 2 score 2", kws[1])
	}
}

func TestExtractKeywords_TiesKeepDiscoveryOrder(t *testing.T) {
	e := newDefaultExtractor(t)

	kws := e.ExtractKeywords("delta alpha gamma", ExtractOptions{Count: 3})
	if len(kws) != 3 {
		t.Fatalf("expected 3 keywords, got %d", len(kws))
	}
	want := []string{"delta", "alpha", "gamma"}
	for i, w := range want {
		if kws[i].Term != w {
			t.Errorf("tie order broken at %d: got %q, want %q", i, kws[i].Term, w)
		}
	}
}

func TestExtractKeywords_EmptyText(t *testing.T) {
	e := newDefaultExtractor(t)

	kws := e.ExtractKeywords("", ExtractOptions{})
	if kws == nil || len(kws) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", kws)
	}
}

func TestExtractKeywords_TfidfFallsBackOnEmptyCorpus(t *testing.T) {
	e := newDefaultExtractor(t)

	kws := e.ExtractKeywords("apple banana apple", ExtractOptions{
		Count:     2,
		Algorithm: AlgorithmTFIDF,
	})
	// No documents observed and UpdateStats unset: frequency semantics.
	if kws[0].Term != "apple" || !almostEqual(kws[0].Score, 2) {
		t.Errorf("expected frequency fallback, got %+v", kws)
	}
}

func TestExtractKeywords_TfidfWithUpdateStats(t *testing.T) {
	e := newDefaultExtractor(t)

	first := e.ExtractKeywords("solar panel solar", ExtractOptions{
		Algorithm:   AlgorithmTFIDF,
		UpdateStats: true,
	})
	// The call registered the document itself; every term is now in every
	// document, so all scores are ln(2/2) scaled: zero.
	if len(first) != 2 || first[0].Term != "solar" || !almostEqual(first[0].Score, 0) {
		t.Errorf("first extraction = %+v, want [solar panel] with zero scores", first)
	}
	if _, docs := e.CorpusSize(); docs != 1 {
		t.Errorf("documents = %d, want 1", docs)
	}

	second := e.ExtractKeywords("wind power wind", ExtractOptions{
		Algorithm:   AlgorithmTFIDF,
		UpdateStats: true,
	})
	if len(second) != 2 || second[0].Term != "wind" {
		t.Fatalf("second extraction = %+v, want wind first", second)
	}
	if !(second[0].Score > second[1].Score && second[1].Score > 0) {
		t.Errorf("expected positive descending tfidf scores, got %+v", second)
	}
}

func TestExtractKeywords_UpdateStatsGatedByCorpusCap(t *testing.T) {
	cfg := &Config{CorpusCap: 2}
	e, err := NewExtractor(cfg, nil, nil)
	if err != nil {
		t.Fatalf("NewExtractor returned error: %v", err)
	}

	opts := ExtractOptions{Algorithm: AlgorithmTFIDF, UpdateStats: true}
	e.ExtractKeywords("alpha beta", opts)
	e.ExtractKeywords("gamma delta", opts)
	e.ExtractKeywords("epsilon zeta", opts) // cap reached, must not register

	terms, docs := e.CorpusSize()
	if docs != 2 {
		t.Errorf("documents = %d, want 2 (cap gates further updates)", docs)
	}
	if terms != 4 {
		t.Errorf("terms = %d, want 4", terms)
	}
}

func TestExtractKeywords_UnknownAlgorithmDegradesToFrequency(t *testing.T) {
	metrics := common.NewInMemoryAnalysisMetrics()
	e, err := NewExtractor(nil, nil, metrics)
	if err != nil {
		t.Fatalf("NewExtractor returned error: %v", err)
	}

	kws := e.ExtractKeywords("apple banana apple", ExtractOptions{Count: 1, Algorithm: "pagerank"})
	if len(kws) != 1 || kws[0].Term != "apple" || !almostEqual(kws[0].Score, 2) {
		t.Errorf("expected frequency semantics, got %+v", kws)
	}
	if got := metrics.GetExtractedKeywords(AlgorithmFrequency); got != 1 {
		t.Errorf("expected extraction recorded under frequency, got %d", got)
	}
}

func TestExtractKeywords_CustomStopwords(t *testing.T) {
	cfg := &Config{Stopwords: []string{"apple"}}
	e, err := NewExtractor(cfg, nil, nil)
	if err != nil {
		t.Fatalf("NewExtractor returned error: %v", err)
	}

	kws := e.ExtractKeywords("apple banana apple", ExtractOptions{Count: 5})
	if len(kws) != 1 || kws[0].Term != "banana" {
		t.Errorf("custom stopwords should replace defaults, got %+v", kws)
	}

	// Default stopwords are gone, so "the" becomes a term.
	freq := e.TermFrequency("the the the", 0)
	if !almostEqual(freq["the"], 1.0) {
		t.Errorf("expected 'the' retained under custom stopwords, got %v", freq)
	}
}

// ---------------------------------------------------------------------------
// Cached topics
// ---------------------------------------------------------------------------

func TestCachedTopics_EvictsLeastRecentlyUsed(t *testing.T) {
	metrics := common.NewInMemoryAnalysisMetrics()
	e, err := NewExtractor(&Config{CacheCapacity: 3}, nil, metrics)
	if err != nil {
		t.Fatalf("NewExtractor returned error: %v", err)
	}

	textA := "alpha document text"
	textB := "beta document text"
	textC := "gamma document text"
	textD := "delta document text"

	e.CachedTopics(textA, 2, "")
	e.CachedTopics(textB, 2, "")
	e.CachedTopics(textC, 2, "")
	e.CachedTopics(textA, 2, "") // promote A
	e.CachedTopics(textD, 2, "") // over capacity: B is least recently used
	e.CachedTopics(textC, 2, "")
	e.CachedTopics(textA, 2, "")
	e.CachedTopics(textB, 2, "") // miss proves exactly B was evicted

	if hits := metrics.GetCacheHits(topicCacheName); hits != 3 {
		t.Errorf("cache hits = %d, want 3", hits)
	}
	if misses := metrics.GetCacheMisses(topicCacheName); misses != 5 {
		t.Errorf("cache misses = %d, want 5", misses)
	}
}

func TestCachedTopics_HitTrimsToRequestedCount(t *testing.T) {
	metrics := common.NewInMemoryAnalysisMetrics()
	e, err := NewExtractor(nil, nil, metrics)
	if err != nil {
		t.Fatalf("NewExtractor returned error: %v", err)
	}

	text := "gamma delta epsilon"
	full := e.CachedTopics(text, 5, "")
	if len(full) != 3 {
		t.Fatalf("expected 3 keywords, got %d", len(full))
	}

	trimmed := e.CachedTopics(text, 2, "")
	if len(trimmed) != 2 {
		t.Errorf("hit should trim to 2, got %d", len(trimmed))
	}
	if metrics.GetCacheHits(topicCacheName) != 1 {
		t.Errorf("second query should be a cache hit")
	}
}

func TestCachedTopics_ReturnsCopies(t *testing.T) {
	e := newDefaultExtractor(t)

	text := "gamma delta epsilon"
	first := e.CachedTopics(text, 3, "")
	first[0].Term = "mutated"

	second := e.CachedTopics(text, 3, "")
	if second[0].Term != "gamma" {
		t.Errorf("cache content was mutated through a returned slice: %+v", second)
	}
}

func TestCachedTopics_EmptyText(t *testing.T) {
	e := newDefaultExtractor(t)
	if kws := e.CachedTopics("", 3, ""); kws == nil || len(kws) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", kws)
	}
}

// ---------------------------------------------------------------------------
// Fingerprint
// ---------------------------------------------------------------------------

func TestFingerprint(t *testing.T) {
	short := "a short document"
	if got := fingerprint(short); got != short {
		t.Errorf("short text should fingerprint to itself, got %q", got)
	}

	exact := strings.Repeat("a", 100)
	if got := fingerprint(exact); got != exact {
		t.Errorf("100-byte text should fingerprint to itself")
	}

	long := strings.Repeat("a", 101)
	want := strings.Repeat("a", 100) + "#101"
	if got := fingerprint(long); got != want {
		t.Errorf("fingerprint(long) = %q, want %q", got, want)
	}
}

func TestFingerprint_NeverSplitsRunes(t *testing.T) {
	// Byte 100 lands inside the two-byte é, so the cut must back up.
	text := strings.Repeat("a", 99) + "é" // 101 bytes
	want := strings.Repeat("a", 99) + "#101"
	if got := fingerprint(text); got != want {
		t.Errorf("fingerprint = %q, want %q", got, want)
	}
}

func TestFingerprint_IsIntentionallyLossy(t *testing.T) {
	x := strings.Repeat("b", 200)
	y := strings.Repeat("b", 150) + strings.Repeat("c", 50)
	if fingerprint(x) != fingerprint(y) {
		t.Error("same prefix and length should collide, the fingerprint is lossy on purpose")
	}
}

// ---------------------------------------------------------------------------
// LRU cache unit
// ---------------------------------------------------------------------------

func TestTopicCache(t *testing.T) {
	c := newTopicCache(2)

	c.put("a", nil)
	c.put("b", nil)
	if _, ok := c.get("a"); !ok {
		t.Fatal("expected a present")
	}
	c.put("c", nil) // evicts b, the least recently used

	if _, ok := c.get("b"); ok {
		t.Error("b should have been evicted")
	}
	if _, ok := c.get("a"); !ok {
		t.Error("a should have survived")
	}
	if _, ok := c.get("c"); !ok {
		t.Error("c should be present")
	}
	if c.len() != 2 {
		t.Errorf("len = %d, want 2", c.len())
	}

	c.reset()
	if c.len() != 0 {
		t.Errorf("len after reset = %d, want 0", c.len())
	}
	if _, ok := c.get("a"); ok {
		t.Error("reset should clear entries")
	}
}

// ---------------------------------------------------------------------------
// Reset
// ---------------------------------------------------------------------------

func TestReset(t *testing.T) {
	metrics := common.NewInMemoryAnalysisMetrics()
	e, err := NewExtractor(nil, nil, metrics)
	if err != nil {
		t.Fatalf("NewExtractor returned error: %v", err)
	}

	e.UpdateDocumentFrequency("solar panel grid")
	e.CachedTopics("solar panel grid", 3, "")

	e.Reset()

	terms, docs := e.CorpusSize()
	if terms != 0 || docs != 0 {
		t.Errorf("CorpusSize after reset = (%d, %d), want (0, 0)", terms, docs)
	}
	if got := e.Idf("solar"); !almostEqual(got, 0) {
		t.Errorf("idf after reset = %v, want 0", got)
	}

	e.CachedTopics("solar panel grid", 3, "")
	if misses := metrics.GetCacheMisses(topicCacheName); misses != 2 {
		t.Errorf("expected a fresh miss after reset, got %d total misses", misses)
	}
}

// ---------------------------------------------------------------------------
// Configuration validation
// ---------------------------------------------------------------------------

func TestNewExtractor_ConfigValidation(t *testing.T) {
	tests := []struct {
		name     string
		cfg      *Config
		wantCode errors.ErrorCode
	}{
		{"negative corpus cap", &Config{CorpusCap: -1}, errors.ErrCodeCapacityInvalid},
		{"negative cache capacity", &Config{CacheCapacity: -3}, errors.ErrCodeCapacityInvalid},
		{"negative min term length", &Config{MinTermLength: -1}, errors.ErrCodeValidation},
		{"negative default count", &Config{DefaultCount: -2}, errors.ErrCodeValidation},
		{"unknown default algorithm", &Config{DefaultAlgorithm: "pagerank"}, errors.ErrCodeAlgorithmUnknown},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewExtractor(tc.cfg, nil, nil)
			if err == nil {
				t.Fatal("expected configuration error")
			}
			if code := errors.GetCode(err); code != tc.wantCode {
				t.Errorf("expected code %s, got %s (%v)", tc.wantCode, code, err)
			}
		})
	}

	if _, err := NewExtractor(&Config{}, nil, nil); err != nil {
		t.Errorf("zero config should default cleanly, got %v", err)
	}
}

func TestNewExtractor_ExtraStopwords(t *testing.T) {
	e, err := NewExtractor(&Config{ExtraStopwords: []string{"Hammer"}}, nil, nil)
	if err != nil {
		t.Fatalf("NewExtractor returned error: %v", err)
	}

	freq := e.TermFrequency("hammer axe chisel", 0)
	if _, ok := freq["hammer"]; ok {
		t.Error("extra stopword should be dropped (case-folded)")
	}
	if len(freq) != 2 {
		t.Errorf("expected axe and chisel to survive, got %v", freq)
	}
	// The default list still applies alongside the extras.
	if got := e.TermFrequency("the was hammer", 0); len(got) != 0 {
		t.Errorf("default stopwords should still be active, got %v", got)
	}
}
