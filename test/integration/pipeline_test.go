package integration

import (
	"strings"
	"testing"

	"github.com/quillflow/QuillScope-Engine/internal/application/analysis"
	"github.com/quillflow/QuillScope-Engine/internal/config"
	"github.com/quillflow/QuillScope-Engine/internal/engine/topics"
)

// ---------------------------------------------------------------------------
// Full revision loop: analyze, apply suggestions, analyze again.
// ---------------------------------------------------------------------------

func TestRevisionLoopImprovesScore(t *testing.T) {
	SkipIfNoIntegration(t)

	svc := NewSessionService(t, nil)

	// Ten words, five of them weak: very and just (filler), good (vague),
	// Maybe and probably (hedge).  Only good and maybe carry replacement
	// suggestions; the rest suggest removal.
	const draft = "This is very good. Maybe we should probably just go."

	before, err := svc.Analyze(draft)
	AssertNoError(t, err)
	if got := before.Strength.MatchCount; got != 5 {
		t.Fatalf("draft match count = %d, want 5; matches: %+v", got, before.Matches)
	}
	if got := before.Strength.WordCount; got != 10 {
		t.Fatalf("draft word count = %d, want 10", got)
	}

	density, err := svc.Density(draft)
	AssertNoError(t, err)
	if density != 50.0 {
		t.Fatalf("draft density = %v, want 50.0", density)
	}

	// Apply every non-removal suggestion the report surfaced.
	revised := draft
	applied := 0
	seen := make(map[string]bool)
	for _, m := range before.Matches {
		target := strings.ToLower(m.Text)
		if seen[target] {
			continue
		}
		seen[target] = true
		replacement, ok := svc.Suggest(target)
		if !ok {
			continue
		}
		var n int
		revised, n = svc.Rewrite(revised, target, replacement)
		applied += n
	}
	if applied != 2 {
		t.Fatalf("applied %d replacements, want 2 (good, maybe)", applied)
	}
	const want = "This is very effective. Likely we should probably just go."
	if revised != want {
		t.Fatalf("revised text = %q, want %q", revised, want)
	}

	after, err := svc.Analyze(revised)
	AssertNoError(t, err)
	if got := after.Strength.MatchCount; got != 3 {
		t.Fatalf("revised match count = %d, want 3; matches: %+v", got, after.Matches)
	}
	if after.Strength.Score <= before.Strength.Score {
		t.Fatalf("score did not improve: before %.1f, after %.1f",
			before.Strength.Score, after.Strength.Score)
	}
	if before.SessionID != after.SessionID || before.SessionID != svc.SessionID() {
		t.Fatalf("session id drifted across reports: %q vs %q", before.SessionID, after.SessionID)
	}
}

// ---------------------------------------------------------------------------
// Corpus accumulation across documents.
// ---------------------------------------------------------------------------

func TestCorpusAccumulatesAcrossDocuments(t *testing.T) {
	SkipIfNoIntegration(t)

	cfg := config.NewDefaultConfig()
	cfg.Topics.DefaultAlgorithm = topics.AlgorithmTFIDF
	svc := NewSessionService(t, cfg)

	docs := []string{
		"project alpha shipped the first milestone",
		"project beta slipped its milestone twice",
		"project gamma cancelled the milestone review",
	}
	for _, doc := range docs {
		_, err := svc.Analyze(doc)
		AssertNoError(t, err)
	}
	terms, documents := svc.CorpusSize()
	if documents != 3 {
		t.Fatalf("corpus documents = %d, want 3", documents)
	}
	if terms == 0 {
		t.Fatal("corpus term table is empty after three documents")
	}

	// A repeated document is a cache hit and must not fold in twice.
	_, err := svc.Analyze(docs[0])
	AssertNoError(t, err)
	if _, documents = svc.CorpusSize(); documents != 3 {
		t.Fatalf("corpus documents after repeat analysis = %d, want 3", documents)
	}

	// Once this query folds in, "project" appears in all four documents and
	// its inverse document frequency bottoms out at zero, so the term unique
	// to the query has to win despite "project" matching it on raw count.
	kws := svc.Keywords(&analysis.KeywordsInput{
		Text:      "project epsilon epsilon epsilon project",
		Algorithm: topics.AlgorithmTFIDF,
		NoCache:   true,
	})
	if _, documents = svc.CorpusSize(); documents != 4 {
		t.Fatalf("corpus documents after uncached query = %d, want 4", documents)
	}
	if len(kws) != 2 {
		t.Fatalf("keyword count = %d, want 2: %+v", len(kws), kws)
	}
	if kws[0].Term != "epsilon" {
		t.Fatalf("top keyword = %q, want epsilon: %+v", kws[0].Term, kws)
	}
	if kws[1].Term != "project" || kws[1].Score != 0 {
		t.Fatalf("ubiquitous term should score zero, got %+v", kws[1])
	}

	// Reset detaches the session from everything it observed.
	svc.Reset()
	if terms, documents = svc.CorpusSize(); terms != 0 || documents != 0 {
		t.Fatalf("corpus after reset = (%d terms, %d documents), want (0, 0)", terms, documents)
	}

	// The cache was cleared with the corpus, so an old document folds anew.
	_, err = svc.Analyze(docs[0])
	AssertNoError(t, err)
	if _, documents = svc.CorpusSize(); documents != 1 {
		t.Fatalf("corpus documents after reset and re-analysis = %d, want 1", documents)
	}
}
