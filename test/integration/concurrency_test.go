package integration

import (
	"fmt"
	"testing"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/quillflow/QuillScope-Engine/internal/application/analysis"
	"github.com/quillflow/QuillScope-Engine/internal/config"
)

// ---------------------------------------------------------------------------
// Concurrent use of one session while rules reload underneath it.
// ---------------------------------------------------------------------------

func TestConcurrentUseDuringReloads(t *testing.T) {
	SkipIfNoIntegration(t)

	svc := NewSessionService(t, nil)

	samples := []string{
		"Maybe the results are very interesting to the review board.",
		"The pipeline tokenizes documents and extracts keyword topics.",
		"She quickly summarized the findings before the deadline.",
		"We should probably simplify this section for readability.",
	}

	const (
		workers    = 4
		iterations = 50
		reloads    = 20
	)

	var g errgroup.Group
	for w := 0; w < workers; w++ {
		w := w
		g.Go(func() error {
			for i := 0; i < iterations; i++ {
				text := samples[(w+i)%len(samples)]

				report, err := svc.Analyze(text)
				if err != nil {
					return fmt.Errorf("worker %d analyze: %w", w, err)
				}
				if report.Strength == nil || report.Strength.WordCount == 0 {
					return fmt.Errorf("worker %d: empty strength report for %q", w, text)
				}
				if _, err := svc.Flag(text, "", ""); err != nil {
					return fmt.Errorf("worker %d flag: %w", w, err)
				}
				if kws := svc.Keywords(&analysis.KeywordsInput{Text: text, Count: 3}); len(kws) == 0 {
					return fmt.Errorf("worker %d: no keywords for %q", w, text)
				}
				if tags := svc.TagWords(text); len(tags) == 0 {
					return fmt.Errorf("worker %d: no tagged words for %q", w, text)
				}
				if _, n := svc.Rewrite(text, "very", "deeply"); n < 0 {
					return fmt.Errorf("worker %d: negative replacement count", w)
				}
			}
			return nil
		})
	}
	g.Go(func() error {
		for i := 0; i < reloads; i++ {
			next := config.NewDefaultConfig()
			if i%2 == 1 {
				next.Detector.LeftMarker = "<"
				next.Detector.RightMarker = ">"
			}
			if err := svc.ReloadRules(next); err != nil {
				return fmt.Errorf("reload %d: %w", i, err)
			}
			time.Sleep(time.Millisecond)
		}
		return nil
	})
	AssertNoError(t, g.Wait())

	stats := svc.Stats()
	if stats.TotalDetections == 0 || stats.TotalTaggings == 0 || stats.TotalRewrites == 0 {
		t.Fatalf("telemetry missing after load: %+v", stats)
	}
}
