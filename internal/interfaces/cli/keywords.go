package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/quillflow/QuillScope-Engine/internal/application/analysis"
	"github.com/quillflow/QuillScope-Engine/internal/engine/topics"
	"github.com/quillflow/QuillScope-Engine/pkg/errors"
	textTypes "github.com/quillflow/QuillScope-Engine/pkg/types/text"
)

var (
	keywordsCount     int
	keywordsAlgorithm string
	keywordsMinLength int
	keywordsNoCache   bool
)

// NewKeywordsCmd creates the keywords command.
func NewKeywordsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keywords [file]",
		Short: "Extract topic keywords from a text",
		Long: "Rank the dominant terms of the input by raw frequency or TF-IDF\n" +
			"against the corpus accumulated during this run.",
		Args: cobra.MaximumNArgs(1),
		RunE: runKeywords,
	}

	cmd.Flags().IntVarP(&keywordsCount, "count", "n", 0, "number of keywords (0 uses the configured default)")
	cmd.Flags().StringVar(&keywordsAlgorithm, "algorithm", "", "ranking algorithm: frequency|tfidf (default from config)")
	cmd.Flags().IntVar(&keywordsMinLength, "min-length", 0, "minimum term length override (bypasses the topic cache)")
	cmd.Flags().BoolVar(&keywordsNoCache, "no-cache", false, "skip the topic cache")

	return cmd
}

func runKeywords(cmd *cobra.Command, args []string) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}

	algorithm := strings.ToLower(strings.TrimSpace(keywordsAlgorithm))
	switch algorithm {
	case "", topics.AlgorithmFrequency, topics.AlgorithmTFIDF:
	default:
		return errors.Newf(errors.ErrCodeAlgorithmUnknown,
			"invalid algorithm: %s (must be frequency|tfidf)", keywordsAlgorithm)
	}
	if keywordsCount < 0 {
		return errors.InvalidParam(fmt.Sprintf("count must be >= 0, got %d", keywordsCount))
	}
	if keywordsMinLength < 0 {
		return errors.InvalidParam(fmt.Sprintf("min-length must be >= 0, got %d", keywordsMinLength))
	}

	text, err := readInput(cmd, args)
	if err != nil {
		return err
	}

	kws := cliCtx.Service.Keywords(&analysis.KeywordsInput{
		Text:      text,
		Count:     keywordsCount,
		MinLength: keywordsMinLength,
		Algorithm: algorithm,
		NoCache:   keywordsNoCache,
	})
	terms, docs := cliCtx.Service.CorpusSize()

	return PrintResult(cmd, &keywordsResult{
		Keywords:        kws,
		CorpusTerms:     terms,
		CorpusDocuments: docs,
	})
}

// keywordsResult pairs extracted keywords with the corpus state they were
// ranked against.
type keywordsResult struct {
	Keywords        []textTypes.Keyword `json:"keywords"`
	CorpusTerms     int                 `json:"corpus_terms"`
	CorpusDocuments int                 `json:"corpus_documents"`
}

func (r *keywordsResult) String() string {
	if len(r.Keywords) == 0 {
		return "No keywords found."
	}

	var sb strings.Builder
	for i, kw := range r.Keywords {
		fmt.Fprintf(&sb, "%d. %s (score %.2f, count %d)\n", i+1, kw.Term, kw.Score, kw.Count)
	}
	fmt.Fprintf(&sb, "\nCorpus: %d terms across %d documents", r.CorpusTerms, r.CorpusDocuments)
	return sb.String()
}

// TableHeaders implements the table output contract.
func (r *keywordsResult) TableHeaders() []string {
	return []string{"Rank", "Term", "Score", "Count"}
}

// TableRows lists one row per keyword.
func (r *keywordsResult) TableRows() [][]string {
	rows := make([][]string, 0, len(r.Keywords))
	for i, kw := range r.Keywords {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			kw.Term,
			fmt.Sprintf("%.2f", kw.Score),
			strconv.Itoa(kw.Count),
		})
	}
	return rows
}
