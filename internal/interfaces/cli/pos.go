package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/quillflow/QuillScope-Engine/internal/application/analysis"
)

var (
	posWord       string
	posSimplified bool
)

// NewPosCmd creates the pos command.
func NewPosCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pos [file]",
		Short: "Tag parts of speech with the heuristic cascade",
		Long: "Tag every substantive word of the input, or a single word given\n" +
			"with --word. Low-confidence guesses carry a trailing ? or ??.",
		Args: cobra.MaximumNArgs(1),
		RunE: runPos,
	}

	cmd.Flags().StringVarP(&posWord, "word", "w", "", "tag a single word instead of reading input")
	cmd.Flags().BoolVar(&posSimplified, "simplified", false, "show simplified labels (noun, verb, other)")

	return cmd
}

func runPos(cmd *cobra.Command, args []string) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}

	var words []analysis.TaggedWord
	if posWord != "" {
		words = []analysis.TaggedWord{cliCtx.Service.TagWord(posWord)}
	} else {
		text, readErr := readInput(cmd, args)
		if readErr != nil {
			return readErr
		}
		words = cliCtx.Service.TagWords(text)
	}

	return PrintResult(cmd, &posResult{Words: words, Simplified: posSimplified})
}

// posResult holds the tagging outcome for every substantive word of the
// input, in document order.
type posResult struct {
	Words      []analysis.TaggedWord `json:"words"`
	Simplified bool                  `json:"-"`
}

func (r *posResult) String() string {
	if len(r.Words) == 0 {
		return "No taggable words found."
	}

	var sb strings.Builder
	for _, w := range r.Words {
		label := w.Display
		if r.Simplified {
			label = w.Simplified
		}
		fmt.Fprintf(&sb, "%-20s %s", w.Word, label)
		if w.POS.Rationale != "" {
			fmt.Fprintf(&sb, "  (%s)", w.POS.Rationale)
		}
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

// TableHeaders implements the table output contract.
func (r *posResult) TableHeaders() []string {
	return []string{"Word", "POS", "Confidence", "Rationale"}
}

// TableRows lists one row per tagged word.
func (r *posResult) TableRows() [][]string {
	rows := make([][]string, 0, len(r.Words))
	for _, w := range r.Words {
		label := w.POS.Label
		if r.Simplified {
			label = w.Simplified
		}
		rows = append(rows, []string{
			w.Word,
			label,
			string(w.POS.Confidence),
			truncateString(w.POS.Rationale, 40),
		})
	}
	return rows
}
