package cli

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/quillflow/QuillScope-Engine/internal/application/analysis"
	"github.com/quillflow/QuillScope-Engine/pkg/errors"
	textTypes "github.com/quillflow/QuillScope-Engine/pkg/types/text"
)

var (
	analyzeShowFlagged bool
	analyzeLeftMarker  string
	analyzeRightMarker string
)

// NewAnalyzeCmd creates the analyze command.
func NewAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [file]",
		Short: "Run the full analysis pass over a text",
		Long: "Detect weak language, score writing strength, and extract topic\n" +
			"keywords in one pass. Reads the named file, or stdin when no file\n" +
			"is given.",
		Args: cobra.MaximumNArgs(1),
		RunE: runAnalyze,
	}

	cmd.Flags().BoolVar(&analyzeShowFlagged, "flagged", false, "include the input with weak matches wrapped in markers")
	cmd.Flags().StringVar(&analyzeLeftMarker, "left", "", "left marker for --flagged (default from config)")
	cmd.Flags().StringVar(&analyzeRightMarker, "right", "", "right marker for --flagged (default from config)")

	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}

	text, err := readInput(cmd, args)
	if err != nil {
		return err
	}

	report, err := cliCtx.Service.Analyze(text)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "analysis failed")
	}

	result := &analyzeResult{Report: report}
	if analyzeShowFlagged {
		flagged, flagErr := cliCtx.Service.Flag(text, analyzeLeftMarker, analyzeRightMarker)
		if flagErr != nil {
			return errors.Wrap(flagErr, errors.ErrCodeInternal, "flagging failed")
		}
		result.Flagged = flagged
	}

	return PrintResult(cmd, result)
}

// analyzeResult decorates a report with the optionally flagged input.
type analyzeResult struct {
	*analysis.Report
	Flagged string `json:"flagged_text,omitempty"`
}

func (r *analyzeResult) String() string {
	var sb strings.Builder
	s := r.Strength

	fmt.Fprintf(&sb, "Score: %.1f (%s)\n", s.Score, colorizeGrade(s.Grade))
	fmt.Fprintf(&sb, "Words: %d  Matches: %d  Density: %.2f per 100 words\n",
		s.WordCount, s.MatchCount, s.Density)

	if len(r.Matches) > 0 {
		sb.WriteString("\nWeak language:\n")
		for _, m := range r.Matches {
			fmt.Fprintf(&sb, "  %-12s %q @ %d-%d", m.Category, m.Text, m.Span.Start, m.Span.End)
			if m.Suggestion != "" {
				fmt.Fprintf(&sb, " -> %s", m.Suggestion)
			}
			sb.WriteString("\n")
		}
	}

	if len(r.Keywords) > 0 {
		sb.WriteString("\nKeywords:\n")
		for i, kw := range r.Keywords {
			fmt.Fprintf(&sb, "  %d. %s (score %.2f, count %d)\n", i+1, kw.Term, kw.Score, kw.Count)
		}
	}

	if r.Flagged != "" {
		sb.WriteString("\nFlagged:\n")
		sb.WriteString(r.Flagged)
		sb.WriteString("\n")
	}

	return strings.TrimRight(sb.String(), "\n")
}

// TableHeaders implements the table output contract.
func (r *analyzeResult) TableHeaders() []string {
	return []string{"Category", "Match", "Span", "Suggestion"}
}

// TableRows lists one row per weak match.
func (r *analyzeResult) TableRows() [][]string {
	rows := make([][]string, 0, len(r.Matches))
	for _, m := range r.Matches {
		rows = append(rows, []string{
			m.Category,
			m.Text,
			fmt.Sprintf("%d-%d", m.Span.Start, m.Span.End),
			m.Suggestion,
		})
	}
	return rows
}

// colorizeGrade colors the grade band for terminal output.
func colorizeGrade(g textTypes.Grade) string {
	switch g {
	case textTypes.GradeExcellent, textTypes.GradeGood:
		return color.GreenString(string(g))
	case textTypes.GradeFair:
		return color.YellowString(string(g))
	default:
		return color.RedString(string(g))
	}
}
