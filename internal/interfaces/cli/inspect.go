package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/quillflow/QuillScope-Engine/pkg/errors"
	textTypes "github.com/quillflow/QuillScope-Engine/pkg/types/text"
)

var inspectOffset int

// NewInspectCmd creates the inspect command.
func NewInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect [file]",
		Short: "Locate the word and sentence at a byte offset",
		Long: "Resolve the word fragment and sentence bounds containing the\n" +
			"given byte offset, the same lookups an editor integration uses\n" +
			"around its cursor position.",
		Args: cobra.MaximumNArgs(1),
		RunE: runInspect,
	}

	cmd.Flags().IntVar(&inspectOffset, "offset", 0, "byte offset into the input")

	return cmd
}

func runInspect(cmd *cobra.Command, args []string) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}

	if inspectOffset < 0 {
		return errors.InvalidParam(fmt.Sprintf("offset must be >= 0, got %d", inspectOffset))
	}

	text, err := readInput(cmd, args)
	if err != nil {
		return err
	}

	word := cliCtx.Service.WordAt(text, inspectOffset)
	sentence := cliCtx.Service.SentenceAt(text, inspectOffset)

	return PrintResult(cmd, &inspectResult{
		Offset:       inspectOffset,
		Word:         word,
		Sentence:     sentence,
		SentenceText: text[sentence.Start:sentence.End],
	})
}

// inspectResult locates one offset within its word and sentence.
type inspectResult struct {
	Offset       int                      `json:"offset"`
	Word         textTypes.WordFragment   `json:"word"`
	Sentence     textTypes.SentenceBounds `json:"sentence"`
	SentenceText string                   `json:"sentence_text"`
}

func (r *inspectResult) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Offset: %d\n", r.Offset)
	if r.Word.Empty() {
		fmt.Fprintf(&sb, "Word: (boundary at %d)\n", r.Word.Span.Start)
	} else {
		fmt.Fprintf(&sb, "Word: %q @ %d-%d\n", r.Word.Word, r.Word.Span.Start, r.Word.Span.End)
	}
	fmt.Fprintf(&sb, "Sentence: %q @ %d-%d", r.SentenceText, r.Sentence.Start, r.Sentence.End)
	return sb.String()
}

// TableHeaders implements the table output contract.
func (r *inspectResult) TableHeaders() []string {
	return []string{"Kind", "Text", "Span"}
}

// TableRows returns the word and sentence rows.
func (r *inspectResult) TableRows() [][]string {
	return [][]string{
		{"word", r.Word.Word, fmt.Sprintf("%d-%d", r.Word.Span.Start, r.Word.Span.End)},
		{"sentence", truncateString(r.SentenceText, 60), fmt.Sprintf("%d-%d", r.Sentence.Start, r.Sentence.End)},
	}
}
