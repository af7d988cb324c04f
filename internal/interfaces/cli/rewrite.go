package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/quillflow/QuillScope-Engine/pkg/errors"
)

var (
	rewriteTarget string
	rewriteWith   string
)

// NewRewriteCmd creates the rewrite command.
func NewRewriteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rewrite [file]",
		Short: "Replace a word everywhere, preserving case",
		Long: "Replace every whole-word occurrence of --target, matching the\n" +
			"casing of each occurrence. An explicitly empty --with removes the\n" +
			"word; omitting --with uses the configured suggestion for it.",
		Args: cobra.MaximumNArgs(1),
		RunE: runRewrite,
	}

	cmd.Flags().StringVar(&rewriteTarget, "target", "", "word to replace (required)")
	cmd.Flags().StringVar(&rewriteWith, "with", "", "replacement text (empty removes the word)")
	cmd.MarkFlagRequired("target")

	return cmd
}

func runRewrite(cmd *cobra.Command, args []string) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}

	replacement := rewriteWith
	if !cmd.Flags().Changed("with") {
		suggestion, ok := cliCtx.Service.Suggest(rewriteTarget)
		if !ok {
			return errors.Newf(errors.ErrCodeNotFound,
				"no suggestion configured for %q; provide --with", rewriteTarget)
		}
		replacement = suggestion
	}

	text, err := readInput(cmd, args)
	if err != nil {
		return err
	}

	out, n := cliCtx.Service.Rewrite(text, rewriteTarget, replacement)

	return PrintResult(cmd, &rewriteResult{
		Text:         out,
		Target:       rewriteTarget,
		Replacement:  replacement,
		Replacements: n,
	})
}

// rewriteResult carries the rewritten text and what was done to it.
type rewriteResult struct {
	Text         string `json:"text"`
	Target       string `json:"target"`
	Replacement  string `json:"replacement"`
	Replacements int    `json:"replacements"`
}

// String returns only the rewritten text so output stays pipe-friendly.
func (r *rewriteResult) String() string {
	return r.Text
}

// TableHeaders implements the table output contract.
func (r *rewriteResult) TableHeaders() []string {
	return []string{"Target", "Replacement", "Replacements"}
}

// TableRows returns the single summary row.
func (r *rewriteResult) TableRows() [][]string {
	replacement := r.Replacement
	if replacement == "" {
		replacement = "(removed)"
	}
	return [][]string{{
		r.Target,
		replacement,
		strconv.Itoa(r.Replacements),
	}}
}
