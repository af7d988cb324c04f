package weaklang

import (
	"regexp"
	"sort"
	"strings"

	"github.com/quillflow/QuillScope-Engine/pkg/errors"
	textTypes "github.com/quillflow/QuillScope-Engine/pkg/types/text"
)

// compiledPattern is one matchable unit: either a category's whole word list
// folded into a single alternation, or one phrase pattern.
type compiledPattern struct {
	category string
	re       *regexp.Regexp
}

// matcher holds the compiled form of a RuleSet.  Pattern order follows
// category order, which makes match collection deterministic and gives
// same-offset ties a stable winner.
type matcher struct {
	patterns    []compiledPattern
	topCategory string
}

// compileRuleSet validates rs and compiles every category into regular
// expressions.  Word lists become one case-insensitive, boundary-anchored
// alternation per category; phrase patterns compile verbatim with
// case-insensitivity applied.
func compileRuleSet(rs RuleSet) (*matcher, error) {
	if err := rs.Validate(); err != nil {
		return nil, err
	}

	m := &matcher{}
	topSeverity := 0
	for _, c := range rs.Categories {
		if topSeverity == 0 || c.Severity < topSeverity {
			topSeverity = c.Severity
			m.topCategory = c.Name
		}

		if len(c.Words) > 0 {
			re, err := regexp.Compile(wordAlternation(c.Words))
			if err != nil {
				return nil, errors.Wrap(err, errors.ErrCodePatternCompile,
					"compiling word list").WithDetail("category=" + c.Name)
			}
			m.patterns = append(m.patterns, compiledPattern{category: c.Name, re: re})
		}
		for _, p := range c.Patterns {
			re, err := regexp.Compile("(?i)" + p)
			if err != nil {
				return nil, errors.Wrap(err, errors.ErrCodePatternCompile,
					"compiling phrase pattern").WithDetail("category=" + c.Name + " pattern=" + p)
			}
			m.patterns = append(m.patterns, compiledPattern{category: c.Name, re: re})
		}
	}
	return m, nil
}

// wordAlternation builds `(?i)\b(?:w1|w2|...)\b` from literal words.  Longer
// words sort first so that, independent of engine semantics, a prefix never
// shadows a longer sibling.
func wordAlternation(words []string) string {
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = regexp.QuoteMeta(w)
	}
	sort.SliceStable(quoted, func(i, j int) bool { return len(quoted[i]) > len(quoted[j]) })
	return `(?i)\b(?:` + strings.Join(quoted, "|") + `)\b`
}

// findAll collects every match of every pattern and sorts the result by
// start offset.  The sort is stable, so matches starting at the same offset
// keep category order.  Overlapping matches are all reported.
func (m *matcher) findAll(s string) []textTypes.WeakMatch {
	var out []textTypes.WeakMatch
	for _, p := range m.patterns {
		for _, loc := range p.re.FindAllStringIndex(s, -1) {
			out = append(out, textTypes.WeakMatch{
				Text:     s[loc[0]:loc[1]],
				Span:     textTypes.Span{Start: loc[0], End: loc[1]},
				Category: p.category,
			})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Span.Start < out[j].Span.Start })
	return out
}
