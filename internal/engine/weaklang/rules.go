// Package weaklang detects weak words and phrases in prose, scores overall
// writing strength, and suggests replacements.  Categories are configured as
// data; the package owns only the compiled matcher derived from them.
package weaklang

import (
	"github.com/quillflow/QuillScope-Engine/pkg/errors"
)

// CategoryRule defines one named category of weak language.  Words are
// literal terms matched case-insensitively on word boundaries; Patterns are
// regular expressions compiled verbatim (with case-insensitivity applied)
// for multi-word phrases.
type CategoryRule struct {
	// Name identifies the category in matches and reports.
	Name string `mapstructure:"name" json:"name"`

	// Severity ranks the category, 1 being the most severe.  The strength
	// score applies its extra penalty to matches in the top-ranked category.
	Severity int `mapstructure:"severity" json:"severity"`

	// Words lists literal weak words.
	Words []string `mapstructure:"words" json:"words,omitempty"`

	// Patterns lists phrase patterns as regular expressions.
	Patterns []string `mapstructure:"patterns" json:"patterns,omitempty"`
}

// RuleSet is the complete detector configuration: ordered categories plus
// the suggestion table.  Category order is part of the contract, it decides
// the tie-break when two matches start at the same offset.
type RuleSet struct {
	Categories []CategoryRule `mapstructure:"categories" json:"categories"`

	// Suggestions maps a lowercase weak word to its replacement.  An empty
	// value means the recommended action is removal, which callers see as
	// "no suggestion".
	Suggestions map[string]string `mapstructure:"suggestions" json:"suggestions,omitempty"`
}

// Validate checks structural soundness: every category needs a name and at
// least one word or pattern, names must be unique, and severities must be
// positive and unique so the top-ranked category is unambiguous.
func (rs RuleSet) Validate() error {
	if len(rs.Categories) == 0 {
		return errors.New(errors.ErrCodeRuleSetInvalid, "rule set has no categories")
	}

	names := make(map[string]struct{}, len(rs.Categories))
	severities := make(map[int]string, len(rs.Categories))
	for _, c := range rs.Categories {
		if c.Name == "" {
			return errors.New(errors.ErrCodeRuleSetInvalid, "category with empty name")
		}
		if _, dup := names[c.Name]; dup {
			return errors.Newf(errors.ErrCodeRuleSetInvalid, "duplicate category %q", c.Name)
		}
		names[c.Name] = struct{}{}

		if len(c.Words) == 0 && len(c.Patterns) == 0 {
			return errors.Newf(errors.ErrCodeRuleSetInvalid, "category %q has no words or patterns", c.Name)
		}
		if c.Severity < 1 {
			return errors.Newf(errors.ErrCodeRuleSetInvalid, "category %q severity must be >= 1", c.Name)
		}
		if other, dup := severities[c.Severity]; dup {
			return errors.Newf(errors.ErrCodeSeverityDuplicate,
				"categories %q and %q share severity %d", other, c.Name, c.Severity)
		}
		severities[c.Severity] = c.Name
	}
	return nil
}

// DefaultRuleSet returns the built-in categories and suggestion table.
// Configuration may replace or extend it.
func DefaultRuleSet() RuleSet {
	return RuleSet{
		Categories: []CategoryRule{
			{
				Name:     "filler",
				Severity: 1,
				Words: []string{
					"very", "really", "just", "quite", "actually", "basically",
					"literally", "simply", "totally", "honestly", "anyway",
				},
			},
			{
				Name:     "hedge",
				Severity: 2,
				Words: []string{
					"maybe", "perhaps", "possibly", "probably", "somewhat",
					"apparently", "seemingly", "arguably", "presumably",
				},
				Patterns: []string{
					`\b(?:sort|kind)\s+of\b`,
					`\bi\s+(?:think|guess|feel)\b`,
					`\bin\s+my\s+opinion\b`,
				},
			},
			{
				Name:     "intensifier",
				Severity: 3,
				Words: []string{
					"extremely", "incredibly", "absolutely", "completely",
					"utterly", "highly", "definitely", "certainly",
				},
			},
			{
				Name:     "vague",
				Severity: 4,
				Words: []string{
					"stuff", "things", "thing", "good", "bad", "nice",
					"interesting", "various", "several",
				},
				Patterns: []string{
					`\ba\s+lot\b`,
					`\ba\s+(?:few|bit)\b`,
				},
			},
			{
				Name:     "redundancy",
				Severity: 5,
				Patterns: []string{
					`\bend\s+result\b`,
					`\bfinal\s+outcome\b`,
					`\bpast\s+history\b`,
					`\badvance\s+planning\b`,
					`\bfuture\s+plans\b`,
					`\bbasic\s+fundamentals\b`,
					`\bcompletely\s+eliminate\b`,
					`\bclose\s+proximity\b`,
				},
			},
		},
		Suggestions: map[string]string{
			// Empty values mean "remove the word".
			"very":        "",
			"really":      "",
			"just":        "",
			"quite":       "",
			"actually":    "",
			"basically":   "",
			"literally":   "",
			"simply":      "",
			"totally":     "",
			"honestly":    "",
			"stuff":       "material",
			"things":      "elements",
			"thing":       "element",
			"good":        "effective",
			"bad":         "harmful",
			"nice":        "pleasant",
			"interesting": "notable",
			"maybe":       "likely",
			"somewhat":    "moderately",
			"extremely":   "exceptionally",
			"highly":      "notably",
		},
	}
}
