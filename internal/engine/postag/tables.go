package postag

// POS labels produced by the cascade.
const (
	LabelAdverb        = "adverb"
	LabelVerbGerund    = "verb (gerund)"
	LabelModal         = "modal verb"
	LabelVerbIrregular = "verb (irregular)"
	LabelPronoun       = "pronoun"
	LabelDeterminer    = "determiner"
	LabelPreposition   = "preposition"
	LabelConjunction   = "conjunction"
	LabelNoun          = "noun"
	LabelVerb          = "verb"
	LabelVerbPast      = "verb (past)"
	LabelAdjective     = "adjective"
	LabelProperNoun    = "proper noun"
	LabelFunctionWord  = "function word"
	LabelUnknown       = "unknown"
)

// simplifiedLabels maps full labels to their compact display forms.
var simplifiedLabels = map[string]string{
	LabelAdverb:        "adv",
	LabelVerbGerund:    "v-ing",
	LabelModal:         "modal",
	LabelVerbIrregular: "v-irr",
	LabelPronoun:       "pron",
	LabelDeterminer:    "det",
	LabelPreposition:   "prep",
	LabelConjunction:   "conj",
	LabelNoun:          "noun",
	LabelVerb:          "verb",
	LabelVerbPast:      "v-ed",
	LabelAdjective:     "adj",
	LabelProperNoun:    "propn",
	LabelFunctionWord:  "func",
	LabelUnknown:       "unk",
}

// SimplifiedLabel returns the compact form of a label, or the label itself
// when no mapping exists.
func SimplifiedLabel(label string) string {
	if s, ok := simplifiedLabels[label]; ok {
		return s
	}
	return label
}

// KnownLabel reports whether label is one this package can produce.
func KnownLabel(label string) bool {
	_, ok := simplifiedLabels[label]
	return ok
}

// closedClass is one lookup table in the cascade.
type closedClass struct {
	name  string
	label string
	words map[string]struct{}
}

func wordSet(words ...string) map[string]struct{} {
	s := make(map[string]struct{}, len(words))
	for _, w := range words {
		s[w] = struct{}{}
	}
	return s
}

// closedClassTables returns the lookup tables in cascade order.  The order
// is a contract: the first table containing the word decides its label, so
// words appearing in several grammatical roles are listed only in the table
// that should win.
func closedClassTables() []closedClass {
	return []closedClass{
		{
			name:  "modal verb",
			label: LabelModal,
			words: wordSet(
				"can", "could", "will", "would", "shall", "should",
				"may", "might", "must", "ought",
			),
		},
		{
			name:  "irregular verb",
			label: LabelVerbIrregular,
			words: wordSet(
				"be", "am", "is", "are", "was", "were", "been",
				"have", "has", "had",
				"do", "does", "did", "done",
				"go", "went", "gone",
				"say", "said", "see", "saw", "seen",
				"take", "took", "taken", "get", "got", "gotten",
				"make", "made", "come", "came",
				"know", "knew", "known", "think", "thought",
				"give", "gave", "given", "find", "found",
				"tell", "told", "become", "became",
				"begin", "began", "begun", "keep", "kept",
				"hold", "held", "write", "wrote", "written",
				"stand", "stood", "hear", "heard",
				"let", "mean", "meant", "set", "meet", "met",
				"run", "ran", "pay", "paid", "sit", "sat",
				"speak", "spoke", "spoken", "lead", "led",
				"read", "grow", "grew", "grown", "lose", "lost",
				"fall", "fell", "fallen", "send", "sent",
				"build", "built", "break", "broke", "broken",
				"spend", "spent", "cut", "rise", "rose", "risen",
				"drive", "drove", "driven", "buy", "bought",
				"wear", "wore", "worn", "choose", "chose", "chosen",
			),
		},
		{
			name:  "pronoun",
			label: LabelPronoun,
			words: wordSet(
				"i", "you", "he", "she", "it", "we", "they",
				"me", "him", "her", "us", "them",
				"myself", "yourself", "himself", "herself", "itself",
				"ourselves", "yourselves", "themselves",
				"who", "whom", "whose", "which", "what",
				"anyone", "anybody", "anything",
				"everyone", "everybody", "everything",
				"someone", "somebody", "something",
				"nobody", "nothing", "none",
				"mine", "yours", "hers", "ours", "theirs",
			),
		},
		{
			name:  "determiner",
			label: LabelDeterminer,
			words: wordSet(
				"the", "a", "an", "this", "that", "these", "those",
				"my", "your", "his", "its", "our", "their",
				"some", "any", "no", "every", "each",
				"either", "neither", "all", "both", "few",
				"many", "much", "most", "other", "another", "such",
			),
		},
		{
			name:  "preposition",
			label: LabelPreposition,
			words: wordSet(
				"in", "on", "at", "to", "for", "with", "by", "from",
				"of", "about", "into", "through", "during", "before",
				"after", "above", "below", "between", "under", "over",
				"against", "among", "around", "behind", "beside",
				"beyond", "near", "toward", "towards", "upon",
				"within", "without", "across", "along", "inside",
				"outside", "throughout", "despite", "except",
				"like", "off", "onto", "per",
			),
		},
		{
			name:  "conjunction",
			label: LabelConjunction,
			words: wordSet(
				"and", "or", "but", "nor", "yet", "so",
				"because", "although", "though", "while",
				"if", "unless", "until", "since",
				"when", "whenever", "where", "wherever",
				"whether", "as", "once",
			),
		},
		{
			name:  "common adverb",
			label: LabelAdverb,
			words: wordSet(
				"very", "quite", "rather", "really", "too", "just",
				"only", "now", "then", "here", "there",
				"always", "never", "often", "sometimes", "soon",
				"already", "still", "even", "again", "also",
				"almost", "enough", "perhaps", "maybe",
				"together", "well",
			),
		},
	}
}
