package config

import (
	"github.com/quillflow/QuillScope-Engine/internal/engine/postag"
	"github.com/quillflow/QuillScope-Engine/internal/engine/topics"
	"github.com/quillflow/QuillScope-Engine/internal/engine/weaklang"
)

// ─────────────────────────────────────────────────────────────────────────────
// Default value constants
// ─────────────────────────────────────────────────────────────────────────────

const (
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultMinTermLength      = 3
	DefaultCorpusCap          = 1000
	DefaultTopicCacheCapacity = 100
	DefaultKeywordCount       = 5
	DefaultAlgorithm          = topics.AlgorithmFrequency
)

// ─────────────────────────────────────────────────────────────────────────────
// ApplyDefaults
// ─────────────────────────────────────────────────────────────────────────────

// ApplyDefaults fills every zero-value field in cfg with the engine default.
// Fields that have already been set by the caller are left unchanged so that
// explicit configuration always wins.  It must run after unmarshalling raw
// config data and before Validate so that optional-but-defaulted fields are
// never seen as missing.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	// ── Log ───────────────────────────────────────────────────────────────────
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
	if len(cfg.Log.OutputPaths) == 0 {
		cfg.Log.OutputPaths = []string{"stdout"}
	}
	if len(cfg.Log.ErrorOutputPaths) == 0 {
		cfg.Log.ErrorOutputPaths = []string{"stderr"}
	}

	// ── Detector ──────────────────────────────────────────────────────────────
	// Categories and suggestions default independently: a file that only
	// overrides the suggestion table keeps the built-in categories, and vice
	// versa.
	if len(cfg.Detector.Rules.Categories) == 0 {
		cfg.Detector.Rules.Categories = weaklang.DefaultRuleSet().Categories
	}
	if cfg.Detector.Rules.Suggestions == nil {
		cfg.Detector.Rules.Suggestions = weaklang.DefaultRuleSet().Suggestions
	}
	if cfg.Detector.LeftMarker == "" {
		cfg.Detector.LeftMarker = weaklang.DefaultLeftMarker
	}
	if cfg.Detector.RightMarker == "" {
		cfg.Detector.RightMarker = weaklang.DefaultRightMarker
	}

	// ── Tagger ────────────────────────────────────────────────────────────────
	if cfg.Tagger.SuffixRules == nil {
		cfg.Tagger.SuffixRules = postag.DefaultSuffixRules()
	}

	// ── Topics ────────────────────────────────────────────────────────────────
	if cfg.Topics.Stopwords == nil {
		cfg.Topics.Stopwords = topics.DefaultStopwords()
	}
	if cfg.Topics.MinTermLength == 0 {
		cfg.Topics.MinTermLength = DefaultMinTermLength
	}
	if cfg.Topics.CorpusCap == 0 {
		cfg.Topics.CorpusCap = DefaultCorpusCap
	}
	if cfg.Topics.CacheCapacity == 0 {
		cfg.Topics.CacheCapacity = DefaultTopicCacheCapacity
	}
	if cfg.Topics.DefaultCount == 0 {
		cfg.Topics.DefaultCount = DefaultKeywordCount
	}
	if cfg.Topics.DefaultAlgorithm == "" {
		cfg.Topics.DefaultAlgorithm = DefaultAlgorithm
	}
}

// NewDefaultConfig returns a Config populated entirely from defaults.  It is
// what the CLI runs with when no configuration file is present.
func NewDefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}
