// Package config loads, validates and watches the engine configuration.
//
// The configuration is one YAML document (or QUILLSCOPE_-prefixed environment
// variables) composed of four sections: logging, the weak-language detector
// rules, the part-of-speech tagger rules and the topic extractor settings.
// Each engine package owns its section type; this package composes them,
// fills defaults and routes validation.
package config

import (
	"github.com/quillflow/QuillScope-Engine/internal/engine/postag"
	"github.com/quillflow/QuillScope-Engine/internal/engine/topics"
	"github.com/quillflow/QuillScope-Engine/internal/engine/weaklang"
	"github.com/quillflow/QuillScope-Engine/internal/infrastructure/monitoring/logging"
	"github.com/quillflow/QuillScope-Engine/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// Root Config
// ─────────────────────────────────────────────────────────────────────────────

// Config is the root configuration for the engine and its front ends.
type Config struct {
	Log      logging.LogConfig `mapstructure:"log"`
	Detector weaklang.Config   `mapstructure:"detector"`
	Tagger   postag.Config     `mapstructure:"tagger"`
	Topics   topics.Config     `mapstructure:"topics"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Validation
// ─────────────────────────────────────────────────────────────────────────────

// Validate performs semantic validation of the fully-populated Config.  It
// expects defaults to be applied first (see ApplyDefaults); a zero Config
// does not validate.  Section failures are wrapped as CFG_002 so callers can
// rely on errors.IsConfigError regardless of which section was at fault.
func (c *Config) Validate() error {
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return errors.Newf(errors.ErrCodeConfigInvalid,
			"log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return errors.Newf(errors.ErrCodeConfigInvalid,
			"log.format %q is invalid; expected json|console", c.Log.Format)
	}
	if err := c.Detector.Rules.Validate(); err != nil {
		return errors.Wrap(err, errors.ErrCodeConfigInvalid, "detector rules")
	}
	if err := c.Tagger.Validate(); err != nil {
		return errors.Wrap(err, errors.ErrCodeConfigInvalid, "tagger rules")
	}
	if err := c.Topics.Validate(); err != nil {
		return errors.Wrap(err, errors.ErrCodeConfigInvalid, "topics settings")
	}
	return nil
}
