package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillflow/QuillScope-Engine/internal/config"
	"github.com/quillflow/QuillScope-Engine/internal/engine/weaklang"
	"github.com/quillflow/QuillScope-Engine/pkg/errors"
)

func TestConfig_Validate_DefaultConfig(t *testing.T) {
	t.Parallel()
	assert.NoError(t, config.NewDefaultConfig().Validate())
}

func TestConfig_Validate_ZeroConfig(t *testing.T) {
	t.Parallel()
	cfg := &config.Config{}
	err := cfg.Validate()
	require.Error(t, err)
	assert.True(t, errors.IsConfigError(err))
}

func TestConfig_Validate_InvalidLogLevel(t *testing.T) {
	t.Parallel()
	cfg := config.NewDefaultConfig()
	cfg.Log.Level = "verbose"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log.level")
	assert.Equal(t, errors.ErrCodeConfigInvalid, errors.GetCode(err))
}

func TestConfig_Validate_InvalidLogFormat(t *testing.T) {
	t.Parallel()
	cfg := config.NewDefaultConfig()
	cfg.Log.Format = "xml"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log.format")
}

func TestConfig_Validate_EmptyCategory(t *testing.T) {
	t.Parallel()
	cfg := config.NewDefaultConfig()
	cfg.Detector.Rules.Categories = []weaklang.CategoryRule{
		{Name: "bare", Severity: 1},
	}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeConfigInvalid, errors.GetCode(err))
	assert.True(t, errors.IsConfigError(err))
}

func TestConfig_Validate_DuplicateSeverity(t *testing.T) {
	t.Parallel()
	cfg := config.NewDefaultConfig()
	cfg.Detector.Rules.Categories = []weaklang.CategoryRule{
		{Name: "one", Severity: 2, Words: []string{"alpha"}},
		{Name: "two", Severity: 2, Words: []string{"beta"}},
	}
	err := cfg.Validate()
	require.Error(t, err)
	assert.True(t, errors.IsConfigError(err))
}

func TestConfig_Validate_BadTaggerRule(t *testing.T) {
	t.Parallel()
	cfg := config.NewDefaultConfig()
	cfg.Tagger.SuffixRules[0].Label = "gerund" // not a known label
	err := cfg.Validate()
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeConfigInvalid, errors.GetCode(err))
}

func TestConfig_Validate_BadTopicsAlgorithm(t *testing.T) {
	t.Parallel()
	cfg := config.NewDefaultConfig()
	cfg.Topics.DefaultAlgorithm = "pagerank"
	err := cfg.Validate()
	require.Error(t, err)
	assert.True(t, errors.IsConfigError(err))
}

func TestConfig_Validate_NegativeCorpusCap(t *testing.T) {
	t.Parallel()
	cfg := config.NewDefaultConfig()
	cfg.Topics.CorpusCap = -1
	err := cfg.Validate()
	require.Error(t, err)
	assert.True(t, errors.IsConfigError(err))
}
