package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/quillflow/QuillScope-Engine/pkg/errors"
)

// envPrefix is the environment variable prefix used by all engine settings.
const envPrefix = "QUILLSCOPE"

// newViper builds a pre-configured Viper instance with the engine's standard
// settings: YAML file type, QUILLSCOPE_ env prefix, automatic env binding,
// and a key replacer that maps "." → "_" so that nested keys like
// "log.level" resolve to "QUILLSCOPE_LOG_LEVEL".
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	setScalarDefaults(v)
	return v
}

// setScalarDefaults registers the scalar keys with viper.  AutomaticEnv only
// resolves keys viper already knows about, so without these defaults an
// environment-only configuration would come back empty.  Structured rule
// data (detector categories, tagger suffix rules, stopword lists) is not
// env-addressable and is defaulted by ApplyDefaults instead.
func setScalarDefaults(v *viper.Viper) {
	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("log.format", DefaultLogFormat)
	v.SetDefault("detector.left_marker", "")
	v.SetDefault("detector.right_marker", "")
	v.SetDefault("topics.min_term_length", DefaultMinTermLength)
	v.SetDefault("topics.corpus_cap", DefaultCorpusCap)
	v.SetDefault("topics.cache_capacity", DefaultTopicCacheCapacity)
	v.SetDefault("topics.default_count", DefaultKeywordCount)
	v.SetDefault("topics.default_algorithm", DefaultAlgorithm)
}

// Load reads the YAML file at configPath, merges any QUILLSCOPE_* environment
// variable overrides, applies engine defaults for unset fields, and validates
// the result.  It returns a fully-populated *Config or a descriptive error.
func Load(configPath string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		code := errors.ErrCodeConfigLoad
		if os.IsNotExist(err) {
			code = errors.ErrCodeConfigNotFound
		}
		return nil, errors.Wrap(err, code, "reading config file").
			WithDetail(fmt.Sprintf("path=%s", configPath))
	}

	return unmarshalAndFinalize(v)
}

// LoadFromEnv builds a Config entirely from QUILLSCOPE_* environment
// variables, with no config file required.  This is the preferred loading
// strategy for containerised deployments.
//
// Environment variable naming convention:
//
//	QUILLSCOPE_<SECTION>_<FIELD>   e.g.  QUILLSCOPE_LOG_LEVEL,
//	                                     QUILLSCOPE_TOPICS_CORPUS_CAP
func LoadFromEnv() (*Config, error) {
	v := newViper()
	// No config file — rely solely on env vars and defaults.
	return unmarshalAndFinalize(v)
}

// unmarshalAndFinalize unmarshals viper state into a Config struct, applies
// defaults, and validates the result.
func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigLoad, "unmarshalling configuration")
	}

	ApplyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// MustLoad is a convenience wrapper around Load that panics on any error.
// It is intended for use in main() where a config-load failure is always
// fatal.
func MustLoad(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		panic(fmt.Sprintf("config: MustLoad failed: %v", err))
	}
	return cfg
}
