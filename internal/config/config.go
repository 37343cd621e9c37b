// Package config resolves runtime configuration by merging a JSON config
// file, environment variables, and command-line flags, in that order.
// Credentials are sourced from the environment only and never persisted.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds resolved configuration values after merging file, env, and flags.
type Config struct {
	Voice           string  `json:"voice,omitempty"`
	TTSModel        string  `json:"ttsModel,omitempty"`
	TextModel       string  `json:"textModel,omitempty"`
	OutputDir       string  `json:"outputDir,omitempty"`
	CacheDir        string  `json:"cacheDir,omitempty"`
	Stability       float64 `json:"stability,omitempty"`
	SimilarityBoost float64 `json:"similarityBoost,omitempty"`
	Stream          bool    `json:"stream,omitempty"`
	S3Bucket        string  `json:"s3Bucket,omitempty"`
	S3Prefix        string  `json:"s3Prefix,omitempty"`
	Region          string  `json:"region,omitempty"`

	// Not persisted to file; sourced from env only.
	OpenAIAPIKey     string `json:"-"`
	ElevenLabsAPIKey string `json:"-"`
}

// Overrides represents optional overrides from env or flags.
// Only non-nil pointers are applied during merge.
type Overrides struct {
	Voice           *string
	TTSModel        *string
	TextModel       *string
	OutputDir       *string
	CacheDir        *string
	Stability       *float64
	SimilarityBoost *float64
	Stream          *bool
	S3Bucket        *string
	S3Prefix        *string
	Region          *string
}

func Default() Config {
	return Config{
		Voice:           "21m00Tcm4TlvDq8ikWAM",
		TTSModel:        "eleven_turbo_v2",
		TextModel:       "gpt-4o-mini",
		OutputDir:       "output",
		CacheDir:        "cache",
		Stability:       0.5,
		SimilarityBoost: 0.75,
		S3Prefix:        "voxpipe",
	}
}

// LoadFile reads a JSON config. If file not found, returns defaults and no error.
func LoadFile(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config file: %w", err)
	}
	if err := json.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config file: %w", err)
	}
	return cfg, nil
}

// FromEnv reads env vars and returns overrides plus the two credentials.
func FromEnv() (Overrides, string, string) {
	var ov Overrides

	if v, ok := os.LookupEnv("ELEVENLABS_VOICE_ID"); ok {
		ov.Voice = &v
	}
	if v, ok := os.LookupEnv("ELEVENLABS_MODEL_ID"); ok {
		ov.TTSModel = &v
	}
	if v, ok := os.LookupEnv("OPENAI_MODEL"); ok {
		ov.TextModel = &v
	}
	if v, ok := os.LookupEnv("OUTPUT_DIR"); ok {
		ov.OutputDir = &v
	}
	if v, ok := os.LookupEnv("CACHE_DIR"); ok {
		ov.CacheDir = &v
	}
	if v, ok := os.LookupEnv("VOXPIPE_STREAM"); ok {
		if b, err := parseBool(v); err == nil {
			ov.Stream = &b
		}
	}
	if v, ok := os.LookupEnv("AWS_S3_BUCKET"); ok {
		ov.S3Bucket = &v
	}
	if v, ok := os.LookupEnv("AWS_S3_PREFIX"); ok {
		ov.S3Prefix = &v
	}
	if v, ok := os.LookupEnv("AWS_REGION"); ok {
		ov.Region = &v
	}
	return ov, os.Getenv("OPENAI_API_KEY"), os.Getenv("ELEVENLABS_API_KEY")
}

// parseBool accepts everything strconv.ParseBool does plus the yes/no and
// on/off spellings common in shell environments.
func parseBool(s string) (bool, error) {
	switch strings.TrimSpace(strings.ToLower(s)) {
	case "y", "yes", "on":
		return true, nil
	case "n", "no", "off":
		return false, nil
	}
	return strconv.ParseBool(strings.TrimSpace(s))
}

// Merge applies overrides in order: file -> env -> flags.
func Merge(fileCfg Config, env Overrides, flags Overrides, openAIKey, elevenLabsKey string) Config {
	cfg := fileCfg

	apply := func(ov Overrides) {
		if ov.Voice != nil {
			cfg.Voice = *ov.Voice
		}
		if ov.TTSModel != nil {
			cfg.TTSModel = *ov.TTSModel
		}
		if ov.TextModel != nil {
			cfg.TextModel = *ov.TextModel
		}
		if ov.OutputDir != nil {
			cfg.OutputDir = *ov.OutputDir
		}
		if ov.CacheDir != nil {
			cfg.CacheDir = *ov.CacheDir
		}
		if ov.Stability != nil {
			cfg.Stability = *ov.Stability
		}
		if ov.SimilarityBoost != nil {
			cfg.SimilarityBoost = *ov.SimilarityBoost
		}
		if ov.Stream != nil {
			cfg.Stream = *ov.Stream
		}
		if ov.S3Bucket != nil {
			cfg.S3Bucket = *ov.S3Bucket
		}
		if ov.S3Prefix != nil {
			cfg.S3Prefix = *ov.S3Prefix
		}
		if ov.Region != nil {
			cfg.Region = *ov.Region
		}
	}

	apply(env)
	apply(flags)

	cfg.OpenAIAPIKey = openAIKey
	cfg.ElevenLabsAPIKey = elevenLabsKey
	return cfg
}

// Validation helpers
func ValidateForGenerate(cfg Config) error {
	if cfg.OpenAIAPIKey == "" {
		return errors.New("OPENAI_API_KEY is required for text generation")
	}
	if cfg.TextModel == "" {
		return errors.New("text model is required")
	}
	return nil
}

func ValidateForSynthesis(cfg Config) error {
	if cfg.ElevenLabsAPIKey == "" {
		return errors.New("ELEVENLABS_API_KEY is required for speech synthesis")
	}
	if cfg.Voice == "" {
		return errors.New("voice is required")
	}
	if cfg.Stability < 0 || cfg.Stability > 1 {
		return fmt.Errorf("stability must be in [0,1], got %v", cfg.Stability)
	}
	if cfg.SimilarityBoost < 0 || cfg.SimilarityBoost > 1 {
		return fmt.Errorf("similarity boost must be in [0,1], got %v", cfg.SimilarityBoost)
	}
	return nil
}

// ValidateForPipeline checks everything the full prompt-to-speech cycle needs.
func ValidateForPipeline(cfg Config) error {
	if err := ValidateForGenerate(cfg); err != nil {
		return err
	}
	return ValidateForSynthesis(cfg)
}

func ValidateForPublish(cfg Config) error {
	if cfg.S3Bucket == "" {
		return errors.New("S3 bucket is required for publish")
	}
	if cfg.Region == "" {
		return errors.New("AWS region is required for publish")
	}
	return nil
}
