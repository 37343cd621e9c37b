package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"voxpipe/internal/ai"
	"voxpipe/internal/cache"
	cfgpkg "voxpipe/internal/config"
	"voxpipe/internal/paths"
	"voxpipe/internal/pipeline"
)

// set up slog logger according to level; defaults to info.
func setupLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	logger := slog.New(h)
	slog.SetDefault(logger)
	return logger
}

// Common flags for config/log-level across subcommands
type commonFlags struct {
	config   string
	logLevel string
}

func addCommonFlags(fs *flag.FlagSet, cf *commonFlags) {
	fs.StringVar(&cf.config, "config", "config.json", "Path to config file")
	fs.StringVar(&cf.logLevel, "log-level", "info", "Log level: debug, info, warn, error")
}

// Flags that only override config when explicitly set.
type stringFlag struct {
	v   string
	set bool
}

func (f *stringFlag) String() string { return f.v }
func (f *stringFlag) Set(s string) error {
	f.v = s
	f.set = true
	return nil
}

type boolFlag struct {
	v   bool
	set bool
}

func (f *boolFlag) String() string { return strconv.FormatBool(f.v) }
func (f *boolFlag) Set(s string) error {
	b, err := strconv.ParseBool(s)
	if err != nil {
		return err
	}
	f.v = b
	f.set = true
	return nil
}
func (f *boolFlag) IsBoolFlag() bool { return true }

type floatFlag struct {
	v   float64
	set bool
}

func (f *floatFlag) String() string { return strconv.FormatFloat(f.v, 'f', -1, 64) }
func (f *floatFlag) Set(s string) error {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	f.v = v
	f.set = true
	return nil
}

// pipelineFlags are the overrides shared by ask, chat, and serve.
type pipelineFlags struct {
	voice      stringFlag
	outputDir  stringFlag
	cacheDir   stringFlag
	stream     boolFlag
	stability  floatFlag
	similarity floatFlag
}

func addPipelineFlags(fs *flag.FlagSet, pf *pipelineFlags) {
	fs.Var(&pf.voice, "voice", "Synthesis voice ID")
	fs.Var(&pf.outputDir, "output-dir", "Directory for audio artifacts")
	fs.Var(&pf.cacheDir, "cache-dir", "Directory for cache files")
	fs.Var(&pf.stream, "stream", "Use the streaming synthesis endpoint")
	fs.Var(&pf.stability, "stability", "Voice stability in [0,1]")
	fs.Var(&pf.similarity, "similarity-boost", "Voice similarity boost in [0,1]")
}

func (pf *pipelineFlags) overrides() cfgpkg.Overrides {
	var ov cfgpkg.Overrides
	if pf.voice.set {
		ov.Voice = &pf.voice.v
	}
	if pf.outputDir.set {
		ov.OutputDir = &pf.outputDir.v
	}
	if pf.cacheDir.set {
		ov.CacheDir = &pf.cacheDir.v
	}
	if pf.stream.set {
		ov.Stream = &pf.stream.v
	}
	if pf.stability.set {
		ov.Stability = &pf.stability.v
	}
	if pf.similarity.set {
		ov.SimilarityBoost = &pf.similarity.v
	}
	return ov
}

// resolveConfig merges file, env, and flag configuration.
func resolveConfig(cf commonFlags, flagOv cfgpkg.Overrides) (cfgpkg.Config, error) {
	fileCfg, err := cfgpkg.LoadFile(cf.config)
	if err != nil {
		return cfgpkg.Config{}, err
	}
	envOv, openAIKey, elevenKey := cfgpkg.FromEnv()
	return cfgpkg.Merge(fileCfg, envOv, flagOv, openAIKey, elevenKey), nil
}

var newTextClient = func(cfg cfgpkg.Config) (ai.TextClient, error) {
	return ai.NewClient(cfg.OpenAIAPIKey, "")
}

var newSpeechClient = func(cfg cfgpkg.Config) (ai.SpeechClient, error) {
	client, err := ai.NewElevenLabs(cfg.ElevenLabsAPIKey)
	if err != nil {
		return nil, err
	}
	if cfg.Stream {
		return client.Streaming(), nil
	}
	return client, nil
}

// buildPipeline wires the clients and both caches for one process.
func buildPipeline(cfg cfgpkg.Config) (*pipeline.Pipeline, error) {
	if err := cfgpkg.ValidateForPipeline(cfg); err != nil {
		return nil, err
	}

	llmCache, err := openCache(filepath.Join(cfg.CacheDir, "llm_cache.json"))
	if err != nil {
		return nil, err
	}
	audioCache, err := openCache(filepath.Join(cfg.CacheDir, "audio_cache.json"))
	if err != nil {
		return nil, err
	}

	textClient, err := newTextClient(cfg)
	if err != nil {
		return nil, err
	}
	speechClient, err := newSpeechClient(cfg)
	if err != nil {
		return nil, err
	}

	return &pipeline.Pipeline{
		Generator: &pipeline.Generator{
			Client: textClient,
			Cache:  llmCache,
			Model:  cfg.TextModel,
		},
		Synthesizer: &pipeline.Synthesizer{
			Client:  speechClient,
			Cache:   audioCache,
			Paths:   paths.New(cfg.OutputDir),
			VoiceID: cfg.Voice,
			ModelID: cfg.TTSModel,
			Settings: ai.VoiceSettings{
				Stability:       cfg.Stability,
				SimilarityBoost: cfg.SimilarityBoost,
			},
		},
	}, nil
}

func openCache(path string) (*cache.Store, error) {
	store, err := cache.Open(path)
	var corrupt *cache.CorruptError
	if errors.As(err, &corrupt) {
		return nil, fmt.Errorf("%w; repair or remove the file before starting", err)
	}
	if err != nil {
		return nil, err
	}
	return store, nil
}
