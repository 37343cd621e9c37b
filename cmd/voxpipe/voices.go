package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"voxpipe/internal/ai"
	cfgpkg "voxpipe/internal/config"
)

var newElevenLabsClient = func(cfg cfgpkg.Config) (*ai.ElevenLabsClient, error) {
	return ai.NewElevenLabs(cfg.ElevenLabsAPIKey)
}

var newOpenAIClient = func(cfg cfgpkg.Config) (*ai.Client, error) {
	return ai.NewClient(cfg.OpenAIAPIKey, "")
}

// voxpipe voices
func cmdVoices(args []string) error {
	var cf commonFlags
	fs := flag.NewFlagSet("voices", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	addCommonFlags(fs, &cf)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	setupLogger(cf.logLevel)

	cfg, err := resolveConfig(cf, cfgpkg.Overrides{})
	if err != nil {
		return err
	}
	client, err := newElevenLabsClient(cfg)
	if err != nil {
		return err
	}
	voices, err := client.Voices(context.Background())
	if err != nil {
		return err
	}
	for _, v := range voices {
		fmt.Fprintf(os.Stdout, "%s\t%s\t%s\n", v.VoiceID, v.Name, v.Category)
	}
	return nil
}

// voxpipe models
func cmdModels(args []string) error {
	var cf commonFlags
	fs := flag.NewFlagSet("models", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	addCommonFlags(fs, &cf)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	setupLogger(cf.logLevel)

	cfg, err := resolveConfig(cf, cfgpkg.Overrides{})
	if err != nil {
		return err
	}
	client, err := newOpenAIClient(cfg)
	if err != nil {
		return err
	}
	models, err := client.ListModels(context.Background())
	if err != nil {
		return err
	}
	for _, id := range models {
		fmt.Fprintln(os.Stdout, id)
	}
	return nil
}
