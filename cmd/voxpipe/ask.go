package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// voxpipe ask
func cmdAsk(args []string) error {
	var cf commonFlags
	var pf pipelineFlags
	var prompt stringFlag
	fs := flag.NewFlagSet("ask", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	addCommonFlags(fs, &cf)
	addPipelineFlags(fs, &pf)
	fs.Var(&prompt, "prompt", "Prompt to run through the pipeline")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	setupLogger(cf.logLevel)

	if strings.TrimSpace(prompt.v) == "" {
		return errors.New("--prompt is required")
	}
	cfg, err := resolveConfig(cf, pf.overrides())
	if err != nil {
		return err
	}
	p, err := buildPipeline(cfg)
	if err != nil {
		return err
	}

	res, err := p.Run(context.Background(), prompt.v)
	if err != nil {
		if res.Text != "" {
			// The text stage succeeded; report it before failing.
			slog.Error("synthesis failed", "err", err)
			fmt.Fprintln(os.Stdout, res.Text)
		}
		return err
	}

	slog.Info("pipeline finished", "artifact", res.Audio.Path, "cached", res.Audio.Cached)
	fmt.Fprintln(os.Stdout, res.Audio.Path)
	return nil
}
