package main

import (
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"

	"voxpipe/internal/server"
)

// voxpipe serve
func cmdServe(args []string) error {
	var cf commonFlags
	var pf pipelineFlags
	var addr string
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	addCommonFlags(fs, &cf)
	addPipelineFlags(fs, &pf)
	fs.StringVar(&addr, "addr", ":8000", "Listen address")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	setupLogger(cf.logLevel)

	cfg, err := resolveConfig(cf, pf.overrides())
	if err != nil {
		return err
	}
	p, err := buildPipeline(cfg)
	if err != nil {
		return err
	}

	slog.Info("listening", "addr", addr, "stream", cfg.Stream, "voice", cfg.Voice)
	return http.ListenAndServe(addr, server.Handler(p))
}
