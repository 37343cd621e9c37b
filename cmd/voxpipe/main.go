package main

import (
	"fmt"
	"log/slog"
	"os"
)

var version = "0.1.0"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" {
		printUsage()
		return 0
	}

	sub := args[0]
	switch sub {
	case "ask":
		if err := cmdAsk(args[1:]); err != nil {
			slog.Error("ask failed", "err", err)
			return 1
		}
		return 0
	case "chat":
		if err := cmdChat(args[1:]); err != nil {
			slog.Error("chat failed", "err", err)
			return 1
		}
		return 0
	case "serve":
		if err := cmdServe(args[1:]); err != nil {
			slog.Error("serve failed", "err", err)
			return 1
		}
		return 0
	case "voices":
		if err := cmdVoices(args[1:]); err != nil {
			slog.Error("voices failed", "err", err)
			return 1
		}
		return 0
	case "models":
		if err := cmdModels(args[1:]); err != nil {
			slog.Error("models failed", "err", err)
			return 1
		}
		return 0
	case "publish":
		if err := cmdPublish(args[1:]); err != nil {
			slog.Error("publish failed", "err", err)
			return 1
		}
		return 0
	case "version":
		fmt.Println(version)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "unknown subcommand: %s\n\n", sub)
		printUsage()
		return 2
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `voxpipe %s

Usage:
  voxpipe <subcommand> [flags]

Subcommands:
  ask      Run one prompt through the LLM and speech pipeline
  chat     Interactive prompt loop
  serve    HTTP server exposing POST /generate
  voices   List available synthesis voices
  models   List available text models
  publish  Upload an audio artifact to S3
  version  Print version

Run "voxpipe <subcommand> -h" for flags.
`, version)
}
