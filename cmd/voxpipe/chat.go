package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// stdin is swapped out in tests.
var stdin io.Reader = os.Stdin

// voxpipe chat
func cmdChat(args []string) error {
	var cf commonFlags
	var pf pipelineFlags
	fs := flag.NewFlagSet("chat", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	addCommonFlags(fs, &cf)
	addPipelineFlags(fs, &pf)

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

	fmt.Fprintln(os.Stdout, "Type a prompt and press Enter. Type 'quit' to exit.")
	scanner := bufio.NewScanner(stdin)
	ctx := context.Background()
	for {
		fmt.Fprint(os.Stdout, "You: ")
		if !scanner.Scan() {
			break
		}
		prompt := strings.TrimSpace(scanner.Text())
		if prompt == "" {
			continue
		}
		if strings.EqualFold(prompt, "quit") {
			break
		}

		res, err := p.Run(ctx, prompt)
		if err != nil {
			// One failed prompt must not end the session.
			slog.Error("prompt failed", "err", err)
			if res.Text != "" {
				fmt.Fprintln(os.Stdout, res.Text)
			}
			continue
		}
		fmt.Fprintln(os.Stdout, res.Text)
		fmt.Fprintf(os.Stdout, "Audio saved to %s\n", res.Audio.Path)
	}
	return scanner.Err()
}
