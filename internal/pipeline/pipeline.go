// Package pipeline coordinates the prompt-to-speech cycle: language-model
// generation, speech synthesis, content-addressed caching of both, and
// assembly of the audio artifact.
package pipeline

import (
	"context"
	"log/slog"
)

// Result is the outcome of one pipeline run. Text is populated as soon as the
// language-model stage succeeds, so a synthesis failure still reports the
// generated text alongside the error.
type Result struct {
	Text  string
	Audio *Artifact
}

// Pipeline composes a Generator and a Synthesizer into one request/response
// cycle per prompt. Both stages share their caches with any other in-flight
// runs.
type Pipeline struct {
	Generator   *Generator
	Synthesizer *Synthesizer
}

// Run processes one prompt. An LLM-stage failure short-circuits: no synthesis
// is attempted. A synthesis-stage failure returns the error together with a
// Result carrying the generated text.
func (p *Pipeline) Run(ctx context.Context, prompt string) (Result, error) {
	text, err := p.Generator.Generate(ctx, prompt)
	if err != nil {
		return Result{}, err
	}
	slog.Info("llm response", "chars", len(text))

	artifact, err := p.Synthesizer.Synthesize(ctx, text)
	if err != nil {
		return Result{Text: text}, err
	}
	slog.Info("audio ready", "path", artifact.Path, "cached", artifact.Cached)
	return Result{Text: text, Audio: artifact}, nil
}
