package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"voxpipe/internal/ai"
	"voxpipe/internal/cache"
)

// Generator produces language-model text for a prompt, consulting the
// response cache before issuing a remote call.
type Generator struct {
	Client ai.TextClient
	Cache  *cache.Store
	Model  string
}

// Generate returns the model's reply for prompt. A cache hit returns the
// stored text with no remote call; a miss issues one chat-completion request
// and records the reply under the prompt's fingerprint. Remote failures are
// returned as-is and never retried here.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	key := cache.Fingerprint(prompt)
	if text, ok := g.Cache.Lookup(key); ok {
		slog.Debug("llm cache hit", "key", key)
		return text, nil
	}

	text, err := g.Client.GenerateText(ctx, g.Model, prompt)
	if err != nil {
		return "", fmt.Errorf("language model request: %w", err)
	}
	if err := g.Cache.Put(key, text); err != nil {
		// The reply is still good; losing the persist only costs a
		// future remote call.
		slog.Warn("persist llm cache failed", "key", key, "err", err)
	}
	return text, nil
}
