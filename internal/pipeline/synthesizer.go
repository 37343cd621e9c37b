package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"voxpipe/internal/ai"
	"voxpipe/internal/cache"
	"voxpipe/internal/paths"
)

// Artifact is the synthesized audio for one request: the durable path it was
// written to and, when synthesis actually ran, the assembled bytes. A cache
// hit carries only the path.
type Artifact struct {
	Path  string
	Audio []byte

	// Cached reports that the artifact came from the audio cache and no
	// remote call was made.
	Cached bool
}

// Synthesizer turns text into an audio artifact, consulting the audio cache
// before issuing a remote call and persisting each new artifact under a
// content-addressed filename.
type Synthesizer struct {
	Client   ai.SpeechClient
	Cache    *cache.Store
	Paths    *paths.Builder
	VoiceID  string
	ModelID  string
	Settings ai.VoiceSettings
}

// Synthesize returns the artifact for text. On a cache hit the stored path is
// returned immediately. Otherwise one synthesis call runs; its assembled
// bytes are written to <output dir>/<fingerprint>.mp3 and the path is cached.
// Nothing is cached unless the file write succeeded.
func (s *Synthesizer) Synthesize(ctx context.Context, text string) (*Artifact, error) {
	key := cache.Fingerprint(text)
	if path, ok := s.Cache.Lookup(key); ok {
		slog.Debug("audio cache hit", "key", key, "path", path)
		return &Artifact{Path: path, Cached: true}, nil
	}

	res, err := s.Client.Synthesize(ctx, &ai.SpeechRequest{
		Text:          text,
		VoiceID:       s.VoiceID,
		ModelID:       s.ModelID,
		VoiceSettings: s.Settings,
	})
	if err != nil {
		return nil, fmt.Errorf("speech synthesis: %w", err)
	}
	if !res.Final {
		slog.Warn("synthesis stream closed early, keeping partial audio", "key", key, "bytes", len(res.Audio))
	}

	if err := s.Paths.EnsureDir(); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	path := s.Paths.Artifact(key)
	if err := os.WriteFile(path, res.Audio, 0o644); err != nil {
		return nil, fmt.Errorf("write audio artifact: %w", err)
	}
	if err := s.Cache.Put(key, path); err != nil {
		slog.Warn("persist audio cache failed", "key", key, "err", err)
	}
	return &Artifact{Path: path, Audio: res.Audio}, nil
}
