// Package ai wraps the two remote services the pipeline talks to: an OpenAI
// chat-completion endpoint for text generation and the ElevenLabs API for
// speech synthesis (buffered POST or streaming websocket).
package ai

import "context"

// TextClient generates a completion for a single user prompt.
type TextClient interface {
	GenerateText(ctx context.Context, model, prompt string) (string, error)
}

// SpeechClient synthesizes spoken audio from text.
type SpeechClient interface {
	Synthesize(ctx context.Context, req *SpeechRequest) (*SpeechResult, error)
}

// VoiceSettings tunes synthesis. Both values are in [0,1].
type VoiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

// DefaultVoiceSettings returns the recommended defaults.
func DefaultVoiceSettings() VoiceSettings {
	return VoiceSettings{Stability: 0.5, SimilarityBoost: 0.75}
}

// SpeechRequest is one synthesis request.
type SpeechRequest struct {
	Text          string
	VoiceID       string
	ModelID       string
	VoiceSettings VoiceSettings
}

// SpeechResult is the assembled audio for one synthesis request. Final is
// false when a streaming session closed before the service signalled the end
// of the audio, in which case Audio holds whatever was received (a degraded
// but usable result).
type SpeechResult struct {
	Audio []byte
	Final bool
}
