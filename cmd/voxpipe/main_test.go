package main

import (
	"context"
	"path/filepath"
	"testing"

	"voxpipe/internal/ai"
	cfgpkg "voxpipe/internal/config"
)

type fakeTextClient struct {
	reply string
	calls int
}

func (f *fakeTextClient) GenerateText(ctx context.Context, model, prompt string) (string, error) {
	f.calls++
	return f.reply, nil
}

type fakeSpeechClient struct {
	audio []byte
	calls int
}

func (f *fakeSpeechClient) Synthesize(ctx context.Context, req *ai.SpeechRequest) (*ai.SpeechResult, error) {
	f.calls++
	return &ai.SpeechResult{Audio: f.audio, Final: true}, nil
}

// installFakeClients swaps the client constructors for the duration of a test
// and returns the fakes.
func installFakeClients(t *testing.T) (*fakeTextClient, *fakeSpeechClient) {
	t.Helper()
	origText := newTextClient
	origSpeech := newSpeechClient
	t.Cleanup(func() {
		newTextClient = origText
		newSpeechClient = origSpeech
	})

	text := &fakeTextClient{reply: "Hello there!"}
	speech := &fakeSpeechClient{audio: []byte{0xff, 0xfb}}
	newTextClient = func(cfg cfgpkg.Config) (ai.TextClient, error) { return text, nil }
	newSpeechClient = func(cfg cfgpkg.Config) (ai.SpeechClient, error) { return speech, nil }
	return text, speech
}

func pipelineArgs(t *testing.T, sub string, extra ...string) []string {
	t.Helper()
	tmp := t.TempDir()
	args := []string{
		sub,
		"--config=" + filepath.Join(tmp, "no-config.json"),
		"--output-dir=" + filepath.Join(tmp, "output"),
		"--cache-dir=" + filepath.Join(tmp, "cache"),
	}
	return append(args, extra...)
}

func TestHelp(t *testing.T) {
	if code := run([]string{"-h"}); code != 0 {
		t.Fatalf("expected help to return 0, got %d", code)
	}
}

func TestUnknownSubcommand(t *testing.T) {
	if code := run([]string{"unknown"}); code == 0 {
		t.Fatalf("expected non-zero for unknown subcommand")
	}
}

func TestVersion(t *testing.T) {
	if code := run([]string{"version"}); code != 0 {
		t.Fatalf("expected version to return 0, got %d", code)
	}
}

func TestAskRequiresCredentials(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("ELEVENLABS_API_KEY", "")
	if code := run(pipelineArgs(t, "ask", "--prompt=Say hello")); code == 0 {
		t.Fatalf("expected failure without credentials")
	}
}
