package paths

import (
	"os"
	"path/filepath"
	"testing"
)

func TestArtifactPath(t *testing.T) {
	b := New("")
	got := b.Artifact("d41d8cd98f00b204e9800998ecf8427e")
	want := filepath.Join("output", "d41d8cd98f00b204e9800998ecf8427e.mp3")
	if got != want {
		t.Fatalf("Artifact = %s, want %s", got, want)
	}
}

func TestEnsureDir(t *testing.T) {
	base := filepath.Join(t.TempDir(), "audio", "out")
	b := New(base)
	if err := b.EnsureDir(); err != nil {
		t.Fatalf("EnsureDir: %v", err)
	}
	info, err := os.Stat(base)
	if err != nil || !info.IsDir() {
		t.Fatalf("output dir missing: %v", err)
	}
}
