// Package paths constructs output locations for synthesized audio artifacts.
package paths

import (
	"os"
	"path/filepath"
)

const (
	defaultBaseDir  = "output"
	artifactFileExt = ".mp3"
)

// Builder constructs artifact paths rooted at Base (default "output").
type Builder struct {
	Base string
}

func New(base string) *Builder {
	if base == "" {
		base = defaultBaseDir
	}
	return &Builder{Base: base}
}

// Artifact returns the content-addressed path for a fingerprint:
// Base/<fingerprint>.mp3. Both synthesis transports use this name, so an
// artifact written by one mode is a cache hit for the other.
func (b *Builder) Artifact(fingerprint string) string {
	return filepath.Join(b.Base, fingerprint+artifactFileExt)
}

// EnsureDir creates the output directory if it does not exist.
func (b *Builder) EnsureDir() error {
	return os.MkdirAll(b.Base, 0o755)
}
