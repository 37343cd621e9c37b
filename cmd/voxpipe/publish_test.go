package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
)

type fakeUploader struct {
	remote  map[string][]byte
	checks  []string
	uploads []string
}

func (f *fakeUploader) KeyForArtifact(localPath string) string {
	return "voxpipe/" + filepath.Base(localPath)
}

func (f *fakeUploader) Published(ctx context.Context, key string, data []byte) (bool, error) {
	f.checks = append(f.checks, key)
	remote, ok := f.remote[key]
	return ok && bytes.Equal(remote, data), nil
}

func (f *fakeUploader) UploadArtifact(ctx context.Context, localPath string) (string, error) {
	f.uploads = append(f.uploads, localPath)
	return f.KeyForArtifact(localPath), nil
}

func installFakeUploader(t *testing.T, fake *fakeUploader) {
	t.Helper()
	orig := newUploader
	t.Cleanup(func() { newUploader = orig })
	newUploader = func(ctx context.Context, bucket, prefix, region string) (uploader, error) {
		return fake, nil
	}
}

func writeArtifact(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("audio"), 0o644); err != nil {
		t.Fatalf("write artifact: %v", err)
	}
	return path
}

func TestPublishUploadsArtifact(t *testing.T) {
	fake := &fakeUploader{}
	installFakeUploader(t, fake)

	tmp := t.TempDir()
	artifact := writeArtifact(t, tmp, "abc123.mp3")

	args := []string{
		"publish",
		"--config=" + filepath.Join(tmp, "no-config.json"),
		"--file=" + artifact,
		"--bucket=b",
		"--region=us-west-2",
	}
	if code := run(args); code != 0 {
		t.Fatalf("publish returned non-zero: %d", code)
	}
	if len(fake.uploads) != 1 || fake.uploads[0] != artifact {
		t.Fatalf("uploads = %v", fake.uploads)
	}
	if len(fake.checks) != 1 || fake.checks[0] != "voxpipe/abc123.mp3" {
		t.Fatalf("checks = %v", fake.checks)
	}
}

func TestPublishSkipsAlreadyPublishedArtifact(t *testing.T) {
	fake := &fakeUploader{remote: map[string][]byte{"voxpipe/abc123.mp3": []byte("audio")}}
	installFakeUploader(t, fake)

	tmp := t.TempDir()
	artifact := writeArtifact(t, tmp, "abc123.mp3")

	args := []string{
		"publish",
		"--config=" + filepath.Join(tmp, "no-config.json"),
		"--file=" + artifact,
		"--bucket=b",
		"--region=us-west-2",
	}
	if code := run(args); code != 0 {
		t.Fatalf("publish returned non-zero: %d", code)
	}
	if len(fake.uploads) != 0 {
		t.Fatalf("expected no upload for published artifact, got %v", fake.uploads)
	}
}

func TestPublishReplacesMismatchedObject(t *testing.T) {
	fake := &fakeUploader{remote: map[string][]byte{"voxpipe/abc123.mp3": []byte("stale")}}
	installFakeUploader(t, fake)

	tmp := t.TempDir()
	artifact := writeArtifact(t, tmp, "abc123.mp3")

	args := []string{
		"publish",
		"--config=" + filepath.Join(tmp, "no-config.json"),
		"--file=" + artifact,
		"--bucket=b",
		"--region=us-west-2",
	}
	if code := run(args); code != 0 {
		t.Fatalf("publish returned non-zero: %d", code)
	}
	if len(fake.uploads) != 1 {
		t.Fatalf("expected re-upload for mismatched object, got %v", fake.uploads)
	}
}

func TestPublishRequiresFile(t *testing.T) {
	if code := run([]string{"publish", "--bucket=b", "--region=us-west-2"}); code == 0 {
		t.Fatalf("expected failure without --file")
	}
}

func TestPublishRequiresBucket(t *testing.T) {
	tmp := t.TempDir()
	artifact := writeArtifact(t, tmp, "a.mp3")
	t.Setenv("AWS_S3_BUCKET", "")
	t.Setenv("AWS_REGION", "")
	args := []string{
		"publish",
		"--config=" + filepath.Join(tmp, "no-config.json"),
		"--file=" + artifact,
	}
	if code := run(args); code == 0 {
		t.Fatalf("expected failure without bucket")
	}
}
