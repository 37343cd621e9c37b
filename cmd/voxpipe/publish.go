package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	cfgpkg "voxpipe/internal/config"
	"voxpipe/internal/storage"
)

type uploader interface {
	KeyForArtifact(localPath string) string
	Published(ctx context.Context, key string, data []byte) (bool, error)
	UploadArtifact(ctx context.Context, localPath string) (string, error)
}

var newUploader = func(ctx context.Context, bucket, prefix, region string) (uploader, error) {
	return storage.New(ctx, bucket, prefix, region)
}

// voxpipe publish
func cmdPublish(args []string) error {
	var cf commonFlags
	var file, bucket, prefix, region stringFlag
	fs := flag.NewFlagSet("publish", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	addCommonFlags(fs, &cf)
	fs.Var(&file, "file", "Audio artifact to upload")
	fs.Var(&bucket, "bucket", "S3 bucket name")
	fs.Var(&prefix, "prefix", "S3 key prefix")
	fs.Var(&region, "region", "AWS region (defaults from env)")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	setupLogger(cf.logLevel)

	if file.v == "" {
		return errors.New("--file is required")
	}
	data, err := os.ReadFile(file.v)
	if err != nil {
		return fmt.Errorf("read local file %s: %w", file.v, err)
	}

	var flagOv cfgpkg.Overrides
	if bucket.set {
		flagOv.S3Bucket = &bucket.v
	}
	if prefix.set {
		flagOv.S3Prefix = &prefix.v
	}
	if region.set {
		flagOv.Region = &region.v
	}
	cfg, err := resolveConfig(cf, flagOv)
	if err != nil {
		return err
	}
	if err := cfgpkg.ValidateForPublish(cfg); err != nil {
		return err
	}

	ctx := context.Background()
	up, err := newUploader(ctx, cfg.S3Bucket, cfg.S3Prefix, cfg.Region)
	if err != nil {
		return err
	}

	// Artifact names are content fingerprints, so a matching remote object
	// means this exact audio is already published.
	key := up.KeyForArtifact(file.v)
	done, err := up.Published(ctx, key, data)
	if err != nil {
		return err
	}
	if done {
		slog.Info("artifact already published", "bucket", cfg.S3Bucket, "key", key)
		fmt.Fprintf(os.Stdout, "s3://%s/%s\n", cfg.S3Bucket, key)
		return nil
	}

	key, err = up.UploadArtifact(ctx, file.v)
	if err != nil {
		return err
	}

	slog.Info("publish completed", "bucket", cfg.S3Bucket, "key", key)
	fmt.Fprintf(os.Stdout, "s3://%s/%s\n", cfg.S3Bucket, key)
	return nil
}
