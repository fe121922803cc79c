package blobstore

import (
	"context"
	"fmt"

	"ftl-go/internal/config"
	"ftl-go/internal/ftl"
)

// NewBlobStoreFromConfig creates a BlobStore based on the provided configuration.
func NewBlobStoreFromConfig(cfg config.BlobStoreConfig) (ftl.BlobStore, error) {
	switch cfg.Type {
	case "memory":
		return NewMemoryStore(), nil

	case "s3":
		if cfg.S3Bucket == "" {
			return nil, fmt.Errorf("s3_bucket is required for s3 blob store")
		}
		store, err := NewS3Store(context.Background(), s3OptionsFromEnv(S3Options{
			Bucket:   cfg.S3Bucket,
			Prefix:   cfg.S3Prefix,
			Region:   cfg.S3Region,
			Endpoint: cfg.S3Endpoint,
		}))
		if err != nil {
			return nil, err
		}
		return store, nil

	case "filesystem":
		if cfg.FSRoot == "" {
			return nil, fmt.Errorf("fs_root is required for filesystem blob store")
		}
		store, err := NewFileSystemStore(cfg.FSRoot)
		if err != nil {
			return nil, err
		}
		return store, nil

	default:
		return nil, fmt.Errorf("unknown blob store type: %s", cfg.Type)
	}
}
