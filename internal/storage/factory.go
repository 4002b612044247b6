package storage

import (
	"context"
	"fmt"

	"librettist/config"
)

// NewFromConfig builds the store the configuration names.
func NewFromConfig(ctx context.Context, cfg config.StorageConfig) (Store, error) {
	switch cfg.Type {
	case "local":
		return NewLocalStore(cfg.LibraryDir)
	case "gcs":
		return NewGCSStore(ctx, cfg.Bucket, cfg.ObjectPrefix, cfg.CredentialsFile)
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}
