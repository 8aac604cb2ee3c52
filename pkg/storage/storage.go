// Package storage selects the object store backing image uploads.
package storage

import (
	"context"
	"fmt"

	"github.com/angelmondragon/content-console/pkg/config"
	"github.com/angelmondragon/content-console/pkg/logger"
	"github.com/angelmondragon/content-console/pkg/storage/gcs"
	"github.com/angelmondragon/content-console/pkg/storage/s3"
)

// ObjectStore is implemented by both the GCS and S3 clients.
type ObjectStore interface {
	Put(ctx context.Context, key, contentType string, data []byte, progress func(transferred, total int64)) error
	DownloadURL(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	Close() error
}

var (
	_ ObjectStore = (*gcs.Client)(nil)
	_ ObjectStore = (*s3.Client)(nil)
)

// Open builds the configured backend and verifies it is reachable.
func Open(ctx context.Context, cfg *config.Config, logg *logger.Logger) (ObjectStore, error) {
	if cfg.Storage.IsS3() {
		client, err := s3.NewClient(ctx, cfg.S3, logg, s3.WithPublicBaseURL(cfg.Storage.PublicBaseURL))
		if err != nil {
			return nil, fmt.Errorf("s3 storage: %w", err)
		}
		return client, nil
	}
	client, err := gcs.NewClient(ctx, cfg.GCS, cfg.GCP, logg, gcs.WithPublicBaseURL(cfg.Storage.PublicBaseURL))
	if err != nil {
		return nil, fmt.Errorf("gcs storage: %w", err)
	}
	return client, nil
}
