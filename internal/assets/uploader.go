package assets

import (
	"context"
	"fmt"
	"time"

	pkgerrors "github.com/angelmondragon/content-console/pkg/errors"
	"github.com/angelmondragon/content-console/pkg/logger"
	"golang.org/x/sync/errgroup"
)

// ObjectStore is the object storage surface the uploader needs. Both the GCS and the
// S3 clients satisfy it.
type ObjectStore interface {
	Put(ctx context.Context, key, contentType string, data []byte, progress func(transferred, total int64)) error
	DownloadURL(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
}

// Progress reports upload progress for one slot of a ResolveAll call.
type Progress func(slot int, transferred, total int64)

type uploadMetrics interface {
	ObserveUpload(namespace string, size int, duration time.Duration, err error)
}

// Uploader resolves Pending references into durable URLs.
type Uploader struct {
	store   ObjectStore
	metrics uploadMetrics
	logg    *logger.Logger
	newKey  func(namespace string) (string, error)
}

func NewUploader(store ObjectStore, metrics uploadMetrics, logg *logger.Logger) (*Uploader, error) {
	if store == nil {
		return nil, fmt.Errorf("object store required")
	}
	return &Uploader{store: store, metrics: metrics, logg: logg, newKey: NewKey}, nil
}

// Resolve uploads a Pending reference under namespace and returns the Resolved result.
// Resolved references come back unchanged without touching the store.
func (u *Uploader) Resolve(ctx context.Context, namespace string, ref Reference, progress func(transferred, total int64)) (Reference, error) {
	if !ref.IsPending() {
		return ref, nil
	}

	key, err := u.newKey(namespace)
	if err != nil {
		return Reference{}, pkgerrors.Wrap(pkgerrors.CodeUploadFailed, err, "build object key")
	}

	file := ref.File()
	started := time.Now()
	err = u.store.Put(ctx, key, file.ContentType, file.Data, progress)
	if u.metrics != nil {
		u.metrics.ObserveUpload(namespace, file.Size(), time.Since(started), err)
	}
	if err != nil {
		return Reference{}, pkgerrors.Wrap(pkgerrors.CodeUploadFailed, err, "upload "+file.Name).
			WithDetails(map[string]any{"file": file.Name})
	}

	url, err := u.store.DownloadURL(ctx, key)
	if err != nil {
		// the bytes are stored; hand the key back so the caller can clean it up
		return uploaded("", key), pkgerrors.Wrap(pkgerrors.CodeUploadFailed, err, "resolve download url for "+file.Name).
			WithDetails(map[string]any{"file": file.Name})
	}

	if u.logg != nil {
		u.logg.Debug(u.logg.WithFields(ctx, map[string]any{"object_key": key, "size_bytes": file.Size()}), "asset uploaded")
	}
	return uploaded(url, key), nil
}

// ResolveAll resolves every slot concurrently and returns the results in input order.
// The first failure cancels the remaining uploads. On error the returned slice still
// holds whatever was uploaded so the caller can clean those objects up.
func (u *Uploader) ResolveAll(ctx context.Context, namespace string, refs []Reference, progress Progress) ([]Reference, error) {
	out := make([]Reference, len(refs))
	g, gctx := errgroup.WithContext(ctx)
	for i, ref := range refs {
		if !ref.IsPending() {
			out[i] = ref
			continue
		}
		g.Go(func() error {
			var report func(int64, int64)
			if progress != nil {
				report = func(transferred, total int64) { progress(i, transferred, total) }
			}
			resolved, err := u.Resolve(gctx, namespace, ref, report)
			out[i] = resolved
			if err != nil {
				return fmt.Errorf("slot %d: %w", i, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return out, err
	}
	return out, nil
}
