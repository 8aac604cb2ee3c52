package orphans

import (
	"context"
	"errors"

	"github.com/angelmondragon/content-console/pkg/enums"
	"github.com/angelmondragon/content-console/pkg/logger"
)

const (
	CleanupDeleted  = "deleted"
	CleanupLedger   = "ledger"
	CleanupDeferred = "deferred"
	CleanupLost     = "lost"
)

type objectDeleter interface {
	Delete(ctx context.Context, key string) error
}

type ledger interface {
	Record(ctx context.Context, resource enums.Resource, keys []string, status enums.OrphanStatus, cause error) error
}

type orphanMetrics interface {
	IncOrphan(namespace, cleanup string)
}

// Cleaner removes objects uploaded by a failed submission. Objects it cannot delete are
// written to the ledger for the sweeper.
type Cleaner struct {
	store   objectDeleter
	ledger  ledger
	metrics orphanMetrics
	logg    *logger.Logger
}

// NewCleaner builds a cleaner. ledger may be nil when no database is configured; failed
// deletes are then only logged.
func NewCleaner(store objectDeleter, ledger ledger, metrics orphanMetrics, logg *logger.Logger) (*Cleaner, error) {
	if store == nil {
		return nil, errors.New("object store required")
	}
	if logg == nil {
		return nil, errors.New("logger required")
	}
	return &Cleaner{store: store, ledger: ledger, metrics: metrics, logg: logg}, nil
}

func (c *Cleaner) Cleanup(ctx context.Context, resource enums.Resource, keys []string) {
	namespace := resource.AssetNamespace()
	var failed []string
	var lastErr error
	for _, key := range keys {
		if err := c.store.Delete(ctx, key); err != nil {
			failed = append(failed, key)
			lastErr = err
			c.logg.Warn(c.logg.WithFields(ctx, map[string]any{"object_key": key, "error": err.Error()}), "orphaned object delete failed")
			continue
		}
		c.inc(namespace, CleanupDeleted)
	}
	if len(failed) == 0 {
		return
	}

	if c.ledger == nil {
		for range failed {
			c.inc(namespace, CleanupLost)
		}
		return
	}
	c.record(ctx, resource, failed, enums.OrphanStatusPending, lastErr, CleanupLedger)
}

// Defer queues keys without deleting them. The submission failed ambiguously, so the
// record may reference them; the sweeper decides once the collaborator's list is known.
func (c *Cleaner) Defer(ctx context.Context, resource enums.Resource, keys []string, cause error) {
	if len(keys) == 0 {
		return
	}
	ctx = c.logg.WithFields(ctx, map[string]any{"object_keys": keys, "resource": resource.String()})
	if c.ledger == nil {
		c.logg.Warn(ctx, "uploads of an unconfirmed submission kept; no ledger configured")
		return
	}
	c.logg.Info(ctx, "uploads of an unconfirmed submission queued for a reference check")
	c.record(ctx, resource, keys, enums.OrphanStatusUnconfirmed, cause, CleanupDeferred)
}

func (c *Cleaner) record(ctx context.Context, resource enums.Resource, keys []string, status enums.OrphanStatus, cause error, outcome string) {
	namespace := resource.AssetNamespace()
	if err := c.ledger.Record(ctx, resource, keys, status, cause); err != nil {
		c.logg.Error(c.logg.WithField(ctx, "object_keys", keys), "recording orphaned objects failed", err)
		for range keys {
			c.inc(namespace, CleanupLost)
		}
		return
	}
	for range keys {
		c.inc(namespace, outcome)
	}
}

func (c *Cleaner) inc(namespace, cleanup string) {
	if c.metrics != nil {
		c.metrics.IncOrphan(namespace, cleanup)
	}
}
