package cron

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/content-console/pkg/db/models"
	"github.com/angelmondragon/content-console/pkg/enums"
	"github.com/angelmondragon/content-console/pkg/logger"
	"go.uber.org/multierr"
)

const (
	defaultOrphanBatchSize = 100
	defaultOrphanMinAge    = 10 * time.Minute
	orphanCleanupSwept     = "swept"
	orphanCleanupInUse     = "in_use"
)

type OrphanCleanupJobParams struct {
	Logger *logger.Logger
	Repo   orphanLedger
	Store  objectDeleter
	// References lists the collaborator's records. Without it unconfirmed rows are left alone.
	References recordLister
	Metrics    orphanMetrics
	BatchSize  int
	MinAge    time.Duration
}

type orphanLedger interface {
	ListDue(ctx context.Context, cutoff time.Time, limit int) ([]models.OrphanedAsset, error)
	MarkFailed(ctx context.Context, id string, cause error) error
	Delete(ctx context.Context, id string) error
}

type objectDeleter interface {
	Delete(ctx context.Context, key string) error
}

type recordLister interface {
	List(ctx context.Context, resource string) (json.RawMessage, error)
}

type orphanMetrics interface {
	IncOrphan(namespace, cleanup string)
}

func NewOrphanCleanupJob(params OrphanCleanupJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("orphan repository required")
	}
	if params.Store == nil {
		return nil, fmt.Errorf("object store required")
	}
	batch := params.BatchSize
	if batch <= 0 {
		batch = defaultOrphanBatchSize
	}
	minAge := params.MinAge
	if minAge <= 0 {
		minAge = defaultOrphanMinAge
	}
	return &orphanCleanupJob{
		logg:    params.Logger,
		repo:    params.Repo,
		store:   params.Store,
		refs:    params.References,
		metrics: params.Metrics,
		batch:   batch,
		minAge:  minAge,
		now:     time.Now,
	}, nil
}

type orphanCleanupJob struct {
	logg    *logger.Logger
	repo    orphanLedger
	store   objectDeleter
	refs    recordLister
	metrics orphanMetrics
	batch   int
	minAge  time.Duration
	now     func() time.Time
}

func (j *orphanCleanupJob) Name() string { return "orphan-cleanup" }

// Run deletes one batch of ledger objects. Rows younger than minAge are skipped so an
// in-flight cleanup never races the sweeper.
func (j *orphanCleanupJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.minAge)
	rows, err := j.repo.ListDue(ctx, cutoff, j.batch)
	if err != nil {
		return fmt.Errorf("query orphaned assets: %w", err)
	}

	var (
		errs    error
		deleted int
		failed  int
		kept    int
		skipped int
		lists   = map[enums.Resource]string{}
	)
	for _, row := range rows {
		if row.Status == enums.OrphanStatusUnconfirmed {
			if j.refs == nil {
				skipped++
				continue
			}
			inUse, err := j.referenced(ctx, lists, row)
			if err != nil {
				errs = multierr.Append(errs, err)
				continue
			}
			if inUse {
				if err := j.repo.Delete(ctx, row.ID); err != nil {
					errs = multierr.Append(errs, fmt.Errorf("release ledger row %s: %w", row.ID, err))
					continue
				}
				kept++
				if j.metrics != nil {
					j.metrics.IncOrphan(row.Resource.AssetNamespace(), orphanCleanupInUse)
				}
				continue
			}
		}
		if err := j.store.Delete(ctx, row.ObjectKey); err != nil {
			failed++
			errs = multierr.Append(errs, fmt.Errorf("delete %s: %w", row.ObjectKey, err))
			if markErr := j.repo.MarkFailed(ctx, row.ID, err); markErr != nil {
				errs = multierr.Append(errs, fmt.Errorf("mark %s failed: %w", row.ID, markErr))
			}
			continue
		}
		if err := j.repo.Delete(ctx, row.ID); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("remove ledger row %s: %w", row.ID, err))
			continue
		}
		deleted++
		if j.metrics != nil {
			j.metrics.IncOrphan(row.Resource.AssetNamespace(), orphanCleanupSwept)
		}
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":     cutoff,
		"candidates": len(rows),
		"deleted":    deleted,
		"failed":     failed,
		"in_use":     kept,
		"skipped":    skipped,
	})
	j.logg.Info(logCtx, "orphan cleanup complete")
	return errs
}

// referenced reports whether any saved record of the row's resource mentions its object key.
// Lists are fetched once per run.
func (j *orphanCleanupJob) referenced(ctx context.Context, lists map[enums.Resource]string, row models.OrphanedAsset) (bool, error) {
	list, ok := lists[row.Resource]
	if !ok {
		raw, err := j.refs.List(ctx, row.Resource.String())
		if err != nil {
			return false, fmt.Errorf("list %s: %w", row.Resource, err)
		}
		list = string(raw)
		lists[row.Resource] = list
	}
	return strings.Contains(list, row.ObjectKey), nil
}
