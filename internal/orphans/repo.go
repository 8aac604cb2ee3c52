package orphans

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/angelmondragon/content-console/internal/repo"
	"github.com/angelmondragon/content-console/pkg/db/models"
	"github.com/angelmondragon/content-console/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const lastErrorLimit = 1024

// Repository persists the orphan ledger.
type Repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) (*Repository, error) {
	if db == nil {
		return nil, errors.New("gorm db required")
	}
	return &Repository{Base: repo.NewBase(db)}, nil
}

// Record adds keys to the ledger with status. Keys already present are left alone.
func (r *Repository) Record(ctx context.Context, resource enums.Resource, keys []string, status enums.OrphanStatus, cause error) error {
	if len(keys) == 0 {
		return nil
	}
	if !status.IsValid() {
		return fmt.Errorf("invalid orphan status %q", status)
	}
	var lastErr *string
	if cause != nil {
		msg := truncate(cause.Error())
		lastErr = &msg
	}
	rows := make([]models.OrphanedAsset, 0, len(keys))
	for _, key := range keys {
		rows = append(rows, models.OrphanedAsset{
			ID:        uuid.NewString(),
			ObjectKey: key,
			Resource:  resource,
			Status:    status,
			LastError: lastErr,
		})
	}
	return r.DB(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "object_key"}}, DoNothing: true}).
		Create(&rows).Error
}

// ListDue returns up to limit rows created before cutoff, oldest first.
func (r *Repository) ListDue(ctx context.Context, cutoff time.Time, limit int) ([]models.OrphanedAsset, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []models.OrphanedAsset
	err := r.DB(ctx).
		Where("created_at < ?", cutoff.UTC()).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

// MarkFailed bumps the attempt counter after a failed delete.
func (r *Repository) MarkFailed(ctx context.Context, id string, cause error) error {
	msg := ""
	if cause != nil {
		msg = truncate(cause.Error())
	}
	return r.DB(ctx).
		Model(&models.OrphanedAsset{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":     enums.OrphanStatusFailed,
			"attempts":   gorm.Expr("attempts + 1"),
			"last_error": msg,
			"updated_at": time.Now().UTC(),
		}).Error
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	return r.DB(ctx).Where("id = ?", id).Delete(&models.OrphanedAsset{}).Error
}

func (r *Repository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.DB(ctx).Model(&models.OrphanedAsset{}).Count(&n).Error
	return n, err
}

func truncate(s string) string {
	if len(s) <= lastErrorLimit {
		return s
	}
	return s[:lastErrorLimit]
}
