package models

import (
	"time"

	"github.com/angelmondragon/content-console/pkg/enums"
)

// OrphanedAsset is an uploaded object whose record was never saved and whose immediate
// delete failed.
type OrphanedAsset struct {
	ID        string             `gorm:"column:id;type:varchar(36);primaryKey"`
	ObjectKey string             `gorm:"column:object_key;not null;uniqueIndex:idx_orphaned_assets_object_key"`
	Resource  enums.Resource     `gorm:"column:resource;type:varchar(32);not null"`
	Status    enums.OrphanStatus `gorm:"column:status;type:varchar(16);not null;default:pending"`
	Attempts  int                `gorm:"column:attempts;not null;default:0"`
	LastError *string            `gorm:"column:last_error"`
	CreatedAt time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

func (OrphanedAsset) TableName() string {
	return "orphaned_assets"
}
