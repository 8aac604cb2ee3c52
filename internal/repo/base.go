package repo

import (
	"context"

	"gorm.io/gorm"
)

// Base is embedded by gorm-backed repositories.
type Base struct {
	db *gorm.DB
}

func NewBase(db *gorm.DB) Base {
	return Base{db: db}
}

// DB returns the connection bound to ctx. A nil ctx returns the raw connection.
func (b Base) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return b.db
	}
	return b.db.WithContext(ctx)
}
