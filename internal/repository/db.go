package repository

import (
	"context"

	"gorm.io/gorm"
)

// use returns the caller's transaction when one is given, otherwise the
// repository's own handle. Either way the request context is attached.
func use(ctx context.Context, db, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}

func paginate(page, limit int) (offset, size int) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if page <= 0 {
		page = 1
	}
	return (page - 1) * limit, limit
}
