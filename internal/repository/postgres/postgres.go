// Package postgres implements the domain repositories on top of gorm.
package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/dmehra2102/prod-golang-projects/medibook/internal/domain"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

func normalizePage(page, pageSize int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > maxPageSize {
		pageSize = defaultPageSize
	}
	return page, pageSize
}

func totalPages(total int64, pageSize int) int {
	if total == 0 {
		return 0
	}
	return int((total + int64(pageSize) - 1) / int64(pageSize))
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

type AuditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) Create(ctx context.Context, entry *domain.AuditLog) error {
	if entry.Changes == "" {
		entry.Changes = "{}"
	}
	return r.db.WithContext(ctx).Create(entry).Error
}
