package activitylog

import (
	"context"

	"gorm.io/gorm"

	"github.com/kodacard/kodacard-backend/pkg/db/models"
)

// Repository exposes audit row persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Insert writes one audit row.
func (r *Repository) Insert(ctx context.Context, row *models.ActivityLog) error {
	return r.db.WithContext(ctx).Create(row).Error
}

// ListFilters narrows the audit listing.
type ListFilters struct {
	UserID *uint64
	Path   string
	Limit  int
	Offset int
}

// List returns a page of audit rows, newest first, with the total match count.
func (r *Repository) List(ctx context.Context, filters ListFilters) ([]models.ActivityLog, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.ActivityLog{})
	if filters.UserID != nil {
		query = query.Where("user_id = ?", *filters.UserID)
	}
	if filters.Path != "" {
		query = query.Where("path LIKE ?", filters.Path+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.ActivityLog
	err := query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(filters.Limit).
		Offset(filters.Offset).
		Find(&rows).Error
	return rows, total, err
}
