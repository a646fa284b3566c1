package cardtypes

import (
	"context"

	"gorm.io/gorm"

	"github.com/kodacard/kodacard-backend/pkg/db/models"
)

// Repository exposes card type persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts the catalog entry.
func (r *Repository) Create(ctx context.Context, cardType *models.CardType) (*models.CardType, error) {
	if err := r.db.WithContext(ctx).Create(cardType).Error; err != nil {
		return nil, err
	}
	return cardType, nil
}

// FindByID loads a catalog entry.
func (r *Repository) FindByID(ctx context.Context, id uint64) (*models.CardType, error) {
	var cardType models.CardType
	if err := r.db.WithContext(ctx).First(&cardType, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &cardType, nil
}

// List returns the full catalog, alphabetical.
func (r *Repository) List(ctx context.Context) ([]models.CardType, error) {
	var rows []models.CardType
	err := r.db.WithContext(ctx).Order("name ASC").Find(&rows).Error
	return rows, err
}

// Save persists the full catalog entry.
func (r *Repository) Save(ctx context.Context, cardType *models.CardType) error {
	return r.db.WithContext(ctx).Save(cardType).Error
}

// Delete removes the catalog entry. Referencing cards fall back to NULL via
// the schema's ON DELETE SET NULL.
func (r *Repository) Delete(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Delete(&models.CardType{}, "id = ?", id).Error
}
