package cards

import (
	"context"
	"strings"

	"gorm.io/gorm"

	dbpkg "github.com/kodacard/kodacard-backend/pkg/db"
	"github.com/kodacard/kodacard-backend/pkg/db/models"
)

// Repository exposes card persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Create inserts the card row.
func (r *Repository) Create(ctx context.Context, card *models.Card) (*models.Card, error) {
	if err := r.db.WithContext(ctx).Create(card).Error; err != nil {
		return nil, err
	}
	return card, nil
}

// CreateBatch inserts multiple card rows in one statement.
func (r *Repository) CreateBatch(ctx context.Context, cards []models.Card) ([]models.Card, error) {
	if len(cards) == 0 {
		return cards, nil
	}
	if err := r.db.WithContext(ctx).Create(&cards).Error; err != nil {
		return nil, err
	}
	return cards, nil
}

// FindByID loads the card without associations.
func (r *Repository) FindByID(ctx context.Context, id uint64) (*models.Card, error) {
	var card models.Card
	if err := r.db.WithContext(ctx).First(&card, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &card, nil
}

// FindByIDWithRelations loads the card with its profile and card type.
func (r *Repository) FindByIDWithRelations(ctx context.Context, id uint64) (*models.Card, error) {
	var card models.Card
	if err := r.db.WithContext(ctx).
		Preload("Profile").
		Preload("CardType").
		First(&card, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &card, nil
}

// FindByCode loads the card matching the exact code.
func (r *Repository) FindByCode(ctx context.Context, code string) (*models.Card, error) {
	var card models.Card
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&card).Error; err != nil {
		return nil, err
	}
	return &card, nil
}

// FindByCodeForUpdate loads the card under a row lock. Callers must hold an
// open transaction.
func (r *Repository) FindByCodeForUpdate(ctx context.Context, code string) (*models.Card, error) {
	var card models.Card
	if err := dbpkg.LockForUpdate(r.db.WithContext(ctx)).
		Where("code = ?", code).
		First(&card).Error; err != nil {
		return nil, err
	}
	return &card, nil
}

// FindByCodeForUpdateTx is FindByCodeForUpdate bound to an open transaction.
// The linkage workflow in the profiles package locks cards through this seam.
func (r *Repository) FindByCodeForUpdateTx(ctx context.Context, tx *gorm.DB, code string) (*models.Card, error) {
	return r.WithTx(tx).FindByCodeForUpdate(ctx, code)
}

// SaveTx persists the card inside an open transaction.
func (r *Repository) SaveTx(ctx context.Context, tx *gorm.DB, card *models.Card) error {
	return r.WithTx(tx).Save(ctx, card)
}

// FindByIDForUpdate loads the card by id under a row lock.
func (r *Repository) FindByIDForUpdate(ctx context.Context, id uint64) (*models.Card, error) {
	var card models.Card
	if err := dbpkg.LockForUpdate(r.db.WithContext(ctx)).
		First(&card, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &card, nil
}

// FindByProfileID returns the card referencing the profile, if any.
func (r *Repository) FindByProfileID(ctx context.Context, profileID uint64) (*models.Card, error) {
	var card models.Card
	if err := r.db.WithContext(ctx).Where("profile_id = ?", profileID).First(&card).Error; err != nil {
		return nil, err
	}
	return &card, nil
}

// FindByProfileIDTx is FindByProfileID bound to an open transaction, for
// re-checks that must read the locked state.
func (r *Repository) FindByProfileIDTx(ctx context.Context, tx *gorm.DB, profileID uint64) (*models.Card, error) {
	return r.WithTx(tx).FindByProfileID(ctx, profileID)
}

// CodeExists reports whether a card with the given code already exists,
// including soft-deleted rows so codes are never reissued.
func (r *Repository) CodeExists(ctx context.Context, code string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Unscoped().
		Model(&models.Card{}).
		Where("code = ?", code).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListByUser returns the user's cards with profiles preloaded, most recently
// activated first.
func (r *Repository) ListByUser(ctx context.Context, userID uint64) ([]models.Card, error) {
	var rows []models.Card
	err := r.db.WithContext(ctx).
		Preload("Profile").
		Preload("CardType").
		Where("user_id = ?", userID).
		Order("activated_at DESC").
		Find(&rows).Error
	return rows, err
}

// List returns a filtered page of cards and the total match count.
func (r *Repository) List(ctx context.Context, filters ListFilters) ([]models.Card, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Card{})

	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.CardTypeID != nil {
		query = query.Where("card_type_id = ?", *filters.CardTypeID)
	}
	if filters.UserID != nil {
		query = query.Where("user_id = ?", *filters.UserID)
	}
	if code := strings.TrimSpace(filters.Code); code != "" {
		query = query.Where("code LIKE ?", "%"+strings.ToUpper(code)+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Card
	err := query.
		Preload("Profile").
		Preload("CardType").
		Order("created_at DESC").
		Limit(filters.Limit).
		Offset(filters.Offset).
		Find(&rows).Error
	return rows, total, err
}

// CountByCardType reports how many live cards reference the card type.
func (r *Repository) CountByCardType(ctx context.Context, cardTypeID uint64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Card{}).
		Where("card_type_id = ?", cardTypeID).
		Count(&count).Error
	return count, err
}

// Save persists the full card row.
func (r *Repository) Save(ctx context.Context, card *models.Card) error {
	return r.db.WithContext(ctx).Save(card).Error
}

// SoftDelete tombstones the card.
func (r *Repository) SoftDelete(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Delete(&models.Card{}, "id = ?", id).Error
}
