package profiles

import (
	"context"

	"gorm.io/gorm"

	dbpkg "github.com/kodacard/kodacard-backend/pkg/db"
	"github.com/kodacard/kodacard-backend/pkg/db/models"
	"github.com/kodacard/kodacard-backend/pkg/enums"
	"github.com/kodacard/kodacard-backend/pkg/types"
)

// Repository exposes profile persistence operations.
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

// Create inserts the profile row.
func (r *Repository) Create(ctx context.Context, profile *models.Profile) (*models.Profile, error) {
	if err := r.db.WithContext(ctx).Create(profile).Error; err != nil {
		return nil, err
	}
	return profile, nil
}

// CreateDefault inserts the default profile the activation workflow attaches
// to a freshly claimed card. Runs inside the caller's transaction.
func (r *Repository) CreateDefault(ctx context.Context, tx *gorm.DB, userID uint64, name string) (*models.Profile, error) {
	profile := &models.Profile{
		UserID:      userID,
		Name:        name,
		Type:        enums.ProfileTypePersonal,
		ContactInfo: types.ContactList{},
		SocialLinks: types.SocialList{},
		MetaData:    types.DefaultProfileMeta(Slugify(name)),
		IsPublic:    true,
	}
	if err := tx.WithContext(ctx).Create(profile).Error; err != nil {
		return nil, err
	}
	return profile, nil
}

// FindByID loads a live profile.
func (r *Repository) FindByID(ctx context.Context, id uint64) (*models.Profile, error) {
	var profile models.Profile
	if err := r.db.WithContext(ctx).First(&profile, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// FindOwned loads a profile only when the actor owns it.
func (r *Repository) FindOwned(ctx context.Context, id, userID uint64) (*models.Profile, error) {
	var profile models.Profile
	if err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// FindOwnedForUpdate loads an owned profile under a row lock.
func (r *Repository) FindOwnedForUpdate(ctx context.Context, id, userID uint64) (*models.Profile, error) {
	var profile models.Profile
	if err := dbpkg.LockForUpdate(r.db.WithContext(ctx)).
		Where("id = ? AND user_id = ?", id, userID).
		First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// ListByUser returns the actor's live profiles, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID uint64) ([]models.Profile, error) {
	var rows []models.Profile
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

// CountUnlinkedByUser counts the actor's profiles no card references.
func (r *Repository) CountUnlinkedByUser(ctx context.Context, userID uint64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Profile{}).
		Where("user_id = ?", userID).
		Where("NOT EXISTS (SELECT 1 FROM cards WHERE cards.profile_id = profiles.id AND cards.deleted_at IS NULL)").
		Count(&count).Error
	return count, err
}

// CustomURLTaken reports whether another live profile already claims the URL.
func (r *Repository) CustomURLTaken(ctx context.Context, customURL string, excludeID *uint64) (bool, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Profile{}).
		Where("meta_data -> 'settings' ->> 'customUrl' = ?", customURL)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save persists the full profile row.
func (r *Repository) Save(ctx context.Context, profile *models.Profile) error {
	return r.db.WithContext(ctx).Save(profile).Error
}

// IncrementVisits bumps the public visit counter atomically.
func (r *Repository) IncrementVisits(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).
		Model(&models.Profile{}).
		Where("id = ?", id).
		UpdateColumn("visits", gorm.Expr("visits + 1")).Error
}

// SoftDelete tombstones the profile.
func (r *Repository) SoftDelete(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Delete(&models.Profile{}, "id = ?", id).Error
}

// SoftDeleteTx tombstones the profile inside the caller's transaction. The
// deactivation workflow uses this so card reset and profile removal commit
// together.
func (r *Repository) SoftDeleteTx(ctx context.Context, tx *gorm.DB, id uint64) error {
	return tx.WithContext(ctx).Delete(&models.Profile{}, "id = ?", id).Error
}
