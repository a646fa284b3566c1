package statistics

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/kodacard/kodacard-backend/pkg/db/models"
	"github.com/kodacard/kodacard-backend/pkg/enums"
)

// Repository runs the read-only aggregate queries behind the admin dashboard.
// The time series queries use Postgres date functions and have no portable
// fallback.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// bucketFormats maps series periods onto to_char patterns.
var bucketFormats = map[string]string{
	"day":   "YYYY-MM-DD",
	"week":  "IYYY-IW",
	"month": "YYYY-MM",
	"year":  "YYYY",
}

func (r *Repository) CountUsers(ctx context.Context) (total, active int64, err error) {
	base := r.db.WithContext(ctx).Model(&models.User{})
	if err = base.Count(&total).Error; err != nil {
		return 0, 0, err
	}
	err = r.db.WithContext(ctx).Model(&models.User{}).
		Where("is_active = ?", true).
		Count(&active).Error
	return total, active, err
}

func (r *Repository) CountCards(ctx context.Context) (CardsSummary, error) {
	var out CardsSummary
	model := func() *gorm.DB { return r.db.WithContext(ctx).Model(&models.Card{}) }

	if err := model().Count(&out.Total).Error; err != nil {
		return out, err
	}
	for status, dst := range map[enums.CardStatus]*int64{
		enums.CardStatusActive:   &out.Active,
		enums.CardStatusInactive: &out.Inactive,
		enums.CardStatusExpired:  &out.Expired,
	} {
		if err := model().Where("status = ?", status).Count(dst).Error; err != nil {
			return out, err
		}
	}
	err := model().Where("user_id IS NOT NULL").Count(&out.Assigned).Error
	return out, err
}

func (r *Repository) CountProfiles(ctx context.Context) (ProfilesSummary, error) {
	var out ProfilesSummary
	model := func() *gorm.DB { return r.db.WithContext(ctx).Model(&models.Profile{}) }

	if err := model().Count(&out.Total).Error; err != nil {
		return out, err
	}
	if err := model().Where("is_public = ?", true).Count(&out.Public).Error; err != nil {
		return out, err
	}
	if err := model().
		Where("EXISTS (SELECT 1 FROM cards WHERE cards.profile_id = profiles.id AND cards.deleted_at IS NULL)").
		Count(&out.Linked).Error; err != nil {
		return out, err
	}
	err := model().Select("COALESCE(SUM(visits), 0)").Scan(&out.Visits).Error
	return out, err
}

// CardsOverTime buckets card creation counts by the given period.
func (r *Repository) CardsOverTime(ctx context.Context, period string, from, to *time.Time) ([]TimeBucket, error) {
	format, ok := bucketFormats[period]
	if !ok {
		format = bucketFormats["day"]
	}

	query := r.db.WithContext(ctx).Model(&models.Card{}).
		Select("to_char(created_at, ?) AS period, COUNT(*) AS count", format)
	if from != nil {
		query = query.Where("created_at >= ?", *from)
	}
	if to != nil {
		query = query.Where("created_at < ?", *to)
	}

	var rows []TimeBucket
	err := query.Group("period").Order("period ASC").Scan(&rows).Error
	return rows, err
}

// TopProfilesByVisits returns the most visited live profiles.
func (r *Repository) TopProfilesByVisits(ctx context.Context, limit int) ([]ProfileVisitsEntry, error) {
	var rows []ProfileVisitsEntry
	err := r.db.WithContext(ctx).Model(&models.Profile{}).
		Select("id AS profile_id, name, user_id, visits").
		Order("visits DESC").
		Order("id ASC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

// CardTypeDistribution counts live cards per catalog entry.
func (r *Repository) CardTypeDistribution(ctx context.Context) ([]CardTypeDistributionEntry, error) {
	var rows []CardTypeDistributionEntry
	err := r.db.WithContext(ctx).Model(&models.Card{}).
		Select("cards.card_type_id, COALESCE(card_types.name, 'untyped') AS name, COUNT(*) AS count").
		Joins("LEFT JOIN card_types ON card_types.id = cards.card_type_id").
		Group("cards.card_type_id, card_types.name").
		Order("count DESC").
		Scan(&rows).Error
	return rows, err
}

// UserGrowth returns monthly signup counts for the trailing twelve months.
func (r *Repository) UserGrowth(ctx context.Context) ([]TimeBucket, error) {
	var rows []TimeBucket
	err := r.db.WithContext(ctx).Raw(`
		SELECT to_char(date_trunc('month', created_at), 'YYYY-MM') AS period,
		       COUNT(*) AS count
		FROM users
		WHERE created_at >= date_trunc('month', NOW()) - INTERVAL '11 months'
		GROUP BY period
		ORDER BY period ASC`).Scan(&rows).Error
	return rows, err
}
