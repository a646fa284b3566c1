package models

import (
	"time"

	"github.com/kodacard/kodacard-backend/pkg/enums"
	"gorm.io/gorm"
)

// Card is a redeemable code record. Until activation it carries no owner or
// profile; the activation and linkage workflows set both together with the
// status transition.
type Card struct {
	ID          uint64           `gorm:"column:id;primaryKey;autoIncrement"`
	Code        string           `gorm:"column:code;not null;uniqueIndex"`
	Status      enums.CardStatus `gorm:"column:status;type:card_status;not null;default:'inactive'"`
	UserID      *uint64          `gorm:"column:user_id"`
	ProfileID   *uint64          `gorm:"column:profile_id"`
	CardTypeID  *uint64          `gorm:"column:card_type_id"`
	ActivatedAt *time.Time       `gorm:"column:activated_at"`
	CreatedAt   time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time        `gorm:"column:updated_at;autoUpdateTime"`
	DeletedAt   gorm.DeletedAt   `gorm:"column:deleted_at;index"`

	User     *User     `gorm:"foreignKey:UserID"`
	Profile  *Profile  `gorm:"foreignKey:ProfileID"`
	CardType *CardType `gorm:"foreignKey:CardTypeID"`
}

// IsAssigned reports whether a user already claimed the card.
func (c *Card) IsAssigned() bool {
	return c.UserID != nil
}

// IsActive reports whether the card is in the active state.
func (c *Card) IsActive() bool {
	return c.Status == enums.CardStatusActive
}

// IsActivatable reports whether the card may enter the activation workflow:
// inactive and unclaimed.
func (c *Card) IsActivatable() bool {
	return c.Status == enums.CardStatusInactive && c.UserID == nil
}

// CheckStateInvariant verifies active implies owner+profile set and inactive
// implies both clear. Mutating paths call this before persisting.
func (c *Card) CheckStateInvariant() bool {
	switch c.Status {
	case enums.CardStatusActive:
		return c.UserID != nil && c.ProfileID != nil
	case enums.CardStatusInactive:
		return c.UserID == nil && c.ProfileID == nil
	default:
		return true
	}
}
