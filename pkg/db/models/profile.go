package models

import (
	"time"

	"github.com/kodacard/kodacard-backend/pkg/enums"
	"github.com/kodacard/kodacard-backend/pkg/types"
	"gorm.io/gorm"
)

// Profile is a user-owned presentable identity. The flexible blocks (contacts,
// socials, meta) are persisted as typed JSONB documents.
type Profile struct {
	ID          uint64            `gorm:"column:id;primaryKey;autoIncrement"`
	UserID      uint64            `gorm:"column:user_id;not null;index"`
	Name        string            `gorm:"column:name;not null"`
	Type        enums.ProfileType `gorm:"column:type;type:profile_type;not null;default:'personal'"`
	Description *string           `gorm:"column:description"`
	Image       *string           `gorm:"column:image"`
	ContactInfo types.ContactList `gorm:"column:contact_info;type:jsonb"`
	SocialLinks types.SocialList  `gorm:"column:social_links;type:jsonb"`
	MetaData    types.ProfileMeta `gorm:"column:meta_data;type:jsonb"`
	Visits      int               `gorm:"column:visits;not null;default:0"`
	IsPublic    bool              `gorm:"column:is_public;not null;default:true"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time         `gorm:"column:updated_at;autoUpdateTime"`
	DeletedAt   gorm.DeletedAt    `gorm:"column:deleted_at;index"`

	User *User `gorm:"foreignKey:UserID"`
}
