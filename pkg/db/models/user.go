package models

import (
	"time"

	"github.com/kodacard/kodacard-backend/pkg/enums"
)

// User represents the canonical identity entity.
type User struct {
	ID           uint64           `gorm:"column:id;primaryKey;autoIncrement"`
	Email        string           `gorm:"type:text;not null;uniqueIndex"`
	PasswordHash string           `gorm:"column:password_hash;not null"`
	FirstName    string           `gorm:"column:first_name;not null"`
	LastName     string           `gorm:"column:last_name;not null"`
	Phone        *string          `gorm:"column:phone"`
	IsActive     bool             `gorm:"column:is_active;not null;default:true"`
	LastLoginAt  *time.Time       `gorm:"column:last_login_at"`
	SystemRole   enums.SystemRole `gorm:"column:system_role;type:system_role;not null;default:'user'"`
	CreatedAt    time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
