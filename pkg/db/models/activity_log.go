package models

import (
	"encoding/json"
	"time"
)

// ActivityLog is one audit row per state-changing API call. Rows are written
// fire-and-forget; nothing reads them on the request path.
type ActivityLog struct {
	ID         uint64          `gorm:"column:id;primaryKey;autoIncrement"`
	UserID     *uint64         `gorm:"column:user_id;index"`
	Method     string          `gorm:"column:method;not null"`
	Path       string          `gorm:"column:path;not null"`
	Status     int             `gorm:"column:status;not null"`
	IP         string          `gorm:"column:ip"`
	UserAgent  string          `gorm:"column:user_agent"`
	Payload    json.RawMessage `gorm:"column:payload;type:jsonb"`
	DurationMS int64           `gorm:"column:duration_ms;not null;default:0"`
	CreatedAt  time.Time       `gorm:"column:created_at;autoCreateTime"`
}
