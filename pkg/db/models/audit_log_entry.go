package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kesarlabs/milltrack-backend/pkg/enums"
)

// AuditLogEntry records one state-changing action. Append-only.
type AuditLogEntry struct {
	ID        uuid.UUID         `gorm:"type:uuid;primaryKey"`
	ActorID   uuid.UUID         `gorm:"column:actor_id;type:uuid;not null"`
	ActorName string            `gorm:"column:actor_name;not null"`
	Action    enums.AuditAction `gorm:"column:action;type:text;not null"`
	Details   string            `gorm:"column:details"`
	CreatedAt time.Time         `gorm:"column:created_at;autoCreateTime"`
}

func (a *AuditLogEntry) BeforeCreate(*gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
