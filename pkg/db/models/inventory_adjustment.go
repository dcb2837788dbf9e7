package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/kesarlabs/milltrack-backend/pkg/enums"
)

// InventoryAdjustment is a stock correction request. Stock moves only
// when an Owner approves; terminal states never transition again.
type InventoryAdjustment struct {
	ID            uuid.UUID              `gorm:"type:uuid;primaryKey"`
	Product       enums.Product          `gorm:"column:product;type:text;not null"`
	DeltaKG       decimal.Decimal        `gorm:"column:delta_kg;type:numeric;not null"`
	Reason        string                 `gorm:"column:reason;not null"`
	Status        enums.AdjustmentStatus `gorm:"column:status;type:text;not null"`
	RequesterID   uuid.UUID              `gorm:"column:requester_id;type:uuid;not null"`
	RequesterName string                 `gorm:"column:requester_name;not null"`
	ActionedByID  *uuid.UUID             `gorm:"column:actioned_by_id;type:uuid"`
	ActionedBy    *string                `gorm:"column:actioned_by"`
	ActionedAt    *time.Time             `gorm:"column:actioned_at"`
	CreatedAt     time.Time              `gorm:"column:created_at;autoCreateTime"`
}

func (a *InventoryAdjustment) BeforeCreate(*gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
