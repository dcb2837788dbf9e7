package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/kesarlabs/milltrack-backend/pkg/enums"
)

// SalesEntry records one dispatch. Created confirmed; cancellation is a
// one-way transition with a compensating ledger entry. Rate and value
// are persisted only for Owner-originated sales.
type SalesEntry struct {
	ID                 uuid.UUID        `gorm:"type:uuid;primaryKey"`
	Product            enums.Product    `gorm:"column:product;type:text;not null"`
	QuantityKG         decimal.Decimal  `gorm:"column:quantity_kg;type:numeric;not null"`
	BuyerName          string           `gorm:"column:buyer_name;not null"`
	BuyerType          enums.BuyerType  `gorm:"column:buyer_type;type:text;not null"`
	VehicleNumber      string           `gorm:"column:vehicle_number"`
	RatePerKG          *decimal.Decimal `gorm:"column:rate_per_kg;type:numeric"`
	TotalValue         *decimal.Decimal `gorm:"column:total_value;type:numeric"`
	SalesmanName       string           `gorm:"column:salesman_name;not null"`
	Status             enums.SaleStatus `gorm:"column:status;type:text;not null"`
	CancellationReason *string          `gorm:"column:cancellation_reason"`
	CancelledBy        *string          `gorm:"column:cancelled_by"`
	CancelledAt        *time.Time       `gorm:"column:cancelled_at"`
	ActorID            uuid.UUID        `gorm:"column:actor_id;type:uuid;not null"`
	ActorName          string           `gorm:"column:actor_name;not null"`
	CreatedAt          time.Time        `gorm:"column:created_at;autoCreateTime"`
}

func (e *SalesEntry) BeforeCreate(*gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
