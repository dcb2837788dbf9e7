package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// InwardEntry records one raw seed delivery arriving at the gate.
type InwardEntry struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Supplier      string          `gorm:"column:supplier;not null"`
	VehicleNumber string          `gorm:"column:vehicle_number"`
	QuantityKG    decimal.Decimal `gorm:"column:quantity_kg;type:numeric;not null"`
	ActorID       uuid.UUID       `gorm:"column:actor_id;type:uuid;not null"`
	ActorName     string          `gorm:"column:actor_name;not null"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
}

func (e *InwardEntry) BeforeCreate(*gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
