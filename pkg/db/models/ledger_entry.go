package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/kesarlabs/milltrack-backend/pkg/enums"
)

// LedgerEntry is one immutable finished-stock movement. Replaying all
// entries for a product in chronological order from zero reproduces the
// current FinishedStock balance.
type LedgerEntry struct {
	ID          uuid.UUID             `gorm:"type:uuid;primaryKey"`
	Product     enums.Product         `gorm:"column:product;type:text;not null;index"`
	Kind        enums.StockChangeKind `gorm:"column:kind;type:text;not null"`
	ReferenceID uuid.UUID             `gorm:"column:reference_id;type:uuid;not null"`
	DeltaKG     decimal.Decimal       `gorm:"column:delta_kg;type:numeric;not null"`
	BalanceKG   decimal.Decimal       `gorm:"column:balance_kg;type:numeric;not null"`
	ActorID     uuid.UUID             `gorm:"column:actor_id;type:uuid;not null"`
	ActorName   string                `gorm:"column:actor_name;not null"`
	CreatedAt   time.Time             `gorm:"column:created_at;autoCreateTime;index"`
}

func (e *LedgerEntry) BeforeCreate(*gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
