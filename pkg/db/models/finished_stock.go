package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/kesarlabs/milltrack-backend/pkg/enums"
)

// FinishedStock is the per-product finished goods counter. One row per
// product, never negative; only the ledger engine writes it.
type FinishedStock struct {
	Product   enums.Product   `gorm:"column:product;type:text;primaryKey"`
	BalanceKG decimal.Decimal `gorm:"column:balance_kg;type:numeric;not null"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
