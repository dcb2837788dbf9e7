package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// RawStockRowID is the primary key of the single raw-stock counter row.
const RawStockRowID = 1

// RawStock is the facility-wide raw seed counter. Exactly one row,
// incremented by inward intake and decremented by production.
type RawStock struct {
	ID         int             `gorm:"column:id;primaryKey"`
	QuantityKG decimal.Decimal `gorm:"column:quantity_kg;type:numeric;not null"`
	UpdatedAt  time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
