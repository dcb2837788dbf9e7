package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/kesarlabs/milltrack-backend/pkg/enums"
)

// ProductionEntry is the immutable record of one crushing shift,
// including the metrics derived at submission time. Voided stays false;
// the flag is persisted for history display only.
type ProductionEntry struct {
	ID                 uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Date               string          `gorm:"column:date;not null"`
	Shift              enums.Shift     `gorm:"column:shift;type:text;not null"`
	LineName           string          `gorm:"column:line_name"`
	SupervisorName     string          `gorm:"column:supervisor_name;not null"`
	HelperNames        string          `gorm:"column:helper_names"`
	ConsumptionKG      decimal.Decimal `gorm:"column:consumption_kg;type:numeric;not null"`
	OilKG              decimal.Decimal `gorm:"column:oil_kg;type:numeric;not null"`
	CakeKG             decimal.Decimal `gorm:"column:cake_kg;type:numeric;not null"`
	OpeningRawStockKG  decimal.Decimal `gorm:"column:opening_raw_stock_kg;type:numeric;not null"`
	StartTime          string          `gorm:"column:start_time;not null"`
	EndTime            string          `gorm:"column:end_time;not null"`
	BreakdownMinutes   int             `gorm:"column:breakdown_minutes;not null;default:0"`
	BreakdownReason    string          `gorm:"column:breakdown_reason"`
	RuntimeMinutes     int             `gorm:"column:runtime_minutes;not null"`
	OilYieldPercent    float64         `gorm:"column:oil_yield_percent;not null"`
	CakeYieldPercent   float64         `gorm:"column:cake_yield_percent;not null"`
	ProcessLossPercent float64         `gorm:"column:process_loss_percent;not null"`
	OilPerHourKG       float64         `gorm:"column:oil_per_hour_kg;not null"`
	Voided             bool            `gorm:"column:voided;not null;default:false"`
	ActorID            uuid.UUID       `gorm:"column:actor_id;type:uuid;not null"`
	ActorName          string          `gorm:"column:actor_name;not null"`
	CreatedAt          time.Time       `gorm:"column:created_at;autoCreateTime"`
}

func (e *ProductionEntry) BeforeCreate(*gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
