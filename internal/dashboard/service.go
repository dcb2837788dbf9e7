package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kesarlabs/milltrack-backend/internal/production"
	"github.com/kesarlabs/milltrack-backend/internal/rawstock"
	"github.com/kesarlabs/milltrack-backend/internal/sales"
	"github.com/kesarlabs/milltrack-backend/internal/stockledger"
	"github.com/kesarlabs/milltrack-backend/pkg/db/models"
	"github.com/kesarlabs/milltrack-backend/pkg/enums"
)

const (
	dateLayout    = "2006-01-02"
	recentEntries = 10
)

// TodayStats aggregates the current date's production figures. Yields
// and loss are weighted over the day's totals, not averaged per entry.
type TodayStats struct {
	ConsumedKG         decimal.Decimal
	OilKG              decimal.Decimal
	CakeKG             decimal.Decimal
	RuntimeMinutes     int
	OilYieldPercent    float64
	ProcessLossPercent float64
	OilPerHourKG       float64
}

// Stats is the dashboard snapshot for one viewer. Supervisors get
// their own entries only; sales rows follow the sales visibility rules.
type Stats struct {
	RawStockKG       decimal.Decimal
	OilStockKG       decimal.Decimal
	CakeStockKG      decimal.Decimal
	Today            TodayStats
	RecentProduction []models.ProductionEntry
	RecentSales      []models.SalesEntry
}

// Service assembles the dashboard snapshot.
type Service interface {
	Stats(ctx context.Context, actor *models.User) (*Stats, error)
}

type service struct {
	productionSvc production.Service
	salesSvc      sales.Service
	rawSvc        rawstock.Service
	engine        *stockledger.Engine
	now           func() time.Time
}

// NewService wires the dashboard service.
func NewService(productionSvc production.Service, salesSvc sales.Service, rawSvc rawstock.Service, engine *stockledger.Engine) (Service, error) {
	if productionSvc == nil {
		return nil, fmt.Errorf("production service required")
	}
	if salesSvc == nil {
		return nil, fmt.Errorf("sales service required")
	}
	if rawSvc == nil {
		return nil, fmt.Errorf("raw stock service required")
	}
	if engine == nil {
		return nil, fmt.Errorf("stock ledger engine required")
	}
	return &service{
		productionSvc: productionSvc,
		salesSvc:      salesSvc,
		rawSvc:        rawSvc,
		engine:        engine,
		now:           time.Now,
	}, nil
}

func (s *service) Stats(ctx context.Context, actor *models.User) (*Stats, error) {
	if actor == nil {
		return nil, fmt.Errorf("actor is required")
	}

	raw, err := s.rawSvc.Current(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading raw stock: %w", err)
	}
	balances := map[enums.Product]decimal.Decimal{
		enums.ProductOil:  decimal.Zero,
		enums.ProductCake: decimal.Zero,
	}
	counters, err := s.engine.AllStock(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading finished stock: %w", err)
	}
	for _, counter := range counters {
		balances[counter.Product] = counter.BalanceKG
	}

	entries, err := s.productionSvc.List(ctx, actor, 0)
	if err != nil {
		return nil, fmt.Errorf("listing production: %w", err)
	}
	recentSales, err := s.salesSvc.List(ctx, actor, recentEntries)
	if err != nil {
		return nil, fmt.Errorf("listing sales: %w", err)
	}

	stats := &Stats{
		RawStockKG:  raw.QuantityKG,
		OilStockKG:  balances[enums.ProductOil],
		CakeStockKG: balances[enums.ProductCake],
		Today:       s.todayStats(entries),
		RecentSales: recentSales,
	}
	if len(entries) > recentEntries {
		entries = entries[:recentEntries]
	}
	stats.RecentProduction = entries

	return stats, nil
}

func (s *service) todayStats(entries []models.ProductionEntry) TodayStats {
	today := s.now().Format(dateLayout)

	stats := TodayStats{
		ConsumedKG: decimal.Zero,
		OilKG:      decimal.Zero,
		CakeKG:     decimal.Zero,
	}
	for _, entry := range entries {
		if entry.Voided || entry.Date != today {
			continue
		}
		stats.ConsumedKG = stats.ConsumedKG.Add(entry.ConsumptionKG)
		stats.OilKG = stats.OilKG.Add(entry.OilKG)
		stats.CakeKG = stats.CakeKG.Add(entry.CakeKG)
		stats.RuntimeMinutes += entry.RuntimeMinutes
	}

	hundred := decimal.NewFromInt(100)
	if stats.ConsumedKG.IsPositive() {
		oilYield := stats.OilKG.Mul(hundred).Div(stats.ConsumedKG)
		accounted := stats.OilKG.Add(stats.CakeKG).Mul(hundred).Div(stats.ConsumedKG)
		stats.OilYieldPercent = oilYield.Round(2).InexactFloat64()
		stats.ProcessLossPercent = hundred.Sub(accounted).Round(2).InexactFloat64()
	}
	if stats.RuntimeMinutes > 0 {
		perHour := stats.OilKG.Mul(decimal.NewFromInt(60)).Div(decimal.NewFromInt(int64(stats.RuntimeMinutes)))
		stats.OilPerHourKG = perHour.Round(2).InexactFloat64()
	}

	return stats
}
