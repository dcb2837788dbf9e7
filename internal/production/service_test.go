package production

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/kesarlabs/milltrack-backend/internal/alerts"
	"github.com/kesarlabs/milltrack-backend/internal/audit"
	"github.com/kesarlabs/milltrack-backend/internal/rawstock"
	"github.com/kesarlabs/milltrack-backend/internal/stockledger"
	"github.com/kesarlabs/milltrack-backend/pkg/config"
	"github.com/kesarlabs/milltrack-backend/pkg/db"
	"github.com/kesarlabs/milltrack-backend/pkg/db/models"
	"github.com/kesarlabs/milltrack-backend/pkg/enums"
	pkgerrors "github.com/kesarlabs/milltrack-backend/pkg/errors"
	"github.com/kesarlabs/milltrack-backend/pkg/logger"
)

func setupProductionTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	gormDB, err := gorm.Open(sqlite.Open("file:production_test?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := gormDB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	schemas := []string{`
CREATE TABLE IF NOT EXISTS raw_stocks (
  id INTEGER PRIMARY KEY,
  quantity_kg NUMERIC NOT NULL DEFAULT 0,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS inward_entries (
  id TEXT PRIMARY KEY,
  supplier TEXT NOT NULL,
  vehicle_number TEXT,
  quantity_kg NUMERIC NOT NULL,
  actor_id TEXT NOT NULL,
  actor_name TEXT NOT NULL,
  created_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS finished_stocks (
  product TEXT PRIMARY KEY,
  balance_kg NUMERIC NOT NULL DEFAULT 0,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS ledger_entries (
  id TEXT PRIMARY KEY,
  product TEXT NOT NULL,
  kind TEXT NOT NULL,
  reference_id TEXT NOT NULL,
  delta_kg NUMERIC NOT NULL,
  balance_kg NUMERIC NOT NULL,
  actor_id TEXT NOT NULL,
  actor_name TEXT NOT NULL,
  created_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS production_entries (
  id TEXT PRIMARY KEY,
  date TEXT NOT NULL,
  shift TEXT NOT NULL,
  line_name TEXT,
  supervisor_name TEXT NOT NULL,
  helper_names TEXT,
  consumption_kg NUMERIC NOT NULL,
  oil_kg NUMERIC NOT NULL,
  cake_kg NUMERIC NOT NULL,
  opening_raw_stock_kg NUMERIC NOT NULL,
  start_time TEXT NOT NULL,
  end_time TEXT NOT NULL,
  breakdown_minutes INTEGER NOT NULL DEFAULT 0,
  breakdown_reason TEXT,
  runtime_minutes INTEGER NOT NULL,
  oil_yield_percent REAL NOT NULL,
  cake_yield_percent REAL NOT NULL,
  process_loss_percent REAL NOT NULL,
  oil_per_hour_kg REAL NOT NULL,
  voided INTEGER NOT NULL DEFAULT 0,
  actor_id TEXT NOT NULL,
  actor_name TEXT NOT NULL,
  created_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS audit_log_entries (
  id TEXT PRIMARY KEY,
  actor_id TEXT NOT NULL,
  actor_name TEXT NOT NULL,
  action TEXT NOT NULL,
  details TEXT,
  created_at DATETIME
);`}
	for _, schema := range schemas {
		require.NoError(t, gormDB.Exec(schema).Error)
	}
	tables := []string{"raw_stocks", "inward_entries", "finished_stocks", "ledger_entries", "production_entries", "audit_log_entries"}
	for _, table := range tables {
		require.NoError(t, gormDB.Exec("DELETE FROM "+table).Error)
	}

	return gormDB
}

type productionFixture struct {
	svc    Service
	rawSvc rawstock.Service
	engine *stockledger.Engine
	gormDB *gorm.DB
}

func newProductionFixture(t *testing.T) *productionFixture {
	t.Helper()

	gormDB := setupProductionTestDB(t)
	client := db.NewClientWithGorm(gormDB)
	logg := logger.New(logger.Options{ServiceName: "production-test"})

	auditSvc, err := audit.NewService(audit.NewRepository(gormDB))
	require.NoError(t, err)

	rawSvc, err := rawstock.NewService(client, rawstock.NewRepository(gormDB), auditSvc, logg)
	require.NoError(t, err)

	engine, err := stockledger.NewEngine(client, stockledger.NewRepository(gormDB), logg)
	require.NoError(t, err)

	evaluator := alerts.NewEvaluator(config.AlertsConfig{
		MinOilYieldPercent:    38.0,
		MaxProcessLossPercent: 7.0,
		MaxBreakdownMinutes:   45,
		MinRuntimeMinutes:     300,
	})

	svc, err := NewService(client, NewRepository(gormDB), rawSvc, engine, auditSvc, evaluator, logg)
	require.NoError(t, err)

	return &productionFixture{svc: svc, rawSvc: rawSvc, engine: engine, gormDB: gormDB}
}

func (f *productionFixture) seedRawStock(t *testing.T, actor *models.User, quantity string) {
	t.Helper()
	_, err := f.rawSvc.RecordInward(context.Background(), actor, rawstock.RecordInwardInput{
		Supplier:   "Patel Agro",
		QuantityKG: decimal.RequireFromString(quantity),
	})
	require.NoError(t, err)
}

func owner() *models.User {
	return &models.User{ID: uuid.New(), Name: "Kesar", Role: enums.UserRoleOwner}
}

func shiftInput() RecordInput {
	return RecordInput{
		Date:           "2026-08-20",
		Shift:          enums.ShiftDay,
		LineName:       "Expeller 1",
		SupervisorName: "Suresh",
		ConsumptionKG:  decimal.RequireFromString("1000"),
		OilKG:          decimal.RequireFromString("400"),
		CakeKG:         decimal.RequireFromString("550"),
		StartTime:      "08:00",
		EndTime:        "17:00",
	}
}

func TestService_Record(t *testing.T) {
	f := newProductionFixture(t)
	ctx := context.Background()
	actor := owner()
	f.seedRawStock(t, actor, "1500")

	result, err := f.svc.Record(ctx, actor, shiftInput())
	require.NoError(t, err)

	entry := result.Entry
	assert.Equal(t, 540, entry.RuntimeMinutes)
	assert.Equal(t, 40.0, entry.OilYieldPercent)
	assert.Equal(t, 55.0, entry.CakeYieldPercent)
	assert.Equal(t, 5.0, entry.ProcessLossPercent)
	assert.True(t, entry.OpeningRawStockKG.Equal(decimal.RequireFromString("1500")))
	assert.Empty(t, result.Alerts)

	// raw stock decremented
	raw, err := f.rawSvc.Current(ctx)
	require.NoError(t, err)
	assert.True(t, raw.QuantityKG.Equal(decimal.RequireFromString("500")))

	// both finished counters moved through the ledger
	oil, err := f.engine.FinishedStock(ctx, enums.ProductOil)
	require.NoError(t, err)
	assert.True(t, oil.BalanceKG.Equal(decimal.RequireFromString("400")))
	cake, err := f.engine.FinishedStock(ctx, enums.ProductCake)
	require.NoError(t, err)
	assert.True(t, cake.BalanceKG.Equal(decimal.RequireFromString("550")))

	ledger, err := f.engine.Ledger(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, ledger, 2)
	for _, row := range ledger {
		assert.Equal(t, entry.ID, row.ReferenceID)
		assert.Equal(t, enums.StockChangeKindProduction, row.Kind)
	}
}

func TestService_RecordInsufficientRawStockRollsBack(t *testing.T) {
	f := newProductionFixture(t)
	ctx := context.Background()
	actor := owner()
	f.seedRawStock(t, actor, "600")

	_, err := f.svc.Record(ctx, actor, shiftInput())
	require.Error(t, err)
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeInsufficientStock))

	// nothing moved
	raw, err := f.rawSvc.Current(ctx)
	require.NoError(t, err)
	assert.True(t, raw.QuantityKG.Equal(decimal.RequireFromString("600")))

	oil, err := f.engine.FinishedStock(ctx, enums.ProductOil)
	require.NoError(t, err)
	assert.True(t, oil.BalanceKG.IsZero())

	var entryCount int64
	require.NoError(t, f.gormDB.Table("production_entries").Count(&entryCount).Error)
	assert.Equal(t, int64(0), entryCount)
}

func TestService_RecordInvalidDuration(t *testing.T) {
	f := newProductionFixture(t)
	ctx := context.Background()
	actor := owner()
	f.seedRawStock(t, actor, "1500")

	input := shiftInput()
	input.EndTime = "09:00"
	input.BreakdownMinutes = 120

	_, err := f.svc.Record(ctx, actor, input)
	require.Error(t, err)
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeInvalidDuration))

	raw, err := f.rawSvc.Current(ctx)
	require.NoError(t, err)
	assert.True(t, raw.QuantityKG.Equal(decimal.RequireFromString("1500")))
}

func TestService_RecordNightShiftWrapsMidnight(t *testing.T) {
	f := newProductionFixture(t)
	ctx := context.Background()
	actor := owner()
	f.seedRawStock(t, actor, "1500")

	input := shiftInput()
	input.Shift = enums.ShiftNight
	input.StartTime = "20:00"
	input.EndTime = "06:00"

	result, err := f.svc.Record(ctx, actor, input)
	require.NoError(t, err)
	assert.Equal(t, 600, result.Entry.RuntimeMinutes)
}

func TestService_RecordRaisesAdvisories(t *testing.T) {
	f := newProductionFixture(t)
	ctx := context.Background()
	actor := owner()
	f.seedRawStock(t, actor, "1500")

	input := shiftInput()
	input.OilKG = decimal.RequireFromString("300")  // 30% yield
	input.CakeKG = decimal.RequireFromString("600") // 10% loss
	input.BreakdownMinutes = 60
	input.BreakdownReason = "belt snapped"

	result, err := f.svc.Record(ctx, actor, input)
	require.NoError(t, err)

	kinds := map[alerts.Kind]bool{}
	for _, alert := range result.Alerts {
		kinds[alert.Kind] = true
	}
	assert.True(t, kinds[alerts.KindLowOilYield])
	assert.True(t, kinds[alerts.KindHighProcessLoss])
	assert.True(t, kinds[alerts.KindLongBreakdown])
}

func TestService_ListFiltersByRole(t *testing.T) {
	f := newProductionFixture(t)
	ctx := context.Background()
	ownerUser := owner()
	supervisor := &models.User{ID: uuid.New(), Name: "Suresh", Role: enums.UserRoleSupervisor}
	f.seedRawStock(t, ownerUser, "5000")

	_, err := f.svc.Record(ctx, ownerUser, shiftInput())
	require.NoError(t, err)
	_, err = f.svc.Record(ctx, supervisor, shiftInput())
	require.NoError(t, err)

	all, err := f.svc.List(ctx, ownerUser, 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	own, err := f.svc.List(ctx, supervisor, 0)
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, supervisor.ID, own[0].ActorID)
}
