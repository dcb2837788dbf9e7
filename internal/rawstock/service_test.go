package rawstock

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/kesarlabs/milltrack-backend/internal/audit"
	"github.com/kesarlabs/milltrack-backend/pkg/db"
	"github.com/kesarlabs/milltrack-backend/pkg/db/models"
	"github.com/kesarlabs/milltrack-backend/pkg/enums"
	pkgerrors "github.com/kesarlabs/milltrack-backend/pkg/errors"
	"github.com/kesarlabs/milltrack-backend/pkg/logger"
)

func setupRawStockTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	gormDB, err := gorm.Open(sqlite.Open("file:rawstock_test?mode=memory&cache=shared"), &gorm.Config{})
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
	for _, table := range []string{"raw_stocks", "inward_entries", "audit_log_entries"} {
		require.NoError(t, gormDB.Exec("DELETE FROM "+table).Error)
	}

	return gormDB
}

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()

	gormDB := setupRawStockTestDB(t)
	client := db.NewClientWithGorm(gormDB)
	logg := logger.New(logger.Options{ServiceName: "rawstock-test"})

	auditSvc, err := audit.NewService(audit.NewRepository(gormDB))
	require.NoError(t, err)

	svc, err := NewService(client, NewRepository(gormDB), auditSvc, logg)
	require.NoError(t, err)
	return svc, gormDB
}

func testActor() *models.User {
	return &models.User{ID: uuid.New(), Name: "Ramesh", Role: enums.UserRoleOwner}
}

func TestService_RecordInward(t *testing.T) {
	svc, gormDB := newTestService(t)
	ctx := context.Background()
	actor := testActor()

	entry, err := svc.RecordInward(ctx, actor, RecordInwardInput{
		Supplier:      "Patel Agro",
		VehicleNumber: "GJ05AB1234",
		QuantityKG:    decimal.RequireFromString("500"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Patel Agro", entry.Supplier)
	assert.Equal(t, actor.Name, entry.ActorName)

	counter, err := svc.Current(ctx)
	require.NoError(t, err)
	assert.True(t, counter.QuantityKG.Equal(decimal.RequireFromString("500")))

	var auditCount int64
	require.NoError(t, gormDB.Table("audit_log_entries").Where("action = ?", enums.AuditActionEntryCreate).Count(&auditCount).Error)
	assert.Equal(t, int64(1), auditCount)
}

func TestService_RecordInwardValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.RecordInward(ctx, testActor(), RecordInwardInput{
		Supplier:   "",
		QuantityKG: decimal.RequireFromString("10"),
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))

	_, err = svc.RecordInward(ctx, testActor(), RecordInwardInput{
		Supplier:   "Patel Agro",
		QuantityKG: decimal.Zero,
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))
}

func TestService_ConsumeInTx(t *testing.T) {
	svc, gormDB := newTestService(t)
	ctx := context.Background()

	_, err := svc.RecordInward(ctx, testActor(), RecordInwardInput{
		Supplier:   "Patel Agro",
		QuantityKG: decimal.RequireFromString("300"),
	})
	require.NoError(t, err)

	client := db.NewClientWithGorm(gormDB)
	err = svc.Locked(func() error {
		return client.WithTx(ctx, func(tx *gorm.DB) error {
			opening, err := svc.ConsumeInTx(ctx, tx, decimal.RequireFromString("120"))
			if err != nil {
				return err
			}
			assert.True(t, opening.QuantityKG.Equal(decimal.RequireFromString("300")))
			return nil
		})
	})
	require.NoError(t, err)

	counter, err := svc.Current(ctx)
	require.NoError(t, err)
	assert.True(t, counter.QuantityKG.Equal(decimal.RequireFromString("180")))
}

func TestService_ConsumeInTxInsufficient(t *testing.T) {
	svc, gormDB := newTestService(t)
	ctx := context.Background()

	_, err := svc.RecordInward(ctx, testActor(), RecordInwardInput{
		Supplier:   "Patel Agro",
		QuantityKG: decimal.RequireFromString("50"),
	})
	require.NoError(t, err)

	client := db.NewClientWithGorm(gormDB)
	err = svc.Locked(func() error {
		return client.WithTx(ctx, func(tx *gorm.DB) error {
			_, err := svc.ConsumeInTx(ctx, tx, decimal.RequireFromString("80"))
			return err
		})
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeInsufficientStock))

	counter, err := svc.Current(ctx)
	require.NoError(t, err)
	assert.True(t, counter.QuantityKG.Equal(decimal.RequireFromString("50")))
}

func TestService_ListInwardNewestFirst(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	actor := testActor()

	first, err := svc.RecordInward(ctx, actor, RecordInwardInput{
		Supplier:   "Patel Agro",
		QuantityKG: decimal.RequireFromString("100"),
	})
	require.NoError(t, err)
	second, err := svc.RecordInward(ctx, actor, RecordInwardInput{
		Supplier:   "Mehta Seeds",
		QuantityKG: decimal.RequireFromString("200"),
	})
	require.NoError(t, err)

	entries, err := svc.ListInward(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, second.ID, entries[0].ID)
	assert.Equal(t, first.ID, entries[1].ID)
}
