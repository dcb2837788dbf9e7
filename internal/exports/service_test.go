package exports

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/kesarlabs/milltrack-backend/internal/adjustments"
	"github.com/kesarlabs/milltrack-backend/internal/identity"
	"github.com/kesarlabs/milltrack-backend/internal/production"
	"github.com/kesarlabs/milltrack-backend/internal/rawstock"
	"github.com/kesarlabs/milltrack-backend/internal/sales"
	"github.com/kesarlabs/milltrack-backend/internal/stockledger"
	"github.com/kesarlabs/milltrack-backend/pkg/config"
	"github.com/kesarlabs/milltrack-backend/pkg/db"
	"github.com/kesarlabs/milltrack-backend/pkg/db/models"
	"github.com/kesarlabs/milltrack-backend/pkg/enums"
	"github.com/kesarlabs/milltrack-backend/pkg/logger"
)

type fakeProductionService struct {
	entries []models.ProductionEntry
}

func (f *fakeProductionService) Record(ctx context.Context, actor *models.User, input production.RecordInput) (*production.RecordResult, error) {
	return nil, nil
}

func (f *fakeProductionService) List(ctx context.Context, actor *models.User, limit int) ([]models.ProductionEntry, error) {
	return f.entries, nil
}

type fakeRawStockService struct {
	inward []models.InwardEntry
}

func (f *fakeRawStockService) RecordInward(ctx context.Context, actor *models.User, input rawstock.RecordInwardInput) (*models.InwardEntry, error) {
	return nil, nil
}

func (f *fakeRawStockService) ConsumeInTx(ctx context.Context, tx *gorm.DB, quantity decimal.Decimal) (*models.RawStock, error) {
	return nil, nil
}

func (f *fakeRawStockService) Locked(fn func() error) error { return fn() }

func (f *fakeRawStockService) Current(ctx context.Context) (*models.RawStock, error) {
	return &models.RawStock{ID: models.RawStockRowID, QuantityKG: decimal.Zero}, nil
}

func (f *fakeRawStockService) ListInward(ctx context.Context, limit int) ([]models.InwardEntry, error) {
	return f.inward, nil
}

type fakeSalesService struct {
	entries []models.SalesEntry
}

func (f *fakeSalesService) Create(ctx context.Context, actor *models.User, input sales.CreateInput) (*models.SalesEntry, error) {
	return nil, nil
}

func (f *fakeSalesService) Cancel(ctx context.Context, actor *models.User, saleID uuid.UUID, reason string) (*models.SalesEntry, error) {
	return nil, nil
}

func (f *fakeSalesService) List(ctx context.Context, actor *models.User, limit int) ([]models.SalesEntry, error) {
	return f.entries, nil
}

type fakeAdjustmentsService struct {
	entries []models.InventoryAdjustment
}

func (f *fakeAdjustmentsService) Request(ctx context.Context, actor *models.User, input adjustments.RequestInput) (*models.InventoryAdjustment, error) {
	return nil, nil
}

func (f *fakeAdjustmentsService) Approve(ctx context.Context, actor *models.User, id uuid.UUID) (*models.InventoryAdjustment, error) {
	return nil, nil
}

func (f *fakeAdjustmentsService) Reject(ctx context.Context, actor *models.User, id uuid.UUID) (*models.InventoryAdjustment, error) {
	return nil, nil
}

func (f *fakeAdjustmentsService) List(ctx context.Context, limit int) ([]models.InventoryAdjustment, error) {
	return f.entries, nil
}

type fakeIdentityService struct {
	users []models.User
}

func (f *fakeIdentityService) Initialize(ctx context.Context, input identity.InitializeInput) (*models.User, error) {
	return nil, nil
}

func (f *fakeIdentityService) Login(ctx context.Context, loginID, password string) (*models.User, error) {
	return nil, nil
}

func (f *fakeIdentityService) Logout(ctx context.Context) error { return nil }

func (f *fakeIdentityService) CurrentUser(ctx context.Context) (*models.User, error) {
	return nil, nil
}

func (f *fakeIdentityService) CreateSupervisor(ctx context.Context, actor *models.User, input identity.CreateSupervisorInput) (*models.User, string, error) {
	return nil, "", nil
}

func (f *fakeIdentityService) ToggleStatus(ctx context.Context, actor *models.User, targetID uuid.UUID) (*models.User, error) {
	return nil, nil
}

func (f *fakeIdentityService) UpdatePassword(ctx context.Context, userID uuid.UUID, newPassword string) error {
	return nil
}

func (f *fakeIdentityService) ChangePassword(ctx context.Context, userID uuid.UUID, oldPassword, newPassword string) error {
	return nil
}

func (f *fakeIdentityService) ListUsers(ctx context.Context) ([]models.User, error) {
	return f.users, nil
}

func (f *fakeIdentityService) FindByLoginID(ctx context.Context, loginID string) (*models.User, error) {
	return nil, nil
}

type fakeAuditService struct {
	recorded []enums.AuditAction
	entries  []models.AuditLogEntry
}

func (f *fakeAuditService) Record(ctx context.Context, actorID uuid.UUID, actorName string, action enums.AuditAction, details string) error {
	f.recorded = append(f.recorded, action)
	return nil
}

func (f *fakeAuditService) RecordInTx(ctx context.Context, tx *gorm.DB, actorID uuid.UUID, actorName string, action enums.AuditAction, details string) error {
	f.recorded = append(f.recorded, action)
	return nil
}

func (f *fakeAuditService) List(ctx context.Context, limit int) ([]models.AuditLogEntry, error) {
	return f.entries, nil
}

func setupExportEngine(t *testing.T) *stockledger.Engine {
	t.Helper()

	gormDB, err := gorm.Open(sqlite.Open("file:exports_test?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := gormDB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	schemas := []string{`
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
);`}
	for _, schema := range schemas {
		require.NoError(t, gormDB.Exec(schema).Error)
	}
	for _, table := range []string{"finished_stocks", "ledger_entries"} {
		require.NoError(t, gormDB.Exec("DELETE FROM "+table).Error)
	}

	client := db.NewClientWithGorm(gormDB)
	logg := logger.New(logger.Options{ServiceName: "exports-test"})
	engine, err := stockledger.NewEngine(client, stockledger.NewRepository(gormDB), logg)
	require.NoError(t, err)
	return engine
}

func TestService_Export(t *testing.T) {
	engine := setupExportEngine(t)
	actor := &models.User{ID: uuid.New(), Name: "Kesar", Role: enums.UserRoleOwner}

	_, err := engine.Commit(context.Background(), stockledger.CommitInput{
		Product:     enums.ProductOil,
		Delta:       decimal.RequireFromString("120"),
		ReferenceID: uuid.New(),
		Kind:        enums.StockChangeKindProduction,
		ActorID:     actor.ID,
		ActorName:   actor.Name,
	})
	require.NoError(t, err)

	auditSvc := &fakeAuditService{entries: []models.AuditLogEntry{{
		ID: uuid.New(), ActorName: "Kesar", Action: enums.AuditActionLogin, CreatedAt: time.Now(),
	}}}

	svc, err := NewService(
		&fakeProductionService{},
		&fakeRawStockService{inward: []models.InwardEntry{{
			ID: uuid.New(), Supplier: "Patel Agro", QuantityKG: decimal.RequireFromString("500"), ActorName: "Kesar", CreatedAt: time.Now(),
		}}},
		&fakeSalesService{},
		&fakeAdjustmentsService{},
		&fakeIdentityService{users: []models.User{{
			ID: uuid.New(), Name: "Kesar", LoginID: "kesar", Role: enums.UserRoleOwner, CreatedAt: time.Now(),
		}}},
		auditSvc,
		engine,
		logger.New(logger.Options{ServiceName: "exports-test"}),
		config.ExportConfig{OutputDir: t.TempDir()},
	)
	require.NoError(t, err)

	path, err := svc.Export(context.Background(), actor)
	require.NoError(t, err)

	workbook, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer workbook.Close()

	wantSheets := []string{
		"Production Logs", "Raw Material Inward", "Sales & Dispatches",
		"Inventory Ledger", "Stock Adjustments", "System Users", "System Audit Log",
	}
	sheets := workbook.GetSheetList()
	for _, want := range wantSheets {
		assert.Contains(t, sheets, want)
	}
	assert.NotContains(t, sheets, "Sheet1")

	// empty collections carry a placeholder row
	placeholder, err := workbook.GetCellValue("Production Logs", "A2")
	require.NoError(t, err)
	assert.Equal(t, "No records", placeholder)

	// populated sheets carry their data
	supplier, err := workbook.GetCellValue("Raw Material Inward", "A2")
	require.NoError(t, err)
	assert.Equal(t, "Patel Agro", supplier)

	// the ledger sheet lists the oil commit
	product, err := workbook.GetCellValue("Inventory Ledger", "A2")
	require.NoError(t, err)
	assert.Equal(t, "oil", product)

	// no credential material on the users sheet
	rows, err := workbook.GetRows("System Users")
	require.NoError(t, err)
	for _, row := range rows {
		for _, cell := range row {
			assert.NotContains(t, cell, "argon2id")
		}
	}

	// the export itself is audited
	assert.Contains(t, auditSvc.recorded, enums.AuditActionDataExport)
}
