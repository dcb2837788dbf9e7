package exports

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/multierr"

	"github.com/kesarlabs/milltrack-backend/internal/adjustments"
	"github.com/kesarlabs/milltrack-backend/internal/audit"
	"github.com/kesarlabs/milltrack-backend/internal/identity"
	"github.com/kesarlabs/milltrack-backend/internal/production"
	"github.com/kesarlabs/milltrack-backend/internal/rawstock"
	"github.com/kesarlabs/milltrack-backend/internal/sales"
	"github.com/kesarlabs/milltrack-backend/internal/stockledger"
	"github.com/kesarlabs/milltrack-backend/pkg/config"
	"github.com/kesarlabs/milltrack-backend/pkg/db/models"
	"github.com/kesarlabs/milltrack-backend/pkg/enums"
	"github.com/kesarlabs/milltrack-backend/pkg/logger"
)

const (
	sheetProduction  = "Production Logs"
	sheetInward      = "Raw Material Inward"
	sheetSales       = "Sales & Dispatches"
	sheetLedger      = "Inventory Ledger"
	sheetAdjustments = "Stock Adjustments"
	sheetUsers       = "System Users"
	sheetAudit       = "System Audit Log"

	timestampLayout = "2006-01-02 15:04:05"
)

// Service writes the full facility backup as one workbook, one sheet
// per collection. Sales rows follow the viewer's visibility rules, so
// a Supervisor-requested export never contains other actors' sales or
// any money figures.
type Service interface {
	Export(ctx context.Context, actor *models.User) (string, error)
}

type service struct {
	productionSvc  production.Service
	rawSvc         rawstock.Service
	salesSvc       sales.Service
	adjustmentsSvc adjustments.Service
	identitySvc    identity.Service
	auditSvc       audit.Service
	engine         *stockledger.Engine
	logg           *logger.Logger
	cfg            config.ExportConfig
	now            func() time.Time
}

// NewService wires the export service.
func NewService(
	productionSvc production.Service,
	rawSvc rawstock.Service,
	salesSvc sales.Service,
	adjustmentsSvc adjustments.Service,
	identitySvc identity.Service,
	auditSvc audit.Service,
	engine *stockledger.Engine,
	logg *logger.Logger,
	cfg config.ExportConfig,
) (Service, error) {
	if productionSvc == nil {
		return nil, fmt.Errorf("production service required")
	}
	if rawSvc == nil {
		return nil, fmt.Errorf("raw stock service required")
	}
	if salesSvc == nil {
		return nil, fmt.Errorf("sales service required")
	}
	if adjustmentsSvc == nil {
		return nil, fmt.Errorf("adjustments service required")
	}
	if identitySvc == nil {
		return nil, fmt.Errorf("identity service required")
	}
	if auditSvc == nil {
		return nil, fmt.Errorf("audit service required")
	}
	if engine == nil {
		return nil, fmt.Errorf("stock ledger engine required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		productionSvc:  productionSvc,
		rawSvc:         rawSvc,
		salesSvc:       salesSvc,
		adjustmentsSvc: adjustmentsSvc,
		identitySvc:    identitySvc,
		auditSvc:       auditSvc,
		engine:         engine,
		logg:           logg,
		cfg:            cfg,
		now:            time.Now,
	}, nil
}

// Export builds the workbook and returns the written file path.
func (s *service) Export(ctx context.Context, actor *models.User) (string, error) {
	if actor == nil {
		return "", fmt.Errorf("actor is required")
	}

	workbook, err := s.buildWorkbook(ctx, actor)
	if err != nil {
		return "", err
	}
	defer workbook.Close()

	filename := fmt.Sprintf("milltrack_backup_%s.xlsx", s.now().Format("20060102_150405"))
	path := filepath.Join(s.cfg.OutputDir, filename)
	if err := workbook.SaveAs(path); err != nil {
		return "", fmt.Errorf("saving workbook: %w", err)
	}

	if err := s.auditSvc.Record(ctx, actor.ID, actor.Name, enums.AuditActionDataExport, filename); err != nil {
		return "", err
	}

	s.logg.Info(s.logg.WithActor(ctx, actor.ID.String(), actor.Name),
		fmt.Sprintf("backup exported to %s", path))
	return path, nil
}

func (s *service) buildWorkbook(ctx context.Context, actor *models.User) (*excelize.File, error) {
	f := excelize.NewFile()

	var errs error
	errs = multierr.Append(errs, s.productionSheet(ctx, f, actor))
	errs = multierr.Append(errs, s.inwardSheet(ctx, f))
	errs = multierr.Append(errs, s.salesSheet(ctx, f, actor))
	errs = multierr.Append(errs, s.ledgerSheet(ctx, f))
	errs = multierr.Append(errs, s.adjustmentsSheet(ctx, f))
	errs = multierr.Append(errs, s.usersSheet(ctx, f))
	errs = multierr.Append(errs, s.auditSheet(ctx, f))
	if errs != nil {
		f.Close()
		return nil, fmt.Errorf("building workbook: %w", errs)
	}

	// drop the default sheet excelize starts with
	if err := f.DeleteSheet("Sheet1"); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

func newSheet(f *excelize.File, name string, headers []any) error {
	if _, err := f.NewSheet(name); err != nil {
		return err
	}
	return f.SetSheetRow(name, "A1", &headers)
}

func writeRow(f *excelize.File, sheet string, rowNo int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNo)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

// placeholderIfEmpty keeps empty collections visible in the backup.
func placeholderIfEmpty(f *excelize.File, sheet string, rows int) error {
	if rows > 0 {
		return nil
	}
	return writeRow(f, sheet, 2, []any{"No records"})
}

func stringOrEmpty(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

func (s *service) productionSheet(ctx context.Context, f *excelize.File, actor *models.User) error {
	entries, err := s.productionSvc.List(ctx, actor, 0)
	if err != nil {
		return fmt.Errorf("%s: %w", sheetProduction, err)
	}

	headers := []any{
		"Date", "Shift", "Line", "Supervisor", "Helpers",
		"Consumption (kg)", "Oil (kg)", "Cake (kg)", "Opening Raw Stock (kg)",
		"Start", "End", "Breakdown (min)", "Breakdown Reason",
		"Runtime (min)", "Oil Yield %", "Cake Yield %", "Process Loss %", "Oil/Hour (kg)",
		"Voided", "Recorded By", "Recorded At",
	}
	if err := newSheet(f, sheetProduction, headers); err != nil {
		return err
	}

	for i, entry := range entries {
		row := []any{
			entry.Date, entry.Shift.String(), entry.LineName, entry.SupervisorName, entry.HelperNames,
			entry.ConsumptionKG.String(), entry.OilKG.String(), entry.CakeKG.String(), entry.OpeningRawStockKG.String(),
			entry.StartTime, entry.EndTime, entry.BreakdownMinutes, entry.BreakdownReason,
			entry.RuntimeMinutes, entry.OilYieldPercent, entry.CakeYieldPercent, entry.ProcessLossPercent, entry.OilPerHourKG,
			entry.Voided, entry.ActorName, entry.CreatedAt.Format(timestampLayout),
		}
		if err := writeRow(f, sheetProduction, i+2, row); err != nil {
			return err
		}
	}
	return placeholderIfEmpty(f, sheetProduction, len(entries))
}

func (s *service) inwardSheet(ctx context.Context, f *excelize.File) error {
	entries, err := s.rawSvc.ListInward(ctx, 0)
	if err != nil {
		return fmt.Errorf("%s: %w", sheetInward, err)
	}

	headers := []any{"Supplier", "Vehicle", "Quantity (kg)", "Recorded By", "Recorded At"}
	if err := newSheet(f, sheetInward, headers); err != nil {
		return err
	}

	for i, entry := range entries {
		row := []any{
			entry.Supplier, entry.VehicleNumber, entry.QuantityKG.String(),
			entry.ActorName, entry.CreatedAt.Format(timestampLayout),
		}
		if err := writeRow(f, sheetInward, i+2, row); err != nil {
			return err
		}
	}
	return placeholderIfEmpty(f, sheetInward, len(entries))
}

func (s *service) salesSheet(ctx context.Context, f *excelize.File, actor *models.User) error {
	entries, err := s.salesSvc.List(ctx, actor, 0)
	if err != nil {
		return fmt.Errorf("%s: %w", sheetSales, err)
	}

	headers := []any{
		"Product", "Quantity (kg)", "Buyer", "Buyer Type", "Vehicle",
		"Rate/kg", "Total Value", "Salesman", "Status", "Cancellation Reason",
		"Recorded By", "Recorded At",
	}
	if err := newSheet(f, sheetSales, headers); err != nil {
		return err
	}

	for i, entry := range entries {
		rate, value := "", ""
		if entry.RatePerKG != nil {
			rate = entry.RatePerKG.String()
		}
		if entry.TotalValue != nil {
			value = entry.TotalValue.String()
		}
		reason := ""
		if entry.CancellationReason != nil {
			reason = *entry.CancellationReason
		}
		row := []any{
			entry.Product.String(), entry.QuantityKG.String(), entry.BuyerName, entry.BuyerType.String(), entry.VehicleNumber,
			rate, value, entry.SalesmanName, entry.Status.String(), reason,
			entry.ActorName, entry.CreatedAt.Format(timestampLayout),
		}
		if err := writeRow(f, sheetSales, i+2, row); err != nil {
			return err
		}
	}
	return placeholderIfEmpty(f, sheetSales, len(entries))
}

func (s *service) ledgerSheet(ctx context.Context, f *excelize.File) error {
	entries, err := s.engine.Ledger(ctx, "", 0)
	if err != nil {
		return fmt.Errorf("%s: %w", sheetLedger, err)
	}

	headers := []any{"Product", "Kind", "Reference", "Delta (kg)", "Balance (kg)", "Actor", "At"}
	if err := newSheet(f, sheetLedger, headers); err != nil {
		return err
	}

	for i, entry := range entries {
		row := []any{
			entry.Product.String(), entry.Kind.String(), entry.ReferenceID.String(),
			entry.DeltaKG.String(), entry.BalanceKG.String(),
			entry.ActorName, entry.CreatedAt.Format(timestampLayout),
		}
		if err := writeRow(f, sheetLedger, i+2, row); err != nil {
			return err
		}
	}
	if err := placeholderIfEmpty(f, sheetLedger, len(entries)); err != nil {
		return err
	}

	// footer: replayed balances so a reader can verify the ledger
	// explains the counters
	rowNo := len(entries) + 3
	for _, product := range enums.Products() {
		replayed, err := s.engine.ReplayBalance(ctx, product)
		if err != nil {
			return err
		}
		stock, err := s.engine.FinishedStock(ctx, product)
		if err != nil {
			return err
		}
		label := fmt.Sprintf("%s: replayed %s kg, counter %s kg", product, replayed, stock.BalanceKG)
		if err := writeRow(f, sheetLedger, rowNo, []any{label}); err != nil {
			return err
		}
		rowNo++
	}
	return nil
}

func (s *service) adjustmentsSheet(ctx context.Context, f *excelize.File) error {
	entries, err := s.adjustmentsSvc.List(ctx, 0)
	if err != nil {
		return fmt.Errorf("%s: %w", sheetAdjustments, err)
	}

	headers := []any{"Product", "Delta (kg)", "Reason", "Status", "Requested By", "Actioned By", "Actioned At", "Requested At"}
	if err := newSheet(f, sheetAdjustments, headers); err != nil {
		return err
	}

	for i, entry := range entries {
		actionedBy, actionedAt := "", ""
		if entry.ActionedBy != nil {
			actionedBy = *entry.ActionedBy
		}
		if entry.ActionedAt != nil {
			actionedAt = entry.ActionedAt.Format(timestampLayout)
		}
		row := []any{
			entry.Product.String(), entry.DeltaKG.String(), entry.Reason, entry.Status.String(),
			entry.RequesterName, actionedBy, actionedAt, entry.CreatedAt.Format(timestampLayout),
		}
		if err := writeRow(f, sheetAdjustments, i+2, row); err != nil {
			return err
		}
	}
	return placeholderIfEmpty(f, sheetAdjustments, len(entries))
}

// usersSheet lists accounts without any credential material.
func (s *service) usersSheet(ctx context.Context, f *excelize.File) error {
	users, err := s.identitySvc.ListUsers(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", sheetUsers, err)
	}

	headers := []any{"Name", "Login ID", "Role", "Phone", "Employee Code", "Email", "Disabled", "First Login", "Created At"}
	if err := newSheet(f, sheetUsers, headers); err != nil {
		return err
	}

	for i, user := range users {
		row := []any{
			user.Name, user.LoginID, user.Role.String(),
			stringOrEmpty(user.Phone), stringOrEmpty(user.EmployeeCode), stringOrEmpty(user.Email),
			user.Disabled, user.FirstLogin, user.CreatedAt.Format(timestampLayout),
		}
		if err := writeRow(f, sheetUsers, i+2, row); err != nil {
			return err
		}
	}
	return placeholderIfEmpty(f, sheetUsers, len(users))
}

func (s *service) auditSheet(ctx context.Context, f *excelize.File) error {
	entries, err := s.auditSvc.List(ctx, 0)
	if err != nil {
		return fmt.Errorf("%s: %w", sheetAudit, err)
	}

	headers := []any{"Actor", "Action", "Details", "At"}
	if err := newSheet(f, sheetAudit, headers); err != nil {
		return err
	}

	for i, entry := range entries {
		row := []any{
			entry.ActorName, entry.Action.String(), entry.Details, entry.CreatedAt.Format(timestampLayout),
		}
		if err := writeRow(f, sheetAudit, i+2, row); err != nil {
			return err
		}
	}
	return placeholderIfEmpty(f, sheetAudit, len(entries))
}
