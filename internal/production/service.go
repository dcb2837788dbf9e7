package production

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/kesarlabs/milltrack-backend/internal/alerts"
	"github.com/kesarlabs/milltrack-backend/internal/audit"
	"github.com/kesarlabs/milltrack-backend/internal/rawstock"
	"github.com/kesarlabs/milltrack-backend/internal/stockledger"
	"github.com/kesarlabs/milltrack-backend/pkg/db"
	"github.com/kesarlabs/milltrack-backend/pkg/db/models"
	"github.com/kesarlabs/milltrack-backend/pkg/enums"
	pkgerrors "github.com/kesarlabs/milltrack-backend/pkg/errors"
	"github.com/kesarlabs/milltrack-backend/pkg/logger"
	"github.com/kesarlabs/milltrack-backend/pkg/validate"
)

// RecordInput is one shift submission.
type RecordInput struct {
	Date             string          `json:"date" validate:"required"`
	Shift            enums.Shift     `json:"shift"`
	LineName         string          `json:"line_name"`
	SupervisorName   string          `json:"supervisor_name" validate:"required"`
	HelperNames      string          `json:"helper_names"`
	ConsumptionKG    decimal.Decimal `json:"consumption_kg"`
	OilKG            decimal.Decimal `json:"oil_kg"`
	CakeKG           decimal.Decimal `json:"cake_kg"`
	StartTime        string          `json:"start_time" validate:"required"`
	EndTime          string          `json:"end_time" validate:"required"`
	BreakdownMinutes int             `json:"breakdown_minutes" validate:"min=0"`
	BreakdownReason  string          `json:"breakdown_reason"`
}

// RecordResult is the stored entry plus any advisories it tripped.
type RecordResult struct {
	Entry  *models.ProductionEntry
	Alerts []alerts.Alert
}

// Service records crushing shifts. One Record call moves raw stock and
// both finished counters in a single transaction.
type Service interface {
	Record(ctx context.Context, actor *models.User, input RecordInput) (*RecordResult, error)
	List(ctx context.Context, actor *models.User, limit int) ([]models.ProductionEntry, error)
}

type service struct {
	client    *db.Client
	repo      Repository
	rawSvc    rawstock.Service
	engine    *stockledger.Engine
	auditSvc  audit.Service
	evaluator *alerts.Evaluator
	logg      *logger.Logger
}

// NewService wires the production service.
func NewService(
	client *db.Client,
	repo Repository,
	rawSvc rawstock.Service,
	engine *stockledger.Engine,
	auditSvc audit.Service,
	evaluator *alerts.Evaluator,
	logg *logger.Logger,
) (Service, error) {
	if client == nil {
		return nil, fmt.Errorf("db client required")
	}
	if repo == nil {
		return nil, fmt.Errorf("production repository required")
	}
	if rawSvc == nil {
		return nil, fmt.Errorf("raw stock service required")
	}
	if engine == nil {
		return nil, fmt.Errorf("stock ledger engine required")
	}
	if auditSvc == nil {
		return nil, fmt.Errorf("audit service required")
	}
	if evaluator == nil {
		return nil, fmt.Errorf("alert evaluator required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		client:    client,
		repo:      repo,
		rawSvc:    rawSvc,
		engine:    engine,
		auditSvc:  auditSvc,
		evaluator: evaluator,
		logg:      logg,
	}, nil
}

func (s *service) Record(ctx context.Context, actor *models.User, input RecordInput) (*RecordResult, error) {
	if actor == nil {
		return nil, fmt.Errorf("actor is required")
	}
	if err := validate.Struct(input); err != nil {
		return nil, err
	}
	if !input.Shift.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid shift %q", input.Shift))
	}
	if !input.ConsumptionKG.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "consumption must be positive")
	}
	if input.OilKG.IsNegative() || input.CakeKG.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "outputs cannot be negative")
	}

	runtime, err := runtimeMinutes(input.StartTime, input.EndTime, input.BreakdownMinutes)
	if err != nil {
		return nil, err
	}
	metrics := deriveMetrics(input.ConsumptionKG, input.OilKG, input.CakeKG, runtime)

	entry := &models.ProductionEntry{
		ID:                 uuid.New(),
		Date:               input.Date,
		Shift:              input.Shift,
		LineName:           input.LineName,
		SupervisorName:     input.SupervisorName,
		HelperNames:        input.HelperNames,
		ConsumptionKG:      input.ConsumptionKG,
		OilKG:              input.OilKG,
		CakeKG:             input.CakeKG,
		StartTime:          input.StartTime,
		EndTime:            input.EndTime,
		BreakdownMinutes:   input.BreakdownMinutes,
		BreakdownReason:    input.BreakdownReason,
		RuntimeMinutes:     metrics.RuntimeMinutes,
		OilYieldPercent:    metrics.OilYieldPercent,
		CakeYieldPercent:   metrics.CakeYieldPercent,
		ProcessLossPercent: metrics.ProcessLossPercent,
		OilPerHourKG:       metrics.OilPerHourKG,
		ActorID:            actor.ID,
		ActorName:          actor.Name,
	}

	// raw lock first, then the finished-stock locks in product order
	err = s.rawSvc.Locked(func() error {
		return s.engine.Locked(func() error {
			return s.client.WithTx(ctx, func(tx *gorm.DB) error {
				opening, err := s.rawSvc.ConsumeInTx(ctx, tx, input.ConsumptionKG)
				if err != nil {
					return err
				}
				entry.OpeningRawStockKG = opening.QuantityKG

				for _, commit := range []struct {
					product enums.Product
					output  decimal.Decimal
				}{
					{enums.ProductOil, input.OilKG},
					{enums.ProductCake, input.CakeKG},
				} {
					if commit.output.IsZero() {
						continue
					}
					if _, err := s.engine.CommitInTx(ctx, tx, stockledger.CommitInput{
						Product:     commit.product,
						Delta:       commit.output,
						ReferenceID: entry.ID,
						Kind:        enums.StockChangeKindProduction,
						ActorID:     actor.ID,
						ActorName:   actor.Name,
					}); err != nil {
						return err
					}
				}

				if err := s.repo.WithTx(tx).Create(ctx, entry); err != nil {
					return fmt.Errorf("recording production entry: %w", err)
				}

				details := fmt.Sprintf("%s %s shift: %s kg in, %s kg oil, %s kg cake",
					input.Date, input.Shift, input.ConsumptionKG, input.OilKG, input.CakeKG)
				return s.auditSvc.RecordInTx(ctx, tx, actor.ID, actor.Name, enums.AuditActionEntryCreate, details)
			})
		}, enums.ProductOil, enums.ProductCake)
	})
	if err != nil {
		return nil, err
	}

	tripped := s.evaluator.Evaluate(alerts.Metrics{
		OilYieldPercent:    metrics.OilYieldPercent,
		ProcessLossPercent: metrics.ProcessLossPercent,
		BreakdownMinutes:   input.BreakdownMinutes,
		RuntimeMinutes:     metrics.RuntimeMinutes,
	})

	logCtx := s.logg.WithActor(ctx, actor.ID.String(), actor.Name)
	logCtx = s.logg.WithReference(logCtx, entry.ID.String())
	s.logg.Info(logCtx, fmt.Sprintf("production recorded: yield %.2f%%, loss %.2f%%",
		metrics.OilYieldPercent, metrics.ProcessLossPercent))
	for _, alert := range tripped {
		s.logg.Warn(s.logg.WithField(logCtx, "alert", string(alert.Kind)), alert.Message)
	}

	return &RecordResult{Entry: entry, Alerts: tripped}, nil
}

// List returns entries newest-first. Supervisors see only their own.
func (s *service) List(ctx context.Context, actor *models.User, limit int) ([]models.ProductionEntry, error) {
	if actor == nil {
		return nil, fmt.Errorf("actor is required")
	}
	actorFilter := uuid.Nil
	if actor.Role != enums.UserRoleOwner {
		actorFilter = actor.ID
	}
	return s.repo.List(ctx, actorFilter, limit)
}
