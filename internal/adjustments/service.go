package adjustments

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/kesarlabs/milltrack-backend/internal/audit"
	"github.com/kesarlabs/milltrack-backend/internal/stockledger"
	"github.com/kesarlabs/milltrack-backend/pkg/db"
	"github.com/kesarlabs/milltrack-backend/pkg/db/models"
	"github.com/kesarlabs/milltrack-backend/pkg/enums"
	pkgerrors "github.com/kesarlabs/milltrack-backend/pkg/errors"
	"github.com/kesarlabs/milltrack-backend/pkg/logger"
	"github.com/kesarlabs/milltrack-backend/pkg/validate"
)

// RequestInput is one correction request.
type RequestInput struct {
	Product enums.Product   `json:"product"`
	DeltaKG decimal.Decimal `json:"delta_kg"`
	Reason  string          `json:"reason" validate:"required"`
}

// Service runs the request/approve/reject state machine. Stock moves
// only on approval, through the ledger engine.
type Service interface {
	Request(ctx context.Context, actor *models.User, input RequestInput) (*models.InventoryAdjustment, error)
	Approve(ctx context.Context, actor *models.User, id uuid.UUID) (*models.InventoryAdjustment, error)
	Reject(ctx context.Context, actor *models.User, id uuid.UUID) (*models.InventoryAdjustment, error)
	List(ctx context.Context, limit int) ([]models.InventoryAdjustment, error)
}

type service struct {
	client   *db.Client
	repo     Repository
	engine   *stockledger.Engine
	auditSvc audit.Service
	logg     *logger.Logger
}

// NewService wires the adjustments service.
func NewService(client *db.Client, repo Repository, engine *stockledger.Engine, auditSvc audit.Service, logg *logger.Logger) (Service, error) {
	if client == nil {
		return nil, fmt.Errorf("db client required")
	}
	if repo == nil {
		return nil, fmt.Errorf("adjustments repository required")
	}
	if engine == nil {
		return nil, fmt.Errorf("stock ledger engine required")
	}
	if auditSvc == nil {
		return nil, fmt.Errorf("audit service required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{client: client, repo: repo, engine: engine, auditSvc: auditSvc, logg: logg}, nil
}

// Request files a PENDING correction. Any authenticated user may file;
// no stock moves yet.
func (s *service) Request(ctx context.Context, actor *models.User, input RequestInput) (*models.InventoryAdjustment, error) {
	if actor == nil {
		return nil, fmt.Errorf("actor is required")
	}
	if err := validate.Struct(input); err != nil {
		return nil, err
	}
	if !input.Product.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid product %q", input.Product))
	}
	if input.DeltaKG.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "adjustment delta cannot be zero")
	}

	adjustment := &models.InventoryAdjustment{
		Product:       input.Product,
		DeltaKG:       input.DeltaKG,
		Reason:        input.Reason,
		Status:        enums.AdjustmentStatusPending,
		RequesterID:   actor.ID,
		RequesterName: actor.Name,
	}

	err := s.client.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, adjustment); err != nil {
			return fmt.Errorf("creating adjustment: %w", err)
		}
		details := fmt.Sprintf("%s %s kg: %s", input.Product, input.DeltaKG, input.Reason)
		return s.auditSvc.RecordInTx(ctx, tx, actor.ID, actor.Name, enums.AuditActionAdjustmentRequest, details)
	})
	if err != nil {
		return nil, err
	}

	return adjustment, nil
}

// Approve commits the requested delta. If the ledger rejects it the
// request stays PENDING and the caller sees the failure.
func (s *service) Approve(ctx context.Context, actor *models.User, id uuid.UUID) (*models.InventoryAdjustment, error) {
	adjustment, err := s.takePending(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	actionedBy := actor.Name
	adjustment.Status = enums.AdjustmentStatusApproved
	adjustment.ActionedByID = &actor.ID
	adjustment.ActionedBy = &actionedBy
	adjustment.ActionedAt = &now

	err = s.engine.Locked(func() error {
		return s.client.WithTx(ctx, func(tx *gorm.DB) error {
			if _, err := s.engine.CommitInTx(ctx, tx, stockledger.CommitInput{
				Product:     adjustment.Product,
				Delta:       adjustment.DeltaKG,
				ReferenceID: adjustment.ID,
				Kind:        enums.StockChangeKindAdjustment,
				ActorID:     actor.ID,
				ActorName:   actor.Name,
			}); err != nil {
				return err
			}

			if err := s.repo.WithTx(tx).Save(ctx, adjustment); err != nil {
				return fmt.Errorf("saving adjustment: %w", err)
			}

			details := fmt.Sprintf("approved %s %s kg", adjustment.Product, adjustment.DeltaKG)
			return s.auditSvc.RecordInTx(ctx, tx, actor.ID, actor.Name, enums.AuditActionAdjustmentAction, details)
		})
	}, adjustment.Product)
	if err != nil {
		// the rolled-back request is still PENDING in the store
		return nil, err
	}

	logCtx := s.logg.WithActor(ctx, actor.ID.String(), actor.Name)
	s.logg.Info(s.logg.WithReference(logCtx, adjustment.ID.String()), "adjustment approved")

	return adjustment, nil
}

// Reject closes the request without touching stock.
func (s *service) Reject(ctx context.Context, actor *models.User, id uuid.UUID) (*models.InventoryAdjustment, error) {
	adjustment, err := s.takePending(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	actionedBy := actor.Name
	adjustment.Status = enums.AdjustmentStatusRejected
	adjustment.ActionedByID = &actor.ID
	adjustment.ActionedBy = &actionedBy
	adjustment.ActionedAt = &now

	err = s.client.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Save(ctx, adjustment); err != nil {
			return fmt.Errorf("saving adjustment: %w", err)
		}
		details := fmt.Sprintf("rejected %s %s kg", adjustment.Product, adjustment.DeltaKG)
		return s.auditSvc.RecordInTx(ctx, tx, actor.ID, actor.Name, enums.AuditActionAdjustmentAction, details)
	})
	if err != nil {
		return nil, err
	}

	return adjustment, nil
}

func (s *service) takePending(ctx context.Context, actor *models.User, id uuid.UUID) (*models.InventoryAdjustment, error) {
	if actor == nil {
		return nil, fmt.Errorf("actor is required")
	}
	if actor.Role != enums.UserRoleOwner {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "owner role required")
	}

	adjustment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("looking up adjustment: %w", err)
	}
	if adjustment == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "adjustment not found")
	}
	if adjustment.Status.IsTerminal() {
		return nil, pkgerrors.New(pkgerrors.CodeAlreadyProcessed,
			fmt.Sprintf("adjustment is already %s", adjustment.Status))
	}
	return adjustment, nil
}

func (s *service) List(ctx context.Context, limit int) ([]models.InventoryAdjustment, error) {
	return s.repo.List(ctx, limit)
}
