package sales

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

// CreateInput is one dispatch.
type CreateInput struct {
	Product       enums.Product   `json:"product"`
	QuantityKG    decimal.Decimal `json:"quantity_kg"`
	BuyerName     string          `json:"buyer_name" validate:"required"`
	BuyerType     enums.BuyerType `json:"buyer_type"`
	VehicleNumber string          `json:"vehicle_number"`
	RatePerKG     decimal.Decimal `json:"rate_per_kg"`
	SalesmanName  string          `json:"salesman_name"`
}

// Service records dispatches and cancellations against the finished
// stock ledger.
type Service interface {
	Create(ctx context.Context, actor *models.User, input CreateInput) (*models.SalesEntry, error)
	Cancel(ctx context.Context, actor *models.User, saleID uuid.UUID, reason string) (*models.SalesEntry, error)
	List(ctx context.Context, actor *models.User, limit int) ([]models.SalesEntry, error)
}

type service struct {
	client   *db.Client
	repo     Repository
	engine   *stockledger.Engine
	auditSvc audit.Service
	logg     *logger.Logger
}

// NewService wires the sales service.
func NewService(client *db.Client, repo Repository, engine *stockledger.Engine, auditSvc audit.Service, logg *logger.Logger) (Service, error) {
	if client == nil {
		return nil, fmt.Errorf("db client required")
	}
	if repo == nil {
		return nil, fmt.Errorf("sales repository required")
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

// Create records a confirmed dispatch. The ledger commit enforces the
// quantity ceiling atomically; price is persisted only when the actor
// is the Owner.
func (s *service) Create(ctx context.Context, actor *models.User, input CreateInput) (*models.SalesEntry, error) {
	if actor == nil {
		return nil, fmt.Errorf("actor is required")
	}
	if err := validate.Struct(input); err != nil {
		return nil, err
	}
	if !input.Product.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid product %q", input.Product))
	}
	if !input.BuyerType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid buyer type %q", input.BuyerType))
	}
	if !input.QuantityKG.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sale quantity must be positive")
	}

	salesman := input.SalesmanName
	if salesman == "" {
		salesman = actor.Name
	}

	entry := &models.SalesEntry{
		ID:            uuid.New(),
		Product:       input.Product,
		QuantityKG:    input.QuantityKG,
		BuyerName:     input.BuyerName,
		BuyerType:     input.BuyerType,
		VehicleNumber: input.VehicleNumber,
		SalesmanName:  salesman,
		Status:        enums.SaleStatusConfirmed,
		ActorID:       actor.ID,
		ActorName:     actor.Name,
	}

	// only Owner-originated sales carry money figures
	if actor.Role == enums.UserRoleOwner && input.RatePerKG.IsPositive() {
		rate := input.RatePerKG
		value := input.QuantityKG.Mul(rate).Round(2)
		entry.RatePerKG = &rate
		entry.TotalValue = &value
	}

	err := s.engine.Locked(func() error {
		return s.client.WithTx(ctx, func(tx *gorm.DB) error {
			if _, err := s.engine.CommitInTx(ctx, tx, stockledger.CommitInput{
				Product:     input.Product,
				Delta:       input.QuantityKG.Neg(),
				ReferenceID: entry.ID,
				Kind:        enums.StockChangeKindSale,
				ActorID:     actor.ID,
				ActorName:   actor.Name,
			}); err != nil {
				return err
			}

			if err := s.repo.WithTx(tx).Create(ctx, entry); err != nil {
				return fmt.Errorf("recording sale: %w", err)
			}

			details := fmt.Sprintf("%s kg %s to %s", input.QuantityKG, input.Product, input.BuyerName)
			return s.auditSvc.RecordInTx(ctx, tx, actor.ID, actor.Name, enums.AuditActionSaleCreate, details)
		})
	}, input.Product)
	if err != nil {
		return nil, err
	}

	logCtx := s.logg.WithActor(ctx, actor.ID.String(), actor.Name)
	s.logg.Info(s.logg.WithReference(logCtx, entry.ID.String()),
		fmt.Sprintf("sale: %s kg %s to %s", input.QuantityKG, input.Product, input.BuyerName))

	return entry, nil
}

// Cancel restores the sold quantity with a compensating ledger entry.
// Owner-only; a sale cancels at most once.
func (s *service) Cancel(ctx context.Context, actor *models.User, saleID uuid.UUID, reason string) (*models.SalesEntry, error) {
	if actor == nil {
		return nil, fmt.Errorf("actor is required")
	}
	if actor.Role != enums.UserRoleOwner {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "owner role required")
	}

	entry, err := s.repo.FindByID(ctx, saleID)
	if err != nil {
		return nil, fmt.Errorf("looking up sale: %w", err)
	}
	if entry == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "sale not found")
	}
	if entry.Status == enums.SaleStatusCancelled {
		return nil, pkgerrors.New(pkgerrors.CodeAlreadyCancelled, "sale is already cancelled")
	}

	now := time.Now()
	entry.Status = enums.SaleStatusCancelled
	entry.CancellationReason = &reason
	cancelledBy := actor.Name
	entry.CancelledBy = &cancelledBy
	entry.CancelledAt = &now

	err = s.engine.Locked(func() error {
		return s.client.WithTx(ctx, func(tx *gorm.DB) error {
			if _, err := s.engine.CommitInTx(ctx, tx, stockledger.CommitInput{
				Product:     entry.Product,
				Delta:       entry.QuantityKG,
				ReferenceID: entry.ID,
				Kind:        enums.StockChangeKindCancellation,
				ActorID:     actor.ID,
				ActorName:   actor.Name,
			}); err != nil {
				return err
			}

			if err := s.repo.WithTx(tx).Save(ctx, entry); err != nil {
				return fmt.Errorf("saving sale: %w", err)
			}

			details := fmt.Sprintf("cancelled %s kg %s: %s", entry.QuantityKG, entry.Product, reason)
			return s.auditSvc.RecordInTx(ctx, tx, actor.ID, actor.Name, enums.AuditActionSaleCancel, details)
		})
	}, entry.Product)
	if err != nil {
		return nil, err
	}

	logCtx := s.logg.WithActor(ctx, actor.ID.String(), actor.Name)
	s.logg.Info(s.logg.WithReference(logCtx, entry.ID.String()), "sale cancelled")

	return entry, nil
}

// List returns sales newest-first. The Owner sees everything;
// Supervisors see only their own entries with money figures stripped.
func (s *service) List(ctx context.Context, actor *models.User, limit int) ([]models.SalesEntry, error) {
	if actor == nil {
		return nil, fmt.Errorf("actor is required")
	}

	if actor.Role == enums.UserRoleOwner {
		return s.repo.List(ctx, uuid.Nil, limit)
	}

	entries, err := s.repo.List(ctx, actor.ID, limit)
	if err != nil {
		return nil, err
	}
	for i := range entries {
		entries[i].RatePerKG = nil
		entries[i].TotalValue = nil
	}
	return entries, nil
}
