package rawstock

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/kesarlabs/milltrack-backend/internal/audit"
	"github.com/kesarlabs/milltrack-backend/pkg/db"
	"github.com/kesarlabs/milltrack-backend/pkg/db/models"
	"github.com/kesarlabs/milltrack-backend/pkg/enums"
	pkgerrors "github.com/kesarlabs/milltrack-backend/pkg/errors"
	"github.com/kesarlabs/milltrack-backend/pkg/logger"
	"github.com/kesarlabs/milltrack-backend/pkg/validate"
)

// RecordInwardInput captures one raw seed delivery.
type RecordInwardInput struct {
	Supplier      string          `json:"supplier" validate:"required"`
	VehicleNumber string          `json:"vehicle_number"`
	QuantityKG    decimal.Decimal `json:"quantity_kg"`
}

// Service owns the raw seed counter. Inward intake increments it;
// production consumes from it inside the production transaction.
type Service interface {
	RecordInward(ctx context.Context, actor *models.User, input RecordInwardInput) (*models.InwardEntry, error)
	ConsumeInTx(ctx context.Context, tx *gorm.DB, quantity decimal.Decimal) (*models.RawStock, error)
	Locked(fn func() error) error
	Current(ctx context.Context) (*models.RawStock, error)
	ListInward(ctx context.Context, limit int) ([]models.InwardEntry, error)
}

type service struct {
	client   *db.Client
	repo     Repository
	auditSvc audit.Service
	logg     *logger.Logger

	mu sync.Mutex
}

// NewService wires the raw stock service.
func NewService(client *db.Client, repo Repository, auditSvc audit.Service, logg *logger.Logger) (Service, error) {
	if client == nil {
		return nil, fmt.Errorf("db client required")
	}
	if repo == nil {
		return nil, fmt.Errorf("raw stock repository required")
	}
	if auditSvc == nil {
		return nil, fmt.Errorf("audit service required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{client: client, repo: repo, auditSvc: auditSvc, logg: logg}, nil
}

func (s *service) RecordInward(ctx context.Context, actor *models.User, input RecordInwardInput) (*models.InwardEntry, error) {
	if actor == nil {
		return nil, fmt.Errorf("actor is required")
	}
	if err := validate.Struct(input); err != nil {
		return nil, err
	}
	if !input.QuantityKG.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "inward quantity must be positive")
	}

	entry := &models.InwardEntry{
		Supplier:      input.Supplier,
		VehicleNumber: input.VehicleNumber,
		QuantityKG:    input.QuantityKG,
		ActorID:       actor.ID,
		ActorName:     actor.Name,
	}

	err := s.Locked(func() error {
		return s.client.WithTx(ctx, func(tx *gorm.DB) error {
			repo := s.repo.WithTx(tx)

			counter, err := repo.GetCounter(ctx)
			if err != nil {
				return fmt.Errorf("reading raw stock: %w", err)
			}
			counter.QuantityKG = counter.QuantityKG.Add(input.QuantityKG)
			if err := repo.SaveCounter(ctx, counter); err != nil {
				return fmt.Errorf("updating raw stock: %w", err)
			}

			if err := repo.CreateInward(ctx, entry); err != nil {
				return fmt.Errorf("recording inward entry: %w", err)
			}

			details := fmt.Sprintf("inward %s kg from %s", input.QuantityKG.String(), input.Supplier)
			return s.auditSvc.RecordInTx(ctx, tx, actor.ID, actor.Name, enums.AuditActionEntryCreate, details)
		})
	})
	if err != nil {
		return nil, err
	}

	ctx = s.logg.WithActor(ctx, actor.ID.String(), actor.Name)
	s.logg.Info(ctx, fmt.Sprintf("raw inward: %s kg from %s", input.QuantityKG.String(), input.Supplier))

	return entry, nil
}

// ConsumeInTx decrements the raw counter inside the caller's
// transaction. The caller must hold the raw lock via Locked.
func (s *service) ConsumeInTx(ctx context.Context, tx *gorm.DB, quantity decimal.Decimal) (*models.RawStock, error) {
	if !quantity.IsPositive() {
		return nil, fmt.Errorf("consumption must be positive")
	}

	repo := s.repo.WithTx(tx)
	counter, err := repo.GetCounter(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading raw stock: %w", err)
	}

	remaining := counter.QuantityKG.Sub(quantity)
	if remaining.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeInsufficientStock, "insufficient raw stock").
			WithDetails(map[string]string{
				"available": counter.QuantityKG.String(),
				"requested": quantity.String(),
			})
	}

	opening := counter.QuantityKG
	counter.QuantityKG = remaining
	if err := repo.SaveCounter(ctx, counter); err != nil {
		return nil, fmt.Errorf("updating raw stock: %w", err)
	}

	// callers want the opening balance for the production snapshot
	return &models.RawStock{ID: counter.ID, QuantityKG: opening, UpdatedAt: counter.UpdatedAt}, nil
}

// Locked serializes raw counter mutations. Production acquires this
// before the finished-stock locks.
func (s *service) Locked(fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn()
}

func (s *service) Current(ctx context.Context) (*models.RawStock, error) {
	return s.repo.GetCounter(ctx)
}

func (s *service) ListInward(ctx context.Context, limit int) ([]models.InwardEntry, error) {
	return s.repo.ListInward(ctx, limit)
}
