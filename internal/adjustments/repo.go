package adjustments

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kesarlabs/milltrack-backend/pkg/db/models"
)

// Repository manages persistence for inventory adjustment requests.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, adjustment *models.InventoryAdjustment) error
	Save(ctx context.Context, adjustment *models.InventoryAdjustment) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.InventoryAdjustment, error)
	List(ctx context.Context, limit int) ([]models.InventoryAdjustment, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an adjustments repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, adjustment *models.InventoryAdjustment) error {
	return r.db.WithContext(ctx).Create(adjustment).Error
}

func (r *repository) Save(ctx context.Context, adjustment *models.InventoryAdjustment) error {
	return r.db.WithContext(ctx).Save(adjustment).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.InventoryAdjustment, error) {
	var adjustment models.InventoryAdjustment
	if err := r.db.WithContext(ctx).First(&adjustment, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &adjustment, nil
}

func (r *repository) List(ctx context.Context, limit int) ([]models.InventoryAdjustment, error) {
	var adjustments []models.InventoryAdjustment
	query := r.db.WithContext(ctx).
		Order("created_at DESC, id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&adjustments).Error; err != nil {
		return nil, err
	}
	return adjustments, nil
}
