package rawstock

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/kesarlabs/milltrack-backend/pkg/db/models"
)

// Repository manages persistence for the raw seed counter and the
// inward intake entries behind it.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	GetCounter(ctx context.Context) (*models.RawStock, error)
	SaveCounter(ctx context.Context, counter *models.RawStock) error
	CreateInward(ctx context.Context, entry *models.InwardEntry) error
	ListInward(ctx context.Context, limit int) ([]models.InwardEntry, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a raw stock repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// GetCounter returns the single raw-stock row, creating a zero row on
// first use.
func (r *repository) GetCounter(ctx context.Context) (*models.RawStock, error) {
	counter := models.RawStock{ID: models.RawStockRowID, QuantityKG: decimal.Zero}
	if err := r.db.WithContext(ctx).
		Where(models.RawStock{ID: models.RawStockRowID}).
		Attrs(models.RawStock{QuantityKG: decimal.Zero}).
		FirstOrCreate(&counter).Error; err != nil {
		return nil, err
	}
	return &counter, nil
}

func (r *repository) SaveCounter(ctx context.Context, counter *models.RawStock) error {
	return r.db.WithContext(ctx).
		Model(&models.RawStock{}).
		Where("id = ?", models.RawStockRowID).
		Update("quantity_kg", counter.QuantityKG).Error
}

func (r *repository) CreateInward(ctx context.Context, entry *models.InwardEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) ListInward(ctx context.Context, limit int) ([]models.InwardEntry, error) {
	var entries []models.InwardEntry
	query := r.db.WithContext(ctx).
		Order("created_at DESC, id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
