package production

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kesarlabs/milltrack-backend/pkg/db/models"
)

// Repository manages persistence for production entries.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, entry *models.ProductionEntry) error
	List(ctx context.Context, actorID uuid.UUID, limit int) ([]models.ProductionEntry, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a production repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, entry *models.ProductionEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// List returns entries newest-first. A nil actor id means no actor
// filter (Owner view).
func (r *repository) List(ctx context.Context, actorID uuid.UUID, limit int) ([]models.ProductionEntry, error) {
	var entries []models.ProductionEntry
	query := r.db.WithContext(ctx).
		Order("created_at DESC, id DESC")
	if actorID != uuid.Nil {
		query = query.Where("actor_id = ?", actorID)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
