package sales

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kesarlabs/milltrack-backend/pkg/db/models"
)

// Repository manages persistence for sales entries.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, entry *models.SalesEntry) error
	Save(ctx context.Context, entry *models.SalesEntry) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.SalesEntry, error)
	List(ctx context.Context, actorID uuid.UUID, limit int) ([]models.SalesEntry, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a sales repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, entry *models.SalesEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) Save(ctx context.Context, entry *models.SalesEntry) error {
	return r.db.WithContext(ctx).Save(entry).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.SalesEntry, error) {
	var entry models.SalesEntry
	if err := r.db.WithContext(ctx).First(&entry, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

// List returns entries newest-first. A nil actor id means no actor
// filter (Owner view).
func (r *repository) List(ctx context.Context, actorID uuid.UUID, limit int) ([]models.SalesEntry, error) {
	var entries []models.SalesEntry
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
