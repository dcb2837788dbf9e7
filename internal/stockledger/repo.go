package stockledger

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kesarlabs/milltrack-backend/pkg/db/models"
	"github.com/kesarlabs/milltrack-backend/pkg/enums"
)

// Repository manages persistence for finished-stock counters and the
// ledger that explains them.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	GetStock(ctx context.Context, product enums.Product) (*models.FinishedStock, error)
	SaveStock(ctx context.Context, stock *models.FinishedStock) error
	CreateEntry(ctx context.Context, entry *models.LedgerEntry) error
	ListEntries(ctx context.Context, product enums.Product, limit int) ([]models.LedgerEntry, error)
	ListEntriesChronological(ctx context.Context, product enums.Product) ([]models.LedgerEntry, error)
	AllStock(ctx context.Context) ([]models.FinishedStock, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a stock ledger repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// GetStock returns the counter row for a product, creating a zero row
// the first time the product is touched.
func (r *repository) GetStock(ctx context.Context, product enums.Product) (*models.FinishedStock, error) {
	stock := models.FinishedStock{Product: product, BalanceKG: decimal.Zero}
	if err := r.db.WithContext(ctx).
		Where(models.FinishedStock{Product: product}).
		Attrs(models.FinishedStock{BalanceKG: decimal.Zero}).
		FirstOrCreate(&stock).Error; err != nil {
		return nil, err
	}
	return &stock, nil
}

func (r *repository) SaveStock(ctx context.Context, stock *models.FinishedStock) error {
	return r.db.WithContext(ctx).
		Model(&models.FinishedStock{}).
		Where("product = ?", stock.Product).
		Update("balance_kg", stock.BalanceKG).Error
}

func (r *repository) CreateEntry(ctx context.Context, entry *models.LedgerEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// ListEntries returns ledger rows newest-first for display.
func (r *repository) ListEntries(ctx context.Context, product enums.Product, limit int) ([]models.LedgerEntry, error) {
	var entries []models.LedgerEntry
	query := r.db.WithContext(ctx).
		Order("created_at DESC, id DESC")
	if product != "" {
		query = query.Where("product = ?", product)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// ListEntriesChronological returns every row for a product in commit
// order, the order the reconstruction replay requires.
func (r *repository) ListEntriesChronological(ctx context.Context, product enums.Product) ([]models.LedgerEntry, error) {
	var entries []models.LedgerEntry
	if err := r.db.WithContext(ctx).
		Where("product = ?", product).
		Order("created_at ASC, id ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repository) AllStock(ctx context.Context) ([]models.FinishedStock, error) {
	var stocks []models.FinishedStock
	if err := r.db.WithContext(ctx).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "product"}}).
		Find(&stocks).Error; err != nil {
		return nil, err
	}
	return stocks, nil
}
