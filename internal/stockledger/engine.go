package stockledger

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/kesarlabs/milltrack-backend/pkg/db"
	"github.com/kesarlabs/milltrack-backend/pkg/db/models"
	"github.com/kesarlabs/milltrack-backend/pkg/enums"
	pkgerrors "github.com/kesarlabs/milltrack-backend/pkg/errors"
	"github.com/kesarlabs/milltrack-backend/pkg/logger"
)

// balancePrecision is the decimal places kept on every counter value.
const balancePrecision = 2

// CommitInput describes one finished-stock mutation.
type CommitInput struct {
	Product     enums.Product
	Delta       decimal.Decimal
	ReferenceID uuid.UUID
	Kind        enums.StockChangeKind
	ActorID     uuid.UUID
	ActorName   string
}

// Engine is the single mutation choke-point for finished stock. Every
// counter change flows through Commit (or CommitInTx under a lock taken
// by Locked), which pairs the counter update with a ledger append in
// one transaction and rejects any change that would drive a counter
// negative.
type Engine struct {
	client *db.Client
	repo   Repository
	logg   *logger.Logger

	locks map[enums.Product]*sync.Mutex
}

// NewEngine wires the ledger engine.
func NewEngine(client *db.Client, repo Repository, logg *logger.Logger) (*Engine, error) {
	if client == nil {
		return nil, fmt.Errorf("db client required")
	}
	if repo == nil {
		return nil, fmt.Errorf("stock ledger repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}

	locks := make(map[enums.Product]*sync.Mutex, len(enums.Products()))
	for _, product := range enums.Products() {
		locks[product] = &sync.Mutex{}
	}

	return &Engine{client: client, repo: repo, logg: logg, locks: locks}, nil
}

// Commit applies one stock change under the product lock.
func (e *Engine) Commit(ctx context.Context, input CommitInput) (*models.LedgerEntry, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	var entry *models.LedgerEntry
	err := e.Locked(func() error {
		return e.client.WithTx(ctx, func(tx *gorm.DB) error {
			var txErr error
			entry, txErr = e.CommitInTx(ctx, tx, input)
			return txErr
		})
	}, input.Product)
	if err != nil {
		return nil, err
	}

	ctx = e.logg.WithProduct(ctx, input.Product.String())
	ctx = e.logg.WithReference(ctx, input.ReferenceID.String())
	e.logg.Info(ctx, fmt.Sprintf("stock %s: %s kg -> balance %s kg",
		input.Kind, input.Delta.String(), entry.BalanceKG.String()))

	return entry, nil
}

// Locked runs fn while holding the locks for the given products,
// acquired in the fixed product order so callers spanning both products
// cannot deadlock each other.
func (e *Engine) Locked(fn func() error, products ...enums.Product) error {
	held := make([]*sync.Mutex, 0, len(products))
	for _, product := range enums.Products() {
		for _, requested := range products {
			if requested == product {
				e.locks[product].Lock()
				held = append(held, e.locks[product])
				break
			}
		}
	}
	defer func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].Unlock()
		}
	}()
	return fn()
}

// CommitInTx applies one stock change inside the caller's transaction.
// The caller must hold the product lock via Locked; production uses
// this to compose raw-stock, oil and cake changes into one commit.
func (e *Engine) CommitInTx(ctx context.Context, tx *gorm.DB, input CommitInput) (*models.LedgerEntry, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	repo := e.repo.WithTx(tx)

	stock, err := repo.GetStock(ctx, input.Product)
	if err != nil {
		return nil, fmt.Errorf("reading %s stock: %w", input.Product, err)
	}

	candidate := stock.BalanceKG.Add(input.Delta).Round(balancePrecision)
	if candidate.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeInsufficientStock,
			fmt.Sprintf("insufficient %s stock", input.Product)).
			WithDetails(map[string]string{
				"available": stock.BalanceKG.String(),
				"requested": input.Delta.Abs().String(),
			})
	}

	stock.BalanceKG = candidate
	if err := repo.SaveStock(ctx, stock); err != nil {
		return nil, fmt.Errorf("updating %s stock: %w", input.Product, err)
	}

	entry := &models.LedgerEntry{
		Product:     input.Product,
		Kind:        input.Kind,
		ReferenceID: input.ReferenceID,
		DeltaKG:     input.Delta,
		BalanceKG:   candidate,
		ActorID:     input.ActorID,
		ActorName:   input.ActorName,
	}
	if err := repo.CreateEntry(ctx, entry); err != nil {
		return nil, fmt.Errorf("appending ledger entry: %w", err)
	}

	return entry, nil
}

func validateInput(input CommitInput) error {
	if !input.Product.IsValid() {
		return fmt.Errorf("invalid product %q", input.Product)
	}
	if !input.Kind.IsValid() {
		return fmt.Errorf("invalid stock change kind %q", input.Kind)
	}
	if input.Delta.IsZero() {
		return fmt.Errorf("delta cannot be zero")
	}
	if input.ReferenceID == uuid.Nil {
		return fmt.Errorf("reference id is required")
	}
	if input.ActorID == uuid.Nil {
		return fmt.Errorf("actor id is required")
	}
	if input.ActorName == "" {
		return fmt.Errorf("actor name is required")
	}
	return nil
}

// FinishedStock returns the current counter for a product.
func (e *Engine) FinishedStock(ctx context.Context, product enums.Product) (*models.FinishedStock, error) {
	if !product.IsValid() {
		return nil, fmt.Errorf("invalid product %q", product)
	}
	return e.repo.GetStock(ctx, product)
}

// AllStock returns every finished-stock counter.
func (e *Engine) AllStock(ctx context.Context) ([]models.FinishedStock, error) {
	return e.repo.AllStock(ctx)
}

// Ledger returns ledger entries newest-first. An empty product means
// all products; limit <= 0 means no limit.
func (e *Engine) Ledger(ctx context.Context, product enums.Product, limit int) ([]models.LedgerEntry, error) {
	if product != "" && !product.IsValid() {
		return nil, fmt.Errorf("invalid product %q", product)
	}
	return e.repo.ListEntries(ctx, product, limit)
}

// ReplayBalance recomputes a product's balance by replaying its ledger
// from zero in commit order. The result must equal the stored counter;
// callers use the pair to verify the ledger explains the stock.
func (e *Engine) ReplayBalance(ctx context.Context, product enums.Product) (decimal.Decimal, error) {
	if !product.IsValid() {
		return decimal.Zero, fmt.Errorf("invalid product %q", product)
	}

	entries, err := e.repo.ListEntriesChronological(ctx, product)
	if err != nil {
		return decimal.Zero, err
	}

	balance := decimal.Zero
	for _, entry := range entries {
		balance = balance.Add(entry.DeltaKG).Round(balancePrecision)
	}
	return balance, nil
}
