package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Kamey12/Apex-Inventory-System/internal/models"
	"github.com/Kamey12/Apex-Inventory-System/internal/repositories"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const trendDays = 7

// EventPublisher receives a StockEvent after every sale and restock.
type EventPublisher interface {
	PublishJSON(v interface{}) error
}

// ProductInput carries the fields of a new product.
type ProductInput struct {
	Name              string
	SKU               string
	Category          string
	Price             decimal.Decimal
	Quantity          int
	LowStockThreshold *int
}

// ProductPatch is a partial update; nil fields are left untouched.
type ProductPatch struct {
	Name              *string
	SKU               *string
	Category          *string
	Price             *decimal.Decimal
	Quantity          *int
	LowStockThreshold *int
}

// SaleItem is one line of a bulk sale.
type SaleItem struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// SaleResult describes the product state after a sale.
type SaleResult struct {
	Product   *models.Product
	Remaining int
	LowStock  bool
}

// BulkSellError reports the item that stopped a bulk sale. Items before it stay committed.
type BulkSellError struct {
	Processed int
	Name      string
	Err       error
}

func (e *BulkSellError) Error() string {
	if errors.Is(e.Err, ErrInvalidQuantity) {
		return fmt.Sprintf("Invalid quantity for %s", e.Name)
	}
	return fmt.Sprintf("Insufficient stock for %s", e.Name)
}

func (e *BulkSellError) Unwrap() error { return e.Err }

// TrendPoint is one day of sales revenue.
type TrendPoint struct {
	Name    string          `json:"name"`
	Revenue decimal.Decimal `json:"revenue"`
}

// DashboardStats aggregates the figures shown on the dashboard.
type DashboardStats struct {
	TotalProducts   int64                  `json:"totalProducts"`
	LowStockCount   int64                  `json:"lowStockCount"`
	TotalStockValue decimal.Decimal        `json:"totalStockValue"`
	TotalSalesCount int64                  `json:"totalSalesCount"`
	CategoryData    []models.CategoryCount `json:"categoryData"`
	SalesTrend      []TrendPoint           `json:"salesTrend"`
}

// ProductService handles business logic related to products and stock movements.
type ProductService struct {
	repo      repositories.ProductRepository
	txRepo    repositories.TransactionRepository
	publisher EventPublisher
	now       func() time.Time
}

// NewProductService creates a new ProductService. publisher may be nil.
func NewProductService(repo repositories.ProductRepository, txRepo repositories.TransactionRepository, publisher EventPublisher) *ProductService {
	return &ProductService{
		repo:      repo,
		txRepo:    txRepo,
		publisher: publisher,
		now:       time.Now,
	}
}

// WithClock replaces the time source used for ledger dates and the sales trend.
func (s *ProductService) WithClock(now func() time.Time) *ProductService {
	s.now = now
	return s
}

// GetAllProducts retrieves all products.
func (s *ProductService) GetAllProducts(ctx context.Context) ([]models.Product, error) {
	products, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// GetLowStock returns every product at or below its threshold.
func (s *ProductService) GetLowStock(ctx context.Context) ([]models.Product, error) {
	products, err := s.repo.ListLowStock(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list low stock products: %w", err)
	}
	return products, nil
}

// CreateProduct creates a new product.
func (s *ProductService) CreateProduct(ctx context.Context, in ProductInput) (*models.Product, error) {
	threshold := models.DefaultLowStockThreshold
	if in.LowStockThreshold != nil {
		threshold = *in.LowStockThreshold
	}
	product := &models.Product{
		Name:              in.Name,
		SKU:               in.SKU,
		Category:          in.Category,
		Price:             in.Price,
		Quantity:          in.Quantity,
		LowStockThreshold: threshold,
	}
	if err := checkProduct(product); err != nil {
		return nil, err
	}
	if err := s.checkSKUFree(ctx, product.SKU, ""); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, product); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, fmt.Errorf("sku '%s': %w", in.SKU, ErrSKUTaken)
		}
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return product, nil
}

// UpdateProduct applies a partial update to an existing product.
func (s *ProductService) UpdateProduct(ctx context.Context, id string, patch ProductPatch) (*models.Product, error) {
	product, err := s.getProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		product.Name = *patch.Name
	}
	if patch.SKU != nil {
		product.SKU = *patch.SKU
	}
	if patch.Category != nil {
		product.Category = *patch.Category
	}
	if patch.Price != nil {
		product.Price = *patch.Price
	}
	if patch.Quantity != nil {
		product.Quantity = *patch.Quantity
	}
	if patch.LowStockThreshold != nil {
		product.LowStockThreshold = *patch.LowStockThreshold
	}
	if err := checkProduct(product); err != nil {
		return nil, err
	}
	if patch.SKU != nil {
		if err := s.checkSKUFree(ctx, product.SKU, product.ID); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Update(ctx, product); err != nil {
		switch {
		case errors.Is(err, repositories.ErrDuplicate):
			return nil, fmt.Errorf("sku '%s': %w", product.SKU, ErrSKUTaken)
		case errors.Is(err, repositories.ErrNotFound):
			return nil, fmt.Errorf("product %s: %w", id, ErrProductNotFound)
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	return product, nil
}

// checkSKUFree fails with ErrSKUTaken when a product other than selfID holds sku.
// The unique index still catches writes racing past this check.
func (s *ProductService) checkSKUFree(ctx context.Context, sku, selfID string) error {
	existing, err := s.repo.GetBySKU(ctx, sku)
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return nil
	case err != nil:
		return fmt.Errorf("failed to check sku '%s': %w", sku, err)
	case existing.ID != selfID:
		return fmt.Errorf("sku '%s': %w", sku, ErrSKUTaken)
	}
	return nil
}

// DeleteProduct deletes a product by its ID. Ledger entries that reference it are kept.
func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return fmt.Errorf("product %s: %w", id, ErrProductNotFound)
		}
		return fmt.Errorf("failed to delete product: %w", err)
	}
	return nil
}

// Sell removes quantity units from stock and records a SALE.
//
// The read, check and write are separate store calls, so two concurrent sales of the
// same product can both pass the stock check. The last write wins.
func (s *ProductService) Sell(ctx context.Context, id string, quantity int) (*SaleResult, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	product, err := s.getProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if product.Quantity < quantity {
		return nil, fmt.Errorf("%s has %d left: %w", product.Name, product.Quantity, ErrInsufficientStock)
	}

	if err := s.applyMovement(ctx, product, models.TransactionSale, quantity); err != nil {
		return nil, err
	}

	low := product.IsLowStock()
	if low {
		log.Warn().Str("product_id", product.ID).Str("sku", product.SKU).Int("remaining", product.Quantity).Msg("product is low on stock")
	}
	return &SaleResult{Product: product, Remaining: product.Quantity, LowStock: low}, nil
}

// BulkSell sells each item in order and stops at the first one that cannot be sold.
// Items already sold are not rolled back; the returned count says how many went through.
func (s *ProductService) BulkSell(ctx context.Context, items []SaleItem) (int, error) {
	for i, item := range items {
		product, err := s.repo.GetByID(ctx, item.ProductID)
		if err != nil && !errors.Is(err, repositories.ErrNotFound) {
			return i, fmt.Errorf("failed to load product %s: %w", item.ProductID, err)
		}

		switch {
		case product == nil:
			return i, &BulkSellError{Processed: i, Name: "Unknown", Err: ErrProductNotFound}
		case item.Quantity <= 0:
			return i, &BulkSellError{Processed: i, Name: product.Name, Err: ErrInvalidQuantity}
		case product.Quantity < item.Quantity:
			return i, &BulkSellError{Processed: i, Name: product.Name, Err: ErrInsufficientStock}
		}

		if err := s.applyMovement(ctx, product, models.TransactionSale, item.Quantity); err != nil {
			return i, err
		}
	}
	return len(items), nil
}

// Restock adds quantity units to stock and records a RESTOCK.
func (s *ProductService) Restock(ctx context.Context, id string, quantity int) (*models.Product, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	product, err := s.getProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.applyMovement(ctx, product, models.TransactionRestock, quantity); err != nil {
		return nil, err
	}
	return product, nil
}

// GetHistory returns the ledger newest first.
func (s *ProductService) GetHistory(ctx context.Context) ([]models.HistoryEntry, error) {
	txs, err := s.txRepo.ListWithProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	history := make([]models.HistoryEntry, 0, len(txs))
	for _, t := range txs {
		history = append(history, models.NewHistoryEntry(t))
	}
	return history, nil
}

// GetDashboardStats collects the dashboard figures. Independent reads run concurrently.
func (s *ProductService) GetDashboardStats(ctx context.Context) (*DashboardStats, error) {
	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	start := today.AddDate(0, 0, -(trendDays - 1))

	var (
		stats    DashboardStats
		products []models.Product
		sales    []models.Transaction
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		stats.TotalProducts, err = s.repo.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		stats.LowStockCount, err = s.repo.CountLowStock(gctx)
		return err
	})
	g.Go(func() (err error) {
		products, err = s.repo.GetAll(gctx)
		return err
	})
	g.Go(func() (err error) {
		stats.TotalSalesCount, err = s.txRepo.CountByType(gctx, models.TransactionSale)
		return err
	})
	g.Go(func() (err error) {
		stats.CategoryData, err = s.repo.CategoryCounts(gctx)
		return err
	})
	g.Go(func() (err error) {
		sales, err = s.txRepo.ListByTypeSince(gctx, models.TransactionSale, start)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load dashboard stats: %w", err)
	}

	stats.TotalStockValue = decimal.Zero
	for i := range products {
		stats.TotalStockValue = stats.TotalStockValue.Add(products[i].StockValue())
	}
	if stats.CategoryData == nil {
		stats.CategoryData = []models.CategoryCount{}
	}
	stats.SalesTrend = salesTrend(start, sales)
	return &stats, nil
}

// salesTrend buckets sales into trendDays local days beginning at start.
// Sales whose product no longer exists carry no price and are skipped.
func salesTrend(start time.Time, sales []models.Transaction) []TrendPoint {
	loc := start.Location()
	trend := make([]TrendPoint, trendDays)
	index := make(map[string]int, trendDays)
	for i := range trend {
		day := start.AddDate(0, 0, i)
		trend[i] = TrendPoint{Name: day.Format("Mon"), Revenue: decimal.Zero}
		index[day.Format(time.DateOnly)] = i
	}

	for _, sale := range sales {
		if sale.Product == nil {
			continue
		}
		i, ok := index[sale.Date.In(loc).Format(time.DateOnly)]
		if !ok {
			continue
		}
		revenue := sale.Product.Price.Mul(decimal.NewFromInt(int64(sale.Quantity)))
		trend[i].Revenue = trend[i].Revenue.Add(revenue)
	}
	return trend
}

func (s *ProductService) getProduct(ctx context.Context, id string) (*models.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("product %s: %w", id, ErrProductNotFound)
		}
		return nil, fmt.Errorf("failed to load product: %w", err)
	}
	return product, nil
}

// applyMovement writes the new quantity, appends the ledger entry and publishes the event.
func (s *ProductService) applyMovement(ctx context.Context, product *models.Product, kind models.TransactionType, quantity int) error {
	switch kind {
	case models.TransactionSale:
		product.Quantity -= quantity
	case models.TransactionRestock:
		product.Quantity += quantity
	default:
		return fmt.Errorf("unknown transaction type %q", kind)
	}

	if err := s.repo.Update(ctx, product); err != nil {
		return fmt.Errorf("failed to update stock for %s: %w", product.ID, err)
	}

	at := s.now()
	tx := &models.Transaction{ProductID: product.ID, Type: kind, Quantity: quantity, Date: at}
	if err := s.txRepo.Create(ctx, tx); err != nil {
		return fmt.Errorf("failed to record %s for %s: %w", kind, product.ID, err)
	}

	s.publish(models.NewStockEvent(kind, product, quantity, at))
	return nil
}

func (s *ProductService) publish(evt models.StockEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishJSON(evt); err != nil {
		log.Error().Err(err).Str("product_id", evt.ProductID).Str("type", string(evt.Type)).Msg("failed to publish stock event")
	}
}

func checkProduct(p *models.Product) error {
	if p.Price.IsNegative() || p.Quantity < 0 || p.LowStockThreshold < 0 {
		return ErrInvalidProduct
	}
	return nil
}
