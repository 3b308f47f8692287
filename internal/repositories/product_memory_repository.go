package repositories

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Kamey12/Apex-Inventory-System/internal/models"

	"github.com/google/uuid"
)

// MemoryProductRepository is an in-memory implementation of ProductRepository.
type MemoryProductRepository struct {
	products map[string]models.Product
	mu       sync.RWMutex
}

// NewMemoryProductRepository creates a new instance of MemoryProductRepository.
func NewMemoryProductRepository() *MemoryProductRepository {
	return &MemoryProductRepository{
		products: make(map[string]models.Product),
	}
}

// GetAll returns all products ordered by name.
func (r *MemoryProductRepository) GetAll(_ context.Context) ([]models.Product, error) {
	return r.filter(func(models.Product) bool { return true }), nil
}

// GetByID returns a product by its ID.
func (r *MemoryProductRepository) GetByID(_ context.Context, id string) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[id]
	if !ok {
		return nil, fmt.Errorf("product with ID %s: %w", id, ErrNotFound)
	}
	return &product, nil
}

// GetBySKU returns a product by its SKU.
func (r *MemoryProductRepository) GetBySKU(_ context.Context, sku string) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.products {
		if p.SKU == sku {
			product := p
			return &product, nil
		}
	}
	return nil, fmt.Errorf("product with SKU %s: %w", sku, ErrNotFound)
}

// Create adds a new product.
func (r *MemoryProductRepository) Create(_ context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.skuTaken(product.SKU, "") {
		return fmt.Errorf("failed to create product: %w", ErrDuplicate)
	}
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	now := time.Now()
	product.CreatedAt = now
	product.LastUpdated = now
	r.products[product.ID] = *product
	return nil
}

// Update modifies an existing product.
func (r *MemoryProductRepository) Update(_ context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.products[product.ID]
	if !ok {
		return fmt.Errorf("product with ID %s: %w", product.ID, ErrNotFound)
	}
	if r.skuTaken(product.SKU, product.ID) {
		return fmt.Errorf("failed to update product: %w", ErrDuplicate)
	}
	product.CreatedAt = existing.CreatedAt
	product.LastUpdated = time.Now()
	r.products[product.ID] = *product
	return nil
}

// Delete removes a product by its ID.
func (r *MemoryProductRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[id]; !ok {
		return fmt.Errorf("product with ID %s: %w", id, ErrNotFound)
	}
	delete(r.products, id)
	return nil
}

// ListLowStock returns products at or below their threshold.
func (r *MemoryProductRepository) ListLowStock(_ context.Context) ([]models.Product, error) {
	return r.filter(func(p models.Product) bool { return p.IsLowStock() }), nil
}

// Count returns the number of products.
func (r *MemoryProductRepository) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.products)), nil
}

// CountLowStock returns the number of low stock products.
func (r *MemoryProductRepository) CountLowStock(ctx context.Context) (int64, error) {
	low, _ := r.ListLowStock(ctx)
	return int64(len(low)), nil
}

// CategoryCounts groups products by category, largest group first.
func (r *MemoryProductRepository) CategoryCounts(_ context.Context) ([]models.CategoryCount, error) {
	r.mu.RLock()
	byName := make(map[string]int64)
	for _, p := range r.products {
		byName[p.Category]++
	}
	r.mu.RUnlock()

	counts := make([]models.CategoryCount, 0, len(byName))
	for name, n := range byName {
		counts = append(counts, models.CategoryCount{Name: name, Value: n})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Value != counts[j].Value {
			return counts[i].Value > counts[j].Value
		}
		return counts[i].Name < counts[j].Name
	})
	return counts, nil
}

// lookup is used by the in-memory ledger to join products.
func (r *MemoryProductRepository) lookup(id string) (*models.Product, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.products[id]
	if !ok {
		return nil, false
	}
	return &p, true
}

func (r *MemoryProductRepository) filter(keep func(models.Product) bool) []models.Product {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Product, 0, len(r.products))
	for _, p := range r.products {
		if keep(p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// skuTaken must be called with the lock held.
func (r *MemoryProductRepository) skuTaken(sku, exceptID string) bool {
	for id, p := range r.products {
		if p.SKU == sku && id != exceptID {
			return true
		}
	}
	return false
}
