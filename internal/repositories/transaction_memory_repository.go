package repositories

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Kamey12/Apex-Inventory-System/internal/models"

	"github.com/google/uuid"
)

// MemoryTransactionRepository is an in-memory implementation of TransactionRepository.
// Products are joined from the product store it was built with.
type MemoryTransactionRepository struct {
	products *MemoryProductRepository
	txs      []models.Transaction
	mu       sync.RWMutex
}

// NewMemoryTransactionRepository creates a ledger that joins against products.
func NewMemoryTransactionRepository(products *MemoryProductRepository) *MemoryTransactionRepository {
	return &MemoryTransactionRepository{products: products}
}

// Create appends a ledger entry.
func (r *MemoryTransactionRepository) Create(_ context.Context, tx *models.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if tx.ID == "" {
		tx.ID = uuid.New().String()
	}
	if tx.Date.IsZero() {
		tx.Date = time.Now()
	}
	stored := *tx
	stored.Product = nil
	r.txs = append(r.txs, stored)
	return nil
}

// ListWithProducts returns every entry newest first.
func (r *MemoryTransactionRepository) ListWithProducts(_ context.Context) ([]models.Transaction, error) {
	out := r.collect(func(models.Transaction) bool { return true })
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

// CountByType counts entries of one kind.
func (r *MemoryTransactionRepository) CountByType(_ context.Context, kind models.TransactionType) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var n int64
	for _, t := range r.txs {
		if t.Type == kind {
			n++
		}
	}
	return n, nil
}

// ListByTypeSince returns entries of one kind at or after since, oldest first.
func (r *MemoryTransactionRepository) ListByTypeSince(_ context.Context, kind models.TransactionType, since time.Time) ([]models.Transaction, error) {
	out := r.collect(func(t models.Transaction) bool {
		return t.Type == kind && !t.Date.Before(since)
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (r *MemoryTransactionRepository) collect(keep func(models.Transaction) bool) []models.Transaction {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Transaction, 0, len(r.txs))
	for _, t := range r.txs {
		if !keep(t) {
			continue
		}
		if r.products != nil {
			if p, ok := r.products.lookup(t.ProductID); ok {
				t.Product = p
			}
		}
		out = append(out, t)
	}
	return out
}
