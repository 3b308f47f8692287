package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/Kamey12/Apex-Inventory-System/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMTransactionRepository is a GORM implementation of TransactionRepository.
type GORMTransactionRepository struct {
	db *gorm.DB
}

// NewGORMTransactionRepository creates a new instance of GORMTransactionRepository.
func NewGORMTransactionRepository(db *gorm.DB) *GORMTransactionRepository {
	return &GORMTransactionRepository{db: db}
}

// Create appends a ledger entry.
func (r *GORMTransactionRepository) Create(ctx context.Context, tx *models.Transaction) error {
	if tx.ID == "" {
		tx.ID = uuid.New().String()
	}
	if tx.Date.IsZero() {
		tx.Date = time.Now()
	}
	if err := r.db.WithContext(ctx).Omit("Product").Create(tx).Error; err != nil {
		return fmt.Errorf("failed to record transaction: %w", err)
	}
	return nil
}

// ListWithProducts returns the whole ledger, newest first, with products preloaded.
func (r *GORMTransactionRepository) ListWithProducts(ctx context.Context) ([]models.Transaction, error) {
	var txs []models.Transaction
	err := r.db.WithContext(ctx).
		Preload("Product").
		Order("date DESC").
		Find(&txs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return txs, nil
}

// CountByType counts ledger entries of one kind.
func (r *GORMTransactionRepository) CountByType(ctx context.Context, kind models.TransactionType) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Transaction{}).Where("type = ?", kind).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count %s transactions: %w", kind, err)
	}
	return n, nil
}

// ListByTypeSince returns entries of one kind dated at or after since, with products preloaded.
func (r *GORMTransactionRepository) ListByTypeSince(ctx context.Context, kind models.TransactionType, since time.Time) ([]models.Transaction, error) {
	var txs []models.Transaction
	err := r.db.WithContext(ctx).
		Preload("Product").
		Where("type = ? AND date >= ?", kind, since).
		Order("date").
		Find(&txs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list %s transactions: %w", kind, err)
	}
	return txs, nil
}
