package repositories

import (
	"context"
	"time"

	"github.com/Kamey12/Apex-Inventory-System/internal/models"
)

// TransactionRepository defines the interface for the append-only stock ledger.
type TransactionRepository interface {
	Create(ctx context.Context, tx *models.Transaction) error
	// ListWithProducts returns every transaction newest first. Product is nil when it was deleted.
	ListWithProducts(ctx context.Context) ([]models.Transaction, error)
	CountByType(ctx context.Context, kind models.TransactionType) (int64, error)
	ListByTypeSince(ctx context.Context, kind models.TransactionType, since time.Time) ([]models.Transaction, error)
}
