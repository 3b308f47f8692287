package models

import "time"

// TransactionType distinguishes ledger entries.
type TransactionType string

const (
	TransactionSale    TransactionType = "SALE"
	TransactionRestock TransactionType = "RESTOCK"
)

// Transaction is an immutable ledger entry produced by a stock mutation.
// ProductID is a non-owning reference; the product may have been deleted since.
type Transaction struct {
	ID        string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	ProductID string          `json:"productId" gorm:"type:varchar(36);not null;index"`
	Product   *Product        `json:"-" gorm:"foreignKey:ProductID"`
	Type      TransactionType `json:"type" gorm:"type:varchar(10);not null;index"`
	Quantity  int             `json:"quantity" gorm:"not null"`
	Date      time.Time       `json:"date" gorm:"not null;index"`
}

// ProductSummary is the slice of a product shown next to a ledger entry.
type ProductSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	SKU  string `json:"sku"`
}

// HistoryEntry is a transaction joined with its product, if the product still exists.
type HistoryEntry struct {
	ID       string          `json:"id"`
	Type     TransactionType `json:"type"`
	Quantity int             `json:"quantity"`
	Date     time.Time       `json:"date"`
	Product  *ProductSummary `json:"product"`
}

// NewHistoryEntry flattens a transaction for the history view.
func NewHistoryEntry(t Transaction) HistoryEntry {
	entry := HistoryEntry{
		ID:       t.ID,
		Type:     t.Type,
		Quantity: t.Quantity,
		Date:     t.Date,
	}
	if t.Product != nil {
		entry.Product = &ProductSummary{ID: t.Product.ID, Name: t.Product.Name, SKU: t.Product.SKU}
	}
	return entry
}

// StockEvent is published after every sale or restock.
type StockEvent struct {
	Type       TransactionType `json:"type"`
	ProductID  string          `json:"productId"`
	SKU        string          `json:"sku"`
	Name       string          `json:"name"`
	Quantity   int             `json:"quantity"`
	Remaining  int             `json:"remaining"`
	Threshold  int             `json:"threshold"`
	LowStock   bool            `json:"lowStock"`
	OccurredAt time.Time       `json:"occurredAt"`
}

// NewStockEvent builds the event for a mutation that has already been applied to p.
func NewStockEvent(kind TransactionType, p *Product, quantity int, at time.Time) StockEvent {
	return StockEvent{
		Type:       kind,
		ProductID:  p.ID,
		SKU:        p.SKU,
		Name:       p.Name,
		Quantity:   quantity,
		Remaining:  p.Quantity,
		Threshold:  p.LowStockThreshold,
		LowStock:   p.IsLowStock(),
		OccurredAt: at,
	}
}
