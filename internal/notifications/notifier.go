// Package notifications turns stock events into low stock alerts.
package notifications

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Kamey12/Apex-Inventory-System/internal/models"
	"github.com/Kamey12/Apex-Inventory-System/pkg/rabbitmq"
)

// Sender delivers an alert.
type Sender interface {
	Send(ctx context.Context, subject, body string) error
}

// LowStockNotifier consumes stock events and alerts on the ones that left a product low.
type LowStockNotifier struct {
	sender Sender
}

// NewLowStockNotifier creates a notifier that alerts through sender.
func NewLowStockNotifier(sender Sender) *LowStockNotifier {
	return &LowStockNotifier{sender: sender}
}

// Handle processes one message body. It matches rabbitmq.Handler.
func (n *LowStockNotifier) Handle(ctx context.Context, body []byte) error {
	var evt models.StockEvent
	if err := json.Unmarshal(body, &evt); err != nil {
		return fmt.Errorf("decode stock event: %v: %w", err, rabbitmq.ErrReject)
	}
	if !evt.LowStock || evt.Type != models.TransactionSale {
		return nil
	}

	subject := fmt.Sprintf("Low stock: %s (%s)", evt.Name, evt.SKU)
	text := fmt.Sprintf(
		"%s (SKU %s) is down to %d units after a sale of %d at %s.\nThe low stock threshold is %d.\n",
		evt.Name, evt.SKU, evt.Remaining, evt.Quantity, evt.OccurredAt.Format("2006-01-02 15:04"), evt.Threshold,
	)
	if err := n.sender.Send(ctx, subject, text); err != nil {
		return fmt.Errorf("send low stock alert for %s: %w", evt.ProductID, err)
	}
	return nil
}
