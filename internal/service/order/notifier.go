package order

import (
	"context"
	"log"

	"tarzi-api/internal/domain"
)

// LogNotifier writes transitions to the shared logger. It stands in for the
// email/SMS collaborator, which is outside this service.
type LogNotifier struct {
	Logger *log.Logger
}

func (n *LogNotifier) OrderStatusChanged(_ context.Context, o *domain.Order, previous domain.OrderStatus) error {
	if previous == "" {
		n.Logger.Printf("order %s created for customer %s, total %s", o.OrderNumber, o.CustomerID, o.TotalPrice)
		return nil
	}
	n.Logger.Printf("order %s: %s -> %s", o.OrderNumber, previous, o.Status)
	return nil
}
