package notification

import (
	"context"

	"relytailors-be/internal/order"
)

var _ order.Notifier = (*OrderNotifier)(nil)

// OrderNotifier renders order emails and queues them for the worker.
type OrderNotifier struct {
	queue Enqueuer
}

func NewOrderNotifier(queue Enqueuer) *OrderNotifier {
	return &OrderNotifier{queue: queue}
}

func (n *OrderNotifier) OrderPlaced(ctx context.Context, to string, o *order.Order) error {
	subject, body, err := RenderOrderPlaced(o)
	if err != nil {
		return err
	}
	return n.queue.Enqueue(ctx, Email{To: to, Subject: subject, HTMLBody: body, OrderID: o.ID})
}

func (n *OrderNotifier) StatusChanged(ctx context.Context, to string, o *order.Order) error {
	subject, body, err := RenderStatusChanged(o)
	if err != nil {
		return err
	}
	return n.queue.Enqueue(ctx, Email{To: to, Subject: subject, HTMLBody: body, OrderID: o.ID})
}
