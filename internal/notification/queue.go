package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"relytailors-be/internal/logger"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"go.uber.org/zap"
)

const metadataRequestID = "request_id"

// Email is the queued unit of work. The body is rendered before enqueueing
// so the worker only has to deliver it.
type Email struct {
	To       string `json:"to"`
	Subject  string `json:"subject"`
	HTMLBody string `json:"htmlBody"`
	OrderID  string `json:"orderId,omitempty"`
}

type Enqueuer interface {
	Enqueue(ctx context.Context, e Email) error
}

type Queue struct {
	publisher message.Publisher
	topic     string
}

func NewQueue(publisher message.Publisher, topic string) *Queue {
	return &Queue{publisher: publisher, topic: topic}
}

func (q *Queue) Enqueue(ctx context.Context, e Email) error {
	if e.To == "" {
		return ErrNoRecipient
	}

	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode email: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	if id := logger.RequestIDFrom(ctx); id != "" {
		msg.Metadata.Set(metadataRequestID, id)
	}

	if err := q.publisher.Publish(q.topic, msg); err != nil {
		return fmt.Errorf("publish to %s: %w", q.topic, err)
	}

	logger.FromCtx(ctx).Debug("email enqueued",
		zap.String("message_uuid", msg.UUID),
		zap.String("order_id", e.OrderID),
	)
	return nil
}
