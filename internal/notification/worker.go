package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"relytailors-be/internal/logger"
	"relytailors-be/internal/metrics"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

const (
	defaultSendTimeout = 30 * time.Second
	defaultDrainIdle   = 200 * time.Millisecond
)

// Worker drains the email topic and hands each message to a Dispatcher.
// Delivery is at most once: every message is acked whether or not the send
// succeeded.
type Worker struct {
	subscriber  message.Subscriber
	topic       string
	dispatcher  Dispatcher
	sendTimeout time.Duration
	drainIdle   time.Duration
	metrics     *metrics.Metrics

	subscribed chan struct{}
}

type WorkerOption func(*Worker)

func WithSendTimeout(d time.Duration) WorkerOption {
	return func(w *Worker) { w.sendTimeout = d }
}

// WithDrainIdle sets how long the worker keeps reading after cancellation
// before it considers the subscription empty.
func WithDrainIdle(d time.Duration) WorkerOption {
	return func(w *Worker) { w.drainIdle = d }
}

func NewWorker(sub message.Subscriber, topic string, d Dispatcher, m *metrics.Metrics, opts ...WorkerOption) *Worker {
	w := &Worker{
		subscriber:  sub,
		topic:       topic,
		dispatcher:  d,
		sendTimeout: defaultSendTimeout,
		drainIdle:   defaultDrainIdle,
		metrics:     m,
		subscribed:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Subscribed is closed once Run holds a live subscription. Publishing before
// that point on the gochannel backend drops the message.
func (w *Worker) Subscribed() <-chan struct{} {
	return w.subscribed
}

// Run blocks until ctx is cancelled or the subscription closes. After
// cancellation it keeps delivering until the topic has been quiet for the
// drain idle period, then unsubscribes.
func (w *Worker) Run(ctx context.Context) error {
	log := logger.L().With(zap.String("layer", "worker"), zap.String("topic", w.topic))

	subCtx, unsubscribe := context.WithCancel(context.WithoutCancel(ctx))
	defer unsubscribe()

	msgs, err := w.subscriber.Subscribe(subCtx, w.topic)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", w.topic, err)
	}
	close(w.subscribed)
	log.Info("notification worker started")

	for {
		select {
		case <-ctx.Done():
			log.Info("notification worker draining")
			n := w.drain(subCtx, msgs)
			log.Info("notification worker stopped", zap.Int("drained", n))
			return nil
		case msg, ok := <-msgs:
			if !ok {
				log.Info("subscription closed")
				return nil
			}
			w.handle(subCtx, msg)
		}
	}
}

func (w *Worker) drain(ctx context.Context, msgs <-chan *message.Message) int {
	idle := time.NewTimer(w.drainIdle)
	defer idle.Stop()

	n := 0
	for {
		select {
		case msg, ok := <-msgs:
			if !ok {
				return n
			}
			w.handle(ctx, msg)
			n++
			idle.Reset(w.drainIdle)
		case <-idle.C:
			return n
		}
	}
}

func (w *Worker) handle(ctx context.Context, msg *message.Message) {
	defer msg.Ack()

	if id := msg.Metadata.Get(metadataRequestID); id != "" {
		ctx = logger.WithRequestID(ctx, id)
	}
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "worker"),
		zap.String("message_uuid", msg.UUID),
	)

	var e Email
	if err := json.Unmarshal(msg.Payload, &e); err != nil {
		w.metrics.NotificationsFailed.Inc()
		log.Error("dropping malformed email message", zap.Error(err))
		return
	}

	sendCtx, cancel := context.WithTimeout(ctx, w.sendTimeout)
	defer cancel()

	timer := prometheus.NewTimer(w.metrics.NotificationDuration)
	err := w.dispatcher.Send(sendCtx, e.To, e.Subject, e.HTMLBody)
	took := timer.ObserveDuration()
	if err != nil {
		w.metrics.NotificationsFailed.Inc()
		log.Error("email delivery failed",
			zap.String("order_id", e.OrderID),
			zap.Duration("duration", took),
			zap.Error(err),
		)
		return
	}

	w.metrics.NotificationsSent.Inc()
	log.Info("email delivered",
		zap.String("order_id", e.OrderID),
		zap.String("subject", e.Subject),
		zap.Duration("duration", took),
	)
}
