package notification

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"relytailors-be/internal/logger"
	"relytailors-be/internal/metrics"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingDispatcher struct {
	mu   sync.Mutex
	sent []Email
	fail map[string]bool
}

func (d *recordingDispatcher) Send(ctx context.Context, to, subject, htmlBody string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.fail[to] {
		return errors.New("mailbox unavailable")
	}
	d.sent = append(d.sent, Email{To: to, Subject: subject, HTMLBody: htmlBody})
	return nil
}

func (d *recordingDispatcher) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.sent)
}

type capturePublisher struct {
	topic string
	msgs  []*message.Message
	err   error
}

func (p *capturePublisher) Publish(topic string, msgs ...*message.Message) error {
	p.topic = topic
	p.msgs = append(p.msgs, msgs...)
	return p.err
}

func (p *capturePublisher) Close() error { return nil }

func TestQueue_Enqueue(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		pub := &capturePublisher{}
		q := NewQueue(pub, "notifications.email")
		ctx := logger.WithRequestID(context.Background(), "req-1")

		err := q.Enqueue(ctx, Email{To: "asha@example.com", Subject: "s", HTMLBody: "b", OrderID: "o-1"})
		require.NoError(t, err)
		require.Len(t, pub.msgs, 1)
		assert.Equal(t, "notifications.email", pub.topic)
		assert.Equal(t, "req-1", pub.msgs[0].Metadata.Get(metadataRequestID))
		assert.JSONEq(t,
			`{"to":"asha@example.com","subject":"s","htmlBody":"b","orderId":"o-1"}`,
			string(pub.msgs[0].Payload))
	})

	t.Run("NoRecipient", func(t *testing.T) {
		pub := &capturePublisher{}
		err := NewQueue(pub, "t").Enqueue(context.Background(), Email{Subject: "s"})
		assert.ErrorIs(t, err, ErrNoRecipient)
		assert.Empty(t, pub.msgs)
	})

	t.Run("PublishError", func(t *testing.T) {
		pub := &capturePublisher{err: errors.New("broker down")}
		err := NewQueue(pub, "t").Enqueue(context.Background(), Email{To: "a@b.c"})
		assert.ErrorContains(t, err, "broker down")
	})
}

func TestWorker_Run(t *testing.T) {
	const topic = "notifications.email"

	ch := gochannel.NewGoChannel(gochannel.Config{Persistent: true}, watermill.NopLogger{})
	defer ch.Close()

	dispatcher := &recordingDispatcher{fail: map[string]bool{"bounce@example.com": true}}
	m := metrics.New()
	worker := NewWorker(ch, topic, dispatcher, m, WithSendTimeout(time.Second))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- worker.Run(ctx) }()
	<-worker.Subscribed()

	q := NewQueue(ch, topic)
	require.NoError(t, q.Enqueue(ctx, Email{To: "asha@example.com", Subject: "one"}))
	require.NoError(t, q.Enqueue(ctx, Email{To: "bounce@example.com", Subject: "two"}))
	require.NoError(t, ch.Publish(topic, message.NewMessage(watermill.NewUUID(), []byte("not json"))))
	require.NoError(t, q.Enqueue(ctx, Email{To: "ravi@example.com", Subject: "three"}))

	assert.Eventually(t, func() bool {
		return metrics.CounterValue(m.NotificationsSent) == 2 &&
			metrics.CounterValue(m.NotificationsFailed) == 2
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 2, dispatcher.count())

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop")
	}
}

func TestWorker_DrainsAfterCancel(t *testing.T) {
	const topic = "notifications.email"

	ch := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	defer ch.Close()

	dispatcher := &recordingDispatcher{}
	m := metrics.New()
	worker := NewWorker(ch, topic, dispatcher, m, WithDrainIdle(500*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- worker.Run(ctx) }()
	<-worker.Subscribed()

	q := NewQueue(ch, topic)
	for _, to := range []string{"asha@example.com", "ravi@example.com", "meera@example.com"} {
		require.NoError(t, q.Enqueue(context.Background(), Email{To: to, Subject: "status"}))
	}
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not stop")
	}
	assert.Equal(t, 3, dispatcher.count())
	assert.Equal(t, uint64(3), metrics.CounterValue(m.NotificationsSent))
}

func TestWorker_SubscribeError(t *testing.T) {
	ch := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	require.NoError(t, ch.Close())

	worker := NewWorker(ch, "notifications.email", &recordingDispatcher{}, metrics.New())

	err := worker.Run(context.Background())
	assert.ErrorContains(t, err, "subscribe notifications.email")
	select {
	case <-worker.Subscribed():
		t.Fatal("subscribed signalled after a failed subscribe")
	default:
	}
}
