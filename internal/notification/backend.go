package notification

import (
	"errors"
	"fmt"

	"relytailors-be/internal/config"
	"relytailors-be/internal/logger"

	"github.com/ThreeDotsLabs/watermill-kafka/v3/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"go.uber.org/zap"
)

const (
	BackendGoChannel = "gochannel"
	BackendKafka     = "kafka"

	consumerGroup = "relytailors-notifications"
)

// PubSub bundles the publisher and subscriber of one backend.
type PubSub struct {
	Backend    string
	Publisher  message.Publisher
	Subscriber message.Subscriber
}

func NewPubSub(cfg *config.Config, log *zap.Logger) (*PubSub, error) {
	wlog := logger.NewWatermillAdapter(log)

	switch cfg.NotificationBackend {
	case "", BackendGoChannel:
		ch := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 256}, wlog)
		return &PubSub{Backend: BackendGoChannel, Publisher: ch, Subscriber: ch}, nil

	case BackendKafka:
		pub, err := kafka.NewPublisher(kafka.PublisherConfig{
			Brokers:   cfg.KafkaBrokers,
			Marshaler: kafka.DefaultMarshaler{},
		}, wlog)
		if err != nil {
			return nil, fmt.Errorf("kafka publisher: %w", err)
		}

		sub, err := kafka.NewSubscriber(kafka.SubscriberConfig{
			Brokers:       cfg.KafkaBrokers,
			Unmarshaler:   kafka.DefaultMarshaler{},
			ConsumerGroup: consumerGroup,
		}, wlog)
		if err != nil {
			_ = pub.Close()
			return nil, fmt.Errorf("kafka subscriber: %w", err)
		}
		return &PubSub{Backend: BackendKafka, Publisher: pub, Subscriber: sub}, nil

	default:
		return nil, fmt.Errorf("unknown notification backend %q", cfg.NotificationBackend)
	}
}

func (p *PubSub) Close() error {
	return errors.Join(p.Publisher.Close(), p.Subscriber.Close())
}
