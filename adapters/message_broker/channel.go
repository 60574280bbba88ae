package message_broker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/satriahrh/cocoa-fruit/mentor/domain"
	"github.com/satriahrh/cocoa-fruit/mentor/utils/log"
	"go.uber.org/zap"
)

var ErrClosed = errors.New("message broker is closed")

const subscriberBuffer = 100

type subscriber struct {
	routingKey string
	ch         chan domain.Message
}

// ChannelMessageBroker implements MessageBroker in process using Go channels.
// Every subscriber owns a buffered channel; a full subscriber drops messages
// instead of blocking publishers.
type ChannelMessageBroker struct {
	mu     sync.RWMutex
	topics map[string][]*subscriber
	closed bool
}

var _ domain.MessageBroker = (*ChannelMessageBroker)(nil)

// NewChannelMessageBroker creates a new channel-based message broker
func NewChannelMessageBroker() *ChannelMessageBroker {
	return &ChannelMessageBroker{
		topics: make(map[string][]*subscriber),
	}
}

// Publish delivers message to every subscriber of topic whose routing key
// matches, or who subscribed with an empty routing key.
func (b *ChannelMessageBroker) Publish(ctx context.Context, topic string, routingKey string, message []byte) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return ErrClosed
	}

	msg := domain.Message{
		Topic:      topic,
		RoutingKey: routingKey,
		Payload:    message,
		Timestamp:  time.Now(),
	}

	delivered := 0
	for _, sub := range b.topics[topic] {
		if sub.routingKey != "" && sub.routingKey != routingKey {
			continue
		}
		select {
		case sub.ch <- msg:
			delivered++
		case <-ctx.Done():
			return ctx.Err()
		default:
			log.WithCtx(ctx).Warn("subscriber full, message dropped",
				zap.String("topic", topic),
				zap.String("routingKey", routingKey))
		}
	}

	log.WithCtx(ctx).Debug("message published",
		zap.String("topic", topic),
		zap.String("routingKey", routingKey),
		zap.Int("payload_size", len(message)),
		zap.Int("delivered", delivered))
	return nil
}

// Subscribe returns a channel receiving the topic's messages for routingKey
// (all of them when routingKey is empty). The channel is closed when ctx is
// done or the broker is closed.
func (b *ChannelMessageBroker) Subscribe(ctx context.Context, topic string, routingKey string) (<-chan domain.Message, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, ErrClosed
	}

	sub := &subscriber{routingKey: routingKey, ch: make(chan domain.Message, subscriberBuffer)}
	b.topics[topic] = append(b.topics[topic], sub)

	go func() {
		<-ctx.Done()
		b.unsubscribe(topic, sub)
	}()

	log.WithCtx(ctx).Info("subscribed to topic", zap.String("topic", topic), zap.String("routingKey", routingKey))
	return sub.ch, nil
}

func (b *ChannelMessageBroker) unsubscribe(topic string, sub *subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.topics[topic]
	for i, s := range subs {
		if s == sub {
			b.topics[topic] = append(subs[:i:i], subs[i+1:]...)
			close(sub.ch)
			break
		}
	}
	if len(b.topics[topic]) == 0 {
		delete(b.topics, topic)
	}
}

// Close closes the message broker and all subscriber channels
func (b *ChannelMessageBroker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true

	for topic, subs := range b.topics {
		for _, sub := range subs {
			close(sub.ch)
		}
		log.With(zap.String("topic", topic)).Debug("closed topic subscribers")
	}
	b.topics = make(map[string][]*subscriber)

	log.With().Info("message broker closed")
	return nil
}

// SubscriberCount returns the number of live subscriptions on topic.
func (b *ChannelMessageBroker) SubscriberCount(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.topics[topic])
}

// IsClosed returns whether the broker is closed
func (b *ChannelMessageBroker) IsClosed() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.closed
}
