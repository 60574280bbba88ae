package domain

import (
	"context"
	"time"
)

// ProgressTopic carries ProgressEvent payloads, routed by user id.
const ProgressTopic = "practicum.progress"

// MessageBroker defines the interface for message broker operations
type MessageBroker interface {
	// Publish sends a message to a specific topic/channel with a routing key
	Publish(ctx context.Context, topic string, routingKey string, message []byte) error

	// Subscribe listens for messages on a specific topic/channel and routing key.
	// An empty routing key receives every message of the topic.
	Subscribe(ctx context.Context, topic string, routingKey string) (<-chan Message, error)

	// Close closes the message broker connection
	Close() error
}

// Message represents a message received from the broker
type Message struct {
	Topic      string
	RoutingKey string
	Payload    []byte
	Timestamp  time.Time
}

// ProgressEvent is published whenever a practicum task changes state for a user.
type ProgressEvent struct {
	UserID    string    `json:"user_id"`
	TaskID    string    `json:"task_id"`
	Completed bool      `json:"completed"`
	Passed    bool      `json:"passed"`
	Timestamp time.Time `json:"timestamp"`
}
