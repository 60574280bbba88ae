package message_broker

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestPublishRoutesByKey(t *testing.T) {
	b := NewChannelMessageBroker()
	defer b.Close()
	ctx := context.Background()

	all, err := b.Subscribe(ctx, "progress", "")
	if err != nil {
		t.Fatalf("Subscribe all: %v", err)
	}
	alice, _ := b.Subscribe(ctx, "progress", "alice")
	bob, _ := b.Subscribe(ctx, "progress", "bob")

	if err := b.Publish(ctx, "progress", "alice", []byte("a1")); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	select {
	case msg := <-all:
		if string(msg.Payload) != "a1" || msg.RoutingKey != "alice" || msg.Topic != "progress" {
			t.Errorf("wildcard got %+v", msg)
		}
	case <-time.After(time.Second):
		t.Fatal("wildcard subscriber got nothing")
	}
	select {
	case msg := <-alice:
		if string(msg.Payload) != "a1" {
			t.Errorf("alice got %q", msg.Payload)
		}
	case <-time.After(time.Second):
		t.Fatal("alice got nothing")
	}
	select {
	case msg := <-bob:
		t.Errorf("bob should not receive alice's message, got %q", msg.Payload)
	default:
	}
}

func TestSubscribeEndsWithContext(t *testing.T) {
	b := NewChannelMessageBroker()
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	ch, _ := b.Subscribe(ctx, "progress", "")
	if n := b.SubscriberCount("progress"); n != 1 {
		t.Fatalf("SubscriberCount = %d, want 1", n)
	}

	cancel()
	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("expected closed channel")
		}
	case <-time.After(time.Second):
		t.Fatal("channel not closed after cancel")
	}
	if n := b.SubscriberCount("progress"); n != 0 {
		t.Errorf("SubscriberCount after cancel = %d, want 0", n)
	}
}

func TestFullSubscriberDropsInsteadOfBlocking(t *testing.T) {
	b := NewChannelMessageBroker()
	defer b.Close()
	ctx := context.Background()

	ch, _ := b.Subscribe(ctx, "t", "")
	for i := 0; i < subscriberBuffer+10; i++ {
		if err := b.Publish(ctx, "t", "k", []byte("x")); err != nil {
			t.Fatalf("Publish %d: %v", i, err)
		}
	}
	if len(ch) != subscriberBuffer {
		t.Errorf("buffered = %d, want %d", len(ch), subscriberBuffer)
	}
}

func TestClose(t *testing.T) {
	b := NewChannelMessageBroker()
	ctx := context.Background()
	ch, _ := b.Subscribe(ctx, "t", "")

	if err := b.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, ok := <-ch; ok {
		t.Error("expected subscriber channel to be closed")
	}
	if !b.IsClosed() {
		t.Error("IsClosed() = false after Close")
	}
	if err := b.Publish(ctx, "t", "k", nil); !errors.Is(err, ErrClosed) {
		t.Errorf("Publish after close err = %v, want ErrClosed", err)
	}
	if _, err := b.Subscribe(ctx, "t", ""); !errors.Is(err, ErrClosed) {
		t.Errorf("Subscribe after close err = %v, want ErrClosed", err)
	}
	if err := b.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}
