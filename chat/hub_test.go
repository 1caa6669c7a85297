package chat

import (
	"testing"
	"time"
)

func TestHubDeliversToMatchingKey(t *testing.T) {
	hub := NewHub()
	signals, cancel := hub.Subscribe(TopicConversations, "1")
	defer cancel()

	hub.Publish(TopicConversations, "1")
	select {
	case <-signals:
	case <-time.After(time.Second):
		t.Fatal("no signal delivered for matching key")
	}

	hub.Publish(TopicConversations, "2")
	select {
	case <-signals:
		t.Fatal("signal delivered for non-matching key")
	case <-time.After(20 * time.Millisecond):
	}
}

func TestHubNonBlockingPublish(t *testing.T) {
	hub := NewHub()
	signals, cancel := hub.Subscribe(TopicMessages, "conv")
	defer cancel()

	// no reader; repeated publishes must not block
	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			hub.Publish(TopicMessages, "conv")
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a full subscriber channel")
	}

	// the pending signal coalesced into one
	<-signals
	select {
	case _, ok := <-signals:
		if ok {
			t.Fatal("expected at most one pending signal")
		}
	default:
	}
}

func TestHubCancelClosesChannel(t *testing.T) {
	hub := NewHub()
	signals, cancel := hub.Subscribe(TopicConversations, "1")

	cancel()
	select {
	case _, ok := <-signals:
		if ok {
			t.Fatal("expected closed channel after cancel")
		}
	case <-time.After(time.Second):
		t.Fatal("channel not closed after cancel")
	}

	// publishing after cancel must not panic or deliver
	hub.Publish(TopicConversations, "1")

	// double cancel is safe
	cancel()
}

func TestHubIndependentSubscribers(t *testing.T) {
	hub := NewHub()
	first, cancelFirst := hub.Subscribe(TopicConversations, "1")
	second, cancelSecond := hub.Subscribe(TopicConversations, "1")
	defer cancelSecond()

	hub.Publish(TopicConversations, "1")
	for i, ch := range []<-chan struct{}{first, second} {
		select {
		case <-ch:
		case <-time.After(time.Second):
			t.Fatalf("subscriber %d missed the signal", i)
		}
	}

	cancelFirst()
	hub.Publish(TopicConversations, "1")
	select {
	case <-second:
	case <-time.After(time.Second):
		t.Fatal("surviving subscriber missed the signal")
	}
}
