package server

import (
	"context"
	"testing"
	"time"
)

func TestDispatcherDeliversToEverySubscriber(t *testing.T) {
	dispatcher := NewRealtimeDispatcher()

	first, cancelFirst := dispatcher.Subscribe(context.Background())
	defer cancelFirst()
	second, cancelSecond := dispatcher.Subscribe(context.Background())
	defer cancelSecond()

	event := CandleLitEvent{CandleID: 7, Name: "Ama", Timestamp: time.Now().UTC()}
	dispatcher.Publish(event)

	for _, stream := range []<-chan CandleLitEvent{first, second} {
		select {
		case received := <-stream:
			if received.CandleID != 7 {
				t.Fatalf("unexpected candle id %d", received.CandleID)
			}
		case <-time.After(time.Second):
			t.Fatalf("subscriber did not receive the event")
		}
	}
}

func TestDispatcherStopsDeliveringAfterCleanup(t *testing.T) {
	dispatcher := NewRealtimeDispatcher()

	stream, cancel := dispatcher.Subscribe(context.Background())
	cancel()

	dispatcher.Publish(CandleLitEvent{CandleID: 1})
	select {
	case _, ok := <-stream:
		if ok {
			t.Fatalf("unsubscribed stream must not receive events")
		}
	default:
	}
}

func TestDispatcherUnsubscribesOnContextCancel(t *testing.T) {
	dispatcher := NewRealtimeDispatcher()

	ctx, cancel := context.WithCancel(context.Background())
	_, cleanup := dispatcher.Subscribe(ctx)
	defer cleanup()
	cancel()

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		dispatcher.mu.RLock()
		remaining := len(dispatcher.subscribers)
		dispatcher.mu.RUnlock()
		if remaining == 0 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("context cancellation did not remove the subscriber")
}

func TestDispatcherDropsEventsForSlowSubscriber(t *testing.T) {
	dispatcher := NewRealtimeDispatcher()

	stream, cancel := dispatcher.Subscribe(context.Background())
	defer cancel()

	// Never drained, so everything past the buffer is dropped without
	// blocking the publisher.
	for i := 0; i < dispatcher.bufferSize*2; i++ {
		dispatcher.Publish(CandleLitEvent{CandleID: int64(i)})
	}

	if got := len(stream); got != dispatcher.bufferSize {
		t.Fatalf("expected %d buffered events, got %d", dispatcher.bufferSize, got)
	}
}
