package server

import (
	"context"
	"sync"
	"time"
)

const (
	// RealtimeEventCandleLit names the SSE event emitted once per stored candle.
	RealtimeEventCandleLit = "candle-lit"
	realtimeEventHeartbeat = "heartbeat"
)

// CandleLitEvent is broadcast to every connected viewer when a candle row is
// inserted. Viewers increment their local tally by one per event.
type CandleLitEvent struct {
	CandleID  int64     `json:"candle_id"`
	Name      string    `json:"name"`
	Timestamp time.Time `json:"timestamp"`
}

// RealtimeDispatcher fans candle insert events out to all subscribed streams.
// Slow subscribers drop events rather than stall the publisher.
type RealtimeDispatcher struct {
	mu          sync.RWMutex
	subscribers map[int64]*realtimeSubscriber
	nextID      int64
	bufferSize  int
}

type realtimeSubscriber struct {
	id     int64
	stream chan CandleLitEvent
}

// NewRealtimeDispatcher constructs a dispatcher with a small per-subscriber buffer.
func NewRealtimeDispatcher() *RealtimeDispatcher {
	return &RealtimeDispatcher{
		subscribers: make(map[int64]*realtimeSubscriber),
		bufferSize:  16,
	}
}

// Subscribe registers a stream that receives every subsequently published
// event. The subscription ends when the context is cancelled or the returned
// cleanup function runs; both are safe to use together.
func (d *RealtimeDispatcher) Subscribe(ctx context.Context) (<-chan CandleLitEvent, func()) {
	subscriber := &realtimeSubscriber{
		id:     d.nextSequence(),
		stream: make(chan CandleLitEvent, d.bufferSize),
	}
	d.registerSubscriber(subscriber)
	cleanup := func() {
		d.unregisterSubscriber(subscriber.id)
	}
	go func() {
		<-ctx.Done()
		cleanup()
	}()
	return subscriber.stream, cleanup
}

// Publish delivers the event to every live subscriber.
func (d *RealtimeDispatcher) Publish(event CandleLitEvent) {
	d.mu.RLock()
	copies := make([]*realtimeSubscriber, 0, len(d.subscribers))
	for _, subscriber := range d.subscribers {
		copies = append(copies, subscriber)
	}
	d.mu.RUnlock()
	for _, subscriber := range copies {
		select {
		case subscriber.stream <- event:
		default:
		}
	}
}

func (d *RealtimeDispatcher) nextSequence() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.nextID++
	return d.nextID
}

func (d *RealtimeDispatcher) registerSubscriber(subscriber *realtimeSubscriber) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.subscribers[subscriber.id] = subscriber
}

func (d *RealtimeDispatcher) unregisterSubscriber(subscriberID int64) {
	d.mu.Lock()
	delete(d.subscribers, subscriberID)
	d.mu.Unlock()
}
