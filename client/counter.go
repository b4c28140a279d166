package client

import (
	"bufio"
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
)

const candleLitEvent = "candle-lit"

// ErrCounterStarted indicates a second Start on a running counter. Exactly
// one subscription may be live per counter so no event is counted twice.
var ErrCounterStarted = errors.New("client: live counter already started")

// LiveCounter keeps a continuously updated candle tally. It fetches the
// stored count once, then increments by exactly one per insert event from the
// server's stream; it never re-fetches. If the stream drops, the last-known
// count stays in place and no resynchronization is attempted, so the value
// can drift low across a disconnect.
type LiveCounter struct {
	client *Client
	count  atomic.Int64

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewLiveCounter constructs a counter bound to this client's server.
func (c *Client) NewLiveCounter() *LiveCounter {
	return &LiveCounter{client: c}
}

// Start fetches the initial count and subscribes to the insert feed. The
// counter runs until Stop is called or the context is cancelled.
func (lc *LiveCounter) Start(ctx context.Context) error {
	lc.mu.Lock()
	if lc.running {
		lc.mu.Unlock()
		return ErrCounterStarted
	}
	lc.running = true
	lc.mu.Unlock()

	initial, err := lc.client.CandleCount(ctx)
	if err != nil {
		lc.markStopped()
		return err
	}
	lc.count.Store(initial)

	streamCtx, cancel := context.WithCancel(ctx)
	response, err := lc.client.openCandleStream(streamCtx)
	if err != nil {
		cancel()
		lc.markStopped()
		return err
	}

	done := make(chan struct{})
	lc.mu.Lock()
	lc.cancel = cancel
	lc.done = done
	lc.mu.Unlock()

	go func() {
		defer close(done)
		defer response.Body.Close()
		defer lc.markStopped()

		scanner := bufio.NewScanner(response.Body)
		currentEvent := ""
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				currentEvent = ""
				continue
			}
			if strings.HasPrefix(line, "event:") {
				currentEvent = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
				continue
			}
			if strings.HasPrefix(line, "data:") && currentEvent == candleLitEvent {
				lc.count.Add(1)
			}
		}
		// The stream ended: keep the last-known count displayed.
	}()

	return nil
}

// Count returns the current tally.
func (lc *LiveCounter) Count() int64 {
	return lc.count.Load()
}

// Stop tears the subscription down and waits for the reader to exit. The
// counter may be started again afterwards.
func (lc *LiveCounter) Stop() {
	lc.mu.Lock()
	cancel := lc.cancel
	done := lc.done
	lc.cancel = nil
	lc.done = nil
	lc.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

func (lc *LiveCounter) markStopped() {
	lc.mu.Lock()
	lc.running = false
	lc.mu.Unlock()
}
