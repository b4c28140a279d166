package client

import (
	"context"
	"sync"
)

// HeartTally tracks the displayed heart count for one tribute with optimistic
// local increments. Each click applies immediately as a pending increment and
// is later committed against the server's confirmed tally or rolled back if
// the remote increment fails.
type HeartTally struct {
	mu        sync.Mutex
	confirmed int64
	pending   int64
}

// NewHeartTally starts from the last fetched server tally.
func NewHeartTally(confirmed int64) *HeartTally {
	return &HeartTally{confirmed: confirmed}
}

// Begin applies one optimistic increment and returns the displayed value.
func (t *HeartTally) Begin() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pending++
	return t.confirmed + t.pending
}

// Commit settles one pending increment against the server-confirmed tally.
func (t *HeartTally) Commit(serverValue int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.pending > 0 {
		t.pending--
	}
	if serverValue > t.confirmed {
		t.confirmed = serverValue
	}
}

// Rollback reverts one pending increment after a failed remote call.
func (t *HeartTally) Rollback() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.pending > 0 {
		t.pending--
	}
}

// Value returns the displayed tally: confirmed plus pending increments.
func (t *HeartTally) Value() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.confirmed + t.pending
}

// HeartTribute performs one heart click: the tally is bumped optimistically,
// the atomic server increment runs, and the optimistic bump is committed or
// rolled back depending on the outcome.
func (c *Client) HeartTribute(ctx context.Context, tributeID int64, tally *HeartTally) (int64, error) {
	if tally == nil {
		return c.AddHeart(ctx, tributeID)
	}

	tally.Begin()
	hearts, err := c.AddHeart(ctx, tributeID)
	if err != nil {
		tally.Rollback()
		return tally.Value(), err
	}
	tally.Commit(hearts)
	return tally.Value(), nil
}
