// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"sync/atomic"

	"github.com/ik5/audmix/internal/mpsc"
)

// Channel carries intents from any number of control goroutines to the
// mixer. Send never blocks and Drain never blocks or allocates.
type Channel struct {
	q      *mpsc.Queue[Intent]
	closed atomic.Bool
}

// NewChannel creates a channel holding at least capacity intents.
func NewChannel(capacity int) *Channel {
	return &Channel{q: mpsc.New[Intent](capacity)}
}

// Cap returns the number of intents the channel holds.
func (c *Channel) Cap() int { return c.q.Cap() }

// Len returns an approximation of the number of queued intents.
func (c *Channel) Len() int { return c.q.Len() }

// Send queues in. It returns ErrBackpressure when the channel is full and
// ErrChannelClosed after Close.
func (c *Channel) Send(in Intent) error {
	if c.closed.Load() {
		return ErrChannelClosed
	}
	if !c.q.TryPush(in) {
		return ErrBackpressure
	}
	return nil
}

// Drain appends every queued intent to dst in the order they were sent.
// Only the mixer may call it. Intents still queued after Close are drained
// normally.
func (c *Channel) Drain(dst []Intent) []Intent {
	return c.q.Drain(dst)
}

// Close makes further Sends fail. It is safe to call more than once.
func (c *Channel) Close() {
	c.closed.Store(true)
}
