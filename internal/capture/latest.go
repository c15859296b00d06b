package capture

import (
	"context"
	"errors"
	"sync"
)

// ErrMailboxClosed is returned by Next once the mailbox has been closed.
var ErrMailboxClosed = errors.New("frame mailbox closed")

// MailboxStats counts frames passing through a LatestFrame.
type MailboxStats struct {
	Published uint64 `json:"published"`
	Consumed  uint64 `json:"consumed"`
	Dropped   uint64 `json:"dropped"`
}

// LatestFrame is a single-slot mailbox between the capture goroutine and the
// frame worker. Publishing over an unconsumed frame releases the old frame
// and counts it as dropped, so the worker only ever sees the newest frame.
//
// Publish may be called from any goroutine; Next must have a single consumer.
type LatestFrame struct {
	mu     sync.Mutex
	cond   *sync.Cond
	frame  *Frame
	closed bool
	stats  MailboxStats
}

// NewLatestFrame returns an empty, open mailbox.
func NewLatestFrame() *LatestFrame {
	l := &LatestFrame{}
	l.cond = sync.NewCond(&l.mu)
	return l
}

// Publish stores frame, replacing any frame the worker has not picked up yet.
// It never blocks. After Close the frame is released and false is returned.
func (l *LatestFrame) Publish(frame *Frame) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		frame.Release()
		return false
	}

	if l.frame != nil {
		l.frame.Release()
		l.stats.Dropped++
	}

	l.frame = frame
	l.stats.Published++
	l.cond.Signal()
	return true
}

// Next blocks until a frame is available and hands ownership of it to the
// caller. It returns ErrMailboxClosed after Close and ctx.Err() when ctx ends.
func (l *LatestFrame) Next(ctx context.Context) (*Frame, error) {
	stop := context.AfterFunc(ctx, func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		l.cond.Broadcast()
	})
	defer stop()

	l.mu.Lock()
	defer l.mu.Unlock()

	for l.frame == nil && !l.closed && ctx.Err() == nil {
		l.cond.Wait()
	}

	if l.closed {
		return nil, ErrMailboxClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	frame := l.frame
	l.frame = nil
	l.stats.Consumed++
	return frame, nil
}

// Close releases any pending frame and wakes the consumer.
func (l *LatestFrame) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return
	}
	l.closed = true
	if l.frame != nil {
		l.frame.Release()
		l.frame = nil
	}
	l.cond.Broadcast()
}

// Stats returns a snapshot of the mailbox counters.
func (l *LatestFrame) Stats() MailboxStats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stats
}
