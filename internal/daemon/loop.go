package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// ErrLoopStopped is returned by Do once Run has returned.
var ErrLoopStopped = errors.New("daemon loop stopped")

// ErrHostClosed is returned by Run when the X event loop quits.
var ErrHostClosed = errors.New("host event loop stopped")

// Loop is the daemon's single logical thread. Work submitted with Do, the
// periodic tick and X event callbacks never run concurrently: X callbacks
// execute on the xevent goroutine only between a before and an after ping,
// while Run waits.
type Loop struct {
	requests chan func()
	stopped  chan struct{}
	interval time.Duration
	onTick   func(time.Time)
	logger   *slog.Logger
}

// NewLoop creates a loop that calls onTick every interval. A nil onTick
// disables the ticker.
func NewLoop(interval time.Duration, onTick func(time.Time), logger *slog.Logger) *Loop {
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}
	return &Loop{
		requests: make(chan func()),
		stopped:  make(chan struct{}),
		interval: interval,
		onTick:   onTick,
		logger:   logger,
	}
}

// Do runs fn on the loop and returns its error. It must not be called from
// the loop itself or from an X callback.
func (l *Loop) Do(ctx context.Context, fn func() error) error {
	done := make(chan error, 1)
	req := func() {
		defer func() {
			if r := recover(); r != nil {
				l.logger.Error("loop task panic recovered", "error", r)
				done <- fmt.Errorf("internal error: %v", r)
			}
		}()
		done <- fn()
	}

	select {
	case l.requests <- req:
	case <-l.stopped:
		return ErrLoopStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run owns the loop until ctx is cancelled or quit fires. before, after and
// quit come from xevent.MainPing; nil channels are never selected, which
// lets callers without an X connection drive the loop.
func (l *Loop) Run(ctx context.Context, before, after, quit <-chan struct{}) error {
	defer close(l.stopped)

	var tick <-chan time.Time
	if l.onTick != nil {
		ticker := time.NewTicker(l.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-quit:
			return ErrHostClosed
		case <-before:
			// X callbacks run now.
			<-after
		case fn := <-l.requests:
			fn()
		case now := <-tick:
			l.onTick(now)
		}
	}
}
