package infrastructure

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// watchdog cancels its context when no data has been received for timeout.
// The timer is armed by the first Kick, so time spent before the body is
// read does not count against it.
type watchdog struct {
	ctx     context.Context
	cancel  context.CancelCauseFunc
	timeout time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	stopped bool
}

func newWatchdog(parent context.Context, timeout time.Duration) (context.Context, *watchdog) {
	ctx, cancel := context.WithCancelCause(parent)
	return ctx, &watchdog{
		ctx:     ctx,
		cancel:  cancel,
		timeout: timeout,
	}
}

// Kick arms the timer, or postpones the deadline by another timeout
func (wd *watchdog) Kick() {
	if wd.timeout <= 0 {
		return
	}
	wd.mu.Lock()
	defer wd.mu.Unlock()

	if wd.stopped {
		return
	}
	if wd.timer == nil {
		wd.timer = time.AfterFunc(wd.timeout, func() {
			wd.cancel(os.ErrDeadlineExceeded)
		})
		return
	}
	wd.timer.Reset(wd.timeout)
}

// Cancel stops the timer and releases the context
func (wd *watchdog) Cancel() {
	wd.mu.Lock()
	wd.stopped = true
	if wd.timer != nil {
		wd.timer.Stop()
	}
	wd.mu.Unlock()
	wd.cancel(nil)
}

// watchedBody kicks the watchdog around every read and cancels it on close
type watchedBody struct {
	body io.ReadCloser
	wd   *watchdog
}

func (b *watchedBody) Read(p []byte) (int, error) {
	b.wd.Kick()
	n, err := b.body.Read(p)
	if n > 0 {
		b.wd.Kick()
	}
	if err != nil && err != io.EOF && b.wd.ctx.Err() != nil {
		if cause := context.Cause(b.wd.ctx); cause == os.ErrDeadlineExceeded {
			return n, fmt.Errorf("no data received for %s: %w", b.wd.timeout, cause)
		}
	}
	return n, err
}

func (b *watchedBody) Close() error {
	err := b.body.Close()
	b.wd.Cancel()
	return err
}
